package solve

import "strings"

// Mode is the response behavior requested by the user's wording.
type Mode string

const (
	// ModeHint gives 1-2 forward-looking nudges, never the final answer.
	ModeHint Mode = "hint"
	// ModeSolution gives a full worked solution ending with the answer.
	ModeSolution Mode = "solution"
	// ModeDeriveHint guides intuition without stating the full concept.
	ModeDeriveHint Mode = "derivation_hint"
	// ModeExplain teaches the concept from scratch.
	ModeExplain Mode = "explanation"
	// ModeDebug only flags errors in the user's work.
	ModeDebug Mode = "debug"
)

var modeTriggers = []struct {
	mode    Mode
	phrases []string
}{
	// Hint cues first: "don't solve it" must not match the solve cues.
	{ModeHint, []string{
		"give me a hint", "hint", "what's the first step", "whats the first step",
		"nudge", "help me move forward", "don't solve", "dont solve",
		"don't give the answer", "dont give the answer",
	}},
	{ModeDebug, []string{
		"check my work", "is this right", "find my mistake", "debug",
		"scan what i wrote",
	}},
	{ModeDeriveHint, []string{
		"guide me through the idea", "help me derive", "derive the concept",
		"walk me to the intuition", "don't tell me the full concept",
		"dont tell me the full concept",
	}},
	{ModeExplain, []string{
		"explain this concept", "teach me", "what is ", "how does this work",
		"explain from scratch", "explain",
	}},
	{ModeSolution, []string{
		"solve this", "give the solution", "show all steps", "just do it",
		"solve", "solution",
	}},
}

// DetectMode classifies the spoken question into a response mode from its
// wording. Ambiguous or empty input defaults to hint mode.
func DetectMode(question string) Mode {
	q := strings.ToLower(strings.TrimSpace(question))
	if q == "" {
		return ModeHint
	}
	for _, t := range modeTriggers {
		for _, p := range t.phrases {
			if strings.Contains(q, p) {
				return t.mode
			}
		}
	}
	return ModeHint
}
