package solve

import "testing"

func TestDetectMode(t *testing.T) {
	cases := []struct {
		question string
		want     Mode
	}{
		{"", ModeHint},
		{"give me a hint", ModeHint},
		{"what's the first step?", ModeHint},
		{"nudge me please", ModeHint},
		{"don't solve it for me", ModeHint},
		{"don't give the answer", ModeHint},
		{"solve this", ModeSolution},
		{"give the solution", ModeSolution},
		{"show all steps", ModeSolution},
		{"just do it", ModeSolution},
		{"help me derive the concept", ModeDeriveHint},
		{"guide me through the idea", ModeDeriveHint},
		{"explain this concept", ModeExplain},
		{"teach me about logarithms", ModeExplain},
		{"how does this work?", ModeExplain},
		{"check my work", ModeDebug},
		{"is this right?", ModeDebug},
		{"find my mistake", ModeDebug},
		{"debug this", ModeDebug},
		{"something completely unrelated", ModeHint},
	}

	for _, tc := range cases {
		if got := DetectMode(tc.question); got != tc.want {
			t.Errorf("DetectMode(%q) = %q, want %q", tc.question, got, tc.want)
		}
	}
}
