package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/curiosity-whiteboard/whiteboard-backend/internal/boards"
	"github.com/curiosity-whiteboard/whiteboard-backend/internal/solve"
)

type State int

const (
	StateIdle State = iota
	StateCapturing
	StateAwaitingAnswer
	StateError
)

const addToCanvasKey = "addToCanvas"

// DefaultAutosaveDelay matches the original client's debounce window.
const DefaultAutosaveDelay = 800 * time.Millisecond

type Config struct {
	BoardID string
	Scope   boards.Scope
	Store   boards.Store
	Canvas  Canvas
	Solver  Solver
	Speech  Recognizer
	Prefs   KV
	Log     *zap.Logger
	// Warn surfaces user-visible warnings; nil means dropped.
	Warn          func(msg string)
	AutosaveDelay time.Duration
}

// Controller wires canvas events, voice input, the solve service and the
// board store together for one board view. Callers drive it from a
// single event loop; only the autosaver owns a timer goroutine.
type Controller struct {
	mu        sync.Mutex
	state     State
	boardID   string
	scope     boards.Scope
	items     []boards.HistoryItem
	listening bool

	store  boards.Store
	canvas Canvas
	solver Solver
	speech Recognizer
	prefs  KV
	log    *zap.Logger
	warn   func(string)

	saver    *Autosaver
	unlisten func()
}

func New(cfg Config) *Controller {
	c := &Controller{
		state:   StateIdle,
		boardID: cfg.BoardID,
		scope:   cfg.Scope,
		store:   cfg.Store,
		canvas:  cfg.Canvas,
		solver:  cfg.Solver,
		speech:  cfg.Speech,
		prefs:   cfg.Prefs,
		log:     cfg.Log,
		warn:    cfg.Warn,
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.warn == nil {
		c.warn = func(string) {}
	}

	// Snapshot autosave only applies to boards owned by an
	// authenticated scope.
	if !c.scope.Anonymous() && c.store != nil && c.canvas != nil {
		delay := cfg.AutosaveDelay
		if delay <= 0 {
			delay = DefaultAutosaveDelay
		}
		c.saver = NewAutosaver(delay, c.saveSnapshot)
		c.unlisten = c.canvas.OnChange(c.touch)
	}
	return c
}

func (c *Controller) touch() {
	c.mu.Lock()
	s := c.saver
	c.mu.Unlock()
	if s != nil {
		s.Touch()
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Items returns the in-memory AI feed for this board view.
func (c *Controller) Items() []boards.HistoryItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]boards.HistoryItem, len(c.items))
	copy(out, c.items)
	return out
}

// LoadHistory seeds the in-memory feed, typically from a stored board.
func (c *Controller) LoadHistory(items []boards.HistoryItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]boards.HistoryItem(nil), items...)
}

// AskAI runs one capture-solve-record cycle. A response that arrives
// after SwitchBoard changed the board context is discarded.
func (c *Controller) AskAI(ctx context.Context, spokenQuestion string) error {
	c.mu.Lock()
	c.state = StateCapturing
	boardID := c.boardID
	scope := c.scope
	history := append([]boards.HistoryItem(nil), c.items...)
	c.mu.Unlock()

	ids := c.canvas.SelectedShapeIDs()
	if len(ids) == 0 {
		ids = c.canvas.ShapeIDs()
	}
	if len(ids) == 0 {
		c.warn("Draw something on the canvas first.")
		c.setState(StateIdle)
		return nil
	}

	img, mimeType, err := c.canvas.ExportImage(ctx, ids)
	if err != nil {
		return c.fail(err)
	}

	c.setState(StateAwaitingAnswer)

	historyJSON, _ := json.Marshal(history)
	ans, err := c.solver.Solve(ctx, solve.Request{
		Image:    img,
		MimeType: mimeType,
		BoardID:  boardID,
		History:  string(historyJSON),
		Question: spokenQuestion,
	})
	if err != nil {
		return c.fail(err)
	}

	item := boards.HistoryItem{
		Question: ans.QuestionText,
		Response: answerText(ans),
		TS:       time.Now().UnixMilli(),
	}

	c.mu.Lock()
	if c.boardID != boardID {
		// The view moved on while the request was in flight.
		c.mu.Unlock()
		return nil
	}
	c.items = append(c.items, item)
	c.state = StateIdle
	c.mu.Unlock()

	if !scope.Anonymous() && c.store != nil {
		if _, err := c.store.AppendItem(ctx, scope, boardID, item); err != nil {
			// Best effort: a storage hiccup never blocks showing the answer.
			c.log.Warn("persist history item failed", zap.String("board", boardID), zap.Error(err))
		}
	}

	if c.addToCanvas() {
		if b, ok := c.canvas.UnionBounds(ids); ok {
			c.canvas.CreateText(item.Response, b.MinX, b.MaxY+40)
		} else {
			x, y := c.canvas.ViewportCenter()
			c.canvas.CreateText(item.Response, x, y)
		}
	}
	return nil
}

// StartVoice begins speech capture; each transcribed utterance feeds
// AskAI. In continuous mode capture restarts after every utterance until
// StopVoice is called.
func (c *Controller) StartVoice(ctx context.Context, continuous bool) error {
	if c.speech == nil {
		return errors.New("speech recognition is not available")
	}
	c.mu.Lock()
	c.listening = true
	c.mu.Unlock()

	var handle func(text string)
	handle = func(text string) {
		if err := c.AskAI(ctx, text); err != nil {
			c.log.Warn("voice ask failed", zap.Error(err))
		}
		c.mu.Lock()
		again := continuous && c.listening
		c.mu.Unlock()
		if again {
			if err := c.speech.Start(handle); err != nil {
				c.log.Warn("restart voice capture failed", zap.Error(err))
			}
		}
	}
	return c.speech.Start(handle)
}

func (c *Controller) StopVoice() {
	c.mu.Lock()
	c.listening = false
	c.mu.Unlock()
	if c.speech != nil {
		c.speech.Stop()
	}
}

// SwitchBoard moves the controller to a new board context. Any pending
// snapshot write for the old board is discarded, and in-flight solve
// responses for it will be ignored.
func (c *Controller) SwitchBoard(id string, items []boards.HistoryItem) {
	c.mu.Lock()
	old := c.saver
	c.mu.Unlock()
	if old != nil {
		old.Stop()
	}

	c.mu.Lock()
	c.boardID = id
	c.items = append([]boards.HistoryItem(nil), items...)
	c.state = StateIdle
	if old != nil {
		c.saver = NewAutosaver(old.delay, c.saveSnapshot)
	}
	c.mu.Unlock()
}

// Close flushes any pending snapshot and detaches from the canvas.
func (c *Controller) Close() {
	if c.saver != nil {
		c.saver.Flush()
		c.saver.Stop()
	}
	if c.unlisten != nil {
		c.unlisten()
	}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// fail surfaces the error once and returns the controller to Idle with
// no partial state retained.
func (c *Controller) fail(err error) error {
	c.setState(StateError)
	c.warn(err.Error())
	c.setState(StateIdle)
	return err
}

func (c *Controller) addToCanvas() bool {
	if c.prefs == nil {
		return true
	}
	v, ok := c.prefs.Get(addToCanvasKey)
	if !ok {
		return true
	}
	return v != "false"
}

func (c *Controller) saveSnapshot() {
	c.mu.Lock()
	boardID := c.boardID
	scope := c.scope
	c.mu.Unlock()

	snap, err := c.canvas.Snapshot()
	if err != nil {
		c.log.Warn("canvas snapshot failed", zap.Error(err))
		return
	}
	if _, err := c.store.PutSnapshot(context.Background(), scope, boardID, snap); err != nil {
		c.log.Warn("autosave failed", zap.String("board", boardID), zap.Error(err))
	}
}

func answerText(a *solve.Answer) string {
	if a.Message != "" {
		return a.Message
	}
	t := a.AnswerPlain
	if t == "" {
		t = a.AnswerLatex
	}
	if t == "" {
		t = "Could not read."
	}
	if a.Explanation != "" {
		t += "\n\n" + a.Explanation
	}
	return t
}
