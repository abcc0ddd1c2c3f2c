package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAutosaver_DebouncesToOneSave(t *testing.T) {
	var saves atomic.Int32
	a := NewAutosaver(20*time.Millisecond, func() { saves.Add(1) })

	a.Touch()
	a.Touch()
	a.Touch()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), saves.Load())
}

func TestAutosaver_TouchReschedules(t *testing.T) {
	var saves atomic.Int32
	a := NewAutosaver(60*time.Millisecond, func() { saves.Add(1) })

	a.Touch()
	time.Sleep(30 * time.Millisecond)
	a.Touch()
	time.Sleep(40 * time.Millisecond)

	// The first deadline passed but the second touch pushed it out.
	assert.Equal(t, int32(0), saves.Load())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), saves.Load())
}

func TestAutosaver_FlushRunsPendingSave(t *testing.T) {
	var saves atomic.Int32
	a := NewAutosaver(time.Hour, func() { saves.Add(1) })

	a.Touch()
	a.Flush()
	assert.Equal(t, int32(1), saves.Load())

	// Nothing pending, flush is a no-op.
	a.Flush()
	assert.Equal(t, int32(1), saves.Load())
}

func TestAutosaver_StopDiscardsPendingSave(t *testing.T) {
	var saves atomic.Int32
	a := NewAutosaver(20*time.Millisecond, func() { saves.Add(1) })

	a.Touch()
	a.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), saves.Load())

	a.Touch()
	a.Flush()
	assert.Equal(t, int32(0), saves.Load())
}
