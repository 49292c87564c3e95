package chat

import "errors"

var (
	ErrPendingExists = errors.New("a pending turn is already open")
	ErrNoPending     = errors.New("no pending turn to resolve")
)

// Log is the ordered conversation record. Turns are only appended; the sole
// in-place edit is settling the trailing pending placeholder.
//
// Log is not safe for concurrent use; the controller owning it serializes access.
type Log struct {
	turns []Turn
}

// NewLog returns a log seeded with the given turns.
func NewLog(turns ...Turn) *Log {
	l := &Log{}
	l.Reset(turns...)
	return l
}

// Reset replaces the whole log.
func (l *Log) Reset(turns ...Turn) {
	l.turns = append(make([]Turn, 0, len(turns)+8), turns...)
}

// Append adds a turn at the end. Nothing may follow a pending turn.
func (l *Log) Append(turn Turn) error {
	if l.HasPending() {
		return ErrPendingExists
	}
	l.turns = append(l.turns, turn)
	return nil
}

// Len returns the number of turns.
func (l *Log) Len() int {
	return len(l.turns)
}

// Turns returns a copy of the log contents.
func (l *Log) Turns() []Turn {
	copied := make([]Turn, len(l.turns))
	copy(copied, l.turns)
	return copied
}

// HasPending reports whether the last turn is an unresolved placeholder.
func (l *Log) HasPending() bool {
	n := len(l.turns)
	return n > 0 && l.turns[n-1].IsPending()
}

// ResolvePending sets the placeholder's text and completes it in place.
func (l *Log) ResolvePending(text string) error {
	if !l.HasPending() {
		return ErrNoPending
	}
	last := &l.turns[len(l.turns)-1]
	last.Text = text
	last.Status = StatusComplete
	return nil
}

// FailPending marks the placeholder as failed so it stops rendering as loading.
func (l *Log) FailPending() error {
	if !l.HasPending() {
		return ErrNoPending
	}
	l.turns[len(l.turns)-1].Status = StatusFailed
	return nil
}
