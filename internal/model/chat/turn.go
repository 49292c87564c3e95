package chat

import (
	"time"

	"github.com/google/uuid"
)

// Speaker attributes a turn to one side of the conversation.
type Speaker string

const (
	SpeakerUser  Speaker = "user"
	SpeakerModel Speaker = "model"
)

// Status tracks whether a model turn has been resolved.
type Status string

const (
	// StatusComplete marks a turn whose text is final.
	StatusComplete Status = "complete"
	// StatusPending marks the optimistic placeholder awaiting the endpoint reply.
	StatusPending Status = "pending"
	// StatusFailed marks a placeholder whose exchange failed. Only produced when
	// failure marking is enabled on the controller.
	StatusFailed Status = "failed"
)

// Turn is one message unit of the conversation.
type Turn struct {
	ID        string    `json:"id"`
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUserTurn returns a completed user turn holding text verbatim.
func NewUserTurn(text string) Turn {
	return newTurn(SpeakerUser, text, StatusComplete)
}

// NewModelTurn returns a completed model turn.
func NewModelTurn(text string) Turn {
	return newTurn(SpeakerModel, text, StatusComplete)
}

// NewPendingTurn returns the model placeholder rendered as a loading indicator.
func NewPendingTurn() Turn {
	return newTurn(SpeakerModel, "", StatusPending)
}

func newTurn(speaker Speaker, text string, status Status) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Speaker:   speaker,
		Text:      text,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
}

// IsPending reports whether the turn is the unresolved placeholder.
func (t Turn) IsPending() bool {
	return t.Status == StatusPending
}
