package persona

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultName is used when the setup screen leaves the persona name blank.
const DefaultName = "지찡"

// MaxTraits caps how many trait labels a persona may carry.
const MaxTraits = 3

var (
	ErrUserNameRequired = errors.New("user name is required")
	ErrTooManyTraits    = fmt.Errorf("at most %d traits may be selected", MaxTraits)
	ErrUnknownTrait     = errors.New("unknown trait")
)

// Params are the session parameters handed from the setup screen to the chat
// controller. They are fixed for the lifetime of a session.
type Params struct {
	userName    string
	personaName string
	traits      []string
}

// NewParams validates the setup input. A blank persona name falls back to
// defaultName, or DefaultName when that is empty too. Duplicate traits are
// collapsed; every trait must exist in vocabulary when vocabulary is non-nil.
func NewParams(vocabulary Store, userName, personaName, defaultName string, traits []string) (Params, error) {
	if strings.TrimSpace(userName) == "" {
		return Params{}, ErrUserNameRequired
	}

	if strings.TrimSpace(personaName) == "" {
		personaName = defaultName
		if strings.TrimSpace(personaName) == "" {
			personaName = DefaultName
		}
	}

	seen := make(map[string]struct{}, len(traits))
	selected := make([]string, 0, len(traits))
	for _, raw := range traits {
		label := strings.TrimSpace(raw)
		if label == "" {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		if vocabulary != nil {
			if _, ok := vocabulary.FindByLabel(label); !ok {
				return Params{}, fmt.Errorf("%w: %q", ErrUnknownTrait, label)
			}
		}
		seen[label] = struct{}{}
		selected = append(selected, label)
	}

	if len(selected) > MaxTraits {
		return Params{}, ErrTooManyTraits
	}

	return Params{
		userName:    userName,
		personaName: personaName,
		traits:      selected,
	}, nil
}

// UserName returns the user's display name.
func (p Params) UserName() string { return p.userName }

// PersonaName returns the persona's name.
func (p Params) PersonaName() string { return p.personaName }

// Traits returns a copy of the selected trait labels.
func (p Params) Traits() []string {
	return append([]string(nil), p.traits...)
}

// JoinedTraits renders the traits the way the endpoint expects them.
func (p Params) JoinedTraits() string {
	return strings.Join(p.traits, ", ")
}
