// Package session holds the conversational state of one cost-analysis
// consultation and the stores that persist it. The advisor mutates a
// Session between turns; stores only move it in and out of memory,
// SQLite, or Postgres without interpreting it.
package session

import (
	"time"

	"github.com/joelkehle/costcoach/internal/costanalysis"
)

// State is the advisor's position in the guided conversation.
type State string

const (
	StateWelcome         State = "welcome"
	StateChooseArchetype State = "choose_archetype"
	StateCollect         State = "collect"
	StateConfirm         State = "confirm"
	StateDone            State = "done"
)

// Turn is one utterance in the consultation, kept for the report and for
// replaying context to the coaching model.
type Turn struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

const (
	RoleUser  = "user"
	RoleCoach = "coach"
)

// Session is the full mutable state of one consultation. FieldIndex points
// at the next schema field the advisor will ask for; Inputs accumulates the
// raw answers exactly as the analysis engine expects them.
type Session struct {
	ID         string                 `json:"id"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
	State      State                  `json:"state"`
	Archetype  costanalysis.Archetype `json:"archetype,omitempty"`
	FieldIndex int                    `json:"field_index"`
	Inputs     map[string]any         `json:"inputs"`
	Turns      []Turn                 `json:"turns"`
	LastResult *costanalysis.Result   `json:"last_result,omitempty"`
}

// Clone copies the session deeply enough that callers can mutate the copy
// without reaching into store-owned state. The embedded analysis result is
// treated as immutable and shared.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Inputs = make(map[string]any, len(s.Inputs))
	for k, v := range s.Inputs {
		cp.Inputs[k] = v
	}
	cp.Turns = append([]Turn{}, s.Turns...)
	return &cp
}

// AddTurn appends an utterance stamped with the given time.
func (s *Session) AddTurn(role, text string, at time.Time) {
	s.Turns = append(s.Turns, Turn{Role: role, Text: text, At: at})
}

// Summary is the listing view of a session.
type Summary struct {
	ID        string                 `json:"id"`
	State     State                  `json:"state"`
	Archetype costanalysis.Archetype `json:"archetype,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	Turns     int                    `json:"turns"`
}

func (s *Session) summary() Summary {
	return Summary{
		ID:        s.ID,
		State:     s.State,
		Archetype: s.Archetype,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Turns:     len(s.Turns),
	}
}
