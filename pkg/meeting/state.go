package meeting

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/otherjamesbrown/minutes-cli/pkg/directory"
)

// NoteLog is an append-only, order-preserving log of processing notes with
// exact-string deduplication. It is the run's human-readable audit trail:
// entries are never reordered or truncated.
type NoteLog struct {
	notes []string
	seen  map[string]bool
}

// NewNoteLog returns an empty note log.
func NewNoteLog() *NoteLog {
	return &NoteLog{seen: make(map[string]bool)}
}

// Append adds a note unless an identical note is already present.
// Reports whether the note was added.
func (l *NoteLog) Append(note string) bool {
	if l.seen == nil {
		l.seen = make(map[string]bool)
	}
	if l.seen[note] {
		return false
	}
	l.seen[note] = true
	l.notes = append(l.notes, note)
	return true
}

// All returns the notes in append order.
func (l *NoteLog) All() []string {
	out := make([]string, len(l.notes))
	copy(out, l.notes)
	return out
}

// Len returns the number of recorded notes.
func (l *NoteLog) Len() int {
	return len(l.notes)
}

func (l *NoteLog) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.notes)
}

// State is the document threaded through the pipeline stages. Each stage
// receives it by pointer, mutates the item collections, and appends notes.
// A State belongs to exactly one run and is never shared across runs; the
// strictly sequential staging gives it a single writer by construction.
type State struct {
	RunID         string           `json:"run_id"`
	Transcript    string           `json:"-"`
	Directory     *directory.Index `json:"-"`
	ReferenceDate time.Time        `json:"reference_date"`

	ActionItems []*ActionItem `json:"action_items"`
	Decisions   []*Decision   `json:"decisions"`
	Risks       []*Risk       `json:"risks"`

	Messages []*FollowUpMessage `json:"follow_up_messages,omitempty"`
	Triggers []*EmailTrigger    `json:"email_triggers,omitempty"`

	Notes *NoteLog `json:"processing_notes"`
}

// NewState creates the state for a single pipeline run.
func NewState(transcript string, dir *directory.Index, referenceDate time.Time) *State {
	return &State{
		RunID:         "run_" + uuid.NewString(),
		Transcript:    transcript,
		Directory:     dir,
		ReferenceDate: time.Date(referenceDate.Year(), referenceDate.Month(), referenceDate.Day(), 0, 0, 0, 0, time.UTC),
		Notes:         NewNoteLog(),
	}
}

// Note appends a formatted processing note.
func (s *State) Note(format string, args ...interface{}) {
	s.Notes.Append(fmt.Sprintf(format, args...))
}

// Item returns the action item with the given id, or nil.
func (s *State) Item(id string) *ActionItem {
	for _, a := range s.ActionItems {
		if a.ID == id {
			return a
		}
	}
	return nil
}
