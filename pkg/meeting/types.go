// Package meeting defines the records extracted from a meeting transcript
// and the pipeline state threaded through the resolution stages.
package meeting

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/otherjamesbrown/minutes-cli/pkg/directory"
)

// Date is a naive calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate builds a Date from t, discarding any wall-clock component.
func NewDate(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ActionItem is a task extracted from the meeting, owned by a person,
// optionally deadline-bound. Ids are assigned at extraction and never reused.
//
// Fields are monotonic: stages only ever fill them in or append to them,
// never clear them. NeedsReview in particular never flips back to false
// within a run; use FlagForReview to set it.
type ActionItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`

	OwnerName  string `json:"owner_name,omitempty"`
	OwnerEmail string `json:"owner_email,omitempty"`
	OwnerRole  string `json:"owner_role,omitempty"`

	DeadlineText string `json:"deadline_text,omitempty"`
	DeadlineDate *Date  `json:"deadline_date,omitempty"`

	// Evidence holds direct transcript quotes supporting the item.
	Evidence []string `json:"evidence,omitempty"`

	// Confidence is set only when an owner match was attempted.
	Confidence *float64 `json:"confidence,omitempty"`

	NeedsReview     bool     `json:"needs_review"`
	ValidationNotes []string `json:"validation_notes,omitempty"`

	noteSet map[string]bool
}

// AddNote appends a validation note unless an identical note is already
// present. Reports whether the note was added.
func (a *ActionItem) AddNote(note string) bool {
	if a.noteSet == nil {
		a.noteSet = make(map[string]bool, len(a.ValidationNotes))
		for _, n := range a.ValidationNotes {
			a.noteSet[n] = true
		}
	}
	if a.noteSet[note] {
		return false
	}
	a.noteSet[note] = true
	a.ValidationNotes = append(a.ValidationNotes, note)
	return true
}

// FlagForReview marks the item for human follow-up and records the reason.
// The flag is terminal for the run.
func (a *ActionItem) FlagForReview(reason string) {
	a.NeedsReview = true
	if reason != "" {
		a.AddNote(reason)
	}
}

// SetOwner assigns the resolved owner identity from a single directory
// person. Email and role always travel together.
func (a *ActionItem) SetOwner(p directory.Person, confidence float64) {
	a.OwnerName = p.Name
	a.OwnerEmail = p.Email
	a.OwnerRole = p.Role
	a.Confidence = &confidence
}

// SetDeadline records the resolved absolute deadline. A deadline is never
// fabricated without a deadline phrase to back it.
func (a *ActionItem) SetDeadline(d Date) {
	a.DeadlineDate = &d
}

// Resolved reports whether the item has a resolved owner.
func (a *ActionItem) Resolved() bool {
	return a.OwnerEmail != ""
}

// Decision is an important choice made during the meeting. Decisions pass
// through the resolution stages unchanged.
type Decision struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	MadeBy      string   `json:"made_by,omitempty"`
	Evidence    []string `json:"evidence,omitempty"`
	Timestamp   string   `json:"timestamp,omitempty"`
}

// Risk is a concern or open question raised during the meeting.
type Risk struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Category    string   `json:"category"` // "risk" or "open_question"
	MentionedBy string   `json:"mentioned_by,omitempty"`
	Evidence    []string `json:"evidence,omitempty"`
	Timestamp   string   `json:"timestamp,omitempty"`
}

// FollowUpMessage is a drafted follow-up for one action item owner.
type FollowUpMessage struct {
	ToEmail     string   `json:"to_email"`
	ToName      string   `json:"to_name"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	ActionItems []string `json:"action_items"`
}

// EmailTrigger records a simulated send event. No email is ever delivered.
type EmailTrigger struct {
	To          string    `json:"to"`
	ToName      string    `json:"to_name"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	TriggeredAt time.Time `json:"triggered_at"`
	Status      string    `json:"status"` // always "simulated"
}

func (t EmailTrigger) String() string {
	return fmt.Sprintf("to=%s <%s> subject=%q status=%s", t.ToName, t.To, t.Subject, t.Status)
}
