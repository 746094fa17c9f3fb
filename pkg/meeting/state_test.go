package meeting

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/minutes-cli/pkg/directory"
)

func TestNoteLogDedupPreservesOrder(t *testing.T) {
	log := NewNoteLog()

	assert.True(t, log.Append("first"))
	assert.True(t, log.Append("second"))
	assert.False(t, log.Append("first"), "exact duplicate must not re-append")
	assert.True(t, log.Append("third"))

	assert.Equal(t, []string{"first", "second", "third"}, log.All())
	assert.Equal(t, 3, log.Len())
}

func TestNoteLogMarshalsAsArray(t *testing.T) {
	log := NewNoteLog()
	log.Append("Stage 2: Found 1 exact matches")

	data, err := json.Marshal(log)
	require.NoError(t, err)
	assert.JSONEq(t, `["Stage 2: Found 1 exact matches"]`, string(data))
}

func TestActionItemNotesDedup(t *testing.T) {
	item := &ActionItem{ID: "action_1", Description: "Ship the fix"}

	assert.True(t, item.AddNote("No owner assigned"))
	assert.False(t, item.AddNote("No owner assigned"))
	assert.True(t, item.AddNote("Could not resolve deadline: 'whenever'"))
	assert.Equal(t, 2, len(item.ValidationNotes))
}

func TestFlagForReviewIsMonotonic(t *testing.T) {
	item := &ActionItem{ID: "action_1", Description: "Ship the fix"}
	assert.False(t, item.NeedsReview)

	item.FlagForReview("owner could not be resolved")
	assert.True(t, item.NeedsReview)
	assert.Contains(t, item.ValidationNotes, "owner could not be resolved")

	// Flagging again with another reason keeps the flag and appends.
	item.FlagForReview("Could not resolve deadline: 'soon'")
	assert.True(t, item.NeedsReview)
	assert.Len(t, item.ValidationNotes, 2)
}

func TestSetOwnerCouplesEmailAndRole(t *testing.T) {
	item := &ActionItem{ID: "action_1", Description: "Ship the fix", OwnerName: "Alice"}
	p := directory.Person{Name: "Alice Wu", Email: "alice.wu@example.com", Role: "Backend Engineer"}

	item.SetOwner(p, 1.0)

	assert.Equal(t, "Alice Wu", item.OwnerName)
	assert.Equal(t, "alice.wu@example.com", item.OwnerEmail)
	assert.Equal(t, "Backend Engineer", item.OwnerRole)
	require.NotNil(t, item.Confidence)
	assert.Equal(t, 1.0, *item.Confidence)
	assert.True(t, item.Resolved())
}

func TestDateRoundTrip(t *testing.T) {
	d := NewDate(time.Date(2026, time.January, 17, 15, 4, 5, 0, time.UTC))
	assert.Equal(t, "2026-01-17", d.String())

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-01-17"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d, back)

	_, err = ParseDate("17/01/2026")
	assert.Error(t, err)
}

func TestNewState(t *testing.T) {
	ix := directory.NewIndex([]directory.Person{
		{Name: "Alice Wu", Email: "alice.wu@example.com", Role: "Backend Engineer"},
	}, directory.AmbiguityReject)

	ref := time.Date(2026, time.January, 5, 10, 30, 0, 0, time.UTC)
	st := NewState("transcript text", ix, ref)

	assert.NotEmpty(t, st.RunID)
	assert.Equal(t, time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), st.ReferenceDate)
	assert.NotNil(t, st.Notes)

	st.Note("Stage %d: %s", 2, "done")
	st.Note("Stage %d: %s", 2, "done")
	assert.Equal(t, 1, st.Notes.Len())

	st.ActionItems = append(st.ActionItems, &ActionItem{ID: "action_1"})
	assert.NotNil(t, st.Item("action_1"))
	assert.Nil(t, st.Item("action_9"))
}
