package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/minutes-cli/pkg/meeting"
	"github.com/otherjamesbrown/minutes-cli/pkg/oracle"
)

func noFindings(client *mockOracle) {
	client.On("ReviewItems", mock.Anything, mock.Anything).Return([]oracle.Finding{}, nil)
}

func ownedItem(id, description string) *meeting.ActionItem {
	item := &meeting.ActionItem{ID: id, Description: description, OwnerName: "Alice Wu"}
	p, _ := testDirectory.Get("Alice Wu")
	item.SetOwner(p, 1.0)
	return item
}

func TestValidatePerItemChecks(t *testing.T) {
	noOwner := &meeting.ActionItem{ID: "action_1", Description: "Orphaned task"}
	unmatched := &meeting.ActionItem{ID: "action_2", Description: "Task", OwnerName: "Zed"}
	lowConf := ownedItem("action_3", "Shaky task")
	low := 0.3
	lowConf.Confidence = &low
	unresolvedDeadline := ownedItem("action_4", "Deadline task")
	unresolvedDeadline.DeadlineText = "when the stars align"

	st := newTestState(noOwner, unmatched, lowConf, unresolvedDeadline)

	client := &mockOracle{}
	noFindings(client)
	r := newTestRunner(client)
	report := r.validate(context.Background(), st, r.log)

	assert.Contains(t, noOwner.ValidationNotes, "No owner assigned")
	assert.Contains(t, unmatched.ValidationNotes, "Owner 'Zed' not found in directory")
	assert.Contains(t, lowConf.ValidationNotes, "Owner match confidence 0.30 below threshold")
	assert.Contains(t, unresolvedDeadline.ValidationNotes, "Could not resolve deadline: 'when the stars align'")
	assert.ElementsMatch(t, []string{"action_1", "action_2", "action_3", "action_4"}, report.NeedsReview)
}

func TestValidateDuplicateNotesNotReAppended(t *testing.T) {
	item := &meeting.ActionItem{ID: "action_1", Description: "Task"}
	item.FlagForReview("No owner assigned")
	st := newTestState(item)

	client := &mockOracle{}
	noFindings(client)
	r := newTestRunner(client)
	r.validate(context.Background(), st, r.log)
	r.validate(context.Background(), st, r.log)

	assert.Equal(t, []string{"No owner assigned"}, item.ValidationNotes)
}

func TestValidateDuplicateDetection(t *testing.T) {
	a := ownedItem("action_1", "Update the docs")
	b := ownedItem("action_2", "UPDATE THE DOCS ")
	c := ownedItem("action_3", "Something else")
	st := newTestState(a, b, c)

	client := &mockOracle{}
	noFindings(client)
	r := newTestRunner(client)
	report := r.validate(context.Background(), st, r.log)

	require.Len(t, report.Duplicates, 1)
	assert.ElementsMatch(t, []string{"action_1", "action_2"}, report.Duplicates[0].ItemIDs)
	// Advisory only: the duplicate report does not flag the items.
	assert.False(t, a.NeedsReview)
	assert.False(t, b.NeedsReview)
}

func TestValidateOverloadDetection(t *testing.T) {
	deadline := meeting.NewDate(testMonday.AddDate(0, 0, 4))
	var items []*meeting.ActionItem
	for _, id := range []string{"action_1", "action_2", "action_3", "action_4"} {
		item := ownedItem(id, "Task "+id)
		item.DeadlineText = "by Friday"
		item.SetDeadline(deadline)
		items = append(items, item)
	}
	st := newTestState(items...)

	client := &mockOracle{}
	noFindings(client)
	r := newTestRunner(client)
	report := r.validate(context.Background(), st, r.log)

	require.Len(t, report.Overloads, 1)
	assert.Equal(t, "alice.wu@example.com", report.Overloads[0].OwnerEmail)
	assert.Len(t, report.Overloads[0].ItemIDs, 4)
	for _, item := range items {
		assert.False(t, item.NeedsReview)
	}
}

func TestValidateSecondOpinion(t *testing.T) {
	flagged := ownedItem("action_1", "Vague task")
	noted := ownedItem("action_2", "Mildly vague task")
	st := newTestState(flagged, noted)

	client := &mockOracle{}
	client.On("ReviewItems", mock.Anything, mock.Anything).Return([]oracle.Finding{
		{ItemID: "action_1", Severity: "HIGH", Issue: "No success criteria"},
		{ItemID: "action_2", Severity: "low", Issue: "Could be more specific"},
		{ItemID: "action_77", Severity: "high", Issue: "Unknown item"},
	}, nil)

	r := newTestRunner(client)
	report := r.validate(context.Background(), st, r.log)

	assert.True(t, flagged.NeedsReview)
	assert.Contains(t, flagged.ValidationNotes, "[HIGH] No success criteria")

	assert.False(t, noted.NeedsReview, "non-high severities only annotate")
	assert.Contains(t, noted.ValidationNotes, "[LOW] Could be more specific")

	// Unknown-id findings stay in the report without touching any item.
	assert.Len(t, report.OracleFindings, 3)
}

func TestValidateSecondOpinionFailureIsRecoverable(t *testing.T) {
	item := ownedItem("action_1", "Fine task")
	st := newTestState(item)

	client := &mockOracle{}
	client.On("ReviewItems", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited"))

	r := newTestRunner(client)
	report := r.validate(context.Background(), st, r.log)

	assert.False(t, item.NeedsReview)
	assert.Empty(t, report.OracleFindings)
	assert.True(t, notesContain(st, "oracle review failed"))
}

func TestValidateReviewBatchPrefersResolvedDate(t *testing.T) {
	item := ownedItem("action_1", "Dated task")
	item.DeadlineText = "by Friday"
	item.SetDeadline(meeting.NewDate(testMonday.AddDate(0, 0, 4)))
	st := newTestState(item)

	client := &mockOracle{}
	client.On("ReviewItems", mock.Anything, []oracle.ReviewItem{
		{ID: "action_1", Description: "Dated task", Owner: "Alice Wu", Deadline: "2026-01-09"},
	}).Return([]oracle.Finding{}, nil)

	r := newTestRunner(client)
	r.validate(context.Background(), st, r.log)
	client.AssertExpectations(t)
}
