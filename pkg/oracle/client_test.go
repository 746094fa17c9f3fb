package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/minutes-cli/pkg/directory"
	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
)

// stubProvider answers CompleteStructured with canned JSON, recording the
// requests it saw.
type stubProvider struct {
	answer   string
	err      error
	requests []CompletionRequest
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &CompletionResponse{Content: s.answer}, nil
}

func (s *stubProvider) CompleteStructured(ctx context.Context, req CompletionRequest, target interface{}) error {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return s.err
	}
	return json.Unmarshal([]byte(CleanFences(s.answer)), target)
}

func (s *stubProvider) Close() error { return nil }

var clientPeople = []directory.Person{
	{Name: "Emily Carter", Email: "emily.carter@example.com", Role: "Product Designer"},
	{Name: "Raj Patel", Email: "raj.patel@example.com", Role: "Engineering Manager"},
}

func TestResolveOwnersDecodesMatches(t *testing.T) {
	stub := &stubProvider{answer: `{
		"matches": [
			{"item_id": "action_2", "matched_name": "Emily Carter", "confidence": 0.92, "reasoning": "first-name reference"},
			{"item_id": "action_3", "matched_name": "Raj Patel", "confidence": "0.55", "reasoning": "role inference", "extra_field": true}
		]
	}`}
	client := NewClient(stub, logging.NewNopLogger())

	matches, err := client.ResolveOwners(context.Background(), clientPeople, []UnresolvedOwner{
		{ID: "action_2", Description: "Finalize signup copy", OwnerName: "Emily"},
		{ID: "action_3", Description: "Review backend plan", OwnerName: "the manager"},
	})
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "Emily Carter", matches[0].MatchedName)
	assert.Equal(t, 0.92, matches[0].Confidence.Float64())
	// Quoted confidence still decodes.
	assert.Equal(t, 0.55, matches[1].Confidence.Float64())

	// The prompt carries the directory and the unresolved items.
	require.Len(t, stub.requests, 1)
	prompt := stub.requests[0].Prompt
	assert.Contains(t, prompt, "Emily Carter (Product Designer) - emily.carter@example.com")
	assert.Contains(t, prompt, "action_3")
}

func TestResolveOwnersEmptyBatchSkipsCall(t *testing.T) {
	stub := &stubProvider{answer: `{"matches": []}`}
	client := NewClient(stub, nil)

	matches, err := client.ResolveOwners(context.Background(), clientPeople, nil)
	require.NoError(t, err)
	assert.Nil(t, matches)
	assert.Empty(t, stub.requests, "no round trip for an empty batch")
}

func TestResolveOwnersPropagatesProviderError(t *testing.T) {
	stub := &stubProvider{err: &Error{Code: ErrCodeUnavailable, Message: "down"}}
	client := NewClient(stub, nil)

	_, err := client.ResolveOwners(context.Background(), clientPeople, []UnresolvedOwner{{ID: "action_1"}})
	require.Error(t, err)

	var oerr *Error
	assert.True(t, errors.As(err, &oerr))
}

func TestResolveDeadlinesDecodesAnswers(t *testing.T) {
	stub := &stubProvider{answer: "```json\n" + `{
		"deadlines": [
			{"item_id": "action_1", "resolved_date": "2026-01-17", "reasoning": "next Saturday"}
		]
	}` + "\n```"}
	client := NewClient(stub, nil)

	ref := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	answers, err := client.ResolveDeadlines(context.Background(), ref, []UnresolvedDeadline{
		{ID: "action_1", DeadlineText: "before the weekend is over"},
	})
	require.NoError(t, err)

	require.Len(t, answers, 1)
	assert.Equal(t, "2026-01-17", answers[0].ResolvedDate)

	prompt := stub.requests[0].Prompt
	assert.Contains(t, prompt, "Today is 2026-01-10 (Saturday)")
	assert.Contains(t, prompt, "before the weekend is over")
}

func TestReviewItemsDecodesFindings(t *testing.T) {
	stub := &stubProvider{answer: `{
		"issues": [
			{"item_id": "action_1", "severity": "high", "issue": "No owner and no deadline", "recommendation": "Assign an owner"},
			{"item_id": "action_9", "severity": "low", "issue": "Vague description"}
		]
	}`}
	client := NewClient(stub, nil)

	findings, err := client.ReviewItems(context.Background(), []ReviewItem{
		{ID: "action_1", Description: "Do the thing", NeedsReview: true},
	})
	require.NoError(t, err)

	require.Len(t, findings, 2)
	assert.Equal(t, SeverityHigh, findings[0].Severity)
	// Findings for unknown ids come back as-is; the stage discards them.
	assert.Equal(t, "action_9", findings[1].ItemID)
}
