package followup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/minutes-cli/pkg/directory"
	"github.com/otherjamesbrown/minutes-cli/pkg/meeting"
	"github.com/otherjamesbrown/minutes-cli/pkg/oracle"
)

type stubProvider struct {
	answer string
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(ctx context.Context, req oracle.CompletionRequest) (*oracle.CompletionResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &oracle.CompletionResponse{Content: s.answer}, nil
}

func (s *stubProvider) CompleteStructured(ctx context.Context, req oracle.CompletionRequest, target interface{}) error {
	return errors.New("not used")
}

func (s *stubProvider) Close() error { return nil }

var people = []directory.Person{
	{Name: "Alice Wu", Email: "alice.wu@example.com", Role: "Engineer"},
	{Name: "Bob Lee", Email: "bob.lee@example.com", Role: "Product Manager"},
}

func newState(items ...*meeting.ActionItem) *meeting.State {
	dir := directory.NewIndex(people, directory.AmbiguityReject)
	st := meeting.NewState("transcript", dir, time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC))
	st.ActionItems = items
	return st
}

func resolvedItem(id, description string, p directory.Person) *meeting.ActionItem {
	item := &meeting.ActionItem{ID: id, Description: description}
	item.SetOwner(p, 1.0)
	return item
}

func TestGenerateGroupsByOwner(t *testing.T) {
	a1 := resolvedItem("action_1", "Ship the fix", people[0])
	b1 := resolvedItem("action_2", "Update the roadmap", people[1])
	a2 := resolvedItem("action_3", "Write the postmortem", people[0])
	unresolved := &meeting.ActionItem{ID: "action_4", Description: "Orphaned"}
	st := newState(a1, b1, a2, unresolved)

	stub := &stubProvider{answer: "Here are your action items."}
	g := NewGenerator(stub, nil)
	msgs := g.Generate(context.Background(), st)

	require.Len(t, msgs, 2)
	// First-seen owner order is preserved.
	assert.Equal(t, "alice.wu@example.com", msgs[0].ToEmail)
	assert.Equal(t, []string{"action_1", "action_3"}, msgs[0].ActionItems)
	assert.Equal(t, "bob.lee@example.com", msgs[1].ToEmail)
	assert.Equal(t, "Action items from meeting - 2026-01-05", msgs[0].Subject)
	assert.Equal(t, "Here are your action items.", msgs[0].Body)
	assert.Equal(t, 2, stub.calls, "one draft per owner")
}

func TestGenerateFallsBackOnOracleFailure(t *testing.T) {
	item := resolvedItem("action_1", "Ship the fix", people[0])
	item.DeadlineText = "by Friday"
	item.SetDeadline(mustDate("2026-01-09"))
	st := newState(item)

	stub := &stubProvider{err: errors.New("oracle down")}
	g := NewGenerator(stub, nil)
	msgs := g.Generate(context.Background(), st)

	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Body, "Hi Alice Wu,")
	assert.Contains(t, msgs[0].Body, "- Ship the fix (due 2026-01-09)")
}

func TestSimulatorRecordsTriggers(t *testing.T) {
	st := newState(resolvedItem("action_1", "Ship the fix", people[0]))
	st.Messages = []*meeting.FollowUpMessage{
		{ToEmail: "alice.wu@example.com", ToName: "Alice Wu", Subject: "s", Body: "b"},
	}

	s := NewSimulator(nil)
	s.now = func() time.Time { return time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC) }
	count := s.SendAll(st)

	assert.Equal(t, 1, count)
	require.Len(t, st.Triggers, 1)
	trigger := st.Triggers[0]
	assert.Equal(t, StatusSimulated, trigger.Status)
	assert.Equal(t, "alice.wu@example.com", trigger.To)
	assert.Equal(t, time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC), trigger.TriggeredAt)
}

func mustDate(s string) meeting.Date {
	d, err := meeting.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
