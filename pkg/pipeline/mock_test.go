package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/otherjamesbrown/minutes-cli/pkg/directory"
	"github.com/otherjamesbrown/minutes-cli/pkg/meeting"
	"github.com/otherjamesbrown/minutes-cli/pkg/oracle"
)

// mockOracle is a testify mock of the OracleClient the stages consume.
type mockOracle struct {
	mock.Mock
}

func (m *mockOracle) Name() string { return "mock" }

func (m *mockOracle) ResolveOwners(ctx context.Context, people []directory.Person, items []oracle.UnresolvedOwner) ([]oracle.OwnerMatch, error) {
	args := m.Called(ctx, people, items)
	if v := args.Get(0); v != nil {
		return v.([]oracle.OwnerMatch), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOracle) ResolveDeadlines(ctx context.Context, referenceDate time.Time, items []oracle.UnresolvedDeadline) ([]oracle.DeadlineAnswer, error) {
	args := m.Called(ctx, referenceDate, items)
	if v := args.Get(0); v != nil {
		return v.([]oracle.DeadlineAnswer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOracle) ReviewItems(ctx context.Context, items []oracle.ReviewItem) ([]oracle.Finding, error) {
	args := m.Called(ctx, items)
	if v := args.Get(0); v != nil {
		return v.([]oracle.Finding), args.Error(1)
	}
	return nil, args.Error(1)
}

var testDirectory = directory.NewIndex([]directory.Person{
	{Name: "Alice Wu", Email: "alice.wu@example.com", Role: "Engineer"},
	{Name: "Bob Lee", Email: "bob.lee@example.com", Role: "Product Manager"},
	{Name: "Carol Diaz", Email: "carol.diaz@example.com", Role: "Designer"},
}, directory.AmbiguityReject)

// testMonday is the reference date used throughout the stage tests.
var testMonday = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

func newTestState(items ...*meeting.ActionItem) *meeting.State {
	st := meeting.NewState("transcript", testDirectory, testMonday)
	st.ActionItems = items
	return st
}

func newTestRunner(client OracleClient) *Runner {
	return NewRunner(DefaultConfig(), client, nil)
}

func notesContain(st *meeting.State, substr string) bool {
	for _, n := range st.Notes.All() {
		if strings.Contains(n, substr) {
			return true
		}
	}
	return false
}
