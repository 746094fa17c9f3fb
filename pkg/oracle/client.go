package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/otherjamesbrown/minutes-cli/pkg/directory"
	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
)

// Client wraps a Provider with the typed batch call shapes the pipeline
// stages use. Each call is a single blocking round trip (with the
// provider's internal retries); a returned error means the batch produced
// nothing and the stage proceeds with partial results.
type Client struct {
	provider Provider
	log      logging.Logger
}

// NewClient creates a typed oracle client.
func NewClient(provider Provider, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Client{provider: provider, log: log}
}

// Name returns the underlying provider identifier.
func (c *Client) Name() string {
	return c.provider.Name()
}

// UnresolvedOwner is an action item whose owner the deterministic pass
// could not match.
type UnresolvedOwner struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	OwnerName   string   `json:"owner_name"`
	Evidence    []string `json:"evidence,omitempty"`
}

// OwnerMatch is the oracle's best-guess owner resolution for one item.
// MatchedName must be validated against the directory before use.
type OwnerMatch struct {
	ItemID      string      `json:"item_id"`
	MatchedName string      `json:"matched_name"`
	Confidence  FlexFloat64 `json:"confidence"`
	Reasoning   string      `json:"reasoning"`
}

// ownerMatchEnvelope is the wire shape of the owner resolution answer.
type ownerMatchEnvelope struct {
	Matches []OwnerMatch `json:"matches"`
}

// ResolveOwners asks the oracle to match each unresolved item to a person
// from the directory. Extra fields in the answer are ignored; matches
// referencing unknown item ids or names outside the directory are the
// caller's to discard.
func (c *Client) ResolveOwners(ctx context.Context, people []directory.Person, items []UnresolvedOwner) ([]OwnerMatch, error) {
	if len(items) == 0 {
		return nil, nil
	}

	prompt, err := ownerPrompt(people, items)
	if err != nil {
		return nil, fmt.Errorf("build owner prompt: %w", err)
	}

	var envelope ownerMatchEnvelope
	req := CompletionRequest{
		Prompt:       prompt,
		SystemPrompt: "You are an expert at matching names and roles. Output only valid JSON.",
		MaxTokens:    2000,
	}
	if err := c.provider.CompleteStructured(ctx, req, &envelope); err != nil {
		return nil, fmt.Errorf("resolve owners: %w", err)
	}

	c.log.Debug("oracle owner resolution answered",
		logging.F("requested", len(items)),
		logging.F("matches", len(envelope.Matches)))
	return envelope.Matches, nil
}

// UnresolvedDeadline is an action item whose deadline phrase the
// deterministic grammar could not resolve.
type UnresolvedDeadline struct {
	ID           string   `json:"id"`
	DeadlineText string   `json:"deadline_text"`
	Evidence     []string `json:"evidence,omitempty"`
}

// DeadlineAnswer is the oracle's resolution of one deadline phrase to an
// ISO date. ResolvedDate must survive ISO parsing before use.
type DeadlineAnswer struct {
	ItemID       string `json:"item_id"`
	ResolvedDate string `json:"resolved_date"`
	Reasoning    string `json:"reasoning"`
}

// deadlineEnvelope is the wire shape of the deadline resolution answer.
type deadlineEnvelope struct {
	Deadlines []DeadlineAnswer `json:"deadlines"`
}

// ResolveDeadlines asks the oracle to convert deadline phrases to absolute
// ISO dates against the reference date.
func (c *Client) ResolveDeadlines(ctx context.Context, referenceDate time.Time, items []UnresolvedDeadline) ([]DeadlineAnswer, error) {
	if len(items) == 0 {
		return nil, nil
	}

	prompt, err := deadlinePrompt(referenceDate, items)
	if err != nil {
		return nil, fmt.Errorf("build deadline prompt: %w", err)
	}

	var envelope deadlineEnvelope
	req := CompletionRequest{
		Prompt:       prompt,
		SystemPrompt: "You are an expert at date resolution. Output only valid JSON.",
		MaxTokens:    2000,
	}
	if err := c.provider.CompleteStructured(ctx, req, &envelope); err != nil {
		return nil, fmt.Errorf("resolve deadlines: %w", err)
	}

	c.log.Debug("oracle deadline resolution answered",
		logging.F("requested", len(items)),
		logging.F("answers", len(envelope.Deadlines)))
	return envelope.Deadlines, nil
}

// ReviewItem is the summary of an action item sent for the second-opinion
// pass.
type ReviewItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Owner       string `json:"owner,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
	NeedsReview bool   `json:"needs_review"`
}

// Severity levels for review findings.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Finding is a free-form issue the oracle raised against an item.
type Finding struct {
	ItemID         string `json:"item_id"`
	Severity       string `json:"severity"`
	Issue          string `json:"issue"`
	Recommendation string `json:"recommendation,omitempty"`
}

// findingEnvelope is the wire shape of the review answer.
type findingEnvelope struct {
	Issues []Finding `json:"issues"`
}

// ReviewItems asks the oracle for a second opinion over the resolved item
// set: ambiguous descriptions, missing information, conflicts, unrealistic
// deadlines.
func (c *Client) ReviewItems(ctx context.Context, items []ReviewItem) ([]Finding, error) {
	if len(items) == 0 {
		return nil, nil
	}

	prompt, err := reviewPrompt(items)
	if err != nil {
		return nil, fmt.Errorf("build review prompt: %w", err)
	}

	var envelope findingEnvelope
	req := CompletionRequest{
		Prompt:       prompt,
		SystemPrompt: "You are a validation expert. Output only valid JSON.",
		MaxTokens:    2000,
	}
	if err := c.provider.CompleteStructured(ctx, req, &envelope); err != nil {
		return nil, fmt.Errorf("review items: %w", err)
	}

	c.log.Debug("oracle review answered",
		logging.F("requested", len(items)),
		logging.F("findings", len(envelope.Issues)))
	return envelope.Issues, nil
}
