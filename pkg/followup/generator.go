// Package followup drafts per-owner follow-up messages for resolved action
// items and simulates sending them. No email is ever delivered.
package followup

import (
	"context"
	"fmt"
	"strings"

	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
	"github.com/otherjamesbrown/minutes-cli/pkg/meeting"
	"github.com/otherjamesbrown/minutes-cli/pkg/oracle"
)

// Generator drafts one follow-up message per action item owner.
type Generator struct {
	provider oracle.Provider
	log      logging.Logger
}

// NewGenerator creates a follow-up generator. A nil logger discards output.
func NewGenerator(provider oracle.Provider, log logging.Logger) *Generator {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Generator{provider: provider, log: log}
}

// ownerGroup collects one owner's resolved items in item order.
type ownerGroup struct {
	email string
	name  string
	items []*meeting.ActionItem
}

// Generate groups resolved items by owner email, in first-seen order, and
// drafts one message per owner. An oracle failure falls back to a
// deterministic plain-text body rather than dropping the owner.
func (g *Generator) Generate(ctx context.Context, st *meeting.State) []*meeting.FollowUpMessage {
	groups := make(map[string]*ownerGroup)
	var order []string
	for _, item := range st.ActionItems {
		if !item.Resolved() {
			continue
		}
		grp, ok := groups[item.OwnerEmail]
		if !ok {
			grp = &ownerGroup{email: item.OwnerEmail, name: item.OwnerName}
			groups[item.OwnerEmail] = grp
			order = append(order, item.OwnerEmail)
		}
		grp.items = append(grp.items, item)
	}

	subject := fmt.Sprintf("Action items from meeting - %s", st.ReferenceDate.Format("2006-01-02"))
	for _, email := range order {
		grp := groups[email]
		body := g.draftBody(ctx, grp)

		msg := &meeting.FollowUpMessage{
			ToEmail: grp.email,
			ToName:  grp.name,
			Subject: subject,
			Body:    body,
		}
		for _, item := range grp.items {
			msg.ActionItems = append(msg.ActionItems, item.ID)
		}
		st.Messages = append(st.Messages, msg)
	}

	st.Note("Follow-up: %d messages drafted", len(order))
	g.log.Info("follow-up generation completed",
		logging.F("run_id", st.RunID),
		logging.F("owners", len(order)))
	return st.Messages
}

// draftBody asks the oracle for a short friendly body, falling back to the
// deterministic rendering when the call fails.
func (g *Generator) draftBody(ctx context.Context, grp *ownerGroup) string {
	resp, err := g.provider.Complete(ctx, oracle.CompletionRequest{
		Prompt:       draftPrompt(grp),
		SystemPrompt: "You write short, friendly follow-up emails. Output only the email body.",
		MaxTokens:    500,
	})
	if err != nil || resp == nil || strings.TrimSpace(resp.Content) == "" {
		g.log.Warn("oracle draft failed, using fallback body",
			logging.F("owner", grp.email),
			logging.Err(err))
		return FallbackBody(grp.name, grp.items)
	}
	return strings.TrimSpace(resp.Content)
}

func draftPrompt(grp *ownerGroup) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a short friendly follow-up email to %s listing their action items from today's meeting:\n\n", grp.name)
	for _, item := range grp.items {
		fmt.Fprintf(&b, "- %s", item.Description)
		if item.DeadlineDate != nil {
			fmt.Fprintf(&b, " (due %s)", item.DeadlineDate)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nKeep it under 120 words. Output only the email body.")
	return b.String()
}

// FallbackBody renders a deterministic plain-text follow-up body.
func FallbackBody(name string, items []*meeting.ActionItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nA quick follow-up on your action items from today's meeting:\n\n", name)
	for _, item := range items {
		fmt.Fprintf(&b, "- %s", item.Description)
		if item.DeadlineDate != nil {
			fmt.Fprintf(&b, " (due %s)", item.DeadlineDate)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nThanks!\n")
	return b.String()
}
