package pipeline

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
	"github.com/otherjamesbrown/minutes-cli/pkg/meeting"
	"github.com/otherjamesbrown/minutes-cli/pkg/oracle"
)

// Report is the validation stage output. Duplicates and overloads are
// advisory, report-level findings; they never set needs_review on their own.
type Report struct {
	TotalItems int `json:"total_items"`

	Duplicates []Duplicate `json:"duplicates,omitempty"`
	Overloads  []Overload  `json:"overloads,omitempty"`

	OracleFindings []oracle.Finding `json:"oracle_findings,omitempty"`

	// NeedsReview lists the ids of items flagged by the end of the stage.
	NeedsReview []string `json:"needs_review,omitempty"`
}

// Duplicate groups items whose descriptions match after case folding and
// whitespace trimming.
type Duplicate struct {
	Description string   `json:"description"`
	ItemIDs     []string `json:"item_ids"`
}

// Overload is an (owner, deadline) group carrying more items than the
// configured limit.
type Overload struct {
	OwnerEmail string       `json:"owner_email"`
	Deadline   meeting.Date `json:"deadline"`
	ItemIDs    []string     `json:"item_ids"`
}

// validate runs per-item checks, cross-item consistency checks, and the
// oracle second-opinion pass. Items flagged here are terminal for the run.
func (r *Runner) validate(ctx context.Context, st *meeting.State, log logging.Logger) *Report {
	report := &Report{TotalItems: len(st.ActionItems)}

	for _, item := range st.ActionItems {
		r.checkItem(item)
	}

	report.Duplicates = findDuplicates(st.ActionItems)
	report.Overloads = findOverloads(st.ActionItems, r.config.OverloadLimit)
	if len(report.Duplicates) > 0 {
		st.Note("Validation: %d potential duplicate groups", len(report.Duplicates))
	}
	if len(report.Overloads) > 0 {
		st.Note("Validation: %d overloaded owner/deadline groups", len(report.Overloads))
	}

	report.OracleFindings = r.secondOpinion(ctx, st, log)

	for _, item := range st.ActionItems {
		if item.NeedsReview {
			report.NeedsReview = append(report.NeedsReview, item.ID)
		}
	}
	st.Note("Validation: %d of %d items need review", len(report.NeedsReview), report.TotalItems)

	log.Info("validation completed",
		logging.F("duplicates", len(report.Duplicates)),
		logging.F("overloads", len(report.Overloads)),
		logging.F("findings", len(report.OracleFindings)),
		logging.F("needs_review", len(report.NeedsReview)))
	return report
}

// checkItem runs the independent per-item owner and deadline checks.
// Repeated messages are suppressed by the item's note dedup.
func (r *Runner) checkItem(item *meeting.ActionItem) {
	switch {
	case item.OwnerName == "" && item.OwnerEmail == "":
		item.FlagForReview("No owner assigned")
	case item.OwnerEmail == "":
		item.FlagForReview(fmt.Sprintf("Owner '%s' not found in directory", item.OwnerName))
	case item.Confidence != nil && *item.Confidence < r.config.ConfidenceThreshold:
		item.FlagForReview(fmt.Sprintf("Owner match confidence %.2f below threshold", *item.Confidence))
	}

	if item.DeadlineText != "" && item.DeadlineDate == nil {
		item.FlagForReview(fmt.Sprintf("Could not resolve deadline: '%s'", item.DeadlineText))
	}
}

// foldDescription normalizes a description for duplicate comparison.
func foldDescription(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func findDuplicates(items []*meeting.ActionItem) []Duplicate {
	groups := make(map[string][]string)
	order := make([]string, 0, len(items))
	for _, item := range items {
		key := foldDescription(item.Description)
		if key == "" {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], item.ID)
	}

	var out []Duplicate
	for _, key := range order {
		if ids := groups[key]; len(ids) > 1 {
			out = append(out, Duplicate{Description: key, ItemIDs: ids})
		}
	}
	return out
}

func findOverloads(items []*meeting.ActionItem, limit int) []Overload {
	type group struct {
		email    string
		deadline meeting.Date
		ids      []string
	}
	groups := make(map[string]*group)
	order := make([]string, 0, len(items))
	for _, item := range items {
		if item.OwnerEmail == "" || item.DeadlineDate == nil {
			continue
		}
		key := item.OwnerEmail + "|" + item.DeadlineDate.String()
		g, ok := groups[key]
		if !ok {
			g = &group{email: item.OwnerEmail, deadline: *item.DeadlineDate}
			groups[key] = g
			order = append(order, key)
		}
		g.ids = append(g.ids, item.ID)
	}

	var out []Overload
	for _, key := range order {
		if g := groups[key]; len(g.ids) > limit {
			out = append(out, Overload{OwnerEmail: g.email, Deadline: g.deadline, ItemIDs: g.ids})
		}
	}
	return out
}

// secondOpinion sends the item summaries to the oracle for a free-form
// review. High-severity findings force needs_review; every finding for a
// known item appends a severity-tagged note. Findings for unknown ids are
// kept in the report but mutate nothing.
func (r *Runner) secondOpinion(ctx context.Context, st *meeting.State, log logging.Logger) []oracle.Finding {
	batch := make([]oracle.ReviewItem, 0, len(st.ActionItems))
	for _, item := range st.ActionItems {
		review := oracle.ReviewItem{
			ID:          item.ID,
			Description: item.Description,
			Owner:       item.OwnerName,
			NeedsReview: item.NeedsReview,
		}
		if item.DeadlineDate != nil {
			review.Deadline = item.DeadlineDate.String()
		} else {
			review.Deadline = item.DeadlineText
		}
		batch = append(batch, review)
	}

	findings, err := r.oracle.ReviewItems(ctx, batch)
	if err != nil {
		oracleFailuresTotal.WithLabelValues("validation").Inc()
		log.Error("oracle review failed", logging.Err(err))
		st.Note("Validation: oracle review failed: %v", err)
		return nil
	}

	for _, f := range findings {
		item := st.Item(f.ItemID)
		if item == nil {
			continue
		}
		severity := strings.ToLower(strings.TrimSpace(f.Severity))
		if severity == "" {
			severity = oracle.SeverityMedium
		}
		note := fmt.Sprintf("[%s] %s", strings.ToUpper(severity), f.Issue)
		if severity == oracle.SeverityHigh {
			item.FlagForReview(note)
			itemsFlaggedTotal.WithLabelValues("oracle_finding").Inc()
		} else {
			item.AddNote(note)
		}
	}
	return findings
}
