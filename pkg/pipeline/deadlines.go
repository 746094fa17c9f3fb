package pipeline

import (
	"context"
	"fmt"

	"github.com/otherjamesbrown/minutes-cli/pkg/dates"
	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
	"github.com/otherjamesbrown/minutes-cli/pkg/meeting"
	"github.com/otherjamesbrown/minutes-cli/pkg/oracle"
)

// resolveDeadlines runs the three-pass deadline resolution: deterministic
// grammar first, oracle for the remainder, review flags for what survives
// both. A deadline date is never set on an item without a deadline phrase.
func (r *Runner) resolveDeadlines(ctx context.Context, st *meeting.State, log logging.Logger) {
	deterministic := 0
	for _, item := range st.ActionItems {
		if item.DeadlineText == "" || item.DeadlineDate != nil {
			continue
		}
		if resolved, ok := dates.Resolve(item.DeadlineText, st.ReferenceDate); ok {
			item.SetDeadline(meeting.NewDate(resolved))
			deterministic++
			deadlinesResolvedTotal.WithLabelValues("deterministic").Inc()
		}
	}
	st.Note("Deadline resolution: %d phrases resolved deterministically", deterministic)

	var batch []oracle.UnresolvedDeadline
	for _, item := range st.ActionItems {
		if item.DeadlineText == "" || item.DeadlineDate != nil {
			continue
		}
		batch = append(batch, oracle.UnresolvedDeadline{
			ID:           item.ID,
			DeadlineText: item.DeadlineText,
			Evidence:     item.Evidence,
		})
	}

	if len(batch) > 0 {
		answers, err := r.oracle.ResolveDeadlines(ctx, st.ReferenceDate, batch)
		if err != nil {
			oracleFailuresTotal.WithLabelValues("deadline_resolution").Inc()
			log.Error("oracle deadline resolution failed", logging.Err(err))
			st.Note("Deadline resolution: oracle call failed: %v", err)
		} else {
			applied := applyDeadlineAnswers(st, answers, log)
			st.Note("Deadline resolution: %d oracle answers applied", applied)
		}
	}

	flagged := 0
	for _, item := range st.ActionItems {
		if item.DeadlineText == "" || item.DeadlineDate != nil {
			continue
		}
		item.FlagForReview(fmt.Sprintf("Could not resolve deadline: '%s'", item.DeadlineText))
		itemsFlaggedTotal.WithLabelValues("deadline_unresolved").Inc()
		flagged++
	}
	if flagged > 0 {
		st.Note("Deadline resolution: %d items flagged for review", flagged)
	}

	log.Info("deadline resolution completed",
		logging.F("deterministic", deterministic),
		logging.F("oracle_batch", len(batch)),
		logging.F("flagged", flagged))
}

// applyDeadlineAnswers applies oracle answers that survive ISO parsing.
// Answers for unknown ids, items without a deadline phrase, or with an
// unparseable date are skipped per-record.
func applyDeadlineAnswers(st *meeting.State, answers []oracle.DeadlineAnswer, log logging.Logger) int {
	applied := 0
	for _, ans := range answers {
		item := st.Item(ans.ItemID)
		if item == nil || item.DeadlineText == "" || item.DeadlineDate != nil {
			continue
		}
		d, err := meeting.ParseDate(ans.ResolvedDate)
		if err != nil {
			log.Warn("oracle returned an unparseable deadline date",
				logging.F("item_id", ans.ItemID),
				logging.F("resolved_date", ans.ResolvedDate))
			continue
		}
		item.SetDeadline(d)
		applied++
		deadlinesResolvedTotal.WithLabelValues("oracle").Inc()
	}
	return applied
}
