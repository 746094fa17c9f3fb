package pipeline

import (
	"context"
	"fmt"

	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
	"github.com/otherjamesbrown/minutes-cli/pkg/meeting"
	"github.com/otherjamesbrown/minutes-cli/pkg/oracle"
)

// resolveOwners runs the three-pass owner resolution over the action items.
//
// Per-item state machine:
//
//	unset -> exact-matched (confidence 1.0)
//	      -> oracle-matched (confidence from the oracle)
//	      -> unresolved (needs_review, note added)
//
// Confidence is only ever set when a match is attempted; an item with no
// owner name skips both match passes and never carries a confidence value.
func (r *Runner) resolveOwners(ctx context.Context, st *meeting.State, log logging.Logger) {
	exact := 0
	for _, item := range st.ActionItems {
		if item.OwnerName == "" || item.Resolved() {
			continue
		}
		if p, ok := st.Directory.LookupExact(item.OwnerName); ok {
			item.SetOwner(p, 1.0)
			exact++
			ownersResolvedTotal.WithLabelValues("exact").Inc()
		}
	}
	st.Note("Owner resolution: %d exact directory matches", exact)

	var batch []oracle.UnresolvedOwner
	for _, item := range st.ActionItems {
		if item.OwnerName == "" || item.Resolved() {
			continue
		}
		batch = append(batch, oracle.UnresolvedOwner{
			ID:          item.ID,
			Description: item.Description,
			OwnerName:   item.OwnerName,
			Evidence:    item.Evidence,
		})
	}

	if len(batch) > 0 {
		matches, err := r.oracle.ResolveOwners(ctx, st.Directory.People(), batch)
		if err != nil {
			oracleFailuresTotal.WithLabelValues("owner_resolution").Inc()
			log.Error("oracle owner resolution failed", logging.Err(err))
			st.Note("Owner resolution: oracle call failed: %v", err)
		} else {
			applied := r.applyOwnerMatches(st, matches, log)
			st.Note("Owner resolution: %d oracle matches applied", applied)
		}
	}

	flagged := 0
	for _, item := range st.ActionItems {
		if item.Resolved() {
			continue
		}
		item.FlagForReview("owner could not be resolved")
		itemsFlaggedTotal.WithLabelValues("owner_unresolved").Inc()
		flagged++
	}
	if flagged > 0 {
		st.Note("Owner resolution: %d items flagged for review", flagged)
	}

	log.Info("owner resolution completed",
		logging.F("exact", exact),
		logging.F("oracle_batch", len(batch)),
		logging.F("flagged", flagged))
}

// applyOwnerMatches validates and applies oracle matches. Matches referencing
// unknown item ids, already-resolved items, or names outside the directory
// are dropped without mutating anything.
func (r *Runner) applyOwnerMatches(st *meeting.State, matches []oracle.OwnerMatch, log logging.Logger) int {
	applied := 0
	for _, m := range matches {
		item := st.Item(m.ItemID)
		if item == nil || item.Resolved() {
			continue
		}
		p, ok := st.Directory.Get(m.MatchedName)
		if !ok {
			log.Warn("oracle matched a name outside the directory",
				logging.F("item_id", m.ItemID),
				logging.F("matched_name", m.MatchedName))
			continue
		}

		conf := m.Confidence.Float64()
		item.SetOwner(p, conf)
		applied++
		ownersResolvedTotal.WithLabelValues("oracle").Inc()

		if conf < r.config.ConfidenceThreshold {
			item.FlagForReview(fmt.Sprintf("Low confidence owner match (%.2f): %s", conf, m.Reasoning))
			itemsFlaggedTotal.WithLabelValues("low_confidence").Inc()
		}
	}
	return applied
}
