// Package extract turns a raw meeting transcript into structured action
// items, decisions, and risks via the oracle. It is the upstream producer
// for the resolution pipeline: ids are assigned here and never reused.
package extract

import (
	"context"
	"fmt"

	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
	"github.com/otherjamesbrown/minutes-cli/pkg/meeting"
	"github.com/otherjamesbrown/minutes-cli/pkg/oracle"
)

// Extractor extracts structured records from a transcript.
type Extractor struct {
	provider oracle.Provider
	log      logging.Logger
}

// NewExtractor creates an extractor. A nil logger discards output.
func NewExtractor(provider oracle.Provider, log logging.Logger) *Extractor {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Extractor{provider: provider, log: log}
}

// Wire shapes of the extraction answer. Records missing a description are
// malformed and skipped per-record, never batch-fatal.
type rawAction struct {
	Description  string   `json:"description"`
	OwnerName    string   `json:"owner_name"`
	DeadlineText string   `json:"deadline_text"`
	Evidence     []string `json:"evidence"`
}

type rawDecision struct {
	Description string   `json:"description"`
	MadeBy      string   `json:"made_by"`
	Evidence    []string `json:"evidence"`
	Timestamp   string   `json:"timestamp"`
}

type rawRisk struct {
	Description string   `json:"description"`
	Category    string   `json:"category"`
	MentionedBy string   `json:"mentioned_by"`
	Evidence    []string `json:"evidence"`
	Timestamp   string   `json:"timestamp"`
}

type extractionEnvelope struct {
	ActionItems []rawAction   `json:"action_items"`
	Decisions   []rawDecision `json:"decisions"`
	Risks       []rawRisk     `json:"risks"`
}

// Extract populates st.ActionItems, st.Decisions, and st.Risks from the
// transcript. Extraction failure is fatal to the run: with nothing
// extracted there is nothing for the later stages to resolve.
func (e *Extractor) Extract(ctx context.Context, st *meeting.State) error {
	req := oracle.CompletionRequest{
		Prompt:       extractionPrompt(st.Transcript),
		SystemPrompt: "You are an expert meeting analyst. Output only valid JSON.",
	}

	var envelope extractionEnvelope
	if err := e.provider.CompleteStructured(ctx, req, &envelope); err != nil {
		return fmt.Errorf("extract transcript: %w", err)
	}

	skipped := 0
	for _, raw := range envelope.ActionItems {
		if raw.Description == "" {
			skipped++
			continue
		}
		st.ActionItems = append(st.ActionItems, &meeting.ActionItem{
			ID:           fmt.Sprintf("action_%d", len(st.ActionItems)+1),
			Description:  raw.Description,
			OwnerName:    raw.OwnerName,
			DeadlineText: raw.DeadlineText,
			Evidence:     raw.Evidence,
		})
	}
	for _, raw := range envelope.Decisions {
		if raw.Description == "" {
			skipped++
			continue
		}
		st.Decisions = append(st.Decisions, &meeting.Decision{
			ID:          fmt.Sprintf("decision_%d", len(st.Decisions)+1),
			Description: raw.Description,
			MadeBy:      raw.MadeBy,
			Evidence:    raw.Evidence,
			Timestamp:   raw.Timestamp,
		})
	}
	for _, raw := range envelope.Risks {
		if raw.Description == "" {
			skipped++
			continue
		}
		category := raw.Category
		if category != "risk" && category != "open_question" {
			category = "risk"
		}
		st.Risks = append(st.Risks, &meeting.Risk{
			ID:          fmt.Sprintf("risk_%d", len(st.Risks)+1),
			Description: raw.Description,
			Category:    category,
			MentionedBy: raw.MentionedBy,
			Evidence:    raw.Evidence,
			Timestamp:   raw.Timestamp,
		})
	}

	st.Note("Extraction: %d action items, %d decisions, %d risks",
		len(st.ActionItems), len(st.Decisions), len(st.Risks))
	if skipped > 0 {
		st.Note("Extraction: %d malformed records skipped", skipped)
	}

	e.log.Info("extraction completed",
		logging.F("run_id", st.RunID),
		logging.F("action_items", len(st.ActionItems)),
		logging.F("decisions", len(st.Decisions)),
		logging.F("risks", len(st.Risks)),
		logging.F("skipped", skipped))
	return nil
}
