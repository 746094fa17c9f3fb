// Package pipeline implements the hybrid resolution and validation pipeline:
// owner resolution, deadline resolution, and a validation engine over the
// extracted meeting records.
//
// Stages run strictly in that order; each stage fully completes before the
// next begins and each assumes the previous stage's invariants hold. The
// only suspending operation is the oracle round trip, which is retried
// internally and whose failure is always absorbed at the stage boundary:
// a run never aborts mid-pipeline because of resolution failures. The
// worst outcome is more items flagged needs_review, each with an
// inspectable reason.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/otherjamesbrown/minutes-cli/pkg/directory"
	merrors "github.com/otherjamesbrown/minutes-cli/pkg/errors"
	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
	"github.com/otherjamesbrown/minutes-cli/pkg/meeting"
	"github.com/otherjamesbrown/minutes-cli/pkg/oracle"
)

// DefaultConfidenceThreshold gates review-flagging for owner matches.
const DefaultConfidenceThreshold = 0.7

// DefaultOverloadLimit is the largest (owner, deadline) group size that is
// not reported as an overload.
const DefaultOverloadLimit = 3

// OracleClient is the oracle capability consumed by the stages. Satisfied
// by *oracle.Client.
type OracleClient interface {
	Name() string
	ResolveOwners(ctx context.Context, people []directory.Person, items []oracle.UnresolvedOwner) ([]oracle.OwnerMatch, error)
	ResolveDeadlines(ctx context.Context, referenceDate time.Time, items []oracle.UnresolvedDeadline) ([]oracle.DeadlineAnswer, error)
	ReviewItems(ctx context.Context, items []oracle.ReviewItem) ([]oracle.Finding, error)
}

// Config holds pipeline tuning.
type Config struct {
	// ConfidenceThreshold flags oracle owner matches below it for review.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// OverloadLimit is the max items per (owner, deadline) group before an
	// overload warning is reported.
	OverloadLimit int `yaml:"overload_limit"`
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		OverloadLimit:       DefaultOverloadLimit,
	}
}

// Runner threads a meeting state through the resolution stages.
type Runner struct {
	config Config
	oracle OracleClient
	log    logging.Logger
	tracer *stageTracer
}

// NewRunner creates a pipeline runner. A nil logger discards output.
func NewRunner(cfg Config, client OracleClient, log logging.Logger) *Runner {
	if cfg.ConfidenceThreshold == 0 {
		cfg.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if cfg.OverloadLimit == 0 {
		cfg.OverloadLimit = DefaultOverloadLimit
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Runner{
		config: cfg,
		oracle: client,
		log:    log,
		tracer: newStageTracer(),
	}
}

// Run executes owner resolution, deadline resolution, and validation over
// the state, in that order, mutating the item collections in place and
// appending processing notes. It returns the validation report.
//
// Precondition failures (no usable directory) abort before any stage runs.
// Oracle failures never do; they surface as notes and review flags.
func (r *Runner) Run(ctx context.Context, st *meeting.State) (*Report, error) {
	if st == nil {
		return nil, fmt.Errorf("nil state: %w", merrors.ErrInvalidState)
	}
	if st.Directory == nil || st.Directory.Len() == 0 {
		return nil, fmt.Errorf("pipeline requires a people directory: %w", merrors.ErrDirectoryInvalid)
	}

	log := r.log.With(logging.F("run_id", st.RunID))
	log.Info("pipeline started",
		logging.F("items", len(st.ActionItems)),
		logging.F("reference_date", st.ReferenceDate.Format("2006-01-02")))

	stageCtx, span := r.tracer.startStage(ctx, "owner_resolution", len(st.ActionItems))
	r.resolveOwners(stageCtx, st, log)
	span.End()

	stageCtx, span = r.tracer.startStage(ctx, "deadline_resolution", len(st.ActionItems))
	r.resolveDeadlines(stageCtx, st, log)
	span.End()

	stageCtx, span = r.tracer.startStage(ctx, "validation", len(st.ActionItems))
	report := r.validate(stageCtx, st, log)
	span.End()

	log.Info("pipeline completed",
		logging.F("items", len(st.ActionItems)),
		logging.F("needs_review", len(report.NeedsReview)))
	return report, nil
}
