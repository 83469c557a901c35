// Package application wires the incident workflow: the four read-only
// pipeline stages, stepwise plan execution with its approval gate, and
// the closing summary. Services append typed entries to the shared
// conversation log; no stage failure escapes as a native error.
package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/remedy/internal/domain/backend"
	"github.com/felixgeelhaar/remedy/internal/domain/conversation"
	"github.com/felixgeelhaar/remedy/internal/domain/execution"
	"github.com/felixgeelhaar/remedy/internal/domain/incident"
)

// runStage is the single control-flow primitive behind the
// stop-on-first-failure policy. It appends a pending placeholder, issues
// the remote call, and replaces the placeholder exactly once: with the
// mapped payload on success, or with a failed note carrying the
// user-visible error rendering. The false return tells the caller to
// stop the pipeline.
func runStage[T any](log *conversation.Log, logger *slog.Logger, label string, call func() (T, error), payload func(T) conversation.Payload) (T, bool) {
	handle := log.Append(conversation.NewPendingEntry(conversation.Placeholder{Label: label}))

	out, err := call()
	if err != nil {
		logger.Warn("stage failed", "stage", label, "error", err)
		replaceOrReport(log, logger, handle, conversation.NewFailedEntry(conversation.SystemNote{Text: backend.UserMessage(err)}))
		var zero T
		return zero, false
	}

	replaceOrReport(log, logger, handle, conversation.NewEntry(payload(out)))
	return out, true
}

// replaceOrReport performs the placeholder's one replace. A failure here
// means the replace-once discipline was broken by the caller; it is
// reported to the logger, never to the user.
func replaceOrReport(log *conversation.Log, logger *slog.Logger, handle conversation.Handle, e conversation.Entry) {
	if err := log.Replace(handle.ID(), e); err != nil {
		logger.Error("placeholder replace failed", "entry_id", handle.ID().String(), "error", err)
	}
}

// PipelineService drives the fixed read-only stage sequence
// Parse -> HistoryMatch -> Enrich -> PlanGenerate for one submitted
// report. Stages run strictly in order; each request is built from the
// previous stage's successful output, so the first failure stops the
// whole pipeline.
type PipelineService struct {
	log     *conversation.Log
	parser  backend.Parser
	matcher backend.HistoryMatcher
	enrich  backend.Enricher
	planner backend.Planner
	logger  *slog.Logger
}

// NewPipelineService creates a pipeline service over the given log and
// stage clients.
func NewPipelineService(log *conversation.Log, parser backend.Parser, matcher backend.HistoryMatcher, enrich backend.Enricher, planner backend.Planner, logger *slog.Logger) *PipelineService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PipelineService{
		log:     log,
		parser:  parser,
		matcher: matcher,
		enrich:  enrich,
		planner: planner,
		logger:  logger,
	}
}

// PipelineOutcome is the result of one pipeline run. Plan is nil unless
// every stage succeeded with a non-empty plan; the pipeline then pauses
// awaiting explicit user confirmation before any execution happens.
type PipelineOutcome struct {
	Context *incident.Context
	Plan    *execution.Plan
}

// Confirmable returns true if the run produced a plan awaiting
// confirmation.
func (o PipelineOutcome) Confirmable() bool {
	return o.Plan != nil && !o.Plan.IsEmpty()
}

// Submit runs the four stages for one raw report. Stage failures are
// surfaced in the log, never returned; the error return is reserved for
// invalid input.
func (s *PipelineService) Submit(ctx context.Context, rawText string, source incident.SourceType) (PipelineOutcome, error) {
	if rawText == "" {
		return PipelineOutcome{}, fmt.Errorf("report text cannot be empty")
	}
	if !source.IsValid() {
		return PipelineOutcome{}, fmt.Errorf("invalid source type: %s", source)
	}

	s.log.Append(conversation.NewEntry(conversation.User{Text: rawText, Source: source}))

	inc, ok := runStage(s.log, s.logger, "parsing incident report",
		func() (*incident.Context, error) {
			return s.parser.Parse(ctx, backend.ParseRequest{SourceType: source, RawText: rawText})
		},
		func(c *incident.Context) conversation.Payload {
			return conversation.ParseResult{Context: *c}
		})
	if !ok {
		return PipelineOutcome{}, nil
	}

	// Historical grounding is a hard dependency: without it the quality
	// of enrichment and planning cannot be trusted.
	match, ok := runStage(s.log, s.logger, "matching historical cases",
		func() (*backend.HistoryMatchResult, error) {
			return s.matcher.Match(ctx, *inc)
		},
		func(m *backend.HistoryMatchResult) conversation.Payload {
			return conversation.HistoryMatchResult{
				Matches:          m.MatchedCases,
				TotalCandidates:  m.TotalCandidates,
				ValidatedCount:   m.ValidatedCount,
				ProcessingMillis: m.ProcessingMillis,
			}
		})
	if !ok {
		return PipelineOutcome{Context: inc}, nil
	}
	s.logger.Debug("history match completed",
		"incident_id", inc.DisplayID(),
		"matched", len(match.MatchedCases),
		"candidates", match.TotalCandidates)

	enrichment, ok := runStage(s.log, s.logger, "retrieving knowledge base",
		func() (*backend.EnrichmentResult, error) {
			return s.enrich.Enrich(ctx, *inc)
		},
		func(e *backend.EnrichmentResult) conversation.Payload {
			return conversation.EnrichmentResult{
				Snippets:   e.RetrievedSOPs,
				Summary:    e.RetrievalSummary,
				TotalFound: e.TotalFound,
			}
		})
	if !ok {
		return PipelineOutcome{Context: inc}, nil
	}

	plan, ok := runStage(s.log, s.logger, "generating execution plan",
		func() (execution.Plan, error) {
			res, err := s.planner.GeneratePlan(ctx, *inc, *enrichment)
			if err != nil {
				return execution.Plan{}, err
			}
			if !res.Success || len(res.Plan) == 0 {
				msg := res.Message
				if msg == "" {
					msg = "the planner returned no executable steps"
				}
				return execution.Plan{}, &backend.EmptyResultError{Op: "plan", Message: msg}
			}
			return execution.NewPlan(inc.IncidentID, res.Plan), nil
		},
		func(p execution.Plan) conversation.Payload {
			return conversation.PlanProposal{Plan: p}
		})
	if !ok {
		return PipelineOutcome{Context: inc}, nil
	}

	s.logger.Info("plan proposed, awaiting confirmation",
		"incident_id", inc.DisplayID(),
		"steps", plan.StepCount())
	return PipelineOutcome{Context: inc, Plan: &plan}, nil
}
