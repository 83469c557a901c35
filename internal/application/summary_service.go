package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/remedy/internal/domain/backend"
	"github.com/felixgeelhaar/remedy/internal/domain/conversation"
	"github.com/felixgeelhaar/remedy/internal/domain/incident"
)

// SummaryService produces the closing report once a run has reached a
// terminal state. Generating is a one-shot action; idempotency is the
// caller's responsibility, and generating twice appends two entries.
type SummaryService struct {
	log        *conversation.Log
	summarizer backend.Summarizer
	logger     *slog.Logger
}

// NewSummaryService creates a summary trigger.
func NewSummaryService(log *conversation.Log, summarizer backend.Summarizer, logger *slog.Logger) *SummaryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryService{log: log, summarizer: summarizer, logger: logger}
}

// Generate calls the summary service with the run's full audit trail
// and execution-time estimate and appends the resulting summary entry.
// It requires a terminal session.
func (s *SummaryService) Generate(ctx context.Context, sess *Session) (*incident.ResolutionSummary, error) {
	st := sess.State()
	if !st.Status.IsTerminal() {
		return nil, fmt.Errorf("cannot summarize: execution is %s", st.Status)
	}

	req := backend.SummaryRequest{
		IncidentID:     sess.Incident().DisplayID(),
		Status:         st.Status.String(),
		ElapsedHours:   st.ElapsedHours(),
		CompletedSteps: st.CompletedSteps,
	}

	summary, ok := runStage(s.log, s.logger, "generating resolution summary",
		func() (*incident.ResolutionSummary, error) {
			return s.summarizer.Summarize(ctx, req)
		},
		func(r *incident.ResolutionSummary) conversation.Payload {
			return conversation.ExecutionSummary{Summary: *r}
		})
	if !ok {
		return nil, nil
	}

	s.logger.Info("resolution summary generated",
		"incident_id", req.IncidentID,
		"escalation_required", summary.EscalationRequired)
	return summary, nil
}
