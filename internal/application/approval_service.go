package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/remedy/internal/domain/backend"
	"github.com/felixgeelhaar/remedy/internal/domain/conversation"
	"github.com/felixgeelhaar/remedy/internal/domain/execution"
)

// ExtractStatement pulls the proposed mutating statement out of the
// executor's free-form tool output for human review. The output is
// parsed as JSON and the "query" field read; when parsing fails or the
// field is absent, the raw output is the candidate statement verbatim.
func ExtractStatement(toolOutput string) string {
	var parsed struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(toolOutput), &parsed); err == nil && parsed.Query != "" {
		return parsed.Query
	}
	return toolOutput
}

// ApprovalService is the gate around a backend-issued continuation
// token while a run is paused on a high-risk step. Approve and Reject
// are the only exits; there is no timeout, and the request may stay
// pending indefinitely.
type ApprovalService struct {
	log      *conversation.Log
	executor backend.Executor
	exec     *ExecutionService
	logger   *slog.Logger
}

// NewApprovalService creates an approval gate bound to the execution
// controller that owns the paused sessions.
func NewApprovalService(log *conversation.Log, executor backend.Executor, exec *ExecutionService, logger *slog.Logger) *ApprovalService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApprovalService{log: log, executor: executor, exec: exec, logger: logger}
}

// Approve presents the token with the (possibly edited) statement to
// the resume endpoint. On success the returned execution result is fed
// back into the controller exactly as a normal step response. On a
// failed attempt the gate stays in awaiting-approval: the token is not
// assumed invalidated, and the operator may retry explicitly.
func (s *ApprovalService) Approve(ctx context.Context, sess *Session, editedStatement string) error {
	if sess.Status() != execution.StatusAwaitingApproval {
		return fmt.Errorf("no approval pending: execution is %s", sess.Status())
	}

	token := sess.state.Token
	s.logger.Info("approving high-risk step",
		"incident_id", sess.inc.DisplayID(),
		"step", sess.state.StepIndex)

	res, err := s.executor.Resume(ctx, backend.ResumeRequest{
		Token:     token,
		Statement: editedStatement,
		Approved:  true,
	})
	if err != nil {
		s.logger.Warn("approval resume failed", "error", err)
		s.log.Append(conversation.NewFailedEntry(conversation.SystemNote{
			Text: fmt.Sprintf("approval could not be delivered: %s", backend.UserMessage(err)),
		}))
		return err
	}

	if err := sess.fsm.Transition("resume"); err != nil {
		s.logger.Error("state machine rejected resume", "error", err)
	}
	sess.pendingStatement = ""
	sess.state.Status = execution.StatusRunning

	s.exec.resumeFrom(ctx, sess, res)
	return nil
}

// Reject presents the token with a rejection decision. Rejection
// unconditionally terminates the plan; no further execution call is
// made afterwards, even when the resume endpoint is unreachable.
func (s *ApprovalService) Reject(ctx context.Context, sess *Session) error {
	if sess.Status() != execution.StatusAwaitingApproval {
		return fmt.Errorf("no approval pending: execution is %s", sess.Status())
	}

	token := sess.state.Token
	s.logger.Info("rejecting high-risk step",
		"incident_id", sess.inc.DisplayID(),
		"step", sess.state.StepIndex)

	if _, err := s.executor.Resume(ctx, backend.ResumeRequest{Token: token, Approved: false}); err != nil {
		// The run still terminates; the backend just could not be told.
		s.logger.Warn("rejection delivery failed", "error", err)
		s.log.Append(conversation.NewFailedEntry(conversation.SystemNote{
			Text: fmt.Sprintf("rejection could not be delivered: %s", backend.UserMessage(err)),
		}))
	}

	s.log.Append(conversation.NewEntry(conversation.SystemNote{
		Text: fmt.Sprintf("step %d rejected by operator; plan execution stopped", sess.state.StepIndex+1),
	}))

	if err := sess.fsm.Transition("reject"); err != nil {
		s.logger.Error("state machine rejected rejection", "error", err)
	}
	sess.pendingStatement = ""
	sess.state.RecordTerminal(execution.StatusFailed, sess.state.StepIndex, sess.state.StepDescription, sess.state.LastToolOutput, nil)
	return nil
}
