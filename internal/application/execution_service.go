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

// Session tracks one confirmed plan's execution run. It is created by
// ExecutionService.Execute and handed to ApprovalService and
// SummaryService until a terminal state is reached.
type Session struct {
	plan  execution.Plan
	inc   incident.Context
	fsm   *execution.StateMachine
	state *execution.State

	// pendingStatement is the extracted candidate statement while the
	// run awaits approval.
	pendingStatement string
}

// Status returns the current lifecycle state of the run.
func (s *Session) Status() execution.Status {
	return s.fsm.CurrentStatus()
}

// State returns a copy of the current progress record.
func (s *Session) State() execution.State {
	return *s.state
}

// Incident returns the incident context the run belongs to.
func (s *Session) Incident() incident.Context {
	return s.inc
}

// Plan returns the confirmed plan being executed.
func (s *Session) Plan() execution.Plan {
	return s.plan
}

// PendingStatement returns the candidate statement awaiting approval,
// or an empty string when the run is not paused.
func (s *Session) PendingStatement() string {
	if s.Status() != execution.StatusAwaitingApproval {
		return ""
	}
	return s.pendingStatement
}

// ExecutionService is the controller that steps a confirmed plan
// through the execution service, interpreting each response to decide
// whether to stop, continue automatically, or pause for approval.
type ExecutionService struct {
	log      *conversation.Log
	executor backend.Executor
	logger   *slog.Logger
}

// NewExecutionService creates an execution controller.
func NewExecutionService(log *conversation.Log, executor backend.Executor, logger *slog.Logger) *ExecutionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecutionService{log: log, executor: executor, logger: logger}
}

// Execute starts the run for a confirmed plan and advances it until the
// backend pauses for approval or reports a terminal status. Step
// failures are surfaced in the log; the error return is reserved for
// contract misuse.
func (s *ExecutionService) Execute(ctx context.Context, plan execution.Plan, inc incident.Context) (*Session, error) {
	if plan.IsEmpty() {
		return nil, fmt.Errorf("cannot execute an empty plan")
	}

	fsm, err := execution.NewStateMachine(inc.DisplayID())
	if err != nil {
		return nil, err
	}

	sess := &Session{
		plan:  plan,
		inc:   inc,
		fsm:   fsm,
		state: execution.NewState(),
	}

	s.logger.Info("starting plan execution",
		"incident_id", inc.DisplayID(),
		"steps", plan.StepCount())

	s.run(sess, stepLabel(plan, 0), func() (*backend.ExecutionResult, error) {
		return s.executor.Start(ctx, plan, inc)
	}, func(token execution.ContinuationToken) func() (*backend.ExecutionResult, error) {
		return func() (*backend.ExecutionResult, error) {
			return s.executor.Continue(ctx, token)
		}
	})

	return sess, nil
}

// resumeFrom feeds an approval-resume response back into the controller
// exactly as a normal step response, then keeps auto-advancing.
// Called by ApprovalService after a successful Resume.
func (s *ExecutionService) resumeFrom(ctx context.Context, sess *Session, first *backend.ExecutionResult) {
	token, cont := s.apply(sess, first, func(e conversation.Entry) {
		s.log.Append(e)
	})
	if !cont {
		return
	}
	s.run(sess, stepLabel(sess.plan, first.StepIndex+1), func() (*backend.ExecutionResult, error) {
		return s.executor.Continue(ctx, token)
	}, func(next execution.ContinuationToken) func() (*backend.ExecutionResult, error) {
		return func() (*backend.ExecutionResult, error) {
			return s.executor.Continue(ctx, next)
		}
	})
}

// run is the auto-advance loop: placeholder, call, resolve, repeat for
// the next step while the backend keeps reporting in-progress.
func (s *ExecutionService) run(sess *Session, label string, call func() (*backend.ExecutionResult, error), next func(execution.ContinuationToken) func() (*backend.ExecutionResult, error)) {
	for {
		handle := s.log.Append(conversation.NewPendingEntry(conversation.Placeholder{Label: label}))

		res, err := call()
		if err != nil {
			s.logger.Warn("execution call failed", "incident_id", sess.inc.DisplayID(), "error", err)
			replaceOrReport(s.log, s.logger, handle, conversation.NewFailedEntry(conversation.SystemNote{Text: backend.UserMessage(err)}))
			s.terminate(sess, execution.StatusFailed, "fail")
			return
		}

		token, cont := s.apply(sess, res, func(e conversation.Entry) {
			replaceOrReport(s.log, s.logger, handle, e)
		})
		if !cont {
			return
		}

		label = stepLabel(sess.plan, res.StepIndex+1)
		call = next(token)
	}
}

// apply interprets one execution response, emits the corresponding log
// entry through sink, and advances the state machine. It returns the
// continuation token and true when the loop should fetch the next step.
func (s *ExecutionService) apply(sess *Session, res *backend.ExecutionResult, sink func(conversation.Entry)) (execution.ContinuationToken, bool) {
	switch res.Status.Normalize() {
	case backend.StepInProgress:
		token, err := execution.NewContinuationToken(res.StateToken)
		if err != nil {
			sink(conversation.NewFailedEntry(conversation.SystemNote{
				Text: fmt.Sprintf("execution service reported progress without a continuation token: %s", res.Message),
			}))
			s.terminate(sess, execution.StatusFailed, "fail")
			return execution.ContinuationToken{}, false
		}

		sink(conversation.NewEntry(progressPayload(res, false)))
		sess.state.RecordProgress(res.StepIndex, res.StepDescription, res.ToolOutput, res.CompletedSteps)
		return token, true

	case backend.StepNeedsApproval:
		token, err := execution.NewContinuationToken(res.StateToken)
		if err != nil {
			sink(conversation.NewFailedEntry(conversation.SystemNote{
				Text: "execution service paused for approval without a continuation token",
			}))
			s.terminate(sess, execution.StatusFailed, "fail")
			return execution.ContinuationToken{}, false
		}

		statement := ExtractStatement(res.ToolOutput)
		sink(conversation.NewEntry(conversation.ApprovalRequest{
			Token:           token,
			Statement:       statement,
			StepIndex:       res.StepIndex,
			StepDescription: res.StepDescription,
		}))
		sess.state.RecordPause(token, res.StepIndex, res.StepDescription, res.ToolOutput)
		sess.pendingStatement = statement
		if err := sess.fsm.Transition("pause"); err != nil {
			s.logger.Error("state machine rejected pause", "error", err)
		}
		s.logger.Info("execution paused for approval",
			"incident_id", sess.inc.DisplayID(),
			"step", res.StepIndex)
		return execution.ContinuationToken{}, false

	case backend.StepFailed:
		msg := res.Message
		if msg == "" {
			msg = "step execution failed"
		}
		sink(conversation.NewFailedEntry(progressPayloadWithMessage(res, msg, true)))
		s.terminate(sess, execution.StatusFailed, "fail")
		sess.state.RecordTerminal(execution.StatusFailed, res.StepIndex, res.StepDescription, res.ToolOutput, res.CompletedSteps)
		return execution.ContinuationToken{}, false

	case backend.StepCompleted:
		sink(conversation.NewEntry(progressPayload(res, true)))
		s.terminate(sess, execution.StatusCompleted, "complete")
		sess.state.RecordTerminal(execution.StatusCompleted, res.StepIndex, res.StepDescription, res.ToolOutput, res.CompletedSteps)
		s.logger.Info("plan execution completed",
			"incident_id", sess.inc.DisplayID(),
			"completed_steps", len(res.CompletedSteps))
		return execution.ContinuationToken{}, false

	default:
		sink(conversation.NewFailedEntry(conversation.SystemNote{
			Text: fmt.Sprintf("execution service returned unknown status %q", res.Status),
		}))
		s.terminate(sess, execution.StatusFailed, "fail")
		return execution.ContinuationToken{}, false
	}
}

// terminate moves the state machine to a terminal status, tolerating
// the awaiting-approval detour on rejection paths.
func (s *ExecutionService) terminate(sess *Session, status execution.Status, event string) {
	if sess.fsm.CurrentStatus() == status {
		return
	}
	if err := sess.fsm.Transition(event); err != nil {
		s.logger.Error("state machine transition failed",
			"event", event,
			"current", sess.fsm.Current(),
			"error", err)
	}
	if status.IsTerminal() {
		sess.state.Status = status
	}
}

func progressPayload(res *backend.ExecutionResult, terminal bool) conversation.ExecutionProgress {
	return progressPayloadWithMessage(res, res.Message, terminal)
}

func progressPayloadWithMessage(res *backend.ExecutionResult, msg string, terminal bool) conversation.ExecutionProgress {
	return conversation.ExecutionProgress{
		StepIndex:       res.StepIndex,
		StepDescription: res.StepDescription,
		ToolOutput:      res.ToolOutput,
		Message:         msg,
		AgentThoughts:   res.AgentThoughts,
		ToolCalls:       res.ToolCalls,
		CompletedSteps:  res.CompletedSteps,
		Terminal:        terminal,
	}
}

func stepLabel(plan execution.Plan, index int) string {
	desc := plan.Step(index)
	if desc == "" {
		return fmt.Sprintf("executing step %d", index+1)
	}
	return fmt.Sprintf("executing step %d: %s", index+1, desc)
}
