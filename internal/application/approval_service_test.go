package application

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/remedy/internal/domain/backend"
	"github.com/felixgeelhaar/remedy/internal/domain/conversation"
	"github.com/felixgeelhaar/remedy/internal/domain/execution"
	"github.com/felixgeelhaar/remedy/internal/domain/incident"
)

func TestExtractStatement(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"json with query field", `{"query":"UPDATE t SET x = 1"}`, "UPDATE t SET x = 1"},
		{"json without query field", `{"action":"restart"}`, `{"action":"restart"}`},
		{"json with empty query", `{"query":""}`, `{"query":""}`},
		{"not json", "plain tool output", "plain tool output"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractStatement(tc.in); got != tc.want {
				t.Errorf("ExtractStatement(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// pausedFixture starts a run that immediately pauses on tok-1, ready for
// an approval decision.
func pausedFixture(t *testing.T, exec *scriptedExecutor) (*conversation.Log, *ExecutionService, *ApprovalService, *Session) {
	t.Helper()

	exec.script = append([]*backend.ExecutionResult{{
		Status:          backend.StepNeedsApproval,
		StepIndex:       0,
		StepDescription: "disable gate",
		ToolOutput:      `{"query":"UPDATE gate_config SET enabled = false"}`,
		StateToken:      "tok-1",
	}}, exec.script...)

	log := conversation.NewLog()
	execSvc := NewExecutionService(log, exec, nil)
	apprSvc := NewApprovalService(log, exec, execSvc, nil)

	sess, err := execSvc.Execute(context.Background(), testPlan(), *testIncident())
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if sess.Status() != execution.StatusAwaitingApproval {
		t.Fatalf("fixture status = %s", sess.Status())
	}
	return log, execSvc, apprSvc, sess
}

func TestApproveResumesWithEditedStatement(t *testing.T) {
	exec := &scriptedExecutor{
		resumeScript: []*backend.ExecutionResult{
			{Status: backend.StepInProgress, StepIndex: 1, StepDescription: "verify EDI queue", StateToken: "tok-2"},
		},
		script: []*backend.ExecutionResult{
			{Status: backend.StepCompleted, StepIndex: 1, StepDescription: "verify EDI queue", CompletedSteps: []execution.CompletedStep{
				{StepIndex: 0, Description: "disable gate", Status: "completed"},
				{StepIndex: 1, Description: "verify EDI queue", Status: "completed"},
			}},
		},
	}
	log, _, apprSvc, sess := pausedFixture(t, exec)

	edited := "UPDATE gate_config SET enabled = false WHERE terminal = 'T1'"
	if err := apprSvc.Approve(context.Background(), sess, edited); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if len(exec.resumeReqs) != 1 {
		t.Fatalf("resume calls = %d", len(exec.resumeReqs))
	}
	req := exec.resumeReqs[0]
	if req.Token.String() != "tok-1" {
		t.Errorf("resume token = %q", req.Token.String())
	}
	if !req.Approved {
		t.Error("resume was not an approval")
	}
	if req.Statement != edited {
		t.Errorf("resume statement = %q", req.Statement)
	}

	if sess.Status() != execution.StatusCompleted {
		t.Errorf("final status = %s", sess.Status())
	}
	if got := len(sess.State().CompletedSteps); got != 2 {
		t.Errorf("completed steps = %d", got)
	}
	if exec.continueTokens[0] != "tok-2" {
		t.Errorf("continue token after resume = %q", exec.continueTokens[0])
	}

	want := []conversation.Kind{
		conversation.KindApprovalRequest,
		conversation.KindExecutionProgress,
		conversation.KindExecutionProgress,
	}
	if !kindsEqual(kinds(log.Snapshot()), want) {
		t.Errorf("log kinds = %v", kinds(log.Snapshot()))
	}
	if sess.PendingStatement() != "" {
		t.Errorf("pending statement survived the approval: %q", sess.PendingStatement())
	}
}

func TestApproveCompletesDirectly(t *testing.T) {
	exec := &scriptedExecutor{
		resumeScript: []*backend.ExecutionResult{
			{Status: backend.StepCompleted, StepIndex: 0, StepDescription: "disable gate", CompletedSteps: []execution.CompletedStep{
				{StepIndex: 0, Description: "disable gate", Status: "completed"},
				{StepIndex: 1, Description: "verify EDI queue", Status: "completed"},
			}},
		},
	}
	log, _, apprSvc, sess := pausedFixture(t, exec)

	if err := apprSvc.Approve(context.Background(), sess, sess.PendingStatement()); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	want := []conversation.Kind{
		conversation.KindApprovalRequest,
		conversation.KindExecutionProgress,
	}
	if !kindsEqual(kinds(log.Snapshot()), want) {
		t.Fatalf("log kinds = %v", kinds(log.Snapshot()))
	}

	entries := log.Snapshot()
	prog := entries[1].Payload.(conversation.ExecutionProgress)
	if len(prog.CompletedSteps) != 2 {
		t.Errorf("completed steps in entry = %d", len(prog.CompletedSteps))
	}
	if sess.Status() != execution.StatusCompleted {
		t.Errorf("status = %s", sess.Status())
	}
	if exec.continueCalls != 0 {
		t.Errorf("terminal resume should not trigger a continue: %d", exec.continueCalls)
	}

	// The terminal session is now summarizable.
	summarizer := &stubSummarizer{out: &incident.ResolutionSummary{IncidentID: "INC-1001", Outcome: "resolved"}}
	if _, err := NewSummaryService(log, summarizer, nil).Generate(context.Background(), sess); err != nil {
		t.Fatalf("summary after approval failed: %v", err)
	}
}

func TestFailedApproveKeepsGateOpenForRetry(t *testing.T) {
	exec := &scriptedExecutor{
		resumeErrs: []error{&backend.TransportError{Op: "approve", Err: errors.New("connection refused")}, nil},
		resumeScript: []*backend.ExecutionResult{
			{Status: backend.StepCompleted, StepIndex: 1, StepDescription: "verify EDI queue"},
		},
	}
	log, _, apprSvc, sess := pausedFixture(t, exec)

	if err := apprSvc.Approve(context.Background(), sess, sess.PendingStatement()); err == nil {
		t.Fatal("approve should surface the delivery failure")
	}

	if sess.Status() != execution.StatusAwaitingApproval {
		t.Fatalf("gate closed after failed approve: %s", sess.Status())
	}
	if sess.PendingStatement() == "" {
		t.Error("pending statement lost after failed approve")
	}

	entries := log.Snapshot()
	last := entries[len(entries)-1]
	if last.DeliveryState != conversation.DeliveryFailed {
		t.Errorf("failure note state = %s", last.DeliveryState)
	}

	// Retry with the same token succeeds.
	if err := apprSvc.Approve(context.Background(), sess, sess.PendingStatement()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if len(exec.resumeReqs) != 2 {
		t.Fatalf("resume calls = %d", len(exec.resumeReqs))
	}
	if exec.resumeReqs[1].Token.String() != "tok-1" {
		t.Errorf("retry token = %q", exec.resumeReqs[1].Token.String())
	}
	if sess.Status() != execution.StatusCompleted {
		t.Errorf("final status = %s", sess.Status())
	}
}

func TestRejectTerminatesUnconditionally(t *testing.T) {
	exec := &scriptedExecutor{
		resumeScript: []*backend.ExecutionResult{
			{Status: backend.StepFailed, Message: "Execution rejected by user."},
		},
	}
	log, _, apprSvc, sess := pausedFixture(t, exec)

	if err := apprSvc.Reject(context.Background(), sess); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	if sess.Status() != execution.StatusFailed {
		t.Errorf("status after reject = %s", sess.Status())
	}
	if len(exec.resumeReqs) != 1 || exec.resumeReqs[0].Approved {
		t.Errorf("resume reqs = %+v", exec.resumeReqs)
	}
	if exec.continueCalls != 0 {
		t.Errorf("execution continued after rejection: %d", exec.continueCalls)
	}

	// No approved resume and no summary appears in the log.
	for _, e := range log.Snapshot() {
		switch e.Payload.Kind() {
		case conversation.KindExecutionSummary:
			t.Error("rejection must not auto-generate a summary")
		case conversation.KindExecutionProgress:
			t.Error("rejection must not produce further step progress")
		}
	}
}

func TestRejectSurvivesDeliveryFailure(t *testing.T) {
	exec := &scriptedExecutor{
		resumeErrs: []error{&backend.TransportError{Op: "approve", Err: errors.New("connection refused")}},
	}
	_, _, apprSvc, sess := pausedFixture(t, exec)

	if err := apprSvc.Reject(context.Background(), sess); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if sess.Status() != execution.StatusFailed {
		t.Errorf("status = %s", sess.Status())
	}
}

func TestApprovalRequiresPendingGate(t *testing.T) {
	exec := &scriptedExecutor{script: []*backend.ExecutionResult{
		{Status: backend.StepCompleted, StepIndex: 0, StepDescription: "restart"},
	}}
	log := conversation.NewLog()
	execSvc := NewExecutionService(log, exec, nil)
	apprSvc := NewApprovalService(log, exec, execSvc, nil)

	sess, err := execSvc.Execute(context.Background(), testPlan(), *testIncident())
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if err := apprSvc.Approve(context.Background(), sess, "x"); err == nil {
		t.Error("approve without a pending gate should fail")
	}
	if err := apprSvc.Reject(context.Background(), sess); err == nil {
		t.Error("reject without a pending gate should fail")
	}
}
