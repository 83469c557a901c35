package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/remedy/internal/domain/backend"
	"github.com/felixgeelhaar/remedy/internal/domain/conversation"
	"github.com/felixgeelhaar/remedy/internal/domain/incident"
)

func newPipelineFixture() (*conversation.Log, *stubParser, *stubMatcher, *stubEnricher, *stubPlanner, *PipelineService) {
	log := conversation.NewLog()
	parser := &stubParser{out: testIncident()}
	matcher := &stubMatcher{out: &backend.HistoryMatchResult{
		MatchedCases:    []incident.MatchedCase{{Case: incident.HistoricalCase{ID: "HIST-7"}}},
		TotalCandidates: 12,
	}}
	enricher := &stubEnricher{out: &backend.EnrichmentResult{
		RetrievedSOPs:    []incident.SOPSnippet{{Content: "restart the gate-in worker"}},
		RetrievalSummary: "one relevant SOP found",
		TotalFound:       1,
	}}
	planner := &stubPlanner{out: &backend.PlanResult{
		Plan:    []string{"restart gate-in worker", "verify EDI queue"},
		Success: true,
	}}
	svc := NewPipelineService(log, parser, matcher, enricher, planner, nil)
	return log, parser, matcher, enricher, planner, svc
}

func TestPipelineHappyPath(t *testing.T) {
	log, parser, matcher, enricher, planner, svc := newPipelineFixture()

	outcome, err := svc.Submit(context.Background(), "gate-in failing", incident.SourceEmail)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if !outcome.Confirmable() {
		t.Fatal("expected a confirmable plan")
	}
	if outcome.Plan.StepCount() != 2 {
		t.Errorf("plan steps = %d", outcome.Plan.StepCount())
	}
	if outcome.Context.IncidentID != "INC-1001" {
		t.Errorf("incident id = %s", outcome.Context.IncidentID)
	}

	want := []conversation.Kind{
		conversation.KindUser,
		conversation.KindParseResult,
		conversation.KindHistoryMatch,
		conversation.KindEnrichment,
		conversation.KindPlanProposal,
	}
	got := kinds(log.Snapshot())
	if !kindsEqual(got, want) {
		t.Errorf("log kinds = %v, want %v", got, want)
	}

	for _, e := range log.Snapshot() {
		if e.DeliveryState != conversation.DeliveryDelivered {
			t.Errorf("entry %s not delivered: %s", e.Payload.Kind(), e.DeliveryState)
		}
	}

	if parser.calls != 1 || matcher.calls != 1 || enricher.calls != 1 || planner.calls != 1 {
		t.Errorf("call counts = %d %d %d %d", parser.calls, matcher.calls, enricher.calls, planner.calls)
	}
}

func TestPipelineStopsOnParseFailure(t *testing.T) {
	log, parser, matcher, enricher, planner, svc := newPipelineFixture()
	parser.out = nil
	parser.err = &backend.ServiceError{Op: "parse", Message: "Incident parsing failed", HTTPStatus: 500}

	outcome, err := svc.Submit(context.Background(), "gate-in failing", incident.SourceEmail)
	if err != nil {
		t.Fatalf("submit returned native error: %v", err)
	}
	if outcome.Confirmable() || outcome.Context != nil {
		t.Error("failed parse should leave nothing downstream")
	}

	if matcher.calls != 0 || enricher.calls != 0 || planner.calls != 0 {
		t.Errorf("later stages were invoked: %d %d %d", matcher.calls, enricher.calls, planner.calls)
	}

	entries := log.Snapshot()
	want := []conversation.Kind{conversation.KindUser, conversation.KindSystemNote}
	if !kindsEqual(kinds(entries), want) {
		t.Fatalf("log kinds = %v, want %v", kinds(entries), want)
	}
	if entries[1].DeliveryState != conversation.DeliveryFailed {
		t.Errorf("failure entry state = %s", entries[1].DeliveryState)
	}
	note := entries[1].Payload.(conversation.SystemNote)
	if note.Text != "Incident parsing failed" {
		t.Errorf("failure text = %q", note.Text)
	}
}

func TestPipelineStopsOnMidStageFailure(t *testing.T) {
	log, _, matcher, enricher, planner, svc := newPipelineFixture()
	matcher.out = nil
	matcher.err = &backend.TransportError{Op: "history-match", Err: errors.New("connection refused")}

	outcome, err := svc.Submit(context.Background(), "gate-in failing", incident.SourceEmail)
	if err != nil {
		t.Fatalf("submit returned native error: %v", err)
	}
	if outcome.Confirmable() {
		t.Error("failed match should not produce a plan")
	}
	if outcome.Context == nil {
		t.Error("parse output should survive a later failure")
	}

	if enricher.calls != 0 || planner.calls != 0 {
		t.Errorf("stages after the failure were invoked: %d %d", enricher.calls, planner.calls)
	}

	entries := log.Snapshot()
	want := []conversation.Kind{
		conversation.KindUser,
		conversation.KindParseResult,
		conversation.KindSystemNote,
	}
	if !kindsEqual(kinds(entries), want) {
		t.Fatalf("log kinds = %v, want %v", kinds(entries), want)
	}
	note := entries[2].Payload.(conversation.SystemNote)
	if note.Text != "connection refused" {
		t.Errorf("failure text = %q", note.Text)
	}
}

func TestPipelineEmptyPlanIsNotConfirmable(t *testing.T) {
	log, _, _, _, planner, svc := newPipelineFixture()
	planner.out = &backend.PlanResult{Plan: nil, Success: true}

	outcome, err := svc.Submit(context.Background(), "gate-in failing", incident.SourceEmail)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if outcome.Confirmable() {
		t.Error("empty plan must not be confirmable")
	}

	entries := log.Snapshot()
	last := entries[len(entries)-1]
	if last.Payload.Kind() != conversation.KindSystemNote {
		t.Fatalf("last entry = %s", last.Payload.Kind())
	}
	if last.DeliveryState != conversation.DeliveryFailed {
		t.Errorf("empty plan entry state = %s", last.DeliveryState)
	}
	note := last.Payload.(conversation.SystemNote)
	if !strings.Contains(note.Text, "no executable steps") {
		t.Errorf("failure text = %q", note.Text)
	}
}

func TestPipelinePlannerFailureMessage(t *testing.T) {
	log, _, _, _, planner, svc := newPipelineFixture()
	planner.out = &backend.PlanResult{Success: false, Message: "no SOP coverage for this module"}

	if _, err := svc.Submit(context.Background(), "gate-in failing", incident.SourceEmail); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	entries := log.Snapshot()
	note := entries[len(entries)-1].Payload.(conversation.SystemNote)
	if note.Text != "no SOP coverage for this module" {
		t.Errorf("failure text = %q", note.Text)
	}
}

func TestPipelineRejectsInvalidInput(t *testing.T) {
	_, _, _, _, _, svc := newPipelineFixture()

	if _, err := svc.Submit(context.Background(), "", incident.SourceEmail); err == nil {
		t.Error("empty report should be rejected")
	}
	if _, err := svc.Submit(context.Background(), "text", incident.SourceType("carrier pigeon")); err == nil {
		t.Error("unknown source should be rejected")
	}
}
