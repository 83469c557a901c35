package application

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/remedy/internal/domain/backend"
	"github.com/felixgeelhaar/remedy/internal/domain/conversation"
	"github.com/felixgeelhaar/remedy/internal/domain/execution"
	"github.com/felixgeelhaar/remedy/internal/domain/incident"
)

func testIncident() *incident.Context {
	return &incident.Context{
		IncidentID:     "INC-1001",
		SourceType:     incident.SourceEmail,
		Urgency:        incident.UrgencyHigh,
		AffectedModule: incident.ModuleContainer,
		ProblemSummary: "container gate-in failing with CNTR-409",
		ErrorCode:      "CNTR-409",
		RawText:        "gate-in for MSKU1234567 fails since 09:00",
	}
}

type stubParser struct {
	calls int
	out   *incident.Context
	err   error
}

func (s *stubParser) Parse(_ context.Context, _ backend.ParseRequest) (*incident.Context, error) {
	s.calls++
	return s.out, s.err
}

type stubMatcher struct {
	calls int
	out   *backend.HistoryMatchResult
	err   error
}

func (s *stubMatcher) Match(_ context.Context, _ incident.Context) (*backend.HistoryMatchResult, error) {
	s.calls++
	return s.out, s.err
}

type stubEnricher struct {
	calls int
	out   *backend.EnrichmentResult
	err   error
}

func (s *stubEnricher) Enrich(_ context.Context, _ incident.Context) (*backend.EnrichmentResult, error) {
	s.calls++
	return s.out, s.err
}

type stubPlanner struct {
	calls int
	out   *backend.PlanResult
	err   error
}

func (s *stubPlanner) GeneratePlan(_ context.Context, _ incident.Context, _ backend.EnrichmentResult) (*backend.PlanResult, error) {
	s.calls++
	return s.out, s.err
}

// scriptedExecutor replays a fixed sequence of step responses. Start and
// Continue consume from the same script; Resume consumes its own queue
// and records every request it was given.
type scriptedExecutor struct {
	script    []*backend.ExecutionResult
	scriptErr error

	resumeScript []*backend.ExecutionResult
	resumeErrs   []error

	startCalls     int
	continueCalls  int
	continueTokens []string
	resumeReqs     []backend.ResumeRequest
}

func (s *scriptedExecutor) next() (*backend.ExecutionResult, error) {
	if s.scriptErr != nil {
		return nil, s.scriptErr
	}
	if len(s.script) == 0 {
		return nil, fmt.Errorf("scripted executor exhausted")
	}
	res := s.script[0]
	s.script = s.script[1:]
	return res, nil
}

func (s *scriptedExecutor) Start(_ context.Context, _ execution.Plan, _ incident.Context) (*backend.ExecutionResult, error) {
	s.startCalls++
	return s.next()
}

func (s *scriptedExecutor) Continue(_ context.Context, token execution.ContinuationToken) (*backend.ExecutionResult, error) {
	s.continueCalls++
	s.continueTokens = append(s.continueTokens, token.String())
	return s.next()
}

func (s *scriptedExecutor) Resume(_ context.Context, req backend.ResumeRequest) (*backend.ExecutionResult, error) {
	s.resumeReqs = append(s.resumeReqs, req)
	if len(s.resumeErrs) > 0 {
		err := s.resumeErrs[0]
		s.resumeErrs = s.resumeErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if len(s.resumeScript) == 0 {
		return nil, fmt.Errorf("resume script exhausted")
	}
	res := s.resumeScript[0]
	s.resumeScript = s.resumeScript[1:]
	return res, nil
}

type stubSummarizer struct {
	calls int
	req   backend.SummaryRequest
	out   *incident.ResolutionSummary
	err   error
}

func (s *stubSummarizer) Summarize(_ context.Context, req backend.SummaryRequest) (*incident.ResolutionSummary, error) {
	s.calls++
	s.req = req
	return s.out, s.err
}

func kinds(entries []conversation.Entry) []conversation.Kind {
	out := make([]conversation.Kind, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Payload.Kind())
	}
	return out
}

func kindsEqual(got, want []conversation.Kind) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
