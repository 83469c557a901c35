// Package backend defines the contracts of the five remote services the
// workflow orchestrator consumes, together with the error taxonomy every
// call site converts failures into. The orchestrator is a pure consumer;
// the request and response shapes mirror the services' wire formats.
package backend

import (
	"context"

	"github.com/felixgeelhaar/remedy/internal/domain/execution"
	"github.com/felixgeelhaar/remedy/internal/domain/incident"
)

// ParseRequest is the input to the parse stage.
type ParseRequest struct {
	SourceType incident.SourceType `json:"source_type"`
	RawText    string              `json:"raw_text"`
}

// Parser turns a raw incident report into a structured context.
type Parser interface {
	Parse(ctx context.Context, req ParseRequest) (*incident.Context, error)
}

// HistoryMatchResult is the history-match stage response.
type HistoryMatchResult struct {
	IncidentID       string                 `json:"incident_id,omitempty"`
	MatchedCases     []incident.MatchedCase `json:"matched_cases"`
	TotalCandidates  int                    `json:"total_candidates"`
	ModuleFiltered   int                    `json:"module_filtered_count"`
	SimilarityKept   int                    `json:"similarity_filtered_count"`
	ValidatedCount   int                    `json:"gpt_validated_count"`
	ProcessingMillis float64                `json:"processing_time_ms"`
}

// HistoryMatcher finds resolved historical cases similar to the incident.
type HistoryMatcher interface {
	Match(ctx context.Context, inc incident.Context) (*HistoryMatchResult, error)
}

// EnrichmentResult is the knowledge-base enrichment stage response.
type EnrichmentResult struct {
	IncidentID       string                `json:"incident_id,omitempty"`
	ProblemSummary   string                `json:"problem_summary"`
	AffectedModule   string                `json:"affected_module,omitempty"`
	ErrorCode        string                `json:"error_code,omitempty"`
	Urgency          string                `json:"urgency"`
	RetrievedSOPs    []incident.SOPSnippet `json:"retrieved_sops"`
	RetrievalSummary string                `json:"retrieval_summary"`
	TotalFound       int                   `json:"total_sops_found"`
}

// Enricher retrieves knowledge-base material relevant to the incident.
type Enricher interface {
	Enrich(ctx context.Context, inc incident.Context) (*EnrichmentResult, error)
}

// PlanResult is the plan-generation stage response.
type PlanResult struct {
	Plan    []string `json:"plan"`
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
}

// Planner generates a remediation plan from the incident context and the
// enrichment output.
type Planner interface {
	GeneratePlan(ctx context.Context, inc incident.Context, enrichment EnrichmentResult) (*PlanResult, error)
}

// StepStatus is the status field of an execution service response.
type StepStatus string

const (
	StepInProgress    StepStatus = "in_progress"
	StepNeedsApproval StepStatus = "needs_approval"
	StepFailed        StepStatus = "failed"
	StepCompleted     StepStatus = "completed"
)

// Normalize folds the status aliases some deployments emit into the
// canonical constants.
func (s StepStatus) Normalize() StepStatus {
	switch s {
	case "running":
		return StepInProgress
	case "awaiting_approval":
		return StepNeedsApproval
	default:
		return s
	}
}

// ExecutionResult is one step outcome reported by the execution service.
// A non-empty StateToken together with StepNeedsApproval signals a pause
// for human approval; on StepInProgress it is the handle for fetching
// the next step.
type ExecutionResult struct {
	Status          StepStatus                `json:"status"`
	StepIndex       int                       `json:"step"`
	StepDescription string                    `json:"step_description"`
	ToolOutput      string                    `json:"tool_output,omitempty"`
	StateToken      string                    `json:"state_token,omitempty"`
	Message         string                    `json:"message,omitempty"`
	AgentThoughts   string                    `json:"agent_thoughts,omitempty"`
	ToolCalls       string                    `json:"tool_calls,omitempty"`
	CompletedSteps  []execution.CompletedStep `json:"completed_steps,omitempty"`
}

// ResumeRequest carries a human approval decision back to the execution
// service. The token is presented unchanged; on approval the statement
// may have been edited by the operator.
type ResumeRequest struct {
	Token     execution.ContinuationToken
	Statement string
	Approved  bool
}

// Executor drives stepwise plan execution. Start issues the first call
// for a confirmed plan; Continue fetches the next step after a
// non-terminal response; Resume re-enters execution after an approval
// decision.
type Executor interface {
	Start(ctx context.Context, plan execution.Plan, inc incident.Context) (*ExecutionResult, error)
	Continue(ctx context.Context, token execution.ContinuationToken) (*ExecutionResult, error)
	Resume(ctx context.Context, req ResumeRequest) (*ExecutionResult, error)
}

// SummaryRequest asks for the closing report of a finished run.
type SummaryRequest struct {
	IncidentID     string                    `json:"incident_id"`
	Status         string                    `json:"execution_status"`
	Notes          string                    `json:"execution_notes,omitempty"`
	ElapsedHours   float64                   `json:"total_execution_time_hours"`
	CompletedSteps []execution.CompletedStep `json:"completed_steps"`
}

// Summarizer produces the resolution summary, including escalation
// metadata when the incident could not be fully auto-resolved.
type Summarizer interface {
	Summarize(ctx context.Context, req SummaryRequest) (*incident.ResolutionSummary, error)
}
