package backend

import (
	"context"

	"github.com/felixgeelhaar/remedy/internal/domain/backend"
	"github.com/felixgeelhaar/remedy/internal/domain/incident"
)

// PlannerClient calls the plan-generation service.
type PlannerClient struct {
	client *Client
}

// NewPlannerClient creates a planner client over the shared transport.
func NewPlannerClient(client *Client) *PlannerClient {
	return &PlannerClient{client: client}
}

// planRequest combines the parsed incident with the retrieval output,
// matching the orchestrator service's request shape.
type planRequest struct {
	IncidentContext planIncidentContext `json:"incident_context"`
	SOPResponse     planSOPResponse     `json:"sop_response"`
}

type planIncidentContext struct {
	IncidentID     string            `json:"incident_id,omitempty"`
	ProblemSummary string            `json:"problem_summary"`
	AffectedModule string            `json:"affected_module"`
	ErrorCode      string            `json:"error_code,omitempty"`
	Urgency        string            `json:"urgency"`
	Entities       []incident.Entity `json:"entities"`
	RawText        string            `json:"raw_text,omitempty"`
}

type planSOPResponse struct {
	IncidentID     string                `json:"incident_id,omitempty"`
	ProblemSummary string                `json:"problem_summary"`
	AffectedModule string                `json:"affected_module,omitempty"`
	ErrorCode      string                `json:"error_code,omitempty"`
	Urgency        string                `json:"urgency"`
	RetrievedSOPs  []incident.SOPSnippet `json:"retrieved_sops"`
}

// GeneratePlan asks the planner for a remediation plan.
func (p *PlannerClient) GeneratePlan(ctx context.Context, inc incident.Context, enrichment backend.EnrichmentResult) (*backend.PlanResult, error) {
	req := planRequest{
		IncidentContext: planIncidentContext{
			IncidentID:     inc.IncidentID,
			ProblemSummary: inc.ProblemSummary,
			AffectedModule: inc.AffectedModule.String(),
			ErrorCode:      inc.ErrorCode,
			Urgency:        inc.Urgency.String(),
			Entities:       inc.Entities,
			RawText:        inc.RawText,
		},
		SOPResponse: planSOPResponse{
			IncidentID:     enrichment.IncidentID,
			ProblemSummary: enrichment.ProblemSummary,
			AffectedModule: enrichment.AffectedModule,
			ErrorCode:      enrichment.ErrorCode,
			Urgency:        enrichment.Urgency,
			RetrievedSOPs:  enrichment.RetrievedSOPs,
		},
	}
	return postJSON[backend.PlanResult](ctx, p.client, "plan", "/api/v1/orchestrator/plan", req, planSchemaLoader)
}
