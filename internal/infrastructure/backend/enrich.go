package backend

import (
	"context"

	"github.com/felixgeelhaar/remedy/internal/domain/backend"
	"github.com/felixgeelhaar/remedy/internal/domain/incident"
)

// EnricherClient calls the knowledge-base retrieval service.
type EnricherClient struct {
	client *Client
}

// NewEnricherClient creates an enrichment client over the shared
// transport.
func NewEnricherClient(client *Client) *EnricherClient {
	return &EnricherClient{client: client}
}

// enrichmentRequest is the wire shape derived from the incident context.
type enrichmentRequest struct {
	IncidentID     string              `json:"incident_id,omitempty"`
	SourceType     incident.SourceType `json:"source_type"`
	ProblemSummary string              `json:"problem_summary"`
	AffectedModule string              `json:"affected_module,omitempty"`
	ErrorCode      string              `json:"error_code,omitempty"`
	Urgency        incident.Urgency    `json:"urgency"`
	Entities       []incident.Entity   `json:"entities"`
	RawText        string              `json:"raw_text"`
}

// Enrich retrieves knowledge-base material for the incident.
func (e *EnricherClient) Enrich(ctx context.Context, inc incident.Context) (*backend.EnrichmentResult, error) {
	req := enrichmentRequest{
		IncidentID:     inc.IncidentID,
		SourceType:     inc.SourceType,
		ProblemSummary: inc.ProblemSummary,
		AffectedModule: inc.AffectedModule.String(),
		ErrorCode:      inc.ErrorCode,
		Urgency:        inc.Urgency,
		Entities:       inc.Entities,
		RawText:        inc.RawText,
	}
	return postJSON[backend.EnrichmentResult](ctx, e.client, "enrich", "/api/v1/rag/enrich", req, enrichSchemaLoader)
}
