package backend

import (
	"context"

	"github.com/felixgeelhaar/remedy/internal/domain/backend"
	"github.com/felixgeelhaar/remedy/internal/domain/incident"
)

// HistoryMatcherClient calls the historical-case matching service.
type HistoryMatcherClient struct {
	client *Client
}

// NewHistoryMatcherClient creates a history matcher client over the
// shared transport.
func NewHistoryMatcherClient(client *Client) *HistoryMatcherClient {
	return &HistoryMatcherClient{client: client}
}

// historyMatchRequest is the wire shape derived from the incident
// context.
type historyMatchRequest struct {
	IncidentID     string              `json:"incident_id,omitempty"`
	SourceType     incident.SourceType `json:"source_type"`
	ProblemSummary string              `json:"problem_summary"`
	AffectedModule string              `json:"affected_module,omitempty"`
	Entities       []incident.Entity   `json:"entities"`
	ErrorCode      string              `json:"error_code,omitempty"`
	Urgency        incident.Urgency    `json:"urgency"`
	RawText        string              `json:"raw_text"`
}

// Match finds historical cases similar to the incident.
func (h *HistoryMatcherClient) Match(ctx context.Context, inc incident.Context) (*backend.HistoryMatchResult, error) {
	req := historyMatchRequest{
		IncidentID:     inc.IncidentID,
		SourceType:     inc.SourceType,
		ProblemSummary: inc.ProblemSummary,
		AffectedModule: inc.AffectedModule.String(),
		Entities:       inc.Entities,
		ErrorCode:      inc.ErrorCode,
		Urgency:        inc.Urgency,
		RawText:        inc.RawText,
	}
	return postJSON[backend.HistoryMatchResult](ctx, h.client, "history-match", "/api/v1/history/match", req, historyMatchSchemaLoader)
}
