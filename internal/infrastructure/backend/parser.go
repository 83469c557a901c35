package backend

import (
	"context"

	"github.com/felixgeelhaar/remedy/internal/domain/backend"
	"github.com/felixgeelhaar/remedy/internal/domain/incident"
)

// ParserClient calls the incident parser service.
type ParserClient struct {
	client *Client
}

// NewParserClient creates a parser client over the shared transport.
func NewParserClient(client *Client) *ParserClient {
	return &ParserClient{client: client}
}

// Parse submits the raw report and returns the structured incident
// context.
func (p *ParserClient) Parse(ctx context.Context, req backend.ParseRequest) (*incident.Context, error) {
	return postJSON[incident.Context](ctx, p.client, "parse", "/api/v1/incidents/parse", req, parseSchemaLoader)
}
