package backend

import (
	"context"

	"github.com/felixgeelhaar/remedy/internal/domain/backend"
	"github.com/felixgeelhaar/remedy/internal/domain/execution"
	"github.com/felixgeelhaar/remedy/internal/domain/incident"
)

// ExecutorClient drives stepwise plan execution against the execution
// service.
type ExecutorClient struct {
	client *Client
}

// NewExecutorClient creates an executor client over the shared
// transport.
func NewExecutorClient(client *Client) *ExecutorClient {
	return &ExecutorClient{client: client}
}

// executeRequest starts or continues a run. A fresh start carries the
// plan and the incident context; a continuation carries only the token.
type executeRequest struct {
	Plan            []string          `json:"plan,omitempty"`
	IncidentContext *incident.Context `json:"incident_context,omitempty"`
	StateToken      string            `json:"state_token,omitempty"`
}

// approvalRequest is the approval decision wire shape. ApprovedQuery is
// the operator's (possibly edited) statement; on rejection the field is
// still sent, as an empty string, because the endpoint requires it.
type approvalRequest struct {
	StateToken    string `json:"state_token"`
	ApprovedQuery string `json:"approved_query"`
	Approved      bool   `json:"approved"`
}

// approvalResponse is the envelope the approval endpoint returns. On
// rejection the service acknowledges without an execution result.
type approvalResponse struct {
	Success         bool                     `json:"success"`
	Message         string                   `json:"message"`
	ExecutionResult *backend.ExecutionResult `json:"execution_result"`
}

// Start issues the first execution call for a confirmed plan.
func (e *ExecutorClient) Start(ctx context.Context, plan execution.Plan, inc incident.Context) (*backend.ExecutionResult, error) {
	req := executeRequest{
		Plan:            plan.Steps,
		IncidentContext: &inc,
	}
	return postJSON[backend.ExecutionResult](ctx, e.client, "execute", "/api/v1/sop-execution/execute", req, executeSchemaLoader)
}

// Continue fetches the next step of a run that reported in_progress.
func (e *ExecutorClient) Continue(ctx context.Context, token execution.ContinuationToken) (*backend.ExecutionResult, error) {
	req := executeRequest{StateToken: token.String()}
	return postJSON[backend.ExecutionResult](ctx, e.client, "execute", "/api/v1/sop-execution/execute", req, executeSchemaLoader)
}

// Resume delivers an approval decision and returns the next step
// outcome. A rejected run has no next step; the service's
// acknowledgement is mapped onto a terminal failed result so callers
// see a single result shape.
func (e *ExecutorClient) Resume(ctx context.Context, req backend.ResumeRequest) (*backend.ExecutionResult, error) {
	wire := approvalRequest{
		StateToken:    req.Token.String(),
		ApprovedQuery: req.Statement,
		Approved:      req.Approved,
	}

	resp, err := postJSON[approvalResponse](ctx, e.client, "approve", "/api/v1/sop-execution/approve", wire, approveSchemaLoader)
	if err != nil {
		return nil, err
	}

	if req.Approved && !resp.Success {
		return nil, &backend.ServiceError{
			Op:      "approve",
			Message: resp.Message,
		}
	}

	if resp.ExecutionResult == nil {
		return &backend.ExecutionResult{
			Status:  backend.StepFailed,
			Message: resp.Message,
		}, nil
	}
	return resp.ExecutionResult, nil
}
