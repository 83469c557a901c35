// Package backend provides the HTTP clients for the remote incident
// services. Every call runs under a per-stage timeout; there is no
// retry policy anywhere in this package, a failed call is surfaced once
// and the decision to resubmit rests with the operator.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/xeipuuv/gojsonschema"

	"github.com/felixgeelhaar/remedy/internal/domain/backend"
)

// Client carries the shared transport configuration for all service
// clients.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// NewClient creates the shared transport. A zero timeout falls back to
// a conservative default suited to LLM-backed services.
func NewClient(baseURL string, callTimeout time.Duration, logger *slog.Logger) *Client {
	if callTimeout <= 0 {
		callTimeout = 120 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		timeout:    callTimeout,
		logger:     logger,
	}
}

// serviceErrorBody is the shape of structured error payloads the
// services return: {"error": ...} from the planner, {"detail": ...}
// from the framework layer.
type serviceErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Code    string `json:"error_code"`
}

// postJSON issues one POST under the client timeout, maps transport and
// service failures into the error taxonomy, validates the response
// shape against the given schema, and decodes into T.
func postJSON[T any](ctx context.Context, c *Client, op, path string, body any, schema gojsonschema.JSONLoader) (*T, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", op, err)
	}

	t := timeout.New[*T](timeout.Config{
		DefaultTimeout: c.timeout,
	})

	out, err := t.Execute(ctx, c.timeout, func(ctx context.Context) (*T, error) {
		return doPost[T](ctx, c, op, path, payload, schema)
	})
	if err != nil {
		if isTaxonomyError(err) {
			return nil, err
		}
		// Timeout or context cancellation from the wrapper.
		return nil, &backend.TransportError{Op: op, Err: err}
	}
	return out, nil
}

func doPost[T any](ctx context.Context, c *Client, op, path string, payload []byte, schema gojsonschema.JSONLoader) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, &backend.TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &backend.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close after read

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &backend.TransportError{Op: op, Err: err}
	}

	c.logger.Debug("backend call finished",
		"op", op,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		var svcBody serviceErrorBody
		_ = json.Unmarshal(raw, &svcBody)

		msg := svcBody.Error
		if msg == "" {
			msg = svcBody.Message
		}
		if msg == "" {
			msg = svcBody.Detail
		}
		if msg == "" {
			msg = resp.Status
		}
		return nil, &backend.ServiceError{
			Op:         op,
			Code:       svcBody.Code,
			Message:    msg,
			Detail:     svcBody.Detail,
			HTTPStatus: resp.StatusCode,
		}
	}

	if schema != nil {
		result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, &backend.ValidationError{Op: op, Detail: fmt.Sprintf("response is not valid JSON: %v", err)}
		}
		if !result.Valid() {
			return nil, &backend.ValidationError{Op: op, Detail: schemaErrors(result)}
		}
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &backend.ValidationError{Op: op, Detail: fmt.Sprintf("malformed response body: %v", err)}
	}
	return &out, nil
}

func schemaErrors(result *gojsonschema.Result) string {
	var buf bytes.Buffer
	for i, desc := range result.Errors() {
		if i > 0 {
			buf.WriteString("; ")
		}
		buf.WriteString(desc.String())
	}
	return buf.String()
}

func isTaxonomyError(err error) bool {
	var transErr *backend.TransportError
	var valErr *backend.ValidationError
	var svcErr *backend.ServiceError
	var emptyErr *backend.EmptyResultError
	return errors.As(err, &transErr) ||
		errors.As(err, &valErr) ||
		errors.As(err, &svcErr) ||
		errors.As(err, &emptyErr)
}
