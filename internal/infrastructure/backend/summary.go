package backend

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/felixgeelhaar/remedy/internal/domain/backend"
	"github.com/felixgeelhaar/remedy/internal/domain/incident"
)

// SummarizerClient calls the resolution-summary service.
type SummarizerClient struct {
	client *Client
}

// NewSummarizerClient creates a summarizer client over the shared
// transport.
func NewSummarizerClient(client *Client) *SummarizerClient {
	return &SummarizerClient{client: client}
}

// summaryEnvelope is the summary service response. The nested summary
// object is flattened into the domain ResolutionSummary.
type summaryEnvelope struct {
	Success    bool   `json:"success"`
	IncidentID string `json:"incident_id"`
	Summary    struct {
		EscalationRequired bool   `json:"escalation_required"`
		ResolutionOutcome  string `json:"resolution_outcome"`
		EscalationContact  *struct {
			ContactName string `json:"contact_name"`
			Email       string `json:"email"`
		} `json:"escalation_contact"`
		EscalationEmail *struct {
			Subject string `json:"subject"`
			Body    string `json:"body"`
		} `json:"escalation_email"`
		ResolutionSummary struct {
			RootCause    string   `json:"root_cause"`
			ActionsTaken []string `json:"actions_taken"`
		} `json:"resolution_summary"`
	} `json:"summary"`
	Error string `json:"error,omitempty"`
}

// Summarize requests the closing report for a finished run.
func (s *SummarizerClient) Summarize(ctx context.Context, req backend.SummaryRequest) (*incident.ResolutionSummary, error) {
	path := "/api/v1/execution-summary/generate/" + url.PathEscape(req.IncidentID)
	env, err := postJSON[summaryEnvelope](ctx, s.client, "summary", path, req, summarySchemaLoader)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "summary generation failed"
		}
		return nil, &backend.ServiceError{Op: "summary", Message: msg}
	}

	out := &incident.ResolutionSummary{
		IncidentID:         env.IncidentID,
		Outcome:            env.Summary.ResolutionOutcome,
		RootCause:          env.Summary.ResolutionSummary.RootCause,
		ActionsTaken:       env.Summary.ResolutionSummary.ActionsTaken,
		EscalationRequired: env.Summary.EscalationRequired,
	}
	if out.IncidentID == "" {
		out.IncidentID = req.IncidentID
	}
	if c := env.Summary.EscalationContact; c != nil {
		out.EscalationContact = formatContact(c.ContactName, c.Email)
	}
	if e := env.Summary.EscalationEmail; e != nil {
		out.EscalationDraft = formatEscalationDraft(e.Subject, e.Body)
	}
	return out, nil
}

func formatContact(name, email string) string {
	switch {
	case name != "" && email != "":
		return fmt.Sprintf("%s <%s>", name, email)
	case name != "":
		return name
	default:
		return email
	}
}

func formatEscalationDraft(subject, body string) string {
	if subject == "" {
		return body
	}
	return strings.TrimRight("Subject: "+subject+"\n\n"+body, "\n")
}
