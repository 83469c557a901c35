package incident

// HistoricalCase is one resolved case from the historical archive.
type HistoricalCase struct {
	ID               string `json:"id"`
	Module           string `json:"module"`
	Mode             string `json:"mode"`
	Timestamp        string `json:"timestamp"`
	ProblemStatement string `json:"problem_statement"`
	Solution         string `json:"solution"`
	SOP              string `json:"sop"`
}

// CaseScore carries the similarity breakdown for a matched case.
type CaseScore struct {
	CaseID        string  `json:"case_id"`
	Similarity    float64 `json:"similarity_score"`
	EntityOverlap float64 `json:"entity_overlap_score"`
	ModuleMatch   float64 `json:"module_match_score"`
	Final         float64 `json:"final_score"`
}

// MatchedCase is a historical case the matcher considers relevant to the
// current incident, together with its score and validator verdict.
type MatchedCase struct {
	Case      HistoricalCase `json:"case"`
	Score     CaseScore      `json:"similarity_score"`
	Validated bool           `json:"gpt_validation"`
	Reasoning string         `json:"gpt_reasoning,omitempty"`
}

// SOPSnippet is a knowledge-base fragment retrieved during enrichment.
type SOPSnippet struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Score    float64           `json:"score,omitempty"`
}

// Title returns the SOP title from the snippet metadata, if present.
func (s SOPSnippet) Title() string {
	return s.Metadata["sop_title"]
}

// ResolutionSummary is the closing report produced once execution of a
// remediation plan has terminated. Escalation fields are populated when
// the incident could not be fully auto-resolved.
type ResolutionSummary struct {
	IncidentID         string   `json:"incident_id"`
	Outcome            string   `json:"resolution_outcome"`
	RootCause          string   `json:"root_cause,omitempty"`
	ActionsTaken       []string `json:"actions_taken"`
	EscalationRequired bool     `json:"escalation_required"`
	EscalationContact  string   `json:"escalation_contact,omitempty"`
	EscalationDraft    string   `json:"escalation_draft,omitempty"`
}
