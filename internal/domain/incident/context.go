// Package incident holds the parsed-incident domain model. A Context is
// produced once by the parse stage and carried read-only through every
// later stage of the resolution workflow.
package incident

import (
	"fmt"
	"strings"
)

// SourceType is the channel an incident report arrived on.
type SourceType string

const (
	SourceEmail SourceType = "Email"
	SourceSMS   SourceType = "SMS"
	SourceCall  SourceType = "Call"
)

// AllSourceTypes returns all valid source types.
func AllSourceTypes() []SourceType {
	return []SourceType{SourceEmail, SourceSMS, SourceCall}
}

// IsValid returns true if the source type is one of the known channels.
func (s SourceType) IsValid() bool {
	switch s {
	case SourceEmail, SourceSMS, SourceCall:
		return true
	default:
		return false
	}
}

// String returns the string representation of the source type.
func (s SourceType) String() string {
	return string(s)
}

// ParseSourceType parses a string into a SourceType, accepting any casing.
func ParseSourceType(str string) (SourceType, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "email":
		return SourceEmail, nil
	case "sms":
		return SourceSMS, nil
	case "call":
		return SourceCall, nil
	default:
		return "", fmt.Errorf("invalid source type: %s", str)
	}
}

// Urgency is the inferred urgency tier of an incident.
type Urgency string

const (
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyLow    Urgency = "Low"
)

// IsValid returns true if the urgency is a known tier.
func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyHigh, UrgencyMedium, UrgencyLow:
		return true
	default:
		return false
	}
}

// String returns the string representation of the urgency.
func (u Urgency) String() string {
	return string(u)
}

// Module is the affected subsystem tag assigned by the parser.
type Module string

const (
	ModuleContainer Module = "Container"
	ModuleVessel    Module = "Vessel"
	ModuleEDI       Module = "EDI/API"
)

// String returns the string representation of the module.
func (m Module) String() string {
	return string(m)
}

// Entity is a key value extracted from the report text, such as a
// container number, user id, or error code.
type Entity struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Context is the immutable snapshot of a parsed incident. It is created
// by the parse stage and never mutated afterwards; later stages carry it
// by value.
type Context struct {
	IncidentID     string     `json:"incident_id,omitempty"`
	SourceType     SourceType `json:"source_type"`
	ReceivedAtUTC  string     `json:"received_timestamp_utc"`
	ReportedHint   string     `json:"reported_timestamp_hint,omitempty"`
	Urgency        Urgency    `json:"urgency"`
	AffectedModule Module     `json:"affected_module,omitempty"`
	Entities       []Entity   `json:"entities"`
	ErrorCode      string     `json:"error_code,omitempty"`
	ProblemSummary string     `json:"problem_summary"`
	CauseHint      string     `json:"potential_cause_hint,omitempty"`
	RawText        string     `json:"raw_text"`
}

// DisplayID returns the incident identifier, or a placeholder when the
// parser could not extract one.
func (c Context) DisplayID() string {
	if c.IncidentID == "" {
		return "UNTRACKED"
	}
	return c.IncidentID
}

// EntityValues returns the values of all entities of the given type.
func (c Context) EntityValues(entityType string) []string {
	var values []string
	for _, e := range c.Entities {
		if e.Type == entityType {
			values = append(values, e.Value)
		}
	}
	return values
}
