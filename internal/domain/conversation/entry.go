// Package conversation provides the ordered, append-only log of typed
// progress entries that records one incident's journey through the
// resolution workflow. The log supports exactly one mutation primitive:
// replacing an in-flight placeholder with its resolved outcome, once.
package conversation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/remedy/internal/domain/execution"
	"github.com/felixgeelhaar/remedy/internal/domain/incident"
)

// EntryID is the stable identity of a log entry. IDs are generated at
// creation and never reused within a log.
type EntryID struct {
	value string
}

// NewEntryID generates a fresh entry identifier.
func NewEntryID() EntryID {
	return EntryID{value: uuid.New().String()}
}

// String returns the string representation of the EntryID.
func (id EntryID) String() string {
	return id.value
}

// IsZero returns true if the EntryID is empty.
func (id EntryID) IsZero() bool {
	return id.value == ""
}

// Equals checks if two EntryIDs are equal.
func (id EntryID) Equals(other EntryID) bool {
	return id.value == other.value
}

// DeliveryState tracks whether an entry's content has been resolved.
type DeliveryState string

const (
	DeliveryPending   DeliveryState = "pending"
	DeliveryDelivered DeliveryState = "delivered"
	DeliveryFailed    DeliveryState = "failed"
)

// IsValid returns true if the delivery state is known.
func (d DeliveryState) IsValid() bool {
	switch d {
	case DeliveryPending, DeliveryDelivered, DeliveryFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the delivery state.
func (d DeliveryState) String() string {
	return string(d)
}

// Kind discriminates the entry payload variants.
type Kind string

const (
	KindUser              Kind = "user"
	KindPlaceholder       Kind = "placeholder"
	KindParseResult       Kind = "parse_result"
	KindHistoryMatch      Kind = "history_match_result"
	KindEnrichment        Kind = "enrichment_result"
	KindPlanProposal      Kind = "plan_proposal"
	KindExecutionProgress Kind = "execution_progress"
	KindApprovalRequest   Kind = "approval_request"
	KindExecutionSummary  Kind = "execution_summary"
	KindSystemNote        Kind = "system_note"
)

// Payload is the closed set of entry contents. Each variant carries
// exactly its own data, copied by value at emission time; entries never
// share mutable state.
type Payload interface {
	Kind() Kind
	isPayload()
}

// User is the raw report text submitted by the operator.
type User struct {
	Text   string              `json:"text"`
	Source incident.SourceType `json:"source"`
}

// Placeholder stands in for an outstanding remote call. Its entry ID is
// the handle later used to replace it with the call's outcome.
type Placeholder struct {
	Label string `json:"label"`
}

// ParseResult carries the incident context produced by the parse stage.
type ParseResult struct {
	Context incident.Context `json:"context"`
}

// HistoryMatchResult carries the matched historical cases.
type HistoryMatchResult struct {
	Matches          []incident.MatchedCase `json:"matched_cases"`
	TotalCandidates  int                    `json:"total_candidates"`
	ValidatedCount   int                    `json:"gpt_validated_count"`
	ProcessingMillis float64                `json:"processing_time_ms"`
}

// EnrichmentResult carries the knowledge-base snippets retrieved for the
// incident.
type EnrichmentResult struct {
	Snippets   []incident.SOPSnippet `json:"retrieved_sops"`
	Summary    string                `json:"retrieval_summary"`
	TotalFound int                   `json:"total_sops_found"`
}

// PlanProposal carries a generated plan awaiting explicit confirmation.
type PlanProposal struct {
	Plan execution.Plan `json:"plan"`
}

// ExecutionProgress reports the outcome of one execution step.
type ExecutionProgress struct {
	StepIndex       int                       `json:"step"`
	StepDescription string                    `json:"step_description"`
	ToolOutput      string                    `json:"tool_output,omitempty"`
	Message         string                    `json:"message,omitempty"`
	AgentThoughts   string                    `json:"agent_thoughts,omitempty"`
	ToolCalls       string                    `json:"tool_calls,omitempty"`
	CompletedSteps  []execution.CompletedStep `json:"completed_steps,omitempty"`
	Terminal        bool                      `json:"terminal,omitempty"`
}

// ApprovalRequest asks the operator to sign off on a high-risk step. The
// candidate statement is extracted from the executor's opaque tool
// output for human review.
type ApprovalRequest struct {
	Token           execution.ContinuationToken `json:"-"`
	Statement       string                      `json:"statement"`
	StepIndex       int                         `json:"step"`
	StepDescription string                      `json:"step_description"`
}

// ExecutionSummary is the terminal closing report for the incident.
type ExecutionSummary struct {
	Summary incident.ResolutionSummary `json:"summary"`
}

// SystemNote is free-form workflow commentary, used among other things
// for the user-visible rendering of a stage or step failure.
type SystemNote struct {
	Text string `json:"text"`
}

func (User) Kind() Kind               { return KindUser }
func (Placeholder) Kind() Kind        { return KindPlaceholder }
func (ParseResult) Kind() Kind        { return KindParseResult }
func (HistoryMatchResult) Kind() Kind { return KindHistoryMatch }
func (EnrichmentResult) Kind() Kind   { return KindEnrichment }
func (PlanProposal) Kind() Kind       { return KindPlanProposal }
func (ExecutionProgress) Kind() Kind  { return KindExecutionProgress }
func (ApprovalRequest) Kind() Kind    { return KindApprovalRequest }
func (ExecutionSummary) Kind() Kind   { return KindExecutionSummary }
func (SystemNote) Kind() Kind         { return KindSystemNote }

func (User) isPayload()               {}
func (Placeholder) isPayload()        {}
func (ParseResult) isPayload()        {}
func (HistoryMatchResult) isPayload() {}
func (EnrichmentResult) isPayload()   {}
func (PlanProposal) isPayload()       {}
func (ExecutionProgress) isPayload()  {}
func (ApprovalRequest) isPayload()    {}
func (ExecutionSummary) isPayload()   {}
func (SystemNote) isPayload()         {}

// Entry is one element of the message log.
type Entry struct {
	ID            EntryID
	CreatedAt     time.Time
	DeliveryState DeliveryState
	Payload       Payload
}

// NewEntry creates a delivered entry with a fresh identity.
func NewEntry(p Payload) Entry {
	return Entry{
		ID:            NewEntryID(),
		CreatedAt:     time.Now(),
		DeliveryState: DeliveryDelivered,
		Payload:       p,
	}
}

// NewPendingEntry creates a pending entry, used for placeholders whose
// remote call is still outstanding.
func NewPendingEntry(p Payload) Entry {
	e := NewEntry(p)
	e.DeliveryState = DeliveryPending
	return e
}

// NewFailedEntry creates a failed entry carrying a user-visible error
// rendering.
func NewFailedEntry(p Payload) Entry {
	e := NewEntry(p)
	e.DeliveryState = DeliveryFailed
	return e
}

// MarshalJSON renders the entry with an explicit kind tag so external
// renderers can dispatch on the variant.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Payload == nil {
		return nil, fmt.Errorf("entry %s has no payload", e.ID)
	}
	return json.Marshal(struct {
		ID            string        `json:"id"`
		CreatedAt     time.Time     `json:"created_at"`
		DeliveryState DeliveryState `json:"delivery_state"`
		Kind          Kind          `json:"kind"`
		Payload       Payload       `json:"payload"`
	}{
		ID:            e.ID.String(),
		CreatedAt:     e.CreatedAt,
		DeliveryState: e.DeliveryState,
		Kind:          e.Payload.Kind(),
		Payload:       e.Payload,
	})
}
