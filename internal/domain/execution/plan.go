// Package execution models a confirmed remediation plan and the state
// machine that tracks its stepwise execution, including the pause/resume
// protocol around human approval of high-risk steps.
package execution

import "time"

// Plan is an ordered sequence of human-readable remediation steps
// proposed for one incident. It is immutable once confirmed; progress
// against it is tracked by a zero-based step index in State.
type Plan struct {
	IncidentID string    `json:"incident_id,omitempty"`
	Steps      []string  `json:"steps"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewPlan creates a plan for the given incident.
func NewPlan(incidentID string, steps []string) Plan {
	return Plan{
		IncidentID: incidentID,
		Steps:      steps,
		CreatedAt:  time.Now(),
	}
}

// IsEmpty returns true if the plan has no steps. An empty plan is never
// confirmable.
func (p Plan) IsEmpty() bool {
	return len(p.Steps) == 0
}

// StepCount returns the number of steps in the plan.
func (p Plan) StepCount() int {
	return len(p.Steps)
}

// Step returns the description of the step at the given index, or an
// empty string when the index is out of range.
func (p Plan) Step(index int) string {
	if index < 0 || index >= len(p.Steps) {
		return ""
	}
	return p.Steps[index]
}

// CompletedStep is one finished unit of plan execution, kept as the
// audit record of the run.
type CompletedStep struct {
	StepIndex   int    `json:"step"`
	Description string `json:"step_description"`
	Output      string `json:"tool_output,omitempty"`
	Status      string `json:"status"`
}
