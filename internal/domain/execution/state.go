package execution

import "time"

// State is the mutable progress record of one plan's execution. It is
// owned exclusively by the execution controller for the duration of the
// run and becomes inert once the status is terminal and a summary has
// been emitted.
type State struct {
	Status          Status            `json:"status"`
	StepIndex       int               `json:"step_index"`
	StepDescription string            `json:"step_description,omitempty"`
	LastToolOutput  string            `json:"last_tool_output,omitempty"`
	Token           ContinuationToken `json:"-"`
	CompletedSteps  []CompletedStep   `json:"completed_steps"`
	StartedAt       time.Time         `json:"started_at"`
}

// NewState creates the initial state for a fresh run.
func NewState() *State {
	return &State{
		Status:    StatusRunning,
		StartedAt: time.Now(),
	}
}

// ElapsedHours returns the wall-clock hours since the run started,
// passed to the summary service as the execution-time estimate.
func (s *State) ElapsedHours() float64 {
	return time.Since(s.StartedAt).Hours()
}

// RecordPause stores the pause point issued by the execution service.
func (s *State) RecordPause(token ContinuationToken, stepIndex int, description, toolOutput string) {
	s.Status = StatusAwaitingApproval
	s.Token = token
	s.StepIndex = stepIndex
	s.StepDescription = description
	s.LastToolOutput = toolOutput
}

// RecordProgress stores the outcome of a non-terminal step. Each pause
// mints a fresh token, so any previously held token is dropped here.
func (s *State) RecordProgress(stepIndex int, description, toolOutput string, completed []CompletedStep) {
	s.Status = StatusRunning
	s.Token = ContinuationToken{}
	s.StepIndex = stepIndex
	s.StepDescription = description
	s.LastToolOutput = toolOutput
	if len(completed) > 0 {
		s.CompletedSteps = completed
	}
}

// RecordTerminal stores the final outcome of the run.
func (s *State) RecordTerminal(status Status, stepIndex int, description, toolOutput string, completed []CompletedStep) {
	s.Status = status
	s.Token = ContinuationToken{}
	s.StepIndex = stepIndex
	s.StepDescription = description
	s.LastToolOutput = toolOutput
	if len(completed) > 0 {
		s.CompletedSteps = completed
	}
}
