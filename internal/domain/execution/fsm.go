package execution

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// State constants for statekit integration.
// These must remain as untyped string constants for statekit.StateID
// compatibility. Values are kept in sync with Status constants in status.go.
const (
	StateRunning          = "running"
	StateAwaitingApproval = "awaiting_approval"
	StateFailed           = "failed"
	StateCompleted        = "completed"
)

// init validates at startup that FSM state constants match Status values.
// This ensures the FSM and value object stay in sync.
func init() {
	stateMap := map[string]Status{
		StateRunning:          StatusRunning,
		StateAwaitingApproval: StatusAwaitingApproval,
		StateFailed:           StatusFailed,
		StateCompleted:        StatusCompleted,
	}

	for fsmState, status := range stateMap {
		if fsmState != string(status) {
			panic(fmt.Sprintf("FSM state %q does not match Status %q - constants are out of sync", fsmState, status))
		}
	}
}

// RunContext carries state data for the execution machine.
type RunContext struct {
	IncidentID string
}

// StateMachine defines the valid transitions for one plan's execution run.
type StateMachine struct {
	interpreter *statekit.Interpreter[RunContext]
}

// NewStateMachine builds the execution state machine for one confirmed
// plan. The machine starts in the running state.
func NewStateMachine(incidentID string) (*StateMachine, error) {
	builder := statekit.NewMachine[RunContext]("execution-machine").
		WithInitial(statekit.StateID(StateRunning)).
		WithContext(RunContext{IncidentID: incidentID})

	// Running State
	builder.State(StateRunning).
		On("pause").Target(StateAwaitingApproval).
		On("complete").Target(StateCompleted).
		On("fail").Target(StateFailed).
		Done()

	// Awaiting Approval State: exits only via an explicit human decision.
	builder.State(StateAwaitingApproval).
		On("resume").Target(StateRunning).
		On("reject").Target(StateFailed).
		Done()

	// Terminal states
	builder.State(StateCompleted).Done()
	builder.State(StateFailed).Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &StateMachine{interpreter: interpreter}, nil
}

// Transition attempts to move the execution run to a new state.
func (sm *StateMachine) Transition(event string) error {
	before := sm.Current()
	sm.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := sm.Current()

	if before != after {
		return nil
	}

	// If no transition matches, statekit leaves the state unchanged.
	return fmt.Errorf("the action '%s' is not allowed while execution is in the '%s' state", event, before)
}

// Current returns the current state value.
func (sm *StateMachine) Current() string {
	return string(sm.interpreter.State().Value)
}

// CurrentStatus returns the current state as a Status value object.
func (sm *StateMachine) CurrentStatus() Status {
	return Status(sm.Current())
}

// CanTransition checks if the given event is valid for the current state.
// This delegates to the Status value object for consistency.
func (sm *StateMachine) CanTransition(event string) bool {
	return sm.CurrentStatus().CanTransitionWith(event)
}

// IsTerminal returns true if the current state is a final state.
func (sm *StateMachine) IsTerminal() bool {
	return sm.CurrentStatus().IsTerminal()
}
