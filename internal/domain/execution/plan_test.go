package execution

import "testing"

func TestPlanIsEmpty(t *testing.T) {
	if !NewPlan("INC-1", nil).IsEmpty() {
		t.Error("nil-step plan should be empty")
	}
	if NewPlan("INC-1", []string{"restart service"}).IsEmpty() {
		t.Error("one-step plan should not be empty")
	}
}

func TestPlanStep(t *testing.T) {
	p := NewPlan("INC-1", []string{"first", "second"})

	if got := p.Step(0); got != "first" {
		t.Errorf("Step(0) = %q", got)
	}
	if got := p.Step(1); got != "second" {
		t.Errorf("Step(1) = %q", got)
	}
	if got := p.Step(2); got != "" {
		t.Errorf("out-of-range step = %q", got)
	}
	if got := p.Step(-1); got != "" {
		t.Errorf("negative step = %q", got)
	}
	if p.StepCount() != 2 {
		t.Errorf("StepCount = %d", p.StepCount())
	}
}
