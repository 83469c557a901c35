package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/remedy/internal/domain/conversation"
)

// Styles
var (
	labelStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	stepStyle     = lipgloss.NewStyle().Bold(true)
	approvalStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("208")).
			Padding(0, 1)
)

// renderEntry turns one log entry into its terminal form. Placeholders
// render as in-flight markers; failed entries render in the error style
// regardless of payload.
func renderEntry(e conversation.Entry) string {
	if e.DeliveryState == conversation.DeliveryFailed {
		if note, ok := e.Payload.(conversation.SystemNote); ok {
			return failedStyle.Render("✗ " + note.Text)
		}
	}

	switch p := e.Payload.(type) {
	case conversation.User:
		return labelStyle.Render(fmt.Sprintf("report (%s)", p.Source)) + "\n" + detailStyle.Render(indent(p.Text))

	case conversation.Placeholder:
		return pendingStyle.Render("… " + p.Label)

	case conversation.ParseResult:
		c := p.Context
		lines := []string{
			okStyle.Render("✓ incident parsed") + detailStyle.Render("  "+c.DisplayID()),
			fmt.Sprintf("  module: %s  urgency: %s", c.AffectedModule, c.Urgency),
			"  summary: " + c.ProblemSummary,
		}
		if c.ErrorCode != "" {
			lines = append(lines, "  error code: "+c.ErrorCode)
		}
		return strings.Join(lines, "\n")

	case conversation.HistoryMatchResult:
		out := okStyle.Render(fmt.Sprintf("✓ %d historical case(s) matched", len(p.Matches))) +
			detailStyle.Render(fmt.Sprintf("  (%d candidates, %d validated)", p.TotalCandidates, p.ValidatedCount))
		for _, m := range p.Matches {
			out += "\n" + detailStyle.Render(fmt.Sprintf("  - %s: %s", m.Case.ID, m.Case.ProblemStatement))
		}
		return out

	case conversation.EnrichmentResult:
		out := okStyle.Render(fmt.Sprintf("✓ %d knowledge-base document(s) retrieved", len(p.Snippets)))
		if p.Summary != "" {
			out += "\n" + detailStyle.Render(indent(p.Summary))
		}
		return out

	case conversation.PlanProposal:
		lines := []string{labelStyle.Render("proposed plan")}
		for i, step := range p.Plan.Steps {
			lines = append(lines, fmt.Sprintf("  %d. %s", i+1, step))
		}
		return strings.Join(lines, "\n")

	case conversation.ExecutionProgress:
		marker := okStyle.Render("✓")
		if e.DeliveryState == conversation.DeliveryFailed {
			marker = failedStyle.Render("✗")
		}
		out := fmt.Sprintf("%s %s", marker, stepStyle.Render(fmt.Sprintf("step %d: %s", p.StepIndex+1, p.StepDescription)))
		if p.Message != "" {
			out += "\n" + detailStyle.Render(indent(p.Message))
		}
		if p.ToolOutput != "" {
			out += "\n" + detailStyle.Render(indent(p.ToolOutput))
		}
		if p.Terminal && e.DeliveryState == conversation.DeliveryDelivered {
			out += "\n" + okStyle.Render(fmt.Sprintf("plan execution finished (%d step(s) completed)", len(p.CompletedSteps)))
		}
		return out

	case conversation.ApprovalRequest:
		body := warnStyle.Render(fmt.Sprintf("approval required for step %d: %s", p.StepIndex+1, p.StepDescription)) +
			"\n" + p.Statement
		return approvalStyle.Render(body)

	case conversation.ExecutionSummary:
		s := p.Summary
		lines := []string{
			labelStyle.Render("resolution summary") + detailStyle.Render("  "+s.IncidentID),
			"  outcome: " + s.Outcome,
		}
		if s.RootCause != "" {
			lines = append(lines, "  root cause: "+s.RootCause)
		}
		for _, a := range s.ActionsTaken {
			lines = append(lines, detailStyle.Render("  - "+a))
		}
		if s.EscalationRequired {
			lines = append(lines, warnStyle.Render("  escalation required: "+s.EscalationContact))
			if s.EscalationDraft != "" {
				lines = append(lines, detailStyle.Render(indent(s.EscalationDraft)))
			}
		}
		return strings.Join(lines, "\n")

	case conversation.SystemNote:
		return detailStyle.Render(p.Text)

	default:
		return detailStyle.Render(string(e.Payload.Kind()))
	}
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
