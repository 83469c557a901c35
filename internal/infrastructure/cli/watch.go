package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var watchAddr string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a running triage session in a TUI",
	Long: `Watch connects to the monitor endpoint of a running triage session
and shows the message log as it evolves.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := tea.NewProgram(newWatchModel("http://" + watchAddr))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("watch run failed: %w", err)
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchAddr, "addr", "localhost:8080", "monitor address of the triage session")
	RootCmd.AddCommand(watchCmd)
}

var watchBaseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var watchHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	PaddingLeft(1).
	PaddingRight(1)

// logRow is the wire form of one log entry as served by the monitor.
type logRow struct {
	ID            string          `json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	DeliveryState string          `json:"delivery_state"`
	Kind          string          `json:"kind"`
	Payload       json.RawMessage `json:"payload"`
}

type watchModel struct {
	baseURL string
	table   table.Model
	rows    int
	err     error
}

type snapshotMsg struct {
	rows []logRow
	err  error
}

func newWatchModel(baseURL string) watchModel {
	columns := []table.Column{
		{Title: "Time", Width: 8},
		{Title: "State", Width: 10},
		{Title: "Kind", Width: 22},
		{Title: "Detail", Width: 48},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))
	t.SetStyles(s)

	return watchModel{baseURL: baseURL, table: t}
}

func (m watchModel) Init() tea.Cmd {
	return fetchSnapshot(m.baseURL)
}

func fetchSnapshot(baseURL string) tea.Cmd {
	return func() tea.Msg {
		resp, err := http.Get(baseURL + "/api/log")
		if err != nil {
			return snapshotMsg{err: err}
		}
		defer resp.Body.Close() //nolint:errcheck // best-effort close after read

		var rows []logRow
		if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
			return snapshotMsg{err: err}
		}
		return snapshotMsg{rows: rows}
	}
}

func pollTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{} })
}

type tickMsg struct{}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tickMsg:
		return m, fetchSnapshot(m.baseURL)
	case snapshotMsg:
		m.err = msg.err
		if msg.err == nil {
			m.rows = len(msg.rows)
			m.table.SetRows(buildRows(msg.rows))
			m.table.GotoBottom()
		}
		return m, pollTick()
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m watchModel) View() string {
	header := watchHeaderStyle.Render(fmt.Sprintf("remedy session @ %s", m.baseURL))

	status := okStyle.Render(fmt.Sprintf("%d entries", m.rows))
	if m.err != nil {
		status = failedStyle.Render(fmt.Sprintf("monitor unreachable: %v", m.err))
	}

	return watchBaseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			status,
			m.table.View(),
			"\n[q] Quit  [Up/Down] Navigate",
		),
	) + "\n"
}

func buildRows(rows []logRow) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, table.Row{
			r.CreatedAt.Format("15:04:05"),
			r.DeliveryState,
			r.Kind,
			payloadDetail(r),
		})
	}
	return out
}

// payloadDetail picks a single human-readable field out of the raw
// payload for the table view.
func payloadDetail(r logRow) string {
	var generic struct {
		Label           string `json:"label"`
		Text            string `json:"text"`
		Statement       string `json:"statement"`
		Message         string `json:"message"`
		StepDescription string `json:"step_description"`
	}
	if err := json.Unmarshal(r.Payload, &generic); err != nil {
		return ""
	}
	for _, v := range []string{generic.Label, generic.Statement, generic.StepDescription, generic.Message, generic.Text} {
		if v != "" {
			return truncate(v, 48)
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
