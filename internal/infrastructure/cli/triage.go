package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/remedy/internal/application"
	"github.com/felixgeelhaar/remedy/internal/domain/conversation"
	"github.com/felixgeelhaar/remedy/internal/domain/execution"
	"github.com/felixgeelhaar/remedy/internal/domain/incident"
	"github.com/felixgeelhaar/remedy/internal/infrastructure/backend"
	"github.com/felixgeelhaar/remedy/internal/infrastructure/config"
	"github.com/felixgeelhaar/remedy/internal/infrastructure/monitor"
)

var (
	triageSource  string
	triageFile    string
	triageMonitor string
	triageYes     bool
)

var triageCmd = &cobra.Command{
	Use:   "triage [report text]",
	Short: "Run an incident report through the resolution workflow",
	Long: `Triage submits one incident report to the analysis pipeline, shows
the proposed remediation plan, and on confirmation executes it step by
step. High-risk steps pause for approval; the proposed statement can be
edited before it runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}

		cfg, err := config.Load(cwd)
		if err != nil {
			return err
		}

		source, err := incident.ParseSourceType(triageSource)
		if err != nil {
			return err
		}

		reader := bufio.NewReader(cmd.InOrStdin())
		rawText, err := readReport(reader, cmd, args)
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel(),
		}))

		log := conversation.NewLog()
		unsubscribe := log.Subscribe(func(e conversation.Event) {
			fmt.Fprintln(cmd.OutOrStdout(), renderEntry(e.Entry))
		})
		defer unsubscribe()

		monitorAddr := triageMonitor
		if monitorAddr == "" {
			monitorAddr = cfg.MonitorAddr
		}
		if monitorAddr != "" {
			srv := monitor.NewServer(monitorAddr, log, logger)
			go func() {
				if err := srv.Start(); err != nil {
					logger.Warn("monitor stopped", "error", err)
				}
			}()
		}

		services := backend.NewServices(cfg.BackendURL, cfg.Timeout(), logger)
		pipeline := application.NewPipelineService(log, services.Parser, services.Matcher, services.Enricher, services.Planner, logger)
		executor := application.NewExecutionService(log, services.Executor, logger)
		approvals := application.NewApprovalService(log, services.Executor, executor, logger)
		summaries := application.NewSummaryService(log, services.Summarizer, logger)

		ctx := cmd.Context()

		outcome, err := pipeline.Submit(ctx, rawText, source)
		if err != nil {
			return err
		}
		if !outcome.Confirmable() {
			// The failing stage already rendered its error in the log.
			return nil
		}

		if !triageYes && !confirm(reader, cmd, "Execute this plan?") {
			log.Append(conversation.NewEntry(conversation.SystemNote{Text: "plan discarded by operator; nothing was executed"}))
			return nil
		}

		sess, err := executor.Execute(ctx, *outcome.Plan, *outcome.Context)
		if err != nil {
			return err
		}

		for sess.Status() == execution.StatusAwaitingApproval {
			decideApproval(ctx, reader, cmd, approvals, sess)
		}

		switch sess.Status() {
		case execution.StatusCompleted:
			_, err = summaries.Generate(ctx, sess)
			return err
		case execution.StatusFailed:
			if confirm(reader, cmd, "Execution did not complete. Generate a summary anyway?") {
				_, err = summaries.Generate(ctx, sess)
				return err
			}
		}
		return nil
	},
}

func init() {
	triageCmd.Flags().StringVarP(&triageSource, "source", "s", "email", "report source (email, sms, call)")
	triageCmd.Flags().StringVarP(&triageFile, "file", "f", "", "read the report text from a file")
	triageCmd.Flags().StringVar(&triageMonitor, "monitor", "", "serve the live monitor on this address (e.g. :8080)")
	triageCmd.Flags().BoolVarP(&triageYes, "yes", "y", false, "execute the generated plan without asking")
	RootCmd.AddCommand(triageCmd)
}

// readReport collects the report text from the file flag, the argument
// list, or interactively (terminated by an empty line).
func readReport(reader *bufio.Reader, cmd *cobra.Command, args []string) (string, error) {
	if triageFile != "" {
		data, err := os.ReadFile(triageFile)
		if err != nil {
			return "", fmt.Errorf("read report file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Paste the incident report, then finish with an empty line:")
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\n")
		if line == "" || err != nil {
			break
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// decideApproval runs one round of the approval prompt. A failed
// approve leaves the gate open, so the caller loops until the session
// leaves awaiting-approval.
func decideApproval(ctx context.Context, reader *bufio.Reader, cmd *cobra.Command, approvals *application.ApprovalService, sess *application.Session) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "[a]pprove, [e]dit statement, [r]eject: ")
	input, readErr := reader.ReadString('\n')

	if readErr != nil && strings.TrimSpace(input) == "" {
		// Closed stdin cannot authorize a mutating statement.
		fmt.Fprintln(out, failedStyle.Render("input closed; rejecting the pending step"))
		if err := approvals.Reject(ctx, sess); err != nil {
			fmt.Fprintln(out, failedStyle.Render(err.Error()))
		}
		return
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "a", "approve":
		if err := approvals.Approve(ctx, sess, sess.PendingStatement()); err != nil {
			fmt.Fprintln(out, failedStyle.Render("approval failed; the step is still awaiting your decision"))
		}
	case "e", "edit":
		fmt.Fprintf(out, "Edited statement: ")
		edited, _ := reader.ReadString('\n')
		edited = strings.TrimSpace(edited)
		if edited == "" {
			edited = sess.PendingStatement()
		}
		if err := approvals.Approve(ctx, sess, edited); err != nil {
			fmt.Fprintln(out, failedStyle.Render("approval failed; the step is still awaiting your decision"))
		}
	case "r", "reject":
		if err := approvals.Reject(ctx, sess); err != nil {
			fmt.Fprintln(out, failedStyle.Render(err.Error()))
		}
	default:
		fmt.Fprintln(out, "unrecognized choice")
	}
}

func confirm(reader *bufio.Reader, cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.ToLower(strings.TrimSpace(input))
	return input == "y" || input == "yes"
}

func logLevel() slog.Level {
	if os.Getenv("REMEDY_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
