package backend

import (
	"log/slog"
	"time"

	"github.com/felixgeelhaar/remedy/internal/domain/backend"
)

// Services bundles one client per remote service, all sharing a single
// transport.
type Services struct {
	Parser     backend.Parser
	Matcher    backend.HistoryMatcher
	Enricher   backend.Enricher
	Planner    backend.Planner
	Executor   backend.Executor
	Summarizer backend.Summarizer
}

// NewServices wires the full client set against one base URL.
func NewServices(baseURL string, callTimeout time.Duration, logger *slog.Logger) *Services {
	c := NewClient(baseURL, callTimeout, logger)
	return &Services{
		Parser:     NewParserClient(c),
		Matcher:    NewHistoryMatcherClient(c),
		Enricher:   NewEnricherClient(c),
		Planner:    NewPlannerClient(c),
		Executor:   NewExecutorClient(c),
		Summarizer: NewSummarizerClient(c),
	}
}
