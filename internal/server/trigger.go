package server

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chartx/internal/tasks"
)

// Runner starts one pipeline run. Implemented by [tasks.ChartEngine].
type Runner interface {
	Run(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.RunResult, error)
}

// TriggerHandler runs the pipeline once per request.
//
// Concurrent requests start concurrent runs.
type TriggerHandler struct {
	runner Runner
	logger *log.Logger
}

// NewTriggerHandler creates a [TriggerHandler].
func NewTriggerHandler(runner Runner, logger *log.Logger) *TriggerHandler {
	return &TriggerHandler{runner: runner, logger: logger}
}

func (h *TriggerHandler) Routes() []string {
	return []string{"GET /{$}"}
}

// ServeHTTP answers 200 "OK" when the run completes, including runs with failed tasks or rows,
// and 500 "FAILED" on a fatal error.
func (h *TriggerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := runContext(r)

	result, err := h.runner.Run(ctx, nil)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err != nil {
		h.logger.Error("triggered run failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("FAILED"))
		return
	}

	h.logger.Info("triggered run finished", "run", result.ID, "rows", result.Rows, "written", result.Written)
	w.Write([]byte("OK"))
}

// runContext detaches the run from the client connection. Under [Serve] the run still ends when the
// server's lifetime does.
func runContext(r *http.Request) context.Context {
	if base, ok := lifetimeContext(r.Context()); ok {
		return base
	}
	return context.WithoutCancel(r.Context())
}
