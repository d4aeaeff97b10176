package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coltonbatts/davincimcp/internal/telemetry"
	"github.com/coltonbatts/davincimcp/internal/util"
)

// HistoryEntry records one execution attempt, matched or not. Unmatched
// input produces an entry with an empty CommandID.
type HistoryEntry struct {
	ID           string    `json:"id"`
	CommandID    string    `json:"command_id,omitempty"`
	Params       Params    `json:"params,omitempty"`
	Result       Result    `json:"result"`
	OriginalText string    `json:"original_text"`
	At           time.Time `json:"at"`
}

// Executor orchestrates intent matching, command dispatch, feedback and
// execution history. Not safe for concurrent use; each interactive session
// owns its executor.
type Executor struct {
	registry        *Registry
	feedbackEnabled bool
	history         []HistoryEntry
	metrics         *telemetry.MetricsCollector
	logger          *slog.Logger
}

// NewExecutor creates an executor over the given catalog. The feedback
// toggle is fixed at construction time. A nil metrics collector disables
// metric recording.
func NewExecutor(registry *Registry, feedbackEnabled bool, metrics *telemetry.MetricsCollector, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		registry:        registry,
		feedbackEnabled: feedbackEnabled,
		metrics:         metrics,
		logger:          logger,
	}
}

// ExecuteFromText matches natural-language text to a command, executes it,
// and records the attempt in history. Every outcome is a structured Result;
// unmatched input yields an error result with the fixed message.
func (e *Executor) ExecuteFromText(ctx context.Context, text string) Result {
	start := time.Now()
	defer func() {
		e.observe(telemetry.MetricResponseTimeCommand, time.Since(start))
	}()

	match, ok := e.registry.MatchIntent(text)
	if !ok {
		e.count(telemetry.MetricCommandsUnmatched)
		e.logger.Debug("No command matched", "text", text)
		result := errorResult("Could not understand command")
		e.append(HistoryEntry{Result: result, OriginalText: text})
		return result
	}
	e.count(telemetry.MetricCommandsMatched)

	cmd, found := e.registry.Get(match.CommandID)
	if !found {
		result := errorResult(fmt.Sprintf("Command '%s' not found", match.CommandID))
		e.append(HistoryEntry{Result: result, OriginalText: text})
		return result
	}

	result := cmd.Execute(ctx, match.Params)
	if e.feedbackEnabled {
		result.Feedback = cmd.Feedback(result)
	}

	if result.Succeeded() {
		e.count(telemetry.MetricCommandsSucceeded)
	} else {
		e.count(telemetry.MetricCommandsFailed)
	}

	e.append(HistoryEntry{
		CommandID:    match.CommandID,
		Params:       match.Params,
		Result:       result,
		OriginalText: text,
	})
	return result
}

// LastFeedback returns feedback for the most recent execution. When the
// stored result carries no feedback (feedback was disabled at execution
// time), it is recomputed from the stored result via the command's
// formatter without re-executing anything. Returns false when history is
// empty or the entry was an unmatched input.
func (e *Executor) LastFeedback() (string, bool) {
	if len(e.history) == 0 {
		return "", false
	}

	last := e.history[len(e.history)-1]
	if last.Result.Feedback != "" {
		return last.Result.Feedback, true
	}

	if last.CommandID != "" {
		if cmd, ok := e.registry.Get(last.CommandID); ok {
			return cmd.Feedback(last.Result), true
		}
	}
	return "", false
}

// Command looks up a catalog command by identifier.
func (e *Executor) Command(commandID string) (Command, bool) {
	return e.registry.Get(commandID)
}

// History returns the recorded execution history, oldest first.
func (e *Executor) History() []HistoryEntry {
	out := make([]HistoryEntry, len(e.history))
	copy(out, e.history)
	return out
}

func (e *Executor) append(entry HistoryEntry) {
	entry.At = time.Now()
	entry.ID = util.GenerateHash(entry.OriginalText, entry.At.UnixNano())
	e.history = append(e.history, entry)
}

func (e *Executor) count(name string) {
	if e.metrics != nil {
		e.metrics.Increment(name)
	}
}

func (e *Executor) observe(name string, d time.Duration) {
	if e.metrics != nil {
		e.metrics.Observe(name, d)
	}
}
