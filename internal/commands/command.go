// Package commands implements the natural-language command pipeline: a
// catalog of editing and transport operations, an intent matcher over their
// trigger vocabulary, and an executor that dispatches matches, formats
// feedback and records history.
package commands

import (
	"context"
	"fmt"
)

// Result status values. The status field is a closed two-state enum.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Params carries the extracted parameters for one command invocation. The
// set of implementations is closed; commands type-assert the variant they
// accept and fall back to defaults for the zero value.
type Params interface {
	isParams()
}

// EmptyParams is used by commands that take no parameters.
type EmptyParams struct{}

func (EmptyParams) isParams() {}

// TransitionParams parameterizes the add-transition command. Zero values
// mean the matcher extracted nothing and the command applies its defaults.
type TransitionParams struct {
	Type     string  `json:"type,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

func (TransitionParams) isParams() {}

// MarkerParams parameterizes the set-marker command.
type MarkerParams struct {
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
}

func (MarkerParams) isParams() {}

// JumpParams parameterizes playhead jumps. Exactly one of Timecode or
// FrameOffset is meaningful; a non-empty Timecode wins.
type JumpParams struct {
	Timecode    string `json:"timecode,omitempty"`
	FrameOffset int    `json:"frame_offset,omitempty"`
}

func (JumpParams) isParams() {}

// SpeedParams parameterizes the playback-speed command.
type SpeedParams struct {
	Speed float64 `json:"speed"`
}

func (SpeedParams) isParams() {}

// Result is the standardized outcome of one command execution.
type Result struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
	// Feedback is attached by the executor when feedback is enabled.
	Feedback string `json:"feedback,omitempty"`
}

// Field returns a named command-specific result field, or nil.
func (r Result) Field(name string) any {
	if r.Fields == nil {
		return nil
	}
	return r.Fields[name]
}

// Succeeded reports whether the result carries success status.
func (r Result) Succeeded() bool {
	return r.Status == StatusSuccess
}

func successResult(message string, fields map[string]any) Result {
	return Result{Status: StatusSuccess, Message: message, Fields: fields}
}

func errorResult(message string) Result {
	return Result{Status: StatusError, Message: message}
}

// Command is one executable catalog operation. Execute never panics past its
// boundary and never returns a Go error; failures are structured error
// results so the caller always gets a user-presentable outcome.
type Command interface {
	// ID returns the unique catalog key.
	ID() string

	// Description returns a one-line human-readable description.
	Description() string

	// Execute performs the operation with the given parameters.
	Execute(ctx context.Context, params Params) Result

	// Feedback formats a human-readable feedback line for a result this
	// command produced.
	Feedback(result Result) string
}

// DefaultFeedback is the fallback feedback formatter for commands that do
// not need a specialized one.
func DefaultFeedback(result Result) string {
	return fmt.Sprintf("Command executed with result: %s", result.Message)
}
