package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/coltonbatts/davincimcp/internal/resolve"
)

// Catalog identifiers for the media-transport commands.
const (
	CommandIDPlay   = "playback-start"
	CommandIDStop   = "playback-stop"
	CommandIDToggle = "playback-toggle"
	CommandIDJump   = "jump"
	CommandIDSpeed  = "playback-speed"
)

// transportCommand covers the transport operations that take no parameters.
// Each instance binds an identifier to one Timeline call.
type transportCommand struct {
	id          string
	description string
	message     string
	controller  resolve.Controller
	logger      *slog.Logger
	invoke      func(ctx context.Context, t resolve.Timeline) error
}

func (c *transportCommand) ID() string          { return c.id }
func (c *transportCommand) Description() string { return c.description }

func (c *transportCommand) Execute(ctx context.Context, _ Params) Result {
	timeline, errRes := currentTimeline(ctx, c.controller)
	if errRes != nil {
		return *errRes
	}
	if err := c.invoke(ctx, timeline); err != nil {
		c.logger.Error("Transport command failed", "command_id", c.id, "error", err)
		return errorResult(err.Error())
	}
	c.logger.Info("Transport command executed", "command_id", c.id)
	return successResult(c.message, nil)
}

func (c *transportCommand) Feedback(result Result) string {
	return DefaultFeedback(result)
}

func NewPlaybackStartCommand(controller resolve.Controller, logger *slog.Logger) Command {
	return &transportCommand{
		id:          CommandIDPlay,
		description: "Start timeline playback",
		message:     "Playback started",
		controller:  controller,
		logger:      orDefault(logger),
		invoke: func(ctx context.Context, t resolve.Timeline) error {
			return t.PlaybackStart(ctx)
		},
	}
}

func NewPlaybackStopCommand(controller resolve.Controller, logger *slog.Logger) Command {
	return &transportCommand{
		id:          CommandIDStop,
		description: "Stop timeline playback",
		message:     "Playback stopped",
		controller:  controller,
		logger:      orDefault(logger),
		invoke: func(ctx context.Context, t resolve.Timeline) error {
			return t.PlaybackStop(ctx)
		},
	}
}

func NewPlaybackToggleCommand(controller resolve.Controller, logger *slog.Logger) Command {
	return &transportCommand{
		id:          CommandIDToggle,
		description: "Toggle timeline playback",
		message:     "Playback toggled",
		controller:  controller,
		logger:      orDefault(logger),
		invoke: func(ctx context.Context, t resolve.Timeline) error {
			return t.PlaybackToggle(ctx)
		},
	}
}

// JumpCommand moves the playhead to a timecode or by a frame offset.
type JumpCommand struct {
	controller resolve.Controller
	logger     *slog.Logger
}

func NewJumpCommand(controller resolve.Controller, logger *slog.Logger) *JumpCommand {
	return &JumpCommand{controller: controller, logger: orDefault(logger)}
}

func (c *JumpCommand) ID() string { return CommandIDJump }

func (c *JumpCommand) Description() string {
	return "Jump the playhead to a timecode or by a frame offset"
}

func (c *JumpCommand) Execute(ctx context.Context, params Params) Result {
	p, _ := params.(JumpParams)
	if p.Timecode == "" && p.FrameOffset == 0 {
		return errorResult("Missing required parameter: timecode or frame_offset")
	}

	timeline, errRes := currentTimeline(ctx, c.controller)
	if errRes != nil {
		return *errRes
	}

	if p.Timecode != "" {
		if err := timeline.JumpToTimecode(ctx, p.Timecode); err != nil {
			c.logger.Error("Jump to timecode failed", "error", err)
			return errorResult(err.Error())
		}
		return successResult(fmt.Sprintf("Jumped to timecode: %s", p.Timecode), map[string]any{
			"timecode": p.Timecode,
		})
	}

	if err := timeline.JumpToFrameOffset(ctx, p.FrameOffset); err != nil {
		c.logger.Error("Jump to frame offset failed", "error", err)
		return errorResult(err.Error())
	}
	return successResult(fmt.Sprintf("Jumped to frame offset: %d", p.FrameOffset), map[string]any{
		"frame_offset": p.FrameOffset,
	})
}

func (c *JumpCommand) Feedback(result Result) string {
	return DefaultFeedback(result)
}

// PlaybackSpeedCommand changes the playback rate. Negative speeds play in
// reverse; zero is rejected as a missing parameter.
type PlaybackSpeedCommand struct {
	controller resolve.Controller
	logger     *slog.Logger
}

func NewPlaybackSpeedCommand(controller resolve.Controller, logger *slog.Logger) *PlaybackSpeedCommand {
	return &PlaybackSpeedCommand{controller: controller, logger: orDefault(logger)}
}

func (c *PlaybackSpeedCommand) ID() string { return CommandIDSpeed }

func (c *PlaybackSpeedCommand) Description() string {
	return "Set the timeline playback speed"
}

func (c *PlaybackSpeedCommand) Execute(ctx context.Context, params Params) Result {
	p, _ := params.(SpeedParams)
	if p.Speed == 0 {
		return errorResult("Missing required parameter: speed")
	}

	timeline, errRes := currentTimeline(ctx, c.controller)
	if errRes != nil {
		return *errRes
	}

	if err := timeline.SetPlaybackSpeed(ctx, p.Speed); err != nil {
		c.logger.Error("Set playback speed failed", "error", err)
		return errorResult(err.Error())
	}
	return successResult(fmt.Sprintf("Playback speed set to: %gx", p.Speed), map[string]any{
		"speed": p.Speed,
	})
}

func (c *PlaybackSpeedCommand) Feedback(result Result) string {
	return DefaultFeedback(result)
}
