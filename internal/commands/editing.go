package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/coltonbatts/davincimcp/internal/resolve"
)

// Catalog identifiers for the built-in editing commands.
const (
	CommandIDCut        = "cut"
	CommandIDTransition = "transition"
	CommandIDMarker     = "marker"
)

// Defaults applied when the matcher extracted no value.
const (
	defaultTransitionType     = "Cross Dissolve"
	defaultTransitionDuration = 1.0
	defaultMarkerName         = "Marker"
	defaultMarkerColor        = "Blue"
)

const msgNoActiveTimeline = "No active timeline"

// currentTimeline fetches the active timeline and maps its absence to the
// standard user-facing error result.
func currentTimeline(ctx context.Context, controller resolve.Controller) (resolve.Timeline, *Result) {
	timeline, err := controller.CurrentTimeline(ctx)
	if err != nil {
		if errors.Is(err, resolve.ErrNoTimeline) {
			r := errorResult(msgNoActiveTimeline)
			return nil, &r
		}
		r := errorResult(err.Error())
		return nil, &r
	}
	return timeline, nil
}

// CutCommand splits the clip at the current playhead position.
type CutCommand struct {
	controller resolve.Controller
	logger     *slog.Logger
}

func NewCutCommand(controller resolve.Controller, logger *slog.Logger) *CutCommand {
	return &CutCommand{controller: controller, logger: orDefault(logger)}
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func (c *CutCommand) ID() string { return CommandIDCut }

func (c *CutCommand) Description() string {
	return "Cut/split the clip at the current playhead position"
}

func (c *CutCommand) Execute(ctx context.Context, _ Params) Result {
	timeline, errRes := currentTimeline(ctx, c.controller)
	if errRes != nil {
		return *errRes
	}

	c.logger.Info("Executing cut command")
	if err := timeline.Split(ctx); err != nil {
		c.logger.Error("Cut failed", "error", err)
		return errorResult(err.Error())
	}
	return successResult("Cut performed at playhead position", nil)
}

func (c *CutCommand) Feedback(result Result) string {
	if result.Succeeded() {
		return "Cut performed at the current position"
	}
	return fmt.Sprintf("Error performing cut: %s", result.Message)
}

// AddTransitionCommand adds a transition at the current edit point.
type AddTransitionCommand struct {
	controller resolve.Controller
	logger     *slog.Logger
}

func NewAddTransitionCommand(controller resolve.Controller, logger *slog.Logger) *AddTransitionCommand {
	return &AddTransitionCommand{controller: controller, logger: orDefault(logger)}
}

func (c *AddTransitionCommand) ID() string { return CommandIDTransition }

func (c *AddTransitionCommand) Description() string {
	return "Add a transition between clips"
}

func (c *AddTransitionCommand) Execute(ctx context.Context, params Params) Result {
	p, _ := params.(TransitionParams)
	if p.Type == "" {
		p.Type = defaultTransitionType
	}
	if p.Duration == 0 {
		p.Duration = defaultTransitionDuration
	}

	timeline, errRes := currentTimeline(ctx, c.controller)
	if errRes != nil {
		return *errRes
	}

	c.logger.Info("Adding transition", "type", p.Type, "duration", p.Duration)
	if err := timeline.AddTransition(ctx, p.Type, p.Duration); err != nil {
		c.logger.Error("Add transition failed", "error", err)
		return errorResult(err.Error())
	}
	return successResult(fmt.Sprintf("Added %s transition", p.Type), map[string]any{
		"transition_type": p.Type,
		"duration":        p.Duration,
	})
}

func (c *AddTransitionCommand) Feedback(result Result) string {
	if result.Succeeded() {
		kind := "transition"
		if t, ok := result.Field("transition_type").(string); ok {
			kind = t
		}
		duration := defaultTransitionDuration
		if d, ok := result.Field("duration").(float64); ok {
			duration = d
		}
		return fmt.Sprintf("Added %s with duration %gs", kind, duration)
	}
	return fmt.Sprintf("Error adding transition: %s", result.Message)
}

// SetMarkerCommand places a marker at the current playhead position.
type SetMarkerCommand struct {
	controller resolve.Controller
	logger     *slog.Logger
}

func NewSetMarkerCommand(controller resolve.Controller, logger *slog.Logger) *SetMarkerCommand {
	return &SetMarkerCommand{controller: controller, logger: orDefault(logger)}
}

func (c *SetMarkerCommand) ID() string { return CommandIDMarker }

func (c *SetMarkerCommand) Description() string {
	return "Set a marker at the current playhead position"
}

func (c *SetMarkerCommand) Execute(ctx context.Context, params Params) Result {
	p, _ := params.(MarkerParams)
	if p.Name == "" {
		p.Name = defaultMarkerName
	}
	if p.Color == "" {
		p.Color = defaultMarkerColor
	}

	timeline, errRes := currentTimeline(ctx, c.controller)
	if errRes != nil {
		return *errRes
	}

	c.logger.Info("Adding marker", "name", p.Name, "color", p.Color)
	position, err := timeline.AddMarker(ctx, p.Name, p.Color)
	if err != nil {
		c.logger.Error("Add marker failed", "error", err)
		return errorResult(err.Error())
	}
	return successResult(fmt.Sprintf("Added marker '%s'", p.Name), map[string]any{
		"marker_name":  p.Name,
		"marker_color": p.Color,
		"position":     position,
	})
}

func (c *SetMarkerCommand) Feedback(result Result) string {
	if result.Succeeded() {
		name := defaultMarkerName
		if n, ok := result.Field("marker_name").(string); ok {
			name = n
		}
		position := "current position"
		if p, ok := result.Field("position").(string); ok && p != "" {
			position = p
		}
		return fmt.Sprintf("Added marker '%s' at %s", name, position)
	}
	return fmt.Sprintf("Error adding marker: %s", result.Message)
}
