// Package resolve defines the capability boundary to the DaVinci Resolve
// editing application. The core never reaches past these interfaces; the
// production implementation is a thin call-through to the vendor scripting
// surface via a spawned bridge process.
package resolve

import (
	"context"
	"errors"
)

// Errors reported at the binding boundary.
var (
	// ErrNotConnected indicates no live connection to the application.
	ErrNotConnected = errors.New("not connected to DaVinci Resolve")

	// ErrNoTimeline indicates the project has no active timeline. This is
	// a defined outcome, not an internal failure.
	ErrNoTimeline = errors.New("no active timeline")

	// ErrNoMediaPool indicates the media pool is unavailable.
	ErrNoMediaPool = errors.New("media pool not available")
)

// ProjectInfo describes the currently open project.
type ProjectInfo struct {
	Name          string `json:"name"`
	TimelineCount int    `json:"timeline_count"`
}

// ClipInfo describes the clip under the playhead, as reported by the
// application. Zero values mean the application did not report the field.
type ClipInfo struct {
	Name          string  `json:"name"`
	Duration      float64 `json:"duration"`
	FrameRate     float64 `json:"frame_rate"`
	Resolution    string  `json:"resolution"`
	AudioChannels int     `json:"audio_channels"`
}

// Controller manages the connection to the editing application and hands out
// handles to its current state.
type Controller interface {
	// Connect establishes the connection. It is required before any other
	// call succeeds.
	Connect(ctx context.Context) error

	// ProjectInfo returns the name and timeline count of the open project.
	ProjectInfo(ctx context.Context) (ProjectInfo, error)

	// CurrentTimeline returns the active timeline, or ErrNoTimeline.
	CurrentTimeline(ctx context.Context) (Timeline, error)

	// MediaPool returns the project media pool, or ErrNoMediaPool.
	MediaPool(ctx context.Context) (MediaPool, error)
}

// Timeline is the capability set commands need from an active timeline.
// Every call is an opaque request to the application; results are
// boolean/structured success, never application internals.
type Timeline interface {
	// Split cuts the clip at the current playhead position.
	Split(ctx context.Context) error

	// AddTransition adds a transition of the given kind and duration
	// (seconds) at the current edit point.
	AddTransition(ctx context.Context, kind string, duration float64) error

	// AddMarker places a named, colored marker at the playhead and
	// returns the timecode position it was placed at.
	AddMarker(ctx context.Context, name, color string) (string, error)

	// CurrentTimecode returns the playhead position.
	CurrentTimecode(ctx context.Context) (string, error)

	// CurrentClip returns properties of the clip under the playhead.
	CurrentClip(ctx context.Context) (ClipInfo, error)

	// Transport controls.
	PlaybackStart(ctx context.Context) error
	PlaybackStop(ctx context.Context) error
	PlaybackToggle(ctx context.Context) error
	JumpToTimecode(ctx context.Context, timecode string) error
	JumpToFrameOffset(ctx context.Context, offset int) error
	SetPlaybackSpeed(ctx context.Context, speed float64) error
}

// MediaPool is the capability set for the project media pool.
type MediaPool interface {
	// ClipCount returns the number of clips in the root bin.
	ClipCount(ctx context.Context) (int, error)
}
