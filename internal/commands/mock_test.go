package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/coltonbatts/davincimcp/internal/resolve"
)

var testError = errors.New("test error")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockTimeline implements the resolve.Timeline interface for testing
type MockTimeline struct {
	SplitCalls      int
	Transitions     []string
	Durations       []float64
	MarkerNames     []string
	MarkerColors    []string
	MarkerPosition  string
	Timecode        string
	Clip            resolve.ClipInfo
	JumpedTimecodes []string
	JumpedOffsets   []int
	Speeds          []float64
	PlaybackStarts  int
	PlaybackStops   int
	PlaybackToggles int
	ReturnError     bool
}

func (m *MockTimeline) Split(ctx context.Context) error {
	if m.ReturnError {
		return testError
	}
	m.SplitCalls++
	return nil
}

func (m *MockTimeline) AddTransition(ctx context.Context, kind string, duration float64) error {
	if m.ReturnError {
		return testError
	}
	m.Transitions = append(m.Transitions, kind)
	m.Durations = append(m.Durations, duration)
	return nil
}

func (m *MockTimeline) AddMarker(ctx context.Context, name, color string) (string, error) {
	if m.ReturnError {
		return "", testError
	}
	m.MarkerNames = append(m.MarkerNames, name)
	m.MarkerColors = append(m.MarkerColors, color)
	if m.MarkerPosition == "" {
		return "00:00:00:00", nil
	}
	return m.MarkerPosition, nil
}

func (m *MockTimeline) CurrentTimecode(ctx context.Context) (string, error) {
	if m.ReturnError {
		return "", testError
	}
	return m.Timecode, nil
}

func (m *MockTimeline) CurrentClip(ctx context.Context) (resolve.ClipInfo, error) {
	if m.ReturnError {
		return resolve.ClipInfo{}, testError
	}
	return m.Clip, nil
}

func (m *MockTimeline) PlaybackStart(ctx context.Context) error {
	if m.ReturnError {
		return testError
	}
	m.PlaybackStarts++
	return nil
}

func (m *MockTimeline) PlaybackStop(ctx context.Context) error {
	if m.ReturnError {
		return testError
	}
	m.PlaybackStops++
	return nil
}

func (m *MockTimeline) PlaybackToggle(ctx context.Context) error {
	if m.ReturnError {
		return testError
	}
	m.PlaybackToggles++
	return nil
}

func (m *MockTimeline) JumpToTimecode(ctx context.Context, timecode string) error {
	if m.ReturnError {
		return testError
	}
	m.JumpedTimecodes = append(m.JumpedTimecodes, timecode)
	return nil
}

func (m *MockTimeline) JumpToFrameOffset(ctx context.Context, offset int) error {
	if m.ReturnError {
		return testError
	}
	m.JumpedOffsets = append(m.JumpedOffsets, offset)
	return nil
}

func (m *MockTimeline) SetPlaybackSpeed(ctx context.Context, speed float64) error {
	if m.ReturnError {
		return testError
	}
	m.Speeds = append(m.Speeds, speed)
	return nil
}

// MockMediaPool implements the resolve.MediaPool interface for testing
type MockMediaPool struct {
	Clips int
}

func (m *MockMediaPool) ClipCount(ctx context.Context) (int, error) {
	return m.Clips, nil
}

// MockController implements the resolve.Controller interface for testing
type MockController struct {
	Timeline    *MockTimeline
	Pool        *MockMediaPool
	Project     resolve.ProjectInfo
	NoTimeline  bool
	ReturnError bool
	Connected   bool
}

func (m *MockController) Connect(ctx context.Context) error {
	if m.ReturnError {
		return testError
	}
	m.Connected = true
	return nil
}

func (m *MockController) ProjectInfo(ctx context.Context) (resolve.ProjectInfo, error) {
	if m.ReturnError {
		return resolve.ProjectInfo{}, testError
	}
	return m.Project, nil
}

func (m *MockController) CurrentTimeline(ctx context.Context) (resolve.Timeline, error) {
	if m.ReturnError {
		return nil, testError
	}
	if m.NoTimeline || m.Timeline == nil {
		return nil, resolve.ErrNoTimeline
	}
	return m.Timeline, nil
}

func (m *MockController) MediaPool(ctx context.Context) (resolve.MediaPool, error) {
	if m.ReturnError {
		return nil, testError
	}
	if m.Pool == nil {
		return nil, resolve.ErrNoMediaPool
	}
	return m.Pool, nil
}
