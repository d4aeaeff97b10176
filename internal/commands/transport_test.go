package commands

import (
	"context"
	"testing"
)

func TestPlaybackCommands(t *testing.T) {
	controller := &MockController{Timeline: &MockTimeline{}}

	play := NewPlaybackStartCommand(controller, testLogger())
	stop := NewPlaybackStopCommand(controller, testLogger())
	toggle := NewPlaybackToggleCommand(controller, testLogger())

	if result := play.Execute(context.Background(), EmptyParams{}); !result.Succeeded() {
		t.Errorf("Expected play to succeed, got %q", result.Message)
	}
	if result := stop.Execute(context.Background(), EmptyParams{}); !result.Succeeded() {
		t.Errorf("Expected stop to succeed, got %q", result.Message)
	}
	if result := toggle.Execute(context.Background(), EmptyParams{}); !result.Succeeded() {
		t.Errorf("Expected toggle to succeed, got %q", result.Message)
	}

	timeline := controller.Timeline
	if timeline.PlaybackStarts != 1 || timeline.PlaybackStops != 1 || timeline.PlaybackToggles != 1 {
		t.Errorf("Expected one call each, got starts=%d stops=%d toggles=%d",
			timeline.PlaybackStarts, timeline.PlaybackStops, timeline.PlaybackToggles)
	}
}

func TestJumpCommandTimecode(t *testing.T) {
	controller := &MockController{Timeline: &MockTimeline{}}
	cmd := NewJumpCommand(controller, testLogger())

	result := cmd.Execute(context.Background(), JumpParams{Timecode: "00:01:00:00"})
	if !result.Succeeded() {
		t.Fatalf("Expected success, got %q", result.Message)
	}
	if len(controller.Timeline.JumpedTimecodes) != 1 || controller.Timeline.JumpedTimecodes[0] != "00:01:00:00" {
		t.Errorf("Expected jump to 00:01:00:00, got %v", controller.Timeline.JumpedTimecodes)
	}
}

func TestJumpCommandFrameOffset(t *testing.T) {
	controller := &MockController{Timeline: &MockTimeline{}}
	cmd := NewJumpCommand(controller, testLogger())

	result := cmd.Execute(context.Background(), JumpParams{FrameOffset: -24})
	if !result.Succeeded() {
		t.Fatalf("Expected success, got %q", result.Message)
	}
	if len(controller.Timeline.JumpedOffsets) != 1 || controller.Timeline.JumpedOffsets[0] != -24 {
		t.Errorf("Expected jump by -24 frames, got %v", controller.Timeline.JumpedOffsets)
	}
}

func TestJumpCommandMissingParams(t *testing.T) {
	controller := &MockController{Timeline: &MockTimeline{}}
	cmd := NewJumpCommand(controller, testLogger())

	result := cmd.Execute(context.Background(), JumpParams{})
	if result.Succeeded() {
		t.Fatal("Expected error for missing jump parameters")
	}
}

func TestSpeedCommand(t *testing.T) {
	controller := &MockController{Timeline: &MockTimeline{}}
	cmd := NewPlaybackSpeedCommand(controller, testLogger())

	result := cmd.Execute(context.Background(), SpeedParams{Speed: 0.5})
	if !result.Succeeded() {
		t.Fatalf("Expected success, got %q", result.Message)
	}
	if controller.Timeline.Speeds[0] != 0.5 {
		t.Errorf("Expected speed 0.5, got %g", controller.Timeline.Speeds[0])
	}

	if result := cmd.Execute(context.Background(), SpeedParams{}); result.Succeeded() {
		t.Error("Expected error for zero speed")
	}
}
