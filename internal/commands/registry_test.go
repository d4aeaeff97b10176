package commands

import (
	"testing"
)

func newTestRegistry() (*Registry, *MockController) {
	controller := &MockController{Timeline: &MockTimeline{}}
	return NewRegistry(controller, nil), controller
}

func TestMatchIntentTransition(t *testing.T) {
	registry, _ := newTestRegistry()

	match, ok := registry.MatchIntent("add a cross dissolve transition")
	if !ok {
		t.Fatal("Expected a match for transition input")
	}
	if match.CommandID != CommandIDTransition {
		t.Errorf("Expected command %q, got %q", CommandIDTransition, match.CommandID)
	}

	params, isTransition := match.Params.(TransitionParams)
	if !isTransition {
		t.Fatalf("Expected TransitionParams, got %T", match.Params)
	}
	if params.Type != "Cross Dissolve" {
		t.Errorf("Expected type 'Cross Dissolve', got %q", params.Type)
	}
}

func TestMatchIntentTransitionWithDuration(t *testing.T) {
	registry, _ := newTestRegistry()

	match, ok := registry.MatchIntent("add a 2.5s fade transition")
	if !ok {
		t.Fatal("Expected a match for transition input")
	}

	params := match.Params.(TransitionParams)
	if params.Type != "Fade" {
		t.Errorf("Expected type 'Fade', got %q", params.Type)
	}
	if params.Duration != 2.5 {
		t.Errorf("Expected duration 2.5, got %g", params.Duration)
	}
}

func TestMatchIntentMarkerName(t *testing.T) {
	registry, _ := newTestRegistry()

	match, ok := registry.MatchIntent("add a marker named 'Scene 1'")
	if !ok {
		t.Fatal("Expected a match for marker input")
	}
	if match.CommandID != CommandIDMarker {
		t.Errorf("Expected command %q, got %q", CommandIDMarker, match.CommandID)
	}

	params := match.Params.(MarkerParams)
	if params.Name != "Scene 1" {
		t.Errorf("Expected name 'Scene 1', got %q", params.Name)
	}
}

func TestMatchIntentMarkerColor(t *testing.T) {
	registry, _ := newTestRegistry()

	match, ok := registry.MatchIntent("set a red marker")
	if !ok {
		t.Fatal("Expected a match for marker input")
	}

	params := match.Params.(MarkerParams)
	if params.Color != "Red" {
		t.Errorf("Expected color 'Red', got %q", params.Color)
	}
}

func TestMatchIntentCut(t *testing.T) {
	registry, _ := newTestRegistry()

	match, ok := registry.MatchIntent("Split the clip here")
	if !ok {
		t.Fatal("Expected a match for cut input")
	}
	if match.CommandID != CommandIDCut {
		t.Errorf("Expected command %q, got %q", CommandIDCut, match.CommandID)
	}
	if _, isEmpty := match.Params.(EmptyParams); !isEmpty {
		t.Errorf("Expected EmptyParams, got %T", match.Params)
	}
}

func TestMatchIntentJumpTimecode(t *testing.T) {
	registry, _ := newTestRegistry()

	match, ok := registry.MatchIntent("jump to 00:01:30:00")
	if !ok {
		t.Fatal("Expected a match for jump input")
	}
	if match.CommandID != CommandIDJump {
		t.Errorf("Expected command %q, got %q", CommandIDJump, match.CommandID)
	}

	params := match.Params.(JumpParams)
	if params.Timecode != "00:01:30:00" {
		t.Errorf("Expected timecode 00:01:30:00, got %q", params.Timecode)
	}
}

func TestMatchIntentNoMatch(t *testing.T) {
	registry, _ := newTestRegistry()

	if _, ok := registry.MatchIntent("bake a cake"); ok {
		t.Error("Expected no match for unrelated input")
	}
}

func TestMatchIntentEmptyInput(t *testing.T) {
	registry, _ := newTestRegistry()

	if _, ok := registry.MatchIntent(""); ok {
		t.Error("Expected no match for empty input")
	}
	if _, ok := registry.MatchIntent("   "); ok {
		t.Error("Expected no match for whitespace-only input")
	}
}

func TestMatchIntentIsCaseInsensitive(t *testing.T) {
	registry, _ := newTestRegistry()

	match, ok := registry.MatchIntent("ADD A CROSS DISSOLVE TRANSITION")
	if !ok {
		t.Fatal("Expected a match for uppercase input")
	}
	if match.CommandID != CommandIDTransition {
		t.Errorf("Expected command %q, got %q", CommandIDTransition, match.CommandID)
	}
}

func TestRegistrationOrderWins(t *testing.T) {
	registry, _ := newTestRegistry()

	// "fade" is a trigger for transition; the transition command is
	// registered before the transport commands, so it wins even though
	// the text also mentions playback.
	match, ok := registry.MatchIntent("fade then play")
	if !ok {
		t.Fatal("Expected a match")
	}
	if match.CommandID != CommandIDTransition {
		t.Errorf("Expected earlier-registered command to win, got %q", match.CommandID)
	}
}

func TestRegisterValidation(t *testing.T) {
	registry, controller := newTestRegistry()

	if err := registry.Register(nil, "trigger"); err == nil {
		t.Error("Expected error registering nil command")
	}
	if err := registry.Register(NewCutCommand(controller, nil)); err == nil {
		t.Error("Expected error registering command with no triggers")
	}
}

func TestRegisterReplacesInPlace(t *testing.T) {
	registry, controller := newTestRegistry()

	replacement := NewCutCommand(controller, nil)
	if err := registry.Register(replacement, "chop"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// New trigger works, original position preserved: "chop" resolves to
	// the cut command, and transition still matches after it.
	match, ok := registry.MatchIntent("chop this clip")
	if !ok || match.CommandID != CommandIDCut {
		t.Errorf("Expected replaced cut command to match, got %v %v", match.CommandID, ok)
	}

	got, found := registry.Get(CommandIDCut)
	if !found || got != Command(replacement) {
		t.Error("Expected Get to return the replacement command")
	}
}

func TestGetUnknownCommand(t *testing.T) {
	registry, _ := newTestRegistry()

	if _, ok := registry.Get("nonexistent"); ok {
		t.Error("Expected Get to report missing command")
	}
}
