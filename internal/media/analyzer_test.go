package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/coltonbatts/davincimcp/internal/resolve"
)

var testError = errors.New("test error")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubTimeline implements the resolve.Timeline interface for testing
type stubTimeline struct {
	resolve.Timeline
	clip resolve.ClipInfo
	err  error
}

func (s *stubTimeline) CurrentClip(ctx context.Context) (resolve.ClipInfo, error) {
	if s.err != nil {
		return resolve.ClipInfo{}, s.err
	}
	return s.clip, nil
}

// stubController implements the resolve.Controller interface for testing
type stubController struct {
	timeline   *stubTimeline
	noTimeline bool
}

func (s *stubController) Connect(ctx context.Context) error { return nil }

func (s *stubController) ProjectInfo(ctx context.Context) (resolve.ProjectInfo, error) {
	return resolve.ProjectInfo{}, nil
}

func (s *stubController) CurrentTimeline(ctx context.Context) (resolve.Timeline, error) {
	if s.noTimeline {
		return nil, resolve.ErrNoTimeline
	}
	return s.timeline, nil
}

func (s *stubController) MediaPool(ctx context.Context) (resolve.MediaPool, error) {
	return nil, resolve.ErrNoMediaPool
}

func testClip() resolve.ClipInfo {
	return resolve.ClipInfo{
		Name:          "A001_C002",
		Duration:      45.2,
		FrameRate:     24,
		Resolution:    "1920x1080",
		AudioChannels: 2,
	}
}

func newTestAnalyzer(clip resolve.ClipInfo) *Analyzer {
	controller := &stubController{timeline: &stubTimeline{clip: clip}}
	return NewAnalyzer(controller, testLogger())
}

func TestAnalyzeCurrentClip(t *testing.T) {
	analyzer := newTestAnalyzer(testClip())

	analysis, err := analyzer.AnalyzeCurrentClip(context.Background())
	if err != nil {
		t.Fatalf("AnalyzeCurrentClip failed: %v", err)
	}
	if analysis.Duration != 45.2 {
		t.Errorf("Expected duration 45.2, got %g", analysis.Duration)
	}
	if analysis.Resolution != "1920x1080" {
		t.Errorf("Expected resolution from clip, got %q", analysis.Resolution)
	}
	if len(analysis.SuggestedCuts) == 0 {
		t.Error("Expected suggested cuts for a long clip")
	}
}

func TestAnalyzeCurrentClipNoTimeline(t *testing.T) {
	analyzer := NewAnalyzer(&stubController{noTimeline: true}, testLogger())

	_, err := analyzer.AnalyzeCurrentClip(context.Background())
	if !errors.Is(err, resolve.ErrNoTimeline) {
		t.Errorf("Expected ErrNoTimeline, got %v", err)
	}
}

func TestAnalyzeCurrentClipShortClipHasNoCuts(t *testing.T) {
	clip := testClip()
	clip.Duration = 3
	analyzer := newTestAnalyzer(clip)

	analysis, err := analyzer.AnalyzeCurrentClip(context.Background())
	if err != nil {
		t.Fatalf("AnalyzeCurrentClip failed: %v", err)
	}
	if len(analysis.SuggestedCuts) != 0 {
		t.Errorf("Expected no cuts for a short clip, got %v", analysis.SuggestedCuts)
	}
}

func TestDetectScenes(t *testing.T) {
	analyzer := newTestAnalyzer(testClip())

	scenes, err := analyzer.DetectScenes(context.Background())
	if err != nil {
		t.Fatalf("DetectScenes failed: %v", err)
	}
	if len(scenes) < 2 {
		t.Fatalf("Expected at least a start and one change scene, got %d", len(scenes))
	}
	if scenes[0].Type != "start" || scenes[0].Timecode != "00:00:00:00" {
		t.Errorf("Expected start scene at zero, got %+v", scenes[0])
	}
	for _, scene := range scenes[1:] {
		if scene.Type != "change" {
			t.Errorf("Expected change scene, got %+v", scene)
		}
	}
}

func TestAnalyzeLongTake(t *testing.T) {
	analyzer := newTestAnalyzer(testClip())

	analysis, err := analyzer.AnalyzeLongTake(context.Background())
	if err != nil {
		t.Fatalf("AnalyzeLongTake failed: %v", err)
	}
	if analysis.Duration != 45.2 {
		t.Errorf("Expected duration 45.2, got %g", analysis.Duration)
	}
	if len(analysis.SuggestedEdits) == 0 {
		t.Fatal("Expected suggested edits")
	}
	for _, edit := range analysis.SuggestedEdits {
		if edit.Reason == "" {
			t.Error("Expected every suggested edit to carry a reason")
		}
		if edit.Confidence <= 0 || edit.Confidence > 1 {
			t.Errorf("Confidence out of range: %g", edit.Confidence)
		}
	}
}

func TestSuggestCutsForLongTake(t *testing.T) {
	analyzer := newTestAnalyzer(testClip())
	engine := NewSuggestionEngine(analyzer, testLogger())

	suggestions, err := engine.SuggestCutsForLongTake(context.Background())
	if err != nil {
		t.Fatalf("SuggestCutsForLongTake failed: %v", err)
	}
	if suggestions.ClipDuration != 45.2 {
		t.Errorf("Expected clip duration 45.2, got %g", suggestions.ClipDuration)
	}
	if len(suggestions.SuggestedCuts) == 0 {
		t.Fatal("Expected suggested cuts")
	}
	if !strings.Contains(suggestions.Summary, "potential cut points") {
		t.Errorf("Unexpected summary: %q", suggestions.Summary)
	}
}

func TestSuggestCutsPropagatesBindingError(t *testing.T) {
	controller := &stubController{timeline: &stubTimeline{err: testError}}
	engine := NewSuggestionEngine(NewAnalyzer(controller, testLogger()), testLogger())

	if _, err := engine.SuggestCutsForLongTake(context.Background()); err == nil {
		t.Error("Expected error when the binding fails")
	}
}

func TestTimecodesNear(t *testing.T) {
	if !timecodesNear("00:00:10:00", "00:00:10:10", 15) {
		t.Error("Expected timecodes 10 frames apart to be near with threshold 15")
	}
	if timecodesNear("00:00:10:00", "00:00:12:00", 15) {
		t.Error("Expected timecodes 2 seconds apart to not be near")
	}
	if timecodesNear("bad", "00:00:10:00", 15) {
		t.Error("Expected malformed timecode to not match")
	}
}

func TestSecondsToTimecode(t *testing.T) {
	if tc := secondsToTimecode(0, 24); tc != "00:00:00:00" {
		t.Errorf("Unexpected timecode for zero: %q", tc)
	}
	if tc := secondsToTimecode(3661.5, 24); tc != "01:01:01:12" {
		t.Errorf("Unexpected timecode: %q", tc)
	}
}
