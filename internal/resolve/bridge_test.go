package resolve

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBridge reads line-framed requests and lets a test script the replies.
type fakeBridge struct {
	t        *testing.T
	requests *bufio.Scanner
	out      io.Writer
	closeOut func()
}

func newFakeBridgeConn(t *testing.T) (*bridgeConn, *fakeBridge) {
	t.Helper()
	connOut, bridgeIn := io.Pipe()
	bridgeOut, connIn := io.Pipe()

	conn := newBridgeConn(bridgeIn, bridgeOut)
	t.Cleanup(func() {
		bridgeIn.Close()
		connIn.Close()
	})

	return conn, &fakeBridge{
		t:        t,
		requests: bufio.NewScanner(connOut),
		out:      connIn,
		closeOut: func() { connIn.Close() },
	}
}

func (f *fakeBridge) readRequest() bridgeRequest {
	f.t.Helper()
	if !f.requests.Scan() {
		f.t.Fatal("Expected a request frame")
	}
	var req bridgeRequest
	if err := json.Unmarshal(f.requests.Bytes(), &req); err != nil {
		f.t.Fatalf("Malformed request frame: %v", err)
	}
	return req
}

func (f *fakeBridge) respond(id int64, data any) {
	f.t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		f.t.Fatalf("Failed to marshal data: %v", err)
	}
	payload, _ := json.Marshal(bridgeResponse{ID: id, OK: true, Data: raw})
	payload = append(payload, '\n')
	if _, err := f.out.Write(payload); err != nil {
		f.t.Fatalf("Failed to write response: %v", err)
	}
}

func (f *fakeBridge) respondError(id int64, message string) {
	f.t.Helper()
	payload, _ := json.Marshal(bridgeResponse{ID: id, OK: false, Error: message})
	payload = append(payload, '\n')
	if _, err := f.out.Write(payload); err != nil {
		f.t.Fatalf("Failed to write error response: %v", err)
	}
}

// testController wires a BridgeController directly to an in-memory
// connection, bypassing process startup.
func newTestController(t *testing.T) (*BridgeController, *fakeBridge) {
	t.Helper()
	conn, bridge := newFakeBridgeConn(t)
	controller := &BridgeController{
		logger:    testLogger(),
		conn:      conn,
		connected: true,
	}
	return controller, bridge
}

func TestBridgeConnCall(t *testing.T) {
	conn, bridge := newFakeBridgeConn(t)

	done := make(chan error, 1)
	var data json.RawMessage
	go func() {
		var err error
		data, err = conn.call(context.Background(), "project_info", map[string]any{"k": "v"})
		done <- err
	}()

	req := bridge.readRequest()
	if req.Op != "project_info" {
		t.Errorf("Expected op project_info, got %q", req.Op)
	}
	if req.Args["k"] != "v" {
		t.Errorf("Expected args forwarded, got %v", req.Args)
	}
	bridge.respond(req.ID, map[string]any{"name": "My Project"})

	if err := <-done; err != nil {
		t.Fatalf("call failed: %v", err)
	}
	var decoded struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil || decoded.Name != "My Project" {
		t.Errorf("Unexpected data: %s (%v)", data, err)
	}
}

func TestBridgeConnCallError(t *testing.T) {
	conn, bridge := newFakeBridgeConn(t)

	done := make(chan error, 1)
	go func() {
		_, err := conn.call(context.Background(), "timeline.split", nil)
		done <- err
	}()

	req := bridge.readRequest()
	bridge.respondError(req.ID, "no clip at playhead")

	err := <-done
	if err == nil || err.Error() != "no clip at playhead" {
		t.Errorf("Expected bridge error surfaced, got %v", err)
	}
}

func TestBridgeConnCallClosed(t *testing.T) {
	conn, bridge := newFakeBridgeConn(t)

	done := make(chan error, 1)
	go func() {
		_, err := conn.call(context.Background(), "project_info", nil)
		done <- err
	}()

	bridge.readRequest()
	bridge.closeOut()

	err := <-done
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected after close, got %v", err)
	}
}

func TestBridgeConnCallCanceled(t *testing.T) {
	conn, bridge := newFakeBridgeConn(t)

	// Drain the request but never respond; the call must honor the
	// context.
	go bridge.requests.Scan()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := conn.call(ctx, "project_info", nil); err == nil {
		t.Fatal("Expected cancellation error")
	}
}

func TestControllerNotConnected(t *testing.T) {
	controller := NewBridgeController("bridge.py", testLogger())

	if _, err := controller.ProjectInfo(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
}

func TestConnectMissingScript(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.py")
	controller := NewBridgeController(missing, testLogger())

	if err := controller.Connect(context.Background()); err == nil {
		t.Error("Expected connect to fail for a missing script")
	}
}

func TestConnectNoScriptConfigured(t *testing.T) {
	controller := NewBridgeController("", testLogger())

	if err := controller.Connect(context.Background()); err == nil {
		t.Error("Expected connect to fail without a script path")
	}
}

func TestCloseWithoutConnect(t *testing.T) {
	controller := NewBridgeController("bridge.py", testLogger())
	if err := controller.Close(); err != nil {
		t.Errorf("Expected Close to be safe when never connected: %v", err)
	}
}

func TestCurrentTimelineMissing(t *testing.T) {
	controller, bridge := newTestController(t)

	done := make(chan error, 1)
	go func() {
		_, err := controller.CurrentTimeline(context.Background())
		done <- err
	}()

	req := bridge.readRequest()
	if req.Op != "current_timeline" {
		t.Fatalf("Expected op current_timeline, got %q", req.Op)
	}
	bridge.respond(req.ID, map[string]any{"exists": false})

	if err := <-done; !errors.Is(err, ErrNoTimeline) {
		t.Errorf("Expected ErrNoTimeline, got %v", err)
	}
}

func TestTimelineAddMarker(t *testing.T) {
	controller, bridge := newTestController(t)

	type markerResult struct {
		position string
		err      error
	}
	done := make(chan markerResult, 1)
	go func() {
		timeline := &bridgeTimeline{b: controller}
		position, err := timeline.AddMarker(context.Background(), "Scene 1", "Blue")
		done <- markerResult{position, err}
	}()

	req := bridge.readRequest()
	if req.Op != "timeline.add_marker" {
		t.Fatalf("Expected op timeline.add_marker, got %q", req.Op)
	}
	if req.Args["name"] != "Scene 1" || req.Args["color"] != "Blue" {
		t.Errorf("Unexpected marker args: %v", req.Args)
	}
	bridge.respond(req.ID, map[string]any{"position": "00:01:10:05"})

	result := <-done
	if result.err != nil {
		t.Fatalf("AddMarker failed: %v", result.err)
	}
	if result.position != "00:01:10:05" {
		t.Errorf("Expected marker position, got %q", result.position)
	}
}

func TestTimelineAddTransitionArgs(t *testing.T) {
	controller, bridge := newTestController(t)

	done := make(chan error, 1)
	go func() {
		timeline := &bridgeTimeline{b: controller}
		done <- timeline.AddTransition(context.Background(), "Cross Dissolve", 1.5)
	}()

	req := bridge.readRequest()
	if req.Op != "timeline.add_transition" {
		t.Fatalf("Expected op timeline.add_transition, got %q", req.Op)
	}
	if req.Args["type"] != "Cross Dissolve" || req.Args["duration"] != 1.5 {
		t.Errorf("Unexpected transition args: %v", req.Args)
	}
	bridge.respond(req.ID, map[string]any{})

	if err := <-done; err != nil {
		t.Fatalf("AddTransition failed: %v", err)
	}
}

func TestMediaPoolClipCount(t *testing.T) {
	controller, bridge := newTestController(t)

	type countResult struct {
		count int
		err   error
	}
	done := make(chan countResult, 1)
	go func() {
		pool := &bridgeMediaPool{b: controller}
		count, err := pool.ClipCount(context.Background())
		done <- countResult{count, err}
	}()

	req := bridge.readRequest()
	if req.Op != "media_pool.clip_count" {
		t.Fatalf("Expected op media_pool.clip_count, got %q", req.Op)
	}
	bridge.respond(req.ID, map[string]any{"count": 12})

	result := <-done
	if result.err != nil {
		t.Fatalf("ClipCount failed: %v", result.err)
	}
	if result.count != 12 {
		t.Errorf("Expected 12 clips, got %d", result.count)
	}
}
