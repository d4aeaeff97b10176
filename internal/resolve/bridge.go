package resolve

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/coltonbatts/davincimcp/internal/errortypes"
)

const (
	// bridgeStopTimeout bounds the wait for the bridge process to exit
	// after its stdin is closed.
	bridgeStopTimeout = 5 * time.Second

	pythonExecutable = "python3"
)

// bridgeRequest is one line-framed call to the scripting bridge.
type bridgeRequest struct {
	ID   int64          `json:"id"`
	Op   string         `json:"op"`
	Args map[string]any `json:"args,omitempty"`
}

// bridgeResponse is the bridge's reply to a single request.
type bridgeResponse struct {
	ID    int64           `json:"id"`
	OK    bool            `json:"ok"`
	Error string          `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// bridgeConn owns the line-oriented request/response exchange with the
// bridge process. One request is in flight at a time; a background read
// loop dispatches replies by id so callers can honor context cancellation.
type bridgeConn struct {
	w       io.Writer
	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan bridgeResponse
	closed  chan struct{}
}

func newBridgeConn(w io.Writer, r io.Reader) *bridgeConn {
	c := &bridgeConn{
		w:       w,
		pending: make(map[int64]chan bridgeResponse),
		closed:  make(chan struct{}),
	}
	go c.readLoop(r)
	return c
}

func (c *bridgeConn) readLoop(r io.Reader) {
	defer close(c.closed)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var resp bridgeResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			continue // not a response frame
		}
		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

// call sends one request and waits for its reply or context cancellation.
func (c *bridgeConn) call(ctx context.Context, op string, args map[string]any) (json.RawMessage, error) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	ch := make(chan bridgeResponse, 1)
	c.pending[id] = ch

	payload, err := json.Marshal(bridgeRequest{ID: id, Op: op, Args: args})
	if err == nil {
		payload = append(payload, '\n')
		_, err = c.w.Write(payload)
	}
	if err != nil {
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, errortypes.ExternalError(err, "failed to send bridge request").WithField("op", op)
	}
	c.mu.Unlock()

	select {
	case resp := <-ch:
		if !resp.OK {
			return nil, errors.New(resp.Error)
		}
		return resp.Data, nil
	case <-c.closed:
		return nil, errortypes.NotConnectedError(ErrNotConnected, "bridge connection closed").WithField("op", op)
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, errortypes.TimeoutError(ctx.Err(), "bridge call canceled").WithField("op", op)
	}
}

// BridgeController implements Controller over a spawned scripting bridge.
// The bridge speaks the vendor scripting object model on its side; this side
// only sends opaque operation frames and decodes structured results.
type BridgeController struct {
	script string
	logger *slog.Logger

	mu        sync.Mutex
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	conn      *bridgeConn
	connected bool
}

// NewBridgeController creates a controller that will spawn the given bridge
// script on Connect.
func NewBridgeController(script string, logger *slog.Logger) *BridgeController {
	if logger == nil {
		logger = slog.Default()
	}
	return &BridgeController{script: script, logger: logger}
}

// Connect spawns the bridge process and performs the connect handshake.
func (b *BridgeController) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.connected {
		return nil
	}
	if b.script == "" {
		return errortypes.ConfigError(errors.New("no bridge script configured"),
			"cannot connect to DaVinci Resolve")
	}
	if _, err := os.Stat(b.script); err != nil {
		return errortypes.ConfigError(err, "bridge script not found").
			WithField("path", b.script)
	}

	cmd := exec.Command(pythonExecutable, b.script)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return errortypes.ExternalError(err, "failed to open bridge stdin")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errortypes.ExternalError(err, "failed to open bridge stdout")
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return errortypes.ExternalError(err, "failed to start bridge process").
			WithField("path", b.script)
	}

	b.logger.Info("Resolve bridge started", "pid", cmd.Process.Pid, "script", b.script)
	b.cmd = cmd
	b.stdin = stdin
	b.conn = newBridgeConn(stdin, stdout)

	if _, err := b.conn.call(ctx, "connect", nil); err != nil {
		b.teardownLocked()
		return errortypes.NotConnectedError(err,
			"unable to connect to DaVinci Resolve, is the application running?")
	}

	b.connected = true
	return nil
}

// Close terminates the bridge process. Safe to call when never connected.
func (b *BridgeController) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.teardownLocked()
	return nil
}

func (b *BridgeController) teardownLocked() {
	if b.cmd == nil {
		b.connected = false
		return
	}
	// Closing stdin asks the bridge to exit; escalate if it lingers.
	if b.stdin != nil {
		_ = b.stdin.Close()
	}
	done := make(chan struct{})
	go func() {
		_ = b.cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(bridgeStopTimeout):
		b.logger.Warn("Resolve bridge did not exit, killing process", "pid", b.cmd.Process.Pid)
		_ = b.cmd.Process.Kill()
		<-done
	}
	b.cmd = nil
	b.stdin = nil
	b.conn = nil
	b.connected = false
}

func (b *BridgeController) call(ctx context.Context, op string, args map[string]any) (json.RawMessage, error) {
	b.mu.Lock()
	conn := b.conn
	connected := b.connected
	b.mu.Unlock()

	if !connected || conn == nil {
		return nil, ErrNotConnected
	}
	return conn.call(ctx, op, args)
}

// ProjectInfo implements Controller.
func (b *BridgeController) ProjectInfo(ctx context.Context) (ProjectInfo, error) {
	data, err := b.call(ctx, "project_info", nil)
	if err != nil {
		return ProjectInfo{}, err
	}
	var info ProjectInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return ProjectInfo{}, errortypes.ExternalError(err, "malformed project info from bridge")
	}
	return info, nil
}

// CurrentTimeline implements Controller.
func (b *BridgeController) CurrentTimeline(ctx context.Context) (Timeline, error) {
	data, err := b.call(ctx, "current_timeline", nil)
	if err != nil {
		return nil, err
	}
	var state struct {
		Exists bool `json:"exists"`
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errortypes.ExternalError(err, "malformed timeline state from bridge")
	}
	if !state.Exists {
		return nil, ErrNoTimeline
	}
	return &bridgeTimeline{b: b}, nil
}

// MediaPool implements Controller.
func (b *BridgeController) MediaPool(ctx context.Context) (MediaPool, error) {
	data, err := b.call(ctx, "media_pool", nil)
	if err != nil {
		return nil, err
	}
	var state struct {
		Exists bool `json:"exists"`
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errortypes.ExternalError(err, "malformed media pool state from bridge")
	}
	if !state.Exists {
		return nil, ErrNoMediaPool
	}
	return &bridgeMediaPool{b: b}, nil
}

// bridgeTimeline forwards Timeline calls as timeline-scoped operations.
type bridgeTimeline struct {
	b *BridgeController
}

func (t *bridgeTimeline) op(ctx context.Context, op string, args map[string]any) (json.RawMessage, error) {
	return t.b.call(ctx, op, args)
}

func (t *bridgeTimeline) Split(ctx context.Context) error {
	_, err := t.op(ctx, "timeline.split", nil)
	return err
}

func (t *bridgeTimeline) AddTransition(ctx context.Context, kind string, duration float64) error {
	_, err := t.op(ctx, "timeline.add_transition", map[string]any{
		"type":     kind,
		"duration": duration,
	})
	return err
}

func (t *bridgeTimeline) AddMarker(ctx context.Context, name, color string) (string, error) {
	data, err := t.op(ctx, "timeline.add_marker", map[string]any{
		"name":  name,
		"color": color,
	})
	if err != nil {
		return "", err
	}
	var result struct {
		Position string `json:"position"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", errortypes.ExternalError(err, "malformed marker result from bridge")
	}
	return result.Position, nil
}

func (t *bridgeTimeline) CurrentTimecode(ctx context.Context) (string, error) {
	data, err := t.op(ctx, "timeline.current_timecode", nil)
	if err != nil {
		return "", err
	}
	var result struct {
		Timecode string `json:"timecode"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", errortypes.ExternalError(err, "malformed timecode from bridge")
	}
	return result.Timecode, nil
}

func (t *bridgeTimeline) CurrentClip(ctx context.Context) (ClipInfo, error) {
	data, err := t.op(ctx, "timeline.current_clip", nil)
	if err != nil {
		return ClipInfo{}, err
	}
	var clip ClipInfo
	if err := json.Unmarshal(data, &clip); err != nil {
		return ClipInfo{}, errortypes.ExternalError(err, "malformed clip info from bridge")
	}
	return clip, nil
}

func (t *bridgeTimeline) PlaybackStart(ctx context.Context) error {
	_, err := t.op(ctx, "timeline.playback_start", nil)
	return err
}

func (t *bridgeTimeline) PlaybackStop(ctx context.Context) error {
	_, err := t.op(ctx, "timeline.playback_stop", nil)
	return err
}

func (t *bridgeTimeline) PlaybackToggle(ctx context.Context) error {
	_, err := t.op(ctx, "timeline.playback_toggle", nil)
	return err
}

func (t *bridgeTimeline) JumpToTimecode(ctx context.Context, timecode string) error {
	_, err := t.op(ctx, "timeline.jump_to_timecode", map[string]any{"timecode": timecode})
	return err
}

func (t *bridgeTimeline) JumpToFrameOffset(ctx context.Context, offset int) error {
	_, err := t.op(ctx, "timeline.jump_to_frame_offset", map[string]any{"frame_offset": offset})
	return err
}

func (t *bridgeTimeline) SetPlaybackSpeed(ctx context.Context, speed float64) error {
	_, err := t.op(ctx, "timeline.set_playback_speed", map[string]any{"speed": speed})
	return err
}

// bridgeMediaPool forwards MediaPool calls.
type bridgeMediaPool struct {
	b *BridgeController
}

func (m *bridgeMediaPool) ClipCount(ctx context.Context) (int, error) {
	data, err := m.b.call(ctx, "media_pool.clip_count", nil)
	if err != nil {
		return 0, err
	}
	var result struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return 0, errortypes.ExternalError(err, "malformed clip count from bridge")
	}
	return result.Count, nil
}

var _ Controller = (*BridgeController)(nil)
