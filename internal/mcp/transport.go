package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/coltonbatts/davincimcp/internal/errortypes"
)

// ProtocolVersion is the MCP protocol revision this client speaks.
const ProtocolVersion = "2024-11-05"

// rpcRequest is one JSON-RPC 2.0 request frame. Frames are newline
// delimited on the wire.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      *int64 `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// Transport is a JSON-RPC 2.0 client over the stdio pipes of a tool-server
// process. A background read loop dispatches responses by id; notifications
// from the server are ignored.
type Transport struct {
	w io.Writer

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan rpcResponse
	closed  chan struct{}
}

// NewTransport starts a transport over the given pipes.
func NewTransport(w io.Writer, r io.Reader) *Transport {
	t := &Transport{
		w:       w,
		pending: make(map[int64]chan rpcResponse),
		closed:  make(chan struct{}),
	}
	go t.readLoop(r)
	return t
}

func (t *Transport) readLoop(r io.Reader) {
	defer func() {
		close(t.closed)
		t.mu.Lock()
		for id, ch := range t.pending {
			delete(t.pending, id)
			close(ch)
		}
		t.mu.Unlock()
	}()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var resp rpcResponse
		if err := json.Unmarshal(line, &resp); err != nil || resp.ID == nil {
			continue // notification or malformed frame
		}
		t.mu.Lock()
		ch, ok := t.pending[*resp.ID]
		if ok {
			delete(t.pending, *resp.ID)
		}
		t.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

// Call sends a request and waits for its response, decoding the result into
// out when out is non-nil.
func (t *Transport) Call(ctx context.Context, method string, params, out any) error {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	ch := make(chan rpcResponse, 1)
	t.pending[id] = ch

	err := t.write(rpcRequest{JSONRPC: "2.0", ID: &id, Method: method, Params: params})
	if err != nil {
		delete(t.pending, id)
		t.mu.Unlock()
		return errortypes.ExternalError(err, "failed to send MCP request").WithField("method", method)
	}
	t.mu.Unlock()

	select {
	case resp, ok := <-ch:
		if !ok {
			return errortypes.NotConnectedError(nil, "MCP server closed the connection").
				WithField("method", method)
		}
		if resp.Error != nil {
			return errortypes.ExternalError(resp.Error, "MCP server returned an error").
				WithField("method", method)
		}
		if out != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, out); err != nil {
				return errortypes.ExternalError(err, "malformed MCP response").
					WithField("method", method)
			}
		}
		return nil
	case <-ctx.Done():
		t.mu.Lock()
		delete(t.pending, id)
		t.mu.Unlock()
		return errortypes.TimeoutError(ctx.Err(), "MCP call canceled").WithField("method", method)
	}
}

// Notify sends a request with no id; the server must not reply to it.
func (t *Transport) Notify(method string, params any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.write(rpcRequest{JSONRPC: "2.0", Method: method, Params: params}); err != nil {
		return errortypes.ExternalError(err, "failed to send MCP notification").
			WithField("method", method)
	}
	return nil
}

// write is called with t.mu held.
func (t *Transport) write(req rpcRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	_, err = t.w.Write(payload)
	return err
}

// Initialize performs the MCP handshake and the initialized notification.
func (t *Transport) Initialize(ctx context.Context, clientName, clientVersion string) error {
	params := map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    clientName,
			"version": clientVersion,
		},
	}
	if err := t.Call(ctx, "initialize", params, nil); err != nil {
		return err
	}
	return t.Notify("notifications/initialized", nil)
}

// Resource is one entry from resources/list.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ListResources returns the resources the server exposes.
func (t *Transport) ListResources(ctx context.Context) ([]Resource, error) {
	var result struct {
		Resources []Resource `json:"resources"`
	}
	if err := t.Call(ctx, "resources/list", nil, &result); err != nil {
		return nil, err
	}
	return result.Resources, nil
}

// Tool is one entry from tools/list.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// ListTools returns the tools the server exposes.
func (t *Transport) ListTools(ctx context.Context) ([]Tool, error) {
	var result struct {
		Tools []Tool `json:"tools"`
	}
	if err := t.Call(ctx, "tools/list", nil, &result); err != nil {
		return nil, err
	}
	return result.Tools, nil
}

// ToolContent is one content block of a tools/call result.
type ToolContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// CallTool invokes a named tool on the server.
func (t *Transport) CallTool(ctx context.Context, name string, arguments map[string]any) ([]ToolContent, error) {
	var result struct {
		Content []ToolContent `json:"content"`
		IsError bool          `json:"isError,omitempty"`
	}
	params := map[string]any{"name": name, "arguments": arguments}
	if err := t.Call(ctx, "tools/call", params, &result); err != nil {
		return nil, err
	}
	if result.IsError {
		msg := "tool call failed"
		if len(result.Content) > 0 && result.Content[0].Text != "" {
			msg = result.Content[0].Text
		}
		return result.Content, errortypes.ExternalError(nil, msg).WithField("tool", name)
	}
	return result.Content, nil
}
