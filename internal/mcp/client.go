package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/coltonbatts/davincimcp/internal/config"
	"github.com/coltonbatts/davincimcp/internal/telemetry"
)

const (
	clientName    = "davincimcp"
	clientVersion = "0.1.0"

	querySystemPrompt = "You are an AI assistant that helps with video editing in DaVinci Resolve."
	queryMaxTokens    = 1024
)

// Client routes natural-language queries through a hosted model with MCP
// tool context. Connection state is all-or-nothing: a failed connect
// releases every acquired resource in reverse order and leaves the client
// as if connect was never called.
type Client struct {
	enabled   bool
	model     string
	anthropic *anthropic.Client
	metrics   *telemetry.MetricsCollector
	logger    *slog.Logger

	mu          sync.Mutex
	transport   *Transport
	cleanup     []func()
	initialized bool
}

// NewClient creates a protocol client from configuration. The Anthropic
// client is only constructed when the gateway is enabled and a key is
// present; its absence downgrades features rather than failing.
func NewClient(cfg *config.Config, metrics *telemetry.MetricsCollector, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		enabled: cfg.MCP.Enabled,
		model:   cfg.Anthropic.Model,
		metrics: metrics,
		logger:  logger,
	}

	if !c.enabled {
		return c
	}
	if cfg.Anthropic.APIKey == "" {
		logger.Warn("No Anthropic API key found, some MCP features may be limited")
		return c
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.Anthropic.APIKey))
	c.anthropic = &client
	logger.Info("MCP client initialized")
	return c
}

// Connected reports whether a server connection is established.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// ConnectToServer launches the tool-server script and performs the protocol
// handshake. Returns false on any failure; acquired resources are released
// in reverse acquisition order before returning.
func (c *Client) ConnectToServer(ctx context.Context, scriptPath string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		c.logger.Warn("MCP is not enabled, cannot connect to server")
		return false
	}
	if c.anthropic == nil {
		c.logger.Error("Anthropic client not initialized, cannot connect to server")
		return false
	}
	if c.initialized {
		c.logger.Warn("Already connected to an MCP server")
		return false
	}

	kind := DetectScriptKind(scriptPath)
	argv := kind.Command(scriptPath)
	if argv == nil {
		c.logger.Error("Unsupported script type for MCP server", "path", scriptPath)
		c.countFailure()
		return false
	}

	c.logger.Info("Connecting to MCP server", "path", scriptPath)

	abs, err := filepath.Abs(scriptPath)
	if err != nil {
		abs = scriptPath
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = filepath.Dir(abs)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		c.logger.Error("Error opening MCP server stdin", "error", err)
		c.countFailure()
		return false
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		c.logger.Error("Error opening MCP server stdout", "error", err)
		c.countFailure()
		return false
	}
	if err := cmd.Start(); err != nil {
		c.logger.Error("Error starting MCP server", "error", err)
		c.countFailure()
		return false
	}

	// Resources release in reverse acquisition order on failure and on
	// disconnect.
	var cleanup []func()
	cleanup = append(cleanup, func() {
		_ = stdin.Close()
		done := make(chan struct{})
		go func() {
			_ = cmd.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(stopTimeout):
			_ = cmd.Process.Kill()
			<-done
		}
	})

	transport := NewTransport(stdin, stdout)
	if err := transport.Initialize(ctx, clientName, clientVersion); err != nil {
		c.logger.Error("Error connecting to MCP server", "error", err)
		c.release(cleanup)
		c.countFailure()
		return false
	}

	resources, err := transport.ListResources(ctx)
	if err != nil {
		c.logger.Error("Error listing MCP resources", "error", err)
		c.release(cleanup)
		c.countFailure()
		return false
	}
	tools, err := transport.ListTools(ctx)
	if err != nil {
		c.logger.Error("Error listing MCP tools", "error", err)
		c.release(cleanup)
		c.countFailure()
		return false
	}

	c.logger.Info("Connected to MCP server",
		"resources", len(resources), "tools", len(tools))
	c.transport = transport
	c.cleanup = cleanup
	c.initialized = true
	if c.metrics != nil {
		c.metrics.Increment(telemetry.MetricConnects)
	}
	return true
}

func (c *Client) countFailure() {
	if c.metrics != nil {
		c.metrics.Increment(telemetry.MetricConnectFailures)
	}
}

func (c *Client) release(cleanup []func()) {
	for i := len(cleanup) - 1; i >= 0; i-- {
		cleanup[i]()
	}
}

// Disconnect tears down the server connection. Returns false when no
// connection exists; calling it twice is harmless.
func (c *Client) Disconnect() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		c.logger.Warn("Not connected to any MCP server")
		return false
	}

	c.logger.Info("Disconnecting from MCP server")
	c.release(c.cleanup)
	c.cleanup = nil
	c.transport = nil
	c.initialized = false
	return true
}

// ProcessQuery sends a query to the hosted model with tool context. Every
// failure mode is reported as a user-presentable "Error: ..." string.
func (c *Client) ProcessQuery(ctx context.Context, query string) string {
	c.mu.Lock()
	initialized := c.initialized
	client := c.anthropic
	c.mu.Unlock()

	if !initialized {
		c.logger.Warn("Not connected to any MCP server, cannot process query")
		return "Error: Not connected to MCP server"
	}
	if client == nil {
		c.logger.Error("Anthropic client not initialized, cannot process query")
		return "Error: Anthropic client not initialized"
	}

	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.Observe(telemetry.MetricResponseTimeQuery, time.Since(start))
		}
	}()

	c.logger.Info("Processing query with MCP", "query", truncate(query, 50))

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: queryMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: querySystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(query)),
		},
	})
	if err != nil {
		if c.metrics != nil {
			c.metrics.Increment(telemetry.MetricQueryErrors)
		}
		errMsg := fmt.Sprintf("Error processing query with MCP: %s", err)
		c.logger.Error(errMsg)
		return fmt.Sprintf("Error: %s", errMsg)
	}

	if c.metrics != nil {
		c.metrics.Increment(telemetry.MetricQueriesProcessed)
	}

	if len(message.Content) == 0 {
		return "No response received from Claude"
	}
	return message.Content[0].Text
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
