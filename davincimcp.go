// Package davincimcp wires the DavinciMCP components into a single
// application facade: the Resolve binding, the natural-language command
// pipeline, media analysis, the Gemini adapter and the MCP gateway.
package davincimcp

import (
	"context"
	"log/slog"

	"github.com/coltonbatts/davincimcp/internal/commands"
	"github.com/coltonbatts/davincimcp/internal/config"
	"github.com/coltonbatts/davincimcp/internal/errortypes"
	"github.com/coltonbatts/davincimcp/internal/gemini"
	"github.com/coltonbatts/davincimcp/internal/mcp"
	"github.com/coltonbatts/davincimcp/internal/media"
	"github.com/coltonbatts/davincimcp/internal/resolve"
	"github.com/coltonbatts/davincimcp/internal/server"
	"github.com/coltonbatts/davincimcp/internal/telemetry"
)

// Config represents the configuration for the DavinciMCP application.
type Config = config.Config

// App is the assembled DavinciMCP application.
type App struct {
	config     *config.Config
	controller resolve.Controller
	executor   *commands.Executor
	gemini     *gemini.Handler
	mcpClient  *mcp.Client
	mcpServer  *mcp.ServerProcess
	analyzer   *media.Analyzer
	suggester  *media.SuggestionEngine
	metrics    *telemetry.MetricsCollector
	logger     *slog.Logger
}

// AppOptions defines the options for creating a new App.
type AppOptions struct {
	Config     *Config            // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string             // Path to config file. Used if Config is nil.
	Logger     *slog.Logger       // External logger. If nil, slog.Default() is used.
	Controller resolve.Controller // Application binding override. If nil, the bridge controller is used.

	// FeedbackDisabled overrides the config's feedback toggle when true.
	FeedbackDisabled bool
}

// NewApp creates a new DavinciMCP App with the given options. The Resolve
// connection is not established here; call Connect before executing
// commands.
func NewApp(ctx context.Context, opts AppOptions) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	if opts.Config != nil {
		cfg = opts.Config
		logger.Info("Using provided Config object for app initialization")
	} else if opts.ConfigPath != "" {
		logger.Info("Loading configuration for app initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			logger.Error("Failed to load configuration from path", "path", opts.ConfigPath, "error", err)
			return nil, errortypes.ConfigError(err, "failed to load configuration from path: "+opts.ConfigPath)
		}
	} else {
		cfg, err = config.LoadConfig()
		if err != nil {
			logger.Error("Failed to load configuration", "error", err)
			return nil, errortypes.ConfigError(err, "failed to load configuration")
		}
	}

	controller := opts.Controller
	if controller == nil {
		controller = resolve.NewBridgeController(cfg.Resolve.BridgeScript, logger)
	}

	metrics := telemetry.NewMetricsCollector()

	registry := commands.NewRegistry(controller, logger)
	feedbackEnabled := cfg.FeedbackEnabled && !opts.FeedbackDisabled
	executor := commands.NewExecutor(registry, feedbackEnabled, metrics, logger)

	analyzer := media.NewAnalyzer(controller, logger)
	suggester := media.NewSuggestionEngine(analyzer, logger)

	geminiHandler := gemini.NewHandler(ctx, cfg, logger)
	mcpClient := mcp.NewClient(cfg, metrics, logger)
	mcpServer := mcp.NewServerProcess(cfg, logger)

	logger.Info("DavinciMCP app initialized", "feedback_enabled", feedbackEnabled)
	return &App{
		config:     cfg,
		controller: controller,
		executor:   executor,
		gemini:     geminiHandler,
		mcpClient:  mcpClient,
		mcpServer:  mcpServer,
		analyzer:   analyzer,
		suggester:  suggester,
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// Connect establishes the connection to DaVinci Resolve.
func (a *App) Connect(ctx context.Context) error {
	return a.controller.Connect(ctx)
}

// Close releases held resources: the MCP client connection, the tool-server
// process, and the Resolve bridge.
func (a *App) Close() {
	if a.mcpClient.Connected() {
		a.mcpClient.Disconnect()
	}
	if a.mcpServer.IsRunning() {
		a.mcpServer.Stop()
	}
	if closer, ok := a.controller.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.logger.Error("Error closing Resolve connection", "error", err)
		}
	}
	if summary := a.metrics.Summary(); summary != "" {
		a.logger.Debug("Session metrics", "metrics", summary)
	}
}

// NewToolServer assembles the MCP tool server over this app's components.
func (a *App) NewToolServer() server.EditingToolServer {
	return server.NewResolveToolServer(a.controller, a.executor, a.analyzer, a.suggester)
}

// Config returns the loaded configuration.
func (a *App) Config() *Config { return a.config }

// Controller returns the application binding.
func (a *App) Controller() resolve.Controller { return a.controller }

// Executor returns the command executor.
func (a *App) Executor() *commands.Executor { return a.executor }

// Gemini returns the AI completion adapter.
func (a *App) Gemini() *gemini.Handler { return a.gemini }

// MCPClient returns the protocol client.
func (a *App) MCPClient() *mcp.Client { return a.mcpClient }

// MCPServer returns the tool-server process manager.
func (a *App) MCPServer() *mcp.ServerProcess { return a.mcpServer }

// Analyzer returns the media analyzer.
func (a *App) Analyzer() *media.Analyzer { return a.analyzer }

// Suggester returns the edit suggestion engine.
func (a *App) Suggester() *media.SuggestionEngine { return a.suggester }

// Metrics returns the metrics collector.
func (a *App) Metrics() *telemetry.MetricsCollector { return a.metrics }
