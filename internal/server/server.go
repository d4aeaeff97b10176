// Package server provides the MCP server implementation for the DavinciMCP
// tool surface.
package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/localrivet/gomcp/server"

	"github.com/coltonbatts/davincimcp/internal/commands"
	"github.com/coltonbatts/davincimcp/internal/errortypes"
	"github.com/coltonbatts/davincimcp/internal/media"
	"github.com/coltonbatts/davincimcp/internal/resolve"
	"github.com/coltonbatts/davincimcp/internal/tools"
)

// Common server error types
var (
	ErrServerNotInitialized = errors.New("server not initialized")
	ErrMissingDependencies  = errors.New("one or more required dependencies are nil")
)

// ResolveToolServer implements the EditingToolServer interface, exposing the
// command catalog and media analysis as MCP tools over stdio.
type ResolveToolServer struct {
	controller resolve.Controller
	executor   *commands.Executor
	analyzer   *media.Analyzer
	suggester  *media.SuggestionEngine
	mcpServer  server.Server

	// ctx is the lifecycle context tool calls run under; Stop cancels it.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewResolveToolServer creates a new ResolveToolServer instance.
func NewResolveToolServer(controller resolve.Controller, executor *commands.Executor, analyzer *media.Analyzer, suggester *media.SuggestionEngine) *ResolveToolServer {
	ctx, cancel := context.WithCancel(context.Background())
	return &ResolveToolServer{
		controller: controller,
		executor:   executor,
		analyzer:   analyzer,
		suggester:  suggester,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Initialize initializes the server with dependencies and configurations.
func (s *ResolveToolServer) Initialize() error {
	slog.Info("Initializing Resolve Tool Server")

	if s.controller == nil || s.executor == nil || s.analyzer == nil || s.suggester == nil {
		return errortypes.ConfigError(ErrMissingDependencies, "server initialization failed")
	}

	srv := server.NewServer("davincimcp")

	srv = srv.Tool(tools.ToolCut, "Cut the clip at the current playhead position",
		s.handleCut)

	srv = srv.Tool(tools.ToolAddTransition, "Add a transition at the current edit point",
		s.handleAddTransition)

	srv = srv.Tool(tools.ToolSetMarker, "Set a named, colored marker at the playhead",
		s.handleSetMarker)

	srv = srv.Tool(tools.ToolTransportControl, "Control timeline playback and playhead position",
		s.handleTransportControl)

	srv = srv.Tool(tools.ToolAnalyzeClip, "Analyze the clip under the playhead",
		s.handleAnalyzeClip)

	srv = srv.Tool(tools.ToolSuggestCuts, "Suggest cut points for the current long take",
		s.handleSuggestCuts)

	srv = srv.Tool(tools.ToolProjectInfo, "Get the open project's name and timeline count",
		s.handleProjectInfo)

	s.mcpServer = srv
	slog.Info("Resolve Tool Server initialized successfully", "tool_count", 7)
	return nil
}

// Start starts the MCP server on the stdio transport.
func (s *ResolveToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server")
	}

	slog.Info("Starting Resolve Tool Server")

	stdioServer := s.mcpServer.AsStdio()
	return stdioServer.Run()
}

// Stop gracefully shuts down the MCP server, cancelling any in-flight
// tool calls. The stdio transport itself exits when stdin is closed.
func (s *ResolveToolServer) Stop() error {
	slog.Info("Stopping Resolve Tool Server")
	s.cancel()
	return nil
}

// handleCut handles the cut MCP tool call.
func (s *ResolveToolServer) handleCut(ctx *server.Context, req tools.CutRequest) (tools.CutResponse, error) {
	slog.Info("Processing cut request")

	result := s.executor.ExecuteFromText(s.ctx, "cut")
	response := tools.CutResponse{
		Status:  result.Status,
		Message: result.Message,
	}
	if !result.Succeeded() {
		response.Error = result.Message
	}
	return response, nil
}

// handleAddTransition handles the add_transition MCP tool call.
func (s *ResolveToolServer) handleAddTransition(ctx *server.Context, req tools.AddTransitionRequest) (tools.AddTransitionResponse, error) {
	slog.Info("Processing add_transition request", "type", req.Type, "duration", req.Duration)

	cmd, ok := s.executorCommand(commands.CommandIDTransition)
	if !ok {
		return tools.AddTransitionResponse{Status: "error", Error: "transition command not registered"}, nil
	}

	result := cmd.Execute(s.ctx, commands.TransitionParams{
		Type:     req.Type,
		Duration: req.Duration,
	})
	response := tools.AddTransitionResponse{
		Status:  result.Status,
		Message: result.Message,
	}
	if result.Succeeded() {
		if t, ok := result.Field("transition_type").(string); ok {
			response.TransitionType = t
		}
		if d, ok := result.Field("duration").(float64); ok {
			response.Duration = d
		}
	} else {
		response.Error = result.Message
	}
	return response, nil
}

// handleSetMarker handles the set_marker MCP tool call.
func (s *ResolveToolServer) handleSetMarker(ctx *server.Context, req tools.SetMarkerRequest) (tools.SetMarkerResponse, error) {
	slog.Info("Processing set_marker request", "name", req.Name, "color", req.Color)

	cmd, ok := s.executorCommand(commands.CommandIDMarker)
	if !ok {
		return tools.SetMarkerResponse{Status: "error", Error: "marker command not registered"}, nil
	}

	result := cmd.Execute(s.ctx, commands.MarkerParams{
		Name:  req.Name,
		Color: req.Color,
	})
	response := tools.SetMarkerResponse{
		Status:  result.Status,
		Message: result.Message,
	}
	if result.Succeeded() {
		if n, ok := result.Field("marker_name").(string); ok {
			response.MarkerName = n
		}
		if c, ok := result.Field("marker_color").(string); ok {
			response.MarkerColor = c
		}
		if p, ok := result.Field("position").(string); ok {
			response.Position = p
		}
	} else {
		response.Error = result.Message
	}
	return response, nil
}

// handleTransportControl handles the transport_control MCP tool call.
func (s *ResolveToolServer) handleTransportControl(ctx *server.Context, req tools.TransportControlRequest) (tools.TransportControlResponse, error) {
	slog.Info("Processing transport_control request", "action", req.Action)

	var (
		commandID string
		params    commands.Params = commands.EmptyParams{}
	)
	switch req.Action {
	case tools.ActionPlay:
		commandID = commands.CommandIDPlay
	case tools.ActionStop:
		commandID = commands.CommandIDStop
	case tools.ActionToggle:
		commandID = commands.CommandIDToggle
	case tools.ActionJump:
		commandID = commands.CommandIDJump
		params = commands.JumpParams{Timecode: req.Timecode, FrameOffset: req.FrameOffset}
	case tools.ActionSpeed:
		commandID = commands.CommandIDSpeed
		params = commands.SpeedParams{Speed: req.Speed}
	default:
		return tools.TransportControlResponse{
			Status: "error",
			Error:  "Unsupported transport action: " + req.Action,
		}, nil
	}

	cmd, ok := s.executorCommand(commandID)
	if !ok {
		return tools.TransportControlResponse{Status: "error", Error: "transport command not registered"}, nil
	}

	result := cmd.Execute(s.ctx, params)
	response := tools.TransportControlResponse{
		Status:  result.Status,
		Message: result.Message,
	}
	if !result.Succeeded() {
		response.Error = result.Message
	}
	return response, nil
}

// handleAnalyzeClip handles the analyze_clip MCP tool call.
func (s *ResolveToolServer) handleAnalyzeClip(ctx *server.Context, req tools.AnalyzeClipRequest) (tools.AnalyzeClipResponse, error) {
	slog.Info("Processing analyze_clip request")

	analysis, err := s.analyzer.AnalyzeCurrentClip(s.ctx)
	if err != nil {
		err = errortypes.ExternalError(err, "failed to analyze current clip")
		errortypes.LogError(nil, err)
		return tools.AnalyzeClipResponse{Status: "error", Error: err.Error()}, nil
	}

	return tools.AnalyzeClipResponse{
		Status:        "success",
		Duration:      analysis.Duration,
		FrameRate:     analysis.FrameRate,
		Resolution:    analysis.Resolution,
		AudioChannels: analysis.AudioChannels,
		SuggestedCuts: analysis.SuggestedCuts,
	}, nil
}

// handleSuggestCuts handles the suggest_cuts MCP tool call.
func (s *ResolveToolServer) handleSuggestCuts(ctx *server.Context, req tools.SuggestCutsRequest) (tools.SuggestCutsResponse, error) {
	slog.Info("Processing suggest_cuts request")

	suggestions, err := s.suggester.SuggestCutsForLongTake(s.ctx)
	if err != nil {
		err = errortypes.ExternalError(err, "failed to suggest cuts")
		errortypes.LogError(nil, err)
		return tools.SuggestCutsResponse{Status: "error", Error: err.Error()}, nil
	}

	response := tools.SuggestCutsResponse{
		Status:       "success",
		ClipDuration: suggestions.ClipDuration,
		Summary:      suggestions.Summary,
	}
	for _, cut := range suggestions.SuggestedCuts {
		response.Cuts = append(response.Cuts, tools.SuggestedCut{
			Timecode:   cut.Timecode,
			Confidence: cut.Confidence,
			Reason:     cut.Reason,
		})
	}
	return response, nil
}

// handleProjectInfo handles the project_info MCP tool call.
func (s *ResolveToolServer) handleProjectInfo(ctx *server.Context, req tools.ProjectInfoRequest) (tools.ProjectInfoResponse, error) {
	slog.Info("Processing project_info request")

	info, err := s.controller.ProjectInfo(s.ctx)
	if err != nil {
		err = errortypes.ExternalError(err, "failed to get project info")
		errortypes.LogError(nil, err)
		return tools.ProjectInfoResponse{Status: "error", Error: err.Error()}, nil
	}

	return tools.ProjectInfoResponse{
		Status:        "success",
		Name:          info.Name,
		TimelineCount: info.TimelineCount,
	}, nil
}

func (s *ResolveToolServer) executorCommand(id string) (commands.Command, bool) {
	return s.executor.Command(id)
}
