// Package tools defines the tool names and request/response schemas
// exposed by the DavinciMCP tool server.
package tools

const (
	// ToolCut is the name of the cut MCP tool
	ToolCut = "cut"

	// ToolAddTransition is the name of the add_transition MCP tool
	ToolAddTransition = "add_transition"

	// ToolSetMarker is the name of the set_marker MCP tool
	ToolSetMarker = "set_marker"

	// ToolTransportControl is the name of the transport_control MCP tool
	ToolTransportControl = "transport_control"

	// ToolAnalyzeClip is the name of the analyze_clip MCP tool
	ToolAnalyzeClip = "analyze_clip"

	// ToolSuggestCuts is the name of the suggest_cuts MCP tool
	ToolSuggestCuts = "suggest_cuts"

	// ToolProjectInfo is the name of the project_info MCP tool
	ToolProjectInfo = "project_info"

	// DefaultTransitionDuration is the transition length in seconds used
	// when an add_transition request omits one
	DefaultTransitionDuration = 1.0
)

// Transport actions accepted by the transport_control tool.
const (
	ActionPlay   = "play"
	ActionStop   = "stop"
	ActionToggle = "toggle"
	ActionJump   = "jump"
	ActionSpeed  = "speed"
)

// CutRequest defines the input schema for the cut tool
type CutRequest struct{}

// CutResponse defines the output schema for the cut tool
type CutResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Message is a human-readable description of the outcome
	Message string `json:"message"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// AddTransitionRequest defines the input schema for the add_transition tool
type AddTransitionRequest struct {
	// Type is the transition name (e.g. "Cross Dissolve", "Fade")
	// Defaults to "Cross Dissolve" when empty
	Type string `json:"type,omitempty"`

	// Duration is the transition length in seconds
	// If not specified, DefaultTransitionDuration will be used
	Duration float64 `json:"duration,omitempty"`
}

// AddTransitionResponse defines the output schema for the add_transition tool
type AddTransitionResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Message is a human-readable description of the outcome
	Message string `json:"message"`

	// TransitionType is the transition that was applied
	TransitionType string `json:"transition_type,omitempty"`

	// Duration is the applied transition length in seconds
	Duration float64 `json:"duration,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// SetMarkerRequest defines the input schema for the set_marker tool
type SetMarkerRequest struct {
	// Name is the marker label; defaults to "Marker" when empty
	Name string `json:"name,omitempty"`

	// Color is the marker color; defaults to "Blue" when empty
	Color string `json:"color,omitempty"`
}

// SetMarkerResponse defines the output schema for the set_marker tool
type SetMarkerResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Message is a human-readable description of the outcome
	Message string `json:"message"`

	// MarkerName is the label of the placed marker
	MarkerName string `json:"marker_name,omitempty"`

	// MarkerColor is the color of the placed marker
	MarkerColor string `json:"marker_color,omitempty"`

	// Position is the timecode the marker was placed at
	Position string `json:"position,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// TransportControlRequest defines the input schema for the transport_control tool
type TransportControlRequest struct {
	// Action is one of "play", "stop", "toggle", "jump", "speed"
	Action string `json:"action"`

	// Timecode is the jump target for the "jump" action
	Timecode string `json:"timecode,omitempty"`

	// FrameOffset is the relative jump distance for the "jump" action,
	// used when Timecode is empty
	FrameOffset int `json:"frame_offset,omitempty"`

	// Speed is the playback rate for the "speed" action
	Speed float64 `json:"speed,omitempty"`
}

// TransportControlResponse defines the output schema for the transport_control tool
type TransportControlResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Message is a human-readable description of the outcome
	Message string `json:"message"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// AnalyzeClipRequest defines the input schema for the analyze_clip tool
type AnalyzeClipRequest struct{}

// AnalyzeClipResponse defines the output schema for the analyze_clip tool
type AnalyzeClipResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Duration is the clip length in seconds
	Duration float64 `json:"duration,omitempty"`

	// FrameRate is the clip frame rate
	FrameRate float64 `json:"frame_rate,omitempty"`

	// Resolution is the clip resolution (e.g. "1920x1080")
	Resolution string `json:"resolution,omitempty"`

	// AudioChannels is the number of audio channels
	AudioChannels int `json:"audio_channels,omitempty"`

	// SuggestedCuts lists proposed cut points in seconds from clip start
	SuggestedCuts []float64 `json:"suggested_cuts,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// SuggestCutsRequest defines the input schema for the suggest_cuts tool
type SuggestCutsRequest struct{}

// SuggestCutsResponse defines the output schema for the suggest_cuts tool
type SuggestCutsResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// ClipDuration is the analyzed clip length in seconds
	ClipDuration float64 `json:"clip_duration,omitempty"`

	// Cuts lists the proposed cut points as timecodes with reasoning
	Cuts []SuggestedCut `json:"cuts,omitempty"`

	// Summary is a one-line description of the suggestions
	Summary string `json:"summary,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// SuggestedCut is one proposed cut point in a suggest_cuts response
type SuggestedCut struct {
	// Timecode is the cut position in HH:MM:SS:FF form
	Timecode string `json:"timecode"`

	// Confidence is the suggestion confidence in [0, 1]
	Confidence float64 `json:"confidence"`

	// Reason explains why this point was proposed
	Reason string `json:"reason"`
}

// ProjectInfoRequest defines the input schema for the project_info tool
type ProjectInfoRequest struct{}

// ProjectInfoResponse defines the output schema for the project_info tool
type ProjectInfoResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Name is the open project's name
	Name string `json:"name,omitempty"`

	// TimelineCount is the number of timelines in the project
	TimelineCount int `json:"timeline_count,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}
