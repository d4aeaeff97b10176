// Package server provides the MCP server implementation for the DavinciMCP
// tool surface.
package server

// EditingToolServer defines the interface for the MCP server that handles
// editing-related tool calls from MCP clients.
type EditingToolServer interface {
	// Initialize initializes the server with dependencies and configurations.
	Initialize() error

	// Start starts the MCP server on the specified transport.
	Start() error

	// Stop gracefully shuts down the MCP server.
	Stop() error
}
