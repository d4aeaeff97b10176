// Package mcp implements the tool-server gateway: a server-process manager
// for external tool-server scripts and a protocol client that routes
// natural-language queries through a hosted model with tool context.
package mcp

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// ScriptKind is the detected runtime of a tool-server script.
type ScriptKind string

const (
	// ScriptKindPython runs under the Python interpreter.
	ScriptKindPython ScriptKind = "python"

	// ScriptKindNode runs under the Node.js runtime.
	ScriptKindNode ScriptKind = "node"

	// ScriptKindUnknown means no supported runtime was detected; callers
	// must refuse to launch the script.
	ScriptKindUnknown ScriptKind = ""
)

// DetectScriptKind determines a script's runtime. The file extension is
// checked first; otherwise the first line is read and matched for a shebang
// naming a known runtime.
func DetectScriptKind(path string) ScriptKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".pyw":
		return ScriptKindPython
	case ".js", ".mjs":
		return ScriptKindNode
	}

	f, err := os.Open(path)
	if err != nil {
		return ScriptKindUnknown
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return ScriptKindUnknown
	}
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "#!") {
		return ScriptKindUnknown
	}
	if strings.Contains(line, "python") {
		return ScriptKindPython
	}
	if strings.Contains(line, "node") {
		return ScriptKindNode
	}
	return ScriptKindUnknown
}

// Command returns the argv to launch a script of this kind, or nil for an
// unknown kind.
func (k ScriptKind) Command(scriptPath string) []string {
	switch k {
	case ScriptKindPython:
		return []string{"python3", scriptPath}
	case ScriptKindNode:
		return []string{"node", scriptPath}
	}
	return nil
}
