package mcp

import (
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/coltonbatts/davincimcp/internal/config"
)

// stopTimeout is how long Stop waits for graceful termination before
// escalating to a kill.
const stopTimeout = 5 * time.Second

// killWaitTimeout bounds the wait for the process to be reaped after a kill.
const killWaitTimeout = 2 * time.Second

// ServerProcess manages the lifecycle of an external tool-server script.
// Start and Stop return booleans rather than errors; every failure mode is
// logged and reported as false, so callers can treat the gateway as an
// optional capability.
type ServerProcess struct {
	enabled      bool
	script       string
	capabilities []string
	logger       *slog.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	done   chan struct{}
}

// NewServerProcess creates a process manager from configuration.
func NewServerProcess(cfg *config.Config, logger *slog.Logger) *ServerProcess {
	if logger == nil {
		logger = slog.Default()
	}
	p := &ServerProcess{
		enabled:      cfg.MCP.Enabled,
		script:       cfg.MCP.ServerScript,
		capabilities: cfg.MCPCapabilities(),
		logger:       logger,
	}
	logger.Info("MCP server process manager initialized", "enabled", p.enabled)
	if p.enabled && p.script == "" {
		logger.Warn("MCP is enabled but no server script is configured")
	}
	return p
}

// Start launches the tool-server process with piped stdio. Returns false
// when the gateway is disabled, no script is configured, the script is
// missing, its runtime is unknown, or the launch fails.
func (p *ServerProcess) Start() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled {
		p.logger.Warn("MCP is not enabled, cannot start server")
		return false
	}
	if p.script == "" {
		p.logger.Error("No MCP server script configured")
		return false
	}
	if _, err := os.Stat(p.script); err != nil {
		p.logger.Error("MCP server script does not exist", "path", p.script)
		return false
	}

	kind := DetectScriptKind(p.script)
	argv := kind.Command(p.script)
	if argv == nil {
		p.logger.Error("Unsupported script type for MCP server", "path", p.script)
		return false
	}

	p.logger.Info("Starting MCP server", "path", p.script, "kind", string(kind))
	cmd := exec.Command(argv[0], argv[1:]...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		p.logger.Error("Error opening MCP server stdin", "error", err)
		return false
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		p.logger.Error("Error opening MCP server stdout", "error", err)
		return false
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		p.logger.Error("Error starting MCP server", "error", err)
		return false
	}

	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()

	p.cmd = cmd
	p.stdin = stdin
	p.stdout = stdout
	p.done = done
	p.logger.Info("MCP server started", "pid", cmd.Process.Pid)
	return true
}

// Stop terminates the tool-server process, escalating from SIGTERM to a
// kill after the graceful timeout. Returns false when no process is running.
func (p *ServerProcess) Stop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd == nil {
		p.logger.Warn("No MCP server process to stop")
		return false
	}

	p.logger.Info("Stopping MCP server", "pid", p.cmd.Process.Pid)
	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		p.logger.Warn("Failed to signal MCP server, killing process", "error", err)
		_ = p.cmd.Process.Kill()
	}

	select {
	case <-p.done:
		p.logger.Info("MCP server stopped gracefully")
	case <-time.After(stopTimeout):
		p.logger.Warn("MCP server did not terminate gracefully, killing process")
		_ = p.cmd.Process.Kill()
		select {
		case <-p.done:
		case <-time.After(killWaitTimeout):
			p.logger.Error("MCP server did not exit after kill", "pid", p.cmd.Process.Pid)
		}
	}

	p.cmd = nil
	p.stdin = nil
	p.stdout = nil
	p.done = nil
	return true
}

// IsRunning reports whether the server process is alive.
func (p *ServerProcess) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Capabilities returns the capability list declared in configuration.
func (p *ServerProcess) Capabilities() []string {
	return p.capabilities
}

// Stdio returns the pipes of the running process, or nils when stopped.
func (p *ServerProcess) Stdio() (io.WriteCloser, io.ReadCloser) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stdin, p.stdout
}
