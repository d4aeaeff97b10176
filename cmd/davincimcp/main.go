package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	davincimcp "github.com/coltonbatts/davincimcp"
	"github.com/coltonbatts/davincimcp/internal/commands"
	"github.com/coltonbatts/davincimcp/internal/config"
	"github.com/coltonbatts/davincimcp/internal/logger"
	"github.com/coltonbatts/davincimcp/internal/media"
)

const version = "0.1.0"

const helpText = `
Available commands:
- cut/split: Cut or split a clip at the current playhead position
- transition: Add a transition between clips (e.g., "add a 2s cross dissolve")
- marker: Add a marker at the current position (e.g., "add a red marker named 'Scene 1'")
- play/stop/pause: Control timeline playback
- analyze: Analyze the current clip
- analyze long take: Analyze a long take and suggest cut points
- help: Show this help text
- exit/quit: Exit the program
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// A .env file is optional; environment variables win either way.
	_ = godotenv.Load()

	flags := flag.NewFlagSet("davincimcp", flag.ExitOnError)
	showVersion := flags.Bool("version", false, "Print the version and exit")
	logLevel := flags.String("log-level", "", "Set the logging level (debug, info, warn, error)")
	logFormat := flags.String("log-format", "", "Set the log format (text, json)")
	noFeedback := flags.Bool("no-feedback", false, "Disable command feedback")
	configPath := flags.String("config", config.DefaultConfigFilename, "Path to the configuration file")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	if *showVersion {
		fmt.Printf("DavinciMCP %s\n", version)
		return 0
	}

	cfg, err := config.LoadConfigWithPath(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		return 1
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}

	log := logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	app, err := davincimcp.NewApp(ctx, davincimcp.AppOptions{
		Config:           cfg,
		Logger:           log,
		FeedbackDisabled: *noFeedback,
	})
	if err != nil {
		log.Error("Failed to initialize application", "error", err)
		return 1
	}
	defer app.Close()

	command := "interactive"
	rest := flags.Args()
	if len(rest) > 0 {
		command = rest[0]
		rest = rest[1:]
	}

	// The serve and mcp-client modes manage their own connections.
	switch command {
	case "serve":
		return runServe(ctx, app)
	case "mcp-client":
		return runMCPClient(ctx, app, rest)
	}

	if err := app.Connect(ctx); err != nil {
		log.Error("Failed to connect to DaVinci Resolve, is it running?", "error", err)
		return 1
	}
	if info, err := app.Controller().ProjectInfo(ctx); err == nil {
		log.Info("Connected to project", "name", info.Name, "timelines", info.TimelineCount)
	}

	switch command {
	case "interactive":
		return runInteractive(ctx, app, readLines(os.Stdin))
	case "cmd":
		if len(rest) == 0 {
			fmt.Fprintln(os.Stderr, "Error: cmd requires the command text to execute")
			return 1
		}
		return runSingleCommand(ctx, app, strings.Join(rest, " "))
	case "analyze":
		return runAnalysis(ctx, app, rest)
	default:
		log.Error("Unknown command", "command", command)
		return 1
	}
}

func handleSignals(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	fmt.Println("\nExiting...")
	cancel()
}

// readLines delivers input lines over a channel so the prompt loops can
// select between user input and context cancellation. The channel is
// closed at end of input.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

// runInteractive is the default mode: a natural-language prompt loop with
// an AI reinterpretation fallback for unmatched commands.
func runInteractive(ctx context.Context, app *davincimcp.App, lines <-chan string) int {
	fmt.Println("\nDaVinci Resolve Control with Gemini AI")
	fmt.Println("=========================================")
	fmt.Println("Enter commands in natural language or type 'help' for assistance")
	fmt.Println("Type 'exit' or 'quit' to exit")

	for {
		fmt.Print("\n> ")
		var input string
		select {
		case <-ctx.Done():
			return 0
		case line, ok := <-lines:
			if !ok {
				return 0
			}
			input = strings.TrimSpace(line)
		}

		switch strings.ToLower(input) {
		case "exit", "quit":
			fmt.Println("Exiting...")
			return 0
		case "help", "?":
			fmt.Print(helpText)
			continue
		case "analyze", "analyze clip":
			printClipAnalysis(ctx, app.Analyzer())
			continue
		case "analyze long take", "long take":
			printCutSuggestions(ctx, app.Suggester())
			continue
		case "":
			continue
		}

		result := app.Executor().ExecuteFromText(ctx, input)
		printResult(result)

		if strings.Contains(result.Message, "Could not understand command") && app.Gemini().Initialized() {
			tryAIFallback(ctx, app, lines, input)
		}
	}
}

// tryAIFallback asks the AI adapter to reinterpret unmatched input into a
// known command form, and executes it if the user agrees.
func tryAIFallback(ctx context.Context, app *davincimcp.App, lines <-chan string, input string) {
	fmt.Println("Asking AI for help interpreting your command...")
	prompt := fmt.Sprintf(`As a video editing assistant, interpret this user request and convert it to a specific editing command:
%q

Available commands are:
- cut: Split a clip at the playhead position
- transition: Add a transition between clips (type: Cross Dissolve, Fade, Wipe, etc.)
- marker: Add a marker at the current position

Respond with ONLY the exact command text that should be executed, nothing else.`, input)

	interpretation := app.Gemini().Generate(ctx, prompt)
	if strings.HasPrefix(interpretation, "Error:") {
		fmt.Println(interpretation)
		return
	}
	interpretation = strings.TrimSpace(interpretation)
	fmt.Printf("AI suggests: %s\n", interpretation)

	fmt.Print("Try this command? (y/n): ")
	var answer string
	select {
	case <-ctx.Done():
		return
	case line, ok := <-lines:
		if !ok {
			return
		}
		answer = line
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
		return
	}

	result := app.Executor().ExecuteFromText(ctx, interpretation)
	printResult(result)
}

func printResult(result commands.Result) {
	if result.Succeeded() {
		if result.Feedback != "" {
			fmt.Printf("✓ %s\n", result.Feedback)
		} else {
			fmt.Println("✓ Command executed successfully")
		}
	} else {
		fmt.Printf("✗ %s\n", result.Message)
	}
}

// runSingleCommand executes one natural-language command and exits.
func runSingleCommand(ctx context.Context, app *davincimcp.App, text string) int {
	result := app.Executor().ExecuteFromText(ctx, text)
	if result.Succeeded() {
		if result.Feedback != "" {
			fmt.Println(result.Feedback)
		} else {
			fmt.Println("Command executed successfully")
		}
		return 0
	}
	fmt.Printf("Error: %s\n", result.Message)
	return 1
}

// runAnalysis runs a media analysis pass.
func runAnalysis(ctx context.Context, app *davincimcp.App, args []string) int {
	flags := flag.NewFlagSet("analyze", flag.ExitOnError)
	current := flags.Bool("current", false, "Analyze the current clip")
	longTake := flags.Bool("long-take", false, "Analyze a long take and suggest cuts")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	if *current {
		return printClipAnalysis(ctx, app.Analyzer())
	}
	if *longTake {
		return printCutSuggestions(ctx, app.Suggester())
	}

	fmt.Println("Error: No analysis type specified. Use --current or --long-take.")
	return 1
}

func printClipAnalysis(ctx context.Context, analyzer *media.Analyzer) int {
	analysis, err := analyzer.AnalyzeCurrentClip(ctx)
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		return 1
	}

	cuts := make([]string, len(analysis.SuggestedCuts))
	for i, cut := range analysis.SuggestedCuts {
		cuts[i] = fmt.Sprintf("%.1fs", cut)
	}

	fmt.Println("Clip analysis:")
	fmt.Printf("- Duration: %gs\n", analysis.Duration)
	fmt.Printf("- Frame Rate: %g\n", analysis.FrameRate)
	fmt.Printf("- Resolution: %s\n", analysis.Resolution)
	fmt.Printf("- Shot Type: %s\n", analysis.ShotType)
	fmt.Printf("- Suggested cuts: %s\n", strings.Join(cuts, ", "))
	return 0
}

func printCutSuggestions(ctx context.Context, suggester *media.SuggestionEngine) int {
	suggestions, err := suggester.SuggestCutsForLongTake(ctx)
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		return 1
	}

	fmt.Println("Long take analysis:")
	fmt.Printf("- Duration: %gs\n", suggestions.ClipDuration)
	fmt.Printf("- Summary: %s\n", suggestions.Summary)
	fmt.Println("- Suggested cuts:")
	for i, cut := range suggestions.SuggestedCuts {
		fmt.Printf("  %d. %s - %s (confidence: %.2f)\n", i+1, cut.Timecode, cut.Reason, cut.Confidence)
	}
	return 0
}

// runServe exposes the command catalog as an MCP tool server over stdio.
func runServe(ctx context.Context, app *davincimcp.App) int {
	if err := app.Connect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to connect to DaVinci Resolve: %v\n", err)
		return 1
	}

	srv := app.NewToolServer()
	if err := srv.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize tool server: %v\n", err)
		return 1
	}
	defer srv.Stop()

	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: tool server failed: %v\n", err)
		return 1
	}
	return 0
}

// runMCPClient connects to the configured tool server and routes queries
// through the hosted model.
func runMCPClient(ctx context.Context, app *davincimcp.App, args []string) int {
	client := app.MCPClient()
	script := app.Config().MCP.ServerScript
	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "Error: mcp-client takes at most one query argument")
		return 1
	}

	if !client.ConnectToServer(ctx, script) {
		fmt.Fprintln(os.Stderr, "Error: failed to connect to MCP server")
		return 1
	}
	defer client.Disconnect()

	if len(args) == 1 {
		fmt.Println(client.ProcessQuery(ctx, args[0]))
		return 0
	}

	fmt.Println("\nMCP Query Mode")
	fmt.Println("Type 'exit' or 'quit' to exit")
	lines := readLines(os.Stdin)
	for {
		fmt.Print("\nquery> ")
		var query string
		select {
		case <-ctx.Done():
			return 0
		case line, ok := <-lines:
			if !ok {
				return 0
			}
			query = strings.TrimSpace(line)
		}
		switch strings.ToLower(query) {
		case "exit", "quit":
			return 0
		case "":
			continue
		}
		fmt.Println(client.ProcessQuery(ctx, query))
	}
}
