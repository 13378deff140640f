package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hpungsan/clarity/internal/config"
	"github.com/hpungsan/clarity/internal/mcp"
	"github.com/hpungsan/clarity/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"summary": true, "export": true, "export-category": true, "import": true,
	"put": true, "get": true, "clear": true, "backup": true, "restore": true,
	"idea": true, "generate": true, "score": true, "test-connection": true,
	"relay": true, "watch": true,
	"help": true,
}

// firstCommand returns the first argument that is not a global flag.
func firstCommand() string {
	for _, arg := range os.Args[1:] {
		if arg == "--verbose" {
			continue
		}
		return arg
	}
	return ""
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	arg := firstCommand()
	if cliCommands[arg] {
		return true
	}
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v"
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	arg := firstCommand()
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___ _            _ _
  / __| |__ _ _ _ _(_) |_ _  _
 | (__| / _' | '_| | |  _| || |
  \___|_\__,_|_| |_|_|\__|\_, |
                          |__/
  Content planning for therapists

  Usage: clarity <command> [options]
         clarity --help

  MCP server mode requires piped input.`)
}

// newLogger builds the process logger: production JSON at warn, debug with --verbose.
func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func main() {
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	logger := newLogger(slices.Contains(os.Args[1:], "--verbose"))
	defer logger.Sync()

	// Handle --help/--version before opening the store
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".clarity")

	cfg, err := config.LoadWithEnv(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("unknown tools in disabled_tools", zap.Strings("tools", unknown))
	}

	st, err := store.Open(baseDir, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to open store: %v\n", err)
		os.Exit(1)
	}

	a := newApp(baseDir, cfg, st, logger)
	code := run(a)
	a.close()
	logger.Sync()
	os.Exit(code)
}

// run dispatches to the CLI or the MCP server and returns the exit code.
func run(a *app) int {
	if isCLIMode() {
		if err := newCLIApp(a).Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'clarity --help' for usage.\n")
		return 1
	}

	// MCP server mode (default): keep auto-backups running while serving.
	stop := a.mgr.StartAutoBackup(a.sched)
	defer stop()
	if a.conn != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			a.conn.TestConnection(ctx)
		}()
	}

	if err := mcp.Run(mcp.Deps{Manager: a.mgr, Generator: a.gen}, a.cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
