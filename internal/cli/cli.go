// Package cli exposes the toolcore primitives as a command-line tool.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/muesli/termenv"
	"github.com/xeipuuv/gojsonschema"

	"github.com/asynkron/toolcore/internal/core/schema"
	"github.com/asynkron/toolcore/pkg/diffcheck"
	"github.com/asynkron/toolcore/pkg/fsops"
	"github.com/asynkron/toolcore/pkg/procrun"
)

const defaultTimeoutSeconds = 60.0

// Run executes the toolcore CLI using the provided arguments and streams.
// It returns a POSIX-style exit code indicating whether execution succeeded.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	if err := godotenv.Load(); err != nil {
		// A missing .env file is fine, but other errors should be surfaced to help with debugging.
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			fmt.Fprintf(stderr, "failed to load .env: %v\n", err)
			return 1
		}
	}

	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}

	logger := procrun.NewStdLogger(procrun.ParseLogLevel(os.Getenv("TOOLCORE_LOG_LEVEL")), stderr)

	switch args[0] {
	case "validate":
		return runValidate(args[1:], stdin, stdout, stderr)
	case "run":
		return runCommand(ctx, args[1:], stdout, stderr, logger)
	case "hash":
		return runHash(args[1:], stdin, stdout, stderr)
	case "ls":
		return runList(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", args[0])
		printUsage(stderr)
		return 2
	}
}

func printUsage(stderr io.Writer) {
	fmt.Fprintln(stderr, "usage: toolcore <command> [flags]")
	fmt.Fprintln(stderr, "  validate [-file PATH]                      check a unified-diff patch for hunk consistency")
	fmt.Fprintln(stderr, "  run [-spec FILE] [-cwd DIR] [-timeout SEC] [--] ARGV...")
	fmt.Fprintln(stderr, "                                             run a command under a wall-clock timeout")
	fmt.Fprintln(stderr, "  hash [-file PATH]                          print the SHA-256 digest of a file or stdin")
	fmt.Fprintln(stderr, "  ls PATH                                    list directory entries sorted by name")
}

func runValidate(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flagSet := flag.NewFlagSet("toolcore validate", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	file := flagSet.String("file", "", "read the patch from this file instead of stdin")
	if err := flagSet.Parse(args); err != nil {
		return 2
	}

	patch, code := readInput(*file, stdin, stderr)
	if code != 0 {
		return code
	}

	verdicts := newStyles(stdout)
	result := diffcheck.Validate(patch)
	for _, warning := range result.Warnings {
		fmt.Fprintln(stderr, verdicts.warn.Render("warning: "+warning))
	}
	if !result.Valid {
		fmt.Fprintln(stdout, verdicts.fail.Render("invalid: "+result.Reason))
		return 1
	}
	fmt.Fprintln(stdout, verdicts.pass.Render("ok"))
	return 0
}

// commandRequest mirrors the JSON document accepted by `toolcore run -spec`.
type commandRequest struct {
	Argv           []string `json:"argv"`
	Cwd            string   `json:"cwd"`
	TimeoutSeconds float64  `json:"timeout_seconds"`
}

func runCommand(ctx context.Context, args []string, stdout, stderr io.Writer, logger procrun.Logger) int {
	flagSet := flag.NewFlagSet("toolcore run", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	specFile := flagSet.String("spec", "", "JSON command request file (see internal/core/schema)")
	cwd := flagSet.String("cwd", "", "working directory for the child process")
	timeout := flagSet.Float64("timeout", envTimeoutSeconds(), "timeout in seconds")
	if err := flagSet.Parse(args); err != nil {
		return 2
	}

	request := commandRequest{Argv: flagSet.Args(), Cwd: *cwd, TimeoutSeconds: *timeout}
	if *specFile != "" {
		read := fsops.ReadTextFile(*specFile)
		if !read.OK {
			fmt.Fprintln(stderr, read.Error)
			return 1
		}
		if err := validateCommandRequest(read.Content); err != nil {
			fmt.Fprintf(stderr, "invalid command request: %v\n", err)
			return 2
		}
		if err := json.Unmarshal([]byte(read.Content), &request); err != nil {
			fmt.Fprintf(stderr, "invalid command request: %v\n", err)
			return 2
		}
		if request.TimeoutSeconds == 0 {
			request.TimeoutSeconds = *timeout
		}
		if request.Cwd == "" {
			request.Cwd = *cwd
		}
	}

	if len(request.Argv) == 0 {
		fmt.Fprintln(stderr, "run: no command given")
		return 2
	}

	executor := procrun.NewExecutor(logger)
	result := executor.ExecuteCommand(ctx, request.Argv, request.Cwd, request.TimeoutSeconds)
	if result.Stdout != "" {
		fmt.Fprint(stdout, result.Stdout)
	}
	if result.Stderr != "" {
		fmt.Fprint(stderr, result.Stderr)
	}
	if result.Success {
		return 0
	}
	if result.Error != "" {
		fmt.Fprintln(stderr, result.Error)
	}
	if result.ExitCode > 0 {
		return result.ExitCode
	}
	return 1
}

func runHash(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flagSet := flag.NewFlagSet("toolcore hash", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	file := flagSet.String("file", "", "hash this file instead of stdin")
	if err := flagSet.Parse(args); err != nil {
		return 2
	}

	payload, code := readInput(*file, stdin, stderr)
	if code != 0 {
		return code
	}
	fmt.Fprintln(stdout, fsops.HashDigest(payload))
	return 0
}

func runList(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: toolcore ls PATH")
		return 2
	}

	result := fsops.ListDirEntries(args[0])
	if !result.OK {
		fmt.Fprintln(stderr, result.Error)
		return 1
	}
	for _, entry := range result.Entries {
		name := entry.Name
		if entry.IsDir {
			name += "/"
		}
		fmt.Fprintln(stdout, name)
	}
	return 0
}

// readInput returns the contents of path when given, otherwise drains stdin.
func readInput(path string, stdin io.Reader, stderr io.Writer) (string, int) {
	if path != "" {
		read := fsops.ReadTextFile(path)
		if !read.OK {
			fmt.Fprintln(stderr, read.Error)
			return "", 1
		}
		return read.Content, 0
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		fmt.Fprintf(stderr, "failed to read stdin: %v\n", err)
		return "", 1
	}
	return string(data), 0
}

func envTimeoutSeconds() float64 {
	raw := strings.TrimSpace(os.Getenv("TOOLCORE_TIMEOUT_SECONDS"))
	if raw == "" {
		return defaultTimeoutSeconds
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 {
		return defaultTimeoutSeconds
	}
	return value
}

var (
	commandSchemaLoader     gojsonschema.JSONLoader
	commandSchemaLoaderErr  error
	commandSchemaLoaderOnce sync.Once
)

type requestValidationError struct {
	issues []string
}

func (e requestValidationError) Error() string {
	if len(e.issues) == 0 {
		return "command request failed schema validation"
	}
	return strings.Join(e.issues, "; ")
}

// validateCommandRequest checks raw against the command request schema before
// the document is hydrated into a commandRequest.
func validateCommandRequest(raw string) error {
	loader, err := loadCommandSchema()
	if err != nil {
		return fmt.Errorf("cli: load command request schema: %w", err)
	}

	result, err := gojsonschema.Validate(loader, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("cli: schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return requestValidationError{issues: issues}
}

func loadCommandSchema() (gojsonschema.JSONLoader, error) {
	commandSchemaLoaderOnce.Do(func() {
		schemaMap, err := schema.CommandRequestSchema()
		if err != nil {
			commandSchemaLoaderErr = err
			return
		}
		commandSchemaLoader = gojsonschema.NewGoLoader(schemaMap)
	})
	if commandSchemaLoaderErr != nil {
		return nil, commandSchemaLoaderErr
	}
	return commandSchemaLoader, nil
}

// styles holds the lipgloss styles used for verdict lines. Styling is only
// enabled when writing to a real terminal with color support.
type styles struct {
	pass lipgloss.Style
	fail lipgloss.Style
	warn lipgloss.Style
}

func newStyles(stdout io.Writer) styles {
	file, isFile := stdout.(*os.File)
	if !isFile || file != os.Stdout || termenv.EnvColorProfile() == termenv.Ascii {
		return styles{
			pass: lipgloss.NewStyle(),
			fail: lipgloss.NewStyle(),
			warn: lipgloss.NewStyle(),
		}
	}
	return styles{
		pass: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		fail: lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true),
		warn: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}
