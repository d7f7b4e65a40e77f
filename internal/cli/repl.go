package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"github.com/hession/steve/internal/config"
)

const (
	Version = "0.1.0"

	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// Shell is the interactive mode: every non-command line is one query.
type Shell struct {
	runner      *Runner
	cfg         *config.Config
	creds       *config.Secrets
	out         io.Writer
	diagnostics bool
	jsonOut     bool
	exiting     bool
}

// NewShell creates a shell writing reports to out.
func NewShell(runner *Runner, cfg *config.Config, creds *config.Secrets, out io.Writer) *Shell {
	if out == nil {
		out = os.Stdout
	}
	return &Shell{
		runner:      runner,
		cfg:         cfg,
		creds:       creds,
		out:         out,
		diagnostics: cfg.Search.ShowDiagnostics,
	}
}

// SetJSON switches report output to JSON.
func (s *Shell) SetJSON(enabled bool) {
	s.jsonOut = enabled
}

// Run starts the interactive prompt and returns when the user exits.
func (s *Shell) Run(ctx context.Context) error {
	s.printWelcome()

	p := prompt.New(
		func(line string) { s.Execute(ctx, line) },
		s.complete,
		prompt.OptionPrefix("ask> "),
		prompt.OptionTitle("steve"),
		prompt.OptionPrefixTextColor(prompt.Green),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			return breakline && s.exiting
		}),
	)
	p.Run()

	fmt.Fprintf(s.out, "%sGoodbye! 👋%s\n", colorCyan, colorReset)
	return nil
}

// Execute handles one input line. It reports whether the shell should exit.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	if strings.HasPrefix(input, "/") {
		s.exiting = !s.handleCommand(input)
		return s.exiting
	}

	report, err := s.runner.Ask(ctx, input)
	if err != nil {
		fmt.Fprintf(s.out, "%s❌ Error: %v%s\n", colorRed, err, colorReset)
		return false
	}

	if s.jsonOut {
		err = WriteJSON(s.out, report)
	} else {
		err = WriteText(s.out, report, s.diagnostics)
	}
	if err != nil {
		fmt.Fprintf(s.out, "%s❌ Error: %v%s\n", colorRed, err, colorReset)
	}
	fmt.Fprintln(s.out)
	return false
}

// handleCommand handles built-in commands, returns true to continue, false to exit
func (s *Shell) handleCommand(cmd string) bool {
	parts := strings.Fields(cmd)
	command := strings.ToLower(parts[0])

	switch command {
	case "/help":
		s.printHelp()
	case "/exit", "/quit", "/q":
		return false
	case "/providers":
		WriteProviders(s.out, s.runner.Adapters(), s.cfg, s.creds)
	case "/config":
		fmt.Fprintln(s.out, s.cfg.Describe(s.creds))
	case "/diag":
		s.diagnostics = toggle(parts, s.diagnostics)
		fmt.Fprintf(s.out, "%sDiagnostics: %v%s\n", colorGray, s.diagnostics, colorReset)
	case "/json":
		s.jsonOut = toggle(parts, s.jsonOut)
		fmt.Fprintf(s.out, "%sJSON output: %v%s\n", colorGray, s.jsonOut, colorReset)
	default:
		fmt.Fprintf(s.out, "%s❓ Unknown command: %s%s\n", colorYellow, cmd, colorReset)
		fmt.Fprintln(s.out, "Type /help for available commands")
	}
	return true
}

// toggle flips current, or sets it from an explicit on/off argument.
func toggle(parts []string, current bool) bool {
	if len(parts) < 2 {
		return !current
	}
	switch strings.ToLower(parts[1]) {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}
	return current
}

var commandSuggestions = []prompt.Suggest{
	{Text: "/help", Description: "Show help"},
	{Text: "/providers", Description: "List providers and credential status"},
	{Text: "/config", Description: "Show configuration"},
	{Text: "/diag", Description: "Toggle per-provider diagnostics"},
	{Text: "/json", Description: "Toggle JSON output"},
	{Text: "/exit", Description: "Exit"},
}

func (s *Shell) complete(d prompt.Document) []prompt.Suggest {
	text := d.TextBeforeCursor()
	if !strings.HasPrefix(text, "/") || strings.Contains(text, " ") {
		return nil
	}
	return prompt.FilterHasPrefix(commandSuggestions, text, true)
}

func (s *Shell) printWelcome() {
	fmt.Fprintf(s.out, "\n%s🔎 steve v%s%s - ask every search provider at once\n", colorCyan, Version, colorReset)
	fmt.Fprintf(s.out, "%sType a question, /help for help, /exit to quit%s\n\n", colorGray, colorReset)
}

func (s *Shell) printHelp() {
	fmt.Fprintf(s.out, `
%sBuilt-in Commands:%s
  /help            - Show this help message
  /providers       - List providers and credential status
  /config          - Show current configuration
  /diag [on|off]   - Toggle the per-provider summary
  /json [on|off]   - Toggle JSON output
  /exit            - Exit program

Anything else is sent as a question to every configured provider.

`, colorYellow, colorReset)
}
