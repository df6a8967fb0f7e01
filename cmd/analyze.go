package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/helmcode/neuropath/pkg/client"
	"github.com/helmcode/neuropath/pkg/formatter"
)

// ExampleDecisions are offered when the user has no decision at hand.
var ExampleDecisions = []string{
	"Should I accept a higher-paying job in a new city, leaving my support network behind?",
	"Is now the right time to start my own business while I have stable employment?",
	"Should I pursue a graduate degree or continue gaining work experience?",
}

type analyzeOptions struct {
	context      string
	priorities   string
	relayURL     string
	outputFormat string
	example      int
	timeout      time.Duration
}

func NewAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [DECISION]",
		Short: "Explore the possible futures of a decision",
		Long: `Send a decision to the relay service and render the three outcome paths
the model produces.

Examples:
  # Analyze a decision with priorities
  neuropath analyze "Should I move cities for a new job?" -p "family, career growth"

  # Add context and talk to a remote relay
  neuropath analyze "Should I go back to school?" -c "two kids, mortgage" --relay https://relay.example.com/analyze-decision

  # Use one of the built-in examples and print JSON
  neuropath analyze --example 2 -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.context, "context", "c", "", "Background on your situation")
	cmd.Flags().StringVarP(&opts.priorities, "priorities", "p", "", "What matters most to you")
	cmd.Flags().StringVar(&opts.relayURL, "relay", envOr("NEUROPATH_RELAY_URL", client.DefaultRelayURL), "Relay endpoint URL")
	cmd.Flags().StringVarP(&opts.outputFormat, "output", "o", "human", "Output format (human, json, yaml)")
	cmd.Flags().IntVar(&opts.example, "example", 0, fmt.Sprintf("Use built-in example decision 1-%d", len(ExampleDecisions)))
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 90*time.Second, "Maximum time to wait for the relay")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *analyzeOptions) error {
	decision, err := resolveDecision(args, opts.example)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	human := opts.outputFormat == "human" || opts.outputFormat == ""
	out := cmd.OutOrStdout()
	if human {
		printHeader(out, decision, opts)
	}

	// Create spinner for visual feedback
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " Exploring possible futures..."

	orchestrator := client.New(client.NewHTTPRelay(opts.relayURL), client.WithObserver(func(st client.State) {
		if !human {
			return
		}
		if st.Loading() {
			s.Start()
		} else {
			s.Stop()
		}
	}))

	result, err := orchestrator.Analyze(ctx, decision, opts.context, opts.priorities)
	if err != nil {
		if human {
			printError(out, err.Error())
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	if human {
		printSuccess(out, fmt.Sprintf("Explored %d possible futures", len(result.Outcomes)))
	}
	return formatter.DisplayResults(out, result, opts.outputFormat)
}

func resolveDecision(args []string, example int) (string, error) {
	switch {
	case example != 0:
		if example < 1 || example > len(ExampleDecisions) {
			return "", fmt.Errorf("--example must be between 1 and %d", len(ExampleDecisions))
		}
		return ExampleDecisions[example-1], nil
	case len(args) == 1 && strings.TrimSpace(args[0]) != "":
		return args[0], nil
	default:
		return "", fmt.Errorf("describe your decision as an argument or pick one with --example")
	}
}

func printHeader(w io.Writer, decision string, opts *analyzeOptions) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(w)
	cyan.Fprintln(w, "🧠 NeuroPath Decision Explorer")
	fmt.Fprintf(w, "📝 Decision: %s\n", decision)
	if opts.context != "" {
		fmt.Fprintf(w, "📍 Context: %s\n", opts.context)
	}
	if opts.priorities != "" {
		fmt.Fprintf(w, "🎯 Priorities: %s\n", opts.priorities)
	}
	fmt.Fprintln(w)
}

func printSuccess(w io.Writer, msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(w, "✓ %s\n", msg)
}

func printError(w io.Writer, msg string) {
	red := color.New(color.FgRed)
	red.Fprintf(w, "✗ %s\n", msg)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
