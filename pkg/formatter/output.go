package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/helmcode/neuropath/pkg/model"
)

const lineWidth = 80

// Formats accepted by DisplayResults.
var Formats = []string{"human", "json", "yaml"}

// DisplayResults writes the analysis to w in the given format.
func DisplayResults(w io.Writer, result *model.AnalysisResult, format string) error {
	switch format {
	case "json":
		return displayJSON(w, result)
	case "yaml":
		return displayYAML(w, result)
	case "human", "":
		displayHuman(w, result)
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (supported: %s)", format, strings.Join(Formats, ", "))
	}
}

func displayJSON(w io.Writer, result *model.AnalysisResult) error {
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func displayYAML(w io.Writer, result *model.AnalysisResult) error {
	output, err := yaml.Marshal(result)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(output))
	return err
}

func displayHuman(w io.Writer, result *model.AnalysisResult) {
	cyan := color.New(color.FgCyan, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(w)
	cyan.Fprintln(w, "🧭 DECISION LANDSCAPE:")
	fmt.Fprintln(w, wrapText(result.Summary, lineWidth, "   "))
	fmt.Fprintln(w)

	for i, outcome := range result.Outcomes {
		fmt.Fprintln(w, strings.Repeat("─", lineWidth))
		white.Fprintf(w, "PATH %d: %s\n", i+1, outcome.Title)

		likelihoodColor := getLikelihoodColor(outcome.Likelihood)
		fmt.Fprintf(w, "   %s ", getLikelihoodIcon(outcome.Likelihood))
		likelihoodColor.Fprintf(w, "%s likelihood", strings.ToUpper(string(outcome.Likelihood)))
		fmt.Fprintf(w, "  ⏱  %s\n\n", outcome.Timeframe)

		fmt.Fprintln(w, renderMarkdown(outcome.Narrative))
		fmt.Fprintln(w)

		printList(w, color.New(color.FgYellow, color.Bold), "⚖️  TRADE-OFFS:", "•", outcome.Tradeoffs)
		printList(w, color.New(color.FgMagenta, color.Bold), "💡 INSIGHTS:", "•", outcome.Insights)
		printList(w, color.New(color.FgGreen, color.Bold), "🚀 ACTION ITEMS:", "", outcome.ActionItems)
	}

	// Footer
	fmt.Fprintln(w, strings.Repeat("─", lineWidth))
	fmt.Fprintf(w, "💡 %s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

// printList numbers items when bullet is empty.
func printList(w io.Writer, heading *color.Color, title, bullet string, items []string) {
	if len(items) == 0 {
		return
	}
	heading.Fprintln(w, title)
	for i, item := range items {
		marker := bullet
		if marker == "" {
			marker = fmt.Sprintf("%d.", i+1)
		}
		fmt.Fprintf(w, "   %s %s\n", marker, item)
	}
	fmt.Fprintln(w)
}

// renderMarkdown renders narrative markdown for the terminal. Without color
// it falls back to plain wrapped text.
func renderMarkdown(text string) string {
	if color.NoColor {
		return wrapText(text, lineWidth, "   ")
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(lineWidth-4),
	)
	if err != nil {
		return wrapText(text, lineWidth, "   ")
	}
	out, err := r.Render(text)
	if err != nil {
		return wrapText(text, lineWidth, "   ")
	}
	return strings.TrimRight(out, "\n")
}

func getLikelihoodColor(l model.Likelihood) *color.Color {
	switch l {
	case model.LikelihoodHigh:
		return color.New(color.FgGreen, color.Bold)
	case model.LikelihoodMedium:
		return color.New(color.FgYellow)
	case model.LikelihoodLow:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgWhite)
	}
}

func getLikelihoodIcon(l model.Likelihood) string {
	switch l {
	case model.LikelihoodHigh:
		return "🟢"
	case model.LikelihoodMedium:
		return "🟡"
	case model.LikelihoodLow:
		return "🔴"
	default:
		return "⚪"
	}
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		currentLine := indent
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				result.WriteString(currentLine + "\n")
				currentLine = indent + word
			} else if currentLine == indent {
				currentLine += word
			} else {
				currentLine += " " + word
			}
		}

		if currentLine != indent {
			result.WriteString(currentLine + "\n")
		}
	}

	return strings.TrimSuffix(result.String(), "\n")
}
