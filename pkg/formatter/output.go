package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/helmcode/gherkin-ai/pkg/features"
	"github.com/helmcode/gherkin-ai/pkg/model"
)

const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ValidateFormat rejects output formats other than human, json and yaml.
func ValidateFormat(format string) error {
	switch format {
	case FormatHuman, FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (supported: human, json, yaml)", format)
	}
}

// Display writes v to w in the given format. Human output understands the
// pipeline's result types; anything else falls back to YAML.
func Display(w io.Writer, v any, format string) error {
	switch format {
	case FormatJSON:
		return displayJSON(w, v)
	case FormatYAML:
		return displayYAML(w, v)
	case FormatHuman:
		fallthrough
	default:
		return displayHuman(w, v)
	}
}

func displayJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(output))
	return nil
}

func displayYAML(w io.Writer, v any) error {
	output, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprint(w, string(output))
	return nil
}

func displayHuman(w io.Writer, v any) error {
	switch r := v.(type) {
	case *model.GeneratedFeature:
		displayGherkin(w, r.Content)
	case *model.QualityReport:
		displayQuality(w, r)
	case *model.ComplexityReport:
		displayComplexity(w, r)
	case model.TitleSuggestions:
		displayTitles(w, r)
	case *model.Feature:
		displayFeature(w, r)
	case []model.Feature:
		displayFeatureList(w, r)
	case *model.Analysis:
		displayComplexity(w, r.Complexity)
		displayQuality(w, r.Quality)
	case *features.CreateResult:
		displayFeature(w, r.Feature)
		displayComplexity(w, r.Complexity)
		displayQuality(w, r.Analysis)
	default:
		return displayYAML(w, v)
	}
	footer(w)
	return nil
}

func displayGherkin(w io.Writer, content string) {
	tag := color.New(color.FgMagenta)
	keyword := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w)
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "@"):
			tag.Fprintln(w, line)
		case isGherkinKeyword(trimmed):
			keyword.Fprintln(w, line)
		default:
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintln(w)
}

func displayFeature(w io.Writer, f *model.Feature) {
	if f == nil {
		return
	}
	white := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(w)
	white.Fprintf(w, "📄 %s\n", f.Title)
	fmt.Fprintf(w, "   ID: %s\n", color.HiBlackString(f.ID))
	fmt.Fprintf(w, "   Scenarios: %d\n", f.ScenarioCount)
	if !f.CreatedAt.IsZero() {
		fmt.Fprintf(w, "   Created: %s\n", f.CreatedAt.Format("2006-01-02 15:04"))
	}
	displayGherkin(w, f.GeneratedContent)
}

func displayFeatureList(w io.Writer, list []model.Feature) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No features yet.")
		return
	}
	fmt.Fprintln(w)
	for i, f := range list {
		fmt.Fprintf(w, "   %d. %s %s  %s\n", i+1, f.Title,
			color.HiBlackString("(%d scenarios)", f.ScenarioCount),
			color.HiBlackString(f.ID))
	}
	fmt.Fprintln(w)
}

func displayQuality(w io.Writer, r *model.QualityReport) {
	if r == nil {
		return
	}
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen, color.Bold)

	fmt.Fprintln(w)
	getQualityColor(r.QualityScore).Fprintf(w, "📊 QUALITY SCORE: %d/100\n\n", r.QualityScore)

	if r.ImprovedTitle != nil && *r.ImprovedTitle != "" {
		green.Fprintln(w, "✏️  SUGGESTED TITLE:")
		fmt.Fprintf(w, "   %s\n\n", color.GreenString(*r.ImprovedTitle))
	}

	if len(r.Suggestions) > 0 {
		cyan.Fprintln(w, "💡 SUGGESTIONS:")
		for i, s := range r.Suggestions {
			fmt.Fprintf(w, "   %d. %s\n", i+1, s)
		}
		fmt.Fprintln(w)
	}
}

func displayComplexity(w io.Writer, r *model.ComplexityReport) {
	if r == nil {
		return
	}
	yellow := color.New(color.FgYellow, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w)
	getComplexityColor(r.OverallComplexity).Fprintf(w, "📊 OVERALL COMPLEXITY: %d/10\n\n", r.OverallComplexity)

	if len(r.Scenarios) > 0 {
		yellow.Fprintln(w, "🧩 SCENARIOS:")
		for i, s := range r.Scenarios {
			fmt.Fprintf(w, "   %d. %s %s (%d/10)\n", i+1, getComplexityIcon(s.Complexity), s.Name, s.Complexity)
			fmt.Fprintf(w, "      Steps: %d  Data: %d  Conditions: %d  Technical: %d\n",
				s.Factors.StepCount, s.Factors.DataDependencies, s.Factors.ConditionalLogic, s.Factors.TechnicalDifficulty)
			if s.Explanation != "" {
				fmt.Fprintln(w, wrapText(s.Explanation, 80, "      "))
			}
			fmt.Fprintln(w)
		}
	}

	if len(r.Recommendations) > 0 {
		cyan.Fprintln(w, "💡 RECOMMENDATIONS:")
		for i, rec := range r.Recommendations {
			fmt.Fprintf(w, "   %d. %s\n", i+1, rec)
		}
		fmt.Fprintln(w)
	}
}

func displayTitles(w io.Writer, titles model.TitleSuggestions) {
	if len(titles) == 0 {
		fmt.Fprintln(w, "No title suggestions.")
		return
	}
	green := color.New(color.FgGreen, color.Bold)

	fmt.Fprintln(w)
	green.Fprintln(w, "✏️  TITLE SUGGESTIONS:")
	for i, t := range titles {
		fmt.Fprintf(w, "   %d. %s\n", i+1, t)
	}
	fmt.Fprintln(w)
}

func footer(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintf(w, "💡 %s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func isGherkinKeyword(line string) bool {
	for _, kw := range []string{"Feature:", "Background:", "Scenario:", "Scenario Outline:", "Scenario Template:", "Example:", "Examples:", "Rule:"} {
		if strings.HasPrefix(line, kw) {
			return true
		}
	}
	return false
}

func getComplexityColor(score int) *color.Color {
	switch {
	case score >= 9:
		return color.New(color.FgRed, color.Bold)
	case score >= 7:
		return color.New(color.FgRed)
	case score >= 4:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func getComplexityIcon(score int) string {
	switch {
	case score >= 9:
		return "🔴"
	case score >= 7:
		return "🟠"
	case score >= 4:
		return "🟡"
	default:
		return "🟢"
	}
}

func getQualityColor(score int) *color.Color {
	switch {
	case score >= 80:
		return color.New(color.FgGreen, color.Bold)
	case score >= 50:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder

	for _, line := range strings.Split(text, "\n") {
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
