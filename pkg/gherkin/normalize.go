package gherkin

import (
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("```[A-Za-z0-9_+-]*[ \t]*(?:\r?\n|$)|```")

// Normalize turns raw model output into a feature file with exactly one
// canonical tag line directly above the Feature line and no blank line
// between the Feature line and the story.
func Normalize(raw, title string) string {
	text := StripFences(raw)
	text = strings.TrimSpace(text)
	text = CollapseFeatureGap(text)
	return ReplaceTags(text, Tag(title))
}

// StripFences removes markdown code fence markers, with or without a
// language hint, wherever they appear.
func StripFences(text string) string {
	return fencePattern.ReplaceAllString(text, "")
}

// CollapseFeatureGap removes the blank lines between the first Feature line
// and the story line that follows it. When the Feature line is followed
// directly by a Background, Scenario or other keyword there is no story and
// the text is returned unchanged.
func CollapseFeatureGap(text string) string {
	lines := strings.Split(text, "\n")

	idx := featureLine(lines)
	if idx < 0 {
		return text
	}

	next := idx + 1
	for next < len(lines) && isBlank(lines[next]) {
		next++
	}
	if next == idx+1 || next == len(lines) || isStructural(lines[next]) {
		return text
	}

	out := make([]string, 0, len(lines))
	out = append(out, lines[:idx+1]...)
	out = append(out, lines[next:]...)
	return strings.Join(out, "\n")
}

// ReplaceTags drops every tag line above the Feature line and writes the
// given tag directly above it. Scenario-level tags further down are kept.
// Without a Feature line the tag is placed at the top of the text.
func ReplaceTags(text, tag string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines)+1)

	idx := featureLine(lines)
	if idx < 0 {
		out = append(out, tag)
		i := 0
		for i < len(lines) && (isTagLine(lines[i]) || isBlank(lines[i])) {
			i++
		}
		out = append(out, lines[i:]...)
		return strings.Join(out, "\n")
	}

	for _, line := range lines[:idx] {
		if isTagLine(line) || isBlank(line) {
			continue
		}
		out = append(out, line)
	}
	out = append(out, tag)
	out = append(out, lines[idx:]...)
	return strings.Join(out, "\n")
}

// CountScenarios counts Scenario, Scenario Outline and Example blocks.
func CountScenarios(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if isScenario(strings.TrimSpace(line)) {
			n++
		}
	}
	return n
}

// HasBackground reports whether the feature declares a Background section.
func HasBackground(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "Background:") {
			return true
		}
	}
	return false
}

// TagLines returns the tag lines that precede the Feature line.
func TagLines(text string) []string {
	lines := strings.Split(text, "\n")
	idx := featureLine(lines)
	if idx < 0 {
		idx = len(lines)
	}
	var tags []string
	for _, line := range lines[:idx] {
		if isTagLine(line) {
			tags = append(tags, strings.TrimSpace(line))
		}
	}
	return tags
}

func featureLine(lines []string) int {
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "Feature:") {
			return i
		}
	}
	return -1
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func isTagLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "@")
}

func isScenario(trimmed string) bool {
	for _, kw := range []string{"Scenario:", "Scenario Outline:", "Scenario Template:", "Example:"} {
		if strings.HasPrefix(trimmed, kw) {
			return true
		}
	}
	return false
}

var structuralPrefixes = []string{
	"Background:", "Rule:", "Examples:", "Scenarios:",
	"Given ", "When ", "Then ", "And ", "But ", "* ",
	"@", "#", "|", `"""`, "```",
}

// isStructural reports whether a line belongs to Gherkin structure rather
// than to the free-text story under the Feature line.
func isStructural(line string) bool {
	trimmed := strings.TrimSpace(line)
	if isScenario(trimmed) {
		return true
	}
	for _, p := range structuralPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}
