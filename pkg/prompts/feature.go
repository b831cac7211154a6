package prompts

import (
	"fmt"

	"github.com/helmcode/gherkin-ai/pkg/gherkin"
)

const FeatureSystem = "You are a BDD expert who writes clear, declarative Gherkin feature files. Respond with the feature file only."

// BuildFeaturePrompt asks for a complete feature file for the given title,
// story and scenario count. The canonical tag is embedded verbatim so the
// model has a chance of getting it right before normalization.
func BuildFeaturePrompt(title, story string, scenarioCount int) string {
	tag := gherkin.Tag(title)

	return fmt.Sprintf(`Generate a Cucumber feature file in Gherkin syntax.

Feature title: %s

User story:
%s

Requirements:
1. Start the file with exactly one tag line containing only: %s
2. The line right after the tag must be "Feature: %s".
3. Put the user story on the lines directly after the Feature line, with no blank line between them.
4. Write exactly %d scenarios.
5. When several scenarios share the same Given steps, move those steps into a single Background section placed before the first scenario.
6. Use declarative language: describe behaviour and intent, not UI clicks or implementation details.
7. Each scenario gets a short descriptive name and uses Given/When/Then steps, with And/But where they read naturally.
8. Do not add any other tags, comments, explanations or markdown code fences.`, title, story, tag, title, scenarioCount)
}
