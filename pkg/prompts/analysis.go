package prompts

import "fmt"

const AnalysisSystem = "You are a BDD quality reviewer. Always respond with a single JSON object and nothing else."

// BuildQualityPrompt asks for a 0-100 quality score of a feature file.
func BuildQualityPrompt(content, currentTitle string) string {
	return fmt.Sprintf(`Review the quality of this Gherkin feature file.

Current title: %s

Feature file:
%s

Judge it on:
- clarity and business readability of the scenarios
- declarative style (behaviour over UI mechanics)
- correct use of Background for shared Given steps
- coverage of happy paths, edge cases and error cases
- whether the title describes the feature well

Respond in JSON format with this structure:
{
  "quality_score": 0-100,
  "suggestions": ["concrete improvement", "..."],
  "improved_title": "a better title, only if the current one can be improved"
}`, currentTitle, content)
}

// BuildComplexityPrompt asks for a per-scenario complexity breakdown.
func BuildComplexityPrompt(content string) string {
	return fmt.Sprintf(`Estimate the implementation complexity of every scenario in this Gherkin feature file.

Feature file:
%s

Score each scenario from 1 (trivial) to 10 (very complex) using four factors, each scored 1-10:
- stepCount: how many steps and how long the flow is
- dataDependencies: how much test data, fixtures or external state the scenario needs
- conditionalLogic: branching, validation rules and alternate outcomes
- technicalDifficulty: integrations, asynchronous behaviour, security or performance concerns

Respond in JSON format with this structure:
{
  "overallComplexity": 1-10,
  "scenarios": [
    {
      "name": "scenario name as written in the feature",
      "complexity": 1-10,
      "factors": {
        "stepCount": 1-10,
        "dataDependencies": 1-10,
        "conditionalLogic": 1-10,
        "technicalDifficulty": 1-10
      },
      "explanation": "one or two sentences"
    }
  ],
  "recommendations": ["how to reduce or manage the complexity"]
}

List the scenarios in the order they appear in the file.`, content)
}
