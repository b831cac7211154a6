package prompts

import "fmt"

const TitleSystem = "You name software features. Always respond with a single JSON object and nothing else."

// MaxTitleSuggestions is asked of the model but not enforced on its answer.
const MaxTitleSuggestions = 3

func BuildTitlePrompt(story string) string {
	return fmt.Sprintf(`Suggest up to %d short feature titles for this user story.

User story:
%s

Each title should be 2 to 6 words, in Title Case, and name the capability rather than the user.

Respond in JSON format with this structure:
{
  "titles": ["First Title", "Second Title", "Third Title"]
}`, MaxTitleSuggestions, story)
}
