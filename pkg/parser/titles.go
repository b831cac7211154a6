package parser

import "github.com/helmcode/gherkin-ai/pkg/model"

// ParseTitleResponse reads {"titles": [...]}. The count is not capped here.
func ParseTitleResponse(raw string) (model.TitleSuggestions, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	return model.TitleSuggestions(stringList(obj["titles"])), nil
}
