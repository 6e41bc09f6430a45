package helper

import (
	"github.com/yourusername/elearn-api/internal/domain/entity"
)

// QuestionOption is an answer option shaped for the frontend.
type QuestionOption struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// ConvertOptionsToObjects turns a string array into objects with id and
// text. IDs are 0-based, matching the stored correct option index.
func ConvertOptionsToObjects(options entity.StringArray) []QuestionOption {
	converted := make([]QuestionOption, len(options))
	for i, opt := range options {
		if opt == "" {
			opt = "(empty option)"
		}
		converted[i] = QuestionOption{ID: i, Text: opt}
	}
	return converted
}
