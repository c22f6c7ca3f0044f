// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"matchmaking-workers/internal/models"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// SurveyValidation is the outcome of checking one questionnaire submission.
// Pruned holds the answers that survive display-condition pruning.
type SurveyValidation struct {
	Pruned models.SurveyResponses
	Result *ValidationResult
}

var numberSchema = map[string]interface{}{"type": "number"}

// BuildSurveySchema returns a JSON schema for the answers to questions.
// Questions hidden by their display condition, or by a hidden parent, are
// left out, so they are neither required nor allowed.
func BuildSurveySchema(questions []models.SurveyQuestion, responses models.SurveyResponses) map[string]interface{} {
	properties := make(map[string]interface{}, len(questions))
	required := []string{}
	visible := models.VisibleQuestions(questions, responses)

	for _, q := range questions {
		if !visible[q.ID] {
			continue
		}
		properties[q.ID] = answerSchema(q)
		if q.Required {
			required = append(required, q.ID)
		}
	}
	sort.Strings(required)

	schema := map[string]interface{}{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func answerSchema(q models.SurveyQuestion) map[string]interface{} {
	switch q.AnswerType {
	case models.AnswerSingleChoice:
		s := map[string]interface{}{"type": "string"}
		if len(q.Options) > 0 {
			s["enum"] = q.Options
		}
		return s
	case models.AnswerMultiChoice:
		items := map[string]interface{}{"type": "string"}
		if len(q.Options) > 0 {
			items["enum"] = q.Options
		}
		s := map[string]interface{}{
			"type":        "array",
			"items":       items,
			"uniqueItems": true,
		}
		if q.Required {
			s["minItems"] = 1
		}
		return s
	case models.AnswerNumeric:
		return numberSchema
	case models.AnswerNumericRange:
		return map[string]interface{}{
			"oneOf": []interface{}{
				map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"min": numberSchema,
						"max": numberSchema,
					},
					"required": []string{"min", "max"},
				},
				map[string]interface{}{
					"type":     "array",
					"items":    numberSchema,
					"minItems": 2,
					"maxItems": 2,
				},
				numberSchema,
			},
		}
	case models.AnswerBoolean:
		return map[string]interface{}{"type": "boolean"}
	default:
		return map[string]interface{}{"type": "string"}
	}
}

// ValidateSurvey prunes hidden and null answers, then validates the rest
// against the schema built from questions.
func ValidateSurvey(questions []models.SurveyQuestion, responses models.SurveyResponses) (*SurveyValidation, error) {
	pruned := models.VisibleResponses(questions, responses)
	for id, v := range pruned {
		if v == nil {
			delete(pruned, id)
		}
	}
	if pruned == nil {
		pruned = models.SurveyResponses{}
	}

	schema := BuildSurveySchema(questions, pruned)
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(map[string]interface{}(pruned)),
	)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   errorField(desc),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	sort.SliceStable(out.Errors, func(i, j int) bool {
		return out.Errors[i].Field < out.Errors[j].Field
	})

	return &SurveyValidation{Pruned: pruned, Result: out}, nil
}

// errorField reports the question id for object-level errors such as a
// missing required answer, which gojsonschema attaches to the parent.
func errorField(desc gojsonschema.ResultError) string {
	field := desc.Field()
	if field == "(root)" || field == "" {
		if p, ok := desc.Details()["property"].(string); ok {
			return p
		}
	}
	return field
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a field and its nested items.
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") || strings.HasPrefix(err.Field, field+"[") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}
