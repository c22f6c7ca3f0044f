// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchmaking-workers/internal/models"
)

func coupleQuestions() []models.SurveyQuestion {
	return []models.SurveyQuestion{
		{ID: "budget", Role: models.RoleCouple, AnswerType: models.AnswerNumeric, Required: true},
		{ID: "style", Role: models.RoleCouple, AnswerType: models.AnswerMultiChoice, Required: true,
			Options: []string{"candid", "documentary", "editorial"}},
		{ID: "drone", Role: models.RoleCouple, AnswerType: models.AnswerBoolean},
		{ID: "drone_height", Role: models.RoleCouple, AnswerType: models.AnswerNumeric, Required: true,
			DependsOn: &models.DependsOn{QuestionID: "drone", AcceptedValues: []string{"true"}}},
		{ID: "guests", Role: models.RoleCouple, AnswerType: models.AnswerNumericRange},
		{ID: "venue_type", Role: models.RoleCouple, AnswerType: models.AnswerSingleChoice,
			Options: []string{"indoor", "outdoor"}},
	}
}

func TestValidateSurvey_Valid(t *testing.T) {
	v, err := ValidateSurvey(coupleQuestions(), models.SurveyResponses{
		"budget":     2500.0,
		"style":      []interface{}{"candid", "editorial"},
		"guests":     map[string]interface{}{"min": 80.0, "max": 120.0},
		"venue_type": "outdoor",
	})
	require.NoError(t, err)
	assert.True(t, v.Result.Valid, v.Result.GetErrorMessages())
	assert.Len(t, v.Pruned, 4)
}

func TestValidateSurvey_RangeForms(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		valid bool
	}{
		{"object", map[string]interface{}{"min": 1.0, "max": 2.0}, true},
		{"pair", []interface{}{1.0, 2.0}, true},
		{"single number", 100.0, true},
		{"object missing max", map[string]interface{}{"min": 1.0}, false},
		{"three numbers", []interface{}{1.0, 2.0, 3.0}, false},
		{"string", "lots", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ValidateSurvey(coupleQuestions(), models.SurveyResponses{
				"budget": 1000.0,
				"style":  []interface{}{"candid"},
				"guests": tt.value,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.valid, v.Result.Valid, v.Result.GetErrorMessages())
		})
	}
}

func TestValidateSurvey_MissingRequired(t *testing.T) {
	v, err := ValidateSurvey(coupleQuestions(), models.SurveyResponses{
		"style": []interface{}{"candid"},
	})
	require.NoError(t, err)
	assert.False(t, v.Result.Valid)
	assert.True(t, v.Result.HasErrors("budget"))
}

func TestValidateSurvey_InvalidOption(t *testing.T) {
	v, err := ValidateSurvey(coupleQuestions(), models.SurveyResponses{
		"budget":     1000.0,
		"style":      []interface{}{"candid", "vintage"},
		"venue_type": "underwater",
	})
	require.NoError(t, err)
	assert.False(t, v.Result.Valid)
	assert.NotEmpty(t, v.Result.GetErrorsForField("style"))
	assert.True(t, v.Result.HasErrors("venue_type"))
}

func TestValidateSurvey_EmptyRequiredMultiChoice(t *testing.T) {
	v, err := ValidateSurvey(coupleQuestions(), models.SurveyResponses{
		"budget": 1000.0,
		"style":  []interface{}{},
	})
	require.NoError(t, err)
	assert.False(t, v.Result.Valid)
	assert.True(t, v.Result.HasErrors("style"))
}

func TestValidateSurvey_HiddenAnswersPruned(t *testing.T) {
	v, err := ValidateSurvey(coupleQuestions(), models.SurveyResponses{
		"budget":       1000.0,
		"style":        []interface{}{"candid"},
		"drone":        false,
		"drone_height": 120.0,
	})
	require.NoError(t, err)
	assert.True(t, v.Result.Valid, v.Result.GetErrorMessages())
	assert.NotContains(t, v.Pruned, "drone_height")
	assert.Contains(t, v.Pruned, "drone")
}

func TestValidateSurvey_VisibleConditionalRequired(t *testing.T) {
	v, err := ValidateSurvey(coupleQuestions(), models.SurveyResponses{
		"budget": 1000.0,
		"style":  []interface{}{"candid"},
		"drone":  true,
	})
	require.NoError(t, err)
	assert.False(t, v.Result.Valid)
	assert.True(t, v.Result.HasErrors("drone_height"))
}

func TestValidateSurvey_UnknownQuestionRejected(t *testing.T) {
	v, err := ValidateSurvey(coupleQuestions(), models.SurveyResponses{
		"budget":   1000.0,
		"style":    []interface{}{"candid"},
		"nickname": "Bee",
	})
	require.NoError(t, err)
	assert.False(t, v.Result.Valid)
	assert.True(t, v.Result.HasErrors("nickname"))
}

func TestValidateSurvey_NullAnswersDropped(t *testing.T) {
	v, err := ValidateSurvey(coupleQuestions(), models.SurveyResponses{
		"budget":     1000.0,
		"style":      []interface{}{"candid"},
		"venue_type": nil,
	})
	require.NoError(t, err)
	assert.True(t, v.Result.Valid, v.Result.GetErrorMessages())
	assert.NotContains(t, v.Pruned, "venue_type")
}

func TestBuildSurveySchema_HiddenQuestionsOmitted(t *testing.T) {
	schema := BuildSurveySchema(coupleQuestions(), models.SurveyResponses{"drone": false})
	props := schema["properties"].(map[string]interface{})
	assert.NotContains(t, props, "drone_height")
	assert.Equal(t, []string{"budget", "style"}, schema["required"])

	schema = BuildSurveySchema(coupleQuestions(), models.SurveyResponses{"drone": true})
	assert.Equal(t, []string{"budget", "drone_height", "style"}, schema["required"])
}

func albumChain() []models.SurveyQuestion {
	return []models.SurveyQuestion{
		{ID: "wants_album", Role: models.RoleCouple, AnswerType: models.AnswerSingleChoice, Required: true,
			Options: []string{"yes", "no"}},
		{ID: "album_kind", Role: models.RoleCouple, AnswerType: models.AnswerSingleChoice, Required: true,
			Options:   []string{"lay_flat", "classic"},
			DependsOn: &models.DependsOn{QuestionID: "wants_album", AcceptedValues: []string{"yes"}}},
		{ID: "cover", Role: models.RoleCouple, AnswerType: models.AnswerSingleChoice, Required: true,
			Options:   []string{"leather", "linen"},
			DependsOn: &models.DependsOn{QuestionID: "album_kind", AcceptedValues: []string{"lay_flat"}}},
	}
}

func TestValidateSurvey_HiddenParentHidesGrandchild(t *testing.T) {
	v, err := ValidateSurvey(albumChain(), models.SurveyResponses{
		"wants_album": "no",
		"album_kind":  "lay_flat",
		"cover":       "leather",
	})
	require.NoError(t, err)
	assert.True(t, v.Result.Valid, v.Result.GetErrorMessages())
	assert.Equal(t, models.SurveyResponses{"wants_album": "no"}, v.Pruned)
}

func TestValidateSurvey_VisibleChainRequiresGrandchild(t *testing.T) {
	v, err := ValidateSurvey(albumChain(), models.SurveyResponses{
		"wants_album": "yes",
		"album_kind":  "lay_flat",
	})
	require.NoError(t, err)
	assert.False(t, v.Result.Valid)
	assert.True(t, v.Result.HasErrors("cover"))
}

func TestBuildSurveySchema_HiddenChainOmitted(t *testing.T) {
	schema := BuildSurveySchema(albumChain(), models.SurveyResponses{
		"wants_album": "no",
		"album_kind":  "lay_flat",
	})
	props := schema["properties"].(map[string]interface{})
	assert.NotContains(t, props, "album_kind")
	assert.NotContains(t, props, "cover")
	assert.Equal(t, []string{"wants_album"}, schema["required"])
}
