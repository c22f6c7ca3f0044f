// internal/models/survey.go
package models

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleCouple   Role = "couple"
	RoleProvider Role = "provider"
)

type AnswerType string

const (
	AnswerSingleChoice AnswerType = "single_choice"
	AnswerMultiChoice  AnswerType = "multi_choice"
	AnswerNumeric      AnswerType = "numeric"
	AnswerNumericRange AnswerType = "numeric_range"
	AnswerBoolean      AnswerType = "boolean"
	AnswerText         AnswerType = "text"
)

// DependsOn makes a question visible only when another question's answer is
// (or, with Negate, is not) one of AcceptedValues.
type DependsOn struct {
	QuestionID     string   `json:"questionId"`
	AcceptedValues []string `json:"acceptedValues"`
	Negate         bool     `json:"negate,omitempty"`
}

type SurveyQuestion struct {
	ID         string     `json:"id"`
	Category   string     `json:"category"`
	Role       Role       `json:"role"`
	AnswerType AnswerType `json:"answerType"`
	Required   bool       `json:"required"`
	Options    []string   `json:"options,omitempty"`
	DependsOn  *DependsOn `json:"dependsOn,omitempty"`
}

// SurveyResponses maps question id to the raw answer as decoded from JSON:
// string, []interface{} / []string, float64, bool, or a {min,max} object.
type SurveyResponses map[string]interface{}

// IsVisible reports whether q's own display condition holds for responses.
// It does not look at whether the question it depends on is itself shown;
// use VisibleQuestions for that.
func (q SurveyQuestion) IsVisible(responses SurveyResponses) bool {
	if q.DependsOn == nil {
		return true
	}
	matched := answerMatchesAny(responses[q.DependsOn.QuestionID], q.DependsOn.AcceptedValues)
	if q.DependsOn.Negate {
		return !matched
	}
	return matched
}

// VisibleQuestions returns the ids of the questions shown for responses. A
// question is hidden when its condition fails or when the question it
// depends on is hidden, at any depth.
func VisibleQuestions(questions []SurveyQuestion, responses SurveyResponses) map[string]bool {
	visible := make(map[string]bool, len(questions))
	for _, q := range questions {
		visible[q.ID] = true
	}
	for changed := true; changed; {
		changed = false
		for _, q := range questions {
			if !visible[q.ID] || q.DependsOn == nil {
				continue
			}
			parentShown, known := visible[q.DependsOn.QuestionID]
			if (known && !parentShown) || !q.IsVisible(responses) {
				visible[q.ID] = false
				changed = true
			}
		}
	}
	return visible
}

// VisibleResponses drops answers to questions hidden by their display
// condition, directly or through a hidden parent. Answers to ids not in
// questions are kept untouched.
func VisibleResponses(questions []SurveyQuestion, responses SurveyResponses) SurveyResponses {
	if responses == nil {
		return nil
	}
	visible := VisibleQuestions(questions, responses)
	out := make(SurveyResponses, len(responses))
	for k, v := range responses {
		if shown, known := visible[k]; known && !shown {
			continue
		}
		out[k] = v
	}
	return out
}

func answerMatchesAny(answer interface{}, accepted []string) bool {
	if answer == nil {
		return false
	}
	for _, v := range AnswerStrings(answer) {
		for _, a := range accepted {
			if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(a)) {
				return true
			}
		}
	}
	return false
}

// AnswerStrings flattens a scalar or list answer into its string forms.
func AnswerStrings(answer interface{}) []string {
	switch v := answer.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	case bool:
		if v {
			return []string{"true"}
		}
		return []string{"false"}
	default:
		return []string{fmt.Sprint(v)}
	}
}
