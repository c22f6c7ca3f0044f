// cmd/matchctl/score.go
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"matchmaking-workers/internal/matching"
	"matchmaking-workers/internal/models"
)

func newScoreCmd(_ *rootOptions, v *viper.Viper) *cobra.Command {
	var (
		category      string
		categoryCount int
	)

	cmd := &cobra.Command{
		Use:   "score <couple.json> <provider.json>",
		Short: "Score a couple questionnaire against a provider questionnaire",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(v)
			if err != nil {
				return err
			}
			couple, err := readResponses(args[0])
			if err != nil {
				return err
			}
			provider, err := readResponses(args[1])
			if err != nil {
				return err
			}

			engine := matching.NewEngine(reg, matching.DefaultPolicy())
			var result *models.MatchResult
			if categoryCount > 0 {
				result, err = engine.ScoreCandidate(category, couple, models.Candidate{
					ProviderID:    "cli",
					Responses:     provider,
					CategoryCount: categoryCount,
				})
			} else {
				result, err = engine.Score(category, couple, provider)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "category id")
	cmd.Flags().IntVar(&categoryCount, "category-count", 0, "number of categories the provider serves; applies the specialization adjustment")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func readResponses(path string) (models.SurveyResponses, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var responses models.SurveyResponses
	if err := json.Unmarshal(data, &responses); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return responses, nil
}
