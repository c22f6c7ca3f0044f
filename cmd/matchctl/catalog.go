// cmd/matchctl/catalog.go
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"matchmaking-workers/internal/models"
	"matchmaking-workers/pkg/registry"
)

type categorySummary struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	CoupleQuestions   int    `json:"coupleQuestions"`
	ProviderQuestions int    `json:"providerQuestions"`
	Criteria          int    `json:"criteria"`
}

func newCatalogCmd(_ *rootOptions, v *viper.Viper) *cobra.Command {
	catalog := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the category catalog",
	}

	catalog.AddCommand(&cobra.Command{
		Use:   "validate [file]",
		Short: "Report every structural problem in a catalog file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := v.GetString("catalog")
			if len(args) == 1 {
				path = args[0]
			}
			cat, err := readCatalog(path)
			if err != nil {
				return err
			}
			problems := registry.Validate(cat)
			for _, p := range problems {
				cmd.Println(p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("catalog has %d problem(s)", len(problems))
			}
			cmd.Printf("catalog ok: %d categories\n", len(cat.Categories))
			return nil
		},
	})

	catalog.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories with question and criterion counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := registry.LoadCatalog(v.GetString("catalog"))
			if err != nil {
				return err
			}
			out := make([]categorySummary, 0, len(cat.Categories))
			for _, def := range cat.Categories {
				out = append(out, categorySummary{
					ID:                def.ID,
					DisplayName:       def.DisplayName,
					CoupleQuestions:   len(def.QuestionsFor(models.RoleCouple)),
					ProviderQuestions: len(def.QuestionsFor(models.RoleProvider)),
					Criteria:          len(def.Criteria),
				})
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	})

	return catalog
}

// readCatalog decodes without validating so every problem can be reported.
func readCatalog(path string) (*registry.CategoryCatalog, error) {
	if path == "" {
		return registry.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cat registry.CategoryCatalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("%w: %v", registry.ErrInvalidCatalog, err)
	}
	return &cat, nil
}
