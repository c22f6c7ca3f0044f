// cmd/matchctl/root.go
package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"matchmaking-workers/internal/common/config"
	"matchmaking-workers/internal/matching"
	"matchmaking-workers/pkg/registry"
)

const app = "matchctl"

// Actual version can be specified in build command.
var version = "unknown"

type rootOptions struct {
	configFile  string
	catalogPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	v := viper.New()

	root := &cobra.Command{
		Use:           app,
		Short:         "matchctl inspects category catalogs, scores questionnaires and manages search budgets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "service config file (default is configs/config.yaml)")
	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "category catalog file (default is the embedded catalog)")
	_ = v.BindPFlag("catalog", root.PersistentFlags().Lookup("catalog"))
	_ = v.BindEnv("catalog", "MATCH_CATALOG_PATH")

	root.AddCommand(
		newCatalogCmd(opts, v),
		newScoreCmd(opts, v),
		newBudgetCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				cmd.Printf("%s version: %s\n", app, version)
			},
		},
	)
	return root
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configFile != "" {
		return config.LoadFromFile(o.configFile)
	}
	return config.Load()
}

func loadRegistry(v *viper.Viper) (*matching.Registry, error) {
	cat, err := registry.LoadCatalog(v.GetString("catalog"))
	if err != nil {
		return nil, err
	}
	return matching.NewRegistry(cat)
}

func printJSON(w io.Writer, value interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
