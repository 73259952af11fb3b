package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-labadmin/internal/config"
	"github.com/goliatone/go-labadmin/pkg/labapi"
	"github.com/goliatone/go-labadmin/pkg/schema"
	"github.com/goliatone/go-labadmin/pkg/schema/openapi"
	"github.com/goliatone/go-labadmin/pkg/validate"
)

var (
	configPath string

	cfg      config.Config
	registry *schema.Registry
	client   *labapi.Client
)

var rootCmd = &cobra.Command{
	Use:   "labadmin <command>",
	Short: "Admin console for the research lab database",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		registry = schema.Default()
		if cfg.SchemaFile != "" {
			registry, err = openapi.LoadRegistryFromFile(cmd.Context(), cfg.SchemaFile)
			if err != nil {
				return err
			}
		}

		client, err = labapi.New(cfg.Backend.BaseURL, labapi.WithTimeout(cfg.Backend.Timeout))
		if err != nil {
			return err
		}
		return nil
	},
}

func validators() *validate.Provider {
	return validate.DefaultProvider()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("LABADMIN_CONFIG"), "path to labadmin.yaml")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
