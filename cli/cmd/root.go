package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/telhawk-querybuilder/cli/internal/client"
	"github.com/telhawk-systems/telhawk-querybuilder/cli/pkg/output"
	"github.com/telhawk-systems/telhawk-querybuilder/common/config"
)

var version = "dev"

var (
	cfgFile string
	cfg     *config.CLIConfig
)

// NewRootCmd builds the qb command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "qb",
		Short: "OCSF query builder CLI",
		Long: `qb builds, validates and analyzes OCSF event queries.

Schema, compile, analyze and template commands run locally against the
built-in field catalogue. Saved query commands talk to a query builder
service selected by profile or --builder-url.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.qb/config.yaml)")
	flags.String("profile", "", "profile to use (default: current profile)")
	flags.StringP("output", "o", "", "output format: table, json, yaml")
	flags.String("builder-url", "", "query builder service URL (overrides the profile)")

	rootCmd.AddCommand(
		newCategoriesCmd(),
		newFieldsCmd(),
		newOperatorsCmd(),
		newValidateCmd(),
		newCompileCmd(),
		newAnalyzeCmd(),
		newTemplatesCmd(),
		newSavedCmd(),
		newProfileCmd(),
	)
	return rootCmd
}

func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errInvalid) {
			return err
		}
		output.New(rootCmd.OutOrStdout(), rootCmd.ErrOrStderr(), "").Error("%v", err)
		return err
	}
	return nil
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadCLIFile(cfgFile)
	} else {
		cfg, err = config.LoadCLI()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

func profileName(cmd *cobra.Command) string {
	name, _ := cmd.Flags().GetString("profile")
	return name
}

func printer(cmd *cobra.Command) *output.Printer {
	format, _ := cmd.Flags().GetString("output")
	if format == "" {
		format = cfg.GetOutput(profileName(cmd))
	}
	return output.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), format)
}

func builderClient(cmd *cobra.Command) *client.BuilderClient {
	url, _ := cmd.Flags().GetString("builder-url")
	if url == "" {
		url = cfg.GetBuilderURL(profileName(cmd))
	}
	return client.NewBuilderClient(url)
}
