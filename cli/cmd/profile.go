package cmd

import (
	"errors"
	"sort"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/telhawk-querybuilder/cli/pkg/output"
	"github.com/telhawk-systems/telhawk-querybuilder/common/config"
)

func newProfileCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "profile",
		Short: "Manage service profiles",
	}

	set := &cobra.Command{
		Use:   "set <name>",
		Short: "Create or update a profile and make it current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, _ := cmd.Flags().GetString("builder-url")
			if url == "" {
				return errors.New("--builder-url is required")
			}
			if err := cfg.SetProfile(args[0], url); err != nil {
				return err
			}
			printer(cmd).Success("Profile %s now points at %s", args[0], url)
			return nil
		},
	}

	use := &cobra.Command{
		Use:   "use <name>",
		Short: "Switch the current profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := cfg.GetProfile(args[0]); err != nil {
				return err
			}
			cfg.CurrentProfile = args[0]
			if err := cfg.Save(); err != nil {
				return err
			}
			printer(cmd).Success("Using profile %s", args[0])
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(cfg.Profiles))
			for name := range cfg.Profiles {
				names = append(names, name)
			}
			sort.Strings(names)
			return printer(cmd).Render(cfg.Profiles, func() *output.Table {
				tbl := output.NewTable("", "NAME", "BUILDER URL")
				for _, name := range names {
					marker := ""
					if name == cfg.CurrentProfile {
						marker = "*"
					}
					tbl.AddRow(marker, name, profileURL(cfg.Profiles[name]))
				}
				return tbl
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.RemoveProfile(args[0]); err != nil {
				return err
			}
			printer(cmd).Success("Removed profile %s", args[0])
			return nil
		},
	}

	c.AddCommand(set, use, list, remove)
	return c
}

func profileURL(p *config.CLIProfile) string {
	if p == nil {
		return ""
	}
	return p.BuilderURL
}
