package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Digital-Shane/bangumi-tidy/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the registry document",
		Long: `The registry document extends the built-in release groups, tags, episode
patterns and video extensions. User entries are tried before built-ins.
Documents ending in .toml are read as TOML, anything else as JSON.`,
	}
	cmd.AddCommand(newConfigInitCommand(g), newConfigShowCommand(g), newConfigPathCommand(g))
	return cmd
}

// configPath is --config when set, else the default location.
func (g *globalOptions) configPath() (string, error) {
	if g.config != "" {
		return g.config, nil
	}
	return config.ConfigPath()
}

func newConfigInitCommand(g *globalOptions) *cobra.Command {
	var force, empty bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter registry document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := g.configPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			doc := config.DefaultDocument()
			if empty {
				doc = config.Document{}
			}
			if err := config.SaveDocument(doc, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing document")
	cmd.Flags().BoolVar(&empty, "empty", false, "Write empty collections instead of a copy of the built-ins")
	return cmd
}

func newConfigShowCommand(g *globalOptions) *cobra.Command {
	var asTOML bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective vocabulary, user entries first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := g.registry()
			if err != nil {
				return err
			}

			doc := config.Document{
				ReleaseGroups:   reg.ReleaseGroups(),
				Tags:            reg.Tags(),
				VideoExtensions: reg.VideoExtensions(),
			}
			for _, p := range reg.EpisodePatterns() {
				doc.EpisodePatterns = append(doc.EpisodePatterns, p.Source)
			}

			data, err := config.EncodeDocument(doc, asTOML)
			if err != nil {
				return fmt.Errorf("failed to encode registry: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&asTOML, "toml", false, "Print as TOML instead of JSON")
	return cmd
}

func newConfigPathCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the registry document location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := g.configPath()
			if err != nil {
				return err
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), abs)
			if _, err := os.Stat(abs); os.IsNotExist(err) {
				fmt.Fprintln(cmd.ErrOrStderr(), "(not created yet, run bangumi-tidy config init)")
			}
			return nil
		},
	}
}
