package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/methodstatus/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/methodstatus.yaml
var configTemplate embed.FS

const templatePath = "templates/methodstatus.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new methodstatus configuration file",
		Long: `Initialize creates a new .methodstatus configuration file in the current directory.

The generated file includes:
- The release tag and attribute language
- The attribute type keys read from the model repository
- Commented table header labels

Examples:
  # Create .methodstatus in current directory
  methodstatus init

  # Create config file at a specific path
  methodstatus init -o myconfig.yaml

  # Force overwrite existing file
  methodstatus init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to match your model repository:")
	fmt.Fprintln(out, "  - The release tag in scope")
	fmt.Fprintln(out, "  - The attribute type keys of your method")
	fmt.Fprintln(out, "  - Table header labels")
	return nil
}
