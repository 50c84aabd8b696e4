package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default .cssmod.yaml config file",
	Long:  `Create a .cssmod.yaml configuration file (or the file named by --config) with sensible defaults.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = ".cssmod.yaml"
		}

		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
		return nil
	},
}

const defaultConfig = `# cssmod configuration
# Docs: https://github.com/yacobolo/cssmod

# Shared settings
mode: development          # development | production (default utility naming)
verbose: false

# Build settings
build:
  source: web/styles
  output-dir: dist/styles
  include:
    - "**/*.module.css"
  exclude: []
  manifest: modules.json
  concurrency: 0           # 0 = number of CPUs
  cache-size: 256
  output-format: text      # text | full | json
  print-lines: false

# Class, keyframes and variable scoping
scope:
  enabled: true
  length: 8
  css-variables: false     # true | false | a key seeding the suffix

# Atomic utility extraction
utilities:
  enabled: false
  mode: ""                 # readable | semireadable | encoded (empty: from mode)
  media: false
  container: false
  output: true

# Watch mode
watch:
  debounce: 100ms
`

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite existing config file")
}
