package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/teranos/devize/am"
	"github.com/teranos/devize/display"
	"github.com/teranos/devize/errors"
	"github.com/teranos/devize/sym"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: sym.AM + " Manage devize configuration",
	Long: sym.AM + ` am — Manage devize configuration ("I am")

Configuration sources (later overrides earlier):
1. Built-in defaults
2. System config (/etc/devize/am.toml)
3. User config (~/.devize/am.toml)
4. Project config (nearest am.toml, searching up from the working directory)
5. Environment variables (DEVIZE_* prefix, e.g. DEVIZE_ENGINE_MAX_DEPTH)

Examples:
  devize am show                       # Show current configuration
  devize am show --format json         # Show configuration in JSON format
  devize am get render.width           # Get specific config value
  devize am set render.width 800       # Write to the project am.toml
  devize am where                      # Show where each setting came from`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., engine.max_depth, render.width)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the project am.toml (or ~/.devize/am.toml
with --user). Values are read as TOML: 800, true, ["lib", "vendor/lib"], "text".
The previous file is kept as am.toml.back1 (up to three backups).`,
	Args: cobra.ExactArgs(2),
	RunE: runAmSet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Args:  cobra.NoArgs,
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Args:  cobra.NoArgs,
	RunE:  runAmWhere,
}

func init() {
	amShowCmd.Flags().String("format", display.FormatTOML, "Output format: toml, json, yaml")
	amSetCmd.Flags().Bool("user", false, "Write to ~/.devize/am.toml instead of the project config")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amSetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	if _, err := am.Load(); err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	format, _ := cmd.Flags().GetString("format")
	if display.ShouldOutputJSON(cmd) {
		format = display.FormatJSON
	}

	out := cmd.OutOrStdout()
	if format != display.FormatJSON {
		fmt.Fprintln(out, "# devize configuration")
	}
	return display.Write(out, am.GetViper().AllSettings(), format)
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if _, err := am.Load(); err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if !am.GetViper().IsSet(key) {
		return errors.Newf("configuration key %q not found", key)
	}
	value := am.Get(key)
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd, map[string]any{"key": key, "value": value})
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runAmSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	user, _ := cmd.Flags().GetBool("user")
	path := am.ProjectConfigPath()
	if user {
		path = am.UserConfigPath()
		if path == "" {
			return errors.New("no home directory for the user config")
		}
	} else if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.Wrap(err, "failed to get working directory")
		}
		path = filepath.Join(wd, am.ConfigFileName)
	}

	if err := am.SetValue(path, key, am.ParseValue(raw)); err != nil {
		return err
	}

	am.Reset()
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "config no longer loads")
	}
	if err := cfg.Validate(); err != nil {
		return errors.WithHintf(errors.Wrap(err, "saved, but the configuration is now invalid"),
			"the previous version is in %s.back1", path)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %v (%s)\n", sym.AM, key, am.Get(key), path)
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	intro, err := am.GetConfigIntrospection()
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd, intro)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration cascade (later overrides earlier):")
	fmt.Fprintln(out, "  1. [DEFAULT]  Built-in defaults")
	fmt.Fprintf(out, "  2. [SYSTEM]   /etc/devize/%s\n", am.ConfigFileName)
	fmt.Fprintf(out, "  3. [USER]     %s\n", am.UserConfigPath())
	fmt.Fprintf(out, "  4. [PROJECT]  %s\n", orNone(am.ProjectConfigPath()))
	fmt.Fprintf(out, "  5. [ENV]      %s_* environment variables\n", am.EnvPrefix)
	fmt.Fprintln(out)

	for _, s := range intro.Settings {
		where := string(s.Source)
		if s.SourcePath != "" && s.Source != am.SourceDefault {
			where += " " + s.SourcePath
		}
		value := fmt.Sprintf("%v", s.Value)
		if len(value) > 50 {
			value = value[:47] + "..."
		}
		fmt.Fprintf(out, "  %-30s %-20s %s\n", s.Key, value, where)
	}
	return nil
}

func orNone(path string) string {
	if path == "" {
		return "(none found)"
	}
	return path
}
