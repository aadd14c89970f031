package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/samzong/hgc/internal/config"
	"github.com/samzong/hgc/internal/textenc"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage hgc configuration",
		Long:  `Manage hgc configuration such as the hg executable, encoding and LLM settings.`,
	}

	configSetCmd = &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.SettableKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: runConfigSet,
	}

	configGetCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Show the current configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigGet,
	}
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configErr != nil {
		return fmt.Errorf("configuration error: %w", configErr)
	}

	key, raw := args[0], args[1]
	if !config.IsSettableKey(key) {
		return fmt.Errorf("unknown configuration key %q (valid keys: %v)", key, config.SettableKeys())
	}

	var value interface{} = raw
	switch key {
	case "max_arg_length":
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return fmt.Errorf("max_arg_length must be a non-negative integer, got %q", raw)
		}
		value = n
	case "encoding":
		if _, err := textenc.Lookup(raw); err != nil {
			return err
		}
	}

	config.SetConfigValue(key, value)
	if err := config.SaveConfig(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	out := cmd.OutOrStdout()
	if key == "api_key" {
		fmt.Fprintln(out, "API key has been set")
		return nil
	}
	fmt.Fprintf(out, "Set %s to: %v\n", key, value)

	if key == "model" {
		fmt.Fprintln(out, "Hint: any model name is accepted, suggested models are:")
		for _, m := range config.GetSuggestedModels() {
			fmt.Fprintf(out, "- %s\n", m)
		}
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configErr != nil {
		return fmt.Errorf("configuration error: %w", configErr)
	}

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		if !config.IsSettableKey(args[0]) {
			return fmt.Errorf("unknown configuration key %q", args[0])
		}
		fmt.Fprintln(out, displayValue(args[0]))
		return nil
	}

	keys := config.SettableKeys()
	sort.Strings(keys)
	fmt.Fprintln(out, "Current configuration:")
	for _, key := range keys {
		fmt.Fprintf(out, "%s: %s\n", key, displayValue(key))
	}
	return nil
}

func displayValue(key string) string {
	value := viper.GetString(key)
	switch {
	case key == "api_key" && value != "":
		return "********"
	case value == "":
		return "<not set>"
	default:
		return value
	}
}
