package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/ipecho/pkg/cli"
	"mercator-hq/ipecho/pkg/config"
)

var validateFlags struct {
	format string
}

// errInvalidConfig is returned once the individual problems have been printed.
var errInvalidConfig = errors.New("configuration is invalid")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file with environment overrides applied and
report every invalid field.

Examples:
  ipecho validate --config /etc/ipecho/config.yaml
  ipecho validate --format json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.format, "format", "f", "text", "output format: text, json")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(validateFlags.format)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, err = config.LoadConfigWithEnvOverrides(cfgFile)
	problems := cli.ConfigErrors(err)

	if format == cli.FormatJSON {
		result := cli.Table{Headers: []string{"Field", "Message"}}
		for _, p := range problems {
			result.Rows = append(result.Rows, []string{p.Field, p.Message})
		}
		if err := cli.NewFormatter(format).FormatTo(out, result); err != nil {
			return err
		}
	} else if len(problems) == 0 {
		fmt.Fprintf(out, "✓ Configuration valid: %s\n", cfgFile)
	} else {
		fmt.Fprintf(out, "✗ Configuration invalid: %s\n", cfgFile)
		for _, p := range problems {
			fmt.Fprintf(out, "  - %s\n", p.Error())
		}
	}

	if len(problems) > 0 {
		return errInvalidConfig
	}
	return nil
}
