package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"mercator-hq/ipecho/pkg/cli"
	"mercator-hq/ipecho/pkg/introspect"
	"mercator-hq/ipecho/pkg/routes"
)

var routesFlags struct {
	format string
	all    bool
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the exposed routes",
	Long: `List the routes the configuration exposes and the format each one renders.

With --all every route the service knows is listed, with a column saying
whether the configuration exposes it.

Examples:
  ipecho routes
  ipecho routes --all
  ipecho routes --config /etc/ipecho/config.yaml --format json`,
	RunE: listRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)

	routesCmd.Flags().StringVarP(&routesFlags.format, "format", "f", "text", "output format: text, json")
	routesCmd.Flags().BoolVar(&routesFlags.all, "all", false, "list every known route, not only the exposed ones")
}

func listRoutes(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(routesFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	table, err := routes.NewTable(cfg.Routes.Enabled)
	if err != nil {
		return cli.NewConfigError("routes.enabled", err.Error())
	}

	listed := table.Routes()
	headers := []string{"PATH", "FORMAT", "BODY"}
	if routesFlags.all {
		listed = routes.Canonical()
		headers = append(headers, "ENABLED")
	}

	out := cli.Table{Headers: headers}
	for _, r := range listed {
		row := []string{r.Path, r.Format.String(), bodyKind(r.Format)}
		if routesFlags.all {
			_, ok := table.Lookup(r.Path)
			row = append(row, strconv.FormatBool(ok))
		}
		out.Rows = append(out.Rows, row)
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), out)
}

func bodyKind(f introspect.Format) string {
	if f.Structured() {
		return "json"
	}
	return "text"
}
