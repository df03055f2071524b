/*
Package cli provides command-line helpers shared by the ipecho commands.

Output Formatting:

The routes, validate and certs commands print either aligned text or JSON:

	format, err := cli.ParseOutputFormat(flagValue)
	if err != nil {
		return err
	}
	table := cli.Table{Headers: []string{"PATH", "FORMAT"}, Rows: rows}
	return cli.NewFormatter(format).FormatTo(os.Stdout, table)

Errors:

ConfigError and CommandError give commands a uniform error shape.
ConfigErrors splits a config.ValidationError into one ConfigError per field.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
