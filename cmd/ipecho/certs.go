package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/ipecho/pkg/cli"
	"mercator-hq/ipecho/pkg/server"
)

var certsFlags struct {
	certFile string
	keyFile  string
	format   string
}

var certsCmd = &cobra.Command{
	Use:   "certs",
	Short: "Check the TLS certificate",
	Long: `Load the TLS certificate and key the server would serve and display the
certificate details. The command fails for a pair the server would refuse:
unreadable files, a key that does not match, or a certificate outside its
validity period.

The pair comes from security.tls in the configuration unless --cert and
--key are given.

Examples:
  ipecho certs --config /etc/ipecho/config.yaml
  ipecho certs --cert server.crt --key server.key --format json`,
	RunE: checkCertificate,
}

func init() {
	rootCmd.AddCommand(certsCmd)

	certsCmd.Flags().StringVar(&certsFlags.certFile, "cert", "", "certificate file (overrides security.tls.cert_file)")
	certsCmd.Flags().StringVar(&certsFlags.keyFile, "key", "", "private key file (overrides security.tls.key_file)")
	certsCmd.Flags().StringVarP(&certsFlags.format, "format", "f", "text", "output format: text, json")
}

func checkCertificate(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(certsFlags.format)
	if err != nil {
		return err
	}

	certFile, keyFile := certsFlags.certFile, certsFlags.keyFile
	if certFile == "" || keyFile == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if certFile == "" {
			certFile = cfg.Security.TLS.CertFile
		}
		if keyFile == "" {
			keyFile = cfg.Security.TLS.KeyFile
		}
	}
	if certFile == "" || keyFile == "" {
		return cli.NewConfigError("security.tls", "no certificate configured")
	}

	now := time.Now()
	info, err := server.InspectCertificate(certFile, keyFile, now)
	if err != nil {
		return cli.NewCommandError("certs", err)
	}

	status := "valid"
	if info.ExpiringSoon {
		status = "expiring soon"
	}

	out := cli.Table{
		Headers: []string{"Field", "Value"},
		Rows: [][]string{
			{"subject", info.Subject},
			{"issuer", info.Issuer},
			{"not_before", info.NotBefore.UTC().Format(time.RFC3339)},
			{"not_after", info.NotAfter.UTC().Format(time.RFC3339)},
			{"expires_in_days", strconv.Itoa(int(info.NotAfter.Sub(now).Hours() / 24))},
			{"dns_names", strings.Join(info.DNSNames, ",")},
			{"ip_addresses", strings.Join(info.IPAddresses, ",")},
			{"status", status},
		},
	}
	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
