package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// executeCommand runs the root command with args and returns its output.
// Flag variables are reset first because cobra keeps them between runs.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	runFlags.listenAddress = ""
	runFlags.logLevel = ""
	runFlags.dryRun = false
	routesFlags.format = "text"
	routesFlags.all = false
	validateFlags.format = "text"
	certsFlags.certFile = ""
	certsFlags.keyFile = ""
	certsFlags.format = "text"

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func missingConfig(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.yaml")
}
