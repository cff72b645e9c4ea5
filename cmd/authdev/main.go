// Command authdev runs a local development harness for the remoteauth
// flows: a fake JavaScript-side authentication bridge served over a
// WebSocket, plus a small bearer-protected API to point the authorization
// round tripper at.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "authdev",
		Short: "Local development harness for remoteauth",
		Long: `authdev serves a scripted authentication bridge and a
bearer-protected sample API, so applications built on remoteauth can
exercise their sign-in, sign-out and token flows without an identity
provider.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("authdev %s (%s)\n", version, commit)
		},
	}
}
