// Command ask-cli is a terminal client for the ekaya-ask HTTP API.
//
//	ask-cli ask "how many tables are there"
//	ask-cli ask "show 5 members" --no-ai
//	ask-cli schema
//	ask-cli ping --server http://10.0.0.5:8080
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const defaultServer = "http://127.0.0.1:8080"

var (
	serverURL string
	timeout   time.Duration
	noAI      bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ask-cli",
		Short:         "Ask questions of a SQL Server database through ekaya-ask",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv("EKAYA_ASK_URL")
	if server == "" {
		server = defaultServer
	}
	root.PersistentFlags().StringVar(&serverURL, "server", server, "ekaya-ask base URL (env EKAYA_ASK_URL)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 3*time.Minute, "request timeout")

	root.AddCommand(newAskCmd(), newSchemaCmd(), newPingCmd())
	return root
}

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a natural-language question",
		Long: `Sends the question to POST /api/ask and renders the answer.

Questions about the database itself are answered from the catalog. Other
questions are turned into a SELECT by the language model unless --no-ai is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient(serverURL, timeout)

			var enabled *bool
			if noAI {
				v := false
				enabled = &v
			}

			spinner, _ := pterm.DefaultSpinner.Start("Asking...")
			resp, err := client.Ask(cmd.Context(), args[0], enabled)
			if err != nil {
				spinner.Fail("Request failed")
				return err
			}
			spinner.Stop()

			renderAsk(cmd.OutOrStdout(), resp)
			if resp.Status >= 400 {
				return fmt.Errorf("server answered %d", resp.Status)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noAI, "no-ai", false, "answer only catalog questions; do not generate SQL")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "List the tables of the default schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := newClient(serverURL, timeout).Schema(cmd.Context())
			if err != nil {
				return err
			}
			renderSchema(cmd.OutOrStdout(), schema)
			return nil
		},
	}
}

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Show server version and database reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient(serverURL, timeout)

			ping, err := client.Ping(cmd.Context())
			if err != nil {
				return err
			}
			conn, err := client.TestConnection(cmd.Context())
			if err != nil {
				return err
			}
			renderPing(cmd.OutOrStdout(), ping, conn)
			return nil
		},
	}
}
