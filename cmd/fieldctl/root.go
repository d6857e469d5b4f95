package main

import (
	"fmt"
	"os"

	"github.com/nexuscrm/fieldstudio/internal/logger"
	"github.com/nexuscrm/fieldstudio/pkg/client"
	"github.com/nexuscrm/fieldstudio/pkg/editor"
	"github.com/spf13/cobra"
)

const (
	envAPIURL     = "FIELDSTUDIO_API_URL"
	defaultAPIURL = "http://localhost:3001"
)

// app carries the state shared by every subcommand.
type app struct {
	apiURL   string
	logDebug bool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "fieldctl",
		Short:         "Field Studio command line",
		Long:          "Inspect and edit field definitions and their value sets through the Field Studio API.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.logDebug {
				logger.SetLevel("debug")
			}
		},
	}

	apiURL := os.Getenv(envAPIURL)
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", apiURL, "Field Studio API base URL (env "+envAPIURL+")")
	root.PersistentFlags().BoolVar(&a.logDebug, "debug", false, "set logging level to debug")

	root.AddCommand(newFieldsCmd(a), newValueSetCmd(a))
	return root
}

func (a *app) client() (*client.Client, error) {
	c, err := client.NewClient(a.apiURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return c, nil
}

// notifier prints editor notifications to the command's error stream.
func notifier(cmd *cobra.Command) editor.Notifier {
	return editor.NotifierFunc(func(n editor.Notification) {
		prefix := "ok"
		if n.Level == editor.LevelError {
			prefix = "error"
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", prefix, n.Message)
	})
}
