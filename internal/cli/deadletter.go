package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/petalert/pkg/client"
)

func newDeadLetterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deadletter",
		Aliases: []string{"dlq"},
		Short:   "Inspect notifications that could not be delivered (admin)",
	}

	cmd.AddCommand(newDeadLetterListCmd())
	cmd.AddCommand(newDeadLetterGetCmd())

	return cmd
}

func newDeadLetterListCmd() *cobra.Command {
	var opts client.DeadLetterListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List dead-lettered notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := apiClient.DeadLetters().List(context.Background(), &opts)
			if err != nil {
				return fmt.Errorf("failed to list dead letters: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(page)
			}

			t := NewTable("EVENT", "CHANNEL", "ALERT", "USER", "REASON", "RETRIES", "FAILED")
			for _, dl := range page.Data {
				t.AddRow(
					truncate(dl.EventID, 12),
					dl.Channel,
					strconv.FormatInt(dl.AlertID, 10),
					strconv.FormatInt(dl.UserID, 10),
					dl.Reason,
					strconv.Itoa(dl.RetryCount),
					formatTime(dl.FailedAt),
				)
			}
			t.Render()
			fmt.Fprintf(stdout, "\nPage %d of %d (%d entries)\n", page.Page, page.TotalPages, page.TotalItems)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Channel, "channel", "", "filter by channel (email, chat)")
	cmd.Flags().Int64Var(&opts.AlertID, "alert", 0, "filter by alert ID")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 20, "page size")

	return cmd
}

func newDeadLetterGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <event-id>",
		Short: "Show a dead-lettered notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dl, err := apiClient.DeadLetters().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get dead letter: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(dl)
			}
			fmt.Fprintf(stdout, "Event:    %s\n", dl.EventID)
			fmt.Fprintf(stdout, "Channel:  %s\n", dl.Channel)
			fmt.Fprintf(stdout, "Alert:    %d\n", dl.AlertID)
			fmt.Fprintf(stdout, "User:     %d\n", dl.UserID)
			fmt.Fprintf(stdout, "Reason:   %s\n", dl.Reason)
			fmt.Fprintf(stdout, "Retries:  %d\n", dl.RetryCount)
			fmt.Fprintf(stdout, "Failed:   %s\n", formatTime(dl.FailedAt))
			if dl.LastError != "" {
				fmt.Fprintf(stdout, "Error:    %s\n", dl.LastError)
			}
			if len(dl.Payload) > 0 {
				fmt.Fprintf(stdout, "Payload:  %s\n", string(dl.Payload))
			}
			return nil
		},
	}
}
