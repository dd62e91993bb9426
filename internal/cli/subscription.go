package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSubscriptionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscription",
		Aliases: []string{"sub"},
		Short:   "Follow alerts and get notified of their changes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <alert-id>",
		Short: "Subscribe to an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "alert")
			if err != nil {
				return err
			}
			sub, err := apiClient.Subscriptions().Subscribe(context.Background(), id)
			if err != nil {
				return fmt.Errorf("failed to subscribe: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(sub)
			}
			fmt.Fprintf(stdout, "Subscribed to alert %d\n", sub.AlertID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <alert-id>",
		Short: "Unsubscribe from an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "alert")
			if err != nil {
				return err
			}
			if err := apiClient.Subscriptions().Unsubscribe(context.Background(), id); err != nil {
				return fmt.Errorf("failed to unsubscribe: %w", err)
			}
			fmt.Fprintf(stdout, "Unsubscribed from alert %d\n", id)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your active subscriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			subs, err := apiClient.Subscriptions().List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list subscriptions: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(subs)
			}

			t := NewTable("ALERT", "SINCE")
			for _, s := range subs {
				t.AddRow(strconv.FormatInt(s.AlertID, 10), formatTime(s.SubscribedAt))
			}
			t.Render()
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "subscribers <alert-id>",
		Short: "List the users following an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "alert")
			if err != nil {
				return err
			}
			res, err := apiClient.Subscriptions().Subscribers(context.Background(), id)
			if err != nil {
				return fmt.Errorf("failed to list subscribers: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(res)
			}
			fmt.Fprintf(stdout, "Alert %d has %d subscriber(s)\n", res.AlertID, len(res.UserIDs))
			for _, uid := range res.UserIDs {
				fmt.Fprintf(stdout, "  user %d\n", uid)
			}
			return nil
		},
	})

	return cmd
}
