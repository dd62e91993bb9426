package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pratik-mahalle/petalert/pkg/client"
)

type statusSummary struct {
	Server      string         `json:"server" yaml:"server"`
	Health      string         `json:"health" yaml:"health"`
	Ready       bool           `json:"ready" yaml:"ready"`
	User        string         `json:"user,omitempty" yaml:"user,omitempty"`
	AlertCounts map[string]int `json:"alertCounts,omitempty" yaml:"alertCounts,omitempty"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server status and a summary of your alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			summary := collectStatus(ctx)

			if getOutputFormat() != "table" {
				return printOutput(summary)
			}

			fmt.Fprintln(stdout, "PetAlert Status")
			fmt.Fprintln(stdout, strings.Repeat("=", 40))
			fmt.Fprintf(stdout, "  Server:   %s\n", summary.Server)
			fmt.Fprintf(stdout, "  Health:   %s\n", summary.Health)
			fmt.Fprintf(stdout, "  Ready:    %t\n", summary.Ready)
			if summary.User == "" {
				fmt.Fprintln(stdout, "  User:     (not logged in)")
				return nil
			}
			fmt.Fprintf(stdout, "  User:     %s\n", summary.User)
			fmt.Fprintln(stdout)
			fmt.Fprintln(stdout, "Your alerts")
			for _, s := range []string{"OPENED", "SEEN", "SAFE", "CLOSED"} {
				fmt.Fprintf(stdout, "  %-20s %d\n", formatStatus(s), summary.AlertCounts[s])
			}
			return nil
		},
	}
}

func collectStatus(ctx context.Context) statusSummary {
	summary := statusSummary{Server: viper.GetString("server_url")}
	if serverURL != "" {
		summary.Server = serverURL
	}

	health, err := apiClient.Health(ctx)
	if err != nil {
		summary.Health = fmt.Sprintf("unreachable (%v)", err)
		return summary
	}
	summary.Health = health.Status
	summary.Ready = apiClient.Ready(ctx) == nil

	token := viper.GetString("auth.token")
	if token == "" {
		return summary
	}
	apiClient.SetToken(token)

	me, err := apiClient.GetCurrentUser(ctx)
	if err != nil {
		return summary
	}
	summary.User = me.Email
	summary.AlertCounts = map[string]int{}

	opts := &client.AlertListOptions{OwnerID: me.ID}
	opts.PageSize = 100
	for page := 1; ; page++ {
		opts.Page = page
		res, err := apiClient.Alerts().List(ctx, opts)
		if err != nil {
			break
		}
		for _, a := range res.Data {
			summary.AlertCounts[a.Status]++
		}
		if page >= res.TotalPages {
			break
		}
	}
	return summary
}
