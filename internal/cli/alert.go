package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/petalert/pkg/client"
)

func newAlertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alert",
		Short: "Report and follow lost pet alerts",
	}

	cmd.AddCommand(newAlertListCmd())
	cmd.AddCommand(newAlertGetCmd())
	cmd.AddCommand(newAlertReportCmd())
	cmd.AddCommand(newAlertEditCmd())
	cmd.AddCommand(newAlertStatusCmd())
	cmd.AddCommand(newAlertSeenCmd())
	cmd.AddCommand(newAlertSafeCmd())
	cmd.AddCommand(newAlertCloseCmd())
	cmd.AddCommand(newAlertHistoryCmd())
	cmd.AddCommand(newAlertLatestCmd())

	return cmd
}

func newAlertListCmd() *cobra.Command {
	var opts client.AlertListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := apiClient.Alerts().List(context.Background(), &opts)
			if err != nil {
				return fmt.Errorf("failed to list alerts: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(page)
			}

			t := NewTable("ID", "PET", "STATUS", "TITLE", "UPDATED")
			for _, a := range page.Data {
				t.AddRow(
					strconv.FormatInt(a.ID, 10),
					strconv.FormatInt(a.PetID, 10),
					formatStatus(a.Status),
					truncate(a.Title, 50),
					formatTime(a.UpdatedAt),
				)
			}
			t.Render()
			fmt.Fprintf(stdout, "\nPage %d of %d (%d alerts)\n", page.Page, page.TotalPages, page.TotalItems)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "filter by status (OPENED, SEEN, SAFE, CLOSED)")
	cmd.Flags().Int64Var(&opts.PetID, "pet", 0, "filter by pet ID")
	cmd.Flags().Int64Var(&opts.OwnerID, "owner", 0, "filter by owner ID")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 20, "page size")

	return cmd
}

func printAlert(a *client.Alert) error {
	if getOutputFormat() != "table" {
		return printOutput(a)
	}

	fmt.Fprintf(stdout, "ID:          %d\n", a.ID)
	fmt.Fprintf(stdout, "Pet:         %d\n", a.PetID)
	fmt.Fprintf(stdout, "Owner:       %d\n", a.OwnerID)
	fmt.Fprintf(stdout, "Status:      %s\n", formatStatus(a.Status))
	fmt.Fprintf(stdout, "Title:       %s\n", a.Title)
	if a.Description != "" {
		fmt.Fprintf(stdout, "Description: %s\n", a.Description)
	}
	fmt.Fprintf(stdout, "Version:     %d\n", a.Version)
	fmt.Fprintf(stdout, "Created:     %s\n", formatTime(a.CreatedAt))
	fmt.Fprintf(stdout, "Updated:     %s\n", formatTime(a.UpdatedAt))
	return nil
}

// explainConflict turns a lost race into a readable error
func explainConflict(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if current, ok := apiErr.CurrentAlert(); ok {
			return fmt.Errorf("alert %d changed while you were working on it: it is now %s (version %d)",
				current.ID, current.Status, current.Version)
		}
	}
	return err
}

func newAlertGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get alert details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "alert")
			if err != nil {
				return err
			}

			alert, err := apiClient.Alerts().Get(context.Background(), id)
			if err != nil {
				return fmt.Errorf("failed to get alert: %w", err)
			}
			return printAlert(alert)
		},
	}
}

func newAlertReportCmd() *cobra.Command {
	var req client.CreateAlertRequest

	cmd := &cobra.Command{
		Use:   "report <pet-id> <title>",
		Short: "Report a pet as lost",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			petID, err := parseID(args[0], "pet")
			if err != nil {
				return err
			}
			req.PetID = petID
			req.Title = args[1]

			alert, err := apiClient.Alerts().Create(context.Background(), req)
			if err != nil {
				return fmt.Errorf("failed to report alert: %w", err)
			}
			return printAlert(alert)
		},
	}

	cmd.Flags().StringVar(&req.Description, "description", "", "details that help identify the pet")

	return cmd
}

func newAlertEditCmd() *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit the title or description of an opened alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "alert")
			if err != nil {
				return err
			}

			var req client.UpdateAlertRequest
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if req.Title == nil && req.Description == nil {
				return fmt.Errorf("nothing to change: pass --title or --description")
			}

			alert, err := apiClient.Alerts().Update(context.Background(), id, req)
			if err != nil {
				return fmt.Errorf("failed to edit alert: %w", explainConflict(err))
			}
			return printAlert(alert)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")

	return cmd
}

// locationFlags registers --lat/--lng and returns a getter for the optional location
func locationFlags(cmd *cobra.Command) func() *client.Location {
	var lat, lng float64
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude of the sighting")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude of the sighting")
	return func() *client.Location {
		if !cmd.Flags().Changed("lat") && !cmd.Flags().Changed("lng") {
			return nil
		}
		return &client.Location{Latitude: lat, Longitude: lng}
	}
}

func newAlertStatusCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move an alert to SEEN, SAFE or CLOSED",
		Args:  cobra.ExactArgs(2),
	}
	location := locationFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "alert")
		if err != nil {
			return err
		}

		alert, err := apiClient.Alerts().ChangeStatus(context.Background(), id, client.ChangeStatusRequest{
			Status:        strings.ToUpper(args[1]),
			ClosureReason: strings.ToUpper(reason),
			Location:      location(),
		})
		if err != nil {
			return fmt.Errorf("failed to change status: %w", explainConflict(err))
		}
		return printAlert(alert)
	}

	cmd.Flags().StringVar(&reason, "reason", "", "closure reason (FOUNDED, CANCELLED, DUPLICATED)")

	return cmd
}

func newAlertSeenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seen <id>",
		Short: "Report a sighting",
		Args:  cobra.ExactArgs(1),
	}
	location := locationFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "alert")
		if err != nil {
			return err
		}
		alert, err := apiClient.Alerts().MarkSeen(context.Background(), id, location())
		if err != nil {
			return fmt.Errorf("failed to report sighting: %w", explainConflict(err))
		}
		return printAlert(alert)
	}
	return cmd
}

func newAlertSafeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "safe <id>",
		Short: "Report that the pet is safe",
		Args:  cobra.ExactArgs(1),
	}
	location := locationFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "alert")
		if err != nil {
			return err
		}
		alert, err := apiClient.Alerts().MarkSafe(context.Background(), id, location())
		if err != nil {
			return fmt.Errorf("failed to mark safe: %w", explainConflict(err))
		}
		return printAlert(alert)
	}
	return cmd
}

func newAlertCloseCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "close <id>",
		Short: "Close an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "alert")
			if err != nil {
				return err
			}
			alert, err := apiClient.Alerts().Close(context.Background(), id, strings.ToUpper(reason))
			if err != nil {
				return fmt.Errorf("failed to close alert: %w", explainConflict(err))
			}
			return printAlert(alert)
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "FOUNDED", "closure reason (FOUNDED, CANCELLED, DUPLICATED)")

	return cmd
}

func printEvents(events []client.AlertEvent) error {
	if getOutputFormat() != "table" {
		return printOutput(events)
	}

	t := NewTable("WHEN", "KIND", "CHANGE", "ACTOR")
	for _, ev := range events {
		t.AddRow(formatTime(ev.CreatedAt), ev.Kind, describeEvent(ev), strconv.FormatInt(ev.ActorID, 10))
	}
	t.Render()
	return nil
}

func describeEvent(ev client.AlertEvent) string {
	var change string
	switch {
	case ev.NewStatus != "" && ev.PreviousStatus != "":
		change = ev.PreviousStatus + " -> " + ev.NewStatus
	case ev.OldValue != "" || ev.NewValue != "":
		change = truncate(ev.OldValue, 20) + " -> " + truncate(ev.NewValue, 20)
	default:
		change = ev.NewStatus
	}
	if ev.ClosureReason != "" {
		change += " (" + ev.ClosureReason + ")"
	}
	if ev.Location != nil {
		change += fmt.Sprintf(" @ %.5f,%.5f", ev.Location.Latitude, ev.Location.Longitude)
	}
	return change
}

func newAlertHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show the audit history of an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "alert")
			if err != nil {
				return err
			}
			events, err := apiClient.Alerts().History(context.Background(), id)
			if err != nil {
				return fmt.Errorf("failed to get history: %w", err)
			}
			return printEvents(events)
		},
	}
}

func newAlertLatestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "latest <id>",
		Short: "Show the most recent event of an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "alert")
			if err != nil {
				return err
			}
			ev, err := apiClient.Alerts().LatestEvent(context.Background(), id)
			if err != nil {
				return fmt.Errorf("failed to get latest event: %w", err)
			}
			return printEvents([]client.AlertEvent{*ev})
		},
	}
}
