package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/petalert/pkg/client"
)

func newPetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pet",
		Short: "Manage your pets",
	}

	cmd.AddCommand(newPetAddCmd())
	cmd.AddCommand(newPetListCmd())
	cmd.AddCommand(newPetGetCmd())

	return cmd
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %s", what, arg)
	}
	return id, nil
}

func newPetAddCmd() *cobra.Command {
	var req client.CreatePetRequest

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a pet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = args[0]
			pet, err := apiClient.Pets().Create(context.Background(), req)
			if err != nil {
				return fmt.Errorf("failed to register pet: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(pet)
			}
			fmt.Fprintf(stdout, "Pet %d registered: %s\n", pet.ID, pet.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Species, "species", "", "species, e.g. dog or cat")
	cmd.Flags().StringVar(&req.PhotoKey, "photo-key", "", "object key of an uploaded photo")

	return cmd
}

func newPetListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your pets",
		RunE: func(cmd *cobra.Command, args []string) error {
			pets, err := apiClient.Pets().List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list pets: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(pets)
			}

			t := NewTable("ID", "NAME", "SPECIES", "REGISTERED")
			for _, p := range pets {
				t.AddRow(strconv.FormatInt(p.ID, 10), p.Name, p.Species, formatTime(p.CreatedAt))
			}
			t.Render()
			return nil
		},
	}
}

func newPetGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a pet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "pet")
			if err != nil {
				return err
			}

			pet, err := apiClient.Pets().Get(context.Background(), id)
			if err != nil {
				return fmt.Errorf("failed to get pet: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(pet)
			}
			fmt.Fprintf(stdout, "ID:       %d\n", pet.ID)
			fmt.Fprintf(stdout, "Name:     %s\n", pet.Name)
			fmt.Fprintf(stdout, "Species:  %s\n", pet.Species)
			fmt.Fprintf(stdout, "Owner:    %d\n", pet.OwnerID)
			if pet.PhotoKey != "" {
				fmt.Fprintf(stdout, "Photo:    %s\n", pet.PhotoKey)
			}
			return nil
		},
	}
}
