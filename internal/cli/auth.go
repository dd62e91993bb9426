package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/pratik-mahalle/petalert/pkg/client"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthRegisterCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthWhoamiCmd())
	cmd.AddCommand(newAuthPreferencesCmd())

	return cmd
}

func saveSession(resp *client.AuthResponse) error {
	viper.Set("auth.token", resp.AccessToken)
	if resp.User != nil {
		viper.Set("auth.email", resp.User.Email)
	}
	if err := writeConfig(); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

func newAuthLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = promptInput("Email: ")
			}
			if password == "" {
				password = promptPassword("Password: ")
			}

			resp, err := apiClient.Login(context.Background(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := saveSession(resp); err != nil {
				return err
			}

			name := email
			if resp.User != nil && resp.User.FullName != "" {
				name = resp.User.FullName
			}
			fmt.Fprintf(stdout, "Logged in as %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")

	return cmd
}

func newAuthRegisterCmd() *cobra.Command {
	var email, password, fullName string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = promptInput("Email: ")
			}
			if fullName == "" {
				fullName = promptInput("Full name: ")
			}
			if password == "" {
				password = promptPassword("Password: ")
				if confirm := promptPassword("Confirm password: "); password != confirm {
					return fmt.Errorf("passwords do not match")
				}
			}

			resp, err := apiClient.Register(context.Background(), client.RegisterRequest{
				Email:    email,
				Password: password,
				FullName: fullName,
			})
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			if err := saveSession(resp); err != nil {
				return err
			}

			fmt.Fprintf(stdout, "Account created. Logged in as %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&fullName, "name", "", "full name")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.Set("auth.token", "")
			viper.Set("auth.email", "")

			if err := writeConfig(); err != nil {
				return fmt.Errorf("failed to clear credentials: %w", err)
			}

			fmt.Fprintln(stdout, "Logged out successfully")
			return nil
		},
	}
}

func printUser(u *client.User) error {
	if getOutputFormat() != "table" {
		return printOutput(u)
	}

	fmt.Fprintf(stdout, "ID:       %d\n", u.ID)
	fmt.Fprintf(stdout, "Email:    %s\n", u.Email)
	if u.FullName != "" {
		fmt.Fprintf(stdout, "Name:     %s\n", u.FullName)
	}
	fmt.Fprintf(stdout, "Role:     %s\n", u.Role)
	fmt.Fprintf(stdout, "Email notifications: %t\n", u.EmailNotifications)
	if u.ChatEnabled {
		fmt.Fprintf(stdout, "Chat notifications:  on (chat id %s)\n", u.ChatID)
	} else {
		fmt.Fprintln(stdout, "Chat notifications:  off")
	}
	return nil
}

func newAuthWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show current user info",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := apiClient.GetCurrentUser(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get user info: %w", err)
			}
			return printUser(user)
		},
	}
}

func newAuthPreferencesCmd() *cobra.Command {
	var chatID string

	cmd := &cobra.Command{
		Use:   "preferences",
		Short: "Change notification preferences",
		Example: `  petalert auth preferences --email=false
  petalert auth preferences --chat --chat-id 123456789`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var prefs client.Preferences
			if cmd.Flags().Changed("email") {
				v, _ := cmd.Flags().GetBool("email")
				prefs.EmailNotifications = &v
			}
			if cmd.Flags().Changed("chat") {
				v, _ := cmd.Flags().GetBool("chat")
				prefs.ChatEnabled = &v
			}
			if cmd.Flags().Changed("chat-id") {
				prefs.ChatID = &chatID
			}

			user, err := apiClient.UpdatePreferences(context.Background(), prefs)
			if err != nil {
				return fmt.Errorf("failed to update preferences: %w", err)
			}
			return printUser(user)
		},
	}

	cmd.Flags().Bool("email", true, "receive email notifications")
	cmd.Flags().Bool("chat", false, "receive chat notifications")
	cmd.Flags().StringVar(&chatID, "chat-id", "", "Telegram chat id")

	return cmd
}

func promptInput(prompt string) string {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func promptPassword(prompt string) string {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return ""
	}
	return string(password)
}
