package cli

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// setting is a configuration key the CLI understands
type setting struct {
	key      string
	usage    string
	prompt   bool
	secret   bool
	validate func(string) error
}

var settings = []setting{
	{key: "server_url", usage: "PetAlert API base URL", prompt: true, validate: validateServerURL},
	{key: "output", usage: "default output format (table, json, yaml)", prompt: true, validate: validateOutput},
	{key: "auth.email", usage: "email of the logged in user"},
	{key: "auth.token", usage: "access token written by login", secret: true},
}

func lookupSetting(key string) (setting, bool) {
	for _, s := range settings {
		if s.key == key {
			return s, true
		}
	}
	return setting{}, false
}

func validateServerURL(v string) error {
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server_url must be an http(s) URL, got %q", v)
	}
	return nil
}

func validateOutput(v string) error {
	if !validFormat(v) {
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", v)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}

	cmd.AddCommand(
		newConfigInitCmd(),
		newConfigSetCmd(),
		newConfigGetCmd(),
		newConfigUnsetCmd(),
		newConfigListCmd(),
		newConfigPathCmd(),
	)

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Interactive first-time setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := promptSettings(cmd.InOrStdin(), stdout); err != nil {
				return err
			}
			if err := writeConfig(); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintln(stdout, "Configuration saved")
			return nil
		},
	}
}

// promptSettings asks for every promptable setting, keeping the current
// value on an empty answer and asking again on an invalid one.
func promptSettings(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	for _, s := range settings {
		if !s.prompt {
			continue
		}
		for {
			current := viper.GetString(s.key)
			fmt.Fprintf(out, "%s [%s]: ", s.usage, current)
			answer, err := reader.ReadString('\n')
			if err != nil && err != io.EOF {
				return err
			}
			answer = strings.TrimSpace(answer)
			if answer == "" {
				answer = current
			}
			if verr := s.validate(answer); verr != nil {
				fmt.Fprintln(out, verr)
				if err == io.EOF {
					return verr
				}
				continue
			}
			viper.Set(s.key, answer)
			break
		}
	}
	return nil
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := lookupSetting(args[0])
			if !ok {
				return fmt.Errorf("unknown key %q, see 'petalert config list'", args[0])
			}
			if s.secret {
				return fmt.Errorf("%s is managed by 'petalert login'", s.key)
			}
			if s.validate != nil {
				if err := s.validate(args[1]); err != nil {
					return err
				}
			}
			viper.Set(s.key, args[1])
			if err := writeConfig(); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Set %s = %s\n", s.key, args[1])
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := lookupSetting(args[0])
			if !ok {
				return fmt.Errorf("unknown key %q", args[0])
			}
			fmt.Fprintf(stdout, "%s: %s\n", s.key, displayValue(s))
			return nil
		},
	}
}

func newConfigUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Clear a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := lookupSetting(args[0])
			if !ok {
				return fmt.Errorf("unknown key %q", args[0])
			}
			viper.Set(s.key, "")
			if err := writeConfig(); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Cleared %s\n", s.key)
			return nil
		},
	}
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all configuration values",
		RunE: func(cmd *cobra.Command, args []string) error {
			t := NewTable("KEY", "VALUE", "DESCRIPTION")
			for _, s := range settings {
				t.AddRow(s.key, displayValue(s), s.usage)
			}
			t.Render()
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, path)
			return nil
		},
	}
}

func displayValue(s setting) string {
	v := viper.GetString(s.key)
	switch {
	case v == "":
		return "(not set)"
	case s.secret:
		return "(stored)"
	default:
		return v
	}
}

func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// writeConfig persists viper settings to the --config file or $HOME/.petalert/config.yaml
func writeConfig() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return viper.WriteConfigAs(path)
}
