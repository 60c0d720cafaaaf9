package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rgehrsitz/dpesim/internal/auth"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List, create and delete simulation projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every simulation project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		projects, err := env.client.Projects(cmd.Context())
		if err != nil {
			return err
		}
		sort.SliceStable(projects, func(i, j int) bool { return projects[i].ID > projects[j].ID })
		return writeData(env, projects, func(w io.Writer) {
			fmt.Fprintf(w, "%-6s %-15s %s\n", "ID", "REF", "STATUS")
			for _, p := range projects {
				fmt.Fprintf(w, "%-6d %-15s %s\n", p.ID, p.RefAdeme, p.Status)
			}
		})
	},
}

var projectsNewCmd = &cobra.Command{
	Use:   "new REF",
	Short: "Create a project for a DPE reference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		ref := strings.ToUpper(strings.TrimSpace(args[0]))
		if err := env.client.CreateProject(cmd.Context(), ref); err != nil {
			return err
		}
		fmt.Fprintf(env.out, "Project %s created\n", ref)
		return nil
	},
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete REF",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("refusing to delete %s without --yes", args[0])
		}
		if err := env.client.DeleteProject(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(env.out, "Project %s deleted\n", args[0])
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an access token for the backoffice API",
	Long: `Store an access token for the backoffice API. The token is read from
--token or, when absent, from the first line of standard input. A JWT's exp
claim sets the session expiry; other tokens are kept for one hour.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && err != io.EOF {
				return fmt.Errorf("read token: %w", err)
			}
			token = line
		}
		token = strings.TrimSpace(token)
		if token == "" {
			return fmt.Errorf("no token given")
		}

		session := auth.NewSession(token, nil, time.Now())
		if err := env.store.Save(session); err != nil {
			return err
		}
		fmt.Fprintf(env.out, "Signed in until %s (session stored in %s)\n",
			session.ExpiresAt.Local().Format(time.DateTime), env.store.Path())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		if err := env.store.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(env.out, "Signed out")
		return nil
	},
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the backoffice settings of the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		settings, err := env.client.Settings(cmd.Context(), version)
		if err != nil {
			return err
		}
		if latest, ok := settings["lastversion"].(bool); ok && !latest {
			env.logger.Warnf("a newer version of dpesim is available")
		}

		updates, _ := cmd.Flags().GetStringToString("set")
		if len(updates) > 0 {
			for k, v := range updates {
				settings[k] = settingValue(v)
			}
			if err := env.client.SaveSettings(cmd.Context(), settings); err != nil {
				return err
			}
		}
		return writeData(env, settings, func(w io.Writer) {
			keys := make([]string, 0, len(settings))
			for k := range settings {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "%-24s %v\n", k, settings[k])
			}
		})
	},
}

// settingValue keeps JSON literals (numbers, booleans, objects) typed and
// everything else as a string.
func settingValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}

// writeData renders v as JSON or YAML when asked to, and with table
// otherwise.
func writeData(env *appEnv, v any, table func(w io.Writer)) error {
	switch strings.ToLower(env.format) {
	case "json":
		enc := json.NewEncoder(env.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(env.out)
		defer enc.Close()
		return enc.Encode(v)
	default:
		table(env.out)
		return nil
	}
}

func init() {
	projectsDeleteCmd.Flags().Bool("yes", false, "Confirm the deletion")
	projectsCmd.AddCommand(projectsListCmd, projectsNewCmd, projectsDeleteCmd)

	loginCmd.Flags().String("token", "", "Access token (read from stdin when empty)")
	settingsCmd.Flags().StringToString("set", nil, "Change settings (key=value, values parsed as JSON when possible)")
}
