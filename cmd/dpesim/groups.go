package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Add, rename and describe simulation groups",
	Long: `Add, rename and describe simulation groups. Removing a group or changing
its levels is a local edit: use "count" or "submit" with --apply.`,
}

var groupAddCmd = &cobra.Command{
	Use:   "add REF ENTRY",
	Short: "Add a simulation group to an entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		p, err := env.open(cmd.Context(), args[0], -1)
		if err != nil {
			return err
		}
		if err := p.run(p.b.AddGroup(args[1])); err != nil {
			return err
		}
		entry, _ := p.b.State().Entry(args[1])
		fmt.Fprintf(env.out, "Entry %s now has %d group(s)\n", args[1], len(entry.Groups))
		return nil
	},
}

var groupRenameCmd = &cobra.Command{
	Use:   "rename REF ENTRY GROUP LABEL...",
	Short: "Rename a simulation group",
	Args:  cobra.MinimumNArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		p, err := env.open(cmd.Context(), args[0], -1)
		if err != nil {
			return err
		}
		key := keyArgs(args[1:3])
		if err := p.run(p.b.RenameGroup(key, strings.Join(args[3:], " "))); err != nil {
			return err
		}
		g, _ := p.b.State().Group(key)
		fmt.Fprintf(env.out, "Group %s renamed to %q\n", key, g.Label)
		return nil
	},
}

var groupDescribeCmd = &cobra.Command{
	Use:   "describe REF ENTRY GROUP [TEXT...]",
	Short: "Set or clear the description of a simulation group",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		p, err := env.open(cmd.Context(), args[0], -1)
		if err != nil {
			return err
		}
		key := keyArgs(args[1:3])
		if err := p.run(p.b.DescribeGroup(key, strings.Join(args[3:], " "))); err != nil {
			return err
		}
		fmt.Fprintf(env.out, "Description of %s updated\n", key)
		return nil
	},
}

var groupSettingCmd = &cobra.Command{
	Use:   "setting ENTRY GROUP",
	Short: "Show or change the label, path and rule of a whole group",
	Long: `Show the setting of a simulation group. With --label, --path or --rule the
given fields replace the current ones and the setting is saved.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		key := keyArgs(args)
		current, err := env.client.GroupSetting(cmd.Context(), key)
		if err != nil {
			return fmt.Errorf("load setting of %s: %w", key, err)
		}

		changed := false
		if cmd.Flags().Changed("label") {
			current.Label, _ = cmd.Flags().GetString("label")
			changed = true
		}
		if cmd.Flags().Changed("path") {
			current.Path, _ = cmd.Flags().GetString("path")
			changed = true
		}
		if cmd.Flags().Changed("rule") {
			raw, _ := cmd.Flags().GetString("rule")
			current.JSONAction = nil
			if err := json.Unmarshal([]byte(raw), &current.JSONAction); err != nil {
				return fmt.Errorf("--rule must be a JSON object: %w", err)
			}
			changed = true
		}
		if changed {
			if err := env.client.SaveGroupSetting(cmd.Context(), key, current); err != nil {
				return fmt.Errorf("save setting of %s: %w", key, err)
			}
			env.logger.Infof("group setting %s saved", key)
		}

		return writeData(env, current, func(w io.Writer) {
			fmt.Fprintf(w, "Label: %s\n", current.Label)
			fmt.Fprintf(w, "Path:  %s\n", current.Path)
			if len(current.JSONAction) > 0 {
				data, _ := json.MarshalIndent(current.JSONAction, "", "  ")
				fmt.Fprintf(w, "%s\n", data)
			}
		})
	},
}

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Change building elements",
}

var entryPathCmd = &cobra.Command{
	Use:   "path REF ENTRY PATH",
	Short: "Set the element path of an entry",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		p, err := env.open(cmd.Context(), args[0], -1)
		if err != nil {
			return err
		}
		if err := p.run(p.b.SaveEntryPath(args[1], args[2])); err != nil {
			return err
		}
		fmt.Fprintf(env.out, "Path of %s set to %s\n", args[1], args[2])
		return nil
	},
}

var scopeCmd = &cobra.Command{
	Use:   "scope",
	Short: "Manage the scope of simulation groups",
}

var scopeAttachCmd = &cobra.Command{
	Use:   "attach REF ENTRY GROUP",
	Short: "Attach the default scope to a simulation group",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		p, err := env.open(cmd.Context(), args[0], -1)
		if err != nil {
			return err
		}
		key := keyArgs(args[1:3])
		if err := p.run(p.b.AttachScope(key)); err != nil {
			return err
		}
		g, _ := p.b.State().Group(key)
		fmt.Fprintf(env.out, "Group %s has %d scope item(s)\n", key, len(g.Scope))
		return nil
	},
}

func init() {
	groupSettingCmd.Flags().String("label", "", "New group label")
	groupSettingCmd.Flags().String("path", "", "New group path")
	groupSettingCmd.Flags().String("rule", "", "New rule as a JSON object")
	groupCmd.AddCommand(groupAddCmd, groupRenameCmd, groupDescribeCmd, groupSettingCmd)
	entryCmd.AddCommand(entryPathCmd)
	scopeCmd.AddCommand(scopeAttachCmd)
}
