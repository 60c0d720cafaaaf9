package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/dpesim/internal/api"
	"github.com/rgehrsitz/dpesim/internal/compare"
	"github.com/rgehrsitz/dpesim/internal/correlate"
	"github.com/rgehrsitz/dpesim/internal/domain"
	"github.com/rgehrsitz/dpesim/internal/edit"
	"github.com/rgehrsitz/dpesim/internal/output"
)

const applyHelp = `Edits are applied in order before counting or submitting, e.g.
  --apply toggle_level:entry=wall,group=wall_ite,level=2
  --apply set_levels:entry=floor_low,group=floor_low_isol,levels=0+1
  --apply add_entry:label=Combles
Run "dpesim count --list-edits" for every edit name.`

// applyEdits parses --apply flags and replays them on the project.
func applyEdits(cmd *cobra.Command, p *project) error {
	specs, _ := cmd.Flags().GetStringArray("apply")
	if len(specs) == 0 {
		return nil
	}
	edits, err := edit.NewRegistry().ParseAll(specs)
	if err != nil {
		return err
	}
	return p.b.ApplyEdits(edits)
}

func writeCards(env *appEnv, p *project) error {
	f, err := env.formatter()
	if err != nil {
		return err
	}
	var detail *domain.ScenarioDetail
	if d, ok := p.b.Detail(); ok {
		detail = &d
	}
	v := output.BuildCardsView(p.ref, p.b.State(), p.b.Limit(), detail)
	return output.Write(env.out, func() ([]byte, error) { return f.Cards(v) })
}

var showCmd = &cobra.Command{
	Use:   "show REF",
	Short: "Show the configuration of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		p, err := env.open(cmd.Context(), args[0], -1)
		if err != nil {
			return err
		}
		return writeCards(env, p)
	},
}

var countCmd = &cobra.Command{
	Use:   "count REF",
	Short: "Count the scenarios a configuration would generate",
	Long:  "Count the scenarios a configuration would generate.\n\n" + applyHelp,
	Args: func(cmd *cobra.Command, args []string) error {
		if list, _ := cmd.Flags().GetBool("list-edits"); list {
			return nil
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if list, _ := cmd.Flags().GetBool("list-edits"); list {
			for _, name := range edit.NewRegistry().List() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		}
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		p, err := env.open(cmd.Context(), args[0], -1)
		if err != nil {
			return err
		}
		if err := applyEdits(cmd, p); err != nil {
			return err
		}
		return writeCards(env, p)
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit REF",
	Short: "Submit a configuration for scenario generation",
	Long:  "Submit a configuration for scenario generation. Submissions above the\ncombination limit are refused.\n\n" + applyHelp,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		p, err := env.open(cmd.Context(), args[0], -1)
		if err != nil {
			return err
		}
		if err := applyEdits(cmd, p); err != nil {
			return err
		}
		if err := p.run(p.b.Submit()); err != nil {
			return err
		}
		for _, msg := range p.infos() {
			fmt.Fprintln(env.out, msg)
		}
		fmt.Fprintf(env.out, "%d scenario(s) generated\n", p.b.MaxOrdinal())
		return nil
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph REF",
	Short: "List the generated scenarios of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		f, err := env.formatter()
		if err != nil {
			return err
		}
		p, err := env.open(cmd.Context(), args[0], -1)
		if err != nil {
			return err
		}
		v := output.GraphView{Ref: p.ref, Points: p.b.Points()}
		return output.Write(env.out, func() ([]byte, error) { return f.Graph(v) })
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare REF",
	Short: "Compare the generated scenarios with the baseline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		sortStr, _ := cmd.Flags().GetString("sort")
		top, _ := cmd.Flags().GetInt("top")
		sortBy, err := compare.ParseSortBy(sortStr)
		if err != nil {
			return err
		}

		p, err := env.open(cmd.Context(), args[0], -1)
		if err != nil {
			return err
		}
		en := correlate.Enumerate(p.b.State().Entries(), p.b.State())
		cs, err := compare.Compare(p.ref, p.b.Points(), compare.Options{Enumeration: &en, SortBy: sortBy, Top: top})
		if err != nil {
			return err
		}
		if len(cs.Keys) == 0 {
			env.logger.Warnf("the configuration changed since the last submission; levels are not shown")
		}

		var text string
		switch strings.ToLower(env.format) {
		case "csv":
			text, err = (&compare.CSVFormatter{}).Format(cs)
		case "json":
			text, err = (&compare.JSONFormatter{Pretty: true}).Format(cs)
		case "compact":
			text = (&compare.TableFormatter{}).FormatCompact(cs) + "\n"
		default:
			text = (&compare.TableFormatter{}).Format(cs)
		}
		if err != nil {
			return err
		}
		_, err = io.WriteString(env.out, text)
		return err
	},
}

var selectCmd = &cobra.Command{
	Use:   "select REF ORDINAL",
	Short: "Show the configuration a generated scenario recorded",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		k, err := parseOrdinal(args[1])
		if err != nil {
			return err
		}
		p, err := env.open(cmd.Context(), args[0], k)
		if err != nil {
			return err
		}
		if err := writeCards(env, p); err != nil {
			return err
		}
		env.logger.Infof("share link: %s", p.b.ShareLink())
		return nil
	},
}

var stepCmd = &cobra.Command{
	Use:   "step REF ORDINAL ENTRY GROUP",
	Short: "Show the inputs a generated scenario recorded for one card",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		f, err := env.formatter()
		if err != nil {
			return err
		}
		k, err := parseOrdinal(args[1])
		if err != nil {
			return err
		}
		p, err := env.open(cmd.Context(), args[0], k)
		if err != nil {
			return err
		}
		info, err := p.b.StepInfo(keyArgs(args[2:]))
		if err != nil {
			return err
		}
		v := output.BuildStepView(k, info)
		return output.Write(env.out, func() ([]byte, error) { return f.Step(v) })
	},
}

var settingCmd = &cobra.Command{
	Use:   "setting",
	Short: "Read or change the rule behind a choice",
}

var settingGetCmd = &cobra.Command{
	Use:   "get REF ENTRY GROUP LEVEL",
	Short: "Show the rule behind a choice level",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		level, err := parseLevel(args[3])
		if err != nil {
			return err
		}
		p, err := env.open(cmd.Context(), args[0], -1)
		if err != nil {
			return err
		}
		if err := p.run(p.b.LoadChoiceSetting(keyArgs(args[1:3]), level)); err != nil {
			return err
		}
		loaded, ok := p.b.ChoiceSetting()
		if !ok {
			return fmt.Errorf("no setting loaded")
		}
		s := loaded.Setting
		return writeData(env, s, func(w io.Writer) {
			fmt.Fprintf(w, "Label: %s\n", s.Label)
			if s.HumanReadable != "" {
				fmt.Fprintf(w, "Rule:  %s\n", s.HumanReadable)
			}
			if len(s.JSONAction) > 0 {
				data, _ := json.MarshalIndent(s.JSONAction, "", "  ")
				fmt.Fprintf(w, "%s\n", data)
			}
		})
	},
}

var settingSetCmd = &cobra.Command{
	Use:   "set REF ENTRY GROUP LEVEL",
	Short: "Change the label, description or rule of a choice level",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		level, err := parseLevel(args[3])
		if err != nil {
			return err
		}
		label, _ := cmd.Flags().GetString("label")
		description, _ := cmd.Flags().GetString("description")
		ruleRaw, _ := cmd.Flags().GetString("rule")

		upd := api.ChoiceSettingUpdate{Label: label, Description: description}
		if ruleRaw != "" {
			if err := json.Unmarshal([]byte(ruleRaw), &upd.ModifierRule); err != nil {
				return fmt.Errorf("--rule must be a JSON object: %w", err)
			}
		}

		p, err := env.open(cmd.Context(), args[0], -1)
		if err != nil {
			return err
		}
		if err := p.run(p.b.SaveChoiceSetting(keyArgs(args[1:3]), level, upd)); err != nil {
			return err
		}
		fmt.Fprintln(env.out, "Configuration saved")
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{countCmd, submitCmd} {
		c.Flags().StringArray("apply", nil, "Edit to apply before counting (repeatable)")
	}
	countCmd.Flags().Bool("list-edits", false, "List the edit names accepted by --apply")

	compareCmd.Flags().String("sort", "ordinal", "Sort alternatives by ordinal, ep or ges")
	compareCmd.Flags().Int("top", 0, "Keep only the first n alternatives (0 keeps all)")

	settingSetCmd.Flags().String("label", "", "Choice label (default: the current label)")
	settingSetCmd.Flags().String("description", "", "Choice description")
	settingSetCmd.Flags().String("rule", "", "Modifier rule as a JSON object")
	settingCmd.AddCommand(settingGetCmd, settingSetCmd)
}
