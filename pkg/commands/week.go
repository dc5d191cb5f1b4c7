package commands

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/lifedots/pkg/commands/options"
	"tableflip.dev/lifedots/pkg/runner/weeks"
	"tableflip.dev/lifedots/pkg/week"
)

func (e *env) target(cmd *cobra.Command) weeks.Target {
	return weeks.Target{
		API:       e.api,
		Location:  e.location(),
		WeekStart: e.cfg.WeekStart,
		Out:       cmd.OutOrStdout(),
		JSON:      oo.JSON,
	}
}

func addWeek(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "week <number>",
		Short: "Show one week: its dates, your age, the journal entry and reminders.",
		Example: `
lifedots week 1358
lifedots week 1358 --json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			n, err := options.WeekNumber(args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			e, err := loadEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			s := weeks.Show{Target: e.target(cmd), Number: n}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addJournal(topLevel *cobra.Command) {
	topLevel.AddCommand(writeCommand(week.Journal, "journal", "Write the journal entry of a week, replacing what was there.", `
lifedots journal 1358 moved into the new flat
echo "long entry" | lifedots journal 1358 -
`))
}

func addRemind(topLevel *cobra.Command) {
	topLevel.AddCommand(writeCommand(week.Reminders, "remind", "Set the reminders of a week, replacing what was there.", `
lifedots remind 1400 call grandma
`))
}

func writeCommand(f week.Field, use, short, example string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     use + " <number> <text...>",
		Short:   short,
		Example: example,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			n, err := options.WeekNumber(args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			text, err := options.Text(args[1:], func() (string, error) {
				b, err := io.ReadAll(cmd.InOrStdin())
				return string(b), err
			})
			if err != nil {
				return oo.HandleError(err)
			}
			e, err := loadEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			w := weeks.Write{Target: e.target(cmd), Number: n, Field: f, Text: text}
			return oo.HandleError(w.Do(cmd.Context()))
		},
	}

	base.AddOutputArg(cmd, oo)
	return cmd
}

func addWeeks(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "weeks",
		Short: "List every week that has a journal entry or reminders.",
		Example: `
lifedots weeks
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			l := weeks.List{Target: e.target(cmd)}
			return oo.HandleError(l.Do(cmd.Context()))
		},
	}

	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addBirthdate(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "birthdate [YYYY-MM-DD]",
		Short: "Set your birth date. The grid is drawn from it.",
		Long: base.Wrap80("Set your birth date. The grid is drawn from it. " +
			"Without an argument the date is asked for on the terminal."),
		Example: `
lifedots birthdate 1998-10-02
lifedots birthdate
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			var birth string
			switch {
			case len(args) == 1:
				birth = args[0]
			case isatty.IsTerminal(os.Stdin.Fd()):
				var err error
				if birth, err = options.PromptBirthDate(time.Now()); err != nil {
					return err
				}
			default:
				return oo.HandleError(week.NewValidationError("birthdate", "a birth date is required"))
			}

			e, err := loadEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			p := weeks.Profile{Target: e.target(cmd), BirthDate: birth}
			return oo.HandleError(p.Do(cmd.Context()))
		},
	}

	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addUser(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Show your profile: birth date, age and where you are in the grid.",
		Example: `
lifedots user
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			p := weeks.Profile{Target: e.target(cmd)}
			return oo.HandleError(p.Do(cmd.Context()))
		},
	}

	base.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
