package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
)

var (
	oo = &base.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "lifedots",
		Short: base.Wrap80("Your life in weeks: ninety years of dots, one per week, with a journal entry and reminders for each."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addGrid(topLevel)
	addWeek(topLevel)
	addJournal(topLevel)
	addRemind(topLevel)
	addWeeks(topLevel)
	addBirthdate(topLevel)
	addUser(topLevel)
	addExport(topLevel)
	addServe(topLevel)
	addMCP(topLevel)
	addToken(topLevel)
	addInfo(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
	addUpgrade(topLevel)
}
