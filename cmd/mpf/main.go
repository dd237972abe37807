// Command mpf imports bank exports and runs the ledger detectors from the
// command line.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

var renderStyle = flag.String("style", "auto", "glamour style used to render reports (auto, dark, light, notty)")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&importCSVCmd{}, "import")
	commander.Register(&importPDFCmd{}, "import")

	commander.Register(&detectTransfersCmd{}, "detection")
	commander.Register(&detectRecurringCmd{}, "detection")
	commander.Register(&applyRulesCmd{}, "detection")

	commander.Register(&recurringSummaryCmd{}, "reports")

	commander.Register(&migrateCmd{}, "maintenance")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
