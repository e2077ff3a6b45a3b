// Command plume-log is a tool for viewing and analyzing Plume protocol
// log files.
//
// Log files are created with the -plog flag of plume-cli, or by any
// program that configures a log.FileLogger on its connection.
//
// Usage:
//
//	plume-log <command> [flags] <file.plog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSON lines
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	plume-log view session.plog
//
//	# View only inbound messages
//	plume-log view -direction in session.plog
//
//	# Export to JSONL
//	plume-log export session.plog > session.jsonl
//
//	# Keep only one connection's events
//	plume-log filter -conn-id abc12345 -o filtered.plog session.plog
//
//	# Show statistics
//	plume-log stats session.plog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/plume-protocol/plume-go/cmd/plume-log/commands"
	"github.com/plume-protocol/plume-go/pkg/log"
)

const usage = `plume-log - Plume Protocol Log Analyzer

Usage:
  plume-log <command> [flags] <file.plog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSON lines
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "plume-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// filterFlags registers the shared filter flags on fs and returns a
// builder that assembles the log.Filter after parsing.
func filterFlags(fs *flag.FlagSet) func() log.Filter {
	layer := fs.String("layer", "", "Filter by layer (transport, protocol, client)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (message, control, state, error)")
	connID := fs.String("conn-id", "", "Filter by connection ID")

	return func() log.Filter {
		var filter log.Filter

		if *layer != "" {
			l, err := commands.ParseLayerFlag(*layer)
			if err != nil {
				fatal(err)
			}
			filter.Layer = &l
		}
		if *direction != "" {
			d, err := commands.ParseDirectionFlag(*direction)
			if err != nil {
				fatal(err)
			}
			filter.Direction = &d
		}
		if *category != "" {
			c, err := commands.ParseCategoryFlag(*category)
			if err != nil {
				fatal(err)
			}
			filter.Category = &c
		}
		filter.ConnectionID = *connID

		return filter
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	buildFilter := filterFlags(fs)
	fs.Parse(args)

	path := requirePath(fs)
	if err := commands.RunView(path, buildFilter(), os.Stdout); err != nil {
		fatal(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	buildFilter := filterFlags(fs)
	output := fs.String("o", "", "Output file (default: stdout)")
	fs.Parse(args)

	path := requirePath(fs)

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fatal(err)
		}
		defer f.Close()
		out = f
	}

	if err := commands.RunExport(path, buildFilter(), out); err != nil {
		fatal(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	buildFilter := filterFlags(fs)
	output := fs.String("o", "", "Output file (required)")
	fs.Parse(args)

	path := requirePath(fs)
	if *output == "" {
		fatal(fmt.Errorf("output file required (-o)"))
	}

	count, err := commands.RunFilter(path, *output, buildFilter())
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Wrote %d events to %s\n", count, *output)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Parse(args)

	path := requirePath(fs)
	if err := commands.RunStats(path, os.Stdout); err != nil {
		fatal(err)
	}
}

func requirePath(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
