package cli

import (
	"flag"
	"os"
	"strings"

	"github.com/eshaffer321/statement-reconciler/internal/domain/report"
)

// ReconcileFlags are the flags of the reconcile command
type ReconcileFlags struct {
	ExternalPath string
	InternalPath string
	StatementID  string
	Bank         string
	Currency     string
	ConfigPath   string
	OutPath      string
	Duplicates   bool
	Save         bool
	Verbose      bool
}

// ParseReconcileFlags parses reconcile flags from the command line
func ParseReconcileFlags() ReconcileFlags {
	flags, _ := parseReconcileFlags(flag.CommandLine, os.Args[1:])
	return flags
}

func parseReconcileFlags(fs *flag.FlagSet, args []string) (ReconcileFlags, error) {
	var flags ReconcileFlags
	fs.StringVar(&flags.ExternalPath, "external", "", "JSON file of parsed statement lines (required)")
	fs.StringVar(&flags.InternalPath, "internal", "", "JSON file of stored transactions (required)")
	fs.StringVar(&flags.StatementID, "statement", "", "Statement identifier (defaults to the external file name)")
	fs.StringVar(&flags.Bank, "bank", "", "Issuing bank")
	fs.StringVar(&flags.Currency, "currency", "", "Run currency (overrides config)")
	fs.StringVar(&flags.ConfigPath, "config", "config.yaml", "Path to config file")
	fs.StringVar(&flags.OutPath, "out", "", "Write the full report as JSON to this file")
	fs.BoolVar(&flags.Duplicates, "duplicates", false, "Also scan the internal transactions for duplicates")
	fs.BoolVar(&flags.Save, "save", false, "Persist the report to the database")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	err := fs.Parse(args)
	return flags, err
}

// Metadata builds the run metadata from the flags.
func (f ReconcileFlags) Metadata() report.Metadata {
	return report.Metadata{
		StatementID: f.StatementID,
		Bank:        f.Bank,
		Currency:    strings.ToUpper(strings.TrimSpace(f.Currency)),
	}
}

// Missing returns the names of required flags that were not set.
func (f ReconcileFlags) Missing() []string {
	var missing []string
	if f.ExternalPath == "" {
		missing = append(missing, "-external")
	}
	if f.InternalPath == "" {
		missing = append(missing, "-internal")
	}
	return missing
}

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	Port       int
	ConfigPath string
	Verbose    bool
}

// ParseServeFlags parses command line flags for the serve command.
func ParseServeFlags() *ServeFlags {
	flags := &ServeFlags{}
	flag.IntVar(&flags.Port, "port", 0, "Port to listen on (overrides config)")
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "Path to config file")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}
