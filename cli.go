package main

import (
	"os"
	"path/filepath"

	"github.com/integrii/flaggy"
)

var (
	flagNoColor bool
	flagCopy    bool
	flagFile    string

	argFilter     string
	argName       string
	argPatternKey string
	argPath       string
)

var (
	versionCmd = flaggy.NewSubcommand("version")
	lsCmd      = flaggy.NewSubcommand("ls")
	addCmd     = flaggy.NewSubcommand("add")
	rmCmd      = flaggy.NewSubcommand("rm")
	showCmd    = flaggy.NewSubcommand("show")
	allCmd     = flaggy.NewSubcommand("all")
	bumpCmd    = flaggy.NewSubcommand("bump")
	patternCmd = flaggy.NewSubcommand("pattern")
	exportCmd  = flaggy.NewSubcommand("export")
	importCmd  = flaggy.NewSubcommand("import")
)

func parseCli() {
	defaultFilePath := ".passmint"
	if env := os.Getenv("PASSMINT"); len(env) != 0 {
		defaultFilePath = env
	} else if homeDir, err := os.UserHomeDir(); err == nil && len(homeDir) != 0 {
		defaultFilePath = filepath.Join(homeDir, defaultFilePath)
	}
	flagFile = defaultFilePath

	parser := flaggy.NewParser("passmint")
	parser.Description = "deterministic password generator"
	parser.Bool(&flagNoColor, "", "no-color", "Turn off color output")
	parser.Bool(&flagCopy, "c", "copy", "Copy passwords to the clipboard instead of printing them")
	parser.String(&flagFile, "f", "file", "The encrypted config file to open (can be set by $PASSMINT)")

	versionCmd.Description = "print version and exit"

	lsCmd.Description = "list services"
	lsCmd.AddPositionalValue(&argFilter, "filter", 1, false, "fuzzy filter on service names")

	addCmd.Description = "add a service and print its password"
	addCmd.AddPositionalValue(&argName, "name", 1, true, "service name, e.g. example.com")

	rmCmd.Description = "remove a service"
	rmCmd.AddPositionalValue(&argName, "name", 1, true, "service name")

	showCmd.Description = "print (or copy) the password for a service"
	showCmd.AddPositionalValue(&argName, "name", 1, true, "service name")

	allCmd.Description = "derive and print every password"

	bumpCmd.Description = "increment a service's iterations to rotate its password"
	bumpCmd.AddPositionalValue(&argName, "name", 1, true, "service name")

	patternCmd.Description = "set the password pattern for a service"
	patternCmd.AddPositionalValue(&argName, "name", 1, true, "service name")
	patternCmd.AddPositionalValue(&argPatternKey, "pattern", 2, true, "pattern key, e.g. c16, c12, c8, y16, n6, n5, n4")

	exportCmd.Description = "write the encrypted config blob to a file or stdout"
	exportCmd.AddPositionalValue(&argPath, "path", 1, false, "output file; stdout when omitted")

	importCmd.Description = "replace the service list from an encrypted config blob"
	importCmd.AddPositionalValue(&argPath, "path", 1, true, "blob file to import")

	subcommands := []*flaggy.Subcommand{
		versionCmd, lsCmd, addCmd, rmCmd, showCmd, allCmd,
		bumpCmd, patternCmd, exportCmd, importCmd,
	}
	for _, cmd := range subcommands {
		parser.AttachSubcommand(cmd, 1)
	}

	parser.AdditionalHelpAppend = "passmint respects $PASSMINT and $PINENTRY env vars\n$PINENTRY can be set to none to prevent it from using pinentry"

	parser.Parse()
}
