package cmd

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"github.com/PolarWolf314/notevault/internal/configs"
	logger "github.com/PolarWolf314/notevault/internal/logging"
	"github.com/PolarWolf314/notevault/internal/ui"
	"github.com/PolarWolf314/notevault/internal/utils"
	"github.com/PolarWolf314/notevault/internal/workflows"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

var (
	verbose      bool
	debug        bool
	vaultDir     string
	passwordFile string
	Logger       logger.Logger

	RootCmd = &cobra.Command{
		Use:   "notevault",
		Short: "NoteVault - password-protected notes in encrypted files.",
		Long: `NoteVault keeps titled notes in password-protected, encrypted vault files.

Each vault is a single .secnote file in the vault directory. Notes are only
ever decrypted in memory; nothing is written to disk in plain text unless you
explicitly export it.

Examples:
  notevault init personal
  notevault add personal -t Groceries -m "eggs, milk"
  notevault notes personal
  notevault show personal 0`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s with verbose=%t, debug=%t", cmd.CommandPath(), verbose, debug)
		},
		Run: func(cmd *cobra.Command, args []string) {
			banner := figure.NewColorFigure("NoteVault", "small", "cyan", true)
			banner.Print()
			fmt.Println()
			fmt.Println(ui.Hint("Run " + ui.Code.Sprint("notevault --help") + " to see available commands."))
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	RootCmd.PersistentFlags().StringVar(&vaultDir, "dir", "", "vault directory (overrides $"+configs.EnvVaultDir+" and vault_dir)")
	RootCmd.PersistentFlags().StringVar(&passwordFile, "password-file", "", "read the password from the first line of a file, or - for stdin")

	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(infoCmd)
	RootCmd.AddCommand(notesCmd)
	RootCmd.AddCommand(showCmd)
	RootCmd.AddCommand(addCmd)
	RootCmd.AddCommand(editCmd)
	RootCmd.AddCommand(rmCmd)
	RootCmd.AddCommand(sortCmd)
	RootCmd.AddCommand(passwdCmd)
	RootCmd.AddCommand(renameCmd)
	RootCmd.AddCommand(deleteCmd)
	RootCmd.AddCommand(exportCmd)
	RootCmd.AddCommand(importCmd)
	RootCmd.AddCommand(generateCmd)
	RootCmd.AddCommand(watchCmd)
	RootCmd.AddCommand(logCmd)
	RootCmd.AddCommand(configCmd)
	RootCmd.AddCommand(versionCmd)
}

// loadConfig reads the user's settings and config file.
func loadConfig() (*configs.Settings, *configs.Config, error) {
	settings, err := configs.DefaultSettings()
	if err != nil {
		return nil, nil, err
	}
	Logger.Debugf("Loading config from %s", settings.ConfigPath)
	cfg, err := configs.Load(settings.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	return settings, cfg, nil
}

// openEnv builds the workflow environment for the resolved vault directory.
func openEnv() (*workflows.Env, error) {
	settings, cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	dir, err := utils.ExpandHome(cfg.ResolveVaultDir(vaultDir, settings))
	if err != nil {
		return nil, err
	}
	Logger.Debugf("Using vault directory %s (kdf_iterations=%d, audit=%t)", dir, cfg.KDFIterations, cfg.Audit)
	return workflows.NewEnv(cfg, dir), nil
}

// passwords returns the reader for the vault password of this invocation.
func passwords() utils.PasswordReader {
	return passwordReaderFor(passwordFile)
}

func passwordReaderFor(file string) utils.PasswordReader {
	if expanded, err := utils.ExpandHome(file); err == nil {
		file = expanded
	}
	return utils.PasswordReader{File: file}
}
