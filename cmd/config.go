package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/PolarWolf314/notevault/internal/configs"
	"github.com/PolarWolf314/notevault/internal/ui"
	"github.com/PolarWolf314/notevault/internal/utils"
)

var configForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage NoteVault configuration",
	Long: `Shows or initializes the configuration file.

The file lives at $XDG_CONFIG_HOME/notevault/config.toml and may set:
  vault_dir        where vaults are kept ($` + configs.EnvVaultDir + ` and --dir override it)
  kdf_iterations   PBKDF2 iterations for new keys
  salt_length      salt size in bytes for new vaults
  password_length  default length for notevault generate
  audit            whether to keep audit.jsonl in the vault directory`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, cfg, err := loadConfig()
		if err != nil {
			return failNow(err)
		}
		dir, err := utils.ExpandHome(cfg.ResolveVaultDir(vaultDir, settings))
		if err != nil {
			return err
		}

		source := "defaults, no config file"
		if _, err := os.Stat(settings.ConfigPath); err == nil {
			source = settings.ConfigPath
		}
		fmt.Printf("# %s\n", ui.Muted.Sprint(source))

		effective := *cfg
		effective.VaultDir = dir
		return toml.NewEncoder(os.Stdout).Encode(effective)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := configs.DefaultSettings()
		if err != nil {
			return err
		}
		path := settings.ConfigPath

		_, err = os.Stat(path)
		switch {
		case err == nil && !configForce:
			return failNow(fmt.Errorf("%s already exists (use --force to overwrite)", path))
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return failNow(err)
		}

		if err := configs.Save(path, configs.Default()); err != nil {
			return failNow(err)
		}
		fmt.Println(ui.Ok("Wrote " + ui.Path.Sprint(path)))
		return nil
	},
}
