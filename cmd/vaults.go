package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/notevault/internal/ui"
	"github.com/PolarWolf314/notevault/internal/workflows"
)

var newPasswordFile string

func init() {
	passwdCmd.Flags().StringVar(&newPasswordFile, "new-password-file", "", "read the new password from a file instead of prompting")
}

var initCmd = &cobra.Command{
	Use:   "init <vault>",
	Short: "Create a new, empty vault",
	Long: `Creates a new vault protected by a password you choose.

The vault is written to the vault directory as <vault>.secnote. An existing
vault with the same name is never replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting init command")
	env, err := openEnv()
	if err != nil {
		return err
	}

	password, err := passwords().ReadNew("New vault password: ", "Confirm password: ")
	if err != nil {
		return failNow(err)
	}
	defer password.Close()

	spinner, cleanup := startSpinner("Creating vault...")
	defer cleanup()

	result, err := workflows.Create(context.Background(), env, workflows.CreateOptions{
		Vault:    args[0],
		Password: password.String(),
	})
	if err != nil {
		return fail(spinner, err)
	}

	Logger.Infof("Vault written to %s", result.Path)
	spinner.FinalMSG = ui.Ok("Created vault "+ui.Vault.Sprint(result.Vault)) + "\n" +
		ui.Hint("Add a note with "+ui.Code.Sprint("notevault add "+result.Vault))
	return nil
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the vaults in the vault directory",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func runList(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	result, err := workflows.ListVaults(context.Background(), env)
	if err != nil {
		return err
	}

	if len(result.Vaults) == 0 {
		fmt.Printf("No vaults found in %s\n", ui.Path.Sprint(result.Dir))
		fmt.Println(ui.Hint("Create one with " + ui.Code.Sprint("notevault init <vault>")))
		return nil
	}

	fmt.Printf("Vaults in %s:\n", ui.Path.Sprint(result.Dir))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, v := range result.Vaults {
		fmt.Fprintf(w, "  %s\t%d bytes\t%s\n", v.Name, v.Size, v.ModTime.Local().Format(time.DateTime))
	}
	return w.Flush()
}

var infoCmd = &cobra.Command{
	Use:   "info <vault>",
	Short: "Show a vault's unencrypted header",
	Long: `Shows the format version, key derivation parameters and fingerprint of a
vault. No password is needed and nothing is decrypted.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	result, err := workflows.Info(context.Background(), env, workflows.InfoOptions{Vault: args[0]})
	if err != nil {
		return failNow(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Vault:\t%s\n", ui.Vault.Sprint(result.Name))
	fmt.Fprintf(w, "Path:\t%s\n", ui.Path.Sprint(result.Path))
	fmt.Fprintf(w, "Size:\t%d bytes\n", result.Size)
	fmt.Fprintf(w, "Modified:\t%s\n", result.ModTime.Local().Format(time.DateTime))
	fmt.Fprintf(w, "Format version:\t%d\n", result.Header.Version)
	fmt.Fprintf(w, "KDF iterations:\t%d\n", result.Header.Iterations)
	fmt.Fprintf(w, "Salt length:\t%d bytes\n", len(result.Header.Salt))
	fmt.Fprintf(w, "Fingerprint:\t%s\n", result.Fingerprint)
	if err := w.Flush(); err != nil {
		return err
	}

	if result.Legacy {
		Logger.WarnfUser("This vault uses the legacy format. It is upgraded the next time it changes.")
	} else if result.WeakKey {
		Logger.WarnfUser("This vault's key uses fewer iterations than configured. It is strengthened the next time it changes.")
	}
	return nil
}

var renameCmd = &cobra.Command{
	Use:   "rename <vault> <new-name>",
	Short: "Rename a vault",
	Long:  `Renames a vault after checking its password. An existing vault is never replaced.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runRename,
}

func runRename(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	password, err := passwords().Read(fmt.Sprintf("Password for %s: ", args[0]))
	if err != nil {
		return failNow(err)
	}
	defer password.Close()

	spinner, cleanup := startSpinner("Renaming vault...")
	defer cleanup()

	result, err := workflows.RenameVault(context.Background(), env, workflows.RenameOptions{
		Vault:    args[0],
		NewName:  args[1],
		Password: password.String(),
	})
	if err != nil {
		return fail(spinner, err)
	}
	spinner.FinalMSG = ui.Ok("Renamed " + ui.Vault.Sprint(result.OldName) + " to " + ui.Vault.Sprint(result.NewName))
	return nil
}

var deleteCmd = &cobra.Command{
	Use:   "delete <vault>",
	Short: "Delete a vault and every note in it",
	Long: `Deletes a vault after checking its password. This cannot be undone; export
the vault first if you may need its notes.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	password, err := passwords().Read(fmt.Sprintf("Password for %s: ", args[0]))
	if err != nil {
		return failNow(err)
	}
	defer password.Close()

	spinner, cleanup := startSpinner("Deleting vault...")
	defer cleanup()

	result, err := workflows.DeleteVault(context.Background(), env, workflows.DeleteOptions{
		Vault:    args[0],
		Password: password.String(),
	})
	if err != nil {
		return fail(spinner, err)
	}
	spinner.FinalMSG = ui.Ok("Deleted vault " + ui.Vault.Sprint(result.Vault))
	return nil
}

var passwdCmd = &cobra.Command{
	Use:   "passwd <vault>",
	Short: "Change a vault's password",
	Long: `Re-encrypts a vault under a new password. A fresh salt is drawn, so the
new key shares nothing with the old one.

With --password-file the current password is read from that file; the new one
is prompted for unless --new-password-file is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runPasswd,
}

func runPasswd(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	current, err := passwords().Read(fmt.Sprintf("Current password for %s: ", args[0]))
	if err != nil {
		return failNow(err)
	}
	defer current.Close()

	next, err := passwordReaderFor(newPasswordFile).ReadNew("New password: ", "Confirm new password: ")
	if err != nil {
		return failNow(err)
	}
	defer next.Close()

	spinner, cleanup := startSpinner("Re-encrypting vault...")
	defer cleanup()

	result, err := workflows.ChangePassword(context.Background(), env, workflows.ChangePasswordOptions{
		Vault:       args[0],
		OldPassword: current.String(),
		NewPassword: next.String(),
	})
	if err != nil {
		return fail(spinner, err)
	}
	spinner.FinalMSG = ui.Ok(fmt.Sprintf("Changed the password of %s (%d notes re-encrypted)",
		ui.Vault.Sprint(result.Vault), result.NotesCount))
	return nil
}
