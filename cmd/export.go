package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/notevault/internal/secret"
	"github.com/PolarWolf314/notevault/internal/ui"
	"github.com/PolarWolf314/notevault/internal/utils"
	"github.com/PolarWolf314/notevault/internal/workflows"
)

var (
	exportFormat  string
	exportOutput  string
	importVault   string
	importReplace bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", workflows.FormatYAML, "output format: yaml or json")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to this file (mode 0600) instead of stdout")

	importCmd.Flags().StringVar(&importVault, "vault", "", "vault to import into (default: a new vault named after the file)")
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "drop the vault's existing notes first")
}

var exportCmd = &cobra.Command{
	Use:   "export <vault>",
	Short: "Write a vault's notes out in plain text",
	Long: `Decrypts a vault and writes its notes as a YAML or JSON document.

The document is NOT encrypted. Keep it somewhere safe and delete it when you
no longer need it.

Examples:
  notevault export personal -o personal.yaml
  notevault export personal --format json | jq '.notes[].title'`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	output := exportOutput
	if output != "" {
		if output, err = utils.ExpandHome(output); err != nil {
			return failNow(err)
		}
	}
	password, err := passwords().Read(fmt.Sprintf("Password for %s: ", args[0]))
	if err != nil {
		return failNow(err)
	}
	defer password.Close()

	spinner, cleanup := startSpinner("Exporting notes...")
	result, err := workflows.Export(context.Background(), env, workflows.ExportOptions{
		Vault:      args[0],
		Password:   password.String(),
		Format:     exportFormat,
		OutputPath: output,
	})
	if err != nil {
		err = fail(spinner, err)
		cleanup()
		return err
	}

	if result.OutputPath == "" {
		cleanup()
		_, err := os.Stdout.Write(result.Data)
		return err
	}
	spinner.FinalMSG = ui.Ok(fmt.Sprintf("Exported %d notes from %s to %s", result.NotesCount,
		ui.Vault.Sprint(result.Vault), ui.Path.Sprint(result.OutputPath)))
	cleanup()
	Logger.WarnfUser("The export is not encrypted. Delete it once you no longer need it.")
	return nil
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import notes from an export document",
	Long: `Reads a YAML or JSON export document from a file, or from stdin when no file
or - is given, and adds its notes to a vault.

Without --vault a new vault is created, named after the file. An existing vault
keeps its notes unless --replace is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}

	source := "-"
	if len(args) == 1 {
		source = args[0]
	}
	data, err := utils.ReadInput(source)
	if err != nil {
		return failNow(err)
	}

	name := importVault
	if name == "" {
		if name, err = newVaultName(env, source); err != nil {
			return failNow(err)
		}
	}
	exists, err := env.Store.Exists(name)
	if err != nil {
		return failNow(err)
	}

	reader := passwords()
	var password *secret.Buffer
	if exists {
		password, err = reader.Read(fmt.Sprintf("Password for %s: ", name))
	} else {
		password, err = reader.ReadNew(fmt.Sprintf("Password for new vault %s: ", name), "Confirm password: ")
	}
	if err != nil {
		return failNow(err)
	}
	defer password.Close()

	mode := workflows.ImportAppend
	if importReplace {
		mode = workflows.ImportReplace
	}

	spinner, cleanup := startSpinner("Importing notes...")
	defer cleanup()

	result, err := workflows.Import(context.Background(), env, workflows.ImportOptions{
		Vault:    name,
		Password: password.String(),
		Data:     data,
		Mode:     mode,
	})
	if err != nil {
		return fail(spinner, err)
	}

	verb := "Imported"
	if result.Created {
		verb = "Created " + ui.Vault.Sprint(result.Vault) + " and imported"
	}
	spinner.FinalMSG = ui.Ok(fmt.Sprintf("%s %d notes (%s now has %d)", verb, result.Imported,
		ui.Vault.Sprint(result.Vault), result.NotesCount))
	return nil
}

// newVaultName derives an unused vault name from an import source.
func newVaultName(env *workflows.Env, source string) (string, error) {
	base := "imported"
	if source != "-" {
		base = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	entries, err := env.Store.List()
	if err != nil {
		return "", err
	}
	existing := make([]string, 0, len(entries))
	for _, e := range entries {
		existing = append(existing, e.Name)
	}
	return utils.UniqueName(utils.SanitizeName(base), existing), nil
}
