package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/notevault/internal/ui"
	"github.com/PolarWolf314/notevault/internal/utils"
	"github.com/PolarWolf314/notevault/internal/workflows"
)

const previewWidth = 48

var (
	noteTitle    string
	noteMessage  string
	notePosition int
	notesFull    bool
	showPosition int
)

func init() {
	notesCmd.Flags().BoolVar(&notesFull, "full", false, "print every message in full")

	showCmd.Flags().IntVarP(&showPosition, "position", "p", 0, "show the note at this position instead of by id")

	addCmd.Flags().StringVarP(&noteTitle, "title", "t", "", "note title")
	addCmd.Flags().StringVarP(&noteMessage, "message", "m", "", "note message, or - to read it from stdin")
	addCmd.Flags().IntVarP(&notePosition, "position", "p", -1, "insert at this position instead of appending")

	editCmd.Flags().StringVarP(&noteTitle, "title", "t", "", "new title")
	editCmd.Flags().StringVarP(&noteMessage, "message", "m", "", "new message, or - to read it from stdin")
}

// messageArg resolves a --message value, reading stdin for "-".
func messageArg(value string) (string, error) {
	if value != "-" {
		return value, nil
	}
	data, err := utils.ReadInput("-")
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// upgradeNotice tells the user about a key that is re-derived on the next save.
func upgradeNotice(upgraded bool) {
	if upgraded {
		Logger.WarnfUser("This vault's key does not use the configured iteration count. It is re-derived the next time the vault changes.")
	}
}

var notesCmd = &cobra.Command{
	Use:   "notes <vault>",
	Short: "List the notes in a vault",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotes,
}

func runNotes(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	password, err := passwords().Read(fmt.Sprintf("Password for %s: ", args[0]))
	if err != nil {
		return failNow(err)
	}
	defer password.Close()

	spinner, cleanup := startSpinner("Decrypting vault...")
	result, err := workflows.ListNotes(context.Background(), env, workflows.ListNotesOptions{
		Vault:    args[0],
		Password: password.String(),
	})
	if err != nil {
		err = fail(spinner, err)
		cleanup()
		return err
	}
	cleanup()

	if len(result.Notes) == 0 {
		fmt.Printf("%s has no notes\n", ui.Vault.Sprint(result.Vault))
		fmt.Println(ui.Hint("Add one with " + ui.Code.Sprint("notevault add "+result.Vault+" -t <title>")))
		upgradeNotice(result.Upgraded)
		return nil
	}

	if notesFull {
		for i, note := range result.Notes {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("%s %s\n%s\n", ui.Title.Sprint(note.Title), ui.Muted.Sprintf("#%d", note.ID), note.Message)
		}
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, note := range result.Notes {
			fmt.Fprintf(w, "%d\t%s\t%s\n", note.ID, note.Title, ui.Preview(note.Message, previewWidth))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	upgradeNotice(result.Upgraded)
	return nil
}

var showCmd = &cobra.Command{
	Use:   "show <vault> [id]",
	Short: "Print one note",
	Long: `Prints one note, selected by id or with --position by its place in the
vault (0 is the top).`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	opts := workflows.ShowOptions{Vault: args[0]}
	switch byPosition := cmd.Flags().Changed("position"); {
	case byPosition && len(args) == 2:
		return failNow(fmt.Errorf("give either a note id or --position, not both"))
	case byPosition:
		opts.Position = &showPosition
	case len(args) == 2:
		if opts.ID, err = parseID(args[1]); err != nil {
			return failNow(err)
		}
	default:
		return failNow(fmt.Errorf("a note id or --position is required"))
	}
	password, err := passwords().Read(fmt.Sprintf("Password for %s: ", args[0]))
	if err != nil {
		return failNow(err)
	}
	defer password.Close()

	spinner, cleanup := startSpinner("Decrypting vault...")
	opts.Password = password.String()
	result, err := workflows.Show(context.Background(), env, opts)
	if err != nil {
		err = fail(spinner, err)
		cleanup()
		return err
	}
	cleanup()

	fmt.Printf("%s %s\n", ui.Title.Sprint(result.Note.Title),
		ui.Muted.Sprintf("#%d, position %d of %d", result.Note.ID, result.Position, result.NotesCount))
	fmt.Println(result.Note.Message)
	upgradeNotice(result.Upgraded)
	return nil
}

var addCmd = &cobra.Command{
	Use:   "add <vault>",
	Short: "Add a note to a vault",
	Long: `Adds a note to a vault. The note is appended unless --position is given,
in which case it is inserted at that index (0 is the top).

Examples:
  notevault add personal -t Groceries -m "eggs, milk"
  pbpaste | notevault add personal -t "Recovery codes" -m -`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	message, err := messageArg(noteMessage)
	if err != nil {
		return failNow(err)
	}
	password, err := passwords().Read(fmt.Sprintf("Password for %s: ", args[0]))
	if err != nil {
		return failNow(err)
	}
	defer password.Close()

	opts := workflows.AddOptions{
		Vault:    args[0],
		Password: password.String(),
		Title:    noteTitle,
		Message:  message,
	}
	if cmd.Flags().Changed("position") {
		opts.Position = &notePosition
	}

	spinner, cleanup := startSpinner("Adding note...")
	defer cleanup()

	result, err := workflows.Add(context.Background(), env, opts)
	if err != nil {
		return fail(spinner, err)
	}
	spinner.FinalMSG = ui.Ok(fmt.Sprintf("Added %s %s to %s", ui.Title.Sprint(noteTitle),
		ui.Muted.Sprintf("#%d", result.ID), ui.Vault.Sprint(result.Vault)))
	return nil
}

var editCmd = &cobra.Command{
	Use:   "edit <vault> <id>",
	Short: "Change a note's title or message",
	Args:  cobra.ExactArgs(2),
	RunE:  runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	id, err := parseID(args[1])
	if err != nil {
		return failNow(err)
	}

	opts := workflows.EditOptions{Vault: args[0], ID: id}
	if cmd.Flags().Changed("title") {
		opts.Title = &noteTitle
	}
	if cmd.Flags().Changed("message") {
		message, err := messageArg(noteMessage)
		if err != nil {
			return failNow(err)
		}
		opts.Message = &message
	}
	if opts.Title == nil && opts.Message == nil {
		return failNow(fmt.Errorf("nothing to change: pass --title and/or --message"))
	}

	password, err := passwords().Read(fmt.Sprintf("Password for %s: ", args[0]))
	if err != nil {
		return failNow(err)
	}
	defer password.Close()
	opts.Password = password.String()

	spinner, cleanup := startSpinner("Saving note...")
	defer cleanup()

	result, err := workflows.Edit(context.Background(), env, opts)
	if err != nil {
		return fail(spinner, err)
	}
	spinner.FinalMSG = ui.Ok(fmt.Sprintf("Updated %s %s", ui.Title.Sprint(result.Note.Title), ui.Muted.Sprintf("#%d", result.Note.ID)))
	return nil
}

var rmCmd = &cobra.Command{
	Use:   "rm <vault> <id>...",
	Short: "Remove notes from a vault",
	Long:  `Removes one or more notes. If any id does not exist, nothing is removed.`,
	Args:  cobra.MinimumNArgs(2),
	RunE:  runRm,
}

func runRm(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(args)-1)
	for _, arg := range args[1:] {
		id, err := parseID(arg)
		if err != nil {
			return failNow(err)
		}
		ids = append(ids, id)
	}
	password, err := passwords().Read(fmt.Sprintf("Password for %s: ", args[0]))
	if err != nil {
		return failNow(err)
	}
	defer password.Close()

	spinner, cleanup := startSpinner("Removing notes...")
	defer cleanup()

	result, err := workflows.Remove(context.Background(), env, workflows.RemoveOptions{
		Vault:    args[0],
		Password: password.String(),
		IDs:      ids,
	})
	if err != nil {
		return fail(spinner, err)
	}

	var b strings.Builder
	for _, note := range result.Removed {
		b.WriteString(ui.Ok("Removed "+ui.Title.Sprint(note.Title)+" "+ui.Muted.Sprintf("#%d", note.ID)) + "\n")
	}
	b.WriteString(fmt.Sprintf("%s now has %d notes", ui.Vault.Sprint(result.Vault), result.NotesCount))
	spinner.FinalMSG = b.String()
	return nil
}

var sortCmd = &cobra.Command{
	Use:   "sort <vault>",
	Short: "Sort a vault's notes by title",
	Args:  cobra.ExactArgs(1),
	RunE:  runSort,
}

func runSort(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	password, err := passwords().Read(fmt.Sprintf("Password for %s: ", args[0]))
	if err != nil {
		return failNow(err)
	}
	defer password.Close()

	spinner, cleanup := startSpinner("Sorting notes...")
	defer cleanup()

	result, err := workflows.Sort(context.Background(), env, workflows.SortOptions{
		Vault:    args[0],
		Password: password.String(),
	})
	if err != nil {
		return fail(spinner, err)
	}
	spinner.FinalMSG = ui.Ok(fmt.Sprintf("Sorted %d notes in %s", len(result.Notes), ui.Vault.Sprint(result.Vault)))
	return nil
}
