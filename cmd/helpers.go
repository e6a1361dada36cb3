package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/PolarWolf314/notevault/internal/container"
	kerrors "github.com/PolarWolf314/notevault/internal/errors"
	"github.com/PolarWolf314/notevault/internal/ui"
)

// startSpinner creates and starts a spinner with the given message when not in
// verbose or debug mode. Returns the spinner and a function that should be
// deferred to clean up.
//
// spinner.FinalMSG values do not need trailing newlines; cleanup adds one.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stderr)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// reportedError is an error whose message has already been shown.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// IsReported reports whether err has already been printed to the user.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// fail puts the user-facing message for err in the spinner's final message and
// returns err marked as reported.
func fail(s *spinner.Spinner, err error) error {
	Logger.Errorf("%v", err)
	s.FinalMSG = formatError(err)
	return &reportedError{err: err}
}

// failNow prints the user-facing message for err at once, for failures
// before a spinner has started.
func failNow(err error) error {
	Logger.Errorf("%v", err)
	fmt.Println(formatError(err))
	return &reportedError{err: err}
}

// formatError formats an error for display to the user.
func formatError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrWrongPassword):
		return ui.Fail("Incorrect password") + "\n" +
			ui.Hint("The vault was not changed")

	case errors.Is(err, kerrors.ErrVaultNotFound):
		return ui.Fail(capitalize(err)) + "\n" +
			ui.Hint("Run "+ui.Code.Sprint("notevault list")+" to see available vaults")

	case errors.Is(err, kerrors.ErrVaultExists):
		return ui.Fail(capitalize(err)) + "\n" +
			ui.Hint("Choose another name or "+ui.Code.Sprint("notevault delete")+" the existing vault")

	case errors.Is(err, kerrors.ErrInvalidFile):
		return ui.Fail("Not a NoteVault file: " + err.Error())

	case errors.Is(err, kerrors.ErrInvalidVersion):
		return ui.Fail(capitalize(err)) + "\n" +
			ui.Hint("The vault was written by a newer version of NoteVault")

	case errors.Is(err, kerrors.ErrIO):
		if container.ResultOf(err) == container.IoError {
			return ui.Fail("Vault file is damaged or unreadable: " + err.Error())
		}
		return ui.Fail(capitalize(err))

	case errors.Is(err, kerrors.ErrBusy):
		return ui.Fail(capitalize(err)) + "\n" +
			ui.Hint("Wait for the other operation to finish and try again")

	case errors.Is(err, kerrors.ErrPasswordMismatch):
		return ui.Fail("Passwords do not match")

	case errors.Is(err, kerrors.ErrIDsExhausted):
		return ui.Fail(capitalize(err)) + "\n" +
			ui.Hint("Export the vault and import it into a new one to renumber its notes")

	case errors.Is(err, kerrors.ErrInvalidExport):
		return ui.Fail(capitalize(err)) + "\n" +
			ui.Hint("Import expects a document produced by "+ui.Code.Sprint("notevault export"))

	default:
		return ui.Fail(capitalize(err))
	}
}

func capitalize(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	if c := msg[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + msg[1:]
	}
	return msg
}

// parseID parses a note id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: %q is not a note id", kerrors.ErrNoteNotFound, arg)
	}
	return id, nil
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(flag *pflag.Flag) {
		_ = flag.Value.Set(flag.DefValue)
		flag.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}
