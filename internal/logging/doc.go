// Package logger provides leveled, colored logging for NoteVault CLI
// commands.
//
// Verbosity is controlled by two flags:
//
//   - --verbose: Shows info and warning messages
//   - --debug: Shows all messages including debug details and errors
//
// Without flags, only WarnfAlways, WarnfUser and Fatalf print.
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Opened %s with %d notes", name, count)
//
// Commands create a logger in the root PersistentPreRun. Library packages
// never log; they return errors.
package logger
