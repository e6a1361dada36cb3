// Package audit records NoteVault operations in a JSON Lines log.
//
// The log lives next to the vaults at <vault dir>/audit.jsonl. Each line
// records when an operation ran, the process session it belonged to, the
// operation name, the vault and, where relevant, the note count afterwards or
// a rename or export target:
//
//	{"ts":"2026-01-02T10:00:00.000000Z","session":"6f1c...","op":"add","vault":"personal","notes_count":3}
//
// Entries never include note contents or credentials.
//
// Logging is best-effort. If the log cannot be written, the operation
// continues without error.
package audit
