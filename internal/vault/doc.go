// Package vault stores encrypted note containers as *.secnote files in a
// directory.
//
// A Store enumerates, creates, opens, saves, renames and deletes vault files.
// At most one operation runs against a given file at a time; a second
// request for a busy file fails immediately with errors.ErrBusy instead of
// waiting. Saves are atomic: the container is written to a temporary file in
// the same directory, synced and renamed over the target.
//
// An open vault is a Session, which carries the decrypted notes together with
// the salt and key needed to save them again.
package vault
