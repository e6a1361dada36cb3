// Package workflows implements NoteVault's user-facing operations.
//
// The cmd/ package stays thin: it parses flags, reads passwords, shows
// spinners and formats results. Everything else happens here:
//   - Resolving the vault and checking the credential
//   - Performing the operation on the decrypted notes
//   - Saving the vault when the operation changed it
//   - Recording an audit entry
//
// Each workflow takes a context.Context and an *Env first, an XOptions value
// second, and returns an *XResult:
//
//	result, err := workflows.Add(ctx, env, workflows.AddOptions{
//	    Vault:    "personal",
//	    Password: password,
//	    Title:    "Groceries",
//	    Message:  "Milk",
//	})
//
// # Error Handling
//
// Errors wrap sentinels from internal/errors, so callers branch with
// errors.Is:
//
//	if errors.Is(err, kerrors.ErrWrongPassword) {
//	    // Re-prompt
//	}
//
// # Key upgrades
//
// Opening a vault whose key was derived with a different iteration count
// than configured re-derives the key. Workflows that save persist the new
// key; read-only workflows report Upgraded so the caller can say so.
package workflows
