// Package utils provides terminal and filesystem helpers for the CLI.
//
// # Passwords
//
// PasswordReader reads passwords from a file, from stdin ("-") or from the
// terminal without echo. Passwords land in secret.Buffer values so they can
// be zeroed after use.
//
// # Names and paths
//
//   - SanitizeName: turns arbitrary text into a usable vault name
//   - UniqueName: appends -2, -3, ... until a name is free
//   - ExpandHome: expands a leading ~ in a path
//
// # I/O
//
//   - ReadInput: reads a file or piped stdin, refusing an interactive terminal
package utils
