// Package configs manages NoteVault's user configuration.
//
// The configuration is a TOML file at $XDG_CONFIG_HOME/notevault/config.toml:
//
//	vault_dir       = "/home/me/.local/share/notevault"
//	kdf_iterations  = 100000
//	salt_length     = 16
//	password_length = 20
//	audit           = true
//
// Every key is optional; a missing file or key falls back to the defaults
// returned by Default. The vault directory is resolved in order from the
// --dir flag, the NOTEVAULT_DIR environment variable, vault_dir, and finally
// $XDG_DATA_HOME/notevault.
package configs
