// Package container reads and writes NoteVault container files.
//
// # Format
//
// A container is an unencrypted header followed by an AES-256-CBC payload
// with PKCS#7 padding. All integers are big-endian.
//
//	"NoteVault" 0x00
//	version    int32
//	saltLen    int32, salt
//	iterations int32
//	ivLen      int32, iv
//	--- encrypted ---
//	"NoteVault" 0x00           canary
//	noteCount  int32
//	noteCount x { id int64, titleLen int32, title, messageLen int32, message }
//
// Version 0 containers omit both 0x00 terminators and the iterations field;
// LegacyIterations is assumed for them. Text lengths are UTF-8 byte counts.
//
// # Password Validation
//
// CBC does not authenticate, so the only signal that a key is wrong is the
// canary: if the decrypted payload does not start with the magic string, Load
// fails with EncryptionError.
//
// # Results
//
// Every failure is an *Error carrying one of the Result values. Callers
// branch on ResultOf(err), or on the matching sentinel from internal/errors
// via errors.Is.
package container
