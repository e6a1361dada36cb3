package configs

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// SaveTOML encodes data to a TOML file readable only by the owner, creating
// parent directories as needed.
func SaveTOML(filePath string, data any) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
		return err
	}

	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(data)
}

// LoadTOML decodes a TOML file into data. Keys absent from the file leave the
// corresponding fields untouched. Keys in the file that data has no field for
// are reported as an error.
func LoadTOML(filePath string, data any) error {
	meta, err := toml.DecodeFile(filePath, data)
	if err != nil {
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return &UnknownKeysError{Path: filePath, Keys: undecoded}
	}
	return nil
}

// UnknownKeysError lists keys in a TOML file that no field accepted.
type UnknownKeysError struct {
	Path string
	Keys []toml.Key
}

func (e *UnknownKeysError) Error() string {
	msg := "unknown keys in " + e.Path + ":"
	for _, k := range e.Keys {
		msg += " " + k.String()
	}
	return msg
}
