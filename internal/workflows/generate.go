package workflows

import (
	"context"

	"github.com/PolarWolf314/notevault/internal/passgen"
)

// GenerateOptions configures the password generator. A zero Length uses the
// configured default.
type GenerateOptions struct {
	Length int
	Count  int
}

// GenerateResult contains the generated passwords.
type GenerateResult struct {
	Passwords []string
}

// Generate draws Count passwords, at least one, from the crypto service.
//
// Returns ErrInvalidLength if the length is out of range.
func Generate(ctx context.Context, env *Env, opts GenerateOptions) (*GenerateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	length := opts.Length
	if length == 0 {
		length = env.PasswordLength
	}
	if length == 0 {
		length = passgen.DefaultLength
	}

	result := &GenerateResult{}
	for range max(opts.Count, 1) {
		pw, err := passgen.Generate(env.Crypto, length)
		if err != nil {
			return nil, err
		}
		result.Passwords = append(result.Passwords, pw)
	}
	return result, nil
}
