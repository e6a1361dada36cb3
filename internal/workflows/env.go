package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/notevault/internal/audit"
	"github.com/PolarWolf314/notevault/internal/configs"
	"github.com/PolarWolf314/notevault/internal/container"
	"github.com/PolarWolf314/notevault/internal/crypto"
	"github.com/PolarWolf314/notevault/internal/vault"
)

// Env is what every workflow runs against.
type Env struct {
	Store  *vault.Store
	Audit  *audit.Recorder
	Crypto *crypto.Service

	// PasswordLength is the generator's default length.
	PasswordLength int
}

// NewEnv wires the crypto service, codec, store and audit log for the vault
// directory dir according to cfg.
func NewEnv(cfg *configs.Config, dir string) *Env {
	svc := crypto.NewService()
	codec := container.New(svc, container.WithIterations(cfg.KDFIterations))
	return &Env{
		Store:          vault.NewStore(dir, codec, svc, vault.WithSaltLength(cfg.SaltLength)),
		Audit:          audit.New(dir, cfg.Audit),
		Crypto:         svc,
		PasswordLength: cfg.PasswordLength,
	}
}

// record logs an audit entry for op against the named vault.
func (e *Env) record(op, name string, count int, target string) {
	e.Audit.Log(audit.Entry{
		Operation:  op,
		Vault:      name,
		NotesCount: count,
		Target:     target,
	})
}

// update opens a vault, applies change and saves it. The session is closed
// before returning either way.
func (e *Env) update(ctx context.Context, name, password string, change func(*vault.Session) error) (int, error) {
	session, err := e.Store.Open(ctx, name, container.Password(password))
	if err != nil {
		return 0, err
	}
	defer session.Close()

	if err := change(session); err != nil {
		return 0, err
	}
	if err := e.Store.Save(ctx, session); err != nil {
		return 0, fmt.Errorf("saving vault: %w", err)
	}
	return session.Notes.Len(), nil
}

// view opens a vault for reading and closes it after read returns.
func (e *Env) view(ctx context.Context, name, password string, read func(*vault.Session) error) error {
	session, err := e.Store.Open(ctx, name, container.Password(password))
	if err != nil {
		return err
	}
	defer session.Close()
	return read(session)
}
