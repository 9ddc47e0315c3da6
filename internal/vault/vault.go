// Package vault is the credential store for workspace bot tokens.
// It is the only layer that sees tokens in plaintext: every write goes
// through the secretbox cipher before touching the repository, and every
// read decrypts on the way out. Bulk listing never decrypts.
package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/slackjohn/internal/domain/repository"
	"github.com/dropDatabas3/slackjohn/internal/security/secretbox"
)

// Credential is a decrypted installation as seen by callers of Get.
type Credential struct {
	TeamID    string
	TeamName  string
	BotToken  string
	BotUserID string
	Scope     string
}

// Store persists installations with tokens encrypted at rest.
// No in-memory cache: every call reflects current durable state.
type Store struct {
	repo repository.InstallationRepository
	box  *secretbox.Box
}

// New creates a Store over the given repository and cipher.
func New(repo repository.InstallationRepository, box *secretbox.Box) *Store {
	return &Store{repo: repo, box: box}
}

// Upsert encrypts the plaintext token and writes or overwrites the
// installation keyed by teamID. Idempotent in effect.
func (s *Store) Upsert(ctx context.Context, teamID, teamName, botToken, botUserID, scope string) error {
	encrypted, err := s.box.Encrypt(botToken)
	if err != nil {
		return fmt.Errorf("vault: encrypt token: %w", err)
	}
	return s.repo.Upsert(ctx, repository.Installation{
		TeamID:         teamID,
		TeamName:       teamName,
		EncryptedToken: encrypted,
		BotUserID:      botUserID,
		Scope:          scope,
	})
}

// Get returns the decrypted credential for teamID, or (nil, nil) when no
// installation exists. A decryption failure is surfaced, never swallowed:
// it means tampering or a key mismatch.
func (s *Store) Get(ctx context.Context, teamID string) (*Credential, error) {
	inst, err := s.repo.Get(ctx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("vault: get installation: %w", err)
	}

	token, err := s.box.Decrypt(inst.EncryptedToken)
	if err != nil {
		return nil, fmt.Errorf("vault: decrypt token for %s: %w", teamID, err)
	}

	return &Credential{
		TeamID:    inst.TeamID,
		TeamName:  inst.TeamName,
		BotToken:  token,
		BotUserID: inst.BotUserID,
		Scope:     inst.Scope,
	}, nil
}

// Delete removes the installation. No-op if absent.
func (s *Store) Delete(ctx context.Context, teamID string) error {
	return s.repo.Delete(ctx, teamID)
}

// ListSummary returns the operational view of all installations.
// Tokens are deliberately not part of this surface.
func (s *Store) ListSummary(ctx context.Context) ([]repository.InstallationSummary, error) {
	return s.repo.List(ctx)
}
