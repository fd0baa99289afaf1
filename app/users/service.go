// Package users handles user-facing commands on top of the user aggregate.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/codewandler/userstore-go/core/es"
	"github.com/codewandler/userstore-go/domain/user"
)

type Service struct {
	log    *slog.Logger
	repo   es.Repository
	hasher PasswordHasher
}

func NewService(log *slog.Logger, repo es.Repository, hasher PasswordHasher) *Service {
	if log == nil {
		log = slog.Default()
	}
	if hasher == nil {
		hasher = DefaultArgon2Hasher()
	}
	return &Service{
		log:    log.With(slog.String("service", "users")),
		repo:   repo,
		hasher: hasher,
	}
}

// CreateUser validates cmd, creates the user and saves it. Save errors are
// returned unchanged so callers can tell es.ErrNotPersisted from
// es.ErrNotPublished and es.ErrOutcomeUnknown. In the latter two cases the
// user may be stored, so its id is returned too.
func (s *Service) CreateUser(ctx context.Context, cmd CreateUserCommand) (string, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}

	email, err := user.ParseEmailAddress(cmd.Email)
	if err != nil {
		return "", err
	}

	hash, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	u, err := user.Create(cmd.Name, email, hash)
	if err != nil {
		return "", err
	}

	if err := s.repo.Save(ctx, u); err != nil {
		if errors.Is(err, es.ErrNotPublished) || errors.Is(err, es.ErrOutcomeUnknown) {
			return u.GetID(), err
		}
		return "", err
	}

	s.log.Info("user created", slog.String("id", u.GetID()), slog.Any("cmd", cmd))
	return u.GetID(), nil
}
