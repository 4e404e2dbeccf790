package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/classkit/classkit/internal/infrastructure/logging"
)

// dummyPassword seeds the precomputed hash used to equalise login timing
// when the email is unknown. The value itself never matters.
const dummyPassword = "classkit-dummy-password-for-timing"

// Service implements the account flow: register, login, refresh.
//
// Argon2id is memory-hard, so concurrent hashing is gated behind a weighted
// semaphore sized from configuration. Without the gate a burst of login
// attempts could pin hashWorkers*64MiB of memory simultaneously.
type Service struct {
	repo   IdentityRepository
	hasher *Hasher
	tokens *TokenService
	logger *logging.Logger

	sem       *semaphore.Weighted
	dummyHash string
}

// NewService creates the account service. hashWorkers bounds the number of
// concurrent Argon2id computations.
func NewService(repo IdentityRepository, hasher *Hasher, tokens *TokenService, logger *logging.Logger, hashWorkers int) (*Service, error) {
	if hashWorkers < 1 {
		hashWorkers = 1
	}

	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("precomputing dummy hash: %w", err)
	}

	return &Service{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger,
		sem:       semaphore.NewWeighted(int64(hashWorkers)),
		dummyHash: dummy,
	}, nil
}

// Register creates a new account and issues its first token pair, so a new
// client is signed in immediately. The email is normalized before storage.
// Returns ErrEmailExists if the email is already registered.
func (s *Service) Register(ctx context.Context, email, name, password string) (*Identity, *TokenPair, error) {
	hash, err := s.hashGated(ctx, password)
	if err != nil {
		return nil, nil, err
	}

	identity := &Identity{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, identity); err != nil {
		return nil, nil, err
	}

	pair, err := s.tokens.IssuePair(identity.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("issuing tokens: %w", err)
	}

	s.logger.Info("account registered", "identity_id", identity.ID)
	return identity, pair, nil
}

// Login verifies credentials and issues a token pair.
//
// Unknown email and wrong password both return ErrInvalidCredentials, and the
// unknown-email path still runs a full hash verification against a dummy hash
// so the two cases take the same time. On success, hashes created under older
// Argon2id parameters are upgraded in place.
func (s *Service) Login(ctx context.Context, email, password string) (*Identity, *TokenPair, error) {
	identity, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			// Burn the same work a real verification would.
			_, _ = s.verifyGated(ctx, password, s.dummyHash) //nolint:errcheck // result discarded on purpose
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	ok, err := s.verifyGated(ctx, password, identity.PasswordHash)
	if err != nil || !ok {
		return nil, nil, ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(identity.PasswordHash) {
		s.rehash(ctx, identity, password)
	}

	pair, err := s.tokens.IssuePair(identity.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("issuing tokens: %w", err)
	}

	s.logger.Debug("login succeeded", "identity_id", identity.ID)
	return identity, pair, nil
}

// Refresh validates a refresh token and issues a fresh pair. The subject must
// still exist; a token for a deleted account is just an invalid token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Validate(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	if _, err := s.repo.GetByID(ctx, claims.Subject); err != nil {
		return nil, ErrTokenInvalid
	}

	pair, err := s.tokens.IssuePair(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("issuing tokens: %w", err)
	}
	return pair, nil
}

// rehash upgrades a stored hash to current parameters. Failures are logged
// and swallowed: login already succeeded and the old hash still works.
func (s *Service) rehash(ctx context.Context, identity *Identity, password string) {
	newHash, err := s.hashGated(ctx, password)
	if err != nil {
		s.logger.Warn("password rehash failed", "identity_id", identity.ID, "error", err)
		return
	}
	if err := s.repo.UpdatePasswordHash(ctx, identity.ID, newHash); err != nil {
		s.logger.Warn("password rehash failed", "identity_id", identity.ID, "error", err)
		return
	}
	s.logger.Info("password hash upgraded", "identity_id", identity.ID)
}

func (s *Service) hashGated(ctx context.Context, password string) (string, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquiring hash slot: %w", err)
	}
	defer s.sem.Release(1)
	return s.hasher.Hash(password)
}

func (s *Service) verifyGated(ctx context.Context, password, hash string) (bool, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("acquiring hash slot: %w", err)
	}
	defer s.sem.Release(1)
	return s.hasher.Verify(password, hash)
}
