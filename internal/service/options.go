package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"saas-commerce/internal/model"
	"saas-commerce/internal/repository"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Option tunes a service.
type Option func(*settings)

type settings struct {
	maxRetries    uint64
	retryInterval time.Duration
	now           func() time.Time
	log           *zap.Logger
	events        EventPublisher
	artifacts     ArtifactChecker
}

// ArtifactChecker resolves proof references against the artifact store.
type ArtifactChecker interface {
	Exists(tenantID uuid.UUID, ref string) bool
}

func defaultSettings() settings {
	return settings{
		maxRetries:    3,
		retryInterval: 50 * time.Millisecond,
		now:           time.Now,
		log:           zap.NewNop(),
		events:        NopPublisher{},
	}
}

func newSettings(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithMaxRetries bounds how often a conflicting unit of work is replayed.
func WithMaxRetries(n int) Option {
	return func(s *settings) {
		if n >= 0 {
			s.maxRetries = uint64(n)
		}
	}
}

func WithRetryInterval(d time.Duration) Option {
	return func(s *settings) { s.retryInterval = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *settings) {
		if log != nil {
			s.log = log
		}
	}
}

func WithEvents(p EventPublisher) Option {
	return func(s *settings) {
		if p != nil {
			s.events = p
		}
	}
}

// WithArtifacts makes services refuse proof references the tenant never uploaded.
// Without it references are accepted as given.
func WithArtifacts(a ArtifactChecker) Option {
	return func(s *settings) { s.artifacts = a }
}

// checkProof fails when ref is set but does not name one of the tenant's artifacts.
func (s settings) checkProof(tenantID uuid.UUID, ref *string) error {
	if ref == nil || *ref == "" || s.artifacts == nil {
		return nil
	}
	if !s.artifacts.Exists(tenantID, *ref) {
		return model.ValidationError("proof artifact %q was not uploaded", *ref)
	}
	return nil
}

// ErrContention is returned once storage conflicts outlast the retry budget.
var ErrContention = errors.New("too much contention, try again")

// atomically runs fn in one unit of work, replaying it only on
// repository.ErrConflict. Any other error stops at the first attempt.
func (s settings) atomically(ctx context.Context, uow repository.UnitOfWork, fn func(tx repository.Tx) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInterval
	b.MaxElapsedTime = 0

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := uow.Do(ctx, fn)
		if err == nil || errors.Is(err, repository.ErrConflict) {
			if err != nil {
				s.log.Warn("unit of work conflict", zap.Int("attempt", attempt), zap.Error(err))
			}
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(b, s.maxRetries), ctx))

	if errors.Is(err, repository.ErrConflict) {
		return fmt.Errorf("%w: %v", ErrContention, err)
	}
	return err
}
