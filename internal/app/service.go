// Package app contains the application orchestration layer for the waitlist.
// It wires domain validation with persistence ports without performing any I/O itself.
package app

import (
	"context"
	"errors"

	"github.com/haukened/waitlist/internal/domain"
)

// ErrNotFound indicates no waitlist entry exists for the given id.
var ErrNotFound = errors.New("entry not found")

// ErrAlreadyJoined indicates the email is already on the waitlist.
var ErrAlreadyJoined = errors.New("already on waitlist")

// Service orchestrates waitlist signups and lookups using the injected store and clock.
type Service struct {
	Store   WaitlistStore
	Clock   Clock
	Metrics Metrics
	Prefix  string // resource prefix of entry ids, e.g. "wait"
}

func (s *Service) metrics() Metrics {
	if s.Metrics == nil {
		return nopMetrics{}
	}
	return s.Metrics
}

func (s *Service) prefix() string {
	if s.Prefix == "" {
		return domain.EntryPrefix
	}
	return s.Prefix
}

// Join validates email and adds it to the waitlist. The id is minted by the
// store on insert so it is always produced by the same column adapter that
// later decodes it.
func (s *Service) Join(ctx context.Context, email string) (domain.Entry, error) {
	norm, err := domain.NormalizeEmail(email)
	if err != nil {
		return domain.Entry{}, err
	}
	e, err := s.Store.Insert(ctx, domain.Entry{Email: norm, CreatedAt: s.Clock.Now().UTC()})
	if err != nil {
		if errors.Is(err, ErrAlreadyJoined) {
			s.metrics().Inc(CounterDuplicates, 1)
		}
		return domain.Entry{}, err
	}
	s.metrics().Inc(CounterSignups, 1)
	return e, nil
}

// Lookup validates the id framing then returns the entry and its 1-based
// position in signup order.
func (s *Service) Lookup(ctx context.Context, idStr string) (domain.Entry, int64, error) {
	id, err := domain.ParseEntryID(s.prefix(), idStr)
	if err != nil {
		return domain.Entry{}, 0, domain.ErrInvalidID
	}
	e, err := s.Store.Get(ctx, id)
	if err != nil {
		return domain.Entry{}, 0, err
	}
	pos, err := s.Store.Position(ctx, id)
	if err != nil {
		return domain.Entry{}, 0, err
	}
	s.metrics().Inc(CounterLookups, 1)
	return e, pos, nil
}

// Leave removes the entry identified by idStr from the waitlist.
func (s *Service) Leave(ctx context.Context, idStr string) error {
	id, err := domain.ParseEntryID(s.prefix(), idStr)
	if err != nil {
		return domain.ErrInvalidID
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics().Inc(CounterLeaves, 1)
	return nil
}

// Count returns the number of signups.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.Store.Count(ctx)
}
