// Package unavailable provides a storage adapter installed when the
// configured backend cannot be reached at startup. Every operation fails fast
// with storage.ErrUnavailable so the service degrades instead of hanging,
// and the connection failure stays attached to the Ping result for health
// reporting.
package unavailable

import (
	"context"
	"fmt"

	"github.com/campuslink/campuslink-be/internal/models"
	"github.com/campuslink/campuslink-be/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store rejects every operation with storage.ErrUnavailable.
type Store struct {
	cause error
}

// New wraps the startup connection failure.
func New(cause error) *Store {
	return &Store{cause: cause}
}

func (s *Store) err() error {
	if s.cause != nil {
		return fmt.Errorf("%w: %w", storage.ErrUnavailable, s.cause)
	}
	return storage.ErrUnavailable
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	return models.User{}, s.err()
}

func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return models.User{}, s.err()
}

func (s *Store) CreateGroup(ctx context.Context, group models.Group) (models.Group, error) {
	return models.Group{}, s.err()
}

func (s *Store) ListGroups(ctx context.Context, offset, limit int) ([]models.Group, error) {
	return nil, s.err()
}

func (s *Store) FindGroup(ctx context.Context, id string) (models.Group, error) {
	return models.Group{}, s.err()
}

func (s *Store) CreateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	return models.Message{}, s.err()
}

func (s *Store) ListMessages(ctx context.Context, groupID string) ([]models.Message, error) {
	return nil, s.err()
}

func (s *Store) Ping(ctx context.Context) error { return s.err() }

func (s *Store) Close() {}
