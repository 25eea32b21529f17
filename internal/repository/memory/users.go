package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/deskflow/helpdesk-api/internal/domain"
	"github.com/deskflow/helpdesk-api/internal/repository"
)

var _ repository.UserRepository = (*UserRepository)(nil)

// UserRepository is an in-memory repository.UserRepository.
type UserRepository struct {
	mu      sync.RWMutex
	opts    options
	nextID  int64
	byID    map[int64]domain.User
	byEmail map[string]int64
}

// NewUserRepository creates an empty repository.
func NewUserRepository(opts ...Option) *UserRepository {
	return &UserRepository{
		opts:    buildOptions(opts),
		byID:    make(map[int64]domain.User),
		byEmail: make(map[string]int64),
	}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := r.byEmail[key]; exists {
		return repository.ErrConflict
	}
	r.nextID++
	now := r.opts.now()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.byID[user.ID] = *user
	r.byEmail[key] = user.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := r.byID[id]
	return &user, nil
}
