package testhelpers

import (
	"context"
	"sync"

	"github.com/iota-uz/catalog-api/modules/users/domain/aggregates/user"
)

// UserRepository is an in-memory user.Repository. Reads return copies so callers
// only change stored users through Create, Update and RecordLogin.
type UserRepository struct {
	mu     sync.Mutex
	users  map[int64]*user.User
	nextID int64

	// UpdateErr is returned, and cleared, by the next Update call.
	UpdateErr error
	// LockedReads counts GetByEmailForUpdate calls.
	LockedReads int
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: map[int64]*user.User{}}
}

// Add stores u as-is, assigning an id when it has none.
func (r *UserRepository) Add(u *user.User) *user.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		r.nextID++
		u.ID = r.nextID
	} else if u.ID > r.nextID {
		r.nextID = u.ID
	}
	r.users[u.ID] = clone(u)
	return u
}

// User returns a copy of the stored user, or nil.
func (r *UserRepository) User(id int64) *user.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return clone(u)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if u := r.User(id); u != nil {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	normalized := user.NormalizeEmail(email)
	for _, u := range r.users {
		if u.EmailAddress == normalized {
			return clone(u), nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *UserRepository) GetByEmailForUpdate(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	r.LockedReads++
	r.mu.Unlock()
	return r.GetByEmail(ctx, email)
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.EmailAddress = user.NormalizeEmail(u.EmailAddress)
	if r.emailTaken(u.EmailAddress, 0) {
		return user.ErrDuplicateEmail
	}
	r.nextID++
	u.ID = r.nextID
	r.users[u.ID] = clone(u)
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.UpdateErr; err != nil {
		r.UpdateErr = nil
		return err
	}
	if _, ok := r.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	u.EmailAddress = user.NormalizeEmail(u.EmailAddress)
	if r.emailTaken(u.EmailAddress, u.ID) {
		return user.ErrDuplicateEmail
	}
	r.users[u.ID] = clone(u)
	return nil
}

func (r *UserRepository) RecordLogin(ctx context.Context, id int64, failedLoginCount int, locked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.FailedLoginCount = failedLoginCount
	u.Locked = locked
	return nil
}

func (r *UserRepository) emailTaken(email string, exceptID int64) bool {
	for id, u := range r.users {
		if id != exceptID && u.EmailAddress == email {
			return true
		}
	}
	return false
}

func clone(u *user.User) *user.User {
	c := *u
	if u.SupplierID != nil {
		id := *u.SupplierID
		c.SupplierID = &id
	}
	return &c
}
