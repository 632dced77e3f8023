package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/Dosada05/tournament-accommodation/models"
	"github.com/Dosada05/tournament-accommodation/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.users == nil {
		r.users = map[string]models.User{}
	}
	if _, ok := r.users[user.Email]; ok {
		return repositories.ErrUserEmailConflict
	}
	user.ID = len(r.users) + 1
	r.users[user.Email] = *user
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r *memUserRepo) List(ctx context.Context, filter models.UserFilter) ([]*models.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.User
	for _, u := range r.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Search != "" && !strings.Contains(u.Email, strings.ToLower(filter.Search)) {
			continue
		}
		u := u
		matched = append(matched, &u)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *memUserRepo) UpdateRole(ctx context.Context, id int, role models.UserRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for email, u := range r.users {
		if u.ID == id {
			u.Role = role
			r.users[email] = u
			return nil
		}
	}
	return repositories.ErrUserNotFound
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	repo := &memUserRepo{}
	svc := NewAuthService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{FirstName: "Olga", Email: " Olga@Example.com ", Password: "s3cret-pass", Role: models.RoleHotelManager})
	require.NoError(t, err)
	assert.Equal(t, "olga@example.com", user.Email)
	assert.Equal(t, models.RoleHotelManager, user.Role)
	assert.Empty(t, user.PasswordHash)
	assert.NotEqual(t, "s3cret-pass", repo.users["olga@example.com"].PasswordHash)

	logged, err := svc.Login(ctx, LoginInput{Email: "olga@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.Empty(t, logged.PasswordHash)

	_, err = svc.Login(ctx, LoginInput{Email: "olga@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = svc.Register(ctx, RegisterInput{FirstName: "Olga", Email: "olga@example.com", Password: "another-pass"})
	assert.ErrorIs(t, err, ErrAuthEmailTaken)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := NewAuthService(&memUserRepo{})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{FirstName: "A", Email: "bad", Password: "long-enough"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.Register(ctx, RegisterInput{FirstName: "A", Email: "a@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.Register(ctx, RegisterInput{FirstName: "A", Email: "a@example.com", Password: "long-enough", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, ErrValidationFailed)

	user, err := svc.Register(ctx, RegisterInput{FirstName: "A", Email: "a@example.com", Password: "long-enough"})
	require.NoError(t, err)
	assert.Equal(t, models.RolePlayer, user.Role)
}
