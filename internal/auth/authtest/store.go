// Package authtest provides in-memory implementations of the auth storage
// and mail interfaces for tests.
package authtest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"user-admin-service/internal/model"
	"user-admin-service/internal/repository"
)

// MemUsers is an in-memory UserStore with the same sentinel-error
// behavior as the MySQL repository.
type MemUsers struct {
	mu    sync.Mutex
	seq   uint64
	users map[uint64]model.User
}

func NewMemUsers() *MemUsers {
	return &MemUsers{users: map[uint64]model.User{}}
}

func (s *MemUsers) Create(_ context.Context, u model.User) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return 0, repository.ErrEmailExists
		}
	}
	s.seq++
	u.ID = s.seq
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = u
	return u.ID, nil
}

func (s *MemUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *MemUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *MemUsers) GetByConfirmationToken(_ context.Context, token string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.EmailConfirmationToken != nil && *u.EmailConfirmationToken == token {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *MemUsers) GetByResetToken(_ context.Context, token string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ResetPasswordToken != nil && *u.ResetPasswordToken == token {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *MemUsers) Update(_ context.Context, id uint64, p repository.UserPatch) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	if p.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*p.Email))
		for otherID, other := range s.users {
			if otherID != id && other.Email == email {
				return model.User{}, repository.ErrEmailExists
			}
		}
		u.Email = email
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.EmailConfirmationToken != nil {
		if p.EmailConfirmationToken.Valid {
			v := p.EmailConfirmationToken.String
			u.EmailConfirmationToken = &v
		} else {
			u.EmailConfirmationToken = nil
		}
	}
	if p.ResetPasswordToken != nil {
		if p.ResetPasswordToken.Valid {
			v := p.ResetPasswordToken.String
			u.ResetPasswordToken = &v
		} else {
			u.ResetPasswordToken = nil
		}
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return u, nil
}

func (s *MemUsers) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *MemUsers) List(_ context.Context, f repository.UserFilter) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.User
	for _, u := range s.users {
		if f.Email != "" && !strings.Contains(u.Email, strings.ToLower(f.Email)) {
			continue
		}
		if f.DisplayName != "" && !strings.Contains(u.DisplayName, f.DisplayName) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemUsers) CountByRole(_ context.Context, role string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, u := range s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// MemRoles is an in-memory RoleStore.
type MemRoles struct {
	mu    sync.Mutex
	roles map[string]model.Role
}

func NewMemRoles() *MemRoles {
	return &MemRoles{roles: map[string]model.Role{}}
}

func (s *MemRoles) Create(_ context.Context, role model.Role) (model.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[role.Code]; ok {
		return model.Role{}, repository.ErrRoleExists
	}
	role.IsDefault = false
	role.CreatedAt = time.Now().UTC()
	role.UpdatedAt = role.CreatedAt
	s.roles[role.Code] = role
	return role, nil
}

func (s *MemRoles) Initialize(_ context.Context, code, description string, isDefault bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[code]; ok {
		return nil
	}
	now := time.Now().UTC()
	s.roles[code] = model.Role{Code: code, Description: description, IsDefault: isDefault, CreatedAt: now, UpdatedAt: now}
	return nil
}

func (s *MemRoles) GetByCode(_ context.Context, code string) (model.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[code]
	if !ok {
		return model.Role{}, repository.ErrNotFound
	}
	return role, nil
}

func (s *MemRoles) Exists(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.roles[code]
	return ok, nil
}

func (s *MemRoles) List(_ context.Context) ([]model.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *MemRoles) UpdateByCode(_ context.Context, code, description string) (model.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[code]
	if !ok {
		return model.Role{}, repository.ErrNotFound
	}
	if role.IsDefault {
		return model.Role{}, repository.ErrDefaultRoleImmutable
	}
	role.Description = description
	role.UpdatedAt = time.Now().UTC()
	s.roles[code] = role
	return role, nil
}

func (s *MemRoles) DeleteByCode(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[code]
	if !ok {
		return repository.ErrNotFound
	}
	if role.IsDefault {
		return repository.ErrDefaultRoleImmutable
	}
	delete(s.roles, code)
	return nil
}

// SentMail records one mail dispatch.
type SentMail struct {
	To       string
	Token    string
	Template string
}

// MemMailer records mail dispatches instead of sending anything.
type MemMailer struct {
	mu   sync.Mutex
	Err  error // when set, every send fails with it
	sent []SentMail
}

func NewMemMailer() *MemMailer { return &MemMailer{} }

func (m *MemMailer) SendConfirmEmail(_ context.Context, to, token string) error {
	return m.record(SentMail{To: to, Token: token, Template: "confirmation"})
}

func (m *MemMailer) SendResetPassword(_ context.Context, to, token string) error {
	return m.record(SentMail{To: to, Token: token, Template: "reset-password"})
}

func (m *MemMailer) record(s SentMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, s)
	return nil
}

// Sent returns a copy of everything recorded so far.
func (m *MemMailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMail(nil), m.sent...)
}
