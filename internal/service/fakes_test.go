package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/kursadbilgin/registration-engine/internal/domain"
	"github.com/kursadbilgin/registration-engine/internal/mail"
	"github.com/kursadbilgin/registration-engine/internal/notify"
	"github.com/kursadbilgin/registration-engine/internal/repository"
)

// memoryStore is an in-memory identity store whose transactions snapshot the
// committed state and restore it when the scope fails.
type memoryStore struct {
	mu          sync.Mutex
	nextID      int
	users       []domain.User
	memberships []domain.UserGroup
	groups      map[int]domain.Group
	writes      int
	lookups     int

	lookupErr     error
	createUserErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		nextID: 1,
		groups: map[int]domain.Group{
			domain.ReservedGroupGuest.ID(): {ID: domain.ReservedGroupGuest.ID(), Name: "guest"},
		},
	}
}

func (s *memoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, stores repository.IdentityStores) error) (err error) {
	s.mu.Lock()
	users := append([]domain.User(nil), s.users...)
	memberships := append([]domain.UserGroup(nil), s.memberships...)
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in transaction: %v", r)
		}
		if err != nil {
			s.mu.Lock()
			s.users = users
			s.memberships = memberships
			s.mu.Unlock()
		}
	}()

	return fn(ctx, repository.IdentityStores{
		Users:       (*memoryUsers)(s),
		Groups:      (*memoryGroups)(s),
		Memberships: (*memoryMemberships)(s),
	})
}

func (s *memoryStore) userCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *memoryStore) membershipCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.memberships)
}

func (s *memoryStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *memoryStore) seedUser(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, domain.User{ID: s.nextID, Username: email, EmailAddresses: []string{email}})
	s.nextID++
}

type memoryUsers memoryStore

func (u *memoryUsers) Create(ctx context.Context, user *domain.User) error {
	s := (*memoryStore)(u)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes++
	if s.createUserErr != nil {
		return s.createUserErr
	}
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return fmt.Errorf("duplicate key value violates unique constraint %q", "idx_users_username")
		}
		for _, have := range existing.EmailAddresses {
			for _, want := range user.EmailAddresses {
				if have == want {
					return fmt.Errorf("duplicate key value violates unique constraint %q", "idx_email_addresses_email")
				}
			}
		}
	}

	user.ID = s.nextID
	s.nextID++
	s.users = append(s.users, *user)
	return nil
}

func (u *memoryUsers) GetByID(ctx context.Context, id int) (*domain.User, error) {
	return u.find(func(user domain.User) bool { return user.ID == id })
}

func (u *memoryUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s := (*memoryStore)(u)
	s.mu.Lock()
	s.lookups++
	err := s.lookupErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return u.find(func(user domain.User) bool {
		for _, e := range user.EmailAddresses {
			if e == email {
				return true
			}
		}
		return false
	})
}

func (u *memoryUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return u.find(func(user domain.User) bool { return user.Username == username })
}

func (u *memoryUsers) Count(ctx context.Context) (int64, error) {
	return int64((*memoryStore)(u).userCount()), nil
}

func (u *memoryUsers) find(match func(domain.User) bool) (*domain.User, error) {
	s := (*memoryStore)(u)
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if match(s.users[i]) {
			user := s.users[i]
			return &user, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memoryGroups memoryStore

func (g *memoryGroups) GetByID(ctx context.Context, id int) (*domain.Group, error) {
	s := (*memoryStore)(g)
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &group, nil
}

type memoryMemberships memoryStore

func (m *memoryMemberships) Create(ctx context.Context, membership *domain.UserGroup) error {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes++
	s.memberships = append(s.memberships, *membership)
	return nil
}

func (m *memoryMemberships) ListByUserID(ctx context.Context, userID int) ([]domain.UserGroup, error) {
	s := (*memoryStore)(m)
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.UserGroup
	for _, membership := range s.memberships {
		if membership.UserID == userID {
			out = append(out, membership)
		}
	}
	return out, nil
}

type fakeTransport struct {
	mu     sync.Mutex
	sent   []mail.Message
	sendFn func(ctx context.Context, msg mail.Message) error
}

func (f *fakeTransport) Send(ctx context.Context, msg mail.Message) error {
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	sendFn := f.sendFn
	f.mu.Unlock()

	if sendFn != nil {
		return sendFn(ctx, msg)
	}
	return nil
}

func (f *fakeTransport) messages() []mail.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mail.Message(nil), f.sent...)
}

type fakeRenderer struct {
	hasFn    func(name string) bool
	renderFn func(name, lang string, payload notify.Payload) (notify.Rendered, error)
}

func (f *fakeRenderer) Has(name string) bool {
	if f.hasFn != nil {
		return f.hasFn(name)
	}
	return true
}

func (f *fakeRenderer) Render(name, lang string, payload notify.Payload) (notify.Rendered, error) {
	if f.renderFn != nil {
		return f.renderFn(name, lang, payload)
	}
	return notify.Rendered{Subject: name, Body: payload.Password}, nil
}

type fixedPassword string

func (p fixedPassword) Generate() string { return string(p) }

type fakeHasher struct {
	hashFn func(plain string) (string, error)
}

func (f fakeHasher) Hash(plain string) (string, error) {
	if f.hashFn != nil {
		return f.hashFn(plain)
	}
	return "hashed:" + plain, nil
}

type fakeSettingRepo struct {
	mu     sync.Mutex
	values map[string]string
	reads  int
	setErr error
}

func (f *fakeSettingRepo) Get(ctx context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return value, nil
}

func (f *fakeSettingRepo) GetMany(ctx context.Context, names []string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	out := make(map[string]string, len(names))
	for _, name := range names {
		if value, ok := f.values[name]; ok {
			out[name] = value
		}
	}
	return out, nil
}

func (f *fakeSettingRepo) List(ctx context.Context) ([]domain.Setting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Setting, 0, len(f.values))
	for name, value := range f.values {
		out = append(out, domain.Setting{Name: name, Value: value})
	}
	return out, nil
}

func (f *fakeSettingRepo) Set(ctx context.Context, name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	if f.values == nil {
		f.values = make(map[string]string)
	}
	f.values[name] = value
	return nil
}
