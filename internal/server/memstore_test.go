package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"example.com/ya-note/internal/notes"
	"example.com/ya-note/internal/users"
)

// memStore is an in-memory stand-in for the PostgreSQL repositories,
// including the unique constraints on slug and username.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	notes   map[int64]notes.Note
	users   map[string]users.User
	revoked map[string]time.Time
}

func newMemStore() *memStore {
	return &memStore{
		notes:   map[int64]notes.Note{},
		users:   map[string]users.User{},
		revoked: map[string]time.Time{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) slugTaken(slug string, exclude int64) bool {
	for _, n := range m.notes {
		if n.Slug == slug && n.ID != exclude {
			return true
		}
	}
	return false
}

func (m *memStore) Create(_ context.Context, authorID int64, f notes.Fields) (notes.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugTaken(f.Slug, 0) {
		return notes.Note{}, notes.ErrSlugTaken
	}
	n := notes.Note{ID: m.id(), Title: f.Title, Text: f.Text, Slug: f.Slug, AuthorID: authorID, CreatedAt: time.Now()}
	m.notes[n.ID] = n
	return n, nil
}

func (m *memStore) find(authorID int64, slug string) (notes.Note, bool) {
	for _, n := range m.notes {
		if n.Slug == slug && n.AuthorID == authorID {
			return n, true
		}
	}
	return notes.Note{}, false
}

func (m *memStore) Get(_ context.Context, authorID int64, slug string) (notes.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.find(authorID, slug)
	if !ok {
		return notes.Note{}, notes.ErrNotFound
	}
	return n, nil
}

func (m *memStore) List(_ context.Context, authorID int64) ([]notes.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []notes.Note{}
	for _, n := range m.notes {
		if n.AuthorID == authorID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) Update(_ context.Context, authorID int64, slug string, f notes.Fields) (notes.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.find(authorID, slug)
	if !ok {
		return notes.Note{}, notes.ErrNotFound
	}
	if m.slugTaken(f.Slug, n.ID) {
		return notes.Note{}, notes.ErrSlugTaken
	}
	n.Title, n.Text, n.Slug = f.Title, f.Text, f.Slug
	m.notes[n.ID] = n
	return n, nil
}

func (m *memStore) Delete(_ context.Context, authorID int64, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.find(authorID, slug)
	if !ok {
		return notes.ErrNotFound
	}
	delete(m.notes, n.ID)
	return nil
}

func (m *memStore) SlugExists(_ context.Context, slug string, excludeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slugTaken(slug, excludeID), nil
}

func (m *memStore) countSlug(slug string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := 0
	for _, n := range m.notes {
		if n.Slug == slug {
			c++
		}
	}
	return c
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notes)
}

func (m *memStore) ByUsername(_ context.Context, username string) (users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (m *memStore) CreateUser(username, hash string) users.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := users.User{ID: m.id(), Username: username, PasswordHash: hash, CreatedAt: time.Now()}
	m.users[username] = u
	return u
}

func (m *memStore) RevokeSession(_ context.Context, tokenID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = expiresAt
	return nil
}

func (m *memStore) IsSessionRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[tokenID]
	return ok, nil
}

// userRepo adapts memStore to users.UserRepo; Create there takes a context.
type userRepo struct{ *memStore }

func (u userRepo) Create(_ context.Context, username, hash string) (users.User, error) {
	u.mu.Lock()
	_, exists := u.users[username]
	u.mu.Unlock()
	if exists {
		return users.User{}, users.ErrAlreadyExists
	}
	return u.CreateUser(username, hash), nil
}
