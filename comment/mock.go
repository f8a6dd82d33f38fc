package comment

import (
	"context"
	"sync"
)

// MockProvider is an in-memory Provider for testing.
// Set the Func fields to inject behavior; otherwise comments are stored.
type MockProvider struct {
	ListFunc   func(ctx context.Context, issue, page, perPage int) ([]Comment, bool, error)
	CreateFunc func(ctx context.Context, issue int, body string) (*Comment, error)
	UpdateFunc func(ctx context.Context, issue int, id int64, body string) (*Comment, error)

	// Author is assigned to created comments. Defaults to DefaultBotLogin.
	Author string

	mu       sync.Mutex
	comments map[int][]Comment
	nextID   int64
}

// Seed stores an existing comment and returns its id.
func (m *MockProvider) Seed(issue int, author, body string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store(issue, author, body).ID
}

// Comments returns the stored comments on issue.
func (m *MockProvider) Comments(issue int) []Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Comment(nil), m.comments[issue]...)
}

// Name implements Provider.
func (m *MockProvider) Name() string { return "mock" }

// List implements Provider.
func (m *MockProvider) List(ctx context.Context, issue, page, perPage int) ([]Comment, bool, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, issue, page, perPage)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.comments[issue]
	start := (page - 1) * perPage
	if start >= len(all) {
		return nil, false, nil
	}
	end := min(start+perPage, len(all))
	return append([]Comment(nil), all[start:end]...), end < len(all), nil
}

// Create implements Provider.
func (m *MockProvider) Create(ctx context.Context, issue int, body string) (*Comment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, issue, body)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	author := m.Author
	if author == "" {
		author = DefaultBotLogin
	}
	c := m.store(issue, author, body)
	return &c, nil
}

// Update implements Provider.
func (m *MockProvider) Update(ctx context.Context, issue int, id int64, body string) (*Comment, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, issue, id, body)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.comments[issue] {
		if c.ID == id {
			m.comments[issue][i].Body = body
			updated := m.comments[issue][i]
			return &updated, nil
		}
	}
	return nil, ErrCommentNotFound
}

func (m *MockProvider) store(issue int, author, body string) Comment {
	if m.comments == nil {
		m.comments = make(map[int][]Comment)
	}
	m.nextID++
	c := Comment{ID: m.nextID, Author: author, Body: body}
	m.comments[issue] = append(m.comments[issue], c)
	return c
}
