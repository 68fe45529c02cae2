package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/recipehub/backend/internal/model"
)

// Memory is a process-local store for development and tests. It enforces the
// same unique username/email rule as the database backends.
type Memory struct {
	mu      sync.RWMutex
	users   map[string]model.User
	recipes map[string]model.Recipe
}

func NewMemory() *Memory {
	return &Memory{
		users:   make(map[string]model.User),
		recipes: make(map[string]model.Recipe),
	}
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

func (m *Memory) Close(context.Context) error {
	return nil
}

func (m *Memory) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrDuplicate
		}
	}
	if _, ok := m.users[user.ID]; ok {
		return ErrDuplicate
	}
	m.users[user.ID] = *user
	return nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindUserByUsernameOrEmail(_ context.Context, username, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// UserCount reports the number of stored accounts.
func (m *Memory) UserCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

func (m *Memory) CountRecipes(_ context.Context, filter model.RecipeFilter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total int64
	for _, r := range m.recipes {
		if matchesRecipe(r, filter) {
			total++
		}
	}
	return total, nil
}

func (m *Memory) ListRecipes(_ context.Context, filter model.RecipeFilter, q model.ListQuery) ([]model.Recipe, error) {
	if q.Skip < 0 || q.Limit < 0 {
		return nil, fmt.Errorf("invalid page window: skip=%d limit=%d", q.Skip, q.Limit)
	}

	m.mu.RLock()
	matched := make([]model.Recipe, 0, len(m.recipes))
	for _, r := range m.recipes {
		if matchesRecipe(r, filter) {
			matched = append(matched, cloneRecipe(r))
		}
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		c := compareRecipes(matched[i], matched[j], q.SortBy)
		if c == 0 {
			c = strings.Compare(matched[i].ID, matched[j].ID)
		}
		if q.Desc {
			return c > 0
		}
		return c < 0
	})

	if q.Skip >= len(matched) {
		return []model.Recipe{}, nil
	}
	end := len(matched)
	if q.Limit > 0 && q.Limit < end-q.Skip {
		end = q.Skip + q.Limit
	}
	return matched[q.Skip:end], nil
}

func (m *Memory) GetRecipe(_ context.Context, id string) (*model.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.recipes[id]
	if !ok {
		return nil, ErrNotFound
	}
	r = cloneRecipe(r)
	return &r, nil
}

func (m *Memory) CreateRecipe(_ context.Context, r *model.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.recipes[r.ID]; ok {
		return ErrDuplicate
	}
	m.recipes[r.ID] = cloneRecipe(*r)
	return nil
}

func (m *Memory) UpdateRecipe(_ context.Context, r *model.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.recipes[r.ID]; !ok {
		return ErrNotFound
	}
	m.recipes[r.ID] = cloneRecipe(*r)
	return nil
}

func (m *Memory) DeleteRecipe(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.recipes[id]; !ok {
		return ErrNotFound
	}
	delete(m.recipes, id)
	return nil
}

func matchesRecipe(r model.Recipe, filter model.RecipeFilter) bool {
	return filter.PublisherID == "" || r.PublisherID == filter.PublisherID
}

func compareRecipes(a, b model.Recipe, sortBy string) int {
	switch sortBy {
	case model.SortByTitle:
		return strings.Compare(a.Title, b.Title)
	case model.SortByInstructions:
		return strings.Compare(a.Instructions, b.Instructions)
	case model.SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func cloneRecipe(r model.Recipe) model.Recipe {
	if r.Ingredients != nil {
		ingredients := make([]model.Ingredient, len(r.Ingredients))
		copy(ingredients, r.Ingredients)
		r.Ingredients = ingredients
	}
	return r
}
