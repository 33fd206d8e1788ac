// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/huertacl/catalog-service/internal/domain"
	"github.com/huertacl/catalog-service/internal/repository"
)

var (
	_ repository.UserRepository     = (*Users)(nil)
	_ repository.CategoryRepository = (*Categories)(nil)
	_ repository.ProductRepository  = (*Products)(nil)
)

// Users is an in-memory UserRepository enforcing unique emails.
type Users struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.User
}

// NewUsers returns an empty store.
func NewUsers() *Users {
	return &Users{byID: map[int64]*domain.User{}}
}

func (m *Users) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == user.Email {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	m.byID[user.ID] = &cp
	return nil
}

func (m *Users) Update(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *user
	m.byID[user.ID] = &cp
	return nil
}

func (m *Users) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	return nil
}

func (m *Users) GetByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (m *Users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *Users) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

func (m *Users) List(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Categories is an in-memory CategoryRepository. Lists counts List calls.
type Categories struct {
	nextID int64
	byID   map[int64]*domain.Category
	Lists  int
}

// NewCategories returns an empty store.
func NewCategories() *Categories {
	return &Categories{byID: map[int64]*domain.Category{}}
}

func (m *Categories) Create(_ context.Context, c *domain.Category) error {
	m.nextID++
	c.ID = m.nextID
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *Categories) Update(_ context.Context, c *domain.Category) error {
	if _, ok := m.byID[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *Categories) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	return nil
}

func (m *Categories) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (m *Categories) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, c := range m.byID {
		if c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *Categories) List(_ context.Context) ([]domain.Category, error) {
	m.Lists++
	out := make([]domain.Category, 0, len(m.byID))
	for _, c := range m.byID {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Products is an in-memory ProductRepository. Lists and Gets count reads.
type Products struct {
	nextID int64
	byID   map[int64]*domain.Product
	Lists  int
	Gets   int
}

// NewProducts returns an empty store.
func NewProducts() *Products {
	return &Products{byID: map[int64]*domain.Product{}}
}

func (m *Products) Create(_ context.Context, p *domain.Product) error {
	m.nextID++
	p.ID = m.nextID
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *Products) Update(_ context.Context, p *domain.Product) error {
	if _, ok := m.byID[p.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *Products) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	return nil
}

func (m *Products) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	m.Gets++
	p, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *Products) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, p := range m.byID {
		if p.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *Products) List(_ context.Context) ([]domain.Product, error) {
	m.Lists++
	out := make([]domain.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
