package products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	products map[int64]Product
	nextID   int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{products: make(map[int64]Product), nextID: 1}
}

func (m *mockRepository) List(ctx context.Context) ([]Product, error) {
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (m *mockRepository) Create(ctx context.Context, p Product) (Product, error) {
	for _, existing := range m.products {
		if existing.SKU == p.SKU {
			return Product{}, ErrDuplicateSKU
		}
	}
	p.ID = m.nextID
	m.nextID++
	m.products[p.ID] = p
	return p, nil
}

func (m *mockRepository) Update(ctx context.Context, p Product) (Product, error) {
	if _, ok := m.products[p.ID]; !ok {
		return Product{}, ErrNotFound
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func TestCreateStartsAsDraftOwnedByCaller(t *testing.T) {
	svc := NewService(newMockRepository())

	p, err := svc.Create(context.Background(), 9, " SKU-1 ", " Coffee mug ", 1250)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, p.Status)
	assert.Equal(t, int64(9), p.OwnerID)
	assert.Equal(t, "SKU-1", p.SKU)
	assert.Equal(t, "Coffee mug", p.Name)
}

func TestCreateDuplicateSKU(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), 1, "SKU-1", "First", 100)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 2, "SKU-1", "Second", 200)
	assert.ErrorIs(t, err, ErrDuplicateSKU)
}

func TestUpdateOwnershipRestriction(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), 5, "SKU-1", "Mug", 100)
	require.NoError(t, err)

	// Unrestricted writers may edit anyone's record.
	_, err = svc.Update(context.Background(), 99, false, p.ID, "Mug v2", 150, StatusPublished)
	require.NoError(t, err)

	// A scoped writer edits only their own records.
	_, err = svc.Update(context.Background(), 99, true, p.ID, "Mug v3", 175, StatusPublished)
	assert.ErrorIs(t, err, ErrNotOwner)

	updated, err := svc.Update(context.Background(), 5, true, p.ID, "Mug v3", 175, StatusPublished)
	require.NoError(t, err)
	assert.Equal(t, "Mug v3", updated.Name)
}

func TestDeleteOwnershipRestriction(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), 5, "SKU-1", "Mug", 100)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), 99, true, p.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	require.NoError(t, svc.Delete(context.Background(), 5, true, p.ID))
	_, err = repo.Get(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
