package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/edulearn/internal/app/models"
	"github.com/yigit/edulearn/internal/pkg/apperrors"
	"github.com/yigit/edulearn/internal/pkg/auth"
)

type memFAQ struct {
	categories []*models.FAQCategory
	items      []*models.FAQItem
}

func (m *memFAQ) CountCategories(context.Context) (int64, error) {
	return int64(len(m.categories)), nil
}

func (m *memFAQ) CreateCategory(_ context.Context, c *models.FAQCategory) error {
	c.ID = int64(len(m.categories) + 1)
	m.categories = append(m.categories, c)
	return nil
}

func (m *memFAQ) CreateItem(_ context.Context, it *models.FAQItem) error {
	it.ID = int64(len(m.items) + 1)
	m.items = append(m.items, it)
	return nil
}

func TestSeedFAQ_BuildsTreeOnce(t *testing.T) {
	store := &memFAQ{}

	n, err := SeedFAQ(context.Background(), store, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, len(store.categories), n)
	assert.NotEmpty(t, store.items)

	byID := map[int64]*models.FAQCategory{}
	for _, c := range store.categories {
		byID[c.ID] = c
	}
	for _, c := range store.categories {
		if c.ParentID == nil {
			assert.Equal(t, 1, c.Depth, c.Name)
			continue
		}
		parent, ok := byID[*c.ParentID]
		require.True(t, ok, c.Name)
		assert.Equal(t, parent.Depth+1, c.Depth, c.Name)
	}
	for _, it := range store.items {
		_, ok := byID[it.CategoryID]
		assert.True(t, ok, it.Question)
	}

	again, err := SeedFAQ(context.Background(), store, zerolog.Nop())
	require.NoError(t, err)
	assert.Zero(t, again)
	assert.Len(t, store.categories, n)
}

type memUsers struct {
	users []*models.User
}

func (m *memUsers) EmailExists(_ context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	u.ID = int64(len(m.users) + 1)
	m.users = append(m.users, u)
	return nil
}

func TestCreateManager(t *testing.T) {
	users := &memUsers{}
	in := ManagerInput{Email: "  Ops@Example.com ", Password: "secret123", FirstName: "Ops", LastName: "Team"}

	u, err := CreateManager(context.Background(), users, in, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", u.Email)
	assert.Equal(t, models.RoleManager, u.RoleType)
	assert.True(t, u.IsActive)
	assert.True(t, u.EmailVerified)
	assert.True(t, auth.CheckPassword(u.Password, "secret123"))

	_, err = CreateManager(context.Background(), users, in, zerolog.Nop())
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	_, err = CreateManager(context.Background(), users, ManagerInput{Email: "x@example.com", Password: "short"}, zerolog.Nop())
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)

	_, err = CreateManager(context.Background(), users, ManagerInput{Email: "nope", Password: "secret123"}, zerolog.Nop())
	assert.ErrorIs(t, err, apperrors.ErrInvalidEmail)
}
