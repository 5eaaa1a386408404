package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SweetDelights/internal/backend"
	"SweetDelights/internal/models"
)

func openTempStore(t *testing.T, opts ...Option) *Store {
	t.Helper()

	store, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "bakery.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedCake(t *testing.T, s *Store, name string, category models.Category, featured bool, at time.Time) models.Cake {
	t.Helper()

	c, err := s.InsertCake(context.Background(), models.Cake{
		Name:        name,
		Description: name + " description",
		Category:    category,
		Images:      []string{"/uploads/cake-images/" + name + ".jpg"},
		Featured:    featured,
		CreatedAt:   at,
	})
	require.NoError(t, err)
	return c
}

func TestOpenValidatesArguments(t *testing.T) {
	_, err := Open(context.Background(), DriverSQLite, " ")
	require.Error(t, err)

	_, err = Open(context.Background(), "mysql", "x")
	require.Error(t, err)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bakery.db")
	first, err := Open(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: DriverPostgres}
	assert.Equal(t, "a = $1 AND b = $2 LIMIT $3", pg.rebind("a = ? AND b = ? LIMIT ?"))

	lite := &Store{driver: DriverSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestExtractUp(t *testing.T) {
	assert.Equal(t, "\nCREATE X;\n", extractUp("-- +migrate Up\nCREATE X;\n-- +migrate Down\nDROP X;"))
	assert.Equal(t, "CREATE Y;", extractUp("CREATE Y;"))
}

func TestListCakesByCategoryNewestFirst(t *testing.T) {
	s := openTempStore(t)
	base := time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)

	old := seedCake(t, s, "old-choc", models.Chocolate, false, base)
	fresh := seedCake(t, s, "fresh-choc", models.Chocolate, false, base.Add(time.Hour))
	seedCake(t, s, "berry", models.Fruit, false, base.Add(2*time.Hour))

	got, err := s.ListCakes(context.Background(), backend.CakeQuery{Category: models.Chocolate})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, fresh.ID, got[0].ID)
	assert.Equal(t, old.ID, got[1].ID)
	assert.Equal(t, []string{"/uploads/cake-images/fresh-choc.jpg"}, got[0].Images)
	assert.Equal(t, base.Add(time.Hour), got[0].CreatedAt)
	assert.Equal(t, models.Chocolate, got[0].Category)
}

func TestListCakesFeaturedLimit(t *testing.T) {
	s := openTempStore(t)
	base := time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		seedCake(t, s, "featured-"+string(rune('a'+i)), models.Custom, true, base.Add(time.Duration(i)*time.Minute))
	}
	seedCake(t, s, "plain", models.Custom, false, base.Add(time.Hour))

	got, err := s.ListCakes(context.Background(), backend.CakeQuery{FeaturedOnly: true, Limit: 6})
	require.NoError(t, err)
	require.Len(t, got, 6)
	for _, c := range got {
		assert.True(t, c.Featured)
	}
	assert.Equal(t, "featured-h", got[0].Name)
}

func TestListCakesEmptyCategory(t *testing.T) {
	s := openTempStore(t)

	got, err := s.ListCakes(context.Background(), backend.CakeQuery{Category: models.RedVelvet})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInsertCakeRequiresName(t *testing.T) {
	s := openTempStore(t)

	_, err := s.InsertCake(context.Background(), models.Cake{Category: models.Fruit})
	require.Error(t, err)
}

func TestInsertEnquiryUnknownCake(t *testing.T) {
	s := openTempStore(t)

	_, err := s.InsertEnquiry(context.Background(), models.Enquiry{CakeID: "missing", Name: "A"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, backend.ErrNotFound), "got %v", err)
}

func TestListEnquiriesJoinAndSort(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.February, 1, 12, 0, 0, 0, time.UTC)
	cake := seedCake(t, s, "Lemon", models.Fruit, false, base)

	for i, name := range []string{"Carol", "Alice", "Bob"} {
		_, err := s.InsertEnquiry(ctx, models.Enquiry{
			CakeID:    cake.ID,
			Name:      name,
			Email:     name + "@example.com",
			Phone:     "555",
			Message:   "hello",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	byDate, err := s.ListEnquiries(ctx, backend.EnquiryQuery{IncludeCake: true})
	require.NoError(t, err)
	require.Len(t, byDate, 3)
	assert.Equal(t, []string{"Bob", "Alice", "Carol"}, names(byDate))
	assert.Equal(t, "Lemon", byDate[0].CakeName)
	assert.Equal(t, models.Fruit, byDate[0].CakeCategory)

	byName, err := s.ListEnquiries(ctx, backend.EnquiryQuery{OrderBy: "name", Ascending: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, names(byName))
	assert.Empty(t, byName[0].CakeName)

	_, err = s.ListEnquiries(ctx, backend.EnquiryQuery{OrderBy: "message; DROP TABLE cakes"})
	require.Error(t, err)
}

func names(rows []models.EnquiryRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestSignInLifecycle(t *testing.T) {
	now := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	s := openTempStore(t, WithSessionTTL(time.Hour), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := s.CreateAdmin(ctx, "Owner@Bakery.test", "s3cret")
	require.NoError(t, err)

	_, err = s.CreateAdmin(ctx, "owner@bakery.test", "other")
	assert.ErrorIs(t, err, ErrAdminExists)

	_, err = s.SignIn(ctx, "owner@bakery.test", "wrong")
	assert.ErrorIs(t, err, backend.ErrInvalidCredentials)
	_, err = s.SignIn(ctx, "nobody@bakery.test", "s3cret")
	assert.ErrorIs(t, err, backend.ErrInvalidCredentials)

	session, err := s.SignIn(ctx, " OWNER@bakery.test ", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	got, err := s.GetSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "owner@bakery.test", got.Email)
	assert.Equal(t, now.Add(time.Hour), got.ExpiresAt)

	require.NoError(t, s.SignOut(ctx, session.Token))
	_, err = s.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, backend.ErrNoSession)
}

func TestGetSessionExpires(t *testing.T) {
	now := time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)
	s := openTempStore(t, WithSessionTTL(time.Minute), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := s.CreateAdmin(ctx, "owner@bakery.test", "s3cret")
	require.NoError(t, err)
	session, err := s.SignIn(ctx, "owner@bakery.test", "s3cret")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = s.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, backend.ErrNoSession)

	_, err = s.GetSession(ctx, "")
	assert.ErrorIs(t, err, backend.ErrNoSession)
}
