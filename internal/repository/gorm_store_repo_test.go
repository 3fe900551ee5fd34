package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Werneck0live/mm-store/internal/db"
	"github.com/Werneck0live/mm-store/internal/models"
)

func newSQLiteRepo(t *testing.T) *GormStoreRepository {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	repo := NewGormStoreRepository(gdb)
	require.NoError(t, repo.Migrate(context.Background()))
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func acme() *models.Store {
	return &models.Store{OwnerID: "123", AddressID: "5", CNPJ: "12345678901234", Name: "Acme Store"}
}

func TestGormStoreRepository_CreateAssignsUniqueIDs(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		s := acme()
		s.ID = 999 // ignorado
		s.Name = fmt.Sprintf("Store %d", i)
		got, err := repo.Create(ctx, s)
		require.NoError(t, err)
		require.NotZero(t, got.ID)
		require.False(t, seen[got.ID], "id %d repeated", got.ID)
		seen[got.ID] = true
	}
}

func TestGormStoreRepository_GetAfterCreate(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	in := acme()
	in.ImageURL = "http://img/acme.png"
	created, err := repo.Create(ctx, in)
	require.NoError(t, err)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, in.OwnerID, got.OwnerID)
	assert.Equal(t, in.AddressID, got.AddressID)
	assert.Equal(t, in.CNPJ, got.CNPJ)
	assert.Equal(t, in.Name, got.Name)
	assert.Equal(t, in.ImageURL, got.ImageURL)
}

func TestGormStoreRepository_CreateValidation(t *testing.T) {
	repo := newSQLiteRepo(t)
	s := acme()
	s.CNPJ = ""

	_, err := repo.Create(context.Background(), s)
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "cnpj", ve.Field)
}

func TestGormStoreRepository_UpdateOnlyTouchesField(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	in := acme()
	in.ImageURL = "http://img/a.png"
	created, err := repo.Create(ctx, in)
	require.NoError(t, err)

	name := "Acme Renamed"
	updated, err := repo.Update(ctx, created.ID, models.StorePatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Acme Renamed", updated.Name)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	want := *created
	want.Name = name
	assert.Equal(t, want, *got)
}

func TestGormStoreRepository_UpdateRejectsEmptyRequired(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, acme())
	require.NoError(t, err)

	empty := ""
	_, err = repo.Update(ctx, created.ID, models.StorePatch{Name: &empty})
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Store", got.Name)
}

func TestGormStoreRepository_NotFound(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, 999999)
	require.ErrorIs(t, err, ErrNotFound)

	name := "x"
	_, err = repo.Update(ctx, 999999, models.StorePatch{Name: &name})
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, repo.Delete(ctx, 999999), ErrNotFound)
}

func TestGormStoreRepository_DeleteThenGet(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, acme())
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGormStoreRepository_ListFilters(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	fixtures := []models.Store{
		{OwnerID: "1", AddressID: "10", CNPJ: "11222333000181", Name: "Acme Store"},
		{OwnerID: "1", AddressID: "11", CNPJ: "22333444000172", Name: "ACME Outlet"},
		{OwnerID: "2", AddressID: "12", CNPJ: "33444555000163", Name: "Padaria 100%_Boa"},
	}
	for i := range fixtures {
		_, err := repo.Create(ctx, &fixtures[i])
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, models.StoreFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	ids := map[int64]int{}
	for _, s := range all {
		ids[s.ID]++
	}
	for id, n := range ids {
		assert.Equal(t, 1, n, "id %d listed %d times", id, n)
	}

	upper, err := repo.List(ctx, models.StoreFilter{Name: "Acme"})
	require.NoError(t, err)
	lower, err := repo.List(ctx, models.StoreFilter{Name: "acme"})
	require.NoError(t, err)
	assert.Len(t, upper, 2)
	assert.Equal(t, upper, lower)

	got, err := repo.List(ctx, models.StoreFilter{Name: "acme", OwnerID: "1", AddressID: "11"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ACME Outlet", got[0].Name)

	got, err = repo.List(ctx, models.StoreFilter{CNPJ: "444"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// curingas do LIKE são tratados como texto
	got, err = repo.List(ctx, models.StoreFilter{Name: "%_"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Padaria 100%_Boa", got[0].Name)

	got, err = repo.List(ctx, models.StoreFilter{AddressIDs: []string{"10", "12", "99"}})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = repo.List(ctx, models.StoreFilter{AddressIDs: []string{}})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = repo.List(ctx, models.StoreFilter{Name: "nope"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	// maiúsculas acentuadas também são ignoradas
	_, err = repo.Create(ctx, &models.Store{OwnerID: "3", AddressID: "13", CNPJ: "44555666000154", Name: "PADARIA SÃO JOÃO"})
	require.NoError(t, err)
	for _, term := range []string{"SÃO", "são", "joão", "padaria são"} {
		got, err = repo.List(ctx, models.StoreFilter{Name: term})
		require.NoError(t, err)
		require.Len(t, got, 1, "term %q", term)
		assert.Equal(t, "PADARIA SÃO JOÃO", got[0].Name)
	}
	got, err = repo.List(ctx, models.StoreFilter{Name: "são", OwnerID: "1"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
