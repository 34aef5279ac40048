package repository

import (
	"context"
	"errors"
	"testing"

	"stok/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDealer(code, name string) *model.Dealer {
	year := 2004
	return &model.Dealer{
		Code:              code,
		Name:              name,
		ContactName:       "Ayşe Yılmaz",
		ContactEmail:      "ayse@example.com",
		Country:           model.DefaultCountry,
		EstablishmentYear: &year,
		Status:            model.DealerStatusPending,
	}
}

func TestDealerRepository_CRUD(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDealerRepository(pool, zerolog.Nop())
	ctx := context.Background()

	d := newTestDealer("BAYI-1", "Ege Giyim")
	require.NoError(t, repo.Create(ctx, d))
	assert.NotZero(t, d.ID)

	got, err := repo.GetByCode(ctx, "BAYI-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ege Giyim", got.Name)
	require.NotNil(t, got.EstablishmentYear)
	assert.Equal(t, 2004, *got.EstablishmentYear)
	assert.False(t, got.IsActive)
	assert.Nil(t, got.Metadata)

	got.Status = model.DealerStatusApproved
	got.IsActive = true
	got.EstablishmentYear = nil
	require.NoError(t, repo.Update(ctx, got))

	reloaded, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DealerStatusApproved, reloaded.Status)
	assert.True(t, reloaded.IsActive)
	assert.Nil(t, reloaded.EstablishmentYear)

	deleted, err := repo.Delete(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	err = repo.Update(ctx, got)
	assert.True(t, errors.Is(err, ErrRowNotFound))
}

func TestDealerRepository_DuplicateCode(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDealerRepository(pool, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestDealer("BAYI-1", "Ege Giyim")))

	exists, err := repo.CodeExists(ctx, "BAYI-1", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.Create(ctx, newTestDealer("BAYI-1", "Other"))
	assert.True(t, errors.Is(err, ErrDuplicateKey))
}

func TestDealerRepository_UpdateDocumentPath(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDealerRepository(pool, zerolog.Nop())
	ctx := context.Background()

	d := newTestDealer("BAYI-1", "Ege Giyim")
	require.NoError(t, repo.Create(ctx, d))

	updated, err := repo.UpdateDocumentPath(ctx, d.ID, model.DocumentTaxCertificate, "/uploads/dealers/a.pdf")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "/uploads/dealers/a.pdf", updated.TaxCertificatePath)
	assert.Empty(t, updated.SignatureCircularPath)

	missing, err := repo.UpdateDocumentPath(ctx, d.ID+1, model.DocumentTaxCertificate, "/x.pdf")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = repo.UpdateDocumentPath(ctx, d.ID, model.DocumentSlot("passport"), "/x.pdf")
	assert.Error(t, err)
}

func TestDealerRepository_List(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDealerRepository(pool, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestDealer("B-2", "Zeta Moda")))
	require.NoError(t, repo.Create(ctx, newTestDealer("B-1", "Alfa Tekstil")))

	dealers, total, err := repo.List(ctx, model.DealerFilter{Page: model.Page{Page: 1, PageSize: 50}})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, dealers, 2)
	assert.Equal(t, "Alfa Tekstil", dealers[0].Name)

	active := true
	_, total, err = repo.List(ctx, model.DealerFilter{IsActive: &active, Page: model.Page{Page: 1, PageSize: 50}})
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	_, total, err = repo.List(ctx, model.DealerFilter{Search: "zeta", Page: model.Page{Page: 1, PageSize: 50}})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
