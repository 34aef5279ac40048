package repository

import (
	"context"
	"errors"
	"fmt"

	"stok/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

var dealerColumns = []string{
	"id", "code", "name", "contact_name", "contact_email", "contact_phone",
	"address", "city", "district", "country", "establishment_year", "website",
	"tax_number", "tax_office", "tax_certificate_path", "trade_registry_gazette_path",
	"signature_circular_path", "notes", "status", "is_active", "metadata",
	"created_at", "updated_at",
}

var documentColumns = map[model.DocumentSlot]string{
	model.DocumentTaxCertificate:    "tax_certificate_path",
	model.DocumentTradeRegistry:     "trade_registry_gazette_path",
	model.DocumentSignatureCircular: "signature_circular_path",
}

// dealerRepository implements the DealerRepository interface using PostgreSQL.
type dealerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDealerRepository creates a new PostgreSQL-backed dealer repository.
func NewDealerRepository(pool *pgxpool.Pool, logger zerolog.Logger) DealerRepository {
	return &dealerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "dealer").Logger(),
	}
}

func scanDealer(row pgx.Row) (*model.Dealer, error) {
	var d model.Dealer
	var metadata []byte
	err := row.Scan(
		&d.ID, &d.Code, &d.Name, &d.ContactName, &d.ContactEmail, &d.ContactPhone,
		&d.Address, &d.City, &d.District, &d.Country, &d.EstablishmentYear, &d.Website,
		&d.TaxNumber, &d.TaxOffice, &d.TaxCertificatePath, &d.TradeRegistryGazettePath,
		&d.SignatureCircularPath, &d.Notes, &d.Status, &d.IsActive, &metadata,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Metadata = rawJSON(metadata)
	return &d, nil
}

func dealerConditions(filter model.DealerFilter) squirrel.And {
	where := squirrel.And{}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"code": pattern},
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"contact_name": pattern},
		})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": filter.Status})
	}
	if filter.IsActive != nil {
		where = append(where, squirrel.Eq{"is_active": *filter.IsActive})
	}
	return where
}

// List returns one page of dealers ordered by name.
func (r *dealerRepository) List(ctx context.Context, filter model.DealerFilter) ([]model.Dealer, int, error) {
	where := dealerConditions(filter)

	total, err := count(ctx, r.pool, psql.Select("COUNT(*)").From("dealers").Where(where))
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to count dealers")
		return nil, 0, err
	}

	query, args, err := psql.Select(dealerColumns...).
		From("dealers").
		Where(where).
		OrderBy("name ASC", "id ASC").
		Limit(uint64(filter.Page.PageSize)).
		Offset(uint64(filter.Page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build dealer query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query dealers")
		return nil, 0, fmt.Errorf("failed to query dealers: %w", err)
	}
	defer rows.Close()

	dealers := []model.Dealer{}
	for rows.Next() {
		d, err := scanDealer(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan dealer row")
			return nil, 0, fmt.Errorf("failed to scan dealer: %w", err)
		}
		dealers = append(dealers, *d)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating dealer rows")
		return nil, 0, fmt.Errorf("error iterating dealers: %w", err)
	}

	return dealers, total, nil
}

func (r *dealerRepository) getOne(ctx context.Context, column string, value any) (*model.Dealer, error) {
	query, args, err := psql.Select(dealerColumns...).From("dealers").Where(squirrel.Eq{column: value}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build dealer query: %w", err)
	}

	d, err := scanDealer(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Interface(column, value).Msg("dealer not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Interface(column, value).Msg("failed to query dealer")
		return nil, fmt.Errorf("failed to query dealer: %w", err)
	}
	return d, nil
}

// GetByID retrieves a dealer by its ID.
func (r *dealerRepository) GetByID(ctx context.Context, id int64) (*model.Dealer, error) {
	return r.getOne(ctx, "id", id)
}

// GetByCode retrieves a dealer by its code.
func (r *dealerRepository) GetByCode(ctx context.Context, code string) (*model.Dealer, error) {
	return r.getOne(ctx, "code", code)
}

// CodeExists reports whether a dealer other than excludeID uses code.
func (r *dealerRepository) CodeExists(ctx context.Context, code string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM dealers WHERE code = $1 AND id <> $2)`,
		code, excludeID,
	).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to check dealer code")
		return false, fmt.Errorf("failed to check dealer code: %w", err)
	}
	return exists, nil
}

// Create inserts a dealer and fills in its ID and timestamps.
func (r *dealerRepository) Create(ctx context.Context, d *model.Dealer) error {
	query := `
		INSERT INTO dealers (
			code, name, contact_name, contact_email, contact_phone, address, city,
			district, country, establishment_year, website, tax_number, tax_office,
			tax_certificate_path, trade_registry_gazette_path, signature_circular_path,
			notes, status, is_active, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		d.Code, d.Name, d.ContactName, d.ContactEmail, d.ContactPhone, d.Address, d.City,
		d.District, d.Country, d.EstablishmentYear, d.Website, d.TaxNumber, d.TaxOffice,
		d.TaxCertificatePath, d.TradeRegistryGazettePath, d.SignatureCircularPath,
		d.Notes, d.Status, d.IsActive, nullableJSON(d.Metadata),
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("code", d.Code).Msg("failed to create dealer")
		return wrapWriteError("create dealer", err)
	}

	r.logger.Debug().
		Int64("dealer_id", d.ID).
		Str("code", d.Code).
		Msg("dealer created successfully")

	return nil
}

// Update writes every column of a dealer except its document paths. It
// returns ErrRowNotFound when the row is gone.
func (r *dealerRepository) Update(ctx context.Context, d *model.Dealer) error {
	query := `
		UPDATE dealers SET
			code = $2, name = $3, contact_name = $4, contact_email = $5, contact_phone = $6,
			address = $7, city = $8, district = $9, country = $10, establishment_year = $11,
			website = $12, tax_number = $13, tax_office = $14, notes = $15, status = $16,
			is_active = $17, metadata = $18, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		d.ID, d.Code, d.Name, d.ContactName, d.ContactEmail, d.ContactPhone,
		d.Address, d.City, d.District, d.Country, d.EstablishmentYear,
		d.Website, d.TaxNumber, d.TaxOffice, d.Notes, d.Status,
		d.IsActive, nullableJSON(d.Metadata),
	).Scan(&d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRowNotFound
		}
		r.logger.Error().Err(err).Int64("dealer_id", d.ID).Msg("failed to update dealer")
		return wrapWriteError("update dealer", err)
	}

	return nil
}

// UpdateDocumentPath stores path in one document slot and returns the
// updated row, or nil when the dealer no longer exists.
func (r *dealerRepository) UpdateDocumentPath(ctx context.Context, id int64, slot model.DocumentSlot, path string) (*model.Dealer, error) {
	column, ok := documentColumns[slot]
	if !ok {
		return nil, fmt.Errorf("unknown document slot %q", slot)
	}

	query, args, err := psql.Update("dealers").
		Set(column, path).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(dealerColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build document update: %w", err)
	}

	d, err := scanDealer(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).
			Int64("dealer_id", id).
			Str("slot", string(slot)).
			Msg("failed to update dealer document")
		return nil, fmt.Errorf("failed to update dealer document: %w", err)
	}
	return d, nil
}

// Delete removes a dealer.
func (r *dealerRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM dealers WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("dealer_id", id).Msg("failed to delete dealer")
		return false, fmt.Errorf("failed to delete dealer: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
