package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/parcelbox/parcel-service/internal/database"
	"github.com/parcelbox/parcel-service/internal/model"
)

type ParcelRepository interface {
	Create(ctx context.Context, params model.CreateParcelParams) error
	// Query returns one page of the session's parcels and the number of
	// rows matching the filter before pagination.
	Query(ctx context.Context, filter model.ParcelFilter) ([]model.ParcelRow, int, error)
	FindByIDAndSession(ctx context.Context, id, sessionID string) (*model.ParcelRow, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) ParcelRepository
}

// parcelRowColumns lists the columns scanned into model.ParcelRow.
var parcelRowColumns = []string{
	"p.id", "p.title", "p.weight", "p.content_value", "p.delivery_cost",
	"p.type_id", "p.session_id", "p.created_at", "pt.name AS type_name",
}

type parcelRepo struct {
	db database.DBTX
}

func NewParcelRepository(db *sqlx.DB) ParcelRepository {
	return &parcelRepo{db: db}
}

func (r *parcelRepo) WithTx(tx *sqlx.Tx) ParcelRepository {
	return &parcelRepo{db: tx}
}

func (r *parcelRepo) Create(ctx context.Context, params model.CreateParcelParams) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO parcels (id, title, weight, content_value, type_id, session_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, params.ID, params.Title, params.Weight, params.ContentValue, params.TypeID, params.SessionID)
	if err != nil {
		return fmt.Errorf("insert parcel: %w", err)
	}
	return nil
}

func joinedParcels(columns ...string) sq.SelectBuilder {
	return psq.Select(columns...).
		From("parcels p").
		Join("parcel_types pt ON pt.id = p.type_id")
}

// applyParcelFilter adds the filter predicate shared by the count and page
// queries.
func applyParcelFilter(qb sq.SelectBuilder, filter model.ParcelFilter) sq.SelectBuilder {
	qb = qb.Where(sq.Eq{"p.session_id": filter.SessionID})
	if filter.TypeID != nil {
		qb = qb.Where(sq.Eq{"p.type_id": *filter.TypeID})
	}
	if filter.HasDeliveryCost != nil {
		if *filter.HasDeliveryCost {
			qb = qb.Where(sq.NotEq{"p.delivery_cost": nil})
		} else {
			qb = qb.Where(sq.Eq{"p.delivery_cost": nil})
		}
	}
	return qb
}

func (r *parcelRepo) Query(ctx context.Context, filter model.ParcelFilter) ([]model.ParcelRow, int, error) {
	if filter.Offset < 0 || filter.Limit < 0 {
		return nil, 0, fmt.Errorf("invalid parcel page: offset %d, limit %d", filter.Offset, filter.Limit)
	}

	countSQL, countArgs, err := applyParcelFilter(joinedParcels("COUNT(*)"), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building parcel count query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("counting parcels: %w", err)
	}

	qb := applyParcelFilter(joinedParcels(parcelRowColumns...), filter).
		OrderBy("p.created_at", "p.id")
	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		qb = qb.Offset(uint64(filter.Offset))
	}

	pageSQL, pageArgs, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building parcel page query: %w", err)
	}

	rows := []model.ParcelRow{}
	if err := r.db.SelectContext(ctx, &rows, pageSQL, pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("querying parcels: %w", err)
	}

	return rows, total, nil
}

func (r *parcelRepo) FindByIDAndSession(ctx context.Context, id, sessionID string) (*model.ParcelRow, error) {
	query, args, err := joinedParcels(parcelRowColumns...).
		Where(sq.Eq{"p.id": id}).
		Where(sq.Eq{"p.session_id": sessionID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building parcel lookup query: %w", err)
	}

	var row model.ParcelRow
	err = r.db.GetContext(ctx, &row, query, args...)
	return HandleNotFound(&row, err)
}
