package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/parcelbox/parcel-service/internal/database"
	"github.com/parcelbox/parcel-service/internal/model"
)

type ParcelTypeRepository interface {
	Exists(ctx context.Context, id int64) (bool, error)
	FindAll(ctx context.Context) ([]model.ParcelType, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) ParcelTypeRepository
}

type parcelTypeRepo struct {
	db database.DBTX
}

func NewParcelTypeRepository(db *sqlx.DB) ParcelTypeRepository {
	return &parcelTypeRepo{db: db}
}

func (r *parcelTypeRepo) WithTx(tx *sqlx.Tx) ParcelTypeRepository {
	return &parcelTypeRepo{db: tx}
}

func (r *parcelTypeRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM parcel_types WHERE id = $1)
	`, id)
	if err != nil {
		return false, fmt.Errorf("check parcel type: %w", err)
	}
	return exists, nil
}

func (r *parcelTypeRepo) FindAll(ctx context.Context) ([]model.ParcelType, error) {
	types := []model.ParcelType{}
	err := r.db.SelectContext(ctx, &types, `
		SELECT id, name FROM parcel_types ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list parcel types: %w", err)
	}
	return types, nil
}
