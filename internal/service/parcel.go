package service

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/parcelbox/parcel-service/internal/audit"
	"github.com/parcelbox/parcel-service/internal/config"
	"github.com/parcelbox/parcel-service/internal/database"
	apperrors "github.com/parcelbox/parcel-service/internal/errors"
	"github.com/parcelbox/parcel-service/internal/model"
	"github.com/parcelbox/parcel-service/internal/repository"
	"github.com/parcelbox/parcel-service/internal/util"
)

// TxRunner runs a unit of work inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

type CreateParcelParams struct {
	Title        string
	Weight       float64
	ContentValue float64
	TypeID       int64
}

type ListParcelsParams struct {
	TypeID          *int64
	HasDeliveryCost *bool
	Page            int
	PageSize        int
}

type ParcelPage struct {
	Items []model.ParcelRow
	Total int
}

type ParcelService struct {
	db         TxRunner
	parcelRepo repository.ParcelRepository
	typeRepo   repository.ParcelTypeRepository
}

func NewParcelService(
	db TxRunner,
	parcelRepo repository.ParcelRepository,
	typeRepo repository.ParcelTypeRepository,
) *ParcelService {
	return &ParcelService{
		db:         db,
		parcelRepo: parcelRepo,
		typeRepo:   typeRepo,
	}
}

// Create registers a parcel for the session and returns its new id. The type
// check and the insert share one transaction, so a rejected parcel leaves no
// row behind.
func (s *ParcelService) Create(ctx context.Context, sessionID string, params CreateParcelParams) (string, error) {
	if sessionID == "" {
		return "", apperrors.SessionNotFound()
	}

	id := uuid.NewString()

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		exists, err := s.typeRepo.WithTx(tx).Exists(ctx, params.TypeID)
		if err != nil {
			return apperrors.Database(err)
		}
		if !exists {
			return apperrors.InvalidParcelType()
		}

		if err := s.parcelRepo.WithTx(tx).Create(ctx, model.CreateParcelParams{
			ID:           id,
			Title:        params.Title,
			Weight:       params.Weight,
			ContentValue: params.ContentValue,
			TypeID:       params.TypeID,
			SessionID:    sessionID,
		}); err != nil {
			return apperrors.Database(err)
		}
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return "", err
		}
		// begin or commit failed
		return "", apperrors.Database(err)
	}

	log.Info().
		Str("parcelId", id).
		Str("session", util.MaskToken(sessionID)).
		Int64("typeId", params.TypeID).
		Msg("parcel created")

	audit.Log(ctx, audit.Event{
		Type:      audit.EventParcelCreate,
		SessionID: sessionID,
		ParcelID:  id,
		Details: map[string]interface{}{
			"type_id": params.TypeID,
		},
	})

	return id, nil
}

func (s *ParcelService) ListTypes(ctx context.Context) ([]model.ParcelType, error) {
	types, err := s.typeRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return types, nil
}

// List returns one page of the session's parcels together with the number of
// parcels matching the filter across all pages.
func (s *ParcelService) List(ctx context.Context, sessionID string, params ListParcelsParams) (*ParcelPage, error) {
	if sessionID == "" {
		return nil, apperrors.SessionNotFound()
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = config.DefaultPageSize
	}
	if page-1 > math.MaxInt/pageSize {
		return nil, apperrors.InvalidInput("page", "out of range")
	}

	rows, total, err := s.parcelRepo.Query(ctx, model.ParcelFilter{
		SessionID:       sessionID,
		TypeID:          params.TypeID,
		HasDeliveryCost: params.HasDeliveryCost,
		Offset:          (page - 1) * pageSize,
		Limit:           pageSize,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	return &ParcelPage{Items: rows, Total: total}, nil
}

// Get returns the parcel only when it belongs to the session. Unknown ids,
// malformed ids and parcels of other sessions all yield the same not-found
// error.
func (s *ParcelService) Get(ctx context.Context, sessionID, id string) (*model.ParcelRow, error) {
	if sessionID == "" {
		return nil, apperrors.SessionNotFound()
	}

	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NotFound("Parcel")
	}

	row, err := s.parcelRepo.FindByIDAndSession(ctx, id, sessionID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if row == nil {
		return nil, apperrors.NotFound("Parcel")
	}

	return row, nil
}
