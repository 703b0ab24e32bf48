package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kitchenledger/internal/dto"
	"kitchenledger/internal/model"
	"kitchenledger/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var wasteReasons = map[string]bool{
	model.WasteExpired:     true,
	model.WasteDamaged:     true,
	model.WasteCookedWrong: true,
	model.WasteDropped:     true,
	model.WasteOther:       true,
}

type WasteService interface {
	// LogWaste deducts stock and records the waste as one transaction.
	LogWaste(ctx context.Context, loggedBy uuid.UUID, req dto.LogWasteRequest) (*dto.WasteResponse, error)
	List(ctx context.Context, filter dto.WasteFilter) ([]dto.WasteResponse, error)
}

type wasteService struct {
	txm       repository.Transactor
	waste     repository.WasteRepository
	inventory repository.InventoryRepository
}

func NewWasteService(txm repository.Transactor, waste repository.WasteRepository, inventory repository.InventoryRepository) WasteService {
	return &wasteService{txm: txm, waste: waste, inventory: inventory}
}

func (s *wasteService) LogWaste(ctx context.Context, loggedBy uuid.UUID, req dto.LogWasteRequest) (*dto.WasteResponse, error) {
	itemID, err := uuid.Parse(req.InventoryItemID)
	if err != nil {
		return nil, validationf("invalid inventory_item_id %q", req.InventoryItemID)
	}
	if req.Quantity <= 0 {
		return nil, validationf("quantity must be greater than zero")
	}
	reason := req.Reason
	if reason == "" {
		reason = model.WasteOther
	}
	if !wasteReasons[reason] {
		return nil, validationf("unknown waste reason %q", reason)
	}

	var (
		rec       model.WasteRecord
		remaining float64
	)
	err = s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		item, err := s.inventory.LockByIDTx(tx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(KindIngredient, itemID)
			}
			return err
		}
		if item.Quantity < req.Quantity {
			return &InsufficientStockError{
				IngredientID: item.ID,
				Ingredient:   item.Name,
				Unit:         item.Unit,
				OnHand:       item.Quantity,
				Needed:       req.Quantity,
			}
		}
		if err := s.inventory.DeductTx(tx, item.ID, req.Quantity); err != nil {
			return fmt.Errorf("deducting %s: %w", item.Name, err)
		}
		rec = model.WasteRecord{
			InventoryItemID: item.ID,
			ItemName:        item.Name,
			Quantity:        req.Quantity,
			Unit:            item.Unit,
			Reason:          reason,
			LoggedBy:        loggedBy,
		}
		remaining = item.Quantity - req.Quantity
		return s.waste.CreateTx(tx, &rec)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("item", rec.ItemName).
		Float64("quantity", rec.Quantity).
		Str("reason", rec.Reason).
		Msg("waste_service: waste logged")

	resp := wasteToResponse(&rec)
	resp.RemainingStock = remaining
	return &resp, nil
}

func (s *wasteService) List(ctx context.Context, filter dto.WasteFilter) ([]dto.WasteResponse, error) {
	var itemID *uuid.UUID
	if filter.InventoryItemID != "" {
		id, err := uuid.Parse(filter.InventoryItemID)
		if err != nil {
			return nil, validationf("invalid inventory_item_id %q", filter.InventoryItemID)
		}
		itemID = &id
	}
	records, err := s.waste.List(ctx, itemID, filter.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.WasteResponse, 0, len(records))
	for i := range records {
		out = append(out, wasteToResponse(&records[i]))
	}
	return out, nil
}

func wasteToResponse(w *model.WasteRecord) dto.WasteResponse {
	created := ""
	if !w.CreatedAt.IsZero() {
		created = w.CreatedAt.Format(time.RFC3339)
	}
	return dto.WasteResponse{
		ID:              w.ID.String(),
		InventoryItemID: w.InventoryItemID.String(),
		ItemName:        w.ItemName,
		Quantity:        w.Quantity,
		Unit:            string(w.Unit),
		Reason:          w.Reason,
		LoggedBy:        w.LoggedBy.String(),
		CreatedAt:       created,
	}
}
