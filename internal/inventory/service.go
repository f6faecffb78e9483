package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	StockCard(ctx context.Context, productID int64, batchNo string) ([]StockCardEntry, error)
}

// Service posts stock movements for the returns workflow.
type Service struct {
	repo RepositoryPort
}

// NewService constructs inventory service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// PostOutbound decrements the batch balance and records an OUT movement. The
// balance row is locked for the duration of the transaction.
func (s *Service) PostOutbound(ctx context.Context, input OutboundInput) (Movement, error) {
	if input.ProductID == 0 || input.BatchNo == "" || input.Qty <= 0 {
		return Movement{}, ErrValidation
	}
	if input.Code == "" {
		input.Code = fmt.Sprintf("OUT-%d", time.Now().UnixNano())
	}
	movement := Movement{
		Code:      input.Code,
		Type:      MovementTypeOut,
		ProductID: input.ProductID,
		BatchNo:   input.BatchNo,
		Qty:       input.Qty,
		RefModule: input.RefModule,
		RefID:     input.RefID,
		Note:      input.Note,
		PostedAt:  time.Now(),
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		balance, err := tx.GetBalanceForUpdate(ctx, input.ProductID, input.BatchNo)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrInsufficientStock
			}
			return err
		}
		if balance.Qty < input.Qty {
			return ErrInsufficientStock
		}
		balance.Qty -= input.Qty
		if err := tx.UpsertBalance(ctx, balance); err != nil {
			return err
		}
		id, err := tx.InsertMovement(ctx, movement)
		if err != nil {
			return err
		}
		movement.ID = id
		return nil
	})
	if err != nil {
		return Movement{}, err
	}
	return movement, nil
}

// GetStockCard returns the stock card for a product batch.
func (s *Service) GetStockCard(ctx context.Context, productID int64, batchNo string) ([]StockCardEntry, error) {
	if productID == 0 || batchNo == "" {
		return nil, ErrValidation
	}
	return s.repo.StockCard(ctx, productID, batchNo)
}
