// Package cart aggregates upcoming purchases into a single active shopping
// cart and turns a completed trip into restock events through the ledger.
package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/pantrykit/pantry-backend/internal/ledger"
	"github.com/pantrykit/pantry-backend/pkg/db/models"
	"github.com/pantrykit/pantry-backend/pkg/enums"
	pkgerrors "github.com/pantrykit/pantry-backend/pkg/errors"
	"github.com/pantrykit/pantry-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type deltaApplier interface {
	ApplyDelta(ctx context.Context, input ledger.ApplyDeltaInput) (*models.Item, *models.InventoryLogEntry, error)
}

// Service exposes shopping cart operations.
type Service interface {
	ActiveCart(ctx context.Context) (*CartDTO, error)
	AddOrIncrement(ctx context.Context, cartID, itemID uuid.UUID, quantity decimal.Decimal) (*CartDTO, error)
	SetLineQuantity(ctx context.Context, lineID uuid.UUID, quantity decimal.Decimal) (*CartDTO, error)
	RemoveLine(ctx context.Context, lineID uuid.UUID) (*CartDTO, error)
	Checkout(ctx context.Context, cartID uuid.UUID) (*CheckoutResultDTO, error)
	Abandon(ctx context.Context, cartID uuid.UUID) (*CartDTO, error)
}

type service struct {
	tx      txRunner
	repo    Repository
	ledger  deltaApplier
	metrics *metrics.InventoryMetrics

	// guards the get-or-create of the single active cart
	activeMu sync.Mutex
}

// NewService wires the cart service with its repository and the event ledger.
func NewService(tx txRunner, repo Repository, applier deltaApplier, m *metrics.InventoryMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if applier == nil {
		return nil, fmt.Errorf("delta applier required")
	}
	return &service{tx: tx, repo: repo, ledger: applier, metrics: m}, nil
}

// ActiveCart returns the single active cart, creating one when none exists.
// Calling it repeatedly always yields the same cart until that cart reaches a
// terminal status.
func (s *service) ActiveCart(ctx context.Context) (*CartDTO, error) {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()

	cart, err := s.repo.FindActive(ctx)
	if err == nil {
		return NewCartDTO(cart), nil
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		return nil, err
	}

	created := &models.ShoppingCart{Status: enums.CartStatusActive}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, created)
	})
	if err != nil {
		return nil, err
	}
	created.Lines = []models.CartLine{}
	return NewCartDTO(created), nil
}

// AddOrIncrement puts an item on the cart; adding an item already present
// merges additively into the existing line.
func (s *service) AddOrIncrement(ctx context.Context, cartID, itemID uuid.UUID, quantity decimal.Decimal) (*CartDTO, error) {
	if cartID == uuid.Nil || itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id and item id are required")
	}
	if !quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	cart, err := s.loadActiveCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ItemExists(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		line, err := txRepo.FindLineByItem(ctx, cart.ID, itemID)
		if err != nil {
			return err
		}
		if line != nil {
			line.Quantity = line.Quantity.Add(quantity)
			return txRepo.SaveLine(ctx, line)
		}

		position, err := txRepo.NextPosition(ctx, cart.ID)
		if err != nil {
			return err
		}
		return txRepo.CreateLine(ctx, &models.CartLine{
			CartID:   cart.ID,
			ItemID:   itemID,
			Quantity: quantity,
			Position: position,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, cart.ID)
}

// SetLineQuantity replaces a line's quantity; zero or less removes the line.
func (s *service) SetLineQuantity(ctx context.Context, lineID uuid.UUID, quantity decimal.Decimal) (*CartDTO, error) {
	line, err := s.repo.FindLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadActiveCart(ctx, line.CartID); err != nil {
		return nil, err
	}

	if quantity.IsPositive() {
		line.Quantity = quantity
		if err := s.repo.SaveLine(ctx, line); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.DeleteLine(ctx, line.ID); err != nil {
			return nil, err
		}
	}
	return s.reload(ctx, line.CartID)
}

func (s *service) RemoveLine(ctx context.Context, lineID uuid.UUID) (*CartDTO, error) {
	line, err := s.repo.FindLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadActiveCart(ctx, line.CartID); err != nil {
		return nil, err
	}
	if err := s.repo.DeleteLine(ctx, line.ID); err != nil {
		return nil, err
	}
	return s.reload(ctx, line.CartID)
}

// Checkout drains the cart in insertion order, applying each line as a restock
// event and deleting it once applied. Lines that fail stay on the cart; the
// cart stays active and the combined per-line errors come back as a retryable
// partial-checkout error. When every line drains the cart is completed.
func (s *service) Checkout(ctx context.Context, cartID uuid.UUID) (*CheckoutResultDTO, error) {
	cart, err := s.loadActiveCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	var (
		applied []uuid.UUID
		failed  []uuid.UUID
		errs    error
	)
	for i := range cart.Lines {
		line := cart.Lines[i]

		_, _, applyErr := s.ledger.ApplyDelta(ctx, ledger.ApplyDeltaInput{
			ItemID: line.ItemID,
			Delta:  line.Quantity,
		})
		if applyErr != nil {
			failed = append(failed, line.ID)
			errs = multierr.Append(errs, fmt.Errorf("line %s: %w", line.ID, applyErr))
			s.metrics.IncCheckoutLine("failed")
			continue
		}

		if err := s.repo.DeleteLine(ctx, line.ID); err != nil {
			failed = append(failed, line.ID)
			errs = multierr.Append(errs, fmt.Errorf("line %s: %w", line.ID, err))
			s.metrics.IncCheckoutLine("failed")
			continue
		}
		applied = append(applied, line.ID)
		s.metrics.IncCheckoutLine("applied")
	}

	if errs != nil {
		reloaded, err := s.repo.FindByID(ctx, cart.ID)
		if err != nil {
			return nil, err
		}
		result := &CheckoutResultDTO{
			Cart:         NewCartDTO(reloaded),
			AppliedLines: applied,
			FailedLines:  failed,
		}
		return result, pkgerrors.
			Wrap(pkgerrors.CodePartialCheckout, errs, "checkout applied partially").
			WithDetails(map[string]any{"failed_lines": failed})
	}

	now := time.Now().UTC()
	cart.Status = enums.CartStatusCompleted
	cart.CompletedAt = &now
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Save(ctx, cart)
	})
	if err != nil {
		return nil, err
	}

	reloaded, err := s.repo.FindByID(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	return &CheckoutResultDTO{
		Cart:         NewCartDTO(reloaded),
		AppliedLines: applied,
	}, nil
}

// Abandon closes the cart without touching inventory. Lines stay behind as a
// record of the planned trip.
func (s *service) Abandon(ctx context.Context, cartID uuid.UUID) (*CartDTO, error) {
	cart, err := s.loadActiveCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	cart.Status = enums.CartStatusAbandoned
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Save(ctx, cart)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, cart.ID)
}

func (s *service) loadActiveCart(ctx context.Context, cartID uuid.UUID) (*models.ShoppingCart, error) {
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	cart, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cart is %s", cart.Status))
	}
	return cart, nil
}

func (s *service) reload(ctx context.Context, cartID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return NewCartDTO(cart), nil
}
