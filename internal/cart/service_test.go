package cart

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pantrykit/pantry-backend/internal/ledger"
	"github.com/pantrykit/pantry-backend/pkg/db/models"
	"github.com/pantrykit/pantry-backend/pkg/enums"
	pkgerrors "github.com/pantrykit/pantry-backend/pkg/errors"
)

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepository struct {
	carts        map[uuid.UUID]*models.ShoppingCart
	lines        map[uuid.UUID]*models.CartLine
	items        map[uuid.UUID]struct{}
	nextPosition int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		carts: map[uuid.UUID]*models.ShoppingCart{},
		lines: map[uuid.UUID]*models.CartLine{},
		items: map[uuid.UUID]struct{}{},
	}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) FindActive(ctx context.Context) (*models.ShoppingCart, error) {
	for _, cart := range f.carts {
		if cart.Status == enums.CartStatusActive {
			return f.withLines(cart), nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active cart")
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.ShoppingCart, error) {
	cart, ok := f.carts[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	return f.withLines(cart), nil
}

func (f *fakeRepository) withLines(cart *models.ShoppingCart) *models.ShoppingCart {
	copied := *cart
	copied.Lines = nil
	for _, line := range f.lines {
		if line.CartID == cart.ID {
			copied.Lines = append(copied.Lines, *line)
		}
	}
	sort.Slice(copied.Lines, func(i, j int) bool {
		return copied.Lines[i].Position < copied.Lines[j].Position
	})
	return &copied
}

func (f *fakeRepository) Create(ctx context.Context, cart *models.ShoppingCart) error {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	copied := *cart
	f.carts[cart.ID] = &copied
	return nil
}

func (f *fakeRepository) Save(ctx context.Context, cart *models.ShoppingCart) error {
	copied := *cart
	copied.Lines = nil
	f.carts[cart.ID] = &copied
	return nil
}

func (f *fakeRepository) FindLine(ctx context.Context, id uuid.UUID) (*models.CartLine, error) {
	line, ok := f.lines[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	copied := *line
	return &copied, nil
}

func (f *fakeRepository) FindLineByItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartLine, error) {
	for _, line := range f.lines {
		if line.CartID == cartID && line.ItemID == itemID {
			copied := *line
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) CreateLine(ctx context.Context, line *models.CartLine) error {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	copied := *line
	f.lines[line.ID] = &copied
	return nil
}

func (f *fakeRepository) SaveLine(ctx context.Context, line *models.CartLine) error {
	copied := *line
	f.lines[line.ID] = &copied
	return nil
}

func (f *fakeRepository) DeleteLine(ctx context.Context, id uuid.UUID) error {
	delete(f.lines, id)
	return nil
}

func (f *fakeRepository) NextPosition(ctx context.Context, cartID uuid.UUID) (int, error) {
	f.nextPosition++
	return f.nextPosition, nil
}

func (f *fakeRepository) ItemExists(ctx context.Context, itemID uuid.UUID) (bool, error) {
	_, ok := f.items[itemID]
	return ok, nil
}

type fakeLedger struct {
	applied []ledger.ApplyDeltaInput
	failOn  map[uuid.UUID]error
}

func (f *fakeLedger) ApplyDelta(ctx context.Context, input ledger.ApplyDeltaInput) (*models.Item, *models.InventoryLogEntry, error) {
	if err, ok := f.failOn[input.ItemID]; ok {
		return nil, nil, err
	}
	f.applied = append(f.applied, input)
	return &models.Item{ID: input.ItemID}, &models.InventoryLogEntry{ItemID: input.ItemID, Delta: input.Delta}, nil
}

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func newService(t *testing.T, repo Repository, applier deltaApplier) Service {
	t.Helper()
	svc, err := NewService(fakeTx{}, repo, applier, nil)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func seedItem(repo *fakeRepository) uuid.UUID {
	id := uuid.New()
	repo.items[id] = struct{}{}
	return id
}

func TestActiveCartIdempotent(t *testing.T) {
	repo := newFakeRepository()
	svc := newService(t, repo, &fakeLedger{})
	ctx := context.Background()

	first, err := svc.ActiveCart(ctx)
	if err != nil {
		t.Fatalf("ActiveCart error: %v", err)
	}
	second, err := svc.ActiveCart(ctx)
	if err != nil {
		t.Fatalf("ActiveCart error: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same cart, got %s and %s", first.ID, second.ID)
	}
	if len(repo.carts) != 1 {
		t.Fatalf("expected a single cart, got %d", len(repo.carts))
	}

	// A terminal cart no longer counts as active.
	if _, err := svc.Abandon(ctx, first.ID); err != nil {
		t.Fatalf("Abandon error: %v", err)
	}
	third, err := svc.ActiveCart(ctx)
	if err != nil {
		t.Fatalf("ActiveCart error: %v", err)
	}
	if third.ID == first.ID {
		t.Fatal("expected a fresh cart after abandoning the previous one")
	}
}

func TestAddOrIncrementMergesAdditively(t *testing.T) {
	repo := newFakeRepository()
	svc := newService(t, repo, &fakeLedger{})
	ctx := context.Background()

	cart, err := svc.ActiveCart(ctx)
	if err != nil {
		t.Fatalf("ActiveCart error: %v", err)
	}
	itemID := seedItem(repo)

	if _, err := svc.AddOrIncrement(ctx, cart.ID, itemID, dec("2")); err != nil {
		t.Fatalf("AddOrIncrement error: %v", err)
	}
	updated, err := svc.AddOrIncrement(ctx, cart.ID, itemID, dec("1.5"))
	if err != nil {
		t.Fatalf("AddOrIncrement error: %v", err)
	}

	if len(updated.Lines) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(updated.Lines))
	}
	if !updated.Lines[0].Quantity.Equal(dec("3.5")) {
		t.Fatalf("expected merged quantity 3.5, got %s", updated.Lines[0].Quantity)
	}
}

func TestAddOrIncrementValidation(t *testing.T) {
	repo := newFakeRepository()
	svc := newService(t, repo, &fakeLedger{})
	ctx := context.Background()

	cart, _ := svc.ActiveCart(ctx)
	itemID := seedItem(repo)

	if _, err := svc.AddOrIncrement(ctx, cart.ID, itemID, dec("0")); err == nil {
		t.Fatal("zero quantity must be rejected")
	}
	if _, err := svc.AddOrIncrement(ctx, cart.ID, itemID, dec("-1")); err == nil {
		t.Fatal("negative quantity must be rejected")
	}

	_, err := svc.AddOrIncrement(ctx, cart.ID, uuid.New(), dec("1"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown item, got %v", err)
	}
}

func TestSetLineQuantityRemovesAtZero(t *testing.T) {
	repo := newFakeRepository()
	svc := newService(t, repo, &fakeLedger{})
	ctx := context.Background()

	cart, _ := svc.ActiveCart(ctx)
	itemID := seedItem(repo)
	withLine, err := svc.AddOrIncrement(ctx, cart.ID, itemID, dec("2"))
	if err != nil {
		t.Fatalf("AddOrIncrement error: %v", err)
	}
	lineID := withLine.Lines[0].ID

	updated, err := svc.SetLineQuantity(ctx, lineID, dec("4"))
	if err != nil {
		t.Fatalf("SetLineQuantity error: %v", err)
	}
	if !updated.Lines[0].Quantity.Equal(dec("4")) {
		t.Fatalf("expected quantity 4, got %s", updated.Lines[0].Quantity)
	}

	updated, err = svc.SetLineQuantity(ctx, lineID, dec("0"))
	if err != nil {
		t.Fatalf("SetLineQuantity error: %v", err)
	}
	if len(updated.Lines) != 0 {
		t.Fatal("expected line removed at zero quantity")
	}
}

func TestCheckoutDrainsInInsertionOrder(t *testing.T) {
	repo := newFakeRepository()
	applier := &fakeLedger{}
	svc := newService(t, repo, applier)
	ctx := context.Background()

	cart, _ := svc.ActiveCart(ctx)
	first := seedItem(repo)
	second := seedItem(repo)
	if _, err := svc.AddOrIncrement(ctx, cart.ID, first, dec("2")); err != nil {
		t.Fatalf("AddOrIncrement error: %v", err)
	}
	if _, err := svc.AddOrIncrement(ctx, cart.ID, second, dec("0.5")); err != nil {
		t.Fatalf("AddOrIncrement error: %v", err)
	}

	result, err := svc.Checkout(ctx, cart.ID)
	if err != nil {
		t.Fatalf("Checkout error: %v", err)
	}
	if result.Cart.Status != enums.CartStatusCompleted.String() {
		t.Fatalf("expected completed cart, got %s", result.Cart.Status)
	}
	if result.Cart.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}
	if len(result.AppliedLines) != 2 || len(result.FailedLines) != 0 {
		t.Fatalf("expected both lines applied, got %d applied %d failed", len(result.AppliedLines), len(result.FailedLines))
	}
	if len(applier.applied) != 2 {
		t.Fatalf("expected 2 ledger events, got %d", len(applier.applied))
	}
	if applier.applied[0].ItemID != first || applier.applied[1].ItemID != second {
		t.Fatal("expected lines drained in insertion order")
	}
	if !applier.applied[0].Delta.Equal(dec("2")) {
		t.Fatalf("expected restock delta 2, got %s", applier.applied[0].Delta)
	}
}

func TestCheckoutPartialFailureLeavesCartActive(t *testing.T) {
	repo := newFakeRepository()
	applier := &fakeLedger{failOn: map[uuid.UUID]error{}}
	svc := newService(t, repo, applier)
	ctx := context.Background()

	cart, _ := svc.ActiveCart(ctx)
	good := seedItem(repo)
	bad := seedItem(repo)
	applier.failOn[bad] = errors.New("item misconfigured")

	if _, err := svc.AddOrIncrement(ctx, cart.ID, good, dec("1")); err != nil {
		t.Fatalf("AddOrIncrement error: %v", err)
	}
	if _, err := svc.AddOrIncrement(ctx, cart.ID, bad, dec("1")); err != nil {
		t.Fatalf("AddOrIncrement error: %v", err)
	}

	result, err := svc.Checkout(ctx, cart.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePartialCheckout {
		t.Fatalf("expected partial checkout error, got %v", err)
	}
	if !pkgerrors.MetadataFor(typed.Code()).Retryable {
		t.Fatal("partial checkout must be retryable")
	}
	if result.Cart.Status != enums.CartStatusActive.String() {
		t.Fatalf("cart must stay active, got %s", result.Cart.Status)
	}
	if len(result.Cart.Lines) != 1 || result.Cart.Lines[0].ItemID != bad {
		t.Fatal("expected only the failed line to remain")
	}
	if len(result.AppliedLines) != 1 || len(result.FailedLines) != 1 {
		t.Fatalf("expected 1 applied and 1 failed, got %d/%d", len(result.AppliedLines), len(result.FailedLines))
	}

	// Fixing the item and retrying drains the rest and completes the cart.
	delete(applier.failOn, bad)
	retry, err := svc.Checkout(ctx, cart.ID)
	if err != nil {
		t.Fatalf("retry checkout error: %v", err)
	}
	if retry.Cart.Status != enums.CartStatusCompleted.String() {
		t.Fatalf("expected completed after retry, got %s", retry.Cart.Status)
	}
}

func TestTerminalCartRejectsMutations(t *testing.T) {
	repo := newFakeRepository()
	svc := newService(t, repo, &fakeLedger{})
	ctx := context.Background()

	cart, _ := svc.ActiveCart(ctx)
	itemID := seedItem(repo)
	withLine, err := svc.AddOrIncrement(ctx, cart.ID, itemID, dec("1"))
	if err != nil {
		t.Fatalf("AddOrIncrement error: %v", err)
	}

	abandoned, err := svc.Abandon(ctx, cart.ID)
	if err != nil {
		t.Fatalf("Abandon error: %v", err)
	}
	if abandoned.Status != enums.CartStatusAbandoned.String() {
		t.Fatalf("expected abandoned, got %s", abandoned.Status)
	}
	if len(abandoned.Lines) != 1 {
		t.Fatal("abandoning must keep lines as history")
	}

	ops := []func() error{
		func() error { _, err := svc.AddOrIncrement(ctx, cart.ID, itemID, dec("1")); return err },
		func() error { _, err := svc.SetLineQuantity(ctx, withLine.Lines[0].ID, dec("2")); return err },
		func() error { _, err := svc.RemoveLine(ctx, withLine.Lines[0].ID); return err },
		func() error { _, err := svc.Checkout(ctx, cart.ID); return err },
		func() error { _, err := svc.Abandon(ctx, cart.ID); return err },
	}
	for i, op := range ops {
		typed := pkgerrors.As(op())
		if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("op %d: expected state conflict on terminal cart", i)
		}
	}
}

func TestCheckoutEmptyCartCompletes(t *testing.T) {
	repo := newFakeRepository()
	svc := newService(t, repo, &fakeLedger{})
	ctx := context.Background()

	cart, _ := svc.ActiveCart(ctx)
	result, err := svc.Checkout(ctx, cart.ID)
	if err != nil {
		t.Fatalf("Checkout error: %v", err)
	}
	if result.Cart.Status != enums.CartStatusCompleted.String() {
		t.Fatalf("expected completed, got %s", result.Cart.Status)
	}
}
