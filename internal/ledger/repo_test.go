package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pantrykit/pantry-backend/pkg/db/models"
	"github.com/pantrykit/pantry-backend/pkg/enums"
	pkgerrors "github.com/pantrykit/pantry-backend/pkg/errors"
	"github.com/pantrykit/pantry-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ledger_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.TagType{},
		&models.Tag{},
		&models.Vendor{},
		&models.Item{},
		&models.InventoryLogEntry{},
	))
	return db
}

func seedItem(t *testing.T, db *gorm.DB) *models.Item {
	t.Helper()
	item := packageOnlyItem(2)
	require.NoError(t, db.Create(item).Error)
	return item
}

func seedEntry(t *testing.T, db *gorm.DB, itemID uuid.UUID, kind enums.LogEntryKind, delta string, occurredAt, createdAt time.Time) *models.InventoryLogEntry {
	t.Helper()
	entry := &models.InventoryLogEntry{
		ID:         uuid.New(),
		ItemID:     itemID,
		Kind:       kind,
		Delta:      dec(delta),
		Quantity:   dec("0"),
		OccurredAt: occurredAt,
		CreatedAt:  createdAt,
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

func TestRepositoryFindItem(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := seedItem(t, db)

	found, err := repo.FindItem(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, item.ID, found.ID)
	require.Equal(t, 2, found.PackedQuantity)

	_, err = repo.FindItem(ctx, uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestRepositorySaveItemCounters(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := seedItem(t, db)
	item.PackedQuantity = 7
	item.UnpackedQuantity = dec("0.5")
	require.NoError(t, repo.SaveItemCounters(ctx, item))

	found, err := repo.FindItem(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, 7, found.PackedQuantity)
	require.True(t, found.UnpackedQuantity.Equal(dec("0.5")))
}

func TestRepositoryListByItemIDOrdering(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := seedItem(t, db)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// A back-dated event recorded last still sorts by when it happened; two
	// events at the same instant fall back to insertion order.
	oldest := seedEntry(t, db, item.ID, enums.LogEntryKindRestock, "2", base.Add(-48*time.Hour), base)
	tieFirst := seedEntry(t, db, item.ID, enums.LogEntryKindConsume, "-1", base, base.Add(time.Second))
	tieSecond := seedEntry(t, db, item.ID, enums.LogEntryKindConsume, "-1", base, base.Add(2*time.Second))
	seedEntry(t, db, uuid.New(), enums.LogEntryKindRestock, "9", base, base)

	entries, next, err := repo.ListByItemID(ctx, item.ID, pagination.Params{})
	require.NoError(t, err)
	require.Empty(t, next)
	require.Len(t, entries, 3)
	require.Equal(t, tieSecond.ID, entries[0].ID)
	require.Equal(t, tieFirst.ID, entries[1].ID)
	require.Equal(t, oldest.ID, entries[2].ID)
}

func TestRepositoryListByItemIDPagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := seedItem(t, db)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedEntry(t, db, item.ID, enums.LogEntryKindConsume, "-1", base.Add(time.Duration(i)*time.Hour), base.Add(time.Duration(i)*time.Hour))
	}

	firstPage, next, err := repo.ListByItemID(ctx, item.ID, pagination.Params{Limit: 3})
	require.NoError(t, err)
	require.Len(t, firstPage, 3)
	require.NotEmpty(t, next)

	secondPage, next, err := repo.ListByItemID(ctx, item.ID, pagination.Params{Limit: 3, Cursor: next})
	require.NoError(t, err)
	require.Len(t, secondPage, 2)
	require.Empty(t, next)
	require.True(t, firstPage[2].OccurredAt.After(secondPage[0].OccurredAt))

	_, _, err = repo.ListByItemID(ctx, item.ID, pagination.Params{Cursor: "not base64!"})
	require.Error(t, err)
}

func TestRepositoryLastRestockAt(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := seedItem(t, db)

	last, err := repo.LastRestockAt(ctx, item.ID)
	require.NoError(t, err)
	require.Nil(t, last)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	seedEntry(t, db, item.ID, enums.LogEntryKindRestock, "2", base, base)
	seedEntry(t, db, item.ID, enums.LogEntryKindConsume, "-1", base.Add(time.Hour), base.Add(time.Hour))
	seedEntry(t, db, item.ID, enums.LogEntryKindCorrection, "5", base.Add(2*time.Hour), base.Add(2*time.Hour))

	last, err = repo.LastRestockAt(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, last)
	require.True(t, last.Equal(base))
}

func TestRepositoryDeleteByItemID(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := seedItem(t, db)
	other := packageOnlyItem(1)
	require.NoError(t, db.Create(other).Error)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	seedEntry(t, db, item.ID, enums.LogEntryKindRestock, "1", base, base)
	seedEntry(t, db, item.ID, enums.LogEntryKindConsume, "-1", base, base)
	kept := seedEntry(t, db, other.ID, enums.LogEntryKindRestock, "1", base, base)

	require.NoError(t, repo.DeleteByItemID(ctx, item.ID))

	entries, _, err := repo.ListByItemID(ctx, item.ID, pagination.Params{})
	require.NoError(t, err)
	require.Empty(t, entries)

	entries, _, err = repo.ListByItemID(ctx, other.ID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, kept.ID, entries[0].ID)
}
