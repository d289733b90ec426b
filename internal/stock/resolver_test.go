package stock

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/pantrykit/pantry-backend/pkg/db/models"
	"github.com/pantrykit/pantry-backend/pkg/enums"
)

func strPtr(s string) *string { return &s }

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func TestResolvePackageOnlyItem(t *testing.T) {
	item := &models.Item{
		TargetUnit:     enums.TargetUnitPackage,
		PackedQuantity: 3,
		// Unpacked is meaningless without a measurement unit and must be ignored.
		UnpackedQuantity: dec("0.5"),
	}

	if got := Resolve(item); !got.Equal(dec("3")) {
		t.Fatalf("expected 3, got %s", got)
	}
}

func TestResolvePackageTargetWithMeasurementUnit(t *testing.T) {
	item := &models.Item{
		TargetUnit:       enums.TargetUnitPackage,
		MeasurementUnit:  strPtr("g"),
		AmountPerPackage: dec("500"),
		PackedQuantity:   2,
		UnpackedQuantity: dec("250"),
	}

	if got := Resolve(item); !got.Equal(dec("2.5")) {
		t.Fatalf("expected 2.5 packages, got %s", got)
	}
}

func TestResolveMeasurementTarget(t *testing.T) {
	tests := []struct {
		name     string
		packed   int
		unpacked string
		perPack  string
		want     string
	}{
		{"empty", 0, "0", "1", "0"},
		{"only unpacked", 0, "0.75", "1", "0.75"},
		{"packed converts", 2, "0", "1.5", "3"},
		{"mixed", 3, "0.25", "0.5", "1.75"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			item := &models.Item{
				TargetUnit:       enums.TargetUnitMeasurement,
				MeasurementUnit:  strPtr("L"),
				AmountPerPackage: dec(tc.perPack),
				PackedQuantity:   tc.packed,
				UnpackedQuantity: dec(tc.unpacked),
			}
			if got := Resolve(item); !got.Equal(dec(tc.want)) {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	item := &models.Item{
		TargetUnit:       enums.TargetUnitMeasurement,
		MeasurementUnit:  strPtr("g"),
		AmountPerPackage: dec("250"),
		PackedQuantity:   4,
		UnpackedQuantity: dec("125"),
	}

	first := Resolve(item)
	second := Resolve(item)
	if !first.Equal(second) {
		t.Fatalf("resolve must be deterministic: %s vs %s", first, second)
	}
}

func TestSuggestedQuantity(t *testing.T) {
	item := &models.Item{TargetQuantity: dec("5")}

	if got := SuggestedQuantity(item, dec("2")); !got.Equal(dec("3")) {
		t.Fatalf("expected 3, got %s", got)
	}
	if got := SuggestedQuantity(item, dec("7")); !got.IsZero() {
		t.Fatalf("overstock should suggest zero, got %s", got)
	}
	if got := SuggestedQuantity(item, dec("5")); !got.IsZero() {
		t.Fatalf("at target should suggest zero, got %s", got)
	}
}
