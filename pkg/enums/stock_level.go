package enums

// StockLevel is the derived replenishment state of an item. It is computed on
// demand and never persisted.
type StockLevel string

const (
	// StockLevelOK means the current quantity meets or exceeds the target.
	StockLevelOK StockLevel = "ok"
	// StockLevelLow means the quantity sits between threshold and target.
	StockLevelLow StockLevel = "low"
	// StockLevelDue means the quantity is at or below the refill threshold.
	StockLevelDue StockLevel = "due_for_restock"
	// StockLevelOverdue means the item's effective due date has passed.
	StockLevelOverdue StockLevel = "overdue"
)

// String implements fmt.Stringer.
func (s StockLevel) String() string {
	return string(s)
}
