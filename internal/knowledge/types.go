package knowledge

import "time"

// FAQ is one tenant-authored question/answer pair.
type FAQ struct {
	ID       string
	Question string
	Answer   string
	Position int
}

// MenuItem is one catalog line: a service or product with its price.
type MenuItem struct {
	ID          string
	Name        string
	Description string
	PriceYen    int
	Position    int
}

// StockStatus is the availability state of a stock item.
type StockStatus string

// Stock statuses in display priority order: items customers can actually
// buy come first in unranked snapshots.
const (
	StockInStock StockStatus = "in_stock"
	StockLow     StockStatus = "low"
	StockOut     StockStatus = "out"
	StockUnset   StockStatus = ""
)

// Rank returns the snapshot ordering rank: in_stock → low → out → unset.
func (s StockStatus) Rank() int {
	switch s {
	case StockInStock:
		return 0
	case StockLow:
		return 1
	case StockOut:
		return 2
	default:
		return 3
	}
}

// Label returns the human-readable availability label used in passages.
func (s StockStatus) Label() string {
	switch s {
	case StockInStock:
		return "在庫あり"
	case StockLow:
		return "残りわずか"
	case StockOut:
		return "在庫切れ"
	default:
		return "在庫状況未設定"
	}
}

// ParseStockStatus maps a stored status string to a StockStatus,
// tolerating unknown values as unset.
func ParseStockStatus(raw string) StockStatus {
	switch StockStatus(raw) {
	case StockInStock, StockLow, StockOut:
		return StockStatus(raw)
	default:
		return StockUnset
	}
}

// StockItem is one sellable item with its availability.
type StockItem struct {
	ID     string
	Name   string
	Note   string
	Status StockStatus
}

// HoursDocument is a stored business-hours document in whichever schema
// version it was written. The hours adapter owns schema detection and
// normalization; the repository hands the JSON through untouched.
type HoursDocument struct {
	ID        string
	Payload   []byte
	UpdatedAt time.Time
}

// Candidate is one semantic-index entry returned by vector search,
// carrying the raw vector similarity so the retriever can fuse it with a
// lexical subscore.
type Candidate struct {
	ID         string
	Content    string
	Similarity float64
}
