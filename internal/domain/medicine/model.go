package medicine

import (
	"strings"
	"time"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/backend"
)

const (
	// DefaultLowStock is the stock level at or below which an item is flagged.
	DefaultLowStock = 10
	expiringWindow  = 30 * 24 * time.Hour
)

type Medicine = backend.Medicine

// Item is a catalogue entry annotated for the admin table.
type Item struct {
	Medicine
	LowStock     bool `json:"lowStock"`
	Expired      bool `json:"expired"`
	ExpiringSoon bool `json:"expiringSoon"`
}

func newItem(m Medicine, threshold int, now time.Time) Item {
	it := Item{Medicine: m, LowStock: m.Stock <= threshold}
	if exp, err := time.ParseInLocation("2006-01-02", m.ExpiryDate, now.Location()); err == nil {
		it.Expired = !now.Before(exp.AddDate(0, 0, 1))
		it.ExpiringSoon = !it.Expired && exp.Sub(now) <= expiringWindow
	}
	return it
}

// Filter narrows the catalogue. Threshold 0 means DefaultLowStock.
type Filter struct {
	Search    string `query:"search"`
	Category  string `query:"category"`
	LowStock  bool   `query:"low_stock"`
	Threshold int    `query:"threshold"`
}

func (f Filter) threshold() int {
	if f.Threshold > 0 {
		return f.Threshold
	}
	return DefaultLowStock
}

func (f Filter) match(it Item) bool {
	if f.LowStock && !it.LowStock {
		return false
	}
	if f.Category != "" && !strings.EqualFold(it.Category, f.Category) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		return strings.Contains(strings.ToLower(it.Name), q) ||
			strings.Contains(strings.ToLower(it.Category), q) ||
			strings.Contains(strings.ToLower(it.Manufacturer), q)
	}
	return true
}

// Summary counts the catalogue's attention items.
type Summary struct {
	Total        int     `json:"total"`
	LowStock     int     `json:"lowStock"`
	Expired      int     `json:"expired"`
	ExpiringSoon int     `json:"expiringSoon"`
	StockValue   float64 `json:"stockValue"`
}

func summarize(items []Item) Summary {
	s := Summary{Total: len(items)}
	for _, it := range items {
		if it.LowStock {
			s.LowStock++
		}
		if it.Expired {
			s.Expired++
		}
		if it.ExpiringSoon {
			s.ExpiringSoon++
		}
		s.StockValue += it.Price * float64(it.Stock)
	}
	return s
}
