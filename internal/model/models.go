// Package model defines shared data structures for the watcher service.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ConditionAll disables condition filtering in the change detector.
const ConditionAll = "all"

// Variant is one purchasable offer of a wishlist product as the shop
// renders it: a price, a condition label ("Neu", "Gebraucht - Gut", …)
// and the discount relative to the list price as a numeric string.
type Variant struct {
	Price                    float64 `json:"price"`
	Condition                string  `json:"condition"`
	ListPriceDiscountPercent string  `json:"listPriceDiscountPercent"`
}

// RawProductRecord mirrors a single product entry of the server-rendered
// wishlist payload. A record with no variants is currently unavailable.
type RawProductRecord struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Link     string    `json:"link"`
	Variants []Variant `json:"variants"`
}

// NormalizedProduct is the canonical, minimal record shape used for
// storage and comparison. Price, condition and discount are nil when the
// product has no variants.
type NormalizedProduct struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Link      string   `json:"link"`
	Available bool     `json:"available"`
	Price     *float64 `json:"price"`
	Condition *string  `json:"condition"`
	Discount  *string  `json:"discount"`
}

// Snapshot is the complete normalized wishlist at one point in time,
// one entry per distinct product id.
type Snapshot []NormalizedProduct

// AlertItem is a product whose discount newly crossed the configured
// threshold, plus the discount recorded in the previous snapshot
// ("0" when none was recorded).
type AlertItem struct {
	NormalizedProduct
	OldDiscount string `json:"oldDiscount"`
}

// UserConfig is the user-tunable alerting configuration, persisted by the
// settings surface and read once at the start of each poll cycle.
type UserConfig struct {
	DiscountThreshold int    `json:"discountThreshold"`
	ConditionFilter   string `json:"conditionFilter"`
}

// DefaultUserConfig returns the configuration used before the user has
// saved any settings.
func DefaultUserConfig() UserConfig {
	return UserConfig{DiscountThreshold: 50, ConditionFilter: ConditionAll}
}

// RawProductMap is an ordered id → RawProductRecord map. The wishlist
// payload is a JSON object whose key order is the display order of the
// page, so decoding must not go through a plain Go map — iteration would
// be random and the merged snapshot non-deterministic.
type RawProductMap struct {
	order []string
	items map[string]RawProductRecord
}

// NewRawProductMap returns an empty ordered product map.
func NewRawProductMap() *RawProductMap {
	return &RawProductMap{items: make(map[string]RawProductRecord)}
}

// Set inserts or replaces the record for id. A replacement keeps the
// position of the first insertion (last-write-wins on the value only).
func (m *RawProductMap) Set(id string, rec RawProductRecord) {
	if m.items == nil {
		m.items = make(map[string]RawProductRecord)
	}
	if _, ok := m.items[id]; !ok {
		m.order = append(m.order, id)
	}
	m.items[id] = rec
}

// Get returns the record for id.
func (m *RawProductMap) Get(id string) (RawProductRecord, bool) {
	rec, ok := m.items[id]
	return rec, ok
}

// Len returns the number of distinct product ids.
func (m *RawProductMap) Len() int { return len(m.order) }

// IDs returns the product ids in insertion order.
func (m *RawProductMap) IDs() []string {
	ids := make([]string, len(m.order))
	copy(ids, m.order)
	return ids
}

// UnmarshalJSON decodes a JSON object while preserving its key order.
// A JSON null decodes to an empty map.
func (m *RawProductMap) UnmarshalJSON(data []byte) error {
	m.order = nil
	m.items = make(map[string]RawProductRecord)

	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("product map: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("product map: expected JSON object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("product map key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("product map: non-string key %v", keyTok)
		}
		var rec RawProductRecord
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("product %q: %w", key, err)
		}
		m.Set(key, rec)
	}

	return nil
}

// PageData is the payload embedded in one wishlist page: the products it
// lists plus the pagination links of the whole wishlist. Pagination
// entries may be placeholders of any JSON type; only strings are page
// URLs.
type PageData struct {
	Content PageContent `json:"content"`
}

// PageContent holds the product map and pagination descriptors of a page.
type PageContent struct {
	Products   RawProductMap     `json:"noticelistProducts"`
	Pagination []json.RawMessage `json:"pagination"`
}
