// Package model contains domain models passed between layers.
package model

import (
	"math"
	"strings"
)

// ProductRecord is one typed row of the product feed.
type ProductRecord struct {
	Code        string // unique across the catalog, compared case-insensitively on lookup
	Name        string
	Category    string // free-text label, possibly emoji-prefixed
	Image       string
	Link        string // destination URL, may be missing its scheme
	Price       int64  // won
	Discount    int64  // percent
	Description string
}

// DiscountedPrice returns the price after the discount, rounded to the nearest won.
func (p ProductRecord) DiscountedPrice() int64 {
	if p.Discount <= 0 {
		return p.Price
	}
	return int64(math.Round(float64(p.Price) * (1 - float64(p.Discount)/100)))
}

// Key returns the lookup key for the product code.
func (p ProductRecord) Key() string { return LookupKey(p.Code) }

// LookupKey normalizes a user-entered or stored product code.
func LookupKey(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// ViewCount is one counter read from the view store.
type ViewCount struct {
	Code  string
	Count int64
}

// CatalogEntry is a product with its resolved view count.
type CatalogEntry struct {
	ProductRecord
	Views int64 // 0 when the store had no counter for the code
}

// Setting is one row of the settings feed.
type Setting struct {
	Type  string
	Label string
	URL   string
}

// Setting types understood by the service.
const (
	SettingButton   = "button"
	SettingFallback = "fallback"
)

// SavedItem is the projection kept in the wishlist and recent views.
type SavedItem struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Image string `json:"image"`
	Link  string `json:"link"`
}

// Saved projects a product into a SavedItem.
func (p ProductRecord) Saved() SavedItem {
	return SavedItem{Code: p.Code, Name: p.Name, Image: p.Image, Link: p.Link}
}
