// Package products is a deliberately thin catalog surface. It exists to
// exercise the enforcement path end to end: every route is admitted by a
// request guard and the update/delete handlers honour the "own records"
// scope the guard attaches.
package products

import (
	"errors"
	"time"
)

// ProductStatus enumerates the catalog lifecycle states.
type ProductStatus string

const (
	StatusDraft     ProductStatus = "draft"
	StatusPublished ProductStatus = "published"
	StatusArchived  ProductStatus = "archived"
)

// Product represents one catalog entry.
type Product struct {
	ID         int64
	SKU        string
	Name       string
	PriceCents int64
	Status     ProductStatus
	OwnerID    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

var (
	// ErrNotFound indicates the product does not exist.
	ErrNotFound = errors.New("products: not found")
	// ErrDuplicateSKU indicates another product already uses the SKU.
	ErrDuplicateSKU = errors.New("products: duplicate sku")
	// ErrNotOwner rejects a scoped write on a record the caller does not own.
	ErrNotOwner = errors.New("products: not record owner")
)
