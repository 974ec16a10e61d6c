// Package lookup resolves retail barcodes to game product information via a
// cascade of external product-lookup vendors.
//
// Each vendor adapter performs exactly one HTTP lookup per call and reports
// expected negative outcomes (unknown product, blank name) as ErrNoMatch,
// never as a transport failure. The cascade tries adapters in a fixed
// priority order and stops at the first hit.
package lookup

import (
	"context"
	"errors"

	"github.com/shelflineapp/shelfline-server/internal/domain"
)

// ErrNoMatch indicates a vendor has no usable product for a barcode.
// Adapters return it for missing products and blank titles alike.
var ErrNoMatch = errors.New("lookup: no match")

// Product is the normalized result of a single vendor lookup.
type Product struct {
	Name   string        `json:"name"`
	Brand  string        `json:"brand,omitempty"`
	BGGID  *int          `json:"bgg_id,omitempty"`
	Source domain.Source `json:"source"`
}

// Client is the single capability a vendor adapter provides.
type Client interface {
	// Source identifies the vendor for logging and result attribution.
	Source() domain.Source

	// Lookup performs one lookup attempt for the barcode. It returns
	// ErrNoMatch when the vendor has nothing usable; any other error is a
	// transport-level failure the caller may absorb.
	Lookup(ctx context.Context, barcode string) (*Product, error)
}
