package lookup

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shelflineapp/shelfline-server/internal/domain"
	"github.com/shelflineapp/shelfline-server/internal/metrics"
)

// Result is the cascade's outcome for a barcode.
// When every vendor misses, Unknown is true and Name carries the
// "Unknown Game" sentinel with no vendor attribution.
type Result struct {
	Product
	Unknown bool `json:"unknown"`
}

// Cascade tries vendor adapters in a fixed priority order, short-circuiting
// at the first result with a non-empty name.
//
// The order is a design choice, not incidental: the first vendor (GameUPC)
// can directly supply a BGG identifier, which lets the pipeline skip a
// name-search round trip entirely.
type Cascade struct {
	clients []Client
	logger  *slog.Logger
}

// NewCascade creates a cascade over the given adapters, tried in order.
func NewCascade(logger *slog.Logger, clients ...Client) *Cascade {
	return &Cascade{
		clients: clients,
		logger:  logger,
	}
}

// Resolve looks up a barcode across the vendors. Transport failures of
// individual vendors are absorbed and logged; they are indistinguishable
// from "no match" as far as the caller is concerned. Context cancellation
// is the one exception and stops the cascade immediately.
func (c *Cascade) Resolve(ctx context.Context, barcode string) (*Result, error) {
	for _, client := range c.clients {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		source := client.Source()
		product, err := client.Lookup(ctx, barcode)

		switch {
		case err == nil && strings.TrimSpace(product.Name) != "":
			metrics.VendorLookups.WithLabelValues(string(source), "hit").Inc()
			c.logger.Debug("vendor lookup hit",
				"vendor", source,
				"barcode", barcode,
				"name", product.Name,
			)
			product.Name = strings.TrimSpace(product.Name)
			product.Source = source
			return &Result{Product: *product}, nil

		case err == nil || errors.Is(err, ErrNoMatch):
			metrics.VendorLookups.WithLabelValues(string(source), "miss").Inc()
			c.logger.Debug("vendor lookup miss",
				"vendor", source,
				"barcode", barcode,
			)

		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			if ctx.Err() != nil {
				return nil, err
			}
			// A per-call timeout inside the adapter, not our context:
			// treated like any other vendor failure.
			fallthrough

		default:
			metrics.VendorLookups.WithLabelValues(string(source), "error").Inc()
			c.logger.Warn("vendor lookup failed",
				"vendor", source,
				"barcode", barcode,
				"error", err,
			)
		}
	}

	return &Result{
		Product: Product{Name: domain.UnknownGameTitle},
		Unknown: true,
	}, nil
}
