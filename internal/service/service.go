// Package service contains the application services that sit between the
// HTTP handlers and the store, lookup, and metadata layers.
package service

import (
	"github.com/shelflineapp/shelfline-server/internal/validation"
)

// validate is the shared request validator for all services.
var validate = validation.New()
