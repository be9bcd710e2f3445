package ports

import (
	"context"

	"github.com/aalvaropc/vkconfig/internal/domain"
)

// LayerScanner discovers installed layers, in search path order.
type LayerScanner interface {
	Scan(ctx context.Context) ([]domain.Layer, error)
}

// LayerRegistry is the read side of the installed layer catalog.
type LayerRegistry interface {
	domain.LayerLookup
	AvailableLayers() []domain.Layer
}
