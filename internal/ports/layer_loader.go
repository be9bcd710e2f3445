package ports

import "github.com/aalvaropc/vkconfig/internal/domain"

// LayerLoader parses a layer manifest. A manifest may describe several layers.
type LayerLoader interface {
	LoadLayers(path string) ([]domain.Layer, error)
}
