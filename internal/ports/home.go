package ports

import "github.com/aalvaropc/vkconfig/internal/domain"

// HomeLocator finds a vkconfig home directory starting from an arbitrary directory.
type HomeLocator interface {
	FindRoot(startDir string) (string, error)
}

type HomeInitializer interface {
	Init(spec domain.HomeSpec, force bool) error
}
