package usecase

import (
	"context"
	"fmt"

	"github.com/aalvaropc/vkconfig/internal/domain"
	"github.com/aalvaropc/vkconfig/internal/ports"
)

type DuplicateConfiguration struct {
	common
	store    ports.ConfigurationStore
	registry ports.LayerRegistry
}

func NewDuplicateConfiguration(store ports.ConfigurationStore, registry ports.LayerRegistry, opts ...Option) *DuplicateConfiguration {
	return &DuplicateConfiguration{
		common:   newCommon(opts),
		store:    store,
		registry: registry,
	}
}

// Execute saves a deep copy of src under dst. dst must not exist yet.
func (uc *DuplicateConfiguration) Execute(ctx context.Context, src, dst string) (*domain.Configuration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := domain.ValidateName(dst); err != nil {
		return nil, invalid("duplicate.validate", err)
	}
	if uc.store.ConfigurationExists(dst) {
		return nil, invalid("duplicate.validate", fmt.Errorf("configuration %q already exists", dst))
	}

	cfg, err := uc.store.LoadConfiguration(src, uc.registry)
	if err != nil {
		return nil, err
	}

	dup := cfg.Duplicate()
	dup.Name = dst
	dup.File = ""

	path, err := uc.store.SaveConfiguration(dup)
	if err != nil {
		return nil, err
	}

	uc.log.Info("configuration.duplicated", "from", src, "to", dst, "path", path)
	return dup, nil
}
