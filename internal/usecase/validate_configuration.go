package usecase

import (
	"context"

	"github.com/aalvaropc/vkconfig/internal/ports"
)

// ValidationReport describes whether a configuration can be activated.
type ValidationReport struct {
	Name       string
	Valid      bool
	Degenerate bool     // touches no layer at all
	Missing    []string // names not installed, overridden first
}

type ValidateConfiguration struct {
	common
	store    ports.ConfigurationStore
	registry ports.LayerRegistry
}

func NewValidateConfiguration(store ports.ConfigurationStore, registry ports.LayerRegistry, opts ...Option) *ValidateConfiguration {
	return &ValidateConfiguration{
		common:   newCommon(opts),
		store:    store,
		registry: registry,
	}
}

// Execute loads the named configuration and checks it against the registry.
// An invalid configuration is a report, not an error.
func (uc *ValidateConfiguration) Execute(ctx context.Context, name string) (ValidationReport, error) {
	if err := ctx.Err(); err != nil {
		return ValidationReport{}, err
	}

	cfg, err := uc.store.LoadConfiguration(name, uc.registry)
	if err != nil {
		return ValidationReport{}, err
	}

	report := ValidationReport{
		Name:       name,
		Valid:      cfg.IsValid(uc.registry),
		Degenerate: !cfg.HasOverride(),
		Missing:    cfg.MissingLayers(uc.registry),
	}
	if !report.Valid {
		uc.log.Info("configuration.invalid", "name", name, "degenerate", report.Degenerate, "missing", report.Missing)
	}
	return report, nil
}

// ExecuteAll validates every stored configuration, in store order. A
// configuration that fails to load aborts the run.
func (uc *ValidateConfiguration) ExecuteAll(ctx context.Context) ([]ValidationReport, error) {
	refs, err := uc.store.ListConfigurations()
	if err != nil {
		return nil, err
	}

	out := make([]ValidationReport, 0, len(refs))
	for _, ref := range refs {
		r, err := uc.Execute(ctx, ref.Name)
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, nil
}
