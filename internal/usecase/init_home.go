package usecase

import (
	"github.com/aalvaropc/vkconfig/internal/domain"
	"github.com/aalvaropc/vkconfig/internal/ports"
)

type InitHome struct {
	initializer ports.HomeInitializer
}

func NewInitHome(initializer ports.HomeInitializer) *InitHome {
	return &InitHome{initializer: initializer}
}

func (uc *InitHome) Execute(root string, force bool) error {
	return uc.initializer.Init(domain.HomeSpec{Root: root}, force)
}
