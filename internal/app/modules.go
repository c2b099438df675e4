package app

import (
	"github.com/vk/simunit/internal/registry"
	"github.com/vk/simunit/modules/driver"
	"github.com/vk/simunit/modules/eos"
	"github.com/vk/simunit/modules/hydro"
	"github.com/vk/simunit/modules/physics"
)

// coreModules is the definitive list of all units that are compiled into
// the simunit binary.
var coreModules = []registry.Module{
	&driver.Module{},
	&physics.Module{},
	&eos.Module{},
	&hydro.Module{},
}
