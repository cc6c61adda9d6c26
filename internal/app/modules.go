package app

import (
	"slices"

	"github.com/vk/sigchain/internal/registry"
	"github.com/vk/sigchain/modules/channel"
	"github.com/vk/sigchain/modules/iterate"
	"github.com/vk/sigchain/modules/modem"
	"github.com/vk/sigchain/modules/monitor"
	"github.com/vk/sigchain/modules/print"
	"github.com/vk/sigchain/modules/quantizer"
	"github.com/vk/sigchain/modules/socketio"
	"github.com/vk/sigchain/modules/source"
	"github.com/vk/sigchain/modules/throttle"
)

// coreUnits is the definitive list of all units that are compiled into the
// sigchain binary.
var coreUnits = []registry.Unit{
	&source.Module{},
	&modem.Module{},
	&channel.Module{},
	&quantizer.Module{},
	&monitor.Module{},
	&iterate.Module{},
	&print.Module{},
	&throttle.Module{},
	&socketio.Module{},
}

// CoreUnits returns a copy of the built-in unit list, for callers that add
// their own units next to it.
func CoreUnits() []registry.Unit {
	return slices.Clone(coreUnits)
}
