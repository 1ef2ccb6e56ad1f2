package raymarine

import (
	"sort"

	"github.com/navbridge/radargateway/internal/control"
	"github.com/navbridge/radargateway/internal/radar"
)

// RegisterControls installs the base control set once a model is
// identified, with the range ladder matching the 11- or 20-entry table
// for this unit class (spec §4.D).
func RegisterControls(info *radar.RadarInfo, hd bool) {
	c := info.Controls
	c.Add(control.Control{Type: control.Status, Domain: control.DomainEnumerated})
	c.Add(control.Control{Type: control.Range, Domain: control.DomainEnumerated, Unit: "m"})
	c.Add(control.Control{Type: control.Gain, Domain: control.DomainAutoNumeric, AutoCapable: true, Min: 0, Max: 100})
	c.Add(control.Control{Type: control.Sea, Domain: control.DomainAutoNumeric, AutoCapable: true, Min: 0, Max: 100})
	c.Add(control.Control{Type: control.Rain, Domain: control.DomainNumericRange, Min: 0, Max: 100})
	c.Add(control.Control{Type: control.ModelName, Domain: control.DomainReadOnlyString})
	c.Add(control.Control{Type: control.FirmwareVersion, Domain: control.DomainReadOnlyString})

	table := rangeTableFor(hd)
	values := make([]float64, len(table))
	for i, nm := range table {
		values[i] = nm * nauticalMileMeters
	}
	sort.Float64s(values)
	c.SetValidValues(control.Range, values)

	info.MaxSpokeLen = 512
	if hd {
		info.MaxSpokeLen = 1024
	}
}
