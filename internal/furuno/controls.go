package furuno

import (
	"sort"

	"github.com/navbridge/radargateway/internal/control"
	"github.com/navbridge/radargateway/internal/radar"
)

// RegisterModelControls installs the control set once the N96 modules
// report identifies the model (spec §4.D: "brand-specific controls are
// added and the range list from the persisted model is installed").
// Mode is deliberately not added here: spec §8 scenario 3 notes it is
// "not yet" present at this point in the sequence.
func RegisterModelControls(info *radar.RadarInfo, model string) {
	c := info.Controls
	c.Add(control.Control{Type: control.Status, Domain: control.DomainEnumerated})
	c.Add(control.Control{Type: control.Range, Domain: control.DomainEnumerated, Unit: "m"})
	c.Add(control.Control{Type: control.Gain, Domain: control.DomainAutoNumeric, AutoCapable: true, Min: 0, Max: 100})
	c.Add(control.Control{Type: control.Sea, Domain: control.DomainAutoNumeric, AutoCapable: true, Min: 0, Max: 100})
	c.Add(control.Control{Type: control.Rain, Domain: control.DomainNumericRange, Min: 0, Max: 100})
	c.Add(control.Control{Type: control.AntennaHeight, Domain: control.DomainNumericRange, Min: 0, Max: 99, Unit: "m"})
	c.Add(control.Control{Type: control.NoTransmitStart1, Domain: control.DomainNumericRange, Min: -180, Max: 180, Unit: "deg"})
	c.Add(control.Control{Type: control.NoTransmitEnd1, Domain: control.DomainNumericRange, Min: -180, Max: 180, Unit: "deg"})
	c.Add(control.Control{Type: control.NoTransmitStart2, Domain: control.DomainNumericRange, Min: -180, Max: 180, Unit: "deg"})
	c.Add(control.Control{Type: control.NoTransmitEnd2, Domain: control.DomainNumericRange, Min: -180, Max: 180, Unit: "deg"})
	c.Add(control.Control{Type: control.ModelName, Domain: control.DomainReadOnlyString})
	c.Add(control.Control{Type: control.FirmwareVersion, Domain: control.DomainReadOnlyString})

	values := make([]float64, 0, len(rangeTable))
	for _, m := range rangeTable {
		values = append(values, m)
	}
	sort.Float64s(values)
	c.SetValidValues(control.Range, values)
}
