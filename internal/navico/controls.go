package navico

import (
	"github.com/navbridge/radargateway/internal/control"
	"github.com/navbridge/radargateway/internal/radar"
)

// RegisterBaseControls installs the controls every Navico radar
// supports. The receiver calls it as the Bootstrap hook when the first
// report arrives, before that report is parsed (spec §4.D state machine).
func RegisterBaseControls(info *radar.RadarInfo) {
	c := info.Controls
	c.Add(control.Control{Type: control.Status, Domain: control.DomainEnumerated})
	c.Add(control.Control{Type: control.Range, Domain: control.DomainEnumerated, Unit: "m"})
	c.Add(control.Control{Type: control.Gain, Domain: control.DomainAutoNumeric, AutoCapable: true, Min: 0, Max: 255})
	c.Add(control.Control{Type: control.Sea, Domain: control.DomainAutoNumeric, AutoCapable: true, Min: 0, Max: 255})
	c.Add(control.Control{Type: control.Rain, Domain: control.DomainNumericRange, Min: 0, Max: 255})
	c.Add(control.Control{Type: control.InterferenceRejection, Domain: control.DomainNumericRange, Min: 0, Max: 3})
	c.Add(control.Control{Type: control.TargetBoost, Domain: control.DomainNumericRange, Min: 0, Max: 2})
	c.Add(control.Control{Type: control.TargetExpansion, Domain: control.DomainNumericRange, Min: 0, Max: 1})
	c.Add(control.Control{Type: control.Mode, Domain: control.DomainEnumerated})
	c.Add(control.Control{Type: control.ModelName, Domain: control.DomainReadOnlyString})
	c.Add(control.Control{Type: control.FirmwareVersion, Domain: control.DomainReadOnlyString})
	c.Add(control.Control{Type: control.OperatingHours, Domain: control.DomainReadOnlyString})
	c.Add(control.Control{Type: control.BearingAlignment, Domain: control.DomainNumericRange, Min: -180, Max: 180, Unit: "deg"})
	c.Add(control.Control{Type: control.AntennaHeight, Domain: control.DomainNumericRange, Min: 0, Max: 99, Unit: "m"})
	c.Add(control.Control{Type: control.AccentLight, Domain: control.DomainNumericRange, Min: 0, Max: 3})
	c.Add(control.Control{Type: control.UserName, Domain: control.DomainReadOnlyString})
	for _, t := range []control.ControlType{
		control.NoTransmitStart1, control.NoTransmitEnd1,
		control.NoTransmitStart2, control.NoTransmitEnd2,
		control.NoTransmitStart3, control.NoTransmitEnd3,
		control.NoTransmitStart4, control.NoTransmitEnd4,
	} {
		c.Add(control.Control{Type: t, Domain: control.DomainNumericRange, Min: -180, Max: 180, Unit: "deg"})
	}
	c.Add(control.Control{Type: control.SideLobeSuppression, Domain: control.DomainAutoNumeric, AutoCapable: true, Min: 0, Max: 255})
	c.Add(control.Control{Type: control.ScanSpeed, Domain: control.DomainEnumerated})
	c.Add(control.Control{Type: control.NoiseRejection, Domain: control.DomainNumericRange, Min: 0, Max: 3})
	c.Add(control.Control{Type: control.TargetSeparation, Domain: control.DomainNumericRange, Min: 0, Max: 3})
}

// RegisterHaloControls adds the controls unlocked once report 08 reveals
// a HALO-class radar (length ≥ 21): Doppler mode/threshold (spec §4.D).
func RegisterHaloControls(info *radar.RadarInfo) {
	c := info.Controls
	c.Add(control.Control{Type: control.Doppler, Domain: control.DomainEnumerated})
	c.Add(control.Control{Type: control.DopplerSpeedThreshold, Domain: control.DomainNumericRange, Min: 0, Max: 255, Unit: "kn"})
}
