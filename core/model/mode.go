package model

import "fmt"

// Mode is a commute mode counted in the weekly trip columns. Telework days are
// treated as a mode so the share vector covers every reported weekday.
type Mode int

const (
	ModeDriveAlone Mode = iota
	ModeBus
	ModeTrain
	ModeCarpool
	ModeVanpool
	ModeWalk
	ModeBike
	ModeTelework
)

// Modes returns every mode in export order.
func Modes() []Mode {
	return []Mode{ModeDriveAlone, ModeBus, ModeTrain, ModeCarpool, ModeVanpool, ModeWalk, ModeBike, ModeTelework}
}

func (m Mode) String() string {
	switch m {
	case ModeDriveAlone:
		return "drive_alone"
	case ModeBus:
		return "bus"
	case ModeTrain:
		return "train"
	case ModeCarpool:
		return "carpool"
	case ModeVanpool:
		return "vanpool"
	case ModeWalk:
		return "walk"
	case ModeBike:
		return "bike"
	case ModeTelework:
		return "telework"
	default:
		return "unknown"
	}
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	for _, v := range Modes() {
		if v.String() == string(b) {
			*m = v
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q", string(b))
}
