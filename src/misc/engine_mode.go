package misc

// EngineMode selects what drives the array clock.
type EngineMode string

const (
	// EngineModeSerial steps the array from the simulator loop, one cycle per
	// Cycle call.
	EngineModeSerial EngineMode = "serial"
	// EngineModeAkita wraps the array in an akita ticking component scheduled
	// by an akita serial engine.
	EngineModeAkita EngineMode = "akita"
)

// DefaultEngineMode returns the mode used when no explicit selection is made.
func DefaultEngineMode() EngineMode {
	return EngineModeSerial
}

// EngineModeFromString converts an option value into an EngineMode. When the
// provided value is unknown the bool return will be false.
func EngineModeFromString(value string) (EngineMode, bool) {
	switch value {
	case string(EngineModeSerial):
		return EngineModeSerial, true
	case string(EngineModeAkita):
		return EngineModeAkita, true
	default:
		return "", false
	}
}
