package transform

// TriggerSettings configures one trigger's deadband. Release and FullStroke
// at their defaults (0, 255) pass the raw value through unchanged.
type TriggerSettings struct {
	Release    byte
	FullStroke byte
}

func (t TriggerSettings) isDefault() bool {
	return t.Release == 0 && t.FullStroke == 255
}

// applyTrigger reshapes one raw trigger axis (a byte in [0,255]) through the
// configured release/full-stroke deadband.
func applyTrigger(raw byte, t TriggerSettings) byte {
	if t.isDefault() {
		return raw
	}

	full := t.FullStroke
	if int(full) <= int(t.Release) {
		full = t.Release + 1
	}

	if raw <= t.Release {
		return 0
	}
	if raw >= full {
		return 255
	}

	span := int(full) - int(t.Release)
	scaled := (int(raw)-int(t.Release))*255 + span/2
	return byte(scaled / span)
}
