package report

import "sync/atomic"

// OutputReport is a fresh, zero-initialized output intent. Every Set method
// both writes the field and marks the corresponding valid flag; nothing is
// implied by a field being left at zero. Callers build a new OutputReport
// per logical write — instances are never reused or merged, so a later
// partial write can never bleed state from an earlier one.
type OutputReport struct {
	body [outputBodyLen]byte
}

// NewOutputReport returns an empty report with every valid flag clear.
func NewOutputReport() *OutputReport { return &OutputReport{} }

func (r *OutputReport) setFlag0(bit byte) { r.body[offFlag0] |= bit }
func (r *OutputReport) setFlag1(bit byte) { r.body[offFlag1] |= bit }
func (r *OutputReport) setFlag2(bit byte) { r.body[offFlag2] |= bit }

// SetLightbar sets the lightbar color, applied as (r,g,b) premultiplied by
// brightness/255.
func (r *OutputReport) SetLightbar(red, green, blue, brightness byte) {
	r.body[offLightbarRed] = byte(uint16(red) * uint16(brightness) / 255)
	r.body[offLightbarGreen] = byte(uint16(green) * uint16(brightness) / 255)
	r.body[offLightbarBlue] = byte(uint16(blue) * uint16(brightness) / 255)
	r.setFlag1(Flag1LightbarControl)
}

// SetLightbarEnabled toggles the lightbar-setup byte (the lightbar fade on
// device boot/sleep), independent of its color.
func (r *OutputReport) SetLightbarEnabled(enabled bool) {
	if enabled {
		r.body[offLightbarSetup] = lightbarSetupOn
	} else {
		r.body[offLightbarSetup] = lightbarSetupOff
	}
	r.setFlag2(Flag2LightbarSetup)
}

// SetPlayerLEDs selects one of the 8 fixed player-indicator patterns.
func (r *OutputReport) SetPlayerLEDs(index int) {
	r.body[offPlayerIndicator] = PlayerLEDPatterns[index]
	r.setFlag1(Flag1PlayerIndicator)
}

// SetMic sets microphone mute state.
func (r *OutputReport) SetMic(muted bool) {
	if muted {
		r.body[offPowerSave] |= powerSaveMicMuteBit
	} else {
		r.body[offPowerSave] &^= powerSaveMicMuteBit
	}
	r.setFlag1(Flag1PowerSaveControl)
}

// SetMicLED sets the microphone LED behavior.
func (r *OutputReport) SetMicLED(state MicLEDState) {
	r.body[offMicLED] = state.byteValue()
	r.setFlag1(Flag1MicMuteLED)
}

// SetTriggerEffect sets a raw trigger-effect mode and 10-byte parameter
// block on one side.
func (r *OutputReport) SetTriggerEffect(side TriggerSide, mode byte, params [10]byte) {
	off := offTriggerLeft
	bit := Flag0LeftTriggerMotor
	if side == TriggerRight {
		off = offTriggerRight
		bit = Flag0RightTriggerMotor
	}
	r.body[off] = mode
	copy(r.body[off+1:off+triggerEncodedLen], params[:])
	r.setFlag0(bit)
}

// SetTriggerOff disables resistance on both triggers (mode 0x05, zero params).
func (r *OutputReport) SetTriggerOff() {
	var zero [10]byte
	r.SetTriggerEffect(TriggerLeft, TriggerOffMode, zero)
	r.SetTriggerEffect(TriggerRight, TriggerOffMode, zero)
}

// SetTriggerFeedback encodes a "resistance feedback" effect: a single
// active zone region starting at position (0..=9) with constant strength
// (1..=8) across zones [position, 10).
func (r *OutputReport) SetTriggerFeedback(side TriggerSide, position int, strength int) {
	activeZones, strengthZones := EncodeFeedbackZones(position, strength)
	params := encodeFeedbackParams(activeZones, strengthZones)
	r.SetTriggerEffect(side, FeedbackMode, params)
}

// EncodeFeedbackZones builds the active-zone bitmap and packed 3-bit
// per-zone strengths used by the "Feedback" trigger effect encoder.
// Zones [position, 10) are marked active, each carrying the given strength.
func EncodeFeedbackZones(position int, strength int) (activeZones uint16, strengthZones uint32) {
	for zone := position; zone < 10; zone++ {
		activeZones |= 1 << uint(zone)
		packed := uint32(strength-1) & 0x7
		strengthZones |= packed << uint(3*zone)
	}
	return activeZones, strengthZones
}

// encodeFeedbackParams lays out activeZones (u16 LE) at params[0:2], a
// spacer byte at params[2], and strengthZones (u32 LE, per the 3-bits-per-
// zone global packing) at params[3:7].
func encodeFeedbackParams(activeZones uint16, strengthZones uint32) [10]byte {
	var params [10]byte
	params[0] = byte(activeZones)
	params[1] = byte(activeZones >> 8)
	params[2] = 0x00
	params[3] = byte(strengthZones)
	params[4] = byte(strengthZones >> 8)
	params[5] = byte(strengthZones >> 16)
	params[6] = byte(strengthZones >> 24)
	return params
}

// SetVibration sets the rumble/trigger vibration attenuation byte
// (rumble:3b | trigger:3b).
func (r *OutputReport) SetVibration(rumble, trigger byte) {
	r.body[offVibrationAtten] = (rumble & 0x7) | ((trigger & 0x7) << 3)
	r.setFlag1(Flag1VibrationAtten)
}

// SetSpeaker selects the audio output routing.
func (r *OutputReport) SetSpeaker(mode SpeakerMode) {
	r.body[offAudioOutputPath] = mode.pathByte()
	r.setFlag0(Flag0AudioControl)
}

// SetVolume linearly scales one master volume value into the two device
// volume scales (headphone 0x7F max, speaker 0x64 max).
func (r *OutputReport) SetVolume(volume byte) {
	r.body[offHeadphoneVolume] = byte(uint16(volume) * 0x7F / 255)
	r.body[offSpeakerVolume] = byte(uint16(volume) * 0x64 / 255)
	r.setFlag0(Flag0HeadphoneVol | Flag0SpeakerVol)
}

// Encoder finalizes OutputReports into transport-framed wire bytes. Its
// only state is the Bluetooth rolling output sequence counter; callers
// share one Encoder per device session so the 4-bit counter advances once
// per BT write regardless of which feature triggered it.
type Encoder struct {
	seq uint32 // accessed atomically; only the low 4 bits are meaningful
}

// NewEncoder returns an Encoder with its BT sequence counter at 0.
func NewEncoder() *Encoder { return &Encoder{} }

// Encode finalizes r into a wire-ready buffer for the given transport. On
// BT, this advances the rolling output sequence and appends the CRC32
// trailer computed over the final buffer contents.
func (e *Encoder) Encode(t Transport, r *OutputReport) []byte {
	size := OutputSize(t)
	buf := make([]byte, size)
	bodyOff := outputBodyOffset(t)
	copy(buf[bodyOff:], r.body[:])

	if t == BT {
		buf[0] = ReportIDBTOutput
		seq := uint8(atomic.AddUint32(&e.seq, 1) & 0x0F)
		buf[1] = seq << 4
		buf[2] = 0x10
		appendBTCRC(buf)
		return buf
	}

	buf[0] = ReportIDUSBOutput
	return buf
}
