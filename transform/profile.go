package transform

import "github.com/dualsensed/dualsensed/dualsense/report"

// Profile aggregates every shaping stage applied to a ControllerState:
// per-stick deadzone/curve, per-trigger deadband, and button disable/remap.
type Profile struct {
	LeftStick  StickSettings
	RightStick StickSettings
	L2         TriggerSettings
	R2         TriggerSettings
	Buttons    ButtonSettings
}

// Apply runs every stage in order (sticks, triggers, buttons) and returns
// the reshaped state. The input state is left unmodified.
func (p Profile) Apply(state report.ControllerState) report.ControllerState {
	out := state

	out.LeftX, out.LeftY = applyStick(state.LeftX, state.LeftY, p.LeftStick)
	out.RightX, out.RightY = applyStick(state.RightX, state.RightY, p.RightStick)

	out.L2 = applyTrigger(state.L2, p.L2)
	out.R2 = applyTrigger(state.R2, p.R2)

	out.Buttons, out.DPad = applyButtons(state.Buttons, state.DPad, p.Buttons)

	return out
}
