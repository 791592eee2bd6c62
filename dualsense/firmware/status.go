package firmware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dualsensed/dualsensed/dualsense/hidtransport"
)

// Phase identifies which stage of the update state machine a status poll
// expects to observe.
type Phase byte

const (
	PhasePrologue Phase = 0x00
	PhaseBody     Phase = 0x01
	PhaseVerify   Phase = 0x02
)

const (
	statusPollInterval = 10 * time.Millisecond
	statusPollTimeout  = 30 * time.Second
)

type statusAction int

const (
	actionRetry statusAction = iota
	actionDone
	actionFail
	actionUnknown
)

// statusTable maps (expected phase, status byte) to an action, per the
// updater's phase-specific status semantics. Status bytes whose action
// differs by phase (0x04 retries in the prologue but fails in the body and
// verify phases) are deliberately kept phase-local rather than collapsed
// into one lookup, to mirror the source table's phase-by-phase differences
// exactly.
var statusTable = map[Phase]map[byte]statusAction{
	PhasePrologue: {
		0x00: actionDone,
		0x04: actionRetry,
		0x10: actionRetry,
		0x01: actionFail,
		0x02: actionFail,
		0x03: actionFail,
		0x05: actionFail,
		0x06: actionFail,
		0x11: actionFail,
		0xFF: actionFail,
	},
	PhaseBody: {
		0x00: actionDone,
		0x03: actionDone,
		0x01: actionRetry,
		0x10: actionRetry,
		0x02: actionFail,
		0x04: actionFail,
		0x11: actionFail,
		0xFF: actionFail,
	},
	PhaseVerify: {
		0x00: actionDone,
		0x10: actionRetry,
		0x01: actionFail,
		0x02: actionFail,
		0x03: actionFail,
		0x04: actionFail,
		0x11: actionFail,
		0xFF: actionFail,
	},
}

// waitStatus polls FW_STATUS until the expected phase reports a terminal
// status, failing on phase mismatch, a fail-class status, or a 30s overall
// timeout. The phase-0/status-0x04 entry is the later, more permissive
// reading of two historical revisions of this table; see the design
// ledger for the ambiguity this resolves.
func waitStatus(log *slog.Logger, h hidtransport.Handle, expected Phase) error {
	deadline := time.Now().Add(statusPollTimeout)

	for {
		if time.Now().After(deadline) {
			return fmt.Errorf("firmware: status poll for phase 0x%02x timed out after %s", expected, statusPollTimeout)
		}

		buf := make([]byte, 64)
		if _, err := h.GetFeatureReport(FWStatusReportID, buf); err != nil {
			return fmt.Errorf("firmware: read FW_STATUS: %w", err)
		}

		phase := Phase(buf[1])
		status := buf[2]

		if phase != expected {
			return fmt.Errorf("firmware: status poll expected phase 0x%02x, device reports phase 0x%02x (status 0x%02x)", expected, phase, status)
		}

		table, ok := statusTable[expected]
		if !ok {
			return fmt.Errorf("firmware: no status table for phase 0x%02x", expected)
		}

		action, ok := table[status]
		if !ok {
			action = actionUnknown
		}

		switch action {
		case actionDone:
			return nil
		case actionRetry:
			if expected == PhasePrologue && status == 0x04 {
				log.Warn("firmware status 0x04 during prologue phase treated as retry; source tables disagree on this byte, see design notes",
					slog.Int("phase", int(phase)))
			}
			time.Sleep(statusPollInterval)
			continue
		case actionFail:
			return fmt.Errorf("firmware: phase 0x%02x reported failure status 0x%02x", expected, status)
		default:
			return fmt.Errorf("firmware: phase 0x%02x reported unknown status 0x%02x", expected, status)
		}
	}
}
