package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dualsensed/dualsensed/dualsense/hidtransport"
	"github.com/dualsensed/dualsensed/dualsense/report"
	"github.com/dualsensed/dualsensed/dualsense/session"
	"github.com/dualsensed/dualsensed/internal/log"
)

const reconnectInterval = 2 * time.Second

// Daemon owns at most one device Session at a time, accepts IPC
// connections on a local stream socket, and runs a background reconnection
// loop that restores the session whenever it is dropped and the update
// gate is clear.
type Daemon struct {
	log     *slog.Logger
	backend hidtransport.Backend

	socketPath string
	ln         net.Listener

	mu        sync.Mutex
	sess      *session.Session
	serial    string
	productID uint16
	rawLog    log.RawLogger

	updateMode atomic.Bool
}

// New builds a Daemon that will enumerate devices through backend and serve
// IPC on socketPath.
func New(l *slog.Logger, backend hidtransport.Backend, socketPath string) *Daemon {
	return &Daemon{log: l, backend: backend, socketPath: socketPath, rawLog: log.NewRaw(nil)}
}

// SetRawLog installs a raw wire-level HID logger applied to every session
// acquired from this point on. Passing nil restores the no-op default.
func (d *Daemon) SetRawLog(l log.RawLogger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if l == nil {
		l = log.NewRaw(nil)
	}
	d.rawLog = l
}

// Run starts the reconnection loop and the accept loop, blocking until ctx
// is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	_ = os.Remove(d.socketPath)

	ln, err := net.Listen("unix", d.socketPath)
	if err != nil {
		return fmt.Errorf("ipc: listen on %s: %w", d.socketPath, err)
	}
	d.ln = ln
	defer ln.Close()
	defer os.Remove(d.socketPath)

	d.log.Info("daemon listening", slog.String("socket", d.socketPath))

	go d.reconnectLoop(ctx)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				d.log.Info("daemon stopped")
				d.closeSession()
				return nil
			}
			d.log.Warn("accept error", slog.Any("error", err))
			continue
		}
		go d.handleConn(conn)
	}
}

func (d *Daemon) reconnectLoop(ctx context.Context) {
	ticker := time.NewTicker(reconnectInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if d.updateMode.Load() {
				continue
			}
			d.mu.Lock()
			hasSession := d.sess != nil
			d.mu.Unlock()
			if hasSession {
				continue
			}
			d.tryAcquireSession()
		}
	}
}

func (d *Daemon) tryAcquireSession() {
	devices, err := d.backend.Enumerate(report.VendorID, 0)
	if err != nil {
		d.log.Debug("enumerate failed", slog.Any("error", err))
		return
	}
	if len(devices) == 0 {
		return
	}

	info := devices[0]
	handle, err := d.backend.Open(info.Path)
	if err != nil {
		d.log.Warn("open device failed", slog.String("path", info.Path), slog.Any("error", err))
		return
	}

	d.mu.Lock()
	d.sess = session.New(d.log, handle, info.Transport)
	d.sess.SetRawLog(d.rawLog)
	d.serial = info.Serial
	d.productID = info.ProductID
	d.mu.Unlock()

	d.log.Info("acquired device session", slog.String("transport", info.Transport.String()))
}

func (d *Daemon) closeSession() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sess != nil {
		_ = d.sess.Close()
		d.sess = nil
	}
}

// dropSession discards the current session after a dispatch error, so the
// next command sees NoDevice until the reconnection loop restores it.
func (d *Daemon) dropSession() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sess != nil {
		_ = d.sess.Close()
		d.sess = nil
	}
}

func (d *Daemon) handleConn(conn net.Conn) {
	defer conn.Close()

	connLog := d.log.With(slog.String("remote", conn.RemoteAddr().String()))
	r := bufio.NewReader(conn)

	for {
		line, err := r.ReadBytes('\n')
		if err != nil {
			if err != io.EOF {
				connLog.Debug("connection read error", slog.Any("error", err))
			}
			return
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			d.writeResponse(conn, Response{Type: RespError, Message: ErrBadRequest(err.Error()).Detail})
			continue
		}

		resp := d.dispatch(req)
		if err := d.writeResponse(conn, resp); err != nil {
			connLog.Debug("connection write error", slog.Any("error", err))
			return
		}
	}
}

func (d *Daemon) writeResponse(w io.Writer, resp Response) error {
	line, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("ipc: marshal response: %w", err)
	}
	line = append(line, '\n')
	_, err = w.Write(line)
	return err
}

// dispatch executes one request under the session lock and returns its
// typed response, dropping the session on any operational error.
func (d *Daemon) dispatch(req Request) Response {
	if req.Cmd == CmdPing {
		return Response{Type: RespPong}
	}

	if req.Cmd == CmdSetUpdateMode {
		return d.dispatchSetUpdateMode(req)
	}

	if d.updateMode.Load() {
		return errResponse(ErrUpdateInProgress())
	}

	d.mu.Lock()
	sess := d.sess
	d.mu.Unlock()

	if sess == nil {
		return Response{Type: RespNoDevice}
	}

	resp, err := d.dispatchOnSession(sess, req)
	if err != nil {
		d.dropSession()
		return errResponse(WrapError(err))
	}
	return resp
}

func (d *Daemon) dispatchSetUpdateMode(req Request) Response {
	var args SetUpdateModeArgs
	if !decodeArgs(req.Args, &args) {
		return errResponse(ErrBadRequest("invalid SetUpdateMode args"))
	}

	if args.Active {
		d.mu.Lock()
		sess := d.sess
		d.sess = nil
		d.mu.Unlock()
		if sess != nil {
			sess.SetUpdateMode(true)
			_ = sess.Close()
		}
		d.updateMode.Store(true)
	} else {
		d.updateMode.Store(false)
	}

	return Response{Type: RespOk}
}

func decodeArgs(raw any, out any) bool {
	if raw == nil {
		return false
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return false
	}
	return json.Unmarshal(b, out) == nil
}

func errResponse(e *Error) Response {
	return Response{Type: RespError, Message: e.Error()}
}

func (d *Daemon) dispatchOnSession(sess *session.Session, req Request) (Response, error) {
	switch req.Cmd {
	case CmdGetBattery:
		b, err := sess.GetBattery()
		if err != nil {
			return Response{}, err
		}
		return Response{Type: RespBattery, Battery: &BatteryPayload{Capacity: b.Capacity, Status: b.Status.String()}}, nil

	case CmdGetInputState:
		st, err := sess.GetInputState()
		if err != nil {
			return Response{}, err
		}
		return Response{Type: RespInputState, InputState: &InputStatePayload{
			LeftX: st.LeftX, LeftY: st.LeftY,
			RightX: st.RightX, RightY: st.RightY,
			L2: st.L2, R2: st.R2,
			Buttons: st.Buttons, DPad: st.DPad,
			GyroX: st.Gyro[0], GyroY: st.Gyro[1], GyroZ: st.Gyro[2],
			AccelX: st.Accel[0], AccelY: st.Accel[1], AccelZ: st.Accel[2],
		}}, nil

	case CmdGetFirmwareInfo:
		fw, err := sess.GetFirmwareInfo()
		if err != nil {
			return Response{}, err
		}
		return Response{Type: RespFirmwareInfo, FirmwareInfo: &FirmwareInfoPayload{
			Version: fw.Version, BuildDate: fw.BuildDate, BuildTime: fw.BuildTime,
		}}, nil

	case CmdGetControllerInfo:
		d.mu.Lock()
		serial := d.serial
		productID := d.productID
		d.mu.Unlock()
		return Response{Type: RespControllerInfo, ControllerInfo: &ControllerInfoPayload{
			Serial:    serial,
			ProductID: productID,
			IsBT:      sess.Transport() == report.BT,
		}}, nil

	case CmdSetLightbar:
		var a SetLightbarArgs
		if !decodeArgs(req.Args, &a) {
			return Response{}, ErrBadRequest("invalid SetLightbar args")
		}
		if err := sess.SetLightbar(a.R, a.G, a.B, a.Brightness); err != nil {
			return Response{}, err
		}
		return Response{Type: RespOk}, nil

	case CmdSetLightbarEnabled:
		var a SetLightbarEnabledArgs
		if !decodeArgs(req.Args, &a) {
			return Response{}, ErrBadRequest("invalid SetLightbarEnabled args")
		}
		if err := sess.SetLightbarEnabled(a.Enabled); err != nil {
			return Response{}, err
		}
		return Response{Type: RespOk}, nil

	case CmdSetPlayerLeds:
		var a SetPlayerLedsArgs
		if !decodeArgs(req.Args, &a) {
			return Response{}, ErrBadRequest("invalid SetPlayerLeds args")
		}
		if err := sess.SetPlayerLEDs(a.Leds); err != nil {
			return Response{}, err
		}
		return Response{Type: RespOk}, nil

	case CmdSetMic:
		var a SetMicArgs
		if !decodeArgs(req.Args, &a) {
			return Response{}, ErrBadRequest("invalid SetMic args")
		}
		if err := sess.SetMic(!a.Enabled); err != nil {
			return Response{}, err
		}
		return Response{Type: RespOk}, nil

	case CmdSetMicLed:
		var a SetMicLedArgs
		if !decodeArgs(req.Args, &a) {
			return Response{}, ErrBadRequest("invalid SetMicLed args")
		}
		if err := sess.SetMicLED(report.MicLEDState(a.State)); err != nil {
			return Response{}, err
		}
		return Response{Type: RespOk}, nil

	case CmdSetTriggerOff:
		if err := sess.SetTriggerOff(); err != nil {
			return Response{}, err
		}
		return Response{Type: RespOk}, nil

	case CmdSetTriggerEffect:
		var a SetTriggerEffectArgs
		if !decodeArgs(req.Args, &a) {
			return Response{}, ErrBadRequest("invalid SetTriggerEffect args")
		}
		if err := sess.SetTriggerEffect(a.Left, a.Right, a.EffectType, a.Params, a.Params); err != nil {
			return Response{}, err
		}
		return Response{Type: RespOk}, nil

	case CmdSetVibration:
		var a SetVibrationArgs
		if !decodeArgs(req.Args, &a) {
			return Response{}, ErrBadRequest("invalid SetVibration args")
		}
		if err := sess.SetVibration(a.Rumble, a.Trigger); err != nil {
			return Response{}, err
		}
		return Response{Type: RespOk}, nil

	case CmdSetSpeaker:
		var a SetSpeakerArgs
		if !decodeArgs(req.Args, &a) {
			return Response{}, ErrBadRequest("invalid SetSpeaker args")
		}
		if err := sess.SetSpeaker(report.SpeakerMode(a.Mode)); err != nil {
			return Response{}, err
		}
		return Response{Type: RespOk}, nil

	case CmdSetVolume:
		var a SetVolumeArgs
		if !decodeArgs(req.Args, &a) {
			return Response{}, ErrBadRequest("invalid SetVolume args")
		}
		if err := sess.SetVolume(a.Volume); err != nil {
			return Response{}, err
		}
		return Response{Type: RespOk}, nil

	default:
		return Response{}, ErrBadRequest(fmt.Sprintf("unknown command %q", req.Cmd))
	}
}
