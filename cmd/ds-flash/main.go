// Command ds-flash drives a firmware image onto a connected DualSense in
// USB mode, reporting progress either as a terminal progress bar or, when
// stdout isn't a TTY, as percentage log lines. This build links no HID
// backend: enumeration finds no device, so the command exits with an error
// before flashing.
package main

import (
	"fmt"
	"os"

	"github.com/dualsensed/dualsensed/dualsense/firmware"
	"github.com/dualsensed/dualsensed/dualsense/hidtransport"
	"github.com/dualsensed/dualsensed/dualsense/report"
	"github.com/dualsensed/dualsensed/dualsense/session"
	"github.com/dualsensed/dualsensed/internal/config"
	"github.com/dualsensed/dualsensed/internal/log"

	"github.com/alecthomas/kong"
	"golang.org/x/term"
)

func main() {
	var cli config.FlashConfig
	kong.Parse(&cli,
		kong.Name("ds-flash"),
		kong.Description("Flash a firmware image onto a connected DualSense"),
		kong.UsageOnError(),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File)
	if err != nil {
		os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	rawLog, rawCloser, err := log.OpenRaw(cli.Log.Raw)
	if err != nil {
		logger.Error("failed to open raw log file", "error", err)
		os.Exit(1)
	}
	if rawCloser != nil {
		defer rawCloser.Close()
	}

	img, err := os.ReadFile(cli.Firmware)
	if err != nil {
		logger.Error("failed to read firmware image", "error", err)
		os.Exit(1)
	}

	backend := newUnimplementedBackend()
	devices, err := backend.Enumerate(report.VendorID, 0)
	if err != nil || len(devices) == 0 {
		logger.Error("no DualSense found for flashing")
		os.Exit(1)
	}
	dev := devices[0]

	handle, err := backend.Open(dev.Path)
	if err != nil {
		logger.Error("failed to open device", "error", err)
		os.Exit(1)
	}
	defer handle.Close()

	sink := newProgressSink(os.Stdout)
	updater := firmware.New(logger, handle, sink.report)

	sess := session.New(logger, handle, dev.Transport)
	sess.SetRawLog(rawLog)
	battery, err := sess.GetBattery()
	if err != nil {
		logger.Error("failed to read battery state", "error", err)
		os.Exit(1)
	}

	if err := updater.Flash(dev.Transport, img, int(battery.Capacity), dev.ProductID); err != nil {
		sink.done(err)
		os.Exit(1)
	}
	sink.done(nil)
}

func newUnimplementedBackend() hidtransport.Backend { return stubBackend{} }

type stubBackend struct{}

func (stubBackend) Enumerate(vendorID, productID uint16) ([]hidtransport.DeviceInfo, error) {
	return nil, nil
}

func (stubBackend) Open(path string) (hidtransport.Handle, error) {
	return nil, fmt.Errorf("ds-flash: no HID backend is linked into this build")
}

// progressSink renders Updater progress either as an in-place terminal bar
// (when stdout is a TTY) or as one log line per milestone.
type progressSink struct {
	out      *os.File
	isTTY    bool
	lastPct  uint32
}

func newProgressSink(out *os.File) *progressSink {
	return &progressSink{out: out, isTTY: term.IsTerminal(int(out.Fd()))}
}

func (p *progressSink) report(percent uint32) {
	if percent == p.lastPct {
		return
	}
	p.lastPct = percent

	if !p.isTTY {
		fmt.Fprintf(p.out, "flashing: %d%%\n", percent)
		return
	}

	width, _, err := term.GetSize(int(p.out.Fd()))
	if err != nil || width < 20 {
		width = 40
	}
	barWidth := width - 10
	filled := barWidth * int(percent) / 100
	if filled > barWidth {
		filled = barWidth
	}

	bar := make([]byte, barWidth)
	for i := range bar {
		if i < filled {
			bar[i] = '#'
		} else {
			bar[i] = '-'
		}
	}
	fmt.Fprintf(p.out, "\r[%s] %3d%%", bar, percent)
}

func (p *progressSink) done(err error) {
	if p.isTTY {
		fmt.Fprintln(p.out)
	}
	if err != nil {
		fmt.Fprintf(p.out, "flash failed: %v\n", err)
		return
	}
	fmt.Fprintln(p.out, "flash complete")
}
