package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dualsensed/dualsensed/internal/config"
	"github.com/dualsensed/dualsensed/internal/configpaths"
	"github.com/dualsensed/dualsensed/internal/log"
	"github.com/dualsensed/dualsensed/internal/util"
	"github.com/dualsensed/dualsensed/ipc"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {
	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli config.DaemonConfig
	kong.Parse(&cli,
		kong.Name("dualsensed"),
		kong.Description("DualSense/DualSense Edge background driver"),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
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
		os.Exit(2)
	}
	if rawCloser != nil {
		defer rawCloser.Close()
	}

	socketPath := cli.Socket
	if socketPath == "" {
		socketPath = configpaths.SocketPath()
	}

	backend := newUnimplementedBackend()
	daemon := ipc.New(logger, backend, socketPath)
	daemon.SetRawLog(rawLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if util.IsRunFromGUI() {
		go func() {
			time.Sleep(250 * time.Millisecond)
			util.HideConsoleWindow()
		}()
	}

	if err := daemon.Run(ctx); err != nil {
		logger.Error("daemon exited with error", "error", err)
		if util.IsRunFromGUI() {
			os.Stdout.WriteString("Press any key to exit...\n")
			b := make([]byte, 1)
			_, _ = os.Stdin.Read(b)
		}
		os.Exit(1)
	}
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	if v := os.Getenv("DUALSENSED_CONFIG"); v != "" {
		return v
	}
	return ""
}
