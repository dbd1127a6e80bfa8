// Command udd-ctl is an interactive shell for exercising simulated
// devices: opening handles, waiting for interrupts, toggling lines,
// arming signal notification, and mapping memory regions.
//
// Usage:
//
//	udd-ctl -config devices.yaml
//
// Flags:
//
//	-config string     Device configuration file (YAML)
//	-log-level string  Log level: debug, info, warn, error (default "warn")
package main

import (
	"flag"
	stdlog "log"
	"log/slog"
	"os"

	"github.com/udd-framework/udd-go/pkg/config"
	"github.com/udd-framework/udd-go/pkg/device"
	"github.com/udd-framework/udd-go/pkg/event"
	"github.com/udd-framework/udd-go/pkg/log"
	"github.com/udd-framework/udd-go/pkg/sim"
)

var (
	configFile string
	logLevel   string
)

func init() {
	flag.StringVar(&configFile, "config", "", "Device configuration file (YAML)")
	flag.StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
}

func main() {
	flag.Parse()

	if configFile == "" {
		stdlog.Fatal("missing -config")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(logLevel),
	}))

	f, err := config.Load(configFile)
	if err != nil {
		stdlog.Fatal(err)
	}

	ctrl := sim.NewIRQController()
	sink := sim.NewSignalSink()
	threads := sim.NewThreadTable()
	reg := device.NewRegistry(device.Services{
		Core:     sim.NewCore(true),
		IRQ:      ctrl,
		Backend:  sim.NewMemBackend(),
		Notifier: sink,
		Resolver: threads,
		Logger:   log.NewSlogAdapter(logger),
	})
	defer reg.Close()

	var devices []*device.Device
	for _, dc := range f.Devices {
		desc, err := dc.Descriptor()
		if err != nil {
			stdlog.Fatalf("device %s: %v", dc.Name, err)
		}
		if desc.IRQ != device.IRQNone {
			desc.Ops.Interrupt = func(*device.Device) event.Verdict {
				return event.VerdictHandled
			}
		}
		dev, err := reg.Register(desc)
		if err != nil {
			stdlog.Fatalf("register %s: %v", dc.Name, err)
		}
		devices = append(devices, dev)
	}

	sh, err := newShell(reg, ctrl, sink, threads, devices)
	if err != nil {
		stdlog.Fatal(err)
	}
	sh.run()
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
