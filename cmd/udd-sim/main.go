// Command udd-sim hosts simulated devices described by a configuration
// file and fires their interrupt lines on a timer.
//
// Usage:
//
//	udd-sim [flags]
//
// Flags:
//
//	-config string      Device configuration file (YAML)
//	-interval duration  Interrupt firing interval (default 1s)
//	-log-level string   Log level: debug, info, warn, error (default "info")
//	-event-log string   Append structured device events to this file (CBOR)
//	-advertise          Advertise devices over mDNS
//	-port int           Port to advertise (default 5353)
//
// Examples:
//
//	# Host the devices from devices.yaml, firing every 250ms
//	udd-sim -config devices.yaml -interval 250ms
//
//	# Advertise them on the local network with an event log
//	udd-sim -config devices.yaml -advertise -event-log events.cbor
package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/udd-framework/udd-go/pkg/config"
	"github.com/udd-framework/udd-go/pkg/device"
	"github.com/udd-framework/udd-go/pkg/discovery"
	"github.com/udd-framework/udd-go/pkg/event"
	"github.com/udd-framework/udd-go/pkg/log"
	"github.com/udd-framework/udd-go/pkg/sim"
)

var (
	configFile string
	interval   time.Duration
	logLevel   string
	eventLog   string
	advertise  bool
	port       int
)

func init() {
	flag.StringVar(&configFile, "config", "", "Device configuration file (YAML)")
	flag.DurationVar(&interval, "interval", time.Second, "Interrupt firing interval")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&eventLog, "event-log", "", "Append structured device events to this file (CBOR)")
	flag.BoolVar(&advertise, "advertise", false, "Advertise devices over mDNS")
	flag.IntVar(&port, "port", discovery.DefaultPort, "Port to advertise")
}

func main() {
	flag.Parse()

	if configFile == "" {
		stdlog.Fatal("missing -config")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(logLevel),
	}))

	if err := run(logger); err != nil {
		logger.Error("udd-sim failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	f, err := config.Load(configFile)
	if err != nil {
		return err
	}

	eventLogger, closeEvents, err := buildEventLogger(logger)
	if err != nil {
		return err
	}
	defer closeEvents()

	ctrl := sim.NewIRQController()
	reg := device.NewRegistry(device.Services{
		Core:     sim.NewCore(true),
		IRQ:      ctrl,
		Backend:  sim.NewMemBackend(),
		Notifier: sim.NewSignalSink(),
		Resolver: sim.NewThreadTable(),
		Logger:   eventLogger,
	})
	defer reg.Close()

	devices, lines, err := registerDevices(reg, f)
	if err != nil {
		return err
	}
	logger.Info("devices registered", "count", len(devices))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if advertise {
		stopAds, err := advertiseDevices(ctx, devices, logger)
		if err != nil {
			return err
		}
		defer stopAds()
	}

	go fireLoop(ctx, ctrl, lines, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", "signal", sig.String())

	cancel()
	for _, dev := range devices {
		if err := reg.Unregister(dev, 10*time.Millisecond); err != nil {
			logger.Warn("unregister failed", "device", dev.Name(), "error", err)
		}
	}
	return nil
}

// buildEventLogger composes the structured device event sinks: always the
// slog adapter, plus a CBOR file when -event-log is set.
func buildEventLogger(logger *slog.Logger) (log.Logger, func(), error) {
	slogSink := log.NewSlogAdapter(logger)
	if eventLog == "" {
		return slogSink, func() {}, nil
	}

	fileSink, err := log.NewFileLogger(eventLog)
	if err != nil {
		return nil, nil, fmt.Errorf("open event log: %w", err)
	}
	closer := func() {
		if err := fileSink.Close(); err != nil {
			logger.Warn("close event log", "error", err)
		}
	}
	return log.NewMultiLogger(slogSink, fileSink), closer, nil
}

func registerDevices(reg *device.Registry, f *config.File) ([]*device.Device, []int32, error) {
	var devices []*device.Device
	var lines []int32

	for _, dc := range f.Devices {
		desc, err := dc.Descriptor()
		if err != nil {
			return nil, nil, fmt.Errorf("device %s: %w", dc.Name, err)
		}
		if desc.IRQ != device.IRQNone {
			desc.Ops.Interrupt = func(*device.Device) event.Verdict {
				return event.VerdictHandled
			}
		}

		dev, err := reg.Register(desc)
		if err != nil {
			return nil, nil, fmt.Errorf("register %s: %w", dc.Name, err)
		}
		devices = append(devices, dev)
		if desc.IRQ != device.IRQNone && desc.IRQ != device.IRQCustom {
			lines = append(lines, desc.IRQ)
		}
	}
	return devices, lines, nil
}

func advertiseDevices(ctx context.Context, devices []*device.Device, logger *slog.Logger) (func(), error) {
	adv, err := discovery.NewMDNSAdvertiser(discovery.DefaultAdvertiserConfig())
	if err != nil {
		return nil, fmt.Errorf("create advertiser: %w", err)
	}

	for _, dev := range devices {
		info := discovery.InfoForDevice(dev, uint16(port))
		if err := adv.Advertise(ctx, info); err != nil {
			adv.StopAll()
			return nil, fmt.Errorf("advertise %s: %w", dev.Name(), err)
		}
		logger.Info("advertising device", "device", dev.Name(), "service", discovery.ServiceType)
	}
	return adv.StopAll, nil
}

// fireLoop raises one interrupt per owned line each interval.
func fireLoop(ctx context.Context, ctrl *sim.IRQController, lines []int32, logger *slog.Logger) {
	if len(lines) == 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, ln := range lines {
				if v, delivered := ctrl.Fire(ln); delivered {
					logger.Debug("interrupt fired", "line", ln, "verdict", v.String())
				}
			}
		}
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
