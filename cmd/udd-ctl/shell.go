package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/udd-framework/udd-go/pkg/device"
	"github.com/udd-framework/udd-go/pkg/event"
	"github.com/udd-framework/udd-go/pkg/sim"
)

// readTimeout bounds blocking reads so the shell stays responsive.
const readTimeout = 5 * time.Second

// shell is the interactive command loop.
type shell struct {
	reg     *device.Registry
	ctrl    *sim.IRQController
	sink    *sim.SignalSink
	threads *sim.ThreadTable
	devices []*device.Device
	rl      *readline.Instance

	// Current open handle, nil until "open".
	handle     *device.Handle
	handleName string
}

func newShell(reg *device.Registry, ctrl *sim.IRQController, sink *sim.SignalSink, threads *sim.ThreadTable, devices []*device.Device) (*shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "udd> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &shell{
		reg:     reg,
		ctrl:    ctrl,
		sink:    sink,
		threads: threads,
		devices: devices,
		rl:      rl,
	}, nil
}

func (s *shell) run() {
	defer s.rl.Close()
	defer s.closeHandle()

	s.printHelp()

	for {
		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "devices", "d":
			s.cmdDevices()

		case "open", "o":
			s.cmdOpen(args)

		case "close":
			s.closeHandle()

		case "read", "r":
			s.cmdRead()

		case "readable":
			s.cmdReadable()

		case "write", "w":
			s.cmdWrite(args)

		case "sig":
			s.cmdSig(args)

		case "signals":
			s.cmdSignals()

		case "thread":
			s.cmdThread(args)

		case "fire", "f":
			s.cmdFire(args)

		case "regions":
			s.cmdRegions(args)

		case "map", "m":
			s.cmdMap(args)

		case "status":
			s.cmdStatus()

		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
Device Commands:
  devices              - List hosted devices
  open <name>          - Open the named device
  close                - Close the current handle
  read                 - Wait for an interrupt and print the event count
  readable             - Report whether a read would return immediately
  write <0|1>          - Disable (0) or enable (1) the interrupt line
  sig <pid> <signum>   - Arm signal notification (pid 0 clears)
  signals              - Show delivered signals
  thread <pid>         - Make a PID resolvable for signal targets
  fire <line>          - Raise an interrupt on a line
  regions <name>       - Show the device's memory region table
  map <name> <idx>     - Map a memory region through the mapper companion
  status               - Show the current handle
  quit                 - Exit`)
}

func (s *shell) cmdDevices() {
	for _, dev := range s.devices {
		desc := dev.Descriptor()
		fmt.Fprintf(s.rl.Stdout(), "%-12s irq=%-3d regions=%d state=%s events=%d\n",
			dev.Name(), desc.IRQ, dev.RegionCount(), dev.State(), dev.EventCount())
	}
}

func (s *shell) cmdOpen(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stdout(), "usage: open <name>")
		return
	}
	s.closeHandle()

	h, err := s.reg.Open(args[0], 0)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "open: %v\n", err)
		return
	}
	s.handle = h
	s.handleName = args[0]
	fmt.Fprintf(s.rl.Stdout(), "opened %s\n", args[0])
}

func (s *shell) closeHandle() {
	if s.handle == nil {
		return
	}
	if err := s.handle.Close(); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "close: %v\n", err)
	}
	s.handle = nil
	s.handleName = ""
}

func (s *shell) cmdRead() {
	if s.handle == nil {
		fmt.Fprintln(s.rl.Stdout(), "no open handle")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
	defer cancel()

	buf := make([]byte, device.CounterLen)
	if _, err := s.handle.Read(ctx, buf); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "read: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "event count: %d\n", binary.LittleEndian.Uint32(buf))
}

func (s *shell) cmdReadable() {
	if s.handle == nil {
		fmt.Fprintln(s.rl.Stdout(), "no open handle")
		return
	}
	readable, err := s.handle.Readable()
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "readable: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "readable: %v\n", readable)
}

func (s *shell) cmdWrite(args []string) {
	if s.handle == nil {
		fmt.Fprintln(s.rl.Stdout(), "no open handle")
		return
	}
	if len(args) != 1 || (args[0] != "0" && args[0] != "1") {
		fmt.Fprintln(s.rl.Stdout(), "usage: write <0|1>")
		return
	}

	buf := make([]byte, device.FlagLen)
	if args[0] == "1" {
		binary.LittleEndian.PutUint32(buf, 1)
	}
	if _, err := s.handle.Write(buf); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "write: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "ok")
}

func (s *shell) cmdSig(args []string) {
	if s.handle == nil {
		fmt.Fprintln(s.rl.Stdout(), "no open handle")
		return
	}
	if len(args) != 2 {
		fmt.Fprintln(s.rl.Stdout(), "usage: sig <pid> <signum>")
		return
	}
	pid, err1 := strconv.ParseInt(args[0], 10, 32)
	signum, err2 := strconv.ParseInt(args[1], 10, 32)
	if err1 != nil || err2 != nil {
		fmt.Fprintln(s.rl.Stdout(), "usage: sig <pid> <signum>")
		return
	}

	target := event.SigNotify{PID: int32(pid), Signum: int32(signum)}
	if err := s.handle.Ioctl(device.RequestIRQSignal, target); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "sig: %v\n", err)
		return
	}
	if pid <= 0 {
		fmt.Fprintln(s.rl.Stdout(), "notification cleared")
	} else {
		fmt.Fprintf(s.rl.Stdout(), "notifying pid %d with signal %d\n", pid, signum)
	}
}

func (s *shell) cmdSignals() {
	sent := s.sink.Sent()
	if len(sent) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "no signals delivered")
		return
	}
	for _, sig := range sent {
		fmt.Fprintf(s.rl.Stdout(), "pid=%d signum=%d count=%d\n", sig.PID, sig.Signum, sig.Payload)
	}
}

func (s *shell) cmdThread(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stdout(), "usage: thread <pid>")
		return
	}
	pid, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil || pid <= 0 {
		fmt.Fprintln(s.rl.Stdout(), "usage: thread <pid>")
		return
	}
	s.threads.Add(int32(pid))
	fmt.Fprintf(s.rl.Stdout(), "pid %d resolvable\n", pid)
}

func (s *shell) cmdFire(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stdout(), "usage: fire <line>")
		return
	}
	ln, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		fmt.Fprintln(s.rl.Stdout(), "usage: fire <line>")
		return
	}

	v, delivered := s.ctrl.Fire(int32(ln))
	if !delivered {
		fmt.Fprintf(s.rl.Stdout(), "line %d: masked or unowned, dropped\n", ln)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "line %d: %s\n", ln, v)
}

func (s *shell) cmdRegions(args []string) {
	dev := s.findDevice(args)
	if dev == nil {
		return
	}

	desc := dev.Descriptor()
	for i := 0; i < len(desc.Regions); i++ {
		r, ok := desc.Regions.Region(i)
		if !ok || r.IsHole() {
			fmt.Fprintf(s.rl.Stdout(), "slot %d: (hole)\n", i)
			continue
		}
		fmt.Fprintf(s.rl.Stdout(), "slot %d: %-10s %-8s addr=%#x len=%d\n", i, r.Name, r.Type, r.Addr, r.Len)
	}
}

func (s *shell) cmdMap(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.rl.Stdout(), "usage: map <name> <index>")
		return
	}
	index, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintln(s.rl.Stdout(), "usage: map <name> <index>")
		return
	}

	dev := s.lookupDevice(args[0])
	if dev == nil {
		fmt.Fprintf(s.rl.Stdout(), "map: unknown device %s\n", args[0])
		return
	}
	if dev.MapperName() == "" {
		fmt.Fprintf(s.rl.Stdout(), "map: %s exposes no memory regions\n", args[0])
		return
	}

	mh, err := s.reg.OpenMapper(dev.MapperName(), index)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "map: %v\n", err)
		return
	}
	defer mh.Close()

	regions := dev.Descriptor().Regions
	region, _ := regions.Region(index)

	m, err := mh.Map(region.Len)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "map: %v\n", err)
		return
	}
	defer m.Close()

	fmt.Fprintf(s.rl.Stdout(), "mapped %s slot %d: %d bytes\n", args[0], index, len(m.Bytes()))
}

func (s *shell) cmdStatus() {
	if s.handle == nil {
		fmt.Fprintln(s.rl.Stdout(), "no open handle")
		return
	}
	dev := s.lookupDevice(s.handleName)
	if dev == nil {
		fmt.Fprintf(s.rl.Stdout(), "%s: gone\n", s.handleName)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "%s: state=%s events=%d\n", s.handleName, dev.State(), dev.EventCount())
}

// findDevice resolves the single-argument form used by regions.
func (s *shell) findDevice(args []string) *device.Device {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stdout(), "usage: regions <name>")
		return nil
	}
	dev := s.lookupDevice(args[0])
	if dev == nil {
		fmt.Fprintf(s.rl.Stdout(), "unknown device: %s\n", args[0])
	}
	return dev
}

func (s *shell) lookupDevice(name string) *device.Device {
	for _, dev := range s.devices {
		if dev.Name() == name {
			return dev
		}
	}
	return nil
}
