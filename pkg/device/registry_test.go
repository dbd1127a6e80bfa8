package device

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udd-framework/udd-go/pkg/event"
	"github.com/udd-framework/udd-go/pkg/memregion"
)

type testEnv struct {
	core     *fakeCore
	irq      *fakeIRQ
	notifier *fakeNotifier
	reg      *Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		core:     newFakeCore(true),
		irq:      newFakeIRQ(),
		notifier: &fakeNotifier{},
	}
	env.reg = NewRegistry(Services{
		Core:     env.core,
		IRQ:      env.irq,
		Backend:  fakeBackend{},
		Notifier: env.notifier,
		Resolver: pidSet{42: true},
	})
	t.Cleanup(env.reg.Close)
	return env
}

// assertClean verifies the post-state of a failed registration: no endpoint
// registered, no interrupt line owned.
func (env *testEnv) assertClean(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		assert.False(t, env.reg.Lookup(name), "endpoint %q still registered", name)
	}
	assert.Zero(t, env.irq.ownedCount(), "interrupt lines still owned")
}

func testDescriptor(name string, irq int32) Descriptor {
	return Descriptor{
		Name:        name,
		Description: "test device",
		SubClass:    7,
		Version:     "1.0.0",
		Author:      "tests",
		IRQ:         irq,
		Ops: Ops{
			Interrupt: func(*Device) event.Verdict { return event.VerdictHandled },
		},
		Regions: memregion.Table{
			{},
			{Type: memregion.TypePhysical, Addr: 0x1000, Len: 4096, Name: "r1"},
			{},
		},
	}
}

func TestRegisterSuccess(t *testing.T) {
	env := newTestEnv(t)

	dev, err := env.reg.Register(testDescriptor("uio0", 5))
	require.NoError(t, err)

	assert.Equal(t, StateRegistered, dev.State())
	assert.Equal(t, 1, dev.RegionCount())
	assert.Equal(t, "uio0,mapper", dev.MapperName())
	assert.True(t, env.reg.Lookup("uio0"))
	assert.True(t, env.reg.Lookup("uio0,mapper"))
	assert.Equal(t, 1, env.irq.ownedCount())

	require.NoError(t, env.reg.Unregister(dev, 0))
	assert.Equal(t, StateUnregistered, dev.State())
	env.assertClean(t, "uio0", "uio0,mapper")
}

func TestRegisterNoRegionsSkipsMapper(t *testing.T) {
	env := newTestEnv(t)

	desc := testDescriptor("uio0", 5)
	desc.Regions = memregion.Table{}
	dev, err := env.reg.Register(desc)
	require.NoError(t, err)

	assert.Empty(t, dev.MapperName())
	assert.False(t, env.reg.Lookup("uio0,mapper"))

	require.NoError(t, env.reg.Unregister(dev, 0))
}

func TestRegisterCoreInactive(t *testing.T) {
	env := newTestEnv(t)
	env.core.enabled.Store(false)

	_, err := env.reg.Register(testDescriptor("uio0", 5))
	assert.ErrorIs(t, err, ErrCoreInactive)
	env.assertClean(t, "uio0", "uio0,mapper")
}

func TestRegisterIRQWithoutHandler(t *testing.T) {
	env := newTestEnv(t)

	desc := testDescriptor("uio0", 5)
	desc.Ops.Interrupt = nil
	_, err := env.reg.Register(desc)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	env.assertClean(t, "uio0", "uio0,mapper")
}

func TestRegisterBadRegionTable(t *testing.T) {
	env := newTestEnv(t)

	desc := testDescriptor("uio0", 5)
	desc.Regions[1].Name = ""
	_, err := env.reg.Register(desc)
	assert.ErrorIs(t, err, memregion.ErrInvalidRegion)
	env.assertClean(t, "uio0", "uio0,mapper")
}

func TestRegisterRollsBackOnMapperConflict(t *testing.T) {
	env := newTestEnv(t)

	// Occupy the companion name so mapper registration fails first.
	blocker := testDescriptor("uio0,mapper", IRQNone)
	blocker.Ops.Interrupt = nil
	blocker.Regions = memregion.Table{}
	_, err := env.reg.Register(blocker)
	require.NoError(t, err)

	_, err = env.reg.Register(testDescriptor("uio0", 5))
	assert.ErrorIs(t, err, ErrNameTaken)

	assert.False(t, env.reg.Lookup("uio0"))
	assert.Zero(t, env.irq.ownedCount())
}

func TestRegisterRollsBackOnBusyLine(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.reg.Register(testDescriptor("uio0", 5))
	require.NoError(t, err)

	// Same line, different name: fails at interrupt-ownership time, after
	// the mapper endpoint was registered.
	_, err = env.reg.Register(testDescriptor("uio1", 5))
	assert.ErrorIs(t, err, errLineBusy)

	assert.False(t, env.reg.Lookup("uio1"))
	assert.False(t, env.reg.Lookup("uio1,mapper"), "mapper endpoint survived rollback")
	assert.Equal(t, 1, env.irq.ownedCount())

	require.NoError(t, env.reg.Unregister(first, 0))
}

func TestRegisterRollsBackOnPrimaryConflict(t *testing.T) {
	env := newTestEnv(t)

	// Occupy the primary name only: the duplicate declares no regions, so
	// its own mapper step is skipped and the clash happens last.
	first, err := env.reg.Register(testDescriptor("uio0", 5))
	require.NoError(t, err)

	dup := testDescriptor("uio0", 6)
	dup.Regions = memregion.Table{}
	_, err = env.reg.Register(dup)
	assert.ErrorIs(t, err, ErrNameTaken)

	// Line 6 was acquired mid-registration and must have been released.
	assert.Equal(t, 1, env.irq.ownedCount())

	require.NoError(t, env.reg.Unregister(first, 0))
	env.assertClean(t, "uio0", "uio0,mapper")
}

func TestUnregisterCoreInactive(t *testing.T) {
	env := newTestEnv(t)

	dev, err := env.reg.Register(testDescriptor("uio0", 5))
	require.NoError(t, err)

	env.core.enabled.Store(false)
	assert.ErrorIs(t, env.reg.Unregister(dev, 0), ErrCoreInactive)

	env.core.enabled.Store(true)
	require.NoError(t, env.reg.Unregister(dev, 0))
}

func TestUnregisterWakesBlockedReader(t *testing.T) {
	env := newTestEnv(t)

	dev, err := env.reg.Register(testDescriptor("uio0", 5))
	require.NoError(t, err)

	h, err := env.reg.Open("uio0", 0)
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		buf := make([]byte, CounterLen)
		_, err := h.Read(context.Background(), buf)
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		// Drain with a short poll: the reader wakes, then the handle is
		// closed below.
		env.reg.Unregister(dev, 5*time.Millisecond)
		close(done)
	}()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, event.ErrInterrupted)
	case <-time.After(time.Second):
		t.Fatal("blocked reader not woken by unregistration")
	}

	require.NoError(t, h.Close())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("unregistration did not complete after handles closed")
	}
	env.assertClean(t, "uio0", "uio0,mapper")
}

func TestOpenRacingUnregisterBacksOut(t *testing.T) {
	env := newTestEnv(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	closeHookRan := make(chan struct{}, 1)

	desc := testDescriptor("uio0", 5)
	desc.Ops.Open = func(*Device, int) error {
		close(entered)
		<-release
		return nil
	}
	desc.Ops.Close = func(*Device) { closeHookRan <- struct{}{} }

	dev, err := env.reg.Register(desc)
	require.NoError(t, err)

	// Stall an open inside the driver hook, past the pre-drain checks.
	openErr := make(chan error, 1)
	go func() {
		_, err := env.reg.Open("uio0", 0)
		openErr <- err
	}()
	<-entered

	require.NoError(t, env.reg.Unregister(dev, time.Millisecond))
	assert.Equal(t, StateUnregistered, dev.State())

	// The stalled open must not produce a handle on the torn-down device.
	close(release)
	select {
	case err := <-openErr:
		assert.ErrorIs(t, err, ErrNoDevice)
	case <-time.After(time.Second):
		t.Fatal("stalled open did not return")
	}

	// The successful driver open hook was balanced by the close hook.
	select {
	case <-closeHookRan:
	default:
		t.Error("driver close hook did not run for the backed-out open")
	}
	env.assertClean(t, "uio0", "uio0,mapper")
}

func TestOpenAfterUnregister(t *testing.T) {
	env := newTestEnv(t)

	dev, err := env.reg.Register(testDescriptor("uio0", 5))
	require.NoError(t, err)
	require.NoError(t, env.reg.Unregister(dev, 0))

	_, err = env.reg.Open("uio0", 0)
	assert.ErrorIs(t, err, ErrNoDevice)
	_, err = env.reg.OpenMapper("uio0,mapper", 1)
	assert.ErrorIs(t, err, ErrNoDevice)
}

func TestDeferredToggleAfterTeardown(t *testing.T) {
	env := newTestEnv(t)

	dev, err := env.reg.Register(testDescriptor("uio0", 5))
	require.NoError(t, err)

	h, err := env.reg.Open("uio0", 0)
	require.NoError(t, err)

	// Hold the relaxed-domain runner so the toggle is still queued when
	// unregistration completes.
	env.reg.work.Stop()
	require.NoError(t, h.Ioctl(RequestIRQDisable, nil))
	require.NoError(t, h.Close())
	require.NoError(t, env.reg.Unregister(dev, 0))

	env.reg.work.Start()

	// The line is gone; the queued toggle must be absorbed, not fault or
	// resurrect anything.
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, env.irq.toggleCount())
	assert.Equal(t, StateUnregistered, dev.State())
	env.assertClean(t, "uio0", "uio0,mapper")
}

func TestRegisterCustomIRQ(t *testing.T) {
	env := newTestEnv(t)

	desc := testDescriptor("uio0", IRQCustom)
	dev, err := env.reg.Register(desc)
	require.NoError(t, err)

	// No line ownership was requested; the driver feeds events itself.
	assert.Zero(t, env.irq.ownedCount())

	h, err := env.reg.Open("uio0", 0)
	require.NoError(t, err)

	dev.Notify()
	buf := make([]byte, CounterLen)
	n, err := h.Read(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, CounterLen, n)
	assert.Equal(t, []byte{1, 0, 0, 0}, buf)

	require.NoError(t, h.Close())
	require.NoError(t, env.reg.Unregister(dev, 0))
}
