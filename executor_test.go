package rendergraph

import (
	"errors"
	"testing"
)

// mockDevice records allocation traffic for executor tests.
type mockDevice struct {
	nextID  Handle
	images  map[Handle]ImageAllocation
	buffers map[Handle]BufferAllocation
	freed   []Handle
	failNow bool
}

func newMockDevice() *mockDevice {
	return &mockDevice{
		nextID:  1,
		images:  make(map[Handle]ImageAllocation),
		buffers: make(map[Handle]BufferAllocation),
	}
}

var errMockAlloc = errors.New("mock allocation failure")

func (d *mockDevice) AllocateImage(info ImageAllocation) (Handle, error) {
	if d.failNow {
		return InvalidHandle, errMockAlloc
	}
	h := d.nextID
	d.nextID++
	d.images[h] = info
	return h, nil
}

func (d *mockDevice) AllocateBuffer(info BufferAllocation) (Handle, error) {
	if d.failNow {
		return InvalidHandle, errMockAlloc
	}
	h := d.nextID
	d.nextID++
	d.buffers[h] = info
	return h, nil
}

func (d *mockDevice) Free(h Handle) {
	if h == InvalidHandle {
		return
	}
	delete(d.images, h)
	delete(d.buffers, h)
	d.freed = append(d.freed, h)
}

func (d *mockDevice) live() int {
	return len(d.images) + len(d.buffers)
}

func twoPassPlan(t *testing.T, executed *[]string) *CompiledPlan {
	t.Helper()
	g := NewGraphBuilder("exec")
	g.AddGraphicsPass("produce", &testPass{
		setup: func(_ *Store, b *PassBuilder) {
			b.Enable()
			b.CreateImage("Color", testImage())
			b.Write("Color", 0)
		},
		execute: func(_ *Store, rec *PassRecorder) error {
			*executed = append(*executed, rec.PassName())
			if _, err := rec.Handle("Color"); err != nil {
				return err
			}
			return nil
		},
	})
	g.AddGraphicsPass("resolve", &testPass{
		setup: func(_ *Store, b *PassBuilder) {
			b.Enable()
			b.Read("Color")
			b.CreateImage("Out", testImage())
			b.Write("Out", 0)
		},
		execute: func(_ *Store, rec *PassRecorder) error {
			*executed = append(*executed, rec.PassName())
			if _, err := rec.Handle("Color"); err != nil {
				return err
			}
			if _, err := rec.Handle("Out"); err != nil {
				return err
			}
			return nil
		},
	})
	g.AddOutput("Out")
	return compileGraph(t, g)
}

func TestExecutorRunsPassesInOrder(t *testing.T) {
	var executed []string
	plan := twoPassPlan(t, &executed)
	device := newMockDevice()
	exec := NewExecutor(device)

	res, err := exec.Run(plan, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !namesEqual(executed, []string{"produce", "resolve"}) {
		t.Errorf("executed = %v, want [produce resolve]", executed)
	}

	out, ok := res.Output("Out")
	if !ok {
		t.Fatal("Output(Out) not found")
	}
	if out.Handle == InvalidHandle {
		t.Error("output handle is invalid")
	}
	if out.Width != 64 || out.Height != 64 {
		t.Errorf("output size = %dx%d, want 64x64", out.Width, out.Height)
	}
}

func TestExecutorRetainsSlotsAcrossRuns(t *testing.T) {
	var executed []string
	plan := twoPassPlan(t, &executed)
	device := newMockDevice()
	exec := NewExecutor(device)

	first, err := exec.Run(plan, nil)
	if err != nil {
		t.Fatal(err)
	}
	allocated := device.live()

	second, err := exec.Run(plan, nil)
	if err != nil {
		t.Fatal(err)
	}
	if device.live() != allocated {
		t.Errorf("second run allocated: live = %d, want %d", device.live(), allocated)
	}

	fh, _ := first.Output("Out")
	sh, _ := second.Output("Out")
	if fh.Handle != sh.Handle {
		t.Error("output handle changed between identical runs")
	}
}

func TestExecutorRebindsOnPlanChange(t *testing.T) {
	var executed []string
	plan := twoPassPlan(t, &executed)
	device := newMockDevice()
	exec := NewExecutor(device)

	if _, err := exec.Run(plan, nil); err != nil {
		t.Fatal(err)
	}
	firstLive := device.live()
	if firstLive == 0 {
		t.Fatal("no allocations after first run")
	}

	other := compileGraph(t, func() *GraphBuilder {
		g := NewGraphBuilder("other")
		g.AddGraphicsPass("solo", setupPass(func(b *PassBuilder) {
			b.CreateImage("Only", testImage())
			b.Write("Only", 0)
		}))
		g.AddOutput("Only")
		return g
	}())

	if _, err := exec.Run(other, nil); err != nil {
		t.Fatal(err)
	}
	if len(device.freed) != firstLive {
		t.Errorf("freed %d allocations on plan change, want %d", len(device.freed), firstLive)
	}
}

func TestExecutorRelease(t *testing.T) {
	var executed []string
	plan := twoPassPlan(t, &executed)
	device := newMockDevice()
	exec := NewExecutor(device)

	if _, err := exec.Run(plan, nil); err != nil {
		t.Fatal(err)
	}
	exec.Release()
	if device.live() != 0 {
		t.Errorf("live allocations after Release = %d, want 0", device.live())
	}

	// The executor is reusable after Release.
	if _, err := exec.Run(plan, nil); err != nil {
		t.Fatalf("Run() after Release error = %v", err)
	}
}

func TestExecutorVirtualResolvesToInvalidHandle(t *testing.T) {
	g := NewGraphBuilder("virtual")
	var handle Handle = 99
	g.AddComputePass("barrier", &testPass{
		setup: func(_ *Store, b *PassBuilder) {
			b.Enable()
			b.CreateVirtual("Fence")
		},
		execute: func(_ *Store, rec *PassRecorder) error {
			h, err := rec.Handle("Fence")
			handle = h
			return err
		},
	})
	g.AddOutput("Fence")

	plan := compileGraph(t, g)
	if _, err := NewExecutor(newMockDevice()).Run(plan, nil); err != nil {
		t.Fatal(err)
	}
	if handle != InvalidHandle {
		t.Errorf("virtual handle = %d, want InvalidHandle", handle)
	}
}

func TestExecutorUndeclaredNameFails(t *testing.T) {
	g := NewGraphBuilder("undeclared")
	g.AddGraphicsPass("a", setupPass(func(b *PassBuilder) {
		b.CreateImage("Mine", testImage())
		b.Write("Mine", 0)
	}))
	g.AddGraphicsPass("b", &testPass{
		setup: func(_ *Store, b *PassBuilder) {
			b.Enable()
			b.Read("Mine")
			b.CreateImage("Out", testImage())
			b.Write("Out", 0)
		},
		execute: func(_ *Store, rec *PassRecorder) error {
			_, err := rec.Handle("SomethingElse")
			return err
		},
	})
	g.AddOutput("Out")

	plan := compileGraph(t, g)
	_, err := NewExecutor(newMockDevice()).Run(plan, nil)
	if !errors.Is(err, ErrUnknownResource) {
		t.Errorf("error = %v, want ErrUnknownResource", err)
	}
}

func TestExecutorPropagatesAllocationFailure(t *testing.T) {
	var executed []string
	plan := twoPassPlan(t, &executed)
	device := newMockDevice()
	device.failNow = true

	_, err := NewExecutor(device).Run(plan, nil)
	if !errors.Is(err, errMockAlloc) {
		t.Errorf("error = %v, want wrapped mock failure", err)
	}
}

func TestExecutorNilArguments(t *testing.T) {
	var executed []string
	plan := twoPassPlan(t, &executed)

	if _, err := NewExecutor(nil).Run(plan, nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("nil device error = %v, want ErrNilDevice", err)
	}
	if _, err := NewExecutor(newMockDevice()).Run(nil, nil); !errors.Is(err, ErrNilPlan) {
		t.Errorf("nil plan error = %v, want ErrNilPlan", err)
	}
}
