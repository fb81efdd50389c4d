package audiograph

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-studio/dsp/core"
)

func newTestContext(t *testing.T, opts ...core.ProcessorOption) *Context {
	t.Helper()

	ctx, err := NewContext(opts...)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return ctx
}

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func TestNewContextRejectsInvalidConfig(t *testing.T) {
	for _, opt := range []core.ProcessorOption{core.WithSampleRate(0), core.WithBlockSize(100)} {
		if _, err := NewContext(opt); !errors.Is(err, ErrHardwareUnavailable) {
			t.Fatalf("got %v, want ErrHardwareUnavailable", err)
		}
	}
}

func TestRenderSilenceAdvancesClock(t *testing.T) {
	ctx := newTestContext(t, core.WithSampleRate(1000), core.WithBlockSize(128))

	dst := core.NewBus(2, 100)
	if err := ctx.Render(dst); err != nil {
		t.Fatalf("Render: %v", err)
	}

	for ch := range dst {
		for i, v := range dst[ch] {
			if v != 0 {
				t.Fatalf("ch %d sample %d = %v, want silence", ch, i, v)
			}
		}
	}

	if got := ctx.CurrentTime(); got != 0.128 {
		t.Fatalf("CurrentTime = %v, want 0.128", got)
	}
}

func TestRenderCarriesPartialQuanta(t *testing.T) {
	ctx := newTestContext(t, core.WithBlockSize(64))

	data := ramp(1000)
	src := ctx.NewSource(NewBufferSource([][]float64{data}))
	if err := ctx.Connect(src, ctx.Destination()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	var got []float64
	for _, n := range []int{50, 77, 1, 300, 572} {
		dst := core.NewBus(2, n)
		if err := ctx.Render(dst); err != nil {
			t.Fatalf("Render: %v", err)
		}
		for i := range n {
			if dst[0][i] != dst[1][i] {
				t.Fatalf("mono source not duplicated at %d", i)
			}
		}
		got = append(got, dst[0]...)
	}

	for i, want := range data {
		if got[i] != want {
			t.Fatalf("sample %d = %v, want %v", i, got[i], want)
		}
	}
	// The source is marked ended once a read returns no frames.
	if err := ctx.Render(core.NewBus(2, 128)); err != nil {
		t.Fatal(err)
	}
	if !src.Ended() {
		t.Fatal("source should report Ended after its data is consumed")
	}
}

func TestRenderSumsFanIn(t *testing.T) {
	ctx := newTestContext(t, core.WithBlockSize(32))

	a := ctx.NewSource(NewBufferSource([][]float64{ramp(32)}))
	b := ctx.NewSource(NewBufferSource([][]float64{ramp(32)}))
	for _, src := range []Node{a, b} {
		if err := ctx.Connect(src, ctx.Destination()); err != nil {
			t.Fatalf("Connect: %v", err)
		}
	}

	dst := core.NewBus(2, 32)
	if err := ctx.Render(dst); err != nil {
		t.Fatal(err)
	}
	for i, v := range dst[1] {
		if v != 2*float64(i+1) {
			t.Fatalf("sample %d = %v, want %v", i, v, 2*float64(i+1))
		}
	}
}

func TestRenderOrdersChains(t *testing.T) {
	ctx := newTestContext(t, core.WithBlockSize(16))

	src := ctx.NewSource(NewBufferSource([][]float64{ramp(16)}))
	g1 := ctx.NewGain(2)
	g2 := ctx.NewGain(3)

	// Connect downstream first so insertion order differs from signal order.
	mustConnect(t, ctx, g2, ctx.Destination())
	mustConnect(t, ctx, g1, g2)
	mustConnect(t, ctx, src, g1)

	dst := core.NewBus(2, 16)
	if err := ctx.Render(dst); err != nil {
		t.Fatal(err)
	}
	for i, v := range dst[0] {
		if v != 6*float64(i+1) {
			t.Fatalf("sample %d = %v, want %v", i, v, 6*float64(i+1))
		}
	}
}

func TestConnectRejectsCycles(t *testing.T) {
	ctx := newTestContext(t)

	g1 := ctx.NewGain(1)
	g2 := ctx.NewGain(1)

	if err := ctx.Connect(g1, g1); !errors.Is(err, ErrCycle) {
		t.Fatalf("self connection: got %v", err)
	}

	mustConnect(t, ctx, g1, g2)
	if err := ctx.Connect(g2, g1); !errors.Is(err, ErrCycle) {
		t.Fatalf("cycle: got %v", err)
	}

	// The graph is still renderable after a rejected connection.
	if err := ctx.Render(core.NewBus(2, 256)); err != nil {
		t.Fatalf("Render after rejected cycle: %v", err)
	}
}

func TestConnectTwiceIsNoop(t *testing.T) {
	ctx := newTestContext(t, core.WithBlockSize(8))
	src := ctx.NewSource(NewBufferSource([][]float64{ramp(8)}))

	mustConnect(t, ctx, src, ctx.Destination())
	mustConnect(t, ctx, src, ctx.Destination())

	dst := core.NewBus(1, 8)
	if err := ctx.Render(dst); err != nil {
		t.Fatal(err)
	}
	if dst[0][3] != 4 {
		t.Fatalf("duplicate edge summed twice: %v", dst[0])
	}
}

func TestDisconnectIsIdempotent(t *testing.T) {
	ctx := newTestContext(t, core.WithBlockSize(8))

	src := ctx.NewSource(NewBufferSource([][]float64{ramp(64)}))
	gain := ctx.NewGain(1)
	mustConnect(t, ctx, src, gain)
	mustConnect(t, ctx, gain, ctx.Destination())

	ctx.Disconnect(src)
	ctx.Disconnect(src)
	ctx.Disconnect(gain)
	ctx.Disconnect(gain)

	if ctx.Connected(src) || ctx.Connected(gain) {
		t.Fatal("disconnected nodes should be forgotten")
	}

	dst := core.NewBus(2, 8)
	if err := ctx.Render(dst); err != nil {
		t.Fatal(err)
	}
	if dst[0][0] != 0 {
		t.Fatalf("output after disconnect = %v, want silence", dst[0])
	}
}

func TestCloseRejectsFurtherUse(t *testing.T) {
	ctx := newTestContext(t)
	g := ctx.NewGain(1)

	if err := ctx.Close(); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if err := ctx.Render(core.NewBus(2, 8)); !errors.Is(err, ErrClosed) {
		t.Fatalf("Render after Close: %v", err)
	}
	if err := ctx.Connect(g, ctx.Destination()); !errors.Is(err, ErrClosed) {
		t.Fatalf("Connect after Close: %v", err)
	}
	ctx.Disconnect(g)
}

func mustConnect(t *testing.T, ctx *Context, from, to Node) {
	t.Helper()

	if err := ctx.Connect(from, to); err != nil {
		t.Fatalf("Connect: %v", err)
	}
}
