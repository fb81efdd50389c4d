package buffer

import (
	"slices"
	"testing"
)

func TestNewZeroFilled(t *testing.T) {
	b := New(8)
	if b.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", b.Len())
	}
	for i, v := range b.Samples() {
		if v != 0 {
			t.Fatalf("Samples()[%d] = %v, want 0", i, v)
		}
	}

	if New(-1).Len() != 0 {
		t.Fatal("negative length should give an empty buffer")
	}
}

func TestFromSliceSharesMemory(t *testing.T) {
	s := []float64{1, 2, 3}
	FromSlice(s).Samples()[0] = 99
	if s[0] != 99 {
		t.Fatal("FromSlice should share underlying memory")
	}
}

func TestResizeZeroesExposedElements(t *testing.T) {
	b := FromSlice(make([]float64, 4, 8))
	copy(b.Samples(), []float64{1, 2, 3, 4})

	b.Resize(2)
	b.Samples()[:4][3] = 7 // stale data behind len
	b.Resize(4)

	if got := b.Samples(); !slices.Equal(got, []float64{1, 2, 0, 0}) {
		t.Fatalf("Samples() = %v", got)
	}
	if b.Cap() != 8 {
		t.Fatalf("Cap() = %d, want 8 (no reallocation)", b.Cap())
	}

	b.Resize(10)
	if b.Len() != 10 || b.Samples()[0] != 1 || b.Samples()[9] != 0 {
		t.Fatalf("grown Samples() = %v", b.Samples())
	}
}

func TestPoolReturnsZeroedBuffers(t *testing.T) {
	p := NewPool()

	b := p.Get(16)
	for i := range b.Samples() {
		b.Samples()[i] = 1
	}
	p.Put(b)
	p.Put(nil)

	again := p.Get(16)
	for i, v := range again.Samples() {
		if v != 0 {
			t.Fatalf("sample %d = %v, want 0", i, v)
		}
	}
}

func TestPoolBus(t *testing.T) {
	p := NewPool()

	bufs, bus := p.GetBus(2, 32)
	if len(bufs) != 2 || len(bus) != 2 {
		t.Fatalf("got %d buffers / %d channels, want 2", len(bufs), len(bus))
	}
	for ch := range bus {
		if len(bus[ch]) != 32 {
			t.Fatalf("channel %d has %d frames", ch, len(bus[ch]))
		}
		bus[ch][0] = 1
		if bufs[ch].Samples()[0] != 1 {
			t.Fatal("bus must alias the pooled buffers")
		}
	}
	p.PutBus(bufs)
}
