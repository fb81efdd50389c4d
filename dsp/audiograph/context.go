package audiograph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cwbudde/algo-studio/dsp/core"
)

var (
	// ErrClosed is returned by operations on a closed Context.
	ErrClosed = errors.New("audiograph: context closed")
	// ErrCycle is returned when a connection would create a cycle.
	ErrCycle = errors.New("audiograph: connection creates a cycle")
	// ErrHardwareUnavailable is returned when a processing context cannot be
	// created.
	ErrHardwareUnavailable = errors.New("audiograph: processing context unavailable")
)

// Quantum describes the block being rendered.
type Quantum struct {
	// Frame is the context frame index of the first sample in the block.
	Frame      int64
	Frames     int
	SampleRate float64
}

// Time returns the context time of the first sample in seconds.
func (q Quantum) Time() float64 {
	return float64(q.Frame) / q.SampleRate
}

// Node is a unit of audio processing. in holds the sum of all connected
// inputs and out must be fully written. Both have the context's channel
// count and q.Frames frames. Implementations must be comparable; the
// built-in nodes are pointers.
type Node interface {
	Process(q Quantum, in, out [][]float64)
}

type nodeState struct {
	node   Node
	inputs []Node
	in     [][]float64
	out    [][]float64
}

// Context renders a graph of nodes into its destination.
type Context struct {
	mu sync.Mutex

	cfg    core.ProcessorConfig
	frame  int64
	closed bool

	nodes map[Node]*nodeState
	order []*nodeState
	dirty bool

	dest     *destinationNode
	carryPos int
	carryLen int
}

// NewContext creates a context. The block size must be a power of 2.
func NewContext(opts ...core.ProcessorOption) (*Context, error) {
	cfg := core.ApplyProcessorOptions(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHardwareUnavailable, err)
	}
	if cfg.BlockSize&(cfg.BlockSize-1) != 0 {
		return nil, fmt.Errorf("%w: block size must be a power of 2: %d", ErrHardwareUnavailable, cfg.BlockSize)
	}

	c := &Context{
		cfg:   cfg,
		nodes: make(map[Node]*nodeState),
		dest:  &destinationNode{},
	}
	c.register(c.dest)

	return c, nil
}

// SampleRate returns the context sample rate in Hz.
func (c *Context) SampleRate() float64 { return c.cfg.SampleRate }

// BlockSize returns the render quantum in frames.
func (c *Context) BlockSize() int { return c.cfg.BlockSize }

// Channels returns the number of channels carried on every edge.
func (c *Context) Channels() int { return c.cfg.Channels }

// Destination returns the node whose input is rendered by Render.
func (c *Context) Destination() Node { return c.dest }

// CurrentTime returns the context clock in seconds: the number of frames
// rendered so far divided by the sample rate.
func (c *Context) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return float64(c.frame) / c.cfg.SampleRate
}

// Connect routes the output of from into the input of to. Connecting the
// same pair twice has no effect.
func (c *Context) Connect(from, to Node) error {
	if from == nil || to == nil {
		return errors.New("audiograph: nil node")
	}
	if from == to {
		return fmt.Errorf("%w: self connection", ErrCycle)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	src := c.register(from)
	dst := c.register(to)

	for _, n := range dst.inputs {
		if n == from {
			return nil
		}
	}

	dst.inputs = append(dst.inputs, src.node)
	if _, err := c.sortLocked(); err != nil {
		dst.inputs = dst.inputs[:len(dst.inputs)-1]
		c.pruneLocked()
		return err
	}

	c.dirty = true
	return nil
}

// Disconnect removes every outgoing connection of node. Nodes left without
// any connection are forgotten by the context. Disconnecting an unknown or
// already disconnected node is a no-op.
func (c *Context) Disconnect(node Node) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.nodes[node] == nil {
		return
	}

	for _, st := range c.nodes {
		st.inputs = removeNode(st.inputs, node)
	}

	c.pruneLocked()
	c.dirty = true
}

// Connected reports whether node is currently part of the graph.
func (c *Context) Connected(node Node) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.nodes[node] != nil && node != Node(c.dest)
}

// Render fills dst with the destination input. dst holds planar channels of
// equal length; any length is accepted and quanta are carried over between
// calls. If dst has more channels than the context, the last context channel
// is repeated.
func (c *Context) Render(dst [][]float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	frames := core.BusFrames(dst)
	out := c.nodes[c.dest].out

	for written := 0; written < frames; {
		if c.carryPos >= c.carryLen {
			if err := c.renderQuantumLocked(); err != nil {
				return err
			}
			c.carryPos = 0
			c.carryLen = c.cfg.BlockSize
		}

		n := min(frames-written, c.carryLen-c.carryPos)
		for ch := range dst {
			src := out[min(ch, len(out)-1)]
			copy(dst[ch][written:written+n], src[c.carryPos:c.carryPos+n])
		}

		c.carryPos += n
		written += n
	}

	return nil
}

// Close releases all nodes. Subsequent Connect and Render calls return
// ErrClosed. Close is idempotent.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.nodes = nil
	c.order = nil

	return nil
}

func (c *Context) register(node Node) *nodeState {
	if st := c.nodes[node]; st != nil {
		return st
	}

	st := &nodeState{
		node: node,
		in:   core.NewBus(c.cfg.Channels, c.cfg.BlockSize),
		out:  core.NewBus(c.cfg.Channels, c.cfg.BlockSize),
	}
	c.nodes[node] = st
	c.dirty = true

	return st
}

// pruneLocked drops nodes that have neither inputs nor consumers.
func (c *Context) pruneLocked() {
	consumed := make(map[Node]bool, len(c.nodes))
	for _, st := range c.nodes {
		for _, in := range st.inputs {
			consumed[in] = true
		}
	}

	for node, st := range c.nodes {
		if node == Node(c.dest) {
			continue
		}
		if len(st.inputs) == 0 && !consumed[node] {
			delete(c.nodes, node)
		}
	}
}

// sortLocked orders nodes so that every node follows its inputs (Kahn's
// algorithm).
func (c *Context) sortLocked() ([]*nodeState, error) {
	indegree := make(map[Node]int, len(c.nodes))
	outgoing := make(map[Node][]Node, len(c.nodes))

	for node, st := range c.nodes {
		indegree[node] = len(st.inputs)
		for _, in := range st.inputs {
			outgoing[in] = append(outgoing[in], node)
		}
	}

	queue := make([]Node, 0, len(c.nodes))
	for node, d := range indegree {
		if d == 0 {
			queue = append(queue, node)
		}
	}

	order := make([]*nodeState, 0, len(c.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		order = append(order, c.nodes[node])
		for _, next := range outgoing[node] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(c.nodes) {
		return nil, ErrCycle
	}

	return order, nil
}

func (c *Context) renderQuantumLocked() error {
	if c.dirty {
		order, err := c.sortLocked()
		if err != nil {
			return err
		}
		c.order = order
		c.dirty = false
	}

	q := Quantum{
		Frame:      c.frame,
		Frames:     c.cfg.BlockSize,
		SampleRate: c.cfg.SampleRate,
	}

	for _, st := range c.order {
		core.ZeroBus(st.in)
		for _, src := range st.inputs {
			from := c.nodes[src].out
			for ch, buf := range st.in {
				for i, v := range from[ch] {
					buf[i] += v
				}
			}
		}

		st.node.Process(q, st.in, st.out)
	}

	c.frame += int64(c.cfg.BlockSize)
	return nil
}

func removeNode(nodes []Node, target Node) []Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n != target {
			out = append(out, n)
		}
	}
	return out
}

// destinationNode passes its summed input through unchanged.
type destinationNode struct{}

func (*destinationNode) Process(_ Quantum, in, out [][]float64) {
	for ch := range out {
		copy(out[ch], in[ch])
	}
}
