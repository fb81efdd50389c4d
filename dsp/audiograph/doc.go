// Package audiograph is a small pull-based audio node graph.
//
// A Context owns a set of nodes connected by directed edges and renders them
// in fixed quanta of BlockSize frames. Inputs that fan into one node are
// summed. Every node sees planar buffers with the context's channel count.
//
// Nodes expose their controls as Params. A Param holds a clamped value that
// can jump immediately or approach a target exponentially, starting at a
// point on the context clock. Gain values are evaluated per sample; filter
// and compressor controls are evaluated once per quantum.
//
// The built-in node kinds are gain, biquad filter, dynamics compressor,
// convolver and source. Custom nodes only need to implement Node.
package audiograph
