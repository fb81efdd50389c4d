package conv

import (
	"fmt"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Partitioned is a uniformly partitioned overlap-save convolver.
//
// With block size B the kernel is split into P = ceil(len(kernel)/B)
// partitions. Every block the last 2B input samples are transformed once and
// pushed into a delay line of P spectra; the output spectrum is the sum of
// delay-line entries multiplied by the matching partition spectra, and the
// second half of its inverse transform is the valid output.
//
// Partitioned is not safe for concurrent use.
type Partitioned struct {
	blockSize int
	fftSize   int
	kernelLen int

	plan *algofft.Plan[complex128]

	partitions [][]complex128 // kernel partition spectra
	fdl        [][]complex128 // frequency-domain delay line
	head       int

	input []float64 // previous block followed by current block
	spec  []complex128
	acc   []complex128
}

// NewPartitioned creates a convolver for kernel that processes blockSize
// samples per call. blockSize must be a power of 2.
func NewPartitioned(kernel []float64, blockSize int) (*Partitioned, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}
	if !isPowerOf2(blockSize) {
		return nil, fmt.Errorf("%w: %d is not a power of 2", ErrInvalidBlockSize, blockSize)
	}

	fftSize := 2 * blockSize
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}

	count := (len(kernel) + blockSize - 1) / blockSize

	p := &Partitioned{
		blockSize:  blockSize,
		fftSize:    fftSize,
		kernelLen:  len(kernel),
		plan:       plan,
		partitions: make([][]complex128, count),
		fdl:        make([][]complex128, count),
		input:      make([]float64, fftSize),
		spec:       make([]complex128, fftSize),
		acc:        make([]complex128, fftSize),
	}

	for i := range count {
		start := i * blockSize
		end := min(start+blockSize, len(kernel))

		part := make([]complex128, fftSize)
		for j, h := range kernel[start:end] {
			part[j] = complex(h, 0)
		}
		if err := plan.Forward(part, part); err != nil {
			return nil, fmt.Errorf("conv: forward FFT failed: %w", err)
		}

		p.partitions[i] = part
		p.fdl[i] = make([]complex128, fftSize)
	}

	return p, nil
}

// ProcessBlock convolves one block. src and dst must both have BlockSize
// samples and may alias.
func (p *Partitioned) ProcessBlock(dst, src []float64) error {
	if len(src) != p.blockSize || len(dst) != p.blockSize {
		return fmt.Errorf("%w: want %d samples, got src=%d dst=%d",
			ErrLengthMismatch, p.blockSize, len(src), len(dst))
	}

	b := p.blockSize

	// Slide the input window by one block.
	copy(p.input[:b], p.input[b:])
	copy(p.input[b:], src)

	for i, v := range p.input {
		p.spec[i] = complex(v, 0)
	}

	p.head = (p.head + 1) % len(p.fdl)
	if err := p.plan.Forward(p.fdl[p.head], p.spec); err != nil {
		return fmt.Errorf("conv: forward FFT failed: %w", err)
	}

	// Real signals have Hermitian spectra, so only bins 0..B are
	// accumulated and the upper half is mirrored.
	half := p.acc[:b+1]
	clear(half)
	for k, part := range p.partitions {
		x := p.fdl[(p.head-k+len(p.fdl))%len(p.fdl)]
		for i := range half {
			half[i] += x[i] * part[i]
		}
	}
	for i := 1; i < b; i++ {
		p.acc[p.fftSize-i] = cmplx.Conj(p.acc[i])
	}

	if err := p.plan.Inverse(p.acc, p.acc); err != nil {
		return fmt.Errorf("conv: inverse FFT failed: %w", err)
	}

	for i := range b {
		dst[i] = real(p.acc[b+i])
	}

	return nil
}

// Reset clears the input history so the next block starts from silence.
func (p *Partitioned) Reset() {
	clear(p.input)
	for _, x := range p.fdl {
		clear(x)
	}
	p.head = 0
}

// BlockSize returns the number of samples processed per call.
func (p *Partitioned) BlockSize() int { return p.blockSize }

// KernelLen returns the original kernel length.
func (p *Partitioned) KernelLen() int { return p.kernelLen }

// Partitions returns the number of kernel partitions.
func (p *Partitioned) Partitions() int { return len(p.partitions) }
