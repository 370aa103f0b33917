package spod

import "fmt"

// Provider abstracts the snapshot source (C1). It is polymorphic over two
// variants: an eager array that already holds every snapshot, and a lazy
// callback that materializes one snapshot at a time. Both return snapshots
// flattened to length Nx in the column-major order of §6.
type Provider interface {
	// Shape returns the spatial shape S.
	Shape() []int
	// Count returns the total snapshot count N_t.
	Count() int
	// IsComplex reports whether the field is complex-valued.
	IsComplex() bool
	// Snapshot returns the flattened i-th snapshot. Implementations must
	// return a ShapeError if the underlying data disagrees with Shape().
	Snapshot(i int) ([]complex128, error)
}

// Descriptor is the immutable dataset descriptor of §3: (N_t, S, is_complex).
type Descriptor struct {
	Count     int
	Shape     []int
	IsComplex bool
}

func describe(p Provider) Descriptor {
	return Descriptor{Count: p.Count(), Shape: p.Shape(), IsComplex: p.IsComplex()}
}

// EagerProvider holds every snapshot in time-major layout, already
// flattened to length Nx per frame.
type EagerProvider struct {
	shape     []int
	frames    [][]complex128
	isComplex bool
}

// NewEagerProvider builds an EagerProvider from pre-flattened frames. Every
// frame must have exactly Nx(shape) elements.
func NewEagerProvider(shape []int, frames [][]complex128, isComplex bool) (*EagerProvider, error) {
	want := nx(shape)
	for i, f := range frames {
		if len(f) != want {
			return nil, shapeErrorf("snapshot %d has %d elements, want %d", i, len(f), want)
		}
	}
	return &EagerProvider{shape: shape, frames: frames, isComplex: isComplex}, nil
}

// NewEagerProviderFromReal is a convenience constructor (§9: "the public
// surface may still expose a convenience constructor") for real-valued
// data supplied as plain float64 frames.
func NewEagerProviderFromReal(shape []int, frames [][]float64) (*EagerProvider, error) {
	cframes := make([][]complex128, len(frames))
	for i, f := range frames {
		cf := make([]complex128, len(f))
		for j, v := range f {
			cf[j] = complex(v, 0)
		}
		cframes[i] = cf
	}
	return NewEagerProvider(shape, cframes, false)
}

func (p *EagerProvider) Shape() []int     { return p.shape }
func (p *EagerProvider) Count() int       { return len(p.frames) }
func (p *EagerProvider) IsComplex() bool  { return p.isComplex }
func (p *EagerProvider) Snapshot(i int) ([]complex128, error) {
	if i < 0 || i >= len(p.frames) {
		return nil, shapeErrorf("snapshot index %d out of range [0,%d)", i, len(p.frames))
	}
	return p.frames[i], nil
}

// Mean returns the per-point temporal mean of the dataset, the default
// mean §4.2 rule 5 specifies for eager providers.
func (p *EagerProvider) Mean() []complex128 {
	n := nx(p.shape)
	mean := make([]complex128, n)
	for _, f := range p.frames {
		for j, v := range f {
			mean[j] += v
		}
	}
	if len(p.frames) == 0 {
		return mean
	}
	scale := complex(1/float64(len(p.frames)), 0)
	for j := range mean {
		mean[j] *= scale
	}
	return mean
}

// LazyProvider wraps a callback that materializes one snapshot at a time.
type LazyProvider struct {
	shape      []int
	count      int
	fn         func(int) ([]complex128, error)
	isComplex  bool
	knownCplx  bool
	peeked     bool
}

// NewLazyProvider builds a LazyProvider. If isComplex is nil, IsComplex()
// answers by peeking at Snapshot(0), per §4.1.
func NewLazyProvider(shape []int, count int, fn func(int) ([]complex128, error), isComplex *bool) (*LazyProvider, error) {
	if count <= 0 {
		return nil, paramErrorf("lazy provider count must be positive, got %d", count)
	}
	p := &LazyProvider{shape: shape, count: count, fn: fn}
	if isComplex != nil {
		p.isComplex = *isComplex
		p.knownCplx = true
	}
	return p, nil
}

func (p *LazyProvider) Shape() []int { return p.shape }
func (p *LazyProvider) Count() int   { return p.count }

func (p *LazyProvider) IsComplex() bool {
	if p.knownCplx {
		return p.isComplex
	}
	snap, err := p.fn(0)
	p.peeked = true
	if err != nil {
		return false
	}
	for _, v := range snap {
		if imag(v) != 0 {
			p.isComplex = true
			break
		}
	}
	p.knownCplx = true
	return p.isComplex
}

func (p *LazyProvider) Snapshot(i int) ([]complex128, error) {
	if i < 0 || i >= p.count {
		return nil, shapeErrorf("snapshot index %d out of range [0,%d)", i, p.count)
	}
	snap, err := p.fn(i)
	if err != nil {
		return nil, fmt.Errorf("lazy snapshot %d: %w", i, err)
	}
	want := nx(p.shape)
	if len(snap) != want {
		return nil, shapeErrorf("snapshot %d has %d elements, want %d", i, len(snap), want)
	}
	return snap, nil
}
