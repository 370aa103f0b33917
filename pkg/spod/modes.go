package spod

import (
	"errors"

	"github.com/gospod/spod/pkg/blockstore"
)

// Accessor is C8, the Mode Accessor (§3, §5 redesign flags): a concrete
// object that borrows either a mode tensor or a block-store directory, and
// answers Mode(i, j) requests by reshaping the stored flat vector back to
// the dataset's spatial shape. It never owns persistent block data itself
// (§4's ownership rule); it only borrows a Store.
type Accessor struct {
	store blockstore.Store
	shape []int
}

// NewAccessor wraps a Store with the spatial shape needed to reshape a
// mode's flattened Nx vector back into an NDArray.
func NewAccessor(store blockstore.Store, shape []int) *Accessor {
	return &Accessor{store: store, shape: shape}
}

// Mode returns the j-th spatial mode at frequency index i, reshaped to the
// dataset's spatial shape.
func (a *Accessor) Mode(i, j int) (*NDArray, error) {
	flat, err := a.store.ReadMode(i, j)
	if err != nil {
		if errors.Is(err, blockstore.ErrNotSaved) {
			return nil, lookupError("mode not saved for this frequency", err)
		}
		if errors.Is(err, blockstore.ErrOutOfRange) {
			return nil, lookupError("mode index out of range", err)
		}
		return nil, ioError("read mode", err)
	}
	out := &NDArray{Shape: append([]int(nil), a.shape...), Data: flat}
	return out, nil
}

// Frequencies lists the frequency indices with at least one saved mode.
func (a *Accessor) Frequencies() []int { return a.store.ModeFrequencies() }
