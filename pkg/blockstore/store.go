package blockstore

import "errors"

// ErrNotSaved is returned by ReadFrequency/ReadMode when the requested
// frequency was never persisted (e.g. excluded by save_freqs).
var ErrNotSaved = errors.New("frequency not saved")

// ErrOutOfRange is returned when a mode index is out of range for the
// frequency's saved mode count.
var ErrOutOfRange = errors.New("index out of range")

// Store is the uniform capability set of C6: put a Fourier block, read a
// frequency's cross-spectral snapshot matrix back, write and read a
// frequency's mode matrix. Both the in-memory and streaming variants
// satisfy it identically from the caller's point of view (§4.6:
// "read_frequency(i) ... returns identical values ... in either variant").
type Store interface {
	// PutBlock stores the Fourier coefficients for block index b. rows has
	// one entry per frequency index (all N_f of them, indexed by frequency),
	// each of length Nx. MemoryStore keeps every row; StreamingStore keeps
	// only the rows of the selected save_freqs subset.
	PutBlock(b int, rows [][]complex128) error

	// ReadFrequency assembles the Nx x NBlks cross-spectral snapshot
	// matrix for the given frequency index.
	ReadFrequency(freqIndex int) (*CMatrix, error)

	// Frequencies lists the frequency indices with retrievable block data,
	// in ascending order.
	Frequencies() []int

	// WriteModes persists the mode matrix (Nx x NBlks) for a frequency.
	// nSave bounds how many leading columns streaming mode retains; the
	// in-memory store ignores it and keeps every column.
	WriteModes(freqIndex int, modes *CMatrix, nSave int) error

	// ReadMode returns the j-th mode (length Nx) at frequency i.
	ReadMode(freqIndex, j int) ([]complex128, error)

	// ModeFrequencies lists the frequency indices with saved modes.
	ModeFrequencies() []int

	// Close releases any held resources.
	Close() error
}
