// Package blockstore implements C6, the Block Store: a uniform read
// interface over either a dense in-memory tensor of per-segment Fourier
// blocks, or a sparse, on-disk, per-frequency-sparse collection of block
// and mode files.
package blockstore

// CMatrix is a dense, row-major complex matrix, used throughout for the
// Nx x NBlks Fourier-coefficient and mode matrices of §3.
type CMatrix struct {
	Rows, Cols int
	Data       []complex128
}

// NewCMatrix allocates a zeroed rows x cols matrix.
func NewCMatrix(rows, cols int) *CMatrix {
	return &CMatrix{Rows: rows, Cols: cols, Data: make([]complex128, rows*cols)}
}

// At returns the value at (i, j).
func (m *CMatrix) At(i, j int) complex128 { return m.Data[i*m.Cols+j] }

// Set assigns the value at (i, j).
func (m *CMatrix) Set(i, j int, v complex128) { m.Data[i*m.Cols+j] = v }
