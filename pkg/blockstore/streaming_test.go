package blockstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamingStoreSparseFrequencies(t *testing.T) {
	dir := t.TempDir()
	const nf, nx, nblks = 5, 2, 3
	store, err := NewStreamingStore(dir, []int{nx}, nf, nx, nblks, []int{1, 3})
	require.NoError(t, err)

	for b := 0; b < nblks; b++ {
		rows := make([][]complex128, nf)
		for f := 0; f < nf; f++ {
			row := make([]complex128, nx)
			for x := 0; x < nx; x++ {
				row[x] = complex(float64(f*100+b*10+x), 0)
			}
			rows[f] = row
		}
		require.NoError(t, store.PutBlock(b, rows))
	}

	require.Equal(t, []int{1, 3}, store.Frequencies())

	a, err := store.ReadFrequency(3)
	require.NoError(t, err)
	for b := 0; b < nblks; b++ {
		for x := 0; x < nx; x++ {
			want := complex(float64(3*100+b*10+x), 0)
			if a.At(x, b) != want {
				t.Errorf("A[%d,%d] = %v, want %v", x, b, a.At(x, b), want)
			}
		}
	}

	_, err = store.ReadFrequency(2)
	require.ErrorIs(t, err, ErrNotSaved)
}

func TestStreamingStoreModesPersistAndDeleteBlocks(t *testing.T) {
	dir := t.TempDir()
	const nf, nx, nblks = 2, 2, 2
	store, err := NewStreamingStore(dir, []int{nx}, nf, nx, nblks, nil)
	require.NoError(t, err)

	for b := 0; b < nblks; b++ {
		rows := make([][]complex128, nf)
		for f := 0; f < nf; f++ {
			rows[f] = []complex128{complex(float64(f), 0), complex(0, float64(b))}
		}
		require.NoError(t, store.PutBlock(b, rows))
	}

	modes := NewCMatrix(nx, nblks)
	modes.Set(0, 0, complex(1, 0))
	modes.Set(1, 0, complex(0, 1))
	require.NoError(t, store.WriteModes(0, modes, 1))

	v, err := store.ReadMode(0, 0)
	require.NoError(t, err)
	require.Equal(t, []complex128{complex(1, 0), complex(0, 1)}, v)

	_, err = store.ReadMode(0, 1)
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = store.ReadMode(1, 0)
	require.ErrorIs(t, err, ErrNotSaved)

	require.Equal(t, []int{0}, store.ModeFrequencies())

	require.NoError(t, store.DeleteBlocks())
	_, err = store.ReadFrequency(0)
	require.Error(t, err, "block files were deleted; read should fail")
}

func TestOpenStreamingStoreDiscoversModes(t *testing.T) {
	dir := t.TempDir()
	const nf, nx, nblks = 2, 1, 2
	store, err := NewStreamingStore(dir, []int{nx}, nf, nx, nblks, nil)
	require.NoError(t, err)

	modes := NewCMatrix(nx, nblks)
	modes.Set(0, 0, complex(3, 4))
	require.NoError(t, store.WriteModes(1, modes, 1))

	reopened, err := OpenStreamingStore(dir, []int{nx}, nf, nx, nblks)
	require.NoError(t, err)
	require.Equal(t, []int{1}, reopened.ModeFrequencies())

	v, err := reopened.ReadMode(1, 0)
	require.NoError(t, err)
	require.Equal(t, complex(3.0, 4.0), v[0])
}
