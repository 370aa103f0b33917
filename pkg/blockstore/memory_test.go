package blockstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutAndReadFrequency(t *testing.T) {
	const nf, nx, nblks = 3, 2, 4
	store := NewMemoryStore(nf, nx, nblks)

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

	a, err := store.ReadFrequency(1)
	require.NoError(t, err)
	require.Equal(t, nx, a.Rows)
	require.Equal(t, nblks, a.Cols)
	for b := 0; b < nblks; b++ {
		for x := 0; x < nx; x++ {
			want := complex(float64(1*100+b*10+x), 0)
			if a.At(x, b) != want {
				t.Errorf("A[%d,%d] = %v, want %v", x, b, a.At(x, b), want)
			}
		}
	}
}

func TestMemoryStoreModesRoundTrip(t *testing.T) {
	store := NewMemoryStore(2, 3, 2)
	modes := NewCMatrix(3, 2)
	modes.Set(0, 0, complex(1, 1))
	modes.Set(1, 0, complex(2, 0))
	modes.Set(2, 0, complex(0, -1))

	require.NoError(t, store.WriteModes(0, modes, 2))

	v, err := store.ReadMode(0, 0)
	require.NoError(t, err)
	require.Equal(t, []complex128{complex(1, 1), complex(2, 0), complex(0, -1)}, v)

	_, err = store.ReadMode(1, 0)
	require.ErrorIs(t, err, ErrNotSaved)

	_, err = store.ReadMode(0, 5)
	require.ErrorIs(t, err, ErrOutOfRange)

	require.Equal(t, []int{0}, store.ModeFrequencies())
}
