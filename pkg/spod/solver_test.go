package spod

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gospod/spod/pkg/blockstore"
)

func TestSolveFrequencyWeightedOrthonormality(t *testing.T) {
	const nxN, nblks = 3, 4
	a := blockstore.NewCMatrix(nxN, nblks)
	seed := complex128(1)
	for x := 0; x < nxN; x++ {
		for b := 0; b < nblks; b++ {
			v := complex(math.Sin(float64(x+1)*float64(b+1)), math.Cos(float64(x)*float64(b)))
			a.Set(x, b, v*seed)
		}
	}
	weight := []float64{1, 2, 0.5}
	params := &Params{NBlks: nblks, WantConf: false}

	modes, energies, _, _, err := SolveFrequency(a, weight, params)
	require.NoError(t, err)

	for j := 1; j < len(energies); j++ {
		if energies[j] > energies[j-1]+1e-9 {
			t.Errorf("energies not non-increasing at j=%d: %v", j, energies)
		}
	}

	// Psi^H diag(w) Psi ~= I restricted to columns with nonzero energy.
	maxE := energies[0]
	for j := 0; j < nblks; j++ {
		if energies[j] < 1e-9*maxE {
			continue
		}
		for k := 0; k < nblks; k++ {
			if energies[k] < 1e-9*maxE {
				continue
			}
			var ip complex128
			for x := 0; x < nxN; x++ {
				ip += cmplx.Conj(modes.At(x, j)) * complex(weight[x], 0) * modes.At(x, k)
			}
			want := complex128(0)
			if j == k {
				want = 1
			}
			if cmplx.Abs(ip-want) > 1e-8 {
				t.Errorf("Psi^H diag(w) Psi [%d,%d] = %v, want %v", j, k, ip, want)
			}
		}
	}
}

func TestSolveFrequencyConfidenceBoundsBracketEnergy(t *testing.T) {
	const nxN, nblks = 2, 6
	a := blockstore.NewCMatrix(nxN, nblks)
	for x := 0; x < nxN; x++ {
		for b := 0; b < nblks; b++ {
			a.Set(x, b, complex(float64((x+1)*(b+1)%5), float64(b%3)))
		}
	}
	weight := []float64{1, 1}
	alpha := 0.95
	params := &Params{NBlks: nblks, WantConf: true, ConfLevel: alpha}

	_, energies, lower, upper, err := SolveFrequency(a, weight, params)
	require.NoError(t, err)

	for j, e := range energies {
		if e == 0 {
			continue
		}
		// The closed-form chi-squared factors give Lc[...,0] <= L <=
		// Lc[...,1] for alpha=0.95.
		if lower[j] > e+1e-9 {
			t.Errorf("lower bound %v should be <= energy %v at j=%d", lower[j], e, j)
		}
		if upper[j] < e-1e-9 {
			t.Errorf("upper bound %v should be >= energy %v at j=%d", upper[j], e, j)
		}
	}
}
