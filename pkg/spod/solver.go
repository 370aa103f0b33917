package spod

import (
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/gospod/spod/pkg/blockstore"
)

// eigGuard is the small relative guard ε of §4.6 step 4, used to keep the
// mode-reconstruction denominator away from zero for near-degenerate or
// numerically negative eigenvalues.
const eigGuard = 1e-12

// SolveFrequency performs the per-frequency work of C7 from the Nx x NBlks
// cross-spectral snapshot matrix a: CSD assembly, weighted Hermitian
// eigendecomposition, mode reconstruction, and (if wantConf) chi-squared
// confidence bounds. energies and the confidence slices are length NBlks,
// in non-increasing energy order; modes is Nx x NBlks with matching column
// order.
func SolveFrequency(a *blockstore.CMatrix, weight []float64, params *Params) (modes *blockstore.CMatrix, energies, confLower, confUpper []float64, err error) {
	nxN, nblks := a.Rows, a.Cols

	m := assembleCSD(a, weight, nxN, nblks)
	lambda, theta, err := hermitianEig(m, nblks)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	maxLambda := lambda[0]
	for _, l := range lambda {
		if l > maxLambda {
			maxLambda = l
		}
	}
	guard := eigGuard * maxLambda

	modes = blockstore.NewCMatrix(nxN, nblks)
	energies = make([]float64, nblks)
	for j := 0; j < nblks; j++ {
		energies[j] = math.Abs(lambda[j])
		lambdaPlus := lambda[j]
		if lambdaPlus < guard {
			lambdaPlus = guard
		}
		scale := complex(1/math.Sqrt(float64(nblks)*lambdaPlus), 0)
		for x := 0; x < nxN; x++ {
			var v complex128
			for i := 0; i < nblks; i++ {
				v += a.At(x, i) * theta[i][j]
			}
			modes.Set(x, j, v*scale)
		}
	}

	if !params.WantConf {
		return modes, energies, nil, nil, nil
	}

	alpha := params.ConfLevel
	chi := distuv.ChiSquared{K: float64(2 * nblks)}
	xiLower := chi.Quantile(alpha)
	xiUpper := chi.Quantile(1 - alpha)
	confLower = make([]float64, nblks)
	confUpper = make([]float64, nblks)
	for j, e := range energies {
		confLower[j] = e * float64(2*nblks) / xiLower
		confUpper[j] = e * float64(2*nblks) / xiUpper
	}
	return modes, energies, confLower, confUpper, nil
}

// assembleCSD builds M := (A^H diag(w) A) / N_blks (§4.6 step 2), then
// symmetrizes away floating-point Hermitian drift.
func assembleCSD(a *blockstore.CMatrix, weight []float64, nxN, nblks int) [][]complex128 {
	m := make([][]complex128, nblks)
	for i := range m {
		m[i] = make([]complex128, nblks)
	}
	for x := 0; x < nxN; x++ {
		wx := complex(weight[x], 0)
		for i := 0; i < nblks; i++ {
			ai := cmplx.Conj(a.At(x, i)) * wx
			if ai == 0 {
				continue
			}
			for j := 0; j < nblks; j++ {
				m[i][j] += ai * a.At(x, j)
			}
		}
	}
	scale := complex(1/float64(nblks), 0)
	for i := range m {
		for j := range m[i] {
			m[i][j] *= scale
		}
	}
	for i := 0; i < nblks; i++ {
		for j := i + 1; j < nblks; j++ {
			avg := (m[i][j] + cmplx.Conj(m[j][i])) / 2
			m[i][j] = avg
			m[j][i] = cmplx.Conj(avg)
		}
	}
	return m
}

// hermitianEig computes the Hermitian eigendecomposition of an N x N
// complex matrix m (§4.6 step 3) via the standard real-symmetric doubling
// embedding: writing M = Mr + i*Mi, the 2N x 2N real symmetric matrix
// [[Mr,-Mi],[Mi,Mr]] has every eigenvalue of M with multiplicity two, and
// a complex eigenvector is recovered from the top/bottom halves of one
// real eigenvector in each degenerate pair. Eigenpairs are returned sorted
// by eigenvalue descending, ties broken by the ascending order gonum's
// EigenSym itself produces (deterministic, per §4.6 step 3).
func hermitianEig(m [][]complex128, n int) (lambda []float64, theta [][]complex128, err error) {
	n2 := 2 * n
	sym := mat.NewSymDense(n2, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			re := real(m[i][j])
			im := imag(m[i][j])
			sym.SetSym(i, j, re)
			sym.SetSym(i, n+j, -im)
			sym.SetSym(n+i, j, im)
			sym.SetSym(n+i, n+j, re)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, nil, ioError("Hermitian eigendecomposition did not converge", nil)
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	type pair struct {
		lambda float64
		vec    []complex128
	}
	pairs := make([]pair, 0, n)
	for k := 0; k+1 < n2 && len(pairs) < n; k += 2 {
		l := (vals[k] + vals[k+1]) / 2
		vec := make([]complex128, n)
		for r := 0; r < n; r++ {
			vec[r] = complex(vecs.At(r, k), vecs.At(n+r, k))
		}
		pairs = append(pairs, pair{lambda: l, vec: vec})
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].lambda > pairs[j].lambda })

	lambda = make([]float64, n)
	theta = make([][]complex128, n)
	for i := range theta {
		theta[i] = make([]complex128, n)
	}
	for j, p := range pairs {
		lambda[j] = p.lambda
		for i := 0; i < n; i++ {
			theta[i][j] = p.vec[i]
		}
	}
	return lambda, theta, nil
}
