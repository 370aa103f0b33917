package spod

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// BlockOffset returns the snapshot index a segment starts at (§4.5). The
// segment ends at min(b*(N_DFT-N_ovlp)+N_DFT, N_t); the last block is
// flush-right against N_t, never extending past it.
func BlockOffset(b, ndft, novlp, nt int) int {
	end := b*(ndft-novlp) + ndft
	if end > nt {
		end = nt
	}
	return end - ndft
}

// ComputeBlock extracts, demeans, windows, transforms, and one-sided-
// normalizes segment b, the per-block work of C5. The result has N_f rows
// (per FrequencyAxis/NumFrequencies), each of length Nx.
func ComputeBlock(p Provider, params *Params, b int) ([][]complex128, error) {
	ndft := params.NDFT
	nxN := nx(params.Shape)
	offset := BlockOffset(b, ndft, params.NOvlp, params.NT)

	rows := make([][]complex128, ndft)
	for k := 0; k < ndft; k++ {
		snap, err := p.Snapshot(offset + k)
		if err != nil {
			return nil, err
		}
		row := make([]complex128, nxN)
		w := complex(params.Window[k], 0)
		for x := 0; x < nxN; x++ {
			row[x] = (snap[x] - params.Mean[x]) * w
		}
		rows[k] = row
	}

	nf := NumFrequencies(ndft, params.IsComplex)
	gain := complex(params.Gain/float64(ndft), 0)
	out := make([][]complex128, nf)
	for i := range out {
		out[i] = make([]complex128, nxN)
	}

	if params.IsComplex {
		fft := fourier.NewCmplxFFT(ndft)
		col := make([]complex128, ndft)
		for x := 0; x < nxN; x++ {
			for k := 0; k < ndft; k++ {
				col[k] = rows[k][x]
			}
			coeffs := fft.Coefficients(nil, col)
			for i := 0; i < nf; i++ {
				out[i][x] = coeffs[i] * gain
			}
		}
		return out, nil
	}

	fft := fourier.NewFFT(ndft)
	col := make([]float64, ndft)
	for x := 0; x < nxN; x++ {
		for k := 0; k < ndft; k++ {
			col[k] = real(rows[k][x])
		}
		coeffs := fft.Coefficients(nil, col)
		for i := 0; i < nf; i++ {
			out[i][x] = coeffs[i] * gain
		}
	}

	// One-sided doubling of the strict-interior bins; DC and Nyquist (when
	// N_DFT is even, the last row) carry no mirrored twin and are left as-is.
	for i := 1; i <= nf-2; i++ {
		for x := 0; x < nxN; x++ {
			out[i][x] *= 2
		}
	}
	return out, nil
}
