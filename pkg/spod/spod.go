package spod

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gospod/spod/pkg/blockstore"
)

// Result is the outcome of a full Compute run (§4 data flow: C1 -> C5 ->
// C6 -> C7 -> C8 consumer).
type Result struct {
	// F is the frequency axis (§4.4), length N_f.
	F []float64
	// L holds mode energies, indexed [freqIndex][modeIndex], each slice
	// non-increasing (§3: "mode energies ... ranked so L is non-increasing
	// along j").
	L [][]float64
	// Lc holds confidence bounds [freqIndex][modeIndex][0=lower,1=upper],
	// nil unless confidence bounds were requested.
	Lc [][][2]float64
	// Params is the fully resolved spectral parameter set.
	Params *Params
	// Modes is the C8 accessor over the underlying block store.
	Modes *Accessor
}

// Manifest is the JSON sidecar written alongside a streaming results
// directory (§6), letting a later process (the results server, or a fresh
// Accessor) reopen the store and read its energy spectrum without having
// recomputed the parameters.
type Manifest struct {
	NF        int            `json:"n_f"`
	NX        int            `json:"n_x"`
	NBlks     int            `json:"n_blks"`
	Shape     []int          `json:"shape"`
	Dt        float64        `json:"dt"`
	NDFT      int            `json:"n_dft"`
	NOvlp     int            `json:"n_ovlp"`
	IsComplex bool           `json:"is_complex"`
	F         []float64      `json:"f"`
	SaveFreqs []int          `json:"save_freqs"`
	L         [][]float64    `json:"l"`
	Lc        [][][2]float64 `json:"lc,omitempty"`
}

// ReadManifest loads the manifest.json written by a streaming Compute run.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return nil, ioError("read manifest", err)
	}
	var man Manifest
	if err := json.Unmarshal(data, &man); err != nil {
		return nil, ioError("unmarshal manifest", err)
	}
	return &man, nil
}

// Compute runs the full SPOD pipeline (§4): resolves parameters, runs the
// per-block Fourier pass (C5) over provider, runs the per-frequency solve
// pass (C7), and returns the energy spectrum, optional confidence bounds,
// and a Mode Accessor (C8) over the result.
func Compute(p Provider, opts Options) (*Result, error) {
	params, err := ResolveParams(p, opts)
	if err != nil {
		return nil, err
	}

	nf := NumFrequencies(params.NDFT, params.IsComplex)
	nxN := nx(params.Shape)

	var store blockstore.Store
	var streamDir string
	if params.SaveBlocks {
		streamDir = filepath.Join(params.SaveDir, fmt.Sprintf("nfft%d_novlp%d_nblks%d", params.NDFT, params.NOvlp, params.NBlks))
		ss, err := blockstore.NewStreamingStore(streamDir, params.Shape, nf, nxN, params.NBlks, params.SaveFreqs)
		if err != nil {
			return nil, ioError("create streaming store", err)
		}
		store = ss
	} else {
		store = blockstore.NewMemoryStore(nf, nxN, params.NBlks)
	}

	// C5: the Fourier block pass must complete in full before any
	// frequency is solved (§5 ordering guarantees).
	if err := runConcurrent(params.NBlks, params.Workers, func(b int) error {
		rows, err := ComputeBlock(p, params, b)
		if err != nil {
			return err
		}
		if err := store.PutBlock(b, rows); err != nil {
			return ioError("put block", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	freqs := store.Frequencies()
	f := FrequencyAxis(params.NDFT, params.Dt, params.IsComplex)
	l := make([][]float64, nf)
	var lc [][][2]float64
	if params.WantConf {
		lc = make([][][2]float64, nf)
	}

	var mu sync.Mutex
	if err := runConcurrent(len(freqs), params.Workers, func(idx int) error {
		fi := freqs[idx]
		a, err := store.ReadFrequency(fi)
		if err != nil {
			return ioError("read frequency", err)
		}
		modes, energies, lower, upper, err := SolveFrequency(a, params.Weight, params)
		if err != nil {
			return err
		}
		if err := store.WriteModes(fi, modes, params.NSave); err != nil {
			return ioError("write modes", err)
		}
		mu.Lock()
		l[fi] = energies
		if params.WantConf {
			pairs := make([][2]float64, len(energies))
			for j := range energies {
				pairs[j] = [2]float64{lower[j], upper[j]}
			}
			lc[fi] = pairs
		}
		mu.Unlock()
		return nil
	}); err != nil {
		return nil, err
	}

	if ss, ok := store.(*blockstore.StreamingStore); ok {
		if err := writeManifest(ss.Dir(), params, nf, nxN, f, l, lc); err != nil {
			return nil, err
		}
		if params.DeleteBlocks {
			if err := ss.DeleteBlocks(); err != nil {
				return nil, ioError("delete blocks", err)
			}
		}
	}

	return &Result{
		F:      f,
		L:      l,
		Lc:     lc,
		Params: params,
		Modes:  NewAccessor(store, params.Shape),
	}, nil
}

func writeManifest(dir string, params *Params, nf, nxN int, f []float64, l [][]float64, lc [][][2]float64) error {
	man := Manifest{
		NF:        nf,
		NX:        nxN,
		NBlks:     params.NBlks,
		Shape:     params.Shape,
		Dt:        params.Dt,
		NDFT:      params.NDFT,
		NOvlp:     params.NOvlp,
		IsComplex: params.IsComplex,
		F:         f,
		SaveFreqs: params.SaveFreqs,
		L:         l,
		Lc:        lc,
	}
	data, err := json.MarshalIndent(&man, "", "  ")
	if err != nil {
		return ioError("marshal manifest", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), data, 0o644); err != nil {
		return ioError("write manifest", err)
	}
	return nil
}

// runConcurrent runs fn(0..n-1), sequentially when workers <= 1 (the
// default cooperative scheduling of §5), or over a bounded worker pool
// otherwise. It returns the first error encountered; in the concurrent
// case "first" means first observed, not necessarily lowest index.
func runConcurrent(n, workers int, fn func(int) error) error {
	if n <= 0 {
		return nil
	}
	if workers <= 1 || n == 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}
	if workers > n {
		workers = n
	}

	jobs := make(chan int)
	errCh := make(chan error, 1)
	done := make(chan struct{})
	var once sync.Once
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := fn(i); err != nil {
					once.Do(func() {
						errCh <- err
						close(done)
					})
					return
				}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case jobs <- i:
			case <-done:
				return
			}
		}
	}()
	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
