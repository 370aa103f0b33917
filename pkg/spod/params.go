package spod

import "math"

// Options carries optional, nullable overrides for the parameter resolver
// (C2). This is the re-expression of the original's variadic positional
// arguments as an explicit record (§9).
type Options struct {
	// Window, if non-nil, is either an int (window length, Hamming
	// generated) or a []float64 (used verbatim, its length becomes NDFT).
	// Left nil, NDFT defaults per §4.2 rule 1.
	Window any

	// Weight is the spatial inner-product weight, flattened to length Nx.
	// Left nil, the weight defaults to all ones.
	Weight []float64

	// NOvlp is the segment overlap. Left nil, it defaults to floor(NDFT/2).
	NOvlp *int

	// Dt is the timestep. Left nil, it defaults to 1.0.
	Dt *float64

	// Mean is subtracted from every snapshot before windowing. Left nil,
	// it defaults to the per-point temporal mean (eager providers) or the
	// zero vector with an advisory warning (lazy providers).
	Mean []complex128

	// IsComplex forces spectrum sidedness; left nil, it is taken from the
	// provider.
	IsComplex *bool

	// NSave is the number of leading modes persisted per frequency in
	// streaming mode. Left nil, it defaults to NBlks.
	NSave *int

	// ConfLevel is the confidence interval level in (0,1). Left nil, it
	// defaults to 0.95; a value outside (0,1), zero included, is a
	// parameter error. Confidence bounds are only computed when
	// WantConfidence is true.
	ConfLevel *float64
	WantConfidence bool

	// NT overrides the declared snapshot count for lazy providers. Left
	// nil for a lazy provider, the provider's declared count is used (10000
	// if it declares none) and an advisory warning is emitted.
	NT *int

	// SaveBlocks switches C6 to streaming (on-disk) mode.
	SaveBlocks bool
	// DeleteBlocks deletes block files after mode extraction completes,
	// when streaming. Defaults to true.
	DeleteBlocks *bool
	// SaveDir is the root directory for streaming mode; the effective
	// directory is save_dir/nfft{N}_novlp{N}_nblks{N}.
	SaveDir string
	// SaveFreqs restricts which frequencies are retained in streaming
	// mode. Empty means all.
	SaveFreqs []int

	// Workers bounds how many blocks/frequencies may be processed
	// concurrently. Zero or one means strictly sequential (§5: "single-
	// threaded cooperative, with no required internal parallelism").
	Workers int

	// Diagnostic receives advisory NumericWarnings.
	Diagnostic DiagnosticFunc
}

// Params is the immutable, fully resolved spectral parameter set of §3.
type Params struct {
	NDFT       int
	NOvlp      int
	NBlks      int
	Dt         float64
	Window     []float64
	Gain       float64
	Weight     []float64
	Mean       []complex128
	IsComplex  bool
	NSave      int
	ConfLevel  float64
	WantConf   bool
	SaveBlocks bool
	DeleteBlocks bool
	SaveDir    string
	SaveFreqs  []int
	Workers    int
	Shape      []int
	NT         int
}

// ResolveParams fills in defaults for window, overlap, timestep, and weight
// and validates feasibility, implementing §4.2 in order.
func ResolveParams(p Provider, opts Options) (*Params, error) {
	desc := describe(p)
	isComplex := desc.IsComplex
	if opts.IsComplex != nil {
		isComplex = *opts.IsComplex
	}

	nt := desc.Count
	if _, lazy := p.(*LazyProvider); lazy {
		if opts.NT != nil {
			nt = *opts.NT
		} else {
			if nt == 0 {
				nt = 10000
			}
			emit(opts.Diagnostic, "n_t not supplied for a lazy provider; defaulting to %d", nt)
		}
	}

	// Rule 1: window.
	var ndft int
	var window []float64
	switch w := opts.Window.(type) {
	case nil:
		ndft = 1 << int(math.Floor(math.Log2(float64(nt)/10)))
		window = Hamming(ndft)
	case int:
		ndft = w
		window = Hamming(ndft)
	case []float64:
		ndft = len(w)
		window = append([]float64(nil), w...)
	default:
		return nil, paramErrorf("window must be nil, int, or []float64, got %T", opts.Window)
	}
	if ndft < 4 {
		return nil, paramErrorf("N_DFT must be >= 4, got %d", ndft)
	}

	// Rule 2: overlap.
	novlp := ndft / 2
	if opts.NOvlp != nil {
		novlp = *opts.NOvlp
	}
	if novlp > ndft-1 || novlp < 0 {
		return nil, paramErrorf("N_ovlp must be in [0, %d], got %d", ndft-1, novlp)
	}

	// Rule 3: timestep.
	dt := 1.0
	if opts.Dt != nil {
		dt = *opts.Dt
	}
	if dt <= 0 {
		return nil, paramErrorf("dt must be strictly positive, got %v", dt)
	}

	// Rule 4: weight.
	n := nx(desc.Shape)
	weight := make([]float64, n)
	for i := range weight {
		weight[i] = 1
	}
	if opts.Weight != nil {
		if len(opts.Weight) != n {
			return nil, paramErrorf("weight has %d elements, want %d", len(opts.Weight), n)
		}
		weight = append([]float64(nil), opts.Weight...)
	}

	// Rule 5: mean.
	var mean []complex128
	if opts.Mean != nil {
		if len(opts.Mean) != n {
			return nil, paramErrorf("mean has %d elements, want %d", len(opts.Mean), n)
		}
		mean = append([]complex128(nil), opts.Mean...)
	} else if eager, ok := p.(*EagerProvider); ok {
		mean = eager.Mean()
	} else {
		mean = make([]complex128, n)
		emit(opts.Diagnostic, "no mean supplied for a lazy provider; low-frequency accuracy will degrade")
	}

	// Rule 6: block count.
	nblks := (nt - novlp) / (ndft - novlp)
	if nblks < 2 {
		return nil, paramErrorf("N_blks must be >= 2, got %d (N_t=%d, N_DFT=%d, N_ovlp=%d)", nblks, nt, ndft, novlp)
	}

	nsave := nblks
	if opts.NSave != nil {
		nsave = *opts.NSave
		if nsave < 0 || nsave > nblks {
			return nil, paramErrorf("n_save must be in [0, %d], got %d", nblks, nsave)
		}
	}

	confLevel := 0.95
	if opts.ConfLevel != nil {
		confLevel = *opts.ConfLevel
	}
	if confLevel <= 0 || confLevel >= 1 {
		return nil, paramErrorf("conf_level must be in (0,1), got %v", confLevel)
	}

	deleteBlocks := true
	if opts.DeleteBlocks != nil {
		deleteBlocks = *opts.DeleteBlocks
	}
	saveDir := opts.SaveDir
	if saveDir == "" {
		saveDir = "results"
	}

	return &Params{
		NDFT:         ndft,
		NOvlp:        novlp,
		NBlks:        nblks,
		Dt:           dt,
		Window:       window,
		Gain:         WindowGain(window),
		Weight:       weight,
		Mean:         mean,
		IsComplex:    isComplex,
		NSave:        nsave,
		ConfLevel:    confLevel,
		WantConf:     opts.WantConfidence,
		SaveBlocks:   opts.SaveBlocks,
		DeleteBlocks: deleteBlocks,
		SaveDir:      saveDir,
		SaveFreqs:    append([]int(nil), opts.SaveFreqs...),
		Workers:      opts.Workers,
		Shape:        append([]int(nil), desc.Shape...),
		NT:           nt,
	}, nil
}
