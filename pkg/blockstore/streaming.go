package blockstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// blockRecord is the on-disk JSON container for one fft_block{NNNN} file:
// a sparse N_f x Nx matrix whose retained rows are exactly Freqs (§6).
// complex128 cannot be marshaled directly, so Real/Imag are split planes.
type blockRecord struct {
	Block int         `json:"block"`
	NX    int         `json:"nx"`
	Freqs []int       `json:"freqs"`
	Real  [][]float64 `json:"real"`
	Imag  [][]float64 `json:"imag"`
}

// modeRecord is the on-disk JSON container for one spod_f{NNNN} file: a
// complex array of shape (s1,...,sd, n_save), stored flattened as NX x
// NSave real/imag planes; Shape lets a reader reconstruct the spatial
// shape without external knowledge of the run's parameters.
type modeRecord struct {
	Freq  int         `json:"freq"`
	Shape []int       `json:"shape"`
	NX    int         `json:"nx"`
	NSave int         `json:"n_save"`
	Real  [][]float64 `json:"real"`
	Imag  [][]float64 `json:"imag"`
}

// StreamingStore is the on-disk Block Store variant of §4.6: one sparse
// record per segment block, one mode file per saved frequency.
type StreamingStore struct {
	dir           string
	shape         []int
	nf, nx, nblks int
	saveAll       bool
	freqSet       map[int]bool

	mu        sync.Mutex
	modeSaved map[int]int // freqIndex -> n_save actually persisted
}

// NewStreamingStore creates a streaming store rooted at dir, creating the
// directory if needed. Files already in dir are not removed; block and mode
// files are overwritten as they are written. saveFreqs restricts retained
// frequencies; empty means all.
func NewStreamingStore(dir string, shape []int, nf, nx, nblks int, saveFreqs []int) (*StreamingStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, ioError("create save dir", err)
	}
	s := &StreamingStore{
		dir:       dir,
		shape:     append([]int(nil), shape...),
		nf:        nf,
		nx:        nx,
		nblks:     nblks,
		saveAll:   len(saveFreqs) == 0,
		freqSet:   make(map[int]bool, len(saveFreqs)),
		modeSaved: make(map[int]int),
	}
	for _, f := range saveFreqs {
		s.freqSet[f] = true
	}
	return s, nil
}

// OpenStreamingStore reopens an existing results directory for read-only
// access (used by the Mode Accessor and the results server when the
// computing process has already exited). It discovers saved frequencies
// by scanning spod_f{NNNN}.json files.
func OpenStreamingStore(dir string, shape []int, nf, nx, nblks int) (*StreamingStore, error) {
	s := &StreamingStore{
		dir:       dir,
		shape:     append([]int(nil), shape...),
		nf:        nf,
		nx:        nx,
		nblks:     nblks,
		saveAll:   true,
		freqSet:   make(map[int]bool),
		modeSaved: make(map[int]int),
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ioError("open save dir", err)
	}
	for _, e := range entries {
		var idx1 int
		if _, scanErr := fmt.Sscanf(e.Name(), "spod_f%04d.json", &idx1); scanErr == nil {
			data, rerr := os.ReadFile(filepath.Join(dir, e.Name()))
			if rerr != nil {
				continue
			}
			var rec modeRecord
			if json.Unmarshal(data, &rec) == nil {
				s.modeSaved[idx1-1] = rec.NSave
			}
		}
	}
	return s, nil
}

func (s *StreamingStore) blockPath(b int) string {
	return filepath.Join(s.dir, fmt.Sprintf("fft_block%04d.json", b+1))
}

func (s *StreamingStore) modePath(freqIndex int) string {
	return filepath.Join(s.dir, fmt.Sprintf("spod_f%04d.json", freqIndex+1))
}

func (s *StreamingStore) selectedFreqs() []int {
	var sel []int
	if s.saveAll {
		sel = make([]int, s.nf)
		for i := range sel {
			sel[i] = i
		}
		return sel
	}
	for f := range s.freqSet {
		sel = append(sel, f)
	}
	sort.Ints(sel)
	return sel
}

func (s *StreamingStore) PutBlock(b int, rows [][]complex128) error {
	sel := s.selectedFreqs()
	rec := blockRecord{
		Block: b,
		NX:    s.nx,
		Freqs: sel,
		Real:  make([][]float64, len(sel)),
		Imag:  make([][]float64, len(sel)),
	}
	for i, f := range sel {
		re := make([]float64, s.nx)
		im := make([]float64, s.nx)
		for x, v := range rows[f] {
			re[x] = real(v)
			im[x] = imag(v)
		}
		rec.Real[i] = re
		rec.Imag[i] = im
	}
	data, err := json.Marshal(&rec)
	if err != nil {
		return ioError("marshal block", err)
	}
	if err := os.WriteFile(s.blockPath(b), data, 0o644); err != nil {
		return ioError("write block file", err)
	}
	return nil
}

func (s *StreamingStore) saved(freqIndex int) bool {
	if s.saveAll {
		return freqIndex >= 0 && freqIndex < s.nf
	}
	return s.freqSet[freqIndex]
}

func (s *StreamingStore) ReadFrequency(freqIndex int) (*CMatrix, error) {
	if !s.saved(freqIndex) {
		return nil, ErrNotSaved
	}
	result := NewCMatrix(s.nx, s.nblks)
	for b := 0; b < s.nblks; b++ {
		data, err := os.ReadFile(s.blockPath(b))
		if err != nil {
			return nil, ioError("read block file", err)
		}
		var rec blockRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, ioError("unmarshal block", err)
		}
		pos := -1
		for i, f := range rec.Freqs {
			if f == freqIndex {
				pos = i
				break
			}
		}
		if pos < 0 {
			return nil, ErrNotSaved
		}
		for x := 0; x < s.nx; x++ {
			result.Set(x, b, complex(rec.Real[pos][x], rec.Imag[pos][x]))
		}
	}
	return result, nil
}

func (s *StreamingStore) Frequencies() []int { return s.selectedFreqs() }

func (s *StreamingStore) WriteModes(freqIndex int, modes *CMatrix, nSave int) error {
	ncols := nSave
	if ncols > modes.Cols {
		ncols = modes.Cols
	}
	rec := modeRecord{
		Freq:  freqIndex,
		Shape: s.shape,
		NX:    modes.Rows,
		NSave: ncols,
		Real:  make([][]float64, modes.Rows),
		Imag:  make([][]float64, modes.Rows),
	}
	for x := 0; x < modes.Rows; x++ {
		re := make([]float64, ncols)
		im := make([]float64, ncols)
		for j := 0; j < ncols; j++ {
			v := modes.At(x, j)
			re[j] = real(v)
			im[j] = imag(v)
		}
		rec.Real[x] = re
		rec.Imag[x] = im
	}
	data, err := json.Marshal(&rec)
	if err != nil {
		return ioError("marshal modes", err)
	}
	if err := os.WriteFile(s.modePath(freqIndex), data, 0o644); err != nil {
		return ioError("write mode file", err)
	}
	s.mu.Lock()
	s.modeSaved[freqIndex] = ncols
	s.mu.Unlock()
	return nil
}

func (s *StreamingStore) ReadMode(freqIndex, j int) ([]complex128, error) {
	data, err := os.ReadFile(s.modePath(freqIndex))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotSaved
		}
		return nil, ioError("read mode file", err)
	}
	var rec modeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, ioError("unmarshal modes", err)
	}
	if j < 0 || j >= rec.NSave {
		return nil, ErrOutOfRange
	}
	vec := make([]complex128, rec.NX)
	for x := 0; x < rec.NX; x++ {
		vec[x] = complex(rec.Real[x][j], rec.Imag[x][j])
	}
	return vec, nil
}

func (s *StreamingStore) ModeFrequencies() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.modeSaved))
	for f := range s.modeSaved {
		out = append(out, f)
	}
	sort.Ints(out)
	return out
}

// DeleteBlocks removes every fft_block{NNNN}.json file, implementing the
// delete_blocks option (§6): "deletes block files after mode extraction
// completes".
func (s *StreamingStore) DeleteBlocks() error {
	for b := 0; b < s.nblks; b++ {
		if err := os.Remove(s.blockPath(b)); err != nil && !os.IsNotExist(err) {
			return ioError("delete block file", err)
		}
	}
	return nil
}

func (s *StreamingStore) Close() error { return nil }

// Dir returns the store's root directory.
func (s *StreamingStore) Dir() string { return s.dir }
