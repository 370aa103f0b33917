// Package server provides the read-only Echo JSON API over a completed
// streaming SPOD results directory.
package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/gospod/spod/pkg/blockstore"
	"github.com/gospod/spod/pkg/spod"
)

// Results serves a streaming results directory written by spod.Compute
// with save_blocks=true: its manifest (frequency axis, energies, optional
// confidence bounds) plus on-demand mode lookups.
type Results struct {
	man      *spod.Manifest
	accessor *spod.Accessor
}

// OpenResults reads manifest.json from dir and reopens its block store for
// mode lookups.
func OpenResults(dir string) (*Results, error) {
	man, err := spod.ReadManifest(dir)
	if err != nil {
		return nil, err
	}
	store, err := blockstore.OpenStreamingStore(dir, man.Shape, man.NF, man.NX, man.NBlks)
	if err != nil {
		return nil, err
	}
	return &Results{man: man, accessor: spod.NewAccessor(store, man.Shape)}, nil
}

// Run starts the results server on addr over the results directory dir.
func Run(addr, dir string) error {
	res, err := OpenResults(dir)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/api/frequencies", res.listFrequencies)
	e.GET("/api/energies", res.listEnergies)
	e.GET("/api/modes/:freq/:mode", res.getMode)

	return e.Start(addr)
}

// listFrequencies returns the resolved frequency axis and segmenting
// parameters.
func (r *Results) listFrequencies(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"f":          r.man.F,
		"n_dft":      r.man.NDFT,
		"n_ovlp":     r.man.NOvlp,
		"n_blks":     r.man.NBlks,
		"dt":         r.man.Dt,
		"is_complex": r.man.IsComplex,
	})
}

// listEnergies returns the mode energy spectrum L and, if computed, the
// confidence bounds Lc, indexed [frequency][mode].
func (r *Results) listEnergies(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"l":  r.man.L,
		"lc": r.man.Lc,
	})
}

// getMode returns the flattened spatial mode at the given frequency and
// mode index, reshaped to the dataset's spatial shape.
func (r *Results) getMode(c echo.Context) error {
	freqIdx, err := strconv.Atoi(c.Param("freq"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid frequency index")
	}
	modeIdx, err := strconv.Atoi(c.Param("mode"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid mode index")
	}

	mode, err := r.accessor.Mode(freqIdx, modeIdx)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	re := make([]float64, len(mode.Data))
	im := make([]float64, len(mode.Data))
	for i, v := range mode.Data {
		re[i] = real(v)
		im[i] = imag(v)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"shape": mode.Shape,
		"real":  re,
		"imag":  im,
	})
}
