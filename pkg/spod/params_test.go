package spod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eagerRampProvider(t *testing.T, n int) *EagerProvider {
	t.Helper()
	frames := make([][]float64, n)
	for i := range frames {
		frames[i] = []float64{float64(i)}
	}
	p, err := NewEagerProviderFromReal([]int{1}, frames)
	require.NoError(t, err)
	return p
}

func TestResolveParamsDefaults(t *testing.T) {
	p := eagerRampProvider(t, 1000)
	params, err := ResolveParams(p, Options{})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, params.NDFT, 4)
	assert.Equal(t, params.NDFT/2, params.NOvlp)
	assert.Equal(t, 1.0, params.Dt)
	assert.GreaterOrEqual(t, params.NBlks, 2)
	assert.Len(t, params.Weight, 1)
	assert.Equal(t, 1.0, params.Weight[0])
}

func TestResolveParamsRejectsShortWindow(t *testing.T) {
	p := eagerRampProvider(t, 1000)
	_, err := ResolveParams(p, Options{Window: 2})
	require.Error(t, err)
	var spodErr *Error
	require.ErrorAs(t, err, &spodErr)
	assert.Equal(t, KindParameter, spodErr.Kind)
}

func TestResolveParamsRejectsTooFewBlocks(t *testing.T) {
	p := eagerRampProvider(t, 10)
	_, err := ResolveParams(p, Options{Window: 8, NOvlp: intPtr(0)})
	require.Error(t, err)
}

func TestResolveParamsWeightSizeMismatch(t *testing.T) {
	p := eagerRampProvider(t, 1000)
	_, err := ResolveParams(p, Options{Weight: []float64{1, 2}})
	require.Error(t, err)
}

func TestResolveParamsExplicitWindowVector(t *testing.T) {
	p := eagerRampProvider(t, 1000)
	w := Hamming(16)
	params, err := ResolveParams(p, Options{Window: w})
	require.NoError(t, err)
	assert.Equal(t, 16, params.NDFT)
	assert.Equal(t, w, params.Window)
}

func TestResolveParamsConfLevelBounds(t *testing.T) {
	p := eagerRampProvider(t, 1000)
	bad := 1.5
	_, err := ResolveParams(p, Options{ConfLevel: &bad})
	require.Error(t, err)
}

func TestResolveParamsLazyProviderWarnsWithoutNT(t *testing.T) {
	count := 0
	fn := func(i int) ([]complex128, error) { return []complex128{complex(float64(i), 0)}, nil }
	p, err := NewLazyProvider([]int{1}, 500, fn, boolPtr(false))
	require.NoError(t, err)

	var messages []string
	_, err = ResolveParams(p, Options{
		NT: nil,
		Diagnostic: func(d Diagnostic) {
			count++
			messages = append(messages, d.Message)
		},
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 1)
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
