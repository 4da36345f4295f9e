package layout

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jit-sim/jit-sim/sim/trace"
)

func TestRun_UnknownLayout_ReturnsConfigurationError(t *testing.T) {
	// GIVEN a layout id nobody registered
	res, err := Run("foo", Parameters{})

	// THEN no result is produced and the error is classified
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrUnknownLayout))
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Contains(t, err.Error(), `"foo"`)
}

func TestLookup_Alias(t *testing.T) {
	l, err := Lookup("factory")
	require.NoError(t, err)
	assert.Equal(t, FactoryLayoutID, l.ID)

	res, err := Run("factory", seeded(1, nil))
	require.NoError(t, err)
	assert.Equal(t, FactoryLayoutID, res.Layout())
}

func TestLayouts_ListsEveryLayoutWithDefaults(t *testing.T) {
	ids := make([]string, 0)
	for _, l := range Layouts() {
		ids = append(ids, l.ID)
		assert.NotEmpty(t, l.Description)
		assert.NotEmpty(t, l.Defaults(), l.ID)
	}
	assert.Equal(t, []string{ShoeLayoutID, CarPartsLayoutID, FactoryLayoutID}, ids)
}

func TestRun_NonNumericParameter_ReturnsConfigError(t *testing.T) {
	res, err := Run(ShoeLayoutID, Parameters{"media_corte": "abc"})

	require.Error(t, err)
	assert.Nil(t, res)
	var cfg *ConfigError
	require.True(t, errors.As(err, &cfg))
	assert.Equal(t, ShoeLayoutID, cfg.Layout)
	assert.Equal(t, "media_corte", cfg.Field)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestRun_EmptyParams_EqualsExplicitDefaults(t *testing.T) {
	for _, l := range Layouts() {
		t.Run(l.ID, func(t *testing.T) {
			// GIVEN the same seed, once with no parameters and once with every default spelled out
			implicit, err := Run(l.ID, seeded(11, nil))
			require.NoError(t, err)
			explicit, err := Run(l.ID, seeded(11, l.Defaults()))
			require.NoError(t, err)

			// THEN the results are identical
			assert.Equal(t, implicit, explicit)
		})
	}
}

func TestRun_UnknownParametersIgnored(t *testing.T) {
	a, err := Run(ShoeLayoutID, seeded(3, nil))
	require.NoError(t, err)
	b, err := Run(ShoeLayoutID, seeded(3, Parameters{"cor_do_sapato": "azul"}))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRun_SameSeed_Deterministic(t *testing.T) {
	for _, l := range Layouts() {
		t.Run(l.ID, func(t *testing.T) {
			first, err := Run(l.ID, seeded(42, nil))
			require.NoError(t, err)
			second, err := Run(l.ID, seeded(42, nil))
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestRun_ConcurrentRuns_AreIsolated(t *testing.T) {
	// GIVEN a sequential reference run
	want, err := Run(CarPartsLayoutID, seeded(5, Parameters{"tempo_simulacao": 3600}))
	require.NoError(t, err)

	// WHEN the same run executes on many goroutines at once
	const n = 8
	got := make([]Result, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i], errs[i] = Run(CarPartsLayoutID, seeded(5, Parameters{"tempo_simulacao": 3600}))
		}()
	}
	wg.Wait()

	// THEN every run matches the reference
	for i := range n {
		require.NoError(t, errs[i])
		assert.Equal(t, want, got[i])
	}
}

func TestRunWithOptions_SeedOverridesParameter(t *testing.T) {
	seed := int64(7)
	viaOption, err := RunWithOptions(ShoeLayoutID, seeded(8, nil), Options{Seed: &seed})
	require.NoError(t, err)
	viaParam, err := Run(ShoeLayoutID, seeded(7, nil))
	require.NoError(t, err)
	assert.Equal(t, viaParam, viaOption)
}

func TestRun_FractionalSeed_Rejected(t *testing.T) {
	_, err := Run(FactoryLayoutID, Parameters{"seed": 1.5})
	var cfg *ConfigError
	require.True(t, errors.As(err, &cfg))
	assert.Equal(t, "seed", cfg.Field)
}

func TestRunWithOptions_Trace_AttachesSummary(t *testing.T) {
	res, err := RunWithOptions(ShoeLayoutID, seeded(2, Parameters{"estoque_inicial": 10}),
		Options{Trace: trace.TraceLevelStages})
	require.NoError(t, err)

	shoe := res.(ShoeResult)
	require.NotNil(t, shoe.Trace)
	// One record per completed stage visit.
	assert.Equal(t, shoe.Processed[stageCut]+shoe.Processed[stageSew], shoe.Trace.TotalRecords)
	assert.Equal(t, 10, shoe.Trace.UniqueItems)
	require.Len(t, shoe.Trace.Stages, 2)
	assert.Equal(t, stageCut, shoe.Trace.Stages[0].Stage)
}

func TestRunWithOptions_TraceOff_NoSummary(t *testing.T) {
	res, err := Run(ShoeLayoutID, seeded(2, nil))
	require.NoError(t, err)
	assert.Nil(t, res.(ShoeResult).Trace)
}

func TestRunWithOptions_UnknownTraceLevel(t *testing.T) {
	_, err := RunWithOptions(ShoeLayoutID, nil, Options{Trace: "verbose"})
	var cfg *ConfigError
	require.True(t, errors.As(err, &cfg))
	assert.Equal(t, "trace", cfg.Field)
}
