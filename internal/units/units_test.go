package units

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_SameFamily(t *testing.T) {
	cases := []struct {
		q        float64
		from, to Unit
		want     float64
	}{
		{1.5, Kilogram, Gram, 1500},
		{250, Gram, Kilogram, 0.25},
		{2, Liter, Milliliter, 2000},
		{330, Milliliter, Liter, 0.33},
		{7, Each, Each, 7},
		{42, Gram, Gram, 42},
	}
	for _, tc := range cases {
		got, err := Convert(tc.q, tc.from, tc.to)
		require.NoError(t, err)
		assert.InDelta(t, tc.want, got, 1e-9, "%v %s -> %s", tc.q, tc.from, tc.to)
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	values := []float64{0, 0.001, 1, 3.3333, 999.5, 12345.678}
	for _, a := range All() {
		for _, b := range All() {
			if !Compatible(a, b) {
				continue
			}
			for _, x := range values {
				y, err := Convert(x, a, b)
				require.NoError(t, err)
				back, err := Convert(y, b, a)
				require.NoError(t, err)
				assert.InDelta(t, x, back, 1e-9, "%s <-> %s", a, b)
			}
		}
	}
}

func TestConvert_AcrossFamiliesFails(t *testing.T) {
	for _, a := range All() {
		for _, b := range All() {
			fa, _ := a.Family()
			fb, _ := b.Family()
			if fa == fb {
				continue
			}
			_, err := Convert(1, a, b)
			assert.True(t, errors.Is(err, ErrIncompatibleUnits), "%s -> %s", a, b)
		}
	}
}

func TestConvert_UnknownUnit(t *testing.T) {
	_, err := Convert(1, Unit("cup"), Gram)
	assert.ErrorIs(t, err, ErrUnknownUnit)

	_, err = Convert(1, Unit("oz"), Unit("oz"))
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestFamily(t *testing.T) {
	f, err := Kilogram.Family()
	require.NoError(t, err)
	assert.Equal(t, Mass, f)
	assert.Equal(t, "volume", Volume.String())
	assert.True(t, Compatible(Liter, Milliliter))
	assert.False(t, Compatible(Each, Gram))
	assert.False(t, Unit("").Valid())
}

func TestConvert_DownscaleIsExact(t *testing.T) {
	for q := 1; q <= 5000; q++ {
		kg, err := Convert(float64(q), Gram, Kilogram)
		require.NoError(t, err)
		require.Equal(t, float64(q)/1000, kg, "%d g", q)

		l, err := Convert(float64(q), Milliliter, Liter)
		require.NoError(t, err)
		require.Equal(t, float64(q)/1000, l, "%d ml", q)
	}
}

func TestCovers(t *testing.T) {
	assert.True(t, Covers(0.7, 0.7))
	assert.True(t, Covers(0.7, 0.70000000000000006661))
	assert.True(t, Covers(1, 0.5))
	assert.False(t, Covers(0.7, 0.7001))
	assert.False(t, Covers(0, 1e-6))
	assert.True(t, Covers(5000, 5000.000000001))
}
