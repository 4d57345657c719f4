package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oscillator(n int, dt, freq float64) []dynamo.Frame {
	frames := make([]dynamo.Frame, n)
	for i := range frames {
		t := float64(i) * dt
		frames[i] = dynamo.Frame{
			Step:      i,
			Time:      t,
			Positions: []r3.Vector{{X: 1, Y: 2 + math.Sin(2*math.Pi*freq*t), Z: 0}},
		}
	}
	return frames
}

func TestSpectrumFindsDominantFrequency(t *testing.T) {
	frames := oscillator(512, 0.01, 4)
	values, _, err := Series(frames, 0, AxisY)
	require.NoError(t, err)

	freqs, amps, err := Spectrum(values, 0.01)
	require.NoError(t, err)
	require.Len(t, freqs, 257)

	f, amp := DominantFrequency(freqs, amps)
	assert.InDelta(t, 4.0, f, 0.2)
	assert.Greater(t, amp, 0.2)
	assert.Less(t, amps[0], 0.05)
}

func TestSpectrumRejectsBadInput(t *testing.T) {
	_, _, err := Spectrum([]float64{1, 2}, 0.1)
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)

	_, _, err = Spectrum([]float64{1, 2, 3, 4}, 0)
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)
}

func TestSeriesChecksParticle(t *testing.T) {
	_, _, err := Series(oscillator(4, 0.1, 1), 3, AxisX)
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)
}

func TestParseAxis(t *testing.T) {
	a, err := ParseAxis("z")
	require.NoError(t, err)
	assert.Equal(t, AxisZ, a)
	assert.Equal(t, "z", a.String())

	_, err = ParseAxis("w")
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)
}

func TestDifferentiate(t *testing.T) {
	vel, err := Differentiate([]float64{0, 1, 4, 9}, []float64{0, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 4, 5}, vel)

	_, err = Differentiate([]float64{0}, []float64{0, 1})
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
}

func TestPhasePortraitOfOscillator(t *testing.T) {
	frames := oscillator(400, 0.005, 1)
	p, err := NewPhasePortrait(frames, 0, AxisY)
	require.NoError(t, err)
	require.Len(t, p.Points, 400)

	omega := 2 * math.Pi
	for i := 1; i < len(p.Points)-1; i++ {
		tm := frames[i].Time
		assert.InDelta(t, omega*math.Cos(omega*tm), p.Points[i].V, 0.01)
	}

	out := p.ASCII(40, 12)
	assert.Contains(t, out, "•")
	assert.Equal(t, 12, strings.Count(out, "\n"))
}

func TestPoincareSectionCountsCrossings(t *testing.T) {
	frames := oscillator(1000, 0.01, 1)
	s, err := NewPoincareSection(frames, 0, AxisY, 2)
	require.NoError(t, err)
	// Upward crossings at t = 1..9; t = 0 starts on the level.
	assert.Len(t, s.Points, 9)
	for _, pt := range s.Points {
		assert.Equal(t, 2.0, pt.X)
		assert.Greater(t, pt.V, 0.0)
	}
}

func TestEmptyPortrait(t *testing.T) {
	var p *PhasePortrait
	assert.Equal(t, "no points", p.ASCII(10, 5))
}
