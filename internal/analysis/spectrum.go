package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/massim/internal/dynamo"
)

// Spectrum returns the one-sided amplitude spectrum of samples taken every
// dt seconds. The mean is removed and a Hann window applied first.
func Spectrum(samples []float64, dt float64) (freqs, amps []float64, err error) {
	n := len(samples)
	if n < 4 {
		return nil, nil, fmt.Errorf("%w: spectrum needs at least 4 samples, got %d", dynamo.ErrInvalidArgument, n)
	}
	if dt <= 0 {
		return nil, nil, fmt.Errorf("%w: sample interval %g must be positive", dynamo.ErrInvalidArgument, dt)
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	windowed := make([]float64, n)
	for i, v := range samples {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * w
	}

	spectrum := fft.FFTReal(windowed)
	half := n/2 + 1
	freqs = make([]float64, half)
	amps = make([]float64, half)
	for k := 0; k < half; k++ {
		freqs[k] = float64(k) / (float64(n) * dt)
		amps[k] = 2 * cmplx.Abs(spectrum[k]) / float64(n)
	}
	return freqs, amps, nil
}

// DominantFrequency picks the bin with the largest amplitude, ignoring DC.
func DominantFrequency(freqs, amps []float64) (float64, float64) {
	best, bestAmp := 0.0, 0.0
	for k := 1; k < len(amps) && k < len(freqs); k++ {
		if amps[k] > bestAmp {
			best, bestAmp = freqs[k], amps[k]
		}
	}
	return best, bestAmp
}
