package processing

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/openepr/cwepr/dataset"
)

// CorrectPhase rotates the spectrum by the given phase angle (degrees) and
// keeps the real part, removing dispersive admixture from the absorption
// signal. A zero angle takes the phase recorded in the metadata. The
// complex representation of each trace is obtained via the Hilbert
// transform.
func CorrectPhase(d *dataset.Dataset, angle float64) error {
	if d.Data.Points() == 0 {
		return ErrEmptyDataset
	}

	if angle == 0 {
		angle = d.Metadata.SignalChannel.Phase.Value
	}

	if angle == 0 {
		return nil
	}

	rotation := complex(math.Cos(-angle*math.Pi/180), math.Sin(-angle*math.Pi/180))

	for _, row := range d.Data.Values {
		analytic, err := hilbert(row)
		if err != nil {
			return err
		}

		for i := range row {
			row[i] = real(analytic[i] * rotation)
		}
	}

	d.Metadata.SignalChannel.Phase.Value = 0

	return nil
}

// hilbert returns the analytic signal of data: the inverse transform of
// the spectrum with negative frequencies zeroed and positive frequencies
// doubled.
func hilbert(data []float64) ([]complex128, error) {
	n := len(data)
	fftSize := nextPowerOf2(n)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("processing: failed to create FFT plan: %w", err)
	}

	padded := make([]complex128, fftSize)
	for i, v := range data {
		padded[i] = complex(v, 0)
	}

	spectrum := make([]complex128, fftSize)
	if err := plan.Forward(spectrum, padded); err != nil {
		return nil, fmt.Errorf("processing: forward FFT: %w", err)
	}

	// Keep DC and Nyquist, double positive, zero negative frequencies.
	for i := 1; i < fftSize/2; i++ {
		spectrum[i] *= 2
	}

	for i := fftSize/2 + 1; i < fftSize; i++ {
		spectrum[i] = 0
	}

	analytic := make([]complex128, fftSize)
	if err := plan.Inverse(analytic, spectrum); err != nil {
		return nil, fmt.Errorf("processing: inverse FFT: %w", err)
	}

	return analytic[:n], nil
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	out := 1
	for out < n {
		out <<= 1
	}

	return out
}
