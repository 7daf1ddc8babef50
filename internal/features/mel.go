package features

import "math"

// hzToMel converts a frequency to the HTK mel scale.
func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

// melFilterbank builds triangular filters over FFT bins 0..FrameSize/2,
// spanning 0 Hz to melMaxHz with numMelBands bands.
func melFilterbank(sampleRate int) [][]float64 {
	numBins := FrameSize/2 + 1
	binHz := float64(sampleRate) / FrameSize

	maxMel := hzToMel(melMaxHz)
	points := make([]float64, numMelBands+2)
	for i := range points {
		points[i] = melToHz(maxMel * float64(i) / float64(numMelBands+1))
	}

	bank := make([][]float64, numMelBands)
	for b := range bank {
		left, center, right := points[b], points[b+1], points[b+2]
		filter := make([]float64, numBins)
		for k := 0; k < numBins; k++ {
			freq := float64(k) * binHz
			switch {
			case freq <= left || freq >= right:
				// outside the triangle
			case freq < center:
				filter[k] = (freq - left) / (center - left)
			default:
				filter[k] = (right - freq) / (right - center)
			}
		}
		bank[b] = filter
	}
	return bank
}

// dctIIBasis precomputes the orthonormal DCT-II rows that map log mel
// energies to the first NumMFCC cepstral coefficients.
func dctIIBasis() [][]float64 {
	basis := make([][]float64, NumMFCC)
	for i := range basis {
		row := make([]float64, numMelBands)
		scale := math.Sqrt(2.0 / numMelBands)
		if i == 0 {
			scale = math.Sqrt(1.0 / numMelBands)
		}
		for j := range row {
			row[j] = scale * math.Cos(math.Pi/numMelBands*(float64(j)+0.5)*float64(i))
		}
		basis[i] = row
	}
	return basis
}
