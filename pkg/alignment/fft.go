package alignment

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// forwardFFT2 computes the full 2D spectrum of real row-major data with
// power-of-two side lengths. Rows go through gonum's real-input FFT, with
// the upper half of each spectrum restored by conjugate symmetry; columns,
// already complex, use the recursive transform below.
func forwardFFT2(data []float64, w, h int) []complex128 {
	out := make([]complex128, w*h)

	fft := fourier.NewFFT(w)
	rowCoeffs := make([]complex128, w/2+1)
	for y := 0; y < h; y++ {
		fft.Coefficients(rowCoeffs, data[y*w:(y+1)*w])
		for x := 0; x < len(rowCoeffs); x++ {
			out[y*w+x] = rowCoeffs[x]
		}
		for x := len(rowCoeffs); x < w; x++ {
			out[y*w+x] = cmplx.Conj(rowCoeffs[w-x])
		}
	}

	transformColumns(out, w, h)
	return out
}

// forwardComplexFFT2 computes the 2D spectrum of complex row-major data.
func forwardComplexFFT2(data []complex128, w, h int) []complex128 {
	out := make([]complex128, len(data))
	row := make([]complex128, w)
	for y := 0; y < h; y++ {
		copy(row, data[y*w:(y+1)*w])
		copy(out[y*w:(y+1)*w], complexFFT(row))
	}
	transformColumns(out, w, h)
	return out
}

// inverseFFT2 inverts forwardFFT2 up to floating error, using the
// conjugation identity so the forward transform can serve both directions.
func inverseFFT2(freq []complex128, w, h int) []complex128 {
	tmp := make([]complex128, len(freq))
	for i, c := range freq {
		tmp[i] = cmplx.Conj(c)
	}
	tmp = forwardComplexFFT2(tmp, w, h)
	scale := complex(1/float64(w*h), 0)
	for i, c := range tmp {
		tmp[i] = cmplx.Conj(c) * scale
	}
	return tmp
}

// transformColumns runs the complex transform down every column in place.
func transformColumns(data []complex128, w, h int) {
	col := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = data[y*w+x]
		}
		res := complexFFT(col)
		for y := 0; y < h; y++ {
			data[y*w+x] = res[y]
		}
	}
}

// complexFFT is a recursive radix-2 Cooley-Tukey transform. The length
// must be a power of two.
func complexFFT(x []complex128) []complex128 {
	n := len(x)
	if n <= 1 {
		return x
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = x[2*i]
		odd[i] = x[2*i+1]
	}
	even = complexFFT(even)
	odd = complexFFT(odd)

	out := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		t := cmplx.Rect(1, -2*math.Pi*float64(k)/float64(n)) * odd[k]
		out[k] = even[k] + t
		out[k+n/2] = even[k] - t
	}
	return out
}

// nextPow2 returns the smallest power of two not less than n.
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
