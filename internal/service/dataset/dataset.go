// Package dataset encodes corpus contexts into dense training tensors and
// caches them beside the corpus.
package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// DefaultShuffleSeed seeds Shuffle when no seed is configured
const DefaultShuffleSeed = 777

// Dataset holds the encoded samples as row-major float32 tensors.
// X has shape (Samples, Window, Width) and Y has shape (Samples, Width).
type Dataset struct {
	X       []float32
	Y       []float32
	Samples int
	Window  int
	Width   int
}

// New allocates a zeroed dataset
func New(samples, window, width int) (*Dataset, error) {
	if samples < 0 || window <= 0 || width < 0 {
		return nil, fmt.Errorf("invalid dataset shape (%d, %d, %d)", samples, window, width)
	}
	if width > 0 && samples > math.MaxInt/window/width {
		return nil, fmt.Errorf("dataset shape (%d, %d, %d) overflows", samples, window, width)
	}

	return &Dataset{
		X:       make([]float32, samples*window*width),
		Y:       make([]float32, samples*width),
		Samples: samples,
		Window:  window,
		Width:   width,
	}, nil
}

// Sample returns the window block of sample i
func (d *Dataset) Sample(i int) []float32 {
	size := d.Window * d.Width
	return d.X[i*size : (i+1)*size : (i+1)*size]
}

// Row returns row j of the window of sample i
func (d *Dataset) Row(i, j int) []float32 {
	off := (i*d.Window + j) * d.Width
	return d.X[off : off+d.Width : off+d.Width]
}

// Target returns the target row of sample i
func (d *Dataset) Target(i int) []float32 {
	return d.Y[i*d.Width : (i+1)*d.Width : (i+1)*d.Width]
}

// Shape returns the shapes of X and Y
func (d *Dataset) Shape() (x [3]int, y [2]int) {
	return [3]int{d.Samples, d.Window, d.Width}, [2]int{d.Samples, d.Width}
}

// Bytes returns the memory held by both tensors
func (d *Dataset) Bytes() uint64 {
	return uint64(len(d.X)+len(d.Y)) * 4
}

// Shuffle permutes the samples of X and Y jointly. The permutation depends
// only on seed and the number of samples.
func (d *Dataset) Shuffle(seed uint64) {
	r := rand.New(rand.NewPCG(seed, seed))
	xs := make([]float32, d.Window*d.Width)
	ys := make([]float32, d.Width)

	for i := d.Samples - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		if i == j {
			continue
		}
		swap(d.Sample(i), d.Sample(j), xs)
		swap(d.Target(i), d.Target(j), ys)
	}
}

func swap(a, b, scratch []float32) {
	copy(scratch, a)
	copy(a, b)
	copy(b, scratch)
}
