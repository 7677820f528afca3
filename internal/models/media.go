// internal/models/media.go
package models

import "fmt"

// Image is an H×W RGB pixel buffer with channel values in [0,1].
// Pix is row-major, three floats per pixel.
type Image struct {
	Width  int
	Height int
	Pix    []float32
}

// NewImage returns an all-black image of the given dimensions.
func NewImage(width, height int) Image {
	return Image{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*3),
	}
}

// Video is an ordered sequence of same-sized RGB frames.
type Video struct {
	Frames []Image
}

// Waveform is a flat float sample buffer with an explicit shape.
// The canonical layout is (channels, samples); see Normalize.
type Waveform struct {
	Shape []int
	Data  []float32
}

// NewWaveform allocates a zeroed waveform of the given shape.
func NewWaveform(shape ...int) Waveform {
	size := 1
	for _, d := range shape {
		size *= d
	}
	return Waveform{Shape: shape, Data: make([]float32, size)}
}

func (w Waveform) Rank() int {
	return len(w.Shape)
}

// Size returns the number of samples implied by the shape.
func (w Waveform) Size() int {
	if len(w.Shape) == 0 {
		return 0
	}
	size := 1
	for _, d := range w.Shape {
		size *= d
	}
	return size
}

// Normalize coerces a waveform to the canonical (channels, samples)
// layout. A rank-3 buffer is treated as (batch, channels, samples) and
// must have a batch of one; a rank-1 buffer becomes a single channel.
// Any other rank is invalid.
func (w Waveform) Normalize() (Waveform, error) {
	if w.Size() != len(w.Data) {
		return Waveform{}, fmt.Errorf("waveform shape %v does not match %d samples", w.Shape, len(w.Data))
	}
	switch w.Rank() {
	case 3:
		if w.Shape[0] != 1 {
			return Waveform{}, fmt.Errorf("cannot drop batch dimension of size %d", w.Shape[0])
		}
		return Waveform{Shape: []int{w.Shape[1], w.Shape[2]}, Data: w.Data}, nil
	case 2:
		return w, nil
	case 1:
		return Waveform{Shape: []int{1, len(w.Data)}, Data: w.Data}, nil
	default:
		return Waveform{}, fmt.Errorf("unsupported waveform rank %d", w.Rank())
	}
}

// Channels returns the channel count of a rank-2 waveform.
func (w Waveform) Channels() int {
	if w.Rank() != 2 {
		return 0
	}
	return w.Shape[0]
}

// Samples returns the per-channel sample count of a rank-2 waveform.
func (w Waveform) Samples() int {
	if w.Rank() != 2 {
		return 0
	}
	return w.Shape[1]
}

// Audio couples a waveform with its sample rate.
type Audio struct {
	Waveform   Waveform
	SampleRate int
}
