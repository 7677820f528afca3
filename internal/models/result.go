// internal/models/result.go
package models

import "path"

const (
	placeholderEdge = 64

	// SilenceSampleRate is the sample rate of the silent audio placeholder.
	SilenceSampleRate = 44100

	// DefaultSuccessText is returned when a job succeeds without any
	// text-bearing output node.
	DefaultSuccessText = "workflow executed"
)

// AssetRef identifies a server-side artifact by filename, optional
// subfolder and folder type ("input", "output", "temp").
type AssetRef struct {
	Filename  string `json:"filename"`
	Subfolder string `json:"subfolder,omitempty"`
	Type      string `json:"type,omitempty"`
}

// Ref returns the subfolder-qualified filename used when referencing an
// uploaded asset from a workflow input field.
func (r AssetRef) Ref() string {
	if r.Subfolder == "" {
		return r.Filename
	}
	return path.Join(r.Subfolder, r.Filename)
}

// ResolvedResult is the complete caller-facing outcome of one
// invocation. Every field is always populated; failed or absent
// outputs fall back to placeholders.
type ResolvedResult struct {
	Image Image
	Text  string
	Audio Audio
	Video Video
}

// PlaceholderImage returns the 64×64 all-black fallback image.
func PlaceholderImage() Image {
	return NewImage(placeholderEdge, placeholderEdge)
}

// PlaceholderVideo returns a single-frame all-black fallback video.
func PlaceholderVideo() Video {
	return Video{Frames: []Image{PlaceholderImage()}}
}

// SilentAudio returns one second of two-channel silence at 44100Hz.
func SilentAudio() Audio {
	return Audio{
		Waveform:   NewWaveform(2, SilenceSampleRate),
		SampleRate: SilenceSampleRate,
	}
}

// PlaceholderResult builds a fully degraded result carrying the given
// status text.
func PlaceholderResult(text string) ResolvedResult {
	return ResolvedResult{
		Image: PlaceholderImage(),
		Text:  text,
		Audio: SilentAudio(),
		Video: PlaceholderVideo(),
	}
}
