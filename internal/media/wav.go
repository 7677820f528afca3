// internal/media/wav.go
package media

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"remoteflow/internal/models"
)

const wavBitDepth = 16

// EncodeWAV writes audio as 16-bit PCM WAV. The waveform is normalized
// to (channels, samples) first; invalid ranks are rejected.
func EncodeWAV(w io.WriteSeeker, a models.Audio) error {
	wave, err := a.Waveform.Normalize()
	if err != nil {
		return err
	}
	rate := a.SampleRate
	if rate <= 0 {
		rate = models.SilenceSampleRate
	}

	channels := wave.Channels()
	samples := wave.Samples()

	enc := wav.NewEncoder(w, rate, wavBitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           make([]int, channels*samples),
		SourceBitDepth: wavBitDepth,
	}

	// Interleave channel-major float samples into PCM frames.
	for s := 0; s < samples; s++ {
		for c := 0; c < channels; c++ {
			buf.Data[s*channels+c] = floatToPCM(wave.Data[c*samples+s])
		}
	}

	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

// DecodeWAV reads a PCM WAV stream into a channel-major float waveform.
func DecodeWAV(r io.ReadSeeker) (models.Audio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return models.Audio{}, fmt.Errorf("not a valid wav stream")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return models.Audio{}, err
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 {
		return models.Audio{}, fmt.Errorf("wav stream missing format")
	}

	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels
	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = wavBitDepth
	}
	scale := float32(int(1) << (bitDepth - 1))

	wave := models.NewWaveform(channels, frames)
	for s := 0; s < frames; s++ {
		for c := 0; c < channels; c++ {
			wave.Data[c*frames+s] = float32(buf.Data[s*channels+c]) / scale
		}
	}

	return models.Audio{Waveform: wave, SampleRate: buf.Format.SampleRate}, nil
}

func floatToPCM(v float32) int {
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return int(v * 32767)
}
