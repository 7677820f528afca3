// internal/media/media_test.go
package media

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remoteflow/internal/models"
)

func TestEncodeDecodePNG_RoundTrip(t *testing.T) {
	img := models.NewImage(4, 3)
	for i := range img.Pix {
		img.Pix[i] = float32(i) / float32(len(img.Pix))
	}

	data, err := EncodePNG(img)
	require.NoError(t, err)

	got, err := DecodeImage(data)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Width)
	assert.Equal(t, 3, got.Height)
	for i := range img.Pix {
		assert.InDelta(t, img.Pix[i], got.Pix[i], 1.0/255, "pixel %d", i)
	}
}

func TestEncodePNG_RejectsBadBuffers(t *testing.T) {
	_, err := EncodePNG(models.Image{Width: 2, Height: 2, Pix: make([]float32, 5)})
	assert.Error(t, err)

	_, err = EncodePNG(models.Image{})
	assert.Error(t, err)
}

func TestDecodeImage_RejectsGarbage(t *testing.T) {
	_, err := DecodeImage([]byte("not an image"))
	assert.Error(t, err)
}

func TestEncodeDecodeWAV_RoundTrip(t *testing.T) {
	wave := models.NewWaveform(2, 200)
	for s := 0; s < 200; s++ {
		wave.Data[s] = float32(s%50)/50 - 0.5      // channel 0
		wave.Data[200+s] = 0.25                    // channel 1
	}
	in := models.Audio{Waveform: wave, SampleRate: 44100}

	path := filepath.Join(t.TempDir(), "roundtrip.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, EncodeWAV(f, in))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	got, err := DecodeWAV(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 44100, got.SampleRate)
	assert.Equal(t, []int{2, 200}, got.Waveform.Shape)
	for i := range wave.Data {
		assert.InDelta(t, wave.Data[i], got.Waveform.Data[i], 2.0/32768, "sample %d", i)
	}
}

func TestEncodeWAV_NormalizesBatchedWaveform(t *testing.T) {
	batched := models.Audio{Waveform: models.NewWaveform(1, 2, 64), SampleRate: 22050}
	flat := models.Audio{Waveform: models.NewWaveform(2, 64), SampleRate: 22050}

	encode := func(a models.Audio) []byte {
		f, err := os.Create(filepath.Join(t.TempDir(), "out.wav"))
		require.NoError(t, err)
		require.NoError(t, EncodeWAV(f, a))
		require.NoError(t, f.Close())
		data, err := os.ReadFile(f.Name())
		require.NoError(t, err)
		return data
	}

	assert.Equal(t, encode(flat), encode(batched), "unit batch must encode identically to rank-2")
}

func TestEncodeWAV_RejectsInvalidRank(t *testing.T) {
	var sink discardWriteSeeker
	err := EncodeWAV(&sink, models.Audio{Waveform: models.NewWaveform(1, 1, 2, 64), SampleRate: 44100})
	assert.Error(t, err)

	err = EncodeWAV(&sink, models.Audio{Waveform: models.Waveform{}, SampleRate: 44100})
	assert.Error(t, err)
}

func TestDecodeWAV_RejectsGarbage(t *testing.T) {
	_, err := DecodeWAV(bytes.NewReader([]byte("RIFFnope")))
	assert.Error(t, err)
}

func TestIsVideoFilename(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"out.mp4", true},
		{"OUT.MP4", true},
		{"anim.gif", true},
		{"clip.webm", true},
		{"movie.mkv", true},
		{"a.mov", true},
		{"old.avi", true},
		{"still.png", false},
		{"track.wav", false},
		{"noext", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsVideoFilename(tt.name), tt.name)
	}
}

// discardWriteSeeker satisfies io.WriteSeeker for encode error paths.
type discardWriteSeeker struct{ off int64 }

func (d *discardWriteSeeker) Write(p []byte) (int, error) {
	d.off += int64(len(p))
	return len(p), nil
}

func (d *discardWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		d.off = offset
	case io.SeekCurrent:
		d.off += offset
	}
	return d.off, nil
}
