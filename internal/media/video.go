// internal/media/video.go
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"remoteflow/internal/common/logger"
	"remoteflow/internal/models"
)

// videoExtensions gates which downloaded artifacts get demuxed rather
// than decoded as still images.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".webm": true,
	".mkv":  true,
	".gif":  true,
}

// IsVideoFilename reports whether a filename carries a known video
// container extension.
func IsVideoFilename(name string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(name))]
}

// Demuxer splits a video container into an RGB frame sequence and, when
// possible, an embedded audio track. It shells out to an external
// transcoder; its absence is non-fatal for audio but fatal for frames.
type Demuxer struct {
	ffmpegPath string
	timeout    time.Duration
	log        logger.Logger
}

func NewDemuxer(ffmpegPath string, timeout time.Duration, log logger.Logger) *Demuxer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Demuxer{ffmpegPath: ffmpegPath, timeout: timeout, log: log}
}

// Demux extracts frames and audio from container bytes. ext is the
// original artifact extension including the dot. Audio extraction
// failure degrades to a nil audio; frame extraction failure is an
// error.
func (d *Demuxer) Demux(ctx context.Context, container []byte, ext string) (models.Video, *models.Audio, error) {
	workDir, err := os.MkdirTemp("", "remoteflow-demux-*")
	if err != nil {
		return models.Video{}, nil, err
	}
	defer os.RemoveAll(workDir)

	containerPath := filepath.Join(workDir, "container"+ext)
	if err := os.WriteFile(containerPath, container, 0o600); err != nil {
		return models.Video{}, nil, err
	}

	video, err := d.extractFrames(ctx, workDir, containerPath)
	if err != nil {
		return models.Video{}, nil, err
	}

	audio := d.extractAudio(ctx, workDir, containerPath, container)
	return video, audio, nil
}

func (d *Demuxer) extractFrames(ctx context.Context, workDir, containerPath string) (models.Video, error) {
	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	pattern := filepath.Join(workDir, "frame_%05d.png")
	cmd := exec.CommandContext(runCtx, d.ffmpegPath, "-i", containerPath, "-y", pattern)
	if out, err := cmd.CombinedOutput(); err != nil {
		return models.Video{}, fmt.Errorf("frame extraction: %w: %s", err, tail(out))
	}

	paths, err := filepath.Glob(filepath.Join(workDir, "frame_*.png"))
	if err != nil {
		return models.Video{}, err
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return models.Video{}, fmt.Errorf("container produced no frames")
	}

	frames := make([]models.Image, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return models.Video{}, err
		}
		frame, err := DecodeImage(data)
		if err != nil {
			return models.Video{}, err
		}
		frames = append(frames, frame)
	}
	return models.Video{Frames: frames}, nil
}

// extractAudio demuxes the audio track to 2ch/44100 PCM. When the
// transcoder fails or is missing it falls back to decoding the
// container directly as WAV; both failing yields no audio.
func (d *Demuxer) extractAudio(ctx context.Context, workDir, containerPath string, container []byte) *models.Audio {
	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	wavPath := filepath.Join(workDir, "audio.wav")
	cmd := exec.CommandContext(runCtx, d.ffmpegPath,
		"-i", containerPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "44100",
		"-ac", "2",
		"-y",
		wavPath,
	)
	if out, err := cmd.CombinedOutput(); err == nil {
		if f, openErr := os.Open(wavPath); openErr == nil {
			defer f.Close()
			if audio, decErr := DecodeWAV(f); decErr == nil {
				return &audio
			}
		}
	} else {
		d.log.Debug("audio track extraction failed", map[string]interface{}{"output": tail(out)})
	}

	if audio, err := DecodeWAV(bytes.NewReader(container)); err == nil {
		return &audio
	}
	return nil
}

func tail(out []byte) string {
	const max = 256
	s := strings.TrimSpace(string(out))
	if len(s) > max {
		return s[len(s)-max:]
	}
	return s
}
