// internal/resolve/resolver.go
package resolve

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	apperrors "remoteflow/internal/common/errors"
	"remoteflow/internal/common/logger"
	"remoteflow/internal/common/metrics"
	"remoteflow/internal/media"
	"remoteflow/internal/models"
	"remoteflow/internal/workflow"
)

// Image-saving node classes. Explicit saves outrank previews when both
// produced output.
const (
	classSaveImage    = "SaveImage"
	classPreviewImage = "PreviewImage"
)

// Downloader fetches artifact bytes from the remote server.
type Downloader interface {
	Download(ctx context.Context, ref models.AssetRef) ([]byte, error)
}

// Demuxer splits a video container into frames and an optional audio
// track.
type Demuxer interface {
	Demux(ctx context.Context, container []byte, ext string) (models.Video, *models.Audio, error)
}

// Resolver turns a terminal output map into the caller-facing result.
// Individual artifact failures are skipped; the result is always fully
// populated, with placeholders where nothing qualified.
type Resolver struct {
	downloader Downloader
	demuxer    Demuxer
	log        logger.Logger
}

func New(downloader Downloader, demuxer Demuxer, log logger.Logger) *Resolver {
	return &Resolver{
		downloader: downloader,
		demuxer:    demuxer,
		log:        log,
	}
}

// buckets groups output-bearing node ids by artifact kind.
type buckets struct {
	saveImage    []string
	previewImage []string
	text         []string
	video        []string
	audio        []string
	firstImage   string
}

// Resolve classifies each node's output record, selects the
// authoritative node per artifact kind and materializes its values.
func (r *Resolver) Resolve(ctx context.Context, g workflow.Graph, raw map[string]json.RawMessage) models.ResolvedResult {
	decoded := r.decodeAll(raw)
	b := r.classify(g, decoded)

	result := models.ResolvedResult{
		Image: models.PlaceholderImage(),
		Text:  models.DefaultSuccessText,
		Audio: models.SilentAudio(),
		Video: models.PlaceholderVideo(),
	}

	if node := selectImageNode(b); node != "" {
		if img, ok := r.materializeImage(ctx, decoded[node]); ok {
			result.Image = img
		}
	}

	if node := maxNumericID(b.text); node != "" {
		if text, ok := materializeText(decoded[node]); ok {
			result.Text = text
		}
	}

	var audioFromVideo *models.Audio
	if node := maxNumericID(b.video); node != "" {
		if video, audio, ok := r.materializeVideo(ctx, decoded[node]); ok {
			result.Video = video
			audioFromVideo = audio
		}
	}
	if audioFromVideo != nil {
		result.Audio = *audioFromVideo
	}

	// A dedicated audio node overrides any track recovered from video.
	if node := maxNumericID(b.audio); node != "" {
		if audio, ok := r.materializeAudio(ctx, decoded[node]); ok {
			result.Audio = audio
		}
	}

	return result
}

func (r *Resolver) decodeAll(raw map[string]json.RawMessage) map[string]*NodeOutput {
	decoded := make(map[string]*NodeOutput, len(raw))
	for id, rec := range raw {
		out, err := DecodeNodeOutput(rec)
		if err != nil {
			r.log.WithError(err).Debug("skipping undecodable output record", map[string]interface{}{"nodeId": id})
			continue
		}
		if out.Empty() {
			continue
		}
		decoded[id] = out
	}
	return decoded
}

func (r *Resolver) classify(g workflow.Graph, decoded map[string]*NodeOutput) buckets {
	var b buckets
	for _, id := range sortedIDs(decoded) {
		out := decoded[id]

		if out.Has(KindImage) {
			var class string
			if node, ok := g[id]; ok && node != nil {
				class = node.ClassType
			}
			switch class {
			case classSaveImage:
				b.saveImage = append(b.saveImage, id)
			case classPreviewImage:
				b.previewImage = append(b.previewImage, id)
			}
			if b.firstImage == "" {
				b.firstImage = id
			}
		}
		if out.Has(KindText) {
			b.text = append(b.text, id)
		}
		if out.Has(KindVideo) {
			b.video = append(b.video, id)
		}
		if out.Has(KindAudio) {
			b.audio = append(b.audio, id)
		}
	}
	return b
}

// selectImageNode prefers explicit saves over previews, then falls back
// to the first image-bearing node encountered.
func selectImageNode(b buckets) string {
	if node := maxNumericID(b.saveImage); node != "" {
		return node
	}
	if node := maxNumericID(b.previewImage); node != "" {
		return node
	}
	return b.firstImage
}

func (r *Resolver) materializeImage(ctx context.Context, out *NodeOutput) (models.Image, bool) {
	var final models.Image
	found := false
	for _, ref := range out.Images {
		data, err := r.downloader.Download(ctx, ref)
		if err != nil {
			r.skipArtifact("image", ref, err)
			continue
		}
		img, err := media.DecodeImage(data)
		if err != nil {
			r.skipArtifact("image", ref, err)
			continue
		}
		final = img
		found = true
	}
	return final, found
}

func materializeText(out *NodeOutput) (string, bool) {
	texts := make([]string, 0, len(out.Text)+len(out.Strings))
	texts = append(texts, out.Text...)
	texts = append(texts, out.Strings...)
	if len(texts) == 0 {
		return "", false
	}
	return texts[len(texts)-1], true
}

// materializeVideo downloads each container entry; video-extension
// artifacts are demuxed, anything else becomes a single still frame.
// Audio recovered from the last successful container rides along.
func (r *Resolver) materializeVideo(ctx context.Context, out *NodeOutput) (models.Video, *models.Audio, bool) {
	var final models.Video
	var finalAudio *models.Audio
	found := false

	for _, ref := range out.Gifs {
		data, err := r.downloader.Download(ctx, ref)
		if err != nil {
			r.skipArtifact("video", ref, err)
			continue
		}

		if media.IsVideoFilename(ref.Filename) {
			video, audio, err := r.demuxer.Demux(ctx, data, strings.ToLower(filepath.Ext(ref.Filename)))
			if err != nil {
				r.skipArtifact("video", ref, err)
				continue
			}
			final = video
			found = true
			if audio != nil {
				finalAudio = audio
			}
			continue
		}

		img, err := media.DecodeImage(data)
		if err != nil {
			r.skipArtifact("video", ref, err)
			continue
		}
		final = models.Video{Frames: []models.Image{img}}
		found = true
	}

	return final, finalAudio, found
}

func (r *Resolver) materializeAudio(ctx context.Context, out *NodeOutput) (models.Audio, bool) {
	var final models.Audio
	found := false
	for _, ref := range out.audioEntries() {
		data, err := r.downloader.Download(ctx, ref)
		if err != nil {
			r.skipArtifact("audio", ref, err)
			continue
		}
		audio, err := media.DecodeWAV(bytes.NewReader(data))
		if err != nil {
			r.skipArtifact("audio", ref, err)
			continue
		}
		final = audio
		found = true
	}
	return final, found
}

func (r *Resolver) skipArtifact(kind string, ref models.AssetRef, err error) {
	metrics.ArtifactFailures.WithLabelValues(kind).Inc()
	stageErr := apperrors.NewArtifactError(ref.Filename, err)
	r.log.WithError(stageErr).Warn(stageErr.Message, map[string]interface{}{
		"kind":    kind,
		"details": stageErr.Details,
	})
}

func sortedIDs(decoded map[string]*NodeOutput) []string {
	ids := make([]string, 0, len(decoded))
	for id := range decoded {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, errI := strconv.Atoi(ids[i])
		nj, errJ := strconv.Atoi(ids[j])
		if errI == nil && errJ == nil {
			return ni < nj
		}
		return ids[i] < ids[j]
	})
	return ids
}

// maxNumericID returns the numerically greatest id, on the assumption
// that later graph positions sit closer to the graph's sink.
func maxNumericID(ids []string) string {
	best := ""
	bestValue := -1
	for _, id := range ids {
		n, err := strconv.Atoi(id)
		if err != nil {
			continue
		}
		if n > bestValue {
			bestValue = n
			best = id
		}
	}
	if best == "" && len(ids) > 0 {
		return ids[len(ids)-1]
	}
	return best
}
