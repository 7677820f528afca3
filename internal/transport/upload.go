// internal/transport/upload.go
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"remoteflow/internal/common/metrics"
	"remoteflow/internal/media"
	"remoteflow/internal/models"
)

// UploadImage encodes the image as PNG and posts it to the upload
// endpoint. Returns the subfolder-qualified name the server stored it
// under.
func (c *Client) UploadImage(ctx context.Context, img models.Image) (string, error) {
	data, err := media.EncodePNG(img)
	if err != nil {
		return "", err
	}

	ref, err := c.uploadMultipart(ctx, "/upload/image", "image", "input.png", "image/png", data, map[string]string{
		"overwrite": "true",
		"type":      "input",
	}, true)
	if err != nil {
		metrics.TransportRequests.WithLabelValues("upload_image", "error").Inc()
		return "", err
	}

	metrics.TransportRequests.WithLabelValues("upload_image", "ok").Inc()
	metrics.TransportBytes.WithLabelValues("upload").Add(float64(len(data)))
	return ref.Ref(), nil
}

// UploadAudio serializes the waveform to a temporary WAV file and
// uploads it. Some servers accept audio through the generic image
// endpoint, others route it to a dedicated one; the generic endpoint is
// tried first and the dedicated endpoint is the fallback. The temp file
// is removed on every path.
func (c *Client) UploadAudio(ctx context.Context, audio models.Audio) (string, error) {
	tmp, err := os.CreateTemp("", "remoteflow-*.wav")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := media.EncodeWAV(tmp, audio); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("audio_%s.wav", uuid.NewString()[:8])

	ref, err := c.uploadMultipart(ctx, "/upload/image", "image", filename, "audio/wav", data, map[string]string{
		"overwrite": "true",
		"type":      "input",
	}, true)
	if err == nil {
		metrics.TransportRequests.WithLabelValues("upload_audio", "ok").Inc()
		metrics.TransportBytes.WithLabelValues("upload").Add(float64(len(data)))
		return ref.Ref(), nil
	}
	c.log.Debug("generic upload endpoint rejected audio, trying dedicated endpoint", map[string]interface{}{
		"error": err.Error(),
	})

	_, err = c.uploadMultipart(ctx, "/upload/audio", "audio", filename, "audio/wav", data, map[string]string{
		"overwrite": "true",
	}, false)
	if err != nil {
		metrics.TransportRequests.WithLabelValues("upload_audio", "error").Inc()
		return "", err
	}

	metrics.TransportRequests.WithLabelValues("upload_audio", "ok").Inc()
	metrics.TransportBytes.WithLabelValues("upload").Add(float64(len(data)))
	return filename, nil
}

// uploadMultipart posts one file part plus the extra form fields. When
// parseBody is set, a 200 response must carry a JSON body; a missing
// "name" in that body falls back to the filename we sent. The dedicated
// audio endpoint responds with an arbitrary body, so its caller passes
// parseBody=false and the body is discarded.
func (c *Client) uploadMultipart(ctx context.Context, endpoint, fieldName, filename, contentType string, data []byte, fields map[string]string, parseBody bool) (models.AssetRef, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Transfer)
	defer cancel()

	var body io.Reader
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	body = pr

	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fieldName, filename))
		header.Set("Content-Type", contentType)

		part, err := mw.CreatePart(header)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := part.Write(data); err != nil {
			pw.CloseWithError(err)
			return
		}
		for k, v := range fields {
			if err := mw.WriteField(k, v); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+endpoint, body)
	if err != nil {
		return models.AssetRef{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.AssetRef{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return models.AssetRef{}, fmt.Errorf("upload to %s returned status %d", endpoint, resp.StatusCode)
	}

	if !parseBody {
		io.Copy(io.Discard, resp.Body)
		return models.AssetRef{Filename: filepath.Base(filename), Type: "input"}, nil
	}

	var parsed struct {
		Name      string `json:"name"`
		Subfolder string `json:"subfolder"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return models.AssetRef{}, fmt.Errorf("upload to %s returned an unparseable body: %w", endpoint, err)
	}
	if parsed.Name == "" {
		parsed.Name = filepath.Base(filename)
	}

	return models.AssetRef{Filename: parsed.Name, Subfolder: parsed.Subfolder, Type: "input"}, nil
}
