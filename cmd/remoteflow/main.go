// cmd/remoteflow/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"remoteflow/internal/common/config"
	"remoteflow/internal/common/logger"
	"remoteflow/internal/common/netutil"
	"remoteflow/internal/executor"
	"remoteflow/internal/media"
	"remoteflow/internal/models"
)

func main() {
	var (
		workflowPath = flag.String("workflow", "", "path to an API-format workflow JSON file")
		bindingsJSON = flag.String("bindings", "", "node selection JSON, e.g. {\"3\": \"text\"}")
		outDir       = flag.String("out", "out", "directory for resolved artifacts")
	)
	var texts, images, audios, videos stringList
	flag.Var(&texts, "text", "text input, repeatable, consumed in binding order")
	flag.Var(&images, "image", "image input file, repeatable")
	flag.Var(&audios, "audio", "audio input WAV file, repeatable")
	flag.Var(&videos, "video", "video still input file, repeatable")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting remoteflow", map[string]interface{}{
		"server": netutil.MaskAddress(cfg.Server.Address, cfg.Server.HideIP),
	})

	if cfg.Observability.MetricsAddress != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.Observability.MetricsAddress, mux); err != nil {
				log.Warn("metrics listener stopped", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	if *workflowPath == "" || *bindingsJSON == "" {
		fmt.Fprintln(os.Stderr, "both -workflow and -bindings are required")
		flag.Usage()
		os.Exit(2)
	}

	workflowData, err := os.ReadFile(*workflowPath)
	if err != nil {
		log.Error("failed to read workflow file", map[string]interface{}{"path": *workflowPath, "error": err.Error()})
		os.Exit(1)
	}

	inputs, err := loadInputs(texts, images, audios, videos)
	if err != nil {
		log.Error("failed to load inputs", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result := executor.New(cfg, log).Execute(ctx, executor.Request{
		WorkflowJSON: string(workflowData),
		BindingsJSON: *bindingsJSON,
		Inputs:       inputs,
	})

	if err := writeResult(*outDir, result); err != nil {
		log.Error("failed to write artifacts", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	log.Info("artifacts written", map[string]interface{}{"dir": *outDir, "text": result.Text})
}

func loadInputs(texts, images, audios, videos stringList) (executor.Inputs, error) {
	in := executor.Inputs{Texts: texts}
	for _, path := range images {
		img, err := readImageFile(path)
		if err != nil {
			return in, err
		}
		in.Images = append(in.Images, img)
	}
	for _, path := range videos {
		img, err := readImageFile(path)
		if err != nil {
			return in, err
		}
		in.Videos = append(in.Videos, img)
	}
	for _, path := range audios {
		f, err := os.Open(path)
		if err != nil {
			return in, err
		}
		audio, err := media.DecodeWAV(f)
		f.Close()
		if err != nil {
			return in, fmt.Errorf("decode %s: %w", path, err)
		}
		in.Audios = append(in.Audios, audio)
	}
	return in, nil
}

func readImageFile(path string) (models.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Image{}, err
	}
	img, err := media.DecodeImage(data)
	if err != nil {
		return models.Image{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func writeResult(dir string, result models.ResolvedResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	png, err := media.EncodePNG(result.Image)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "image.png"), png, 0o644); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, "text.txt"), []byte(result.Text), 0o644); err != nil {
		return err
	}

	wavFile, err := os.Create(filepath.Join(dir, "audio.wav"))
	if err != nil {
		return err
	}
	if err := media.EncodeWAV(wavFile, result.Audio); err != nil {
		wavFile.Close()
		return err
	}
	if err := wavFile.Close(); err != nil {
		return err
	}

	for i, frame := range result.Video.Frames {
		png, err := media.EncodePNG(frame)
		if err != nil {
			return err
		}
		name := filepath.Join(dir, fmt.Sprintf("frame_%05d.png", i))
		if err := os.WriteFile(name, png, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// stringList is a repeatable flag value.
type stringList []string

func (s *stringList) String() string { return fmt.Sprint([]string(*s)) }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
