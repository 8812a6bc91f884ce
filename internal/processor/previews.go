package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/woozymasta/rpasplan/internal/render"
	"github.com/woozymasta/rpasplan/internal/site"

	"github.com/rs/zerolog/log"
)

// PreviewOptions control RenderPreviews.
type PreviewOptions struct {
	Render      render.Options
	Quality     int
	Concurrency int
	Force       bool // overwrite existing files
}

// PreviewPath returns where the preview of a site is stored under dir.
func PreviewPath(dir string, s *site.Site) string {
	return filepath.Join(dir, s.ID+".webp")
}

// RenderPreviews writes a WebP preview for every site into dir and returns
// how many files were written. Sites without geometry and existing files are
// skipped. The first write error is returned after all workers finish.
func RenderPreviews(ctx context.Context, sites []*site.Site, dir string, opts PreviewOptions) (int, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}

	jobs := make(chan *site.Site, len(sites))
	go func() {
		defer close(jobs)
		for _, s := range sites {
			if s == nil {
				continue
			}
			select {
			case jobs <- s:
			case <-ctx.Done():
				return
			}
		}
	}()

	var (
		wg       sync.WaitGroup
		written  atomic.Int32
		errOnce  sync.Once
		firstErr error
	)

	for i := 0; i < opts.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				if ctx.Err() != nil {
					continue
				}

				ok, err := renderPreview(s, dir, opts)
				if err != nil {
					log.Error().Err(err).Str("site", s.Name).Msg("Failed to render preview")
					errOnce.Do(func() { firstErr = err })
					continue
				}
				if ok {
					written.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	if firstErr == nil {
		firstErr = ctx.Err()
	}
	return int(written.Load()), firstErr
}

func renderPreview(s *site.Site, dir string, opts PreviewOptions) (bool, error) {
	outPath := PreviewPath(dir, s)

	if !opts.Force {
		if info, err := os.Stat(outPath); err == nil && info.Size() > 0 {
			return false, nil
		}
	}

	img, err := render.Preview(s, opts.Render)
	if errors.Is(err, render.ErrNoGeometry) {
		log.Debug().Str("site", s.Name).Msg("Site has no geometry, preview skipped")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return false, err
	}

	if err := render.EncodeWebP(f, img, opts.Quality); err != nil {
		_ = f.Close()
		return false, err
	}

	if err := f.Close(); err != nil {
		return false, err
	}

	log.Trace().Str("site", s.Name).Str("path", outPath).Msg("Preview written")
	return true, nil
}
