package trim

import (
	"context"
	"sync"
)

// maxThumbnails caps the timeline strip regardless of configuration.
const maxThumbnails = 8

// ThumbnailGenerator renders a single frame of a video as an image file.
// Calls may fail independently of each other.
type ThumbnailGenerator interface {
	Thumbnail(ctx context.Context, assetURI string, offsetSeconds float64) (string, error)
}

// ThumbnailTimes returns the evenly spaced capture offsets for the
// timeline strip: slot i samples at i*(total/count). Count is bounded
// to eight slots.
func (c *Controller) ThumbnailTimes(count int) []float64 {
	if count <= 0 {
		return nil
	}
	if count > maxThumbnails {
		count = maxThumbnails
	}
	times := make([]float64, count)
	step := c.total / float64(count)
	for i := range times {
		times[i] = float64(i) * step
	}
	return times
}

// Thumbnails renders the timeline strip concurrently, one slot per
// capture offset. A failed slot stays empty and the strip renders with a
// gap; no error aborts the rest.
func (c *Controller) Thumbnails(ctx context.Context, gen ThumbnailGenerator, assetURI string, count int) []string {
	times := c.ThumbnailTimes(count)
	if len(times) == 0 || gen == nil {
		return nil
	}

	out := make([]string, len(times))
	var wg sync.WaitGroup
	for i, offset := range times {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uri, err := gen.Thumbnail(ctx, assetURI, offset)
			if err != nil {
				return
			}
			out[i] = uri
		}()
	}
	wg.Wait()
	return out
}
