package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/BerylCAtieno/file-renamer-api/internal/utils"
)

// CaptionPlaceholder replaces the caption when the vision call fails.
const CaptionPlaceholder = "image content could not be analyzed"

var (
	captionCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fr_caption_cache_hits_total",
		Help: "Image captions served from the cache.",
	})
	captionCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fr_caption_cache_misses_total",
		Help: "Image captions that required a vision call.",
	})
	captionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fr_caption_failures_total",
		Help: "Vision calls that failed and produced the placeholder.",
	})
)

// Captioner describes images through the vision path of a Model. Successful captions
// are cached by the SHA-256 of the image bytes.
type Captioner struct {
	model   Model
	logger  *utils.Logger
	timeout time.Duration
	cache   *expirable.LRU[string, string]
}

func NewCaptioner(model Model, logger *utils.Logger, cacheSize int, cacheTTL, timeout time.Duration) *Captioner {
	if cacheSize <= 0 {
		cacheSize = 1
	}
	return &Captioner{
		model:   model,
		logger:  logger,
		timeout: timeout,
		cache:   expirable.NewLRU[string, string](cacheSize, nil, cacheTTL),
	}
}

// Caption returns a description of image, or CaptionPlaceholder.
func (c *Captioner) Caption(ctx context.Context, image []byte, mimeType string) string {
	sum := sha256.Sum256(image)
	key := hex.EncodeToString(sum[:])

	if caption, ok := c.cache.Get(key); ok {
		captionCacheHits.Inc()
		return caption
	}
	captionCacheMisses.Inc()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	caption, err := c.model.Describe(ctx, image, mimeType, captionInstruction)
	caption = strings.TrimSpace(caption)
	if err != nil || caption == "" {
		captionFailures.Inc()
		c.logger.Warn("Image caption failed",
			"content_type", mimeType,
			"size", len(image),
			"error", err)
		return CaptionPlaceholder
	}

	c.cache.Add(key, caption)
	return caption
}

// Len reports the number of cached captions.
func (c *Captioner) Len() int {
	return c.cache.Len()
}
