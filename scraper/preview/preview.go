package preview

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	"github.com/chromedp/chromedp"

	"rental-search/config"
	"rental-search/metrics"
	"rental-search/models"
	"rental-search/services"
	"rental-search/storage"
	"rental-search/utils"
)

// collectImagesJS returns candidate image URLs of a listing page: og:image
// and twitter:image first, then large <img> elements in document order.
const collectImagesJS = `
(function() {
	var out = [];
	var metas = document.querySelectorAll('meta[property="og:image"], meta[name="twitter:image"]');
	for (var i = 0; i < metas.length; i++) {
		var c = metas[i].getAttribute('content');
		if (c) out.push(c);
	}
	var imgs = document.querySelectorAll('main img, img');
	for (var j = 0; j < imgs.length && out.length < 40; j++) {
		var img = imgs[j];
		if (img.naturalWidth && img.naturalWidth < 300) continue;
		var src = img.currentSrc || img.src || img.getAttribute('data-src');
		if (src) out.push(src);
	}
	return out;
})()
`

// ImageFetcher returns the raw image URLs found on a listing page.
type ImageFetcher interface {
	FetchImages(ctx context.Context, link string) ([]string, error)
}

// Previewer fills the images of listings seeded without any, by visiting
// their listing links.
type Previewer struct {
	fetcher   ImageFetcher
	store     storage.ListingStore
	logger    *utils.Logger
	pool      *utils.WorkerPool
	retry     *utils.RetryConfig
	seen      *utils.LinkSet
	maxImages int
}

// New creates a Previewer using fetcher and the concurrency, rate limit and
// retry settings from cfg.
func New(cfg *config.Config, fetcher ImageFetcher, store storage.ListingStore, logger *utils.Logger) *Previewer {
	return &Previewer{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
		pool:    utils.NewWorkerPool(cfg.MaxConcurrency, time.Duration(cfg.RateLimitMs)*time.Millisecond),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		seen:      utils.NewLinkSet(),
		maxImages: cfg.PreviewMaxImages,
	}
}

// Enrich visits the links of the listings that have no images and stores
// what it finds. A link is visited at most once per Previewer, even across
// calls. Failures are logged and skipped. It returns the number of listings
// updated.
func (p *Previewer) Enrich(ctx context.Context, listings []*models.Listing) int {
	byLink := make(map[string][]*models.Listing)
	var links []string
	for _, l := range listings {
		if len(l.Images) > 0 || !previewable(l.ListingLink) {
			continue
		}
		if p.seen.Add(l.ListingLink) {
			links = append(links, l.ListingLink)
		}
		byLink[l.ListingLink] = append(byLink[l.ListingLink], l)
	}

	p.logger.Info("[preview] %d listing link(s) to visit", len(links))

	var updated int64
	for _, link := range links {
		submitted := p.pool.Submit(ctx, func(ctx context.Context) {
			images, err := p.fetch(ctx, link)
			if err != nil {
				metrics.PreviewsTotal.WithLabelValues("error").Inc()
				p.logger.Warn("[preview] %s: %v", link, err)
				return
			}
			if len(images) == 0 {
				metrics.PreviewsTotal.WithLabelValues("empty").Inc()
				p.logger.Debug("[preview] %s: no images found", link)
				return
			}
			metrics.PreviewsTotal.WithLabelValues("ok").Inc()

			for _, l := range byLink[link] {
				if err := p.store.UpdateImages(ctx, l.ID, images); err != nil {
					p.logger.Warn("[preview] Storing images for %s failed: %v", l.ID, err)
					continue
				}
				l.Images = images
				atomic.AddInt64(&updated, 1)
			}
		})
		if !submitted {
			break
		}
	}
	p.pool.Wait()

	p.logger.Info("[preview] Added images to %d listing(s)", updated)
	return int(updated)
}

func (p *Previewer) fetch(ctx context.Context, link string) ([]string, error) {
	var images []string
	err := p.retry.Do(ctx, "preview "+link, func(ctx context.Context) error {
		raw, err := p.fetcher.FetchImages(ctx, link)
		if err != nil {
			return err
		}
		images = CleanImageURLs(link, raw, p.maxImages)
		return nil
	})
	return images, err
}

// previewable reports whether link is a real http(s) listing page.
func previewable(link string) bool {
	if link == "" || link == services.DefaultListingLink {
		return false
	}
	u, err := url.Parse(link)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// CleanImageURLs resolves raw image URLs against the page link, keeps the
// http(s) ones, drops duplicates and data URIs, and returns at most max.
func CleanImageURLs(pageLink string, raw []string, max int) []string {
	base, err := url.Parse(pageLink)
	if err != nil {
		return []string{}
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if max > 0 && len(out) >= max {
			break
		}
		r = strings.TrimSpace(r)
		if r == "" || strings.HasPrefix(r, "data:") {
			continue
		}
		u, err := base.Parse(r)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			continue
		}
		s := u.String()
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// BrowserFetcher loads listing pages as tabs of one headless Chrome.
type BrowserFetcher struct {
	browserCtx context.Context
	cancel     context.CancelFunc
}

// NewBrowserFetcher launches a headless browser. Close releases it.
func NewBrowserFetcher(ctx context.Context, chromeBin string, logger *utils.Logger) (*BrowserFetcher, error) {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("[preview] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	cancel := func() {
		cancelBrowser()
		cancelAlloc()
	}

	// Start the browser now so every tab shares this one process.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("chromedp start browser: %w", err)
	}
	return &BrowserFetcher{browserCtx: browserCtx, cancel: cancel}, nil
}

// FetchImages opens link in a new tab and collects candidate image URLs.
func (b *BrowserFetcher) FetchImages(ctx context.Context, link string) ([]string, error) {
	tabCtx, cancel := chromedp.NewContext(b.browserCtx)
	defer cancel()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, 45*time.Second)
	defer cancelTimeout()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var images []string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(link),
		chromedp.Sleep(3*time.Second),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight / 2)`, nil),
		chromedp.Sleep(1*time.Second),
		chromedp.Evaluate(collectImagesJS, &images),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp collect images: %w", err)
	}
	return images, nil
}

// Close shuts the browser down.
func (b *BrowserFetcher) Close() {
	b.cancel()
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
