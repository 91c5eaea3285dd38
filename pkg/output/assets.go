package output

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// AssetsDir is created next to the output file
const AssetsDir = "assets"

const (
	userAgent        = "gh-profile-generator/1.0.0"
	downloadTimeout  = 15 * time.Second
	maxParallelFetch = 4
)

var (
	markdownImage = regexp.MustCompile(`!\[[^\]]*\]\((https?://[^)\s]+)\)`)
	htmlImage     = regexp.MustCompile(`<img[^>]+src=["'](https?://[^"']+)["'][^>]*>`)
)

// svgHosts serve SVG badges without a file extension
var svgHosts = []string{"shields.io", "skillicons.dev", "github-readme-stats", "komarev.com"}

// Fetcher downloads a remote asset
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// HTTPFetcher fetches assets over HTTP
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher with a per-request timeout
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: downloadTimeout}}
}

// Fetch implements Fetcher
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return io.ReadAll(resp.Body)
}

// LocalizeAssets downloads every remote image referenced by markdown into
// an assets directory beside outputPath and rewrites the references to
// relative paths. Images that fail to download keep their remote URL. The
// count of localized images is returned with the rewritten markdown.
func LocalizeAssets(ctx context.Context, markdown, outputPath string, fetcher Fetcher, logger zerolog.Logger) (string, int, error) {
	log := logger.With().Str("component", "assets").Logger()

	absOutput, err := filepath.Abs(outputPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to resolve output path: %w", err)
	}
	assetsDir := filepath.Join(filepath.Dir(absOutput), AssetsDir)
	if err := os.MkdirAll(assetsDir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create assets directory: %w", err)
	}

	urls := ImageURLs(markdown)

	var (
		mu    sync.Mutex
		local = make(map[string]string, len(urls))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetch)

	for _, src := range urls {
		g.Go(func() error {
			name := AssetName(src)
			data, err := fetcher.Fetch(gctx, src)
			if err != nil {
				log.Warn().Err(err).Str("url", src).Msg("Failed to download asset, keeping remote URL")
				return nil
			}
			if err := os.WriteFile(filepath.Join(assetsDir, name), data, 0644); err != nil {
				log.Warn().Err(err).Str("url", src).Msg("Failed to save asset, keeping remote URL")
				return nil
			}

			mu.Lock()
			local[src] = "./" + AssetsDir + "/" + name
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", 0, err
	}
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	log.Debug().Int("found", len(urls)).Int("localized", len(local)).Msg("Assets localized")
	return rewrite(markdown, local), len(local), nil
}

// ImageURLs lists remote image URLs in markdown and HTML image syntax, in
// order of first appearance
func ImageURLs(markdown string) []string {
	seen := make(map[string]struct{})
	var urls []string
	for _, re := range []*regexp.Regexp{markdownImage, htmlImage} {
		for _, m := range re.FindAllStringSubmatch(markdown, -1) {
			if _, ok := seen[m[1]]; ok {
				continue
			}
			seen[m[1]] = struct{}{}
			urls = append(urls, m[1])
		}
	}
	return urls
}

// AssetName derives a stable file name from rawURL: eight hex characters
// of its MD5 plus an extension
func AssetName(rawURL string) string {
	sum := md5.Sum([]byte(rawURL))
	return hex.EncodeToString(sum[:])[:8] + assetExtension(rawURL)
}

func assetExtension(raw string) string {
	if u, err := url.Parse(raw); err == nil {
		if ext := path.Ext(u.Path); ext != "" && len(ext) <= 5 {
			return strings.ToLower(ext)
		}
	}
	for _, host := range svgHosts {
		if strings.Contains(raw, host) {
			return ".svg"
		}
	}
	return ".png"
}

func rewrite(markdown string, local map[string]string) string {
	markdown = markdownImage.ReplaceAllStringFunc(markdown, func(match string) string {
		sub := markdownImage.FindStringSubmatch(match)
		if dest, ok := local[sub[1]]; ok {
			return strings.Replace(match, sub[1], dest, 1)
		}
		return match
	})
	return htmlImage.ReplaceAllStringFunc(markdown, func(match string) string {
		sub := htmlImage.FindStringSubmatch(match)
		if dest, ok := local[sub[1]]; ok {
			return strings.Replace(match, sub[1], dest, 1)
		}
		return match
	})
}
