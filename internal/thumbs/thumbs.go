// Package thumbs serves downscaled JPEG copies of portfolio images, cached on
// disk next to nothing else the site writes.
package thumbs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// Size names a thumbnail preset.
type Size string

const (
	Thumb  Size = "thumb"
	Medium Size = "medium"
)

type preset struct {
	maxDim  int
	quality int
}

var presets = map[Size]preset{
	Thumb:  {maxDim: 300, quality: 60},
	Medium: {maxDim: 800, quality: 75},
}

var (
	ErrNotFound    = errors.New("image not found")
	ErrUnknownSize = errors.New("unknown thumbnail size")
)

// RoutePrefix is where thumbnails are mounted.
const RoutePrefix = "/thumbs"

// ImagePrefix is the public path the source images are served under.
const ImagePrefix = "/images"

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".tif": true, ".tiff": true}

// ParseSize validates a size name.
func ParseSize(s string) (Size, error) {
	if _, ok := presets[Size(s)]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSize, s)
	}
	return Size(s), nil
}

// URL rewrites an image path under ImagePrefix into its thumbnail URL.
// Other paths (remote URLs, data URIs) are returned unchanged.
func URL(size Size, src string) string {
	if !strings.HasPrefix(src, ImagePrefix+"/") {
		return src
	}
	return RoutePrefix + "/" + string(size) + strings.TrimPrefix(src, ImagePrefix)
}

// Generator resizes images under root and caches the results in cacheDir.
type Generator struct {
	root     string
	cacheDir string
	logger   *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New returns a Generator. The cache directory is created lazily.
func New(root, cacheDir string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{root: root, cacheDir: cacheDir, logger: logger, locks: map[string]*sync.Mutex{}}
}

// Path returns the cached thumbnail file for the image at rel, generating it
// when missing or older than the source.
func (g *Generator) Path(size Size, rel string) (string, error) {
	p, ok := presets[size]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSize, size)
	}

	src, clean, err := g.resolve(rel)
	if err != nil {
		return "", err
	}
	srcInfo, err := os.Stat(src)
	if err != nil || srcInfo.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, clean)
	}

	dst := g.cachePath(size, clean)
	lock := g.lockFor(dst)
	lock.Lock()
	defer lock.Unlock()

	if info, err := os.Stat(dst); err == nil && !info.ModTime().Before(srcInfo.ModTime()) {
		return dst, nil
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", clean, err)
	}
	// Fit never upscales.
	out := imaging.Fit(img, p.maxDim, p.maxDim, imaging.Lanczos)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create thumbnail cache: %w", err)
	}
	tmp := dst + ".tmp"
	if err := imaging.Save(out, tmp, imaging.JPEGQuality(p.quality)); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write thumbnail %s: %w", clean, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return "", fmt.Errorf("write thumbnail %s: %w", clean, err)
	}

	b := img.Bounds()
	ob := out.Bounds()
	g.logger.Debug("thumbnail generated", "src", clean, "size", string(size),
		"from", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()), "to", fmt.Sprintf("%dx%d", ob.Dx(), ob.Dy()))
	return dst, nil
}

// resolve maps a request path onto a file inside root. Paths that would
// escape root are reported as not found.
func (g *Generator) resolve(rel string) (full, clean string, err error) {
	if strings.Contains(rel, "\\") || strings.ContainsRune(rel, 0) {
		return "", "", fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	clean = strings.TrimPrefix(path.Clean("/"+rel), "/")
	if clean == "" || clean == "." || !imageExts[strings.ToLower(path.Ext(clean))] {
		return "", "", fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	return filepath.Join(g.root, filepath.FromSlash(clean)), clean, nil
}

// cachePath keeps the source extension so a.png and a.jpg never share a
// cache entry.
func (g *Generator) cachePath(size Size, clean string) string {
	name := clean + ".jpg"
	return filepath.Join(g.cacheDir, string(size), filepath.FromSlash(name))
}

func (g *Generator) lockFor(key string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[key]
	if !ok {
		l = &sync.Mutex{}
		g.locks[key] = l
	}
	return l
}
