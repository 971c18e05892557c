// Package basemap draws XYZ raster tiles underneath a PT-TM06 map frame.
// Tile failures never abort a render; they are reported in a Result.
package basemap

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/rs/zerolog"

	"propmap/internal/crs"
)

const (
	TileSize = 256

	DefaultURL       = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultUserAgent = "propmap/1.0 (+https://pestanaeu.gumroad.com/l/mapa-propriedade)"
)

// Status is the outcome of drawing a basemap.
type Status int

const (
	StatusDisabled Status = iota
	StatusLoaded
	StatusPartial
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusPartial:
		return "partial"
	case StatusFailed:
		return "failed"
	}
	return "disabled"
}

// Result says whether the basemap was drawn in full, in part, or not at all.
// Err holds the first tile error when Status is Partial or Failed.
type Result struct {
	Status Status
	Zoom   int
	Tiles  int
	Failed int
	Err    error
}

type Config struct {
	Enabled   bool
	URL       string
	UserAgent string
	Timeout   time.Duration
	CacheSize int
	MaxZoom   int
}

func (c Config) withDefaults() Config {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.CacheSize <= 0 {
		c.CacheSize = 256
	}
	if c.MaxZoom <= 0 || c.MaxZoom > 19 {
		c.MaxZoom = 19
	}
	return c
}

// Fetcher downloads tiles and keeps decoded ones in an LRU cache. It is safe
// for concurrent use.
type Fetcher struct {
	cfg    Config
	client *http.Client
	cache  *lru.Cache[maptile.Tile, image.Image]
	log    zerolog.Logger
}

func New(cfg Config, log zerolog.Logger) (*Fetcher, error) {
	cfg = cfg.withDefaults()
	cache, err := lru.New[maptile.Tile, image.Image](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("tile cache: %w", err)
	}
	return &Fetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
		log:    log.With().Str("component", "basemap").Logger(),
	}, nil
}

func (f *Fetcher) Enabled() bool { return f != nil && f.cfg.Enabled }

func (f *Fetcher) tileURL(t maptile.Tile) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(int(t.Z)),
		"{x}", strconv.Itoa(int(t.X)),
		"{y}", strconv.Itoa(int(t.Y)),
	)
	return r.Replace(f.cfg.URL)
}

// Tile returns the decoded image for t, from cache when possible.
func (f *Fetcher) Tile(ctx context.Context, t maptile.Tile) (image.Image, error) {
	if img, ok := f.cache.Get(t); ok {
		return img, nil
	}
	url := f.tileURL(t)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tile %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch tile %s: status %d", url, resp.StatusCode)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode tile %s: %w", url, err)
	}
	f.cache.Add(t, img)
	return img, nil
}

// Frame maps destination pixels to PT-TM06 metres. Pixel (0,0) is the top
// left corner of Rect.
type Frame struct {
	Rect      image.Rectangle
	Origin    orb.Point // metres at the top left corner
	MetersPer float64   // metres per pixel, same on both axes
}

func (fr Frame) world(px, py float64) orb.Point {
	return orb.Point{fr.Origin[0] + px*fr.MetersPer, fr.Origin[1] - py*fr.MetersPer}
}

// zoomFor picks the smallest zoom whose tile pixels are at least as fine as
// the frame's pixels.
func (f *Fetcher) zoomFor(fr Frame, lat float64) int {
	mercRes := 2 * math.Pi * 6378137 * math.Cos(lat*math.Pi/180) / TileSize
	z := int(math.Ceil(math.Log2(mercRes / fr.MetersPer)))
	if z < 0 {
		z = 0
	}
	if z > f.cfg.MaxZoom {
		z = f.cfg.MaxZoom
	}
	return z
}

const gridStep = 16

// Draw paints the basemap into dst within fr.Rect. Each pixel is warped from
// PT-TM06 to lon/lat to Web Mercator tile space; the warp is evaluated on a
// coarse grid and interpolated in between.
func (f *Fetcher) Draw(ctx context.Context, dst draw.Image, fr Frame) Result {
	if !f.Enabled() {
		return Result{Status: StatusDisabled}
	}
	w, h := fr.Rect.Dx(), fr.Rect.Dy()
	if w <= 0 || h <= 0 || fr.MetersPer <= 0 {
		return Result{Status: StatusFailed, Err: errors.New("empty map frame")}
	}

	centre := crs.PortugalTM06.Inverse(fr.world(float64(w)/2, float64(h)/2))
	z := f.zoomFor(fr, centre[1])
	zoom := maptile.Zoom(z)

	gw, gh := w/gridStep+2, h/gridStep+2
	grid := make([]orb.Point, gw*gh)
	for gy := 0; gy < gh; gy++ {
		for gx := 0; gx < gw; gx++ {
			ll := crs.PortugalTM06.Inverse(fr.world(float64(gx*gridStep)+0.5, float64(gy*gridStep)+0.5))
			grid[gy*gw+gx] = maptile.Fraction(ll, zoom)
		}
	}

	res := Result{Zoom: z}
	tiles := map[maptile.Tile]image.Image{}
	failed := map[maptile.Tile]bool{}
	maxTile := float64(uint32(1) << uint(z))

	for py := 0; py < h; py++ {
		gy, ty := py/gridStep, float64(py%gridStep)/gridStep
		for px := 0; px < w; px++ {
			gx, tx := px/gridStep, float64(px%gridStep)/gridStep
			p00, p10 := grid[gy*gw+gx], grid[gy*gw+gx+1]
			p01, p11 := grid[(gy+1)*gw+gx], grid[(gy+1)*gw+gx+1]
			fx := lerp(lerp(p00[0], p10[0], tx), lerp(p01[0], p11[0], tx), ty)
			fy := lerp(lerp(p00[1], p10[1], tx), lerp(p01[1], p11[1], tx), ty)
			if fx < 0 || fy < 0 || fx >= maxTile || fy >= maxTile {
				continue
			}
			t := maptile.New(uint32(fx), uint32(fy), zoom)
			img, ok := tiles[t]
			if !ok {
				if failed[t] {
					continue
				}
				if err := ctx.Err(); err != nil {
					return f.finish(res, len(tiles), len(failed)+1, err)
				}
				var err error
				img, err = f.Tile(ctx, t)
				if err != nil {
					failed[t] = true
					if res.Err == nil {
						res.Err = err
					}
					f.log.Warn().Err(err).Uint32("x", t.X).Uint32("y", t.Y).Int("z", z).Msg("tile fetch failed")
					continue
				}
				tiles[t] = img
			}
			b := img.Bounds()
			sx := b.Min.X + int((fx-math.Floor(fx))*float64(b.Dx()))
			sy := b.Min.Y + int((fy-math.Floor(fy))*float64(b.Dy()))
			dst.Set(fr.Rect.Min.X+px, fr.Rect.Min.Y+py, color.RGBAModel.Convert(img.At(sx, sy)))
		}
	}
	return f.finish(res, len(tiles), len(failed), res.Err)
}

func (f *Fetcher) finish(res Result, ok, failed int, err error) Result {
	res.Tiles = ok + failed
	res.Failed = failed
	res.Err = err
	switch {
	case res.Tiles == 0 && err == nil:
		res.Status = StatusFailed
		res.Err = errors.New("frame lies outside the tile grid")
	case failed == 0 && err == nil:
		res.Status = StatusLoaded
	case ok == 0:
		res.Status = StatusFailed
	default:
		res.Status = StatusPartial
	}
	return res
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
