package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"propmap/internal/basemap"
	"propmap/internal/geom"
	"propmap/internal/i18n"
)

const DefaultPurchaseURL = "https://pestanaeu.gumroad.com/l/mapa-propriedade"

type Config struct {
	Addr           string
	LogLevel       string
	LogConsole     bool
	LogFile        string
	Lang           i18n.Lang
	Drivers        geom.Drivers
	Basemap        basemap.Config
	PurchaseURL    string
	MaxUploadBytes int64
}

func FromEnv() Config {
	lang, ok := i18n.ParseLang(getenv("PROPMAP_LANG", "PT"))
	if !ok {
		lang = i18n.PT
	}
	drivers := geom.ParseDrivers(getenv("PROPMAP_DRIVERS", "gpx,kml,geojson,wkt"))
	if drivers == (geom.Drivers{}) {
		drivers = geom.AllDrivers()
	}
	maxUpload := getint("MAX_UPLOAD_BYTES", 20<<20)
	if maxUpload <= 0 {
		maxUpload = 20 << 20
	}

	return Config{
		Addr:       getenv("PROPMAP_ADDR", ":8080"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogConsole: getbool("LOG_CONSOLE", false),
		LogFile:    getenv("PROPMAP_LOG_FILE", ""),
		Lang:       lang,
		Drivers:    drivers,
		Basemap: basemap.Config{
			Enabled:   getbool("BASEMAP_ENABLED", true),
			URL:       getenv("TILE_URL", basemap.DefaultURL),
			UserAgent: getenv("TILE_USER_AGENT", basemap.DefaultUserAgent),
			Timeout:   getduration("TILE_TIMEOUT", 10*time.Second),
			CacheSize: getint("TILE_CACHE_SIZE", 256),
			MaxZoom:   getint("TILE_MAX_ZOOM", 19),
		},
		PurchaseURL:    getenv("PURCHASE_URL", DefaultPurchaseURL),
		MaxUploadBytes: int64(maxUpload),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
