package config

import (
	"testing"
	"time"

	"propmap/internal/geom"
	"propmap/internal/i18n"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PROPMAP_ADDR", "PROPMAP_LANG", "PROPMAP_DRIVERS", "BASEMAP_ENABLED", "TILE_TIMEOUT", "PURCHASE_URL", "MAX_UPLOAD_BYTES"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	if c.Addr != ":8080" || c.Lang != i18n.PT {
		t.Fatalf("addr=%q lang=%q", c.Addr, c.Lang)
	}
	if c.Drivers != geom.AllDrivers() {
		t.Fatalf("drivers=%s", c.Drivers)
	}
	if !c.Basemap.Enabled || c.Basemap.Timeout != 10*time.Second {
		t.Fatalf("basemap=%+v", c.Basemap)
	}
	if c.PurchaseURL != DefaultPurchaseURL {
		t.Fatalf("purchase url=%q", c.PurchaseURL)
	}
	if c.MaxUploadBytes != 20<<20 {
		t.Fatalf("max upload=%d", c.MaxUploadBytes)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PROPMAP_ADDR", ":9999")
	t.Setenv("PROPMAP_LANG", "uk")
	t.Setenv("PROPMAP_DRIVERS", "gpx, KML")
	t.Setenv("BASEMAP_ENABLED", "no")
	t.Setenv("TILE_TIMEOUT", "250ms")
	t.Setenv("TILE_CACHE_SIZE", "not-a-number")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")

	c := FromEnv()
	if c.Addr != ":9999" || c.Lang != i18n.UK {
		t.Fatalf("addr=%q lang=%q", c.Addr, c.Lang)
	}
	if c.Drivers != (geom.Drivers{GPX: true, KML: true}) {
		t.Fatalf("drivers=%s", c.Drivers)
	}
	if c.Basemap.Enabled || c.Basemap.Timeout != 250*time.Millisecond {
		t.Fatalf("basemap=%+v", c.Basemap)
	}
	if c.Basemap.CacheSize != 256 {
		t.Fatalf("bad int should fall back to default, got %d", c.Basemap.CacheSize)
	}
	if c.MaxUploadBytes != 1024 {
		t.Fatalf("max upload=%d", c.MaxUploadBytes)
	}
}
