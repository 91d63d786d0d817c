package places

import "strings"

// FallbackLogo is returned for tags outside the catalog.
const FallbackLogo = "default.png"

// LogoCatalog maps a closed set of category tags to logo assets.
type LogoCatalog struct {
	assets   map[string]string
	fallback string
}

// DefaultLogos lists the brands known to the bundled dataset.
var DefaultLogos = map[string]string{
	"ipiranga":  "ipiranga.png",
	"shell":     "shell.png",
	"petrobras": "petrobras.png",
	"ale":       "ale.png",
	"raia":      "raia.png",
	"condor":    "condor.png",
	"atacadao":  "atacadao.png",
}

// NewLogoCatalog copies assets so later changes to the map have no effect.
// An empty fallback is replaced by FallbackLogo.
func NewLogoCatalog(assets map[string]string, fallback string) *LogoCatalog {
	if fallback == "" {
		fallback = FallbackLogo
	}
	c := &LogoCatalog{
		assets:   make(map[string]string, len(assets)),
		fallback: fallback,
	}
	for tag, asset := range assets {
		c.assets[strings.ToLower(tag)] = asset
	}
	return c
}

// Resolve returns the asset for tag, or the fallback for unknown tags.
func (c *LogoCatalog) Resolve(tag string) string {
	if asset, ok := c.assets[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return asset
	}
	return c.fallback
}
