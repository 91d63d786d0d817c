package places

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDistance(t *testing.T) {
	d := func(v float64) *float64 { return &v }

	assert.Equal(t, "N/A", FormatDistance(nil))
	assert.Equal(t, "0.0 Km", FormatDistance(d(0)))
	assert.Equal(t, "1.6 Km", FormatDistance(d(1.6)))
	assert.Equal(t, "111.2 Km", FormatDistance(d(111.19492664455873)))
}

func TestFormatCityName(t *testing.T) {
	tests := map[string]string{
		"PONTA GROSSA":         "Ponta Grossa",
		"curitiba":             "Curitiba",
		"são josé dos pinhais": "São José Dos Pinhais",
		"":                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatCityName(in), in)
	}
}

func TestMapLink(t *testing.T) {
	assert.Equal(t, "geo:0,0?q=-25.1,-50.2(Posto Shell)", MapLink(MapPlatformAndroid, -25.1, -50.2, "Posto Shell"))
	assert.Equal(t, "maps:0,0?q=-25.1,-50.2(Posto Shell)", MapLink(MapPlatformIOS, -25.1, -50.2, "Posto Shell"))
	assert.Equal(t, "geo:0,0?q=1,2", MapLink(MapPlatformAndroid, 1, 2, ""))
}

func TestLogoCatalog(t *testing.T) {
	assets := map[string]string{"Shell": "shell.png"}
	catalog := NewLogoCatalog(assets, "")

	assets["ale"] = "ale.png"

	assert.Equal(t, "shell.png", catalog.Resolve("shell"))
	assert.Equal(t, "shell.png", catalog.Resolve(" SHELL "))
	assert.Equal(t, FallbackLogo, catalog.Resolve("ale"))
	assert.Equal(t, FallbackLogo, catalog.Resolve(""))

	custom := NewLogoCatalog(DefaultLogos, "generic.svg")
	assert.Equal(t, "generic.svg", custom.Resolve("bandeira-branca"))
	assert.Equal(t, "ipiranga.png", custom.Resolve("ipiranga"))
}
