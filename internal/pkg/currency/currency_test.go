package currency

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

// digits drops grouping separators, whatever glyph the locale data uses.
func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == ',' {
			return r
		}
		return -1
	}, s)
}

func TestFormatMAD(t *testing.T) {
	got := FormatMAD(6000)
	assert.True(t, strings.HasSuffix(got, " MAD"), got)
	assert.Equal(t, "6000,00", digits(strings.TrimSuffix(got, " MAD")))
}

func TestFormatMAD_AlwaysTwoDecimals(t *testing.T) {
	cases := map[float64]string{
		0:        "0,00",
		12.5:     "12,50",
		1234.567: "1234,57",
	}
	for in, want := range cases {
		assert.Equal(t, want, digits(strings.TrimSuffix(FormatMAD(in), " MAD")), "amount %v", in)
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		0:        "0",
		12.5:     "12,5",
		1234.567: "1234,567",
		1.23456:  "1,235",
		1000000:  "1000000",
	}
	for in, want := range cases {
		assert.Equal(t, want, digits(FormatNumber(in)), "amount %v", in)
	}
}

func TestTVA(t *testing.T) {
	assert.Equal(t, 1000.0, CalculateTVA(5000))
	assert.Equal(t, 6000.0, CalculateTTC(5000))
	assert.Equal(t, 0.0, CalculateTVA(0))
	assert.Equal(t, 12.35, CalculateTTC(10.29))
}

func TestTTCIsHTPlusTVA(t *testing.T) {
	for _, ht := range []float64{1, 99.99, 1500, 12345.67} {
		assert.InDelta(t, ht+CalculateTVA(ht), CalculateTTC(ht), 0.011, "ht %v", ht)
	}
}
