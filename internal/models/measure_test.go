package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMeasure(t *testing.T) {
	tests := []struct {
		in     string
		number string
		unit   string
	}{
		{"3.60 GHz", "3.6", "GHz"},
		{"up to 4.90GHz", "4.9", "GHz"},
		{"1,024 MB", "1024", "MB"},
		{"12 MB Cache", "12", "MB"},
		{"95W", "95", "W"},
		{"8", "8", ""},
		{"3,500 MB/s", "3500", "MB/s"},
		{"8 / 16", "8", ""},
		{"4 (2 per channel)", "4", ""},
		{"2 x 8GB", "2", "x"},
		{"6, 8", "6", ""},
		{"", "0", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, unit, err := ParseMeasure(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.number, d.String())
			assert.Equal(t, tt.unit, unit)
		})
	}
}

func TestMeasureIntStopsAtFirstNumber(t *testing.T) {
	assert.Equal(t, 8, MeasureInt("8 / 16"))
	assert.Equal(t, 4, MeasureInt("4 (2 per channel)"))
	assert.Equal(t, 1536, MeasureInt("1,536"))
}

func TestParseMeasureWithoutNumber(t *testing.T) {
	_, _, err := ParseMeasure("n/a")
	assert.Error(t, err)
	assert.Equal(t, 0, MeasureInt("n/a"))
	assert.Nil(t, MeasureDecimal("n/a"))
}

func TestParseComponentType(t *testing.T) {
	ct, err := ParseComponentType("gpu")
	require.NoError(t, err)
	assert.Equal(t, GPU, ct)

	ct, err = ParseComponentType("Sound Card")
	require.NoError(t, err)
	assert.Equal(t, SoundCard, ct)

	ct, err = ParseComponentType("AUTO")
	require.NoError(t, err)
	assert.Equal(t, Auto, ct)
	assert.False(t, ct.Valid())

	_, err = ParseComponentType("toaster")
	assert.Error(t, err)
}
