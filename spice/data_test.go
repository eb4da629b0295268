package spice

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dataLine(fields ...float64) string {
	var sb strings.Builder
	for _, f := range fields {
		sb.WriteString(fmt.Sprintf("%16.8e", f))
	}
	return sb.String()
}

func TestParseData(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("time v(out) time v(q)\n")
	sb.WriteString(dataLine(0, 1.0, 0, 2.0) + "\n")
	sb.WriteString(dataLine(1e-6, 1.5, 1e-6, 2.5) + "\n")
	sb.WriteString(dataLine(2e-6, 3.0, 2e-6, 4.0) + "\n")

	d, err := ParseData(strings.NewReader(sb.String()), []string{"out", "q"})
	require.NoError(t, err)

	at, err := d.At(1.01e-6)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, at["out"], 1e-12)
	assert.InDelta(t, 2.5, at["q"], 1e-12)
}

func TestParseDataRejectsMismatchedTimes(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("header\n")
	sb.WriteString(dataLine(0, 1.0, 1e-6, 2.0) + "\n")

	_, err := ParseData(strings.NewReader(sb.String()), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "time columns disagree")
}

func TestParseDataRejectsBadWidth(t *testing.T) {
	input := "header\nshort line\n"
	_, err := ParseData(strings.NewReader(input), []string{"a"})
	require.Error(t, err)
}

func TestAtRequiresNearbySample(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("header\n")
	sb.WriteString(dataLine(0, 1.0) + "\n")
	sb.WriteString(dataLine(1e-6, 2.0) + "\n")

	d, err := ParseData(strings.NewReader(sb.String()), []string{"a"})
	require.NoError(t, err)

	_, err = d.At(0.5e-6)
	assert.Error(t, err)
}
