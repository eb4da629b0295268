package prog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordRoundTrip(t *testing.T) {
	for _, width := range []int{1, 2, 3} {
		max := 1
		for i := 0; i < width; i++ {
			max *= WordValues
		}
		step := 1
		if width == 3 {
			step = 61 // prime-ish stride keeps the 3-word sweep fast
		}
		for value := 0; value < max; value += step {
			words, err := IntToWords(value, width)
			require.NoError(t, err)
			require.Len(t, words, width)
			for _, w := range words {
				assert.Less(t, int(w), WordValues)
			}
			assert.Equal(t, value, WordsToInt(words))
		}
	}
}

func TestIntToWordsBigEndian(t *testing.T) {
	words, err := IntToWords(64, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0}, words)
}

func TestIntToWordsOverflow(t *testing.T) {
	_, err := IntToWords(64, 1)
	assert.Error(t, err)

	_, err = IntToWords(-1, 1)
	assert.Error(t, err)
}

func TestDeepestNonInternal(t *testing.T) {
	outer := &Frame{Origin: "main.xasm", LineNum: 3}
	mid := &Frame{Origin: "MACRO", LineNum: 1, Prev: outer}
	inner := &Frame{Origin: "INNER", LineNum: 2, Internal: true, Prev: mid}

	assert.Equal(t, mid, inner.DeepestNonInternal())
	assert.Equal(t, mid, mid.DeepestNonInternal())
}

func TestDeepestNonInternalAllInternal(t *testing.T) {
	outer := &Frame{Origin: "a", Internal: true}
	inner := &Frame{Origin: "b", Internal: true, Prev: outer}

	assert.Equal(t, inner, inner.DeepestNonInternal())
}

func TestFrameLinesInnermostLast(t *testing.T) {
	outer := &Frame{Origin: "main.xasm", LineText: "DO_IT 1", LineNum: 3}
	inner := &Frame{Origin: "DO_IT", LineText: "DATA $a", LineNum: 1, Prev: outer}

	lines := inner.Lines()
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "main.xasm")
	assert.Contains(t, lines[2], "DO_IT")
}

func TestProgramLabelInversion(t *testing.T) {
	data := make([]*Word, AddressSpace)
	p := NewProgram(data, map[string]int{
		"start":      0,
		"start.loop": 8,
		"other":      8,
	})

	assert.ElementsMatch(t, []string{"start.loop", "other"}, p.LabelsAt(8))
	assert.Equal(t, []string{"start"}, p.LabelsAt(0))
	assert.Empty(t, p.LabelsAt(4))
}
