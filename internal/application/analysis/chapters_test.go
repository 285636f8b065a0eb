package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectSections(t *testing.T) {
	t.Parallel()

	t.Run("detects chapter headings", func(t *testing.T) {
		t.Parallel()
		text := "Chapter 1 The Beginning\nSome opening text.\n\nChapter 2 The Middle\nMore text here.\n\nChapter 3 The End\nFinal text."
		sections := DetectSections(text, 1000, 10)

		require.Len(t, sections, 3)
		assert.Equal(t, 1, sections[0].Number)
		assert.Equal(t, 3, sections[2].Number)
		assert.Contains(t, sections[0].Title, "Chapter 1")
		assert.Contains(t, sections[1].Text, "More text here.")
	})

	t.Run("detects roman numeral chapters", func(t *testing.T) {
		t.Parallel()
		text := "Chapter I\nFirst part.\n\nChapter II\nSecond part."
		sections := DetectSections(text, 1000, 10)

		require.Len(t, sections, 2)
		assert.Contains(t, sections[1].Text, "Second part.")
	})

	t.Run("single heading is not enough", func(t *testing.T) {
		t.Parallel()
		text := "Chapter 1 Lonely\nJust one heading in a short text."
		sections := DetectSections(text, 1000, 10)

		require.Len(t, sections, 1)
		assert.Equal(t, 1, sections[0].Number)
	})

	t.Run("long unstructured text falls back to fixed sections", func(t *testing.T) {
		t.Parallel()
		text := strings.Repeat("Plain narrative without any headings whatsoever. ", 200)
		sections := DetectSections(text, 500, 4)

		require.NotEmpty(t, sections)
		assert.LessOrEqual(t, len(sections), 4)
		for i, s := range sections {
			assert.Equal(t, i+1, s.Number)
			assert.NotEmpty(t, s.Text)
		}
	})

	t.Run("short unstructured text is a single section", func(t *testing.T) {
		t.Parallel()
		sections := DetectSections("Just a short story.", 500, 4)
		require.Len(t, sections, 1)
		assert.Equal(t, "Just a short story.", sections[0].Text)
	})
}
