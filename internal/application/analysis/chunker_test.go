package analysis

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText(t *testing.T) {
	t.Parallel()

	t.Run("returns whole text when under limit", func(t *testing.T) {
		t.Parallel()
		chunks := SplitText("Short text.", 100)
		require.Len(t, chunks, 1)
		assert.Equal(t, "Short text.", chunks[0])
	})

	t.Run("splits at sentence boundaries", func(t *testing.T) {
		t.Parallel()
		text := "First sentence here. Second sentence here. Third sentence here."
		chunks := SplitText(text, 25)

		require.Greater(t, len(chunks), 1)
		for _, chunk := range chunks {
			assert.True(t, strings.HasSuffix(chunk, "."), "chunk must end at a sentence boundary: %q", chunk)
		}
	})

	t.Run("keeps all content across chunks", func(t *testing.T) {
		t.Parallel()
		text := "Alpha one. Beta two. Gamma three. Delta four. Epsilon five."
		chunks := SplitText(text, 20)

		joined := strings.Join(chunks, " ")
		for _, word := range []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon"} {
			assert.Contains(t, joined, word)
		}
	})

	t.Run("oversized sentence becomes its own chunk", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("word ", 30) + "end."
		text := "Tiny. " + long + " Tail."
		chunks := SplitText(text, 30)

		found := false
		for _, chunk := range chunks {
			if utf8.RuneCountInString(chunk) > 30 {
				assert.Contains(t, chunk, "end.")
				found = true
			}
		}
		assert.True(t, found, "the oversized sentence must stay intact in one chunk")
	})

	t.Run("consecutive terminators stay in one sentence", func(t *testing.T) {
		t.Parallel()
		sentences := splitSentences("Really?! Yes. Done.")
		require.Len(t, sentences, 3)
		assert.Equal(t, "Really?!", strings.TrimSpace(sentences[0]))
	})

	t.Run("non-positive limit returns text unchanged", func(t *testing.T) {
		t.Parallel()
		chunks := SplitText("Anything at all.", 0)
		require.Len(t, chunks, 1)
	})
}

func TestSampleExcerpt(t *testing.T) {
	t.Parallel()

	t.Run("single chunk is returned as-is", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "only chunk", sampleExcerpt([]string{"only chunk"}, 100))
	})

	t.Run("long books sample beginning middle and end", func(t *testing.T) {
		t.Parallel()
		chunks := []string{
			"opening " + strings.Repeat("a", 50),
			"middle " + strings.Repeat("b", 50),
			"closing " + strings.Repeat("c", 50),
		}
		excerpt := sampleExcerpt(chunks, 120)

		assert.Contains(t, excerpt, "opening")
		assert.Contains(t, excerpt, "middle")
		assert.Contains(t, excerpt, "closing")
	})

	t.Run("stays within the rune budget", func(t *testing.T) {
		t.Parallel()
		chunks := []string{
			strings.Repeat("a", 500),
			strings.Repeat("b", 500),
			strings.Repeat("c", 500),
			strings.Repeat("d", 500),
		}
		excerpt := sampleExcerpt(chunks, 200)

		// 预算 200：开头 100 + 中段 50 + 结尾 50，外加两个分隔符
		assert.LessOrEqual(t, utf8.RuneCountInString(excerpt), 204)
		assert.Contains(t, excerpt, strings.Repeat("a", 100))
		assert.Contains(t, excerpt, "c")
		assert.Contains(t, excerpt, "d")
	})

	t.Run("two chunks skip the middle sample", func(t *testing.T) {
		t.Parallel()
		excerpt := sampleExcerpt([]string{"first part.", "second part."}, 100)
		require.Equal(t, "first part.\n\nsecond part.", excerpt)
	})

	t.Run("non-positive budget falls back to the first chunk", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "head", sampleExcerpt([]string{"head", "tail"}, 0))
	})

	t.Run("empty input yields empty excerpt", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", sampleExcerpt(nil, 100))
	})
}
