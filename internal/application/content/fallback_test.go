package content

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"book-social-ai-api/internal/domain/entity"
)

func TestBuildFallback(t *testing.T) {
	t.Parallel()

	t.Run("quote frame carries quote author and title", func(t *testing.T) {
		t.Parallel()
		out := BuildFallback(entity.SourceTypeQuote, "To be or not to be.", "Hamlet", "Shakespeare", 280)
		assert.Contains(t, out, `"To be or not to be."`)
		assert.Contains(t, out, "Shakespeare")
		assert.Contains(t, out, "Hamlet")
	})

	t.Run("quote frame without author", func(t *testing.T) {
		t.Parallel()
		out := BuildFallback(entity.SourceTypeQuote, "A line.", "The Book", "", 280)
		assert.Equal(t, `"A line." — The Book`, out)
	})

	t.Run("theme frame", func(t *testing.T) {
		t.Parallel()
		out := BuildFallback(entity.SourceTypeTheme, "forgiveness", "The Long Road", "", 280)
		assert.Equal(t, "The Long Road explores forgiveness. A thought-provoking read.", out)
	})

	t.Run("insight frame", func(t *testing.T) {
		t.Parallel()
		out := BuildFallback(entity.SourceTypeInsight, "Growth requires loss.", "The Long Road", "", 280)
		assert.Equal(t, "Key takeaway from The Long Road: Growth requires loss.", out)
	})

	t.Run("summary frame includes author when present", func(t *testing.T) {
		t.Parallel()
		out := BuildFallback(entity.SourceTypeSummary, "A sweeping saga.", "The Long Road", "J. Doe", 280)
		assert.Equal(t, "The Long Road by J. Doe: A sweeping saga.", out)
	})

	t.Run("result never exceeds the budget", func(t *testing.T) {
		t.Parallel()
		long := strings.Repeat("An endless excerpt that keeps going. ", 20)
		for _, budget := range []int{280, 100, 50} {
			out := BuildFallback(entity.SourceTypeQuote, long, "Title", "Author", budget)
			assert.LessOrEqual(t, utf8.RuneCountInString(out), budget, "budget %d", budget)
			assert.NotEmpty(t, out)
		}
	})

	t.Run("tiny budget truncates without panicking", func(t *testing.T) {
		t.Parallel()
		out := BuildFallback(entity.SourceTypeQuote, "Some excerpt text.", "A Rather Long Book Title", "Author Name", 5)
		assert.LessOrEqual(t, utf8.RuneCountInString(out), 5)
	})
}
