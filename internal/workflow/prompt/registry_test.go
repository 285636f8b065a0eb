package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("all known prompt ids resolve", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry()
		ids := []PromptID{
			PromptThemesV1,
			PromptQuotesV1,
			PromptInsightsV1,
			PromptOverallSummaryV1,
			PromptGenreAudienceV1,
			PromptDiscussionV1,
			PromptChapterSummaryV1,
			PromptPostGenV1,
		}
		for _, id := range ids {
			tpl, err := r.ChatTemplate(id)
			require.NoError(t, err, string(id))
			assert.NotNil(t, tpl)
		}
	})

	t.Run("templates are cached after first load", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry()
		first, err := r.ChatTemplate(PromptThemesV1)
		require.NoError(t, err)
		second, err := r.ChatTemplate(PromptThemesV1)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("unknown prompt id fails", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry()
		_, err := r.ChatTemplate(PromptID("does_not_exist"))
		assert.Error(t, err)
	})

	t.Run("nil registry fails instead of panicking", func(t *testing.T) {
		t.Parallel()
		var r *Registry
		_, err := r.ChatTemplate(PromptThemesV1)
		assert.Error(t, err)
	})
}
