package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLoose(t *testing.T) {
	t.Parallel()

	t.Run("direct json array", func(t *testing.T) {
		t.Parallel()
		p := ParseLoose(`["Love", "Courage"]`)
		assert.Equal(t, KindList, p.Kind)
		assert.Equal(t, []string{"Love", "Courage"}, p.StringItems())
	})

	t.Run("direct json object", func(t *testing.T) {
		t.Parallel()
		p := ParseLoose(`{"genre": "Fantasy", "target_audience": "Teens"}`)
		assert.Equal(t, KindObject, p.Kind)
		assert.Equal(t, "Fantasy", p.StringField("genre"))
	})

	t.Run("fenced json block", func(t *testing.T) {
		t.Parallel()
		raw := "Here is the result:\n```json\n[\"X\", \"Y\"]\n```\nHope that helps!"
		p := ParseLoose(raw)
		assert.Equal(t, KindList, p.Kind)
		assert.Equal(t, []string{"X", "Y"}, p.StringItems())
	})

	t.Run("array literal embedded in prose", func(t *testing.T) {
		t.Parallel()
		p := ParseLoose(`The themes I found are ["Hope", "Loss"] as requested.`)
		assert.Equal(t, KindList, p.Kind)
		assert.Equal(t, []string{"Hope", "Loss"}, p.StringItems())
	})

	t.Run("object literal embedded in prose", func(t *testing.T) {
		t.Parallel()
		p := ParseLoose(`Sure! {"summary": "A tale of two cities."} Done.`)
		require.Equal(t, KindObject, p.Kind)
		assert.Equal(t, "A tale of two cities.", p.StringField("summary"))
	})

	t.Run("bulleted lines become items", func(t *testing.T) {
		t.Parallel()
		raw := "- First theme\n* Second theme\n3. Third theme\n\n"
		p := ParseLoose(raw)
		require.Equal(t, KindList, p.Kind)
		assert.Equal(t, []string{"First theme", "Second theme", "Third theme"}, p.StringItems())
	})

	t.Run("plain text falls through as single item", func(t *testing.T) {
		t.Parallel()
		p := ParseLoose("Just a plain sentence with no structure.")
		assert.Equal(t, KindText, p.Kind)
		assert.Equal(t, []string{"Just a plain sentence with no structure."}, p.StringItems())
	})

	t.Run("empty input is an empty list", func(t *testing.T) {
		t.Parallel()
		p := ParseLoose("   \n  ")
		assert.Equal(t, KindList, p.Kind)
		assert.Empty(t, p.StringItems())
	})

	t.Run("object elements in a list coerce via known keys", func(t *testing.T) {
		t.Parallel()
		p := ParseLoose(`[{"quote": "To be or not to be."}, {"text": "So it goes."}, {"unknown": "skipped"}]`)
		assert.Equal(t, []string{"To be or not to be.", "So it goes."}, p.StringItems())
	})
}

func TestStringField(t *testing.T) {
	t.Parallel()

	t.Run("falls back through candidate keys", func(t *testing.T) {
		t.Parallel()
		p := ParseLoose(`{"audience": "Young readers"}`)
		assert.Equal(t, "Young readers", p.StringField("target_audience", "audience"))
	})

	t.Run("non-object kinds yield empty string", func(t *testing.T) {
		t.Parallel()
		p := ParseLoose(`["a"]`)
		assert.Empty(t, p.StringField("anything"))
	})
}

func TestObjectItems(t *testing.T) {
	t.Parallel()

	p := ParseLoose(`[{"title": "Ch 1"}, "not an object", {"title": "Ch 2"}]`)
	items := p.ObjectItems()
	require.Len(t, items, 2)
	assert.Equal(t, "Ch 1", items[0]["title"])
}
