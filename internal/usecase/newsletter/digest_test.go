package newsletter_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"byte-highlight/internal/domain/entity"
	nlUC "byte-highlight/internal/usecase/newsletter"
)

func sampleArticles(n int) []*entity.Article {
	out := make([]*entity.Article, n)
	for i := range out {
		out[i] = &entity.Article{
			ID:       int64(i + 1),
			Title:    fmt.Sprintf("Story %d", i),
			Subtitle: fmt.Sprintf("Subtitle %d", i),
			URL:      fmt.Sprintf("https://example.com/%d", i),
			Author:   "Jane",
			Topic:    "AI",
		}
	}
	return out
}

func TestSubject(t *testing.T) {
	now := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "The Byte Highlight - Weekly Tech Update 3/9/2026", nlUC.Subject(now))
}

func TestDigestBuilder_Build(t *testing.T) {
	b := nlUC.DigestBuilder{BaseURL: "https://bytehighlight.example/"}
	now := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

	t.Run("featured and updates", func(t *testing.T) {
		d, err := b.Build(sampleArticles(14), "A big week for <AI>.", now)
		require.NoError(t, err)

		require.NotNil(t, d.Featured)
		assert.Equal(t, "Story 0", d.Featured.Title)
		assert.Len(t, d.Updates, nlUC.MaxDigestUpdates)

		assert.Contains(t, d.HTML, "Monday, March 9, 2026")
		assert.Contains(t, d.HTML, "Featured Story")
		assert.Contains(t, d.HTML, "Latest Updates")
		assert.Contains(t, d.HTML, "Story 10")
		assert.NotContains(t, d.HTML, "Story 11")
		assert.Contains(t, d.HTML, "A big week for &lt;AI&gt;.")
		assert.Contains(t, d.HTML, `href="https://bytehighlight.example/articles"`)
		assert.Contains(t, d.HTML, "&copy; 2026")
		assert.Contains(t, d.HTML, `href="`+nlUC.UnsubscribePlaceholder+`"`)
	})

	t.Run("quiet week", func(t *testing.T) {
		d, err := b.Build(nil, "", now)
		require.NoError(t, err)
		assert.Nil(t, d.Featured)
		assert.Contains(t, d.HTML, "quiet week")
		assert.NotContains(t, d.HTML, "Latest Updates")
	})

	t.Run("article without url renders title only", func(t *testing.T) {
		a := sampleArticles(1)
		a[0].URL = ""
		d, err := b.Build(a, "", now)
		require.NoError(t, err)
		assert.Contains(t, d.HTML, "<h3>Story 0</h3>")
	})
}

func TestDigestBuilder_UnsubscribeURL(t *testing.T) {
	b := nlUC.DigestBuilder{BaseURL: "https://bytehighlight.example"}
	got := b.UnsubscribeURL("a+b@example.com", "tok")
	assert.True(t, strings.HasPrefix(got, "https://bytehighlight.example/api/unsubscribe?"))
	assert.Contains(t, got, "email=a%2Bb%40example.com")
	assert.Contains(t, got, "token=tok")
}
