package intro

import (
	"fmt"
	"strings"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/utils/text"
)

// maxPromptArticles bounds the prompt; the digest never lists more anyway.
const maxPromptArticles = 11

const systemPrompt = "You write the opening paragraph of The Byte Highlight, a weekly technology newsletter. " +
	"Write in a warm, concise editorial voice. Plain text only: no headings, lists, links or markdown."

// buildPrompt lists the week's stories for the model.
func buildPrompt(articles []*entity.Article, wordLimit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write an introduction of at most %d words for this week's issue. ", wordLimit)
	b.WriteString("Mention the most notable themes. These are the stories:\n")
	for i, a := range articles {
		if i == maxPromptArticles {
			break
		}
		fmt.Fprintf(&b, "- %s", a.Title)
		if a.Subtitle != "" {
			fmt.Fprintf(&b, ": %s", text.Truncate(a.Subtitle, 200))
		}
		if a.Topic != "" {
			fmt.Fprintf(&b, " [%s]", a.Topic)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// finish enforces the word limit on a model response and records metrics.
func finish(raw string, wordLimit int, m MetricsRecorder) (string, error) {
	out, cut := text.LimitWords(raw, wordLimit)
	if out == "" {
		return "", fmt.Errorf("model returned empty intro")
	}
	m.RecordWords(len(strings.Fields(out)))
	if cut {
		m.RecordTruncated()
	}
	return out, nil
}
