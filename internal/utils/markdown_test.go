package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	out := string(RenderMarkdown("**жирный**\nвторая строка"))
	assert.Contains(t, out, "<strong>жирный</strong>")
	assert.Contains(t, out, "<br")
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := string(RenderMarkdown("<script>alert(1)</script>\n\n[link](javascript:alert(1))"))
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
}

func TestRenderMarkdownEnhancesImagesAndLinks(t *testing.T) {
	out := string(RenderMarkdown("![кот](https://example.com/cat.png)\n\n[сайт](https://example.com)"))
	assert.Contains(t, out, `loading="lazy"`)
	assert.Contains(t, out, "nofollow")
	assert.False(t, strings.Contains(out, "<body>"))
}

func TestPlainText(t *testing.T) {
	html := RenderMarkdown("# Заголовок\n\nПервый абзац текста")
	assert.Equal(t, "Заголовок Первый абзац текста", PlainText(html, 0))
	assert.Equal(t, "Заголовок…", PlainText(html, 9))
}

func TestRenderMarkdownPostPolicy(t *testing.T) {
	out := string(RenderMarkdown("![пиксель](data:image/png;base64,AAAA)"))
	assert.NotContains(t, out, "data:")

	out = string(RenderMarkdown("- [x] готово\n- [ ] в планах"))
	assert.Contains(t, out, `type="checkbox"`)
	assert.Contains(t, out, "готово")

	out = string(RenderMarkdown("| a | b |\n|:-:|---|\n| 1 | 2 |"))
	assert.Contains(t, out, "<table>")
	assert.NotContains(t, out, "style=")

	out = string(RenderMarkdown("[почта](mailto:leo@example.com) и [картинка](/media/posts/a.png)"))
	assert.Contains(t, out, `href="mailto:leo@example.com"`)
	assert.Contains(t, out, `href="/media/posts/a.png"`)
	assert.NotContains(t, out, "class=")
}
