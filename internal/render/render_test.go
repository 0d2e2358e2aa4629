//go:build unit

package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderer_Markdown(t *testing.T) {
	r := New()

	out := r.Render("# Title\n\nSome **bold** and *em* text.\n\n- one\n- two\n")

	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<em>em</em>")
	assert.Contains(t, out, "<li>one</li>")
	assert.NotContains(t, out, "**")
	assert.NotContains(t, out, "# Title")
}

func TestRenderer_Sanitize(t *testing.T) {
	r := New()

	testCases := []struct {
		name      string
		raw       string
		forbidden []string
		want      []string
	}{
		{
			name:      "script block is dropped with its content",
			raw:       "<script>alert(1)</script>\n\nafter",
			forbidden: []string{"<script", "alert(1)"},
			want:      []string{"after"},
		},
		{
			name:      "inline script is dropped with its content",
			raw:       "Hello <script>alert(1)</script> world",
			forbidden: []string{"<script", "alert(1)"},
			want:      []string{"Hello", "world"},
		},
		{
			name:      "disallowed tag stripped but text kept",
			raw:       "<div class=\"box\" onclick=\"evil()\">inside</div>",
			forbidden: []string{"<div", "onclick", "evil()"},
			want:      []string{"inside"},
		},
		{
			name:      "javascript links lose their href",
			raw:       "[click](javascript:alert(1))",
			forbidden: []string{"javascript:"},
			want:      []string{"click"},
		},
		{
			name:      "disallowed attribute removed from allowed tag",
			raw:       "<p style=\"color:red\" class=\"lead\">text</p>",
			forbidden: []string{"style="},
			want:      []string{`class="lead"`, "text"},
		},
		{
			name:      "images keep src and alt",
			raw:       "![logo](https://example.com/a.png)",
			forbidden: nil,
			want:      []string{`src="https://example.com/a.png"`, `alt="logo"`},
		},
		{
			name:      "fenced code keeps language class",
			raw:       "```go\nfmt.Println(1)\n```",
			forbidden: nil,
			want:      []string{"<pre>", `class="language-go"`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := r.Render(tc.raw)
			for _, f := range tc.forbidden {
				assert.NotContains(t, out, f)
			}
			for _, w := range tc.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestRenderer_Linkify(t *testing.T) {
	r := New()

	t.Run("bare url becomes a link", func(t *testing.T) {
		out := r.Render("visit https://example.com/path.")
		assert.Contains(t, out, `<a href="https://example.com/path" rel="nofollow">https://example.com/path</a>.`)
	})

	t.Run("code spans are not linked", func(t *testing.T) {
		out := r.Render("`https://example.com`")
		assert.Contains(t, out, "<code>https://example.com</code>")
		assert.NotContains(t, out, "<a ")
	})

	t.Run("existing links are not nested", func(t *testing.T) {
		out := r.Render("[site](https://example.com)")
		assert.Equal(t, 1, strings.Count(out, "<a "))
	})
}

func TestRenderer_Idempotent(t *testing.T) {
	r := New()
	adversarial := "<script>steal()</script><iframe src=\"https://evil\"></iframe> see https://example.com"

	once := r.Render(adversarial)
	twice := r.Render(once)

	for _, out := range []string{once, twice} {
		assert.NotContains(t, out, "<script")
		assert.NotContains(t, out, "steal()")
		assert.NotContains(t, out, "<iframe")
	}
}

func TestRenderer_NeverFails(t *testing.T) {
	r := New()

	assert.Equal(t, "", r.Render(""))
	assert.Equal(t, "", r.Render("   \n"))

	out := r.Render("**unclosed [link( <b")
	assert.Contains(t, out, "unclosed")
}
