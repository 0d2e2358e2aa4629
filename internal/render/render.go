// Package render turns user-authored markdown into HTML that is safe to
// store next to its source and serve without further escaping.
package render

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	nethtml "golang.org/x/net/html"
)

// AllowedTags is the fixed set of elements that survive sanitizing.
var AllowedTags = []string{
	"a", "abbr", "acronym", "b", "code", "blockquote", "em", "i", "strong",
	"li", "ol", "pre", "ul", "h1", "h2", "h3", "p", "img",
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"'` + "`" + `]+`)

// Renderer converts raw markdown into sanitized HTML. It is safe for
// concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New creates a Renderer with the fixed allow-list policy.
func New() *Renderer {
	// Raw HTML is passed through by the markdown step so that the
	// sanitizer is the only place deciding what survives.
	md := goldmark.New(
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)

	policy := bluemonday.NewPolicy()
	policy.AllowElements(AllowedTags...)
	policy.AllowAttrs("class").Globally()
	policy.AllowAttrs("href", "rel").OnElements("a")
	policy.AllowAttrs("src", "alt").OnElements("img")
	policy.AllowStandardURLs()

	return &Renderer{md: md, policy: policy}
}

// Render converts raw markdown to sanitized HTML with bare URLs linked.
// It never fails; input the markdown parser cannot handle degrades to
// escaped text.
func (r *Renderer) Render(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(raw), &buf); err != nil {
		buf.Reset()
		buf.WriteString("<p>" + html.EscapeString(raw) + "</p>")
	}
	sanitized := r.policy.Sanitize(buf.String())
	return linkify(sanitized)
}

// linkify wraps bare http(s) URLs found in text nodes with anchors. Text
// already inside a, pre or code is left alone.
func linkify(fragment string) string {
	if !urlPattern.MatchString(fragment) {
		return fragment
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	body := doc.Find("body")
	walkText(body.Nodes[0])
	out, err := body.Html()
	if err != nil {
		return fragment
	}
	return out
}

func walkText(n *nethtml.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.Type {
		case nethtml.ElementNode:
			switch c.Data {
			case "a", "pre", "code":
			default:
				walkText(c)
			}
		case nethtml.TextNode:
			linkText(c)
		}
		c = next
	}
}

// linkText replaces one text node with a sequence of text and anchor nodes.
func linkText(n *nethtml.Node) {
	locs := urlPattern.FindAllStringIndex(n.Data, -1)
	if len(locs) == 0 {
		return
	}
	parent := n.Parent
	text := n.Data
	last := 0
	for _, loc := range locs {
		start, end := loc[0], trimURL(text, loc[0], loc[1])
		if start > last {
			parent.InsertBefore(&nethtml.Node{Type: nethtml.TextNode, Data: text[last:start]}, n)
		}
		url := text[start:end]
		a := &nethtml.Node{
			Type: nethtml.ElementNode,
			Data: "a",
			Attr: []nethtml.Attribute{{Key: "href", Val: url}, {Key: "rel", Val: "nofollow"}},
		}
		a.AppendChild(&nethtml.Node{Type: nethtml.TextNode, Data: url})
		parent.InsertBefore(a, n)
		last = end
	}
	if last < len(text) {
		parent.InsertBefore(&nethtml.Node{Type: nethtml.TextNode, Data: text[last:]}, n)
	}
	parent.RemoveChild(n)
}

// trimURL drops trailing punctuation that usually ends the sentence rather than the URL.
func trimURL(text string, start, end int) int {
	for end > start && strings.ContainsRune(".,;:!?)", rune(text[end-1])) {
		end--
	}
	return end
}
