// Package sanitize implements the ingestion-time content filters: an
// allowlist HTML sanitizer, a protocol/domain URL validator, and a YouTube
// embed URL resolver. All three are pure functions returning an empty string
// on rejection; they never fail loudly on malformed input.
package sanitize

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaxHTMLLen is the input length cap; longer input is silently truncated
// before parsing rather than rejected.
const MaxHTMLLen = 1000

// allowedTags is the element allowlist. Anything else is unwrapped: its
// children are hoisted into its place, the element itself is dropped.
var allowedTags = map[string]bool{
	"a":          true,
	"p":          true,
	"br":         true,
	"strong":     true,
	"em":         true,
	"ul":         true,
	"ol":         true,
	"li":         true,
	"blockquote": true,
}

// allowedAttrs is the per-tag attribute allowlist.
var allowedAttrs = map[string]map[string]bool{
	"a": {"href": true, "rel": true, "target": true},
}

var dangerousProtocols = []string{"javascript:", "data:", "vbscript:", "file:"}

// Belt-and-suspenders patterns applied to the serialized output, guarding
// against parser/serializer quirks.
var (
	scriptBlockRe  = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	eventHandlerRe = regexp.MustCompile(`(?i)\s*on\w+\s*=\s*("[^"]*"|'[^']*')`)
	jsHrefRe       = regexp.MustCompile(`(?i)href\s*=\s*("javascript:[^"]*"|'javascript:[^']*')`)
)

// HTML sanitizes raw markup using the allowlist approach. It returns the
// sanitized fragment, or the empty string if the input (or the result after
// filtering) is empty or all-whitespace. Callers must treat an empty return
// as a validation failure, not as empty markup.
func HTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	if len(raw) > MaxHTMLLen {
		raw = raw[:MaxHTMLLen]
	}

	// Parse as a fragment in a synthetic div context so bare text and
	// multiple top-level nodes are tolerated.
	ctx := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	}
	nodes, err := html.ParseFragment(strings.NewReader(raw), ctx)
	if err != nil {
		// The parser tolerates malformed markup; an error here means the
		// reader failed, which cannot happen with a strings.Reader.
		return ""
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		for _, clean := range sanitizeNode(n) {
			if err := html.Render(&buf, clean); err != nil {
				return ""
			}
		}
	}

	result := stripDangerous(buf.String())
	return strings.TrimSpace(result)
}

// sanitizeNode is a pure recursive transform: it never mutates n, it builds
// and returns new filtered nodes. A disallowed element yields its sanitized
// children in its place; disallowed node types (comments, doctypes) yield
// nothing. The node's own legality is resolved before its children are
// visited, so hoisted children are re-checked at their new depth.
func sanitizeNode(n *html.Node) []*html.Node {
	switch n.Type {
	case html.TextNode:
		return []*html.Node{{Type: html.TextNode, Data: n.Data}}

	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if !allowedTags[tag] {
			// Unwrap: hoist sanitized children into the parent's position.
			return sanitizeChildren(n)
		}

		clean := &html.Node{
			Type:     html.ElementNode,
			Data:     tag,
			DataAtom: n.DataAtom,
			Attr:     cleanAttributes(n.Attr, tag),
		}
		for _, child := range sanitizeChildren(n) {
			clean.AppendChild(child)
		}
		return []*html.Node{clean}

	default:
		// Comments and every other node type are discarded outright.
		return nil
	}
}

func sanitizeChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		out = append(out, sanitizeNode(child)...)
	}
	return out
}

// cleanAttributes keeps only allowlisted attributes for the tag and rejects
// unsafe href values.
func cleanAttributes(attrs []html.Attribute, tag string) []html.Attribute {
	allowed := allowedAttrs[tag]
	if len(allowed) == 0 {
		return nil
	}

	var kept []html.Attribute
	for _, attr := range attrs {
		name := strings.ToLower(attr.Key)
		if !allowed[name] {
			continue
		}
		if name == "href" && !validHref(attr.Val) {
			continue
		}
		kept = append(kept, html.Attribute{Key: name, Val: attr.Val})
	}
	return kept
}

// validHref rejects dangerous protocols outright and requires HTTPS for
// absolute URLs. Relative and fragment URLs without a scheme are tolerated.
func validHref(href string) bool {
	href = strings.TrimSpace(href)

	for _, proto := range dangerousProtocols {
		if hasPrefixFold(href, proto) {
			return false
		}
	}

	if strings.Contains(href, "://") && !hasPrefixFold(href, "https://") {
		return false
	}

	return true
}

// stripDangerous is the final text-level defensive pass over serialized
// output: script blocks, inline event handlers, and javascript: hrefs.
func stripDangerous(markup string) string {
	markup = scriptBlockRe.ReplaceAllString(markup, "")
	markup = eventHandlerRe.ReplaceAllString(markup, "")
	markup = jsHrefRe.ReplaceAllString(markup, "")
	return markup
}

// hasPrefixFold reports whether s begins with prefix, ASCII case-insensitive.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
