package mos

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// maxSnippetLen bounds the snippet text carried per result.
const maxSnippetLen = 300

// docIDSuffixPattern matches the "(Doc ID 2553222.1)" suffix the portal
// appends to knowledge document titles.
var docIDSuffixPattern = regexp.MustCompile(`\(\s*Doc ID\s+([0-9][0-9.]*)\s*\)`)

// ExtractSearchResults walks a results-page HTML snapshot in DOM order and
// returns up to max results. Result rows are recognized by anchors whose href
// points at a document view; rows missing a title or link are skipped, not
// fatal. Results are deduplicated within the snapshot by doc id, falling back
// to URL. Extraction stops as soon as the cap is reached.
//
// The concrete recognition rules live here, against the portal's current
// markup; when the portal drifts, this file and its fixtures are the only
// things to update.
func ExtractSearchResults(rawHTML, pageURL, query string, max int) ([]SearchResult, error) {
	if max <= 0 || max > ResultsPerQueryLimit {
		max = ResultsPerQueryLimit
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	base, _ := url.Parse(pageURL)
	seen := make(map[string]bool)
	var results []SearchResult

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(results) >= max {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			if r, ok := resultFromAnchor(n, base, query); ok {
				key := r.DocID
				if key == "" {
					key = r.URL
				}
				if !seen[key] {
					seen[key] = true
					results = append(results, r)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return results, nil
}

// resultFromAnchor builds a SearchResult from one anchor node, rejecting
// anchors that do not look like document links or have no title text.
func resultFromAnchor(n *html.Node, base *url.URL, query string) (SearchResult, bool) {
	href := attrValue(n, "href")
	if href == "" || !isDocumentHref(href) {
		return SearchResult{}, false
	}

	title := collapseWhitespace(nodeText(n))
	if title == "" {
		return SearchResult{}, false
	}

	resolved := href
	if base != nil {
		if ref, err := url.Parse(href); err == nil {
			resolved = base.ResolveReference(ref).String()
		}
	}

	docID := docIDFromHref(resolved)
	if docID == "" {
		if m := docIDSuffixPattern.FindStringSubmatch(title); m != nil {
			docID = m[1]
		}
	}

	return SearchResult{
		DocID:   docID,
		Title:   title,
		URL:     resolved,
		Snippet: snippetFor(n, title),
		Query:   query,
	}, true
}

// isDocumentHref reports whether href points at a knowledge document view.
func isDocumentHref(href string) bool {
	lower := strings.ToLower(href)
	if strings.Contains(lower, "documentdisplay") {
		return true
	}
	return strings.Contains(lower, "epmos") && strings.Contains(lower, "id=")
}

// docIDFromHref pulls the document identifier out of a document-view URL.
func docIDFromHref(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get("id")
}

// snippetFor returns the surrounding text of a result anchor: the text of the
// nearest block-level ancestor minus the title itself, collapsed and capped.
func snippetFor(n *html.Node, title string) string {
	ancestor := n.Parent
	for depth := 0; ancestor != nil && depth < 4; depth++ {
		if ancestor.Type == html.ElementNode && isBlockElement(ancestor.Data) {
			break
		}
		ancestor = ancestor.Parent
	}
	if ancestor == nil {
		return ""
	}

	text := collapseWhitespace(nodeText(ancestor))
	text = strings.TrimSpace(strings.Replace(text, title, "", 1))
	text = collapseWhitespace(text)
	if runes := []rune(text); len(runes) > maxSnippetLen {
		text = string(runes[:maxSnippetLen]) + "..."
	}
	return text
}

// ExtractDocument normalizes a document-view HTML snapshot into a Document.
// The body region is located by preference (document container, main region,
// article) before falling back to the whole body; scripts, styles and chrome
// elements are stripped and whitespace is collapsed per block.
func ExtractDocument(rawHTML, docID string) (*Document, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document page: %w", err)
	}

	region := findContentRegion(doc)
	if region == nil {
		region = doc
	}

	var blocks []string
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && isChromeElement(n.Data) {
			return
		}
		if n.Type == html.ElementNode && isBlockElement(n.Data) {
			if text := collapseWhitespace(ownText(n)); text != "" {
				blocks = append(blocks, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(region)

	body := strings.Join(blocks, "\n")
	if body == "" {
		body = collapseWhitespace(nodeText(region))
	}

	title := documentTitle(doc)
	if docID == "" {
		if m := docIDSuffixPattern.FindStringSubmatch(title); m != nil {
			docID = m[1]
		}
	}

	return &Document{DocID: docID, Title: title, Body: body}, nil
}

// findContentRegion locates the rendered document container, most specific
// match first.
func findContentRegion(doc *html.Node) *html.Node {
	matchers := []func(n *html.Node) bool{
		func(n *html.Node) bool {
			id := strings.ToLower(attrValue(n, "id"))
			return strings.Contains(id, "documentdisplay") || strings.Contains(id, "docdisplay")
		},
		func(n *html.Node) bool {
			return strings.Contains(strings.ToLower(attrValue(n, "class")), "km-document")
		},
		func(n *html.Node) bool { return attrValue(n, "role") == "main" },
		func(n *html.Node) bool { return n.Data == "main" },
		func(n *html.Node) bool { return n.Data == "article" },
		func(n *html.Node) bool { return n.Data == "body" },
	}

	for _, match := range matchers {
		if found := findElement(doc, match); found != nil {
			return found
		}
	}
	return nil
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

// documentTitle prefers a heading that carries the Doc ID suffix, then any
// h1/h2, then the page title.
func documentTitle(doc *html.Node) string {
	var heading, fallback string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if heading != "" {
			return
		}
		if n.Type == html.ElementNode && (n.Data == "h1" || n.Data == "h2") {
			text := collapseWhitespace(nodeText(n))
			if docIDSuffixPattern.MatchString(text) {
				heading = text
				return
			}
			if fallback == "" {
				fallback = text
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if heading != "" {
		return heading
	}
	if fallback != "" {
		return fallback
	}
	if titleNode := findElement(doc, func(n *html.Node) bool { return n.Data == "title" }); titleNode != nil {
		return collapseWhitespace(nodeText(titleNode))
	}
	return ""
}

// nodeText returns the concatenated text of a node's subtree, skipping
// script/style content.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && isChromeElement(n.Data) {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// ownText returns the text belonging directly to a block node, excluding
// nested block elements so each block is reported once.
func ownText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (isChromeElement(n.Data) || isBlockElement(n.Data)) {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return b.String()
}

func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

// isChromeElement reports elements stripped entirely from extracted text.
func isChromeElement(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "iframe", "svg", "nav", "header", "footer":
		return true
	}
	return false
}

func isBlockElement(tag string) bool {
	switch tag {
	case "div", "p", "section", "article", "main", "aside",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "table", "tr", "td", "th",
		"blockquote", "pre", "form", "fieldset":
		return true
	}
	return false
}

// collapseWhitespace squeezes all runs of whitespace to single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
