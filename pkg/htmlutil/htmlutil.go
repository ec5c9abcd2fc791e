package htmlutil

import (
	"bytes"
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// OwnText returns only the text nodes that are direct children of the selection's nodes,
// ignoring the text of nested elements.
func OwnText(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, n := range sel.Nodes {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.TextNode {
				buffer.WriteString(child.Data)
			}
		}
	}
	return buffer.String()
}

// TextNodes returns the data of every text node contained directly in the selection,
// in document order. Element nodes are skipped.
func TextNodes(sel *goquery.Selection) []string {
	var out []string
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			if n.Type == html.TextNode {
				out = append(out, n.Data)
			}
		}
	})
	return out
}

// Normalize removes non printable characters and collapses every run of whitespace
// (including non-breaking spaces) into a single space.
func Normalize(s string) string {
	s = strings.Map(func(c rune) rune {
		if unicode.IsSpace(c) {
			return ' '
		}
		if !unicode.IsPrint(c) {
			return -1
		}
		return c
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// ResolveAttr rewrites the given attribute of every matched element to an absolute url
// relative to `base`, attributes that are already absolute are left alone.
func ResolveAttr(sel *goquery.Selection, attr string, base *url.URL) {
	sel.Each(func(_ int, s *goquery.Selection) {
		value, ok := s.Attr(attr)
		if !ok || value == "" {
			return
		}
		ref, err := url.Parse(value)
		if err != nil || ref.IsAbs() {
			return
		}
		s.SetAttr(attr, base.ResolveReference(ref).String())
	})
}
