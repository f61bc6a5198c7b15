// Package catalog reads remote driver listings into version catalogs.
//
// Two listing formats are understood: XML bucket listings (S3/GCS <Key>
// elements and Azure <Blob><Name> elements) and HTML index pages, where the
// href targets of anchors are the entries.
package catalog

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/ZebulonRouseFrantzich/wdb/internal/logging"
	"github.com/ZebulonRouseFrantzich/wdb/internal/version"
)

// Getter fetches a URL body. *fetch.Client satisfies it.
type Getter interface {
	Bytes(ctx context.Context, url string) ([]byte, error)
}

// Filter selects listing entries. An entry is kept only when it contains
// both Prefix and Token; empty fields match everything.
type Filter struct {
	Prefix string
	Token  string
}

// Match reports whether entry passes the filter.
func (f Filter) Match(entry string) bool {
	return strings.Contains(entry, f.Prefix) && strings.Contains(entry, f.Token)
}

// Reader turns remote listings into catalogs.
type Reader struct {
	getter Getter
	logger logging.Logger
}

// NewReader creates a reader. A nil logger discards output.
func NewReader(getter Getter, logger logging.Logger) *Reader {
	return &Reader{getter: getter, logger: logging.OrNop(logger)}
}

// List fetches the listing at url and returns the catalog of entries that
// pass f. Any network or parse failure yields an empty catalog, never an
// error; callers treat an empty catalog as "no data".
func (r *Reader) List(ctx context.Context, url string, f Filter) *version.Catalog {
	entries, err := r.Entries(ctx, url)
	if err != nil {
		r.logger.Warn("catalog unavailable", "url", url, "error", err)
		return version.NewCatalog()
	}

	c := Build(entries, f)
	r.logger.Debug("catalog loaded", "url", url, "entries", len(entries), "versions", c.Len())
	return c
}

// Entries fetches the listing at url and returns its raw entries in
// document order.
func (r *Reader) Entries(ctx context.Context, url string) ([]string, error) {
	body, err := r.getter.Bytes(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	return ParseEntries(body)
}

// Build creates a catalog from raw entries. The version of an entry is its
// leading path segment; entries without a '/' are dropped. Later entries
// win on duplicate versions.
func Build(entries []string, f Filter) *version.Catalog {
	c := version.NewCatalog()
	for _, entry := range entries {
		if !f.Match(entry) {
			continue
		}
		v, _, ok := strings.Cut(entry, "/")
		if !ok || v == "" {
			continue
		}
		c.Put(v, entry)
	}
	return c
}

// ParseEntries extracts entries from an XML bucket listing or an HTML index.
func ParseEntries(body []byte) ([]string, error) {
	// Some blob stores prepend a UTF-8 BOM
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(body, []byte("\xef\xbb\xbf")))
	if len(trimmed) == 0 {
		return nil, errors.New("empty listing")
	}
	if isXML(trimmed) {
		return parseXML(trimmed)
	}
	return parseHTML(trimmed)
}

func isXML(body []byte) bool {
	if bytes.HasPrefix(body, []byte("<?xml")) {
		return true
	}
	head := body
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(head, []byte("<ListBucketResult")) ||
		bytes.Contains(head, []byte("<EnumerationResults"))
}

// parseXML collects <Key> text and <Name> text nested in <Blob>.
func parseXML(body []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false

	var (
		entries []string
		stack   []string
		text    strings.Builder
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml listing: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			text.Reset()
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if isEntryElement(stack) {
				if s := strings.TrimSpace(text.String()); s != "" {
					entries = append(entries, s)
				}
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			text.Reset()
		}
	}

	if len(stack) != 0 {
		return nil, errors.New("parse xml listing: unexpected end of document")
	}
	return entries, nil
}

func isEntryElement(stack []string) bool {
	n := len(stack)
	if n == 0 {
		return false
	}
	switch stack[n-1] {
	case "Key":
		return true
	case "Name":
		return n >= 2 && stack[n-2] == "Blob"
	}
	return false
}

// parseHTML collects anchor href targets, reduced to their path without
// the leading slash.
func parseHTML(body []byte) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html listing: %w", err)
	}

	var entries []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					if entry := hrefEntry(attr.Val); entry != "" {
						entries = append(entries, entry)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return entries, nil
}

func hrefEntry(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "?") {
		return ""
	}
	if u, err := url.Parse(href); err == nil && u.Host != "" {
		href = u.Path
	}
	href = strings.TrimPrefix(href, "./")
	return strings.TrimLeft(href, "/")
}
