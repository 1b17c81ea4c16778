package docsource

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	reBlankRun = regexp.MustCompile(`\n{3,}`)
	reSpaceRun = regexp.MustCompile(`\s+`)
)

var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "tr": true, "table": true, "section": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "footer": true, "article": true, "ul": true, "ol": true, "dl": true, "dt": true, "dd": true,
}

// htmlText keeps the line structure of an HTML page: block elements end a
// line, table cells are tab separated, and mailto: links expose their address.
func htmlText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript, template").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	var b strings.Builder
	walk(root, &b)

	lines := strings.Split(b.String(), "\n")
	for i, ln := range lines {
		cells := strings.Split(ln, "\t")
		for j, c := range cells {
			cells[j] = strings.Join(strings.Fields(c), " ")
		}
		lines[i] = strings.Trim(strings.Join(cells, "\t"), "\t")
	}
	out := reBlankRun.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.Trim(out, "\n"), nil
}

func walk(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		switch {
		case name == "#text":
			b.WriteString(reSpaceRun.ReplaceAllString(s.Text(), " "))
		case name == "br":
			b.WriteByte('\n')
		case name == "td" || name == "th":
			walk(s, b)
			b.WriteByte('\t')
		case name == "a":
			href, _ := s.Attr("href")
			text := strings.TrimSpace(s.Text())
			if addr, ok := strings.CutPrefix(href, "mailto:"); ok && !strings.Contains(text, "@") {
				walk(s, b)
				b.WriteString(" " + addr)
				return
			}
			walk(s, b)
		case blockTags[name]:
			b.WriteByte('\n')
			walk(s, b)
			b.WriteByte('\n')
		default:
			walk(s, b)
		}
	})
}
