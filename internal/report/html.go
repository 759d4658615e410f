package report

import (
	"io"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/JohnDeved/dfmon/internal/disk"
	"github.com/JohnDeved/dfmon/internal/theme"
	"github.com/JohnDeved/dfmon/internal/util"
)

const pageStyle = `body { font-family: monospace; background: #1f2937; color: #d1d5db; }
table { border-collapse: collapse; }
th, td { padding: 2px 8px; text-align: left; }
td.num { text-align: right; }
tr.total td { opacity: 0.7; }`

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// HTML writes a standalone HTML page with the usage table.
func HTML(w io.Writer, mounts []disk.Mount, opts Options, generated time.Time) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html, attr("lang", "en"))
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	title := element(atom.Title)
	title.AppendChild(text("dfmon report"))
	head.AppendChild(title)
	style := element(atom.Style)
	style.AppendChild(text(pageStyle))
	head.AppendChild(style)
	root.AppendChild(head)

	body := element(atom.Body)
	h1 := element(atom.H1)
	h1.AppendChild(text("Filesystem usage"))
	body.AppendChild(h1)
	p := element(atom.P)
	p.AppendChild(text("Generated " + generated.Format(time.RFC1123)))
	body.AppendChild(p)
	body.AppendChild(htmlTable(mounts, opts))
	root.AppendChild(body)

	return html.Render(w, doc)
}

func htmlTable(mounts []disk.Mount, opts Options) *html.Node {
	table := element(atom.Table)

	thead := element(atom.Thead)
	tr := element(atom.Tr)
	for _, h := range opts.headings() {
		th := element(atom.Th)
		th.AppendChild(text(h))
		tr.AppendChild(th)
	}
	thead.AppendChild(tr)
	table.AppendChild(thead)

	tbody := element(atom.Tbody)
	rows := opts.rows(mounts)
	total := disk.Total(mounts)
	for i, r := range rows {
		tr := element(atom.Tr)
		if opts.Total && i == len(rows)-1 {
			tr.Attr = append(tr.Attr, attr("class", "total"))
		}
		m := &total
		if i < len(mounts) {
			m = &mounts[i]
		}
		for col, cell := range r {
			td := element(atom.Td)
			switch {
			case col == barColumn:
				td.AppendChild(htmlBar(m, opts))
			case rightAligned[col]:
				td.Attr = append(td.Attr, attr("class", "num"))
				td.AppendChild(text(cell))
			default:
				td.AppendChild(text(cell))
			}
			tr.AppendChild(td)
		}
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)
	return table
}

// htmlBar mirrors util.Bar with colored spans.
func htmlBar(m *disk.Mount, opts Options) *html.Node {
	pct := m.UsedPercent()
	if opts.Inodes {
		pct = m.InodesPercent()
	}
	t := opts.Theme
	width := max(opts.BarWidth, 0)
	low, medium, high := util.Bands(width, pct, t)

	empty := theme.SlotLow
	if pct == nil {
		empty = theme.SlotVoid
	}

	bar := element(atom.Span, attr("class", "bar"))
	bar.AppendChild(text(t.CharBarOpen))
	for _, band := range []struct {
		slot  theme.Slot
		glyph string
		n     int
	}{
		{theme.SlotLow, t.CharBarFilled, low},
		{theme.SlotMedium, t.CharBarFilled, medium},
		{theme.SlotHigh, t.CharBarFilled, high},
		{empty, t.CharBarEmpty, width - low - medium - high},
	} {
		if band.n <= 0 {
			continue
		}
		span := element(atom.Span, attr("class", "band-"+band.slot.String()))
		if c := theme.CSSColor(t.Color(band.slot)); c != "" {
			span.Attr = append(span.Attr, attr("style", "color: "+c))
		}
		span.AppendChild(text(strings.Repeat(band.glyph, band.n)))
		bar.AppendChild(span)
	}
	bar.AppendChild(text(t.CharBarClose))
	return bar
}
