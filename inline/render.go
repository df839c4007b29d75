package inline

import (
	"strings"

	"golang.org/x/net/html"
)

// render serializes the document, preserving the doctype only when the
// input carried one (the parser never invents a doctype node).
func (in *Inliner) render(doc *html.Node) (string, error) {
	var sb strings.Builder
	if in.opt.PrettyPrint {
		if err := renderIndented(&sb, doc, 0); err != nil {
			return "", err
		}
		return sb.String(), nil
	}
	if err := html.Render(&sb, doc); err != nil {
		return "", err
	}
	return sb.String(), nil
}

const indentUnit = "  "

// renderIndented writes a node tree with structural elements on their own
// indented lines. Elements with mixed or textual content are serialized
// verbatim so that significant whitespace is never altered.
func renderIndented(sb *strings.Builder, n *html.Node, depth int) error {
	switch n.Type {
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := renderIndented(sb, c, depth); err != nil {
				return err
			}
		}
		return nil

	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		sb.WriteString(strings.Repeat(indentUnit, depth))
		sb.WriteString(strings.TrimSpace(n.Data))
		sb.WriteByte('\n')
		return nil

	case html.ElementNode:
		if !hasStructuralContent(n) {
			sb.WriteString(strings.Repeat(indentUnit, depth))
			if err := html.Render(sb, n); err != nil {
				return err
			}
			sb.WriteByte('\n')
			return nil
		}

		sb.WriteString(strings.Repeat(indentUnit, depth))
		writeOpenTag(sb, n)
		sb.WriteByte('\n')
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := renderIndented(sb, c, depth+1); err != nil {
				return err
			}
		}
		sb.WriteString(strings.Repeat(indentUnit, depth))
		sb.WriteString("</")
		sb.WriteString(n.Data)
		sb.WriteString(">\n")
		return nil

	default:
		// doctype, comments
		if err := html.Render(sb, n); err != nil {
			return err
		}
		sb.WriteByte('\n')
		return nil
	}
}

// hasStructuralContent reports whether all children of an element are
// elements, comments or ignorable whitespace, in which case the element can
// be broken across lines safely.
func hasStructuralContent(n *html.Node) bool {
	if n.FirstChild == nil {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode, html.CommentNode:
			// fine
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func writeOpenTag(sb *strings.Builder, n *html.Node) {
	sb.WriteByte('<')
	sb.WriteString(n.Data)
	for _, a := range n.Attr {
		sb.WriteByte(' ')
		sb.WriteString(a.Key)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(a.Val))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
}
