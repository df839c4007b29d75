package inline

import (
	"strings"

	"golang.org/x/net/html"
)

// presentationalAttrs maps resolved style properties onto the legacy HTML
// attributes ancient renderers understand.
var presentationalAttrs = map[string]string{
	"text-align":       "align",
	"background-color": "bgcolor",
	"width":            "width",
	"height":           "height",
}

// applyStyleAttributes projects a small fixed set of properties of the
// merged style text onto legacy presentational attributes of the element.
// Only the unconditional group is considered. Existing attributes are left
// untouched unless force is set. Unknown properties are ignored.
func applyStyleAttributes(n *html.Node, styleText string, force bool) {
	// grouped style text, only the leading unconditional group applies
	if strings.Contains(styleText, "}") {
		styleText = strings.TrimPrefix(strings.SplitN(styleText, "}", 2)[0], "{")
	}

	for seg := range strings.SplitSeq(styleText, ";") {
		prop, value, found := strings.Cut(seg, ":")
		if !found || strings.Contains(value, ":") {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)

		attr, known := presentationalAttrs[prop]
		if !known {
			continue
		}
		if prop == "width" || prop == "height" {
			value = strings.TrimSuffix(value, "px")
		}
		if _, exists := getAttr(n, attr); exists && !force {
			continue
		}
		setAttr(n, attr, value)
	}
}
