package css

import "strings"

// spacingSides is the longhand expansion order mandated by CSS shorthand
// rules: top, right, bottom, left.
var spacingSides = [4]string{"-top", "-right", "-bottom", "-left"}

// ExpandSpacing returns a new rule sequence where every margin or padding
// shorthand declaration is replaced by its four longhand declarations, so
// later per-side overrides merge correctly. All other declarations pass
// through unchanged in their original relative order. A declaration without
// the ':' separator is a DeclarationError.
func ExpandSpacing(rules []Rule) ([]Rule, error) {
	out := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		expanded, err := expandSpacingDeclarations(rule.Declarations)
		if err != nil {
			return nil, err
		}
		out = append(out, Rule{Selector: rule.Selector, Declarations: expanded})
	}
	return out, nil
}

func expandSpacingDeclarations(text string) (string, error) {
	var parts []string
	for seg := range strings.SplitSeq(text, ";") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		prop, value, found := strings.Cut(seg, ":")
		if !found {
			return "", &DeclarationError{Declaration: seg}
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop != "margin" && prop != "padding" {
			parts = append(parts, seg)
			continue
		}

		top, right, bottom, left, ok := spreadSpacingValues(strings.Fields(value))
		if !ok {
			// not a 1..4 value shorthand, leave it alone
			parts = append(parts, seg)
			continue
		}
		parts = append(parts,
			prop+spacingSides[0]+":"+top,
			prop+spacingSides[1]+":"+right,
			prop+spacingSides[2]+":"+bottom,
			prop+spacingSides[3]+":"+left)
	}
	return strings.Join(parts, "; "), nil
}

// spreadSpacingValues applies the 1/2/3/4 value spreading rules of CSS
// spacing shorthands.
func spreadSpacingValues(values []string) (top, right, bottom, left string, ok bool) {
	switch len(values) {
	case 1:
		return values[0], values[0], values[0], values[0], true
	case 2:
		return values[0], values[1], values[0], values[1], true
	case 3:
		return values[0], values[1], values[2], values[1], true
	case 4:
		return values[0], values[1], values[2], values[3], true
	default:
		return "", "", "", "", false
	}
}
