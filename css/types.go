// Package css implements the style-resolution core of the inliner: rule
// extraction from stylesheet text, spacing shorthand expansion and the
// pseudo-class aware merge of declaration sets.
package css

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// PseudoKey identifies which dynamic element state a declaration block
// applies to: the empty key is the element's unconditional state, anything
// else is a pseudo-class suffix such as ":hover" or ":visited".
type PseudoKey string

// Unconditional is the pseudo key of an element's static state.
const Unconditional PseudoKey = ""

// filterPseudoSelectors narrow which elements a selector matches instead of
// describing dynamic state; they are matched against elements directly and
// never become a PseudoKey.
var filterPseudoSelectors = []string{":first-child", ":last-child"}

// IsFilterPseudo reports whether the pseudo suffix (":first-child" form,
// leading colon included) restricts matching rather than describing state.
// Any nth-child variant counts as a filter.
func IsFilterPseudo(suffix string) bool {
	if strings.Contains(suffix, "nth-child") {
		return true
	}
	for _, f := range filterPseudoSelectors {
		if suffix == f {
			return true
		}
	}
	return false
}

// SplitPseudoSuffix splits a selector into the part usable for element
// matching and its pseudo-class suffix. Filter pseudo-selectors stay attached
// to the matchable selector and yield the unconditional key.
func SplitPseudoSuffix(selector string) (string, PseudoKey) {
	matchable, rest, found := strings.Cut(selector, ":")
	if !found {
		return selector, Unconditional
	}
	suffix := ":" + rest
	if IsFilterPseudo(suffix) {
		return selector, Unconditional
	}
	return matchable, PseudoKey(suffix)
}

// DeclarationError reports a CSS declaration without the "property:value"
// separator. It is fatal for the transform which encountered it.
type DeclarationError struct {
	Declaration string
}

func (e *DeclarationError) Error() string {
	return fmt.Sprintf("css: declaration %q is missing ':' separator", e.Declaration)
}

// Declaration is a single property name/value pair. Property names are
// lower-cased, values keep their original casing.
type Declaration struct {
	Property string
	Value    string
}

// DeclarationBlock is a property to value mapping which remembers insertion
// order so serialized output stays deterministic. Within one block the last
// write for a property wins.
type DeclarationBlock struct {
	order []string
	props map[string]string
}

// NewDeclarationBlock creates an empty declaration block.
func NewDeclarationBlock() *DeclarationBlock {
	return &DeclarationBlock{props: make(map[string]string)}
}

// ParseDeclarations parses "prop:value; prop:value" text into a block.
// Empty segments are skipped, a segment without ':' is a DeclarationError.
func ParseDeclarations(text string) (*DeclarationBlock, error) {
	b := NewDeclarationBlock()
	for seg := range strings.SplitSeq(text, ";") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		prop, value, found := strings.Cut(seg, ":")
		if !found {
			return nil, &DeclarationError{Declaration: seg}
		}
		b.Set(strings.ToLower(strings.TrimSpace(prop)), strings.TrimSpace(value))
	}
	return b, nil
}

// Set records a property value, overwriting a previous one in place.
func (b *DeclarationBlock) Set(property, value string) {
	if _, exists := b.props[property]; !exists {
		b.order = append(b.order, property)
	}
	b.props[property] = value
}

// Get returns the value recorded for a property.
func (b *DeclarationBlock) Get(property string) (string, bool) {
	v, ok := b.props[property]
	return v, ok
}

// Has reports whether the block holds the property.
func (b *DeclarationBlock) Has(property string) bool {
	_, ok := b.props[property]
	return ok
}

// Len returns the number of declarations in the block.
func (b *DeclarationBlock) Len() int {
	return len(b.order)
}

// Declarations returns the block contents in insertion order.
func (b *DeclarationBlock) Declarations() []Declaration {
	decls := make([]Declaration, 0, len(b.order))
	for _, p := range b.order {
		decls = append(decls, Declaration{Property: p, Value: b.props[p]})
	}
	return decls
}

// Clone returns an independent copy of the block.
func (b *DeclarationBlock) Clone() *DeclarationBlock {
	c := NewDeclarationBlock()
	for _, p := range b.order {
		c.Set(p, b.props[p])
	}
	return c
}

// String serializes the block as "prop:value; prop:value".
func (b *DeclarationBlock) String() string {
	var sb strings.Builder
	for i, p := range b.order {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(p)
		sb.WriteByte(':')
		sb.WriteString(b.props[p])
	}
	return sb.String()
}

// Rule is a single flattenable stylesheet rule: a selector and the
// normalized declaration text of its block. Source order of rules is
// significant and preserved end to end.
type Rule struct {
	Selector     string
	Declarations string
}

// String returns the literal CSS form of the rule.
func (r Rule) String() string {
	return r.Selector + " {" + r.Declarations + "}"
}

// groupingPattern recognizes the boundary encoding of a multi-state style:
// plain declarations interleaved with "key{declarations}" groups.
var groupingPattern = regexp.MustCompile(`([:\-\w]*){([^}]+)}`)

// StyleGroup is an element's fully merged style: one declaration block per
// pseudo state. The textual "{decl} :key{decl}" form exists only at the
// boundary, all manipulation happens on the mapping.
type StyleGroup struct {
	order  []PseudoKey
	groups map[PseudoKey]*DeclarationBlock
}

// NewStyleGroup creates an empty style group.
func NewStyleGroup() *StyleGroup {
	return &StyleGroup{groups: make(map[PseudoKey]*DeclarationBlock)}
}

// ParseStyleGroup parses serialized style text. Text containing the grouped
// "key{...}" pattern is split into per-key blocks (an empty key token is the
// unconditional group), anything else is one unconditional block.
func ParseStyleGroup(text string) (*StyleGroup, error) {
	g := NewStyleGroup()

	matches := groupingPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		block, err := ParseDeclarations(text)
		if err != nil {
			return nil, err
		}
		g.Set(Unconditional, block)
		return g, nil
	}
	for _, m := range matches {
		block, err := ParseDeclarations(m[2])
		if err != nil {
			return nil, err
		}
		g.Set(PseudoKey(m[1]), block)
	}
	return g, nil
}

// Block returns the declaration block stored under key.
func (g *StyleGroup) Block(key PseudoKey) (*DeclarationBlock, bool) {
	b, ok := g.groups[key]
	return b, ok
}

// Set stores a declaration block under key, replacing a previous one.
func (g *StyleGroup) Set(key PseudoKey, block *DeclarationBlock) {
	if _, exists := g.groups[key]; !exists {
		g.order = append(g.order, key)
	}
	g.groups[key] = block
}

// Len returns the number of pseudo states present.
func (g *StyleGroup) Len() int {
	return len(g.order)
}

// String serializes the group. A single state is emitted as plain
// declaration text. Multiple states are emitted as space-joined "key{...}"
// groups ordered by ascending count of ':' in the key, so the unconditional
// group always sorts first. The colon-count order is kept for compatibility
// with the historic behavior and is implementation-defined, not a CSS rule.
// Empty groups are omitted.
func (g *StyleGroup) String() string {
	if len(g.order) == 1 {
		return g.groups[g.order[0]].String()
	}

	keys := make([]PseudoKey, len(g.order))
	copy(keys, g.order)
	sort.SliceStable(keys, func(i, j int) bool {
		return strings.Count(string(keys[i]), ":") < strings.Count(string(keys[j]), ":")
	})

	var parts []string
	for _, key := range keys {
		block := g.groups[key]
		if block.Len() == 0 {
			continue
		}
		parts = append(parts, string(key)+"{"+block.String()+"}")
	}
	return strings.Join(parts, " ")
}
