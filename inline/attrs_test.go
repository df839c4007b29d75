package inline

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parseFragment(t *testing.T, fragment string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		t.Fatalf("parse fragment: %v", err)
	}
	var target *html.Node
	walkElements(doc, func(n *html.Node) {
		if target == nil && n.Data == "td" {
			target = n
		}
	})
	if target == nil {
		t.Fatal("fragment has no td element")
	}
	return target
}

func TestApplyStyleAttributes(t *testing.T) {
	n := parseFragment(t, `<table><tr><td>x</td></tr></table>`)

	applyStyleAttributes(n, "background-color:red; width:120px; height:40px; text-align:center; color:green", true)

	want := map[string]string{
		"bgcolor": "red",
		"width":   "120",
		"height":  "40",
		"align":   "center",
	}
	for attr, value := range want {
		got, ok := getAttr(n, attr)
		if !ok {
			t.Errorf("Attribute %s not set", attr)
			continue
		}
		if got != value {
			t.Errorf("Attribute %s = %q, want %q", attr, got, value)
		}
	}
	if _, ok := getAttr(n, "color"); ok {
		t.Error("Unmapped property must not produce an attribute")
	}
}

func TestApplyStyleAttributes_GroupedStyleText(t *testing.T) {
	n := parseFragment(t, `<table><tr><td>x</td></tr></table>`)

	// only the unconditional group applies
	applyStyleAttributes(n, "{width:50px} :hover{width:90px}", true)

	if got, _ := getAttr(n, "width"); got != "50" {
		t.Errorf("width = %q, want 50", got)
	}
}

func TestApplyStyleAttributes_Force(t *testing.T) {
	n := parseFragment(t, `<table><tr><td width="10">x</td></tr></table>`)

	applyStyleAttributes(n, "width:20px", false)
	if got, _ := getAttr(n, "width"); got != "10" {
		t.Errorf("width = %q, existing attribute must survive without force", got)
	}

	applyStyleAttributes(n, "width:20px", true)
	if got, _ := getAttr(n, "width"); got != "20" {
		t.Errorf("width = %q, force must overwrite", got)
	}
}

func TestApplyStyleAttributes_SkipsUrlValues(t *testing.T) {
	n := parseFragment(t, `<table><tr><td>x</td></tr></table>`)

	// the second ':' marks a value the legacy attributes cannot represent
	applyStyleAttributes(n, "width:calc(100px); background-color:url(http://example.com/i.png)", true)

	if _, ok := getAttr(n, "bgcolor"); ok {
		t.Error("Value with embedded ':' must be skipped")
	}
}
