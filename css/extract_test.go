package css_test

import (
	"testing"

	"go.uber.org/zap"

	"styliner/css"
)

func extract(t *testing.T, opt css.ExtractorOptions, input string) (rules, leftover []css.Rule) {
	t.Helper()
	e := css.NewExtractor(opt, zap.NewNop())
	return e.Extract([]byte(input))
}

func TestExtract_SimpleRule(t *testing.T) {
	rules, leftover := extract(t, css.ExtractorOptions{}, `h1 { color:red; }`)

	if len(leftover) != 0 {
		t.Fatalf("expected no leftover, got %d", len(leftover))
	}
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if rules[0].Selector != "h1" {
		t.Errorf("expected selector 'h1', got %q", rules[0].Selector)
	}
	if rules[0].Declarations != "color:red" {
		t.Errorf("expected declarations 'color:red', got %q", rules[0].Declarations)
	}
}

func TestExtract_NormalizesWhitespace(t *testing.T) {
	rules, _ := extract(t, css.ExtractorOptions{}, "p {\n\tfont-size :  2px ;\n\tmargin : 1px   2px ;\n}")

	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	want := "font-size:2px; margin:1px 2px"
	if rules[0].Declarations != want {
		t.Errorf("expected %q, got %q", want, rules[0].Declarations)
	}
}

func TestExtract_GroupedSelectors(t *testing.T) {
	rules, _ := extract(t, css.ExtractorOptions{}, `h1, h2, .footer { color:red }`)

	if len(rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(rules))
	}
	want := []string{"h1", "h2", ".footer"}
	for i, sel := range want {
		if rules[i].Selector != sel {
			t.Errorf("rule %d: expected selector %q, got %q", i, sel, rules[i].Selector)
		}
		if rules[i].Declarations != "color:red" {
			t.Errorf("rule %d: expected declarations to be shared, got %q", i, rules[i].Declarations)
		}
	}
}

func TestExtract_CommentsStripped(t *testing.T) {
	rules, _ := extract(t, css.ExtractorOptions{}, "/* heading */\nh1 { /* red */ color:red }")

	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if rules[0].Declarations != "color:red" {
		t.Errorf("expected comments to be stripped, got %q", rules[0].Declarations)
	}
}

func TestExtract_AtRulesSkipped(t *testing.T) {
	input := `@import url("other.css");
@media screen { p { color:green } }
h1 { color:red }`

	rules, leftover := extract(t, css.ExtractorOptions{}, input)

	if len(leftover) != 0 {
		t.Fatalf("expected no leftover, got %d", len(leftover))
	}
	if len(rules) != 1 || rules[0].Selector != "h1" {
		t.Fatalf("expected only the h1 rule, got %+v", rules)
	}
}

func TestExtract_PseudoClassesExcluded(t *testing.T) {
	input := `a:hover { color:blue }
a { color:red }
p:first-child { color:green }`

	rules, leftover := extract(t, css.ExtractorOptions{ExcludePseudoClasses: true}, input)

	if len(leftover) != 1 {
		t.Fatalf("expected 1 leftover, got %d", len(leftover))
	}
	if leftover[0].Selector != "a:hover" {
		t.Errorf("expected 'a:hover' leftover, got %q", leftover[0].Selector)
	}

	// filter pseudo-selectors always stay flattenable
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[1].Selector != "p:first-child" {
		t.Errorf("expected 'p:first-child' to be flattenable, got %q", rules[1].Selector)
	}
}

func TestExtract_PseudoClassesFlattenedByDefault(t *testing.T) {
	rules, leftover := extract(t, css.ExtractorOptions{}, `a:hover { color:blue }`)

	if len(leftover) != 0 {
		t.Fatalf("expected no leftover without exclusion, got %d", len(leftover))
	}
	if len(rules) != 1 || rules[0].Selector != "a:hover" {
		t.Fatalf("expected a:hover rule, got %+v", rules)
	}
}

func TestExtract_StarSelector(t *testing.T) {
	rules, _ := extract(t, css.ExtractorOptions{}, `* { margin:0 }`)
	if len(rules) != 0 {
		t.Fatalf("expected star selector to be dropped, got %+v", rules)
	}

	rules, _ = extract(t, css.ExtractorOptions{IncludeStarSelectors: true}, `* { margin:0 }`)
	if len(rules) != 1 || rules[0].Selector != "*" {
		t.Fatalf("expected star selector to be honored, got %+v", rules)
	}
}

func TestExtract_OrderPreserved(t *testing.T) {
	input := `p { font-size:2px }
p.footer { font-size:1px }
strong { text-decoration:none }`

	rules, _ := extract(t, css.ExtractorOptions{}, input)

	if len(rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(rules))
	}
	want := []string{"p", "p.footer", "strong"}
	for i, sel := range want {
		if rules[i].Selector != sel {
			t.Errorf("rule %d: expected %q, got %q", i, sel, rules[i].Selector)
		}
	}
}

func TestExtract_ImportantKept(t *testing.T) {
	rules, _ := extract(t, css.ExtractorOptions{}, `p { color:red !important }`)

	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if rules[0].Declarations != "color:red !important" {
		t.Errorf("expected !important to survive extraction, got %q", rules[0].Declarations)
	}
}
