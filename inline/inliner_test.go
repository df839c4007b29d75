package inline_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"styliner/inline"
)

func transform(t *testing.T, opt inline.Options, doc string) string {
	t.Helper()
	out, err := inline.New(opt, nil).Transform(context.Background(), doc)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	return out
}

func TestTransform_BasicInlining(t *testing.T) {
	doc := `<html><head><style>p { color: red }</style></head><body><p>Hi</p></body></html>`
	out := transform(t, inline.Options{}, doc)

	if !strings.Contains(out, `<p style="color:red">Hi</p>`) {
		t.Errorf("Rule was not inlined:\n%s", out)
	}
	if strings.Contains(out, "<style>") {
		t.Errorf("Fully flattened style element must be removed:\n%s", out)
	}
}

func TestTransform_KeepStyleTags(t *testing.T) {
	doc := `<html><head><style>p { color: red }</style></head><body><p>Hi</p></body></html>`
	out := transform(t, inline.Options{KeepStyleTags: true}, doc)

	if !strings.Contains(out, `<p style="color:red">Hi</p>`) {
		t.Errorf("Rule was not inlined:\n%s", out)
	}
	if !strings.Contains(out, "<style>p { color: red }</style>") {
		t.Errorf("Style element must survive untouched:\n%s", out)
	}
}

func TestTransform_InlineStyleWins(t *testing.T) {
	doc := `<html><head><style>p { color: red; font-size: 10px }</style></head>` +
		`<body><p style="color: blue">Hi</p></body></html>`
	out := transform(t, inline.Options{}, doc)

	if !strings.Contains(out, "color:blue") {
		t.Errorf("Author's inline declaration must win:\n%s", out)
	}
	if strings.Contains(out, "color:red") {
		t.Errorf("Stylesheet declaration must lose to inline style:\n%s", out)
	}
	if !strings.Contains(out, "font-size:10px") {
		t.Errorf("Non-conflicting stylesheet declaration must survive:\n%s", out)
	}
}

func TestTransform_LaterRuleWins(t *testing.T) {
	doc := `<html><head><style>p { color: red } p { color: green }</style></head>` +
		`<body><p>Hi</p></body></html>`
	out := transform(t, inline.Options{}, doc)

	if !strings.Contains(out, `style="color:green"`) {
		t.Errorf("Later rule must override earlier one:\n%s", out)
	}
}

func TestTransform_GroupedSelectors(t *testing.T) {
	doc := `<html><head><style>h1, h2 { margin-top: 0 }</style></head>` +
		`<body><h1>a</h1><h2>b</h2></body></html>`
	out := transform(t, inline.Options{}, doc)

	if !strings.Contains(out, `<h1 style="margin-top:0">`) || !strings.Contains(out, `<h2 style="margin-top:0">`) {
		t.Errorf("Both selectors of the group must be applied:\n%s", out)
	}
}

func TestTransform_PseudoClassFlattened(t *testing.T) {
	doc := `<html><head><style>a { color: blue } a:hover { color: red }</style></head>` +
		`<body><a href="x">link</a></body></html>`
	out := transform(t, inline.Options{}, doc)

	if !strings.Contains(out, `style="{color:blue} :hover{color:red}"`) {
		t.Errorf("Pseudo-class declarations must be grouped into the style attribute:\n%s", out)
	}
}

func TestTransform_ExcludePseudoClasses(t *testing.T) {
	doc := `<html><head><style>a { color: blue } a:hover { color: red }</style></head>` +
		`<body><a href="x">link</a></body></html>`
	out := transform(t, inline.Options{ExcludePseudoClasses: true}, doc)

	if !strings.Contains(out, `style="color:blue"`) {
		t.Errorf("Plain rule must still be inlined:\n%s", out)
	}
	if !strings.Contains(out, "a:hover {color:red}") {
		t.Errorf("Pseudo-class rule must stay behind in the style element:\n%s", out)
	}
}

func TestTransform_FilterPseudoAlwaysFlattened(t *testing.T) {
	doc := `<html><head><style>p:first-child { margin-top: 0 }</style></head>` +
		`<body><p>one</p><p>two</p></body></html>`
	out := transform(t, inline.Options{ExcludePseudoClasses: true}, doc)

	if !strings.Contains(out, `<p style="margin-top:0">one</p>`) {
		t.Errorf("Filter pseudo-selector must be applied to the matching element:\n%s", out)
	}
	if strings.Contains(out, `<p style="margin-top:0">two</p>`) {
		t.Errorf("Filter pseudo-selector must not match other elements:\n%s", out)
	}
	if strings.Contains(out, "<style>") {
		t.Errorf("No rules are left over, style element must be removed:\n%s", out)
	}
}

func TestTransform_StarSelector(t *testing.T) {
	doc := `<html><head><style>* { color: red }</style></head><body><p>Hi</p></body></html>`

	out := transform(t, inline.Options{}, doc)
	if strings.Contains(out, "color:red") {
		t.Errorf("Universal selector must be ignored by default:\n%s", out)
	}

	out = transform(t, inline.Options{IncludeStarSelectors: true}, doc)
	if !strings.Contains(out, `<p style="color:red">`) {
		t.Errorf("Universal selector must be honored when requested:\n%s", out)
	}
}

func TestTransform_ShorthandExpansion(t *testing.T) {
	doc := `<html><head><style>p { margin: 1px 2px } p { margin-left: 5px }</style></head>` +
		`<body><p>Hi</p></body></html>`
	out := transform(t, inline.Options{}, doc)

	for _, want := range []string{"margin-top:1px", "margin-right:2px", "margin-bottom:1px", "margin-left:5px"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "margin-left:2px") {
		t.Errorf("Per-side override must win over expanded shorthand:\n%s", out)
	}
}

func TestTransform_PresentationalAttributes(t *testing.T) {
	doc := `<html><head><style>td { background-color: red; width: 100px; text-align: center }</style></head>` +
		`<body><table><tr><td>x</td></tr></table></body></html>`
	out := transform(t, inline.Options{}, doc)

	for _, want := range []string{`bgcolor="red"`, `width="100"`, `align="center"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected projected attribute %q in output:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "background-color:red") {
		t.Errorf("Style attribute must still carry the declarations:\n%s", out)
	}
}

func TestTransform_RemoveClasses(t *testing.T) {
	doc := `<html><head><style>.note { color: red }</style></head>` +
		`<body><p class="note">Hi</p></body></html>`

	out := transform(t, inline.Options{}, doc)
	if !strings.Contains(out, `class="note"`) {
		t.Errorf("Class attributes stay by default:\n%s", out)
	}

	out = transform(t, inline.Options{RemoveClasses: true}, doc)
	if strings.Contains(out, "class=") {
		t.Errorf("Class attributes must be removed when requested:\n%s", out)
	}
	if !strings.Contains(out, `style="color:red"`) {
		t.Errorf("Class selector must be resolved before classes are removed:\n%s", out)
	}
}

func TestTransform_BaseURL(t *testing.T) {
	doc := `<html><head></head><body>` +
		`<a href="/top.html">a</a>` +
		`<a href="#anchor">b</a>` +
		`<img src="pic.png">` +
		`</body></html>`

	out := transform(t, inline.Options{BaseURL: "https://example.com/dir/"}, doc)
	if !strings.Contains(out, `href="https://example.com/top.html"`) {
		t.Errorf("Absolute path must resolve against host:\n%s", out)
	}
	if !strings.Contains(out, `src="https://example.com/dir/pic.png"`) {
		t.Errorf("Relative path must resolve against base:\n%s", out)
	}
	if !strings.Contains(out, `href="https://example.com/dir/#anchor"`) {
		t.Errorf("Fragment links resolve too unless preservation is requested:\n%s", out)
	}

	out = transform(t, inline.Options{BaseURL: "https://example.com/dir/", PreserveInternalLinks: true}, doc)
	if !strings.Contains(out, `href="#anchor"`) {
		t.Errorf("Fragment-only links must stay untouched:\n%s", out)
	}
}

func TestTransform_InvalidBaseURL(t *testing.T) {
	_, err := inline.New(inline.Options{BaseURL: "http://["}, nil).Transform(context.Background(), "<html></html>")
	if err == nil {
		t.Fatal("Expected error for unparsable base url")
	}
}

func TestTransform_StripImportant(t *testing.T) {
	doc := `<html><head><style>p { color: red !important }</style></head><body><p>Hi</p></body></html>`

	out := transform(t, inline.Options{}, doc)
	if !strings.Contains(out, "color:red !important") {
		t.Errorf("Important marker survives by default:\n%s", out)
	}

	out = transform(t, inline.Options{StripImportant: true}, doc)
	if strings.Contains(out, "!important") {
		t.Errorf("Important markers must be stripped when requested:\n%s", out)
	}
	if !strings.Contains(out, "color:red") {
		t.Errorf("Declaration itself must survive stripping:\n%s", out)
	}
}

func TestTransform_EmptyDocument(t *testing.T) {
	for _, doc := range []string{"", "   \n\t  "} {
		_, err := inline.New(inline.Options{}, nil).Transform(context.Background(), doc)
		if err == nil {
			t.Fatalf("Expected error for empty document %q", doc)
		}
		var perr *inline.ParseError
		if !errors.As(err, &perr) {
			t.Errorf("Expected ParseError, got %T: %v", err, err)
		}
	}
}

func TestTransform_UnsupportedSelectorSkipped(t *testing.T) {
	doc := `<html><head><style>svg|circle { color: red } p { font-size: 10px }</style></head>` +
		`<body><p>Hi</p></body></html>`
	out := transform(t, inline.Options{}, doc)

	if !strings.Contains(out, `style="font-size:10px"`) {
		t.Errorf("Good rule must be applied even when another selector is unsupported:\n%s", out)
	}
}

type stubFetcher map[string][]byte

func (s stubFetcher) Fetch(_ context.Context, location string) ([]byte, error) {
	data, ok := s[location]
	if !ok {
		return nil, &inline.FetchError{Location: location, Err: errors.New("not found")}
	}
	return data, nil
}

func TestTransform_ExternalStyles(t *testing.T) {
	doc := `<html><head><style>p { color: red }</style></head><body><p>Hi</p></body></html>`

	in := inline.New(inline.Options{ExternalStyles: []string{"extra.css", "more.css"}}, nil)
	in.Fetcher = stubFetcher{
		"extra.css": []byte(`p { color: green }`),
		"more.css":  []byte(`p { font-weight: bold }`),
	}

	out, err := in.Transform(context.Background(), doc)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if !strings.Contains(out, "color:green") {
		t.Errorf("External stylesheet must be applied after document styles:\n%s", out)
	}
	if strings.Contains(out, "color:red") {
		t.Errorf("External stylesheet declaration must win over earlier document rule:\n%s", out)
	}
	if !strings.Contains(out, "font-weight:bold") {
		t.Errorf("Every configured stylesheet must be applied:\n%s", out)
	}
}

func TestTransform_ExternalStylesFetchError(t *testing.T) {
	in := inline.New(inline.Options{ExternalStyles: []string{"missing.css"}}, nil)
	in.Fetcher = stubFetcher{}

	_, err := in.Transform(context.Background(), "<html><body><p>Hi</p></body></html>")
	if err == nil {
		t.Fatal("Expected error when external stylesheet cannot be fetched")
	}
	var ferr *inline.FetchError
	if !errors.As(err, &ferr) {
		t.Errorf("Expected FetchError, got %T: %v", err, err)
	}
}

func TestTransform_PrettyPrint(t *testing.T) {
	doc := `<html><head><style>p { color: red }</style></head><body><div><p>Hi</p></div></body></html>`
	out := transform(t, inline.Options{PrettyPrint: true}, doc)

	if !strings.Contains(out, "\n  <body>\n") {
		t.Errorf("Expected indented body element:\n%s", out)
	}
	if !strings.Contains(out, `<p style="color:red">Hi</p>`) {
		t.Errorf("Inlined content must survive pretty printing:\n%s", out)
	}
}

func TestTransform_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := inline.New(inline.Options{ExternalStyles: []string{"extra.css"}}, nil)
	in.Fetcher = stubFetcher{"extra.css": []byte("p { color: red }")}

	_, err := in.Transform(ctx, "<html><body><p>Hi</p></body></html>")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestTransform_Reuse(t *testing.T) {
	in := inline.New(inline.Options{}, nil)
	for i := 0; i < 3; i++ {
		doc := fmt.Sprintf(`<html><head><style>p { color: red }</style></head><body><p>doc %d</p></body></html>`, i)
		out, err := in.Transform(context.Background(), doc)
		if err != nil {
			t.Fatalf("Transform() #%d error = %v", i, err)
		}
		if !strings.Contains(out, `<p style="color:red">`) {
			t.Errorf("Transform() #%d did not inline:\n%s", i, out)
		}
	}
}
