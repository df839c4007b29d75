// Package inline flattens stylesheet rules of an HTML document into
// per-element style attributes so that renderers without stylesheet support,
// email clients above all, show the page as intended.
package inline

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"styliner/config"
	"styliner/css"
)

// ParseError reports an input document the DOM collaborator could not
// produce a usable root element from.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unable to parse html: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("unable to parse html: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Options control one transform. Zero value flattens everything it can and
// leaves the document otherwise untouched.
type Options struct {
	// BaseURL resolves href/src attributes when set.
	BaseURL string
	// PreserveInternalLinks skips rewriting fragment-only href values.
	PreserveInternalLinks bool
	// ExcludePseudoClasses moves non-filter pseudo-class selectors to a
	// residual style block instead of flattening them.
	ExcludePseudoClasses bool
	// KeepStyleTags retains style elements whose rules were all flattened.
	KeepStyleTags bool
	// IncludeStarSelectors honors the universal selector.
	IncludeStarSelectors bool
	// RemoveClasses strips class attributes after inlining.
	RemoveClasses bool
	// StripImportant removes "!important" markers from the final output.
	StripImportant bool
	// PrettyPrint re-indents the serialized document.
	PrettyPrint bool
	// ExternalStyles is the ordered list of stylesheet URLs or paths applied
	// after the document's own style blocks.
	ExternalStyles []string
	// ForceStylesCharset is an IANA character set name forced on fetched
	// stylesheets.
	ForceStylesCharset string
}

// OptionsFromConfig maps the document section of the configuration onto
// transform options.
func OptionsFromConfig(cfg *config.DocumentConfig) Options {
	return Options{
		BaseURL:               cfg.BaseURL,
		PreserveInternalLinks: cfg.PreserveInternalLinks,
		ExcludePseudoClasses:  cfg.ExcludePseudoclasses,
		KeepStyleTags:         cfg.KeepStyleTags,
		IncludeStarSelectors:  cfg.IncludeStarSelectors,
		RemoveClasses:         cfg.RemoveClasses,
		StripImportant:        cfg.StripImportant,
		PrettyPrint:           cfg.PrettyPrint,
		ExternalStyles:        cfg.ExternalStyles,
		ForceStylesCharset:    cfg.ForceStylesCharset,
	}
}

// importantPattern strips "!important" annotations from serialized output.
var importantPattern = regexp.MustCompile(`\s*!important`)

// Inliner drives the style-resolution pipeline over one document at a time.
// It holds no per-document state, only configuration and compiled parsers,
// and may be reused sequentially.
type Inliner struct {
	// Fetcher retrieves external stylesheets; replaceable for testing.
	Fetcher Fetcher
	// Queryer matches selectors against the document; replaceable for
	// testing.
	Queryer Queryer

	opt Options
	ext *css.Extractor
	log *zap.Logger
}

// New creates an inliner with the default fetching and selector-query
// collaborators.
func New(opt Options, log *zap.Logger) *Inliner {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("inline")
	return &Inliner{
		Fetcher: NewStyleFetcher(opt.ForceStylesCharset, log),
		Queryer: NewQueryer(),
		opt:     opt,
		ext: css.NewExtractor(css.ExtractorOptions{
			ExcludePseudoClasses: opt.ExcludePseudoClasses,
			IncludeStarSelectors: opt.IncludeStarSelectors,
		}, log),
		log: log,
	}
}

// firstTouch is the per-element bookkeeping of the two-phase merge: the
// original inline style is snapshotted the first time any rule touches the
// element and re-applied during the restoration pass, so the page author's
// explicit declarations win over everything CSS-derived.
type firstTouch struct {
	node   *html.Node
	inline string
}

// Transform turns stylesheet rules embedded in or referenced by the document
// into per-element style attributes and returns the serialized result.
// Either a fully inlined document is produced or the call fails, there is no
// partial output.
func (in *Inliner) Transform(ctx context.Context, document string) (string, error) {
	var base *url.URL
	if in.opt.BaseURL != "" {
		var err error
		if base, err = url.Parse(in.opt.BaseURL); err != nil {
			return "", fmt.Errorf("invalid base url %q: %w", in.opt.BaseURL, err)
		}
	}

	document = strings.TrimSpace(document)
	if document == "" {
		return "", &ParseError{Reason: "document is empty"}
	}

	doc, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return "", &ParseError{Reason: "malformed document", Err: err}
	}
	if firstElement(doc) == nil {
		return "", &ParseError{Reason: "document has no root element"}
	}

	rules, err := in.collectRules(ctx, doc)
	if err != nil {
		return "", err
	}
	if rules, err = css.ExpandSpacing(rules); err != nil {
		return "", err
	}

	states, lastKey, err := in.applyRules(doc, rules)
	if err != nil {
		return "", err
	}
	if err := in.restoreInlineStyles(states, lastKey); err != nil {
		return "", err
	}

	if in.opt.RemoveClasses {
		walkElements(doc, func(n *html.Node) { removeAttr(n, "class") })
	}
	if base != nil {
		in.resolveURLs(doc, base)
	}

	out, err := in.render(doc)
	if err != nil {
		return "", err
	}
	if in.opt.StripImportant {
		out = importantPattern.ReplaceAllString(out, "")
	}
	return out, nil
}

// collectRules gathers flattenable rules from the document's style elements
// and the configured external stylesheets, in that order. Style elements are
// shrunk to their leftover pseudo-class rules or removed outright per
// configuration.
func (in *Inliner) collectRules(ctx context.Context, doc *html.Node) ([]css.Rule, error) {
	var rules []css.Rule

	styleNodes, err := in.Queryer.Query(doc, "style")
	if err != nil {
		return nil, err
	}
	for _, style := range styleNodes {
		these, leftover := in.ext.Extract([]byte(nodeText(style)), "style element")
		rules = append(rules, these...)

		if len(leftover) > 0 {
			var lines []string
			for _, r := range leftover {
				lines = append(lines, r.String())
			}
			setNodeText(style, strings.Join(lines, "\n"))
		} else if !in.opt.KeepStyleTags {
			removeNode(style)
		}
	}

	for _, location := range in.opt.ExternalStyles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := in.Fetcher.Fetch(ctx, location)
		if err != nil {
			return nil, err
		}
		these, leftover := in.ext.Extract(data, location)
		rules = append(rules, these...)
		if len(leftover) > 0 {
			// external stylesheets have no style element to shrink into
			in.log.Debug("Discarding pseudo-class rules of external stylesheet",
				zap.String("location", location), zap.Int("rules", len(leftover)))
		}
	}

	in.log.Debug("Collected rules", zap.Int("count", len(rules)))
	return rules, nil
}

// applyRules runs the first phase of the merge over every rule in order,
// tracking first-touch state per element. It returns the touched elements in
// first-touch order together with the pseudo key of the last rule seen,
// which the restoration pass reuses.
func (in *Inliner) applyRules(doc *html.Node, rules []css.Rule) ([]firstTouch, css.PseudoKey, error) {
	var (
		states  []firstTouch
		seen    = make(map[*html.Node]bool)
		lastKey = css.Unconditional
	)

	for _, rule := range rules {
		matchable, pseudo := css.SplitPseudoSuffix(rule.Selector)
		lastKey = pseudo

		nodes, err := in.Queryer.Query(doc, matchable)
		if err != nil {
			in.log.Warn("Skipping unsupported selector", zap.String("selector", matchable), zap.Error(err))
			continue
		}

		for _, n := range nodes {
			old, _ := getAttr(n, "style")
			if !seen[n] {
				seen[n] = true
				states = append(states, firstTouch{node: n, inline: old})
			}
			merged, err := css.Merge(old, rule.Declarations, pseudo)
			if err != nil {
				return nil, lastKey, err
			}
			setAttr(n, "style", merged)
			applyStyleAttributes(n, merged, true)
		}
	}
	return states, lastKey, nil
}

// restoreInlineStyles is the second phase: the original inline style of
// every touched element is merged back on top of the accumulated style, so
// author declarations win for the unconditional group while leftover
// pseudo-class groups stay attached.
func (in *Inliner) restoreInlineStyles(states []firstTouch, lastKey css.PseudoKey) error {
	for _, st := range states {
		if st.inline == "" {
			continue
		}
		current, _ := getAttr(st.node, "style")
		merged, err := css.Merge(current, st.inline, lastKey)
		if err != nil {
			return err
		}
		setAttr(st.node, "style", merged)
		applyStyleAttributes(st.node, merged, true)
	}
	return nil
}

// resolveURLs rewrites href and src attributes against the base URL.
// Fragment-only href values are kept when internal link preservation is
// configured.
func (in *Inliner) resolveURLs(doc *html.Node, base *url.URL) {
	walkElements(doc, func(n *html.Node) {
		for _, attr := range [2]string{"href", "src"} {
			val, ok := getAttr(n, attr)
			if !ok {
				continue
			}
			if attr == "href" && in.opt.PreserveInternalLinks && strings.HasPrefix(val, "#") {
				continue
			}
			ref, err := url.Parse(strings.TrimSpace(val))
			if err != nil {
				in.log.Debug("Leaving unparsable url alone", zap.String("url", val), zap.Error(err))
				continue
			}
			setAttr(n, attr, base.ResolveReference(ref).String())
		}
	})
}
