package css

import (
	"bytes"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	cssparse "github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// ExtractorOptions control how stylesheet text is turned into rules.
type ExtractorOptions struct {
	// ExcludePseudoClasses routes pseudo-class selectors (except filter
	// pseudo-selectors) to the leftover list instead of flattening them.
	ExcludePseudoClasses bool
	// IncludeStarSelectors honors the universal selector "*"; it is dropped
	// otherwise.
	IncludeStarSelectors bool
}

// Extractor parses raw CSS text into ordered selector/declaration rules.
// It is stateless apart from configuration and safe to reuse.
type Extractor struct {
	opt ExtractorOptions
	log *zap.Logger
}

// NewExtractor creates a rule extractor.
func NewExtractor(opt ExtractorOptions, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{opt: opt, log: log.Named("css-extract")}
}

// Extract produces the ordered flattenable rules of a stylesheet and,
// separately, the ordered leftover rules which cannot be flattened to a
// static style attribute and must be re-serialized into a residual style
// block. Relative order within the stylesheet is preserved. The optional
// source parameter identifies what is being parsed for debug logging.
func (e *Extractor) Extract(data []byte, source ...string) (rules, leftover []Rule) {
	if len(source) > 0 && source[0] != "" {
		e.log.Debug("Extracting rules", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	input := parse.NewInput(bytes.NewReader(data))
	parser := cssparse.NewParser(input, false)

	var pending []string

	for {
		gt, _, data := parser.Next()

		switch gt {
		case cssparse.ErrorGrammar:
			// end of input or parse error
			if err := parser.Err(); err != nil && err.Error() != "EOF" {
				e.log.Debug("CSS parse ended", zap.Error(err))
			}
			return rules, leftover

		case cssparse.BeginAtRuleGrammar:
			// nested @-rules (@media, @font-face, ...) are not flattenable
			e.skipAtRuleBlock(parser)
			e.log.Debug("Skipping @-rule block", zap.String("rule", string(data)))

		case cssparse.AtRuleGrammar:
			// blockless @-rules (@import, @charset)
			e.log.Debug("Skipping @-rule", zap.String("rule", string(data)))

		case cssparse.QualifiedRuleGrammar:
			// a comma-terminated selector of a grouped selector list
			pending = append(pending, selectorText(data, parser.Values())...)

		case cssparse.BeginRulesetGrammar:
			pending = append(pending, selectorText(data, parser.Values())...)
			bulk := e.declarationText(parser)

			for _, selector := range pending {
				if strings.HasPrefix(selector, "@") {
					continue
				}
				rule := Rule{Selector: selector, Declarations: bulk}
				if e.isLeftover(selector) {
					leftover = append(leftover, rule)
					continue
				}
				if selector == "*" && !e.opt.IncludeStarSelectors {
					continue
				}
				rules = append(rules, rule)
			}
			pending = pending[:0]
		}
	}
}

// isLeftover reports whether a selector describes dynamic pseudo-class state
// which cannot be flattened when pseudo-class exclusion is configured.
func (e *Extractor) isLeftover(selector string) bool {
	if !e.opt.ExcludePseudoClasses {
		return false
	}
	_, rest, found := strings.Cut(selector, ":")
	if !found {
		return false
	}
	return !IsFilterPseudo(":" + rest)
}

// selectorText assembles selector strings from token data and splits grouped
// selector lists on commas.
func selectorText(data []byte, values []cssparse.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	var selectors []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		if s = strings.TrimSpace(s); s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// declarationText consumes declarations until the end of the ruleset and
// returns them as normalized "prop:value; prop:value" text.
func (e *Extractor) declarationText(parser *cssparse.Parser) string {
	var parts []string

	for {
		gt, _, data := parser.Next()

		switch gt {
		case cssparse.ErrorGrammar, cssparse.EndRulesetGrammar:
			return strings.Join(parts, "; ")

		case cssparse.DeclarationGrammar, cssparse.CustomPropertyGrammar:
			value := valueText(parser.Values())
			if value == "" {
				continue
			}
			parts = append(parts, string(data)+":"+value)
		}
	}
}

// valueText joins value tokens back into a string, collapsing whitespace
// runs to single spaces.
func valueText(tokens []cssparse.Token) string {
	var parts []string
	for _, t := range tokens {
		if t.TokenType != cssparse.WhitespaceToken {
			parts = append(parts, string(t.Data))
		} else if len(parts) > 0 && parts[len(parts)-1] != " " {
			parts = append(parts, " ")
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (e *Extractor) skipAtRuleBlock(parser *cssparse.Parser) {
	depth := 1
	for depth > 0 {
		switch gt, _, _ := parser.Next(); gt {
		case cssparse.ErrorGrammar:
			return
		case cssparse.BeginAtRuleGrammar, cssparse.BeginRulesetGrammar:
			depth++
		case cssparse.EndAtRuleGrammar, cssparse.EndRulesetGrammar:
			depth--
		}
	}
}
