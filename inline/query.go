package inline

import (
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Queryer is the selector-query collaborator: given a selector string and a
// document it returns the matching elements in document order.
type Queryer interface {
	Query(doc *html.Node, selector string) ([]*html.Node, error)
}

// cascadiaQueryer compiles selectors with cascadia on demand. Compiled
// selectors are read-only, nothing is cached across calls.
type cascadiaQueryer struct{}

// NewQueryer returns the default cascadia-backed selector-query service.
func NewQueryer() Queryer {
	return cascadiaQueryer{}
}

func (cascadiaQueryer) Query(doc *html.Node, selector string) ([]*html.Node, error) {
	sel, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil, err
	}
	return cascadia.QueryAll(doc, sel), nil
}
