package css

// Merge merges serialized style texts. Declarations in new take precedence
// over same-named declarations in old, declarations present only in old are
// preserved. old may itself be a serialized StyleGroup with embedded
// "key{...}" groups, new is always a flat declaration block which is merged
// into the group identified by key (created when absent). The result is the
// re-serialized StyleGroup.
func Merge(old, new string, key PseudoKey) (string, error) {
	news, err := ParseDeclarations(new)
	if err != nil {
		return "", err
	}

	group, err := ParseStyleGroup(old)
	if err != nil {
		return "", err
	}

	merged := news.Clone()
	if target, ok := group.Block(key); ok {
		for _, d := range target.Declarations() {
			if !merged.Has(d.Property) {
				merged.Set(d.Property, d.Value)
			}
		}
	}
	group.Set(key, merged)

	return group.String(), nil
}
