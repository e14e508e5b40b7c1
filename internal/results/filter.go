package results

// HasAnyModifier reports whether r carries at least one of modifiers.
func (r Record) HasAnyModifier(modifiers map[string]struct{}) bool {
	for _, m := range r.Modifiers {
		if _, ok := modifiers[m]; ok {
			return true
		}
	}
	return false
}

// IsImport reports whether r is an unused import finding.
func (r Record) IsImport() bool { return r.Kind == KindImport }

// IsBroadlyVisible reports whether r is declared public or open.
func (r Record) IsBroadlyVisible() bool { return r.HasAnyModifier(visibilityModifiers) }

// FilterByKind keeps records whose kind equals kind, in input order.
func FilterByKind(records []Record, kind string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// FilterByModifiers keeps records carrying at least one of modifiers.
func FilterByModifiers(records []Record, modifiers map[string]struct{}) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.HasAnyModifier(modifiers) {
			out = append(out, r)
		}
	}
	return out
}

// UnusedImports is the import-only view.
func UnusedImports(records []Record) []Record {
	return FilterByKind(records, KindImport)
}

// RedundantPublic is the view of public or open declarations.
func RedundantPublic(records []Record) []Record {
	return FilterByModifiers(records, visibilityModifiers)
}

// ModifierSet builds the set argument for FilterByModifiers.
func ModifierSet(modifiers ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(modifiers))
	for _, m := range modifiers {
		set[m] = struct{}{}
	}
	return set
}
