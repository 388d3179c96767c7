package registry

// Subclasses returns every (non-deleted) class ident whose Extends chain
// reaches classIdent, transitively — the "nested_children" set
// InheritsClass lowers against. The result does not include classIdent
// itself; callers that want "X or a descendant of X" union it in.
func (r *Registry) Subclasses(classIdent string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	children := make(map[string][]string)
	for _, c := range r.classesByLocal {
		if c == nil || c.Deleted {
			continue
		}
		for _, parent := range c.Extends {
			children[parent] = append(children[parent], c.Ident)
		}
	}

	var out []string
	seen := make(map[string]bool)
	var walk func(string)
	walk = func(ident string) {
		for _, child := range children[ident] {
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, child)
			walk(child)
		}
	}
	walk(classIdent)
	return out
}

// IndexForAttribute returns the single non-deleted index covering attrLocal,
// if exactly one exists — the condition the IndexedAttribute optimizer
// fold requires (spec §4.5: "attr has exactly one index").
func (r *Registry) IndexForAttribute(attrLocal uint32) (uint32, bool) {
	idxs := r.IndexesForAttribute(attrLocal)
	if len(idxs) != 1 {
		return 0, false
	}
	return idxs[0].LocalID, true
}
