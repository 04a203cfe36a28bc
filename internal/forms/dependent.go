package forms

// Filter returns the options whose parent equals parentID. An empty parent
// selects nothing.
func Filter(list List, parentID string) List {
	out := List{Kind: list.Kind, State: list.State}
	if parentID == "" {
		return out
	}
	for _, o := range list.Options {
		if o.Parent == parentID {
			out.Options = append(out.Options, o)
		}
	}
	return out
}

// Reconcile clears every dependent value that is not an option of its parent's
// filtered list and returns the cleared field names. When the list itself is
// unavailable the value survives only while the parent is unchanged since mount.
func Reconcile(s *Schema, st *State, lists map[string]List) []string {
	var cleared []string
	for _, f := range s.Fields() {
		if f.parent == "" {
			continue
		}
		current := st.Values[f.name]
		if current == "" {
			continue
		}
		list, ok := lists[f.reference]
		if !ok || !list.Available() {
			if st.Dirty(f.parent) {
				st.Values[f.name] = ""
				cleared = append(cleared, f.name)
			}
			continue
		}
		if !Filter(list, st.Values[f.parent]).Contains(current) {
			st.Values[f.name] = ""
			cleared = append(cleared, f.name)
		}
	}
	return cleared
}
