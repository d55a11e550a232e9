package parse

// GroupState is the context carried from a group header to the data lines
// that follow it. It is a value: copies are snapshots, and the zero value is
// the state at the start of every document.
type GroupState struct {
	Key   string
	Label string
	Aux   string
}

// Snapshot returns an immutable copy for stamping into a record.
func (g GroupState) Snapshot() GroupState { return g }

// Update replaces all three fields at once.
func (g GroupState) Update(key, label, aux string) GroupState {
	return GroupState{Key: key, Label: label, Aux: aux}
}

// IsSet reports whether a group has been seen. Label-only header grammars
// set no key, so a label counts as well.
func (g GroupState) IsSet() bool {
	return g.Key != "" || g.Label != ""
}

// Field returns the value for a report.Group* source name.
func (g GroupState) Field(source string) string {
	switch source {
	case "key":
		return g.Key
	case "label":
		return g.Label
	case "aux":
		return g.Aux
	}
	return ""
}
