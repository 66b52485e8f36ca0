package mapping

// Lookup is one link of a resolution chain. It returns nil when it has no answer.
type Lookup func(boardID string, candidates []ColumnMapping) *ColumnMapping

// BoardScoped matches a mapping scoped to exactly boardID.
func BoardScoped(boardID string, candidates []ColumnMapping) *ColumnMapping {
	if boardID == "" {
		return nil
	}
	for i := range candidates {
		if b := candidates[i].BoardID; b != nil && *b == boardID {
			return &candidates[i]
		}
	}
	return nil
}

// Global matches the unscoped fallback mapping.
func Global(_ string, candidates []ColumnMapping) *ColumnMapping {
	for i := range candidates {
		if candidates[i].IsGlobal() {
			return &candidates[i]
		}
	}
	return nil
}

// Chain tries each lookup in order and returns the first hit.
type Chain []Lookup

var DefaultChain = Chain{BoardScoped, Global}

func (c Chain) Resolve(field Field, boardID string, mappings []ColumnMapping) *ColumnMapping {
	candidates := make([]ColumnMapping, 0, len(mappings))
	for _, m := range mappings {
		if m.ColumnType == field {
			candidates = append(candidates, m)
		}
	}
	for _, lookup := range c {
		if m := lookup(boardID, candidates); m != nil {
			return m
		}
	}
	return nil
}

// Resolve picks the mapping for field on boardID: board specific first, then
// global, then nil. A nil result means the field is skipped.
func Resolve(field Field, boardID string, mappings []ColumnMapping) *ColumnMapping {
	return DefaultChain.Resolve(field, boardID, mappings)
}

// Index groups mappings by field for repeated resolution during a sync run.
type Index map[Field][]ColumnMapping

func NewIndex(mappings []ColumnMapping) Index {
	idx := make(Index)
	for _, m := range mappings {
		idx[m.ColumnType] = append(idx[m.ColumnType], m)
	}
	return idx
}

// ColumnID returns the external column id for field on boardID, or "".
func (idx Index) ColumnID(field Field, boardID string) string {
	if m := Resolve(field, boardID, idx[field]); m != nil {
		return m.ExternalColumnID
	}
	return ""
}
