package entity

// Patch is an explicit field-name to new-value mapping applied to a stored
// document with merge semantics: named fields are replaced, every other
// field is preserved. Making the merge shape explicit keeps the
// commutativity of concurrent disjoint writes testable instead of relying
// on a store's implicit shallow-merge behavior.
type Patch map[string]any

// ArrayAppend is a patch value that appends elements to an array field
// instead of replacing it. Stores translate it to their native
// array-union operation.
type ArrayAppend struct {
	Elems []any
}

// Merge applies the patch on top of a document map and returns the result.
// The input map is not mutated.
func (p Patch) Merge(doc map[string]any) map[string]any {
	merged := make(map[string]any, len(doc)+len(p))
	for k, v := range doc {
		merged[k] = v
	}
	for k, v := range p {
		if appendOp, ok := v.(ArrayAppend); ok {
			existing, _ := merged[k].([]any)
			merged[k] = append(append([]any{}, existing...), appendOp.Elems...)

			continue
		}
		merged[k] = v
	}

	return merged
}

// Fields returns the field names the patch touches.
func (p Patch) Fields() []string {
	fields := make([]string, 0, len(p))
	for k := range p {
		fields = append(fields, k)
	}

	return fields
}

// Disjoint reports whether two patches touch no common field, in which
// case applying them in either order yields the same document.
func (p Patch) Disjoint(other Patch) bool {
	for k := range p {
		if _, ok := other[k]; ok {
			return false
		}
	}

	return true
}
