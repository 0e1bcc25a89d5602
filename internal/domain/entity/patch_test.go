package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatch_Merge_PreservesUnnamedFields(t *testing.T) {
	doc := map[string]any{
		"subjectId": "subject-1",
		"email":     "ana@example.gob",
		"roles":     []string{},
	}
	patch := Patch{
		"roles": []string{"collaborator"},
		"dni":   "12345678",
	}

	merged := patch.Merge(doc)

	assert.Equal(t, []string{"collaborator"}, merged["roles"])
	assert.Equal(t, "12345678", merged["dni"])
	assert.Equal(t, "ana@example.gob", merged["email"])

	// The input document is untouched.
	assert.Equal(t, []string{}, doc["roles"])
}

func TestPatch_Merge_ArrayAppend(t *testing.T) {
	doc := map[string]any{
		"loginHistory": []any{"t1"},
	}
	patch := Patch{
		"loginHistory": ArrayAppend{Elems: []any{"t2"}},
	}

	merged := patch.Merge(doc)
	assert.Equal(t, []any{"t1", "t2"}, merged["loginHistory"])

	// Appending to a missing field creates it.
	created := patch.Merge(map[string]any{})
	assert.Equal(t, []any{"t2"}, created["loginHistory"])
}

func TestPatch_DisjointPatchesCommute(t *testing.T) {
	login := Patch{
		"lastLoginAt":  "t2",
		"loginHistory": ArrayAppend{Elems: []any{"t2"}},
	}
	grant := Patch{
		"roles": []string{"collaborator"},
		"dni":   "12345678",
	}

	assert.True(t, login.Disjoint(grant))
	assert.True(t, grant.Disjoint(login))

	doc := map[string]any{"subjectId": "subject-1", "loginHistory": []any{"t1"}}
	loginFirst := grant.Merge(login.Merge(doc))
	grantFirst := login.Merge(grant.Merge(doc))
	assert.Equal(t, loginFirst, grantFirst)
}

func TestPatch_OverlappingPatchesAreNotDisjoint(t *testing.T) {
	a := Patch{"updatedAt": "t1", "roles": []string{"hr"}}
	b := Patch{"updatedAt": "t2"}

	assert.False(t, a.Disjoint(b))
}
