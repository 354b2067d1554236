package department

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestBuildTree(t *testing.T) {
	depts := []Department{
		{ID: "ops", Name: "Operations"},
		{ID: "wfm", Name: "Workforce", ParentID: ptr("ops")},
		{ID: "qa", Name: "Quality", ParentID: ptr("ops")},
		{ID: "hr", Name: "HR"},
		{ID: "rta", Name: "Real Time", ParentID: ptr("wfm")},
		{ID: "orphan", Name: "Orphan", ParentID: ptr("inactive-parent")},
	}

	tree := BuildTree(depts)
	require.Len(t, tree, 3)
	assert.Equal(t, []string{"HR", "Operations", "Orphan"}, []string{tree[0].Name, tree[1].Name, tree[2].Name})

	ops := tree[1]
	require.Len(t, ops.Children, 2)
	assert.Equal(t, "Quality", ops.Children[0].Name)
	assert.Equal(t, "Workforce", ops.Children[1].Name)
	require.Len(t, ops.Children[1].Children, 1)
	assert.Equal(t, "rta", ops.Children[1].Children[0].ID)
	assert.NotNil(t, tree[0].Children, "leaves serialise as an empty list")
}

func TestCreatesCycle(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		parent    string
		ancestors []string
		want      bool
	}{
		{"own parent", "a", "a", nil, true},
		{"parent is a descendant", "a", "c", []string{"b", "a"}, true},
		{"unrelated branch", "a", "x", []string{"y"}, false},
		{"root parent", "a", "b", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CreatesCycle(tt.id, tt.parent, tt.ancestors))
		})
	}
}
