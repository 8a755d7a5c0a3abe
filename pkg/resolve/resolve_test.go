package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/reachable/pkg/ast"
)

func TestDef_DefID(t *testing.T) {
	id, ok := Def{Kind: DefFn, ID: ast.LocalDefID(4)}.DefID()
	require.True(t, ok)
	assert.Equal(t, ast.NodeID(4), id.Node)

	_, ok = Def{Kind: DefPrimTy, Prim: "int"}.DefID()
	assert.False(t, ok)
	assert.Equal(t, "prim_ty(int)", Def{Kind: DefPrimTy, Prim: "int"}.String())
}

func TestDefKind_RoundTrip(t *testing.T) {
	for k := DefFn; k <= DefTrait; k++ {
		got, err := ParseDefKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseDefKind("macro")
	assert.Error(t, err)
}

func TestOriginKind_RoundTrip(t *testing.T) {
	for k := OriginStatic; k <= OriginSelf; k++ {
		got, err := ParseOriginKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseOriginKind("dynamic")
	assert.Error(t, err)
}

func TestExportMap_EmptyIsNotAbsent(t *testing.T) {
	m := ExportMap{1: {}, 2: {{Name: "f", ID: ast.LocalDefID(3)}}}

	list, ok := m.Exports(1)
	assert.True(t, ok)
	assert.Empty(t, list)

	_, ok = m.Exports(9)
	assert.False(t, ok)

	list, ok = m.Exports(2)
	require.True(t, ok)
	assert.Equal(t, "f", list[0].Name)
}

func TestMethodOrigin_Static(t *testing.T) {
	id, ok := MethodOrigin{Kind: OriginStatic, ID: ast.LocalDefID(7)}.Static()
	require.True(t, ok)
	assert.Equal(t, ast.NodeID(7), id.Node)

	_, ok = MethodOrigin{Kind: OriginParam, ID: ast.LocalDefID(7)}.Static()
	assert.False(t, ok)

	_, ok = MethodMap{}.Origin(1)
	assert.False(t, ok)
}
