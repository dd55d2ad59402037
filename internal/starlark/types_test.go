package starlark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/leapstack-labs/xmirlint/pkg/xmir"
)

func TestGoToStarlark(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		wantStr string
		wantErr bool
	}{
		{name: "nil", input: nil, wantStr: "None"},
		{name: "string", input: "hello", wantStr: `"hello"`},
		{name: "int", input: 42, wantStr: "42"},
		{name: "int64", input: int64(123456789), wantStr: "123456789"},
		{name: "uint64", input: uint64(7), wantStr: "7"},
		{name: "float64", input: 3.5, wantStr: "3.5"},
		{name: "bool", input: true, wantStr: "True"},
		{name: "string slice", input: []string{"a", "b"}, wantStr: `["a", "b"]`},
		{name: "any slice", input: []any{"a", 1}, wantStr: `["a", 1]`},
		{name: "string map", input: map[string]string{"k": "v"}, wantStr: `{"k": "v"}`},
		{name: "any map", input: map[string]any{"max_parts": 2}, wantStr: `{"max_parts": 2}`},
		{name: "nested unsupported", input: []any{struct{}{}}, wantErr: true},
		{name: "unsupported", input: make(chan int), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GoToStarlark(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStr, got.String())
		})
	}
}

func TestToGo(t *testing.T) {
	dict := starlark.NewDict(1)
	require.NoError(t, dict.SetKey(starlark.String("k"), starlark.MakeInt(1)))

	tests := []struct {
		name  string
		input starlark.Value
		want  any
	}{
		{name: "none", input: starlark.None, want: nil},
		{name: "string", input: starlark.String("s"), want: "s"},
		{name: "int", input: starlark.MakeInt(5), want: int64(5)},
		{name: "float", input: starlark.Float(1.5), want: 1.5},
		{name: "bool", input: starlark.False, want: false},
		{name: "list", input: starlark.NewList([]starlark.Value{starlark.String("a")}), want: []any{"a"}},
		{name: "tuple", input: starlark.Tuple{starlark.MakeInt(1), starlark.MakeInt(2)}, want: []any{int64(1), int64(2)}},
		{name: "dict", input: dict, want: map[string]any{"k": int64(1)}},
		{
			name:  "struct",
			input: starlarkstruct.FromStringDict(starlark.String("s"), starlark.StringDict{"x": starlark.String("y")}),
			want:  map[string]any{"x": "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToGo(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToGo_NonStringKey(t *testing.T) {
	dict := starlark.NewDict(1)
	require.NoError(t, dict.SetKey(starlark.MakeInt(1), starlark.None))
	_, err := ToGo(dict)
	assert.Error(t, err)
}

func TestProgramToStarlark(t *testing.T) {
	p, err := xmir.ParseString(`<program name="demo">
  <comments><comment line="1">hello</comment></comments>
  <metas><meta line="2"><head>tests</head><tail></tail></meta></metas>
  <objects>
    <o name="outer" line="4" pos="0"><o name="inner" base="int" line="5" pos="2"/></o>
  </objects>
</program>`)
	require.NoError(t, err)

	v, err := ToGo(ProgramToStarlark(p))
	require.NoError(t, err)
	m := v.(map[string]any)

	assert.Equal(t, "demo", m["name"])
	assert.Equal(t, true, m["tests"])
	assert.Equal(t, []any{map[string]any{"line": int64(1), "text": "hello"}}, m["comments"])

	metas := m["metas"].([]any)
	require.Len(t, metas, 1)
	assert.Equal(t, "tests", metas[0].(map[string]any)["head"])

	objects := m["objects"].([]any)
	require.Len(t, objects, 1)
	outer := objects[0].(map[string]any)
	assert.Equal(t, "outer", outer["name"])
	assert.Equal(t, int64(4), outer["line"])
	inner := outer["children"].([]any)[0].(map[string]any)
	assert.Equal(t, "int", inner["base"])
	assert.Equal(t, int64(2), inner["pos"])

	root := m["root"].(map[string]any)
	assert.Equal(t, "program", root["name"])
	assert.Equal(t, map[string]any{"name": "demo"}, root["attrs"])
}
