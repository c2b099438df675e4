package inputdeck

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// writeFiles creates the given files under a fresh temp dir and returns it.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

// native reads block/key from the deck as a Go value.
func native(t *testing.T, d *Deck, block, key string) any {
	t.Helper()
	v, ok := d.Lookup(block, key)
	require.True(t, ok, "missing %s/%s", block, key)
	n, err := ToNative(v)
	require.NoError(t, err)
	return n
}

func TestDecode_Formats(t *testing.T) {
	testCases := []struct {
		name string
		file string
		src  string
	}{
		{
			name: "hcl",
			file: "deck.hcl",
			src: `
block1 {
  var0 = "hello"
  var1 = 8
  var2 = true
  var3 = -4.6
}
block "block2/sub" {
  list = [1, 2, 3]
}
`,
		},
		{
			name: "yaml",
			file: "deck.yaml",
			src: `
block1:
  var0: hello
  var1: 8
  var2: true
  var3: -4.6
block2/sub:
  list: [1, 2, 3]
`,
		},
		{
			name: "toml",
			file: "deck.toml",
			src: `
[block1]
var0 = "hello"
var1 = 8
var2 = true
var3 = -4.6

["block2/sub"]
list = [1, 2, 3]
`,
		},
		{
			name: "cue",
			file: "deck.cue",
			src: `
block1: {
	var0: "hello"
	var1: 8
	var2: true
	var3: -4.6
}
"block2/sub": list: [1, 2, 3]
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := NewLoader().Decode(context.Background(), tc.file, []byte(tc.src))
			require.NoError(t, err)

			assert.Equal(t, "hello", native(t, d, "block1", "var0"))
			assert.Equal(t, 8, native(t, d, "block1", "var1"))
			assert.Equal(t, true, native(t, d, "block1", "var2"))
			assert.InDelta(t, -4.6, native(t, d, "block1", "var3"), 1e-12)
			assert.Equal(t, []any{1, 2, 3}, native(t, d, "block2/sub", "list"))
		})
	}
}

func TestDecode_HCLErrors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantErr string
	}{
		{name: "syntax", src: `block1 {`, wantErr: "failed to parse HCL file"},
		{name: "top-level attribute", src: `x = 1`, wantErr: "Unexpected top-level attribute"},
		{name: "duplicate block", src: "a {\n x = 1\n}\na {\n y = 2\n}\n", wantErr: `Duplicate "a" block`},
		{name: "nested block", src: "a {\n b {\n }\n}\n", wantErr: "Unsupported nested block"},
		{name: "bad header", src: "a \"x\" {\n}\n", wantErr: "Invalid block header"},
		{name: "variable reference", src: "a {\n x = var.y\n}\n", wantErr: "failed to decode HCL file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := HCLDecoder{}.Decode(context.Background(), "bad.hcl", []byte(tc.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestDecode_TableErrors(t *testing.T) {
	_, err := YAMLDecoder{}.Decode(context.Background(), "bad.yaml", []byte("scalar: 1\n"))
	assert.ErrorContains(t, err, `top-level key "scalar" must be a block`)

	_, err = YAMLDecoder{}.Decode(context.Background(), "bad.yaml", []byte("a:\n  nested:\n    x: 1\n"))
	assert.ErrorContains(t, err, "unsupported value type")

	_, err = CUEDecoder{}.Decode(context.Background(), "bad.cue", []byte("a: x: int\n"))
	assert.ErrorContains(t, err, "not concrete")
}

func TestLoader_Load(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"decks/00-base.hcl":  "hydro {\n  cfl = 0.8\n  reconstruction = \"plm\"\n}\n",
		"decks/10-over.yaml": "hydro:\n  reconstruction: ppm\n",
		"decks/notes.txt":    "ignored",
		"extra.toml":         "[eos]\ngamma = 1.67\n",
	})

	d, err := NewLoader().Load(context.Background(), filepath.Join(root, "decks"), filepath.Join(root, "extra.toml"))
	require.NoError(t, err)

	assert.Equal(t, "ppm", native(t, d, "hydro", "reconstruction"), "later files override earlier ones")
	assert.InDelta(t, 0.8, native(t, d, "hydro", "cfl"), 1e-12)
	assert.InDelta(t, 1.67, native(t, d, "eos", "gamma"), 1e-12)
	assert.Equal(t, []string{"hydro", "eos"}, d.Blocks())
	assert.Equal(t, []string{"cfl", "reconstruction"}, d.Keys("hydro"))
}

func TestLoader_Errors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "dne.hcl"))
		assert.ErrorContains(t, err, "error accessing deck path")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		root := writeFiles(t, map[string]string{"deck.ini": "x"})
		_, err := NewLoader().Load(context.Background(), filepath.Join(root, "deck.ini"))
		assert.ErrorContains(t, err, `extension ".ini"`)
	})
}

func TestDeck_SetAndMerge(t *testing.T) {
	a := New()
	a.Set("b", "k1", cty.NumberIntVal(1))
	require.NoError(t, a.SetNative("b", "k2", "x"))
	assert.Equal(t, 2, a.Len())
	assert.True(t, a.Has("b", "k2"))
	assert.False(t, a.Has("b", "k3"))
	assert.False(t, a.Has("nope", "k1"))
	assert.Nil(t, a.Keys("nope"))

	b := New()
	b.Set("b", "k1", cty.NumberIntVal(5))
	b.Set("c", "k", cty.True)
	a.Merge(b)
	a.Merge(nil)
	a.Merge(a)

	assert.Equal(t, 5, native(t, a, "b", "k1"))
	assert.Equal(t, true, native(t, a, "c", "k"))
	assert.Equal(t, []string{"k1", "k2"}, a.Keys("b"))

	assert.Error(t, a.SetNative("b", "bad", map[string]any{}))
}
