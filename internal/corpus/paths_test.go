// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func touch(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestEnumeratePaths(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.json"))
	touch(t, filepath.Join(root, "a.json"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "pdf_json", "c.json"))
	touch(t, filepath.Join(root, "pdf_json", "deep", "d.json"))
	touch(t, filepath.Join(root, "pdf_json", "d.json.bak"))
	touch(t, filepath.Join(root, "pmc_json", "e.xml.json"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir.json"), 0o755))

	tests := []struct {
		name string
		ext  string
		want []string
	}{
		{
			name: "json recursive",
			ext:  "json",
			want: []string{
				"a.json", "b.json",
				"pdf_json/c.json", "pdf_json/deep/d.json",
				"pmc_json/e.xml.json",
			},
		},
		{
			name: "leading dot tolerated",
			ext:  ".txt",
			want: []string{"notes.txt"},
		},
		{
			name: "empty extension defaults to json",
			ext:  "",
			want: []string{
				"a.json", "b.json",
				"pdf_json/c.json", "pdf_json/deep/d.json",
				"pmc_json/e.xml.json",
			},
		},
		{
			name: "no matches",
			ext:  "csv",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EnumeratePaths(root, tt.ext)
			require.NoError(t, err)

			var want []string
			for _, w := range tt.want {
				want = append(want, filepath.Join(root, filepath.FromSlash(w)))
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestEnumeratePaths_MissingRoot(t *testing.T) {
	_, err := EnumeratePaths(filepath.Join(t.TempDir(), "missing"), "json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestEnumeratePaths_RootIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.json")
	touch(t, path)
	_, err := EnumeratePaths(path, "json")
	assert.Error(t, err)
}

// Every file ending in the extension is returned, nothing else, in sorted order.
func TestEnumeratePaths_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		root, err := os.MkdirTemp("", "enumerate")
		if err != nil {
			rt.Fatal(err)
		}
		defer os.RemoveAll(root)

		names := rapid.SliceOfNDistinct(
			rapid.StringMatching(`[a-c]{1,3}(/[a-c]{1,3}){0,2}\.(json|txt|jso)`),
			0, 12, func(s string) string { return s },
		).Draw(rt, "names")

		var want []string
		for _, n := range names {
			path := filepath.Join(root, filepath.FromSlash(n))
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				rt.Fatal(err)
			}
			if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
				rt.Fatal(err)
			}
			if filepath.Ext(n) == ".json" {
				want = append(want, path)
			}
		}
		sort.Strings(want)

		got, err := EnumeratePaths(root, "json")
		if err != nil {
			rt.Fatal(err)
		}
		if len(want) == 0 {
			want = nil
		}
		assert.Equal(rt, want, got)
	})
}
