// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cord-loader/pkg/types"
)

func newLoadCommand(t *testing.T, root string, flags map[string]string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	viper.Reset()
	viper.Set("root", root)
	viper.Set("ext", "json")
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{Use: "load"}
	addLoadFlags(cmd.Flags())
	cmd.Flags().String("format", string(types.OutputText), "")
	cmd.Flags().String("output", "", "")
	require.NoError(t, bindLoadFlags(cmd))
	for k, v := range flags {
		require.NoError(t, cmd.Flags().Set(k, v))
	}

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	return cmd, &out
}

func TestLoaderConfigFromFlags(t *testing.T) {
	cmd, _ := newLoadCommand(t, "/corpus", map[string]string{
		"key":       "body_text",
		"keys":      "section",
		"mandatory": "text",
		"offset":    "3",
		"limit":     "7",
		"sentences": "true",
		"on-error":  "abort",
	})

	cfg, err := loaderConfigFromFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, types.LoaderConfig{
		RootPath:   "/corpus",
		Extension:  "json",
		SectionKey: "body_text",
		Query: types.FieldQuery{
			Keys:      []string{"section", "text"},
			Mandatory: []string{"text"},
		},
		Offset:         3,
		Limit:          7,
		SplitSentences: true,
		OnError:        types.PolicyAbort,
	}, cfg)
}

func TestLoaderConfigFromFlags_Environment(t *testing.T) {
	cmd, _ := newLoadCommand(t, "/corpus", map[string]string{"offset": "1"})
	viper.SetEnvPrefix("CORD_LOADER")
	viper.AutomaticEnv()
	t.Setenv("CORD_LOADER_SECTION_KEY", "body_text")
	t.Setenv("CORD_LOADER_KEYS", "section, text")
	t.Setenv("CORD_LOADER_OFFSET", "5")
	t.Setenv("CORD_LOADER_SPLIT_SENTENCES", "true")
	t.Setenv("CORD_LOADER_ON_ERROR", "skip")

	cfg, err := loaderConfigFromFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, "body_text", cfg.SectionKey)
	assert.Equal(t, []string{"section", "text"}, cfg.Query.Keys)
	assert.Equal(t, 1, cfg.Offset, "explicit flag beats environment")
	assert.True(t, cfg.SplitSentences)
	assert.Equal(t, types.PolicySkip, cfg.OnError)
}

func TestLoaderConfigFromFlags_ConfigFile(t *testing.T) {
	cmd, _ := newLoadCommand(t, "/corpus", map[string]string{"limit": "9"})
	viper.SetConfigType("yaml")
	require.NoError(t, viper.ReadConfig(strings.NewReader(`
section_key: body_text
keys: [section, text, cite_spans]
mandatory: [text]
offset: 2
limit: 4
on_error: abort
`)))

	cfg, err := loaderConfigFromFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, "body_text", cfg.SectionKey)
	assert.Equal(t, []string{"section", "text", "cite_spans"}, cfg.Query.Keys)
	assert.Equal(t, 2, cfg.Offset)
	assert.Equal(t, 9, cfg.Limit, "explicit flag beats config file")
	assert.Equal(t, types.PolicyAbort, cfg.OnError)
	assert.False(t, cfg.SplitSentences)
}

func TestLoaderConfigFromFlags_Invalid(t *testing.T) {
	cmd, _ := newLoadCommand(t, "/corpus", map[string]string{"on-error": "ignore"})
	_, err := loaderConfigFromFlags(cmd)
	assert.Error(t, err)

	cmd, _ = newLoadCommand(t, "/corpus", map[string]string{"keys": "paper_id"})
	_, err = loaderConfigFromFlags(cmd)
	assert.Error(t, err)
}

func TestRunLoad_CSV(t *testing.T) {
	root := t.TempDir()
	doc := `{"paper_id": "abc", "abstract": [{"section": "INTRO", "text": "Hello world."}, {"section": "X"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(root, "abc.json"), []byte(doc), 0o644))

	cmd, out := newLoadCommand(t, root, map[string]string{"format": "csv", "quiet": "true"})
	require.NoError(t, runLoad(cmd, nil))

	assert.Equal(t, "paper_id,section,text\nabc,INTRO,Hello world.\n", out.String())
}

func TestRunLoad_CollectedFailuresExitNonZero(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.json"), []byte(`{"paper_id": "a", "abstract": [{"text": "ok"}]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.json"), []byte(`{broken`), 0o644))

	outPath := filepath.Join(t.TempDir(), "rows.json")
	cmd, _ := newLoadCommand(t, root, map[string]string{"format": "json", "output": outPath, "quiet": "true"})
	err := runLoad(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 article(s) failed")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"text": "ok"`))
}

func TestRunLoad_Pagination(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.json"), []byte(`{"paper_id": "a", "abstract": []}`), 0o644))

	cmd, _ := newLoadCommand(t, root, map[string]string{"offset": "1", "quiet": "true"})
	err := runLoad(cmd, nil)
	assert.ErrorContains(t, err, "out of range")
}
