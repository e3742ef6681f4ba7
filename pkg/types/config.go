package types

import "fmt"

// ErrorPolicy selects how the loader reacts when one article file cannot be
// read or parsed.
type ErrorPolicy string

const (
	// PolicyAbort stops the run at the first unreadable file.
	PolicyAbort ErrorPolicy = "abort"
	// PolicySkip logs a warning and continues.
	PolicySkip ErrorPolicy = "skip"
	// PolicyCollect continues and returns the failures with the result.
	PolicyCollect ErrorPolicy = "collect"
)

// ParseErrorPolicy validates s. An empty string selects PolicyCollect.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch p := ErrorPolicy(s); p {
	case "":
		return PolicyCollect, nil
	case PolicyAbort, PolicySkip, PolicyCollect:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported error policy %q: use abort, skip, or collect", s)
	}
}

// OutputFormat selects how a loaded table is rendered.
type OutputFormat string

const (
	OutputText OutputFormat = "table"
	OutputCSV  OutputFormat = "csv"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

// LoaderConfig holds settings for one load run.
type LoaderConfig struct {
	// RootPath is the corpus directory searched recursively for articles.
	RootPath string `json:"root_path" yaml:"root_path"`

	// Extension is the article file extension without the dot (default "json").
	Extension string `json:"extension" yaml:"extension"`

	// SectionKey names the top-level array to extract (e.g. "abstract", "body_text").
	SectionKey string `json:"section_key" yaml:"section_key"`

	// Query selects the fields copied from each Section Entry.
	Query FieldQuery `json:"query" yaml:"query"`

	// Offset is the zero-based index of the first article to load.
	Offset int `json:"offset" yaml:"offset"`

	// Limit caps the number of articles loaded after Offset. Zero means no limit.
	Limit int `json:"limit" yaml:"limit"`

	// SplitSentences expands each row into one row per sentence.
	SplitSentences bool `json:"split_sentences" yaml:"split_sentences"`

	// OnError is the per-file failure policy (default collect).
	OnError ErrorPolicy `json:"on_error" yaml:"on_error"`
}

// DefaultLoaderConfig returns a config loading abstracts from root.
func DefaultLoaderConfig(root string) LoaderConfig {
	return LoaderConfig{
		RootPath:   root,
		Extension:  "json",
		SectionKey: SectionAbstract,
		Query:      DefaultFieldQuery(),
		OnError:    PolicyCollect,
	}
}

// StoreConfig holds settings for the SQLite run store.
type StoreConfig struct {
	// DBDir is the directory holding the database file.
	DBDir string `json:"db_dir" yaml:"db_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
