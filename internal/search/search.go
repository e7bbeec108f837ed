// Package search finds files in the manifest by metadata or by content.
package search

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/samber/oops"

	"github.com/g5becks/ndoc/internal/manifest"
)

// MetadataResult is the best-scoring field of one file for a query.
type MetadataResult struct {
	Collection  string `json:"collection"`
	Path        string `json:"path"`
	Type        string `json:"type"`
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	MatchField  string `json:"match_field"`
	MatchValue  string `json:"match_value"`
	Score       int    `json:"score"`
}

type MetadataOptions struct {
	Query      string
	Collection string
	Limit      int
}

// indexEntry is one searchable value of a file.
type indexEntry struct {
	collection string
	file       *manifest.FileInfo
	field      string
	value      string
}

// searchIndex adapts the entries to fuzzy.Source.
type searchIndex []indexEntry

func (s searchIndex) String(i int) string { return s[i].value }

func (s searchIndex) Len() int { return len(s) }

// Metadata fuzzy-matches the query against file paths, post titles,
// descriptions and headings. Each file is reported once, under its best
// scoring field; results are ordered by score, then collection and path.
func Metadata(m *manifest.Manifest, opts MetadataOptions) ([]MetadataResult, error) {
	query := strings.TrimSpace(opts.Query)
	if query == "" {
		return nil, oops.
			Code("INVALID_ARGS").
			Hint("Provide a non-empty search query").
			Errorf("search query cannot be empty")
	}

	names, err := collectionNames(m, opts.Collection)
	if err != nil {
		return nil, err
	}

	index := buildIndexFor(m, names)
	best := make(map[*manifest.FileInfo]MetadataResult)

	for _, match := range fuzzy.FindFrom(query, index) {
		entry := index[match.Index]
		if previous, seen := best[entry.file]; seen && previous.Score >= match.Score {
			continue
		}

		best[entry.file] = MetadataResult{
			Collection:  entry.collection,
			Path:        entry.file.Path,
			Type:        entry.file.Type,
			ID:          entry.file.ID,
			Title:       entry.file.Title,
			Description: entry.file.Description,
			MatchField:  entry.field,
			MatchValue:  entry.value,
			Score:       match.Score,
		}
	}

	results := slices.Collect(maps.Values(best))
	slices.SortFunc(results, func(a, b MetadataResult) int {
		return cmp.Or(
			cmp.Compare(b.Score, a.Score),
			cmp.Compare(a.Collection, b.Collection),
			cmp.Compare(a.Path, b.Path),
		)
	})

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	return results, nil
}

// buildIndex indexes one collection, or all of them when collection is empty.
// Unknown collections yield an empty index.
func buildIndex(m *manifest.Manifest, collection string) searchIndex {
	names, err := collectionNames(m, collection)
	if err != nil {
		return nil
	}
	return buildIndexFor(m, names)
}

func buildIndexFor(m *manifest.Manifest, names []string) searchIndex {
	var index searchIndex

	for _, name := range names {
		files := m.Collections[name].Files
		for i := range files {
			file := &files[i]
			values := [][2]string{{"path", file.Path}, {"title", file.Title}}
			if file.Description != file.Title {
				values = append(values, [2]string{"description", file.Description})
			}
			if file.Outline != nil {
				for _, heading := range file.Outline.Headings {
					values = append(values, [2]string{"heading", heading.Text})
				}
			}

			for _, v := range values {
				if v[1] != "" {
					index = append(index, indexEntry{collection: name, file: file, field: v[0], value: v[1]})
				}
			}
		}
	}

	return index
}

// collectionNames returns the sorted collection names to search, or only
// the requested one after checking it exists.
func collectionNames(m *manifest.Manifest, collection string) ([]string, error) {
	if collection != "" {
		if _, exists := m.Collections[collection]; !exists {
			return nil, oops.
				Code("COLLECTION_NOT_FOUND").
				With("collection", collection).
				Hint("Run 'ndoc collections' to see available collections").
				Errorf("collection %q not found", collection)
		}

		return []string{collection}, nil
	}

	return slices.Sorted(maps.Keys(m.Collections)), nil
}
