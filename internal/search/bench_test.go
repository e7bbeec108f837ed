package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/g5becks/ndoc/internal/document"
	"github.com/g5becks/ndoc/internal/manifest"
	"github.com/g5becks/ndoc/internal/parser"
)

var benchBoards = []string{"announcement", "qna", "activity"}

// benchPosts builds a manifest of posts spread over the three boards. When
// outputDir is set each post is also written there as a .ndoc file.
func benchPosts(b *testing.B, outputDir string, perBoard int) *manifest.Manifest {
	b.Helper()

	m := &manifest.Manifest{Collections: map[string]*manifest.Collection{}}

	for _, board := range benchBoards {
		coll := &manifest.Collection{Name: board, Dir: board, Type: "board"}

		for id := int64(1); id <= int64(perBoard); id++ {
			doc := &document.Document{
				ID:    id,
				Board: board,
				Title: fmt.Sprintf("%s 게시글 %d 일정 안내", board, id),
				Body: fmt.Sprintf("# 모임 %d\n**장소**: 302호\n## 준비물\n*노트북* 과 ~~교재~~\n"+
					"#### config 설정 %d\n<이미지 src=\"/img/%d.png\"></이미지>\n", id, id, id),
			}

			coll.Files = append(coll.Files, manifest.FileInfo{
				Path:        doc.FileName(),
				Type:        "ndoc",
				ID:          id,
				Title:       doc.Title,
				Description: doc.Title,
				Outline: &parser.Outline{
					Type: parser.OutlineTypeHeadings,
					Headings: []parser.Heading{
						{Level: 1, Text: "모임 " + strconv.FormatInt(id, 10), Line: 6},
						{Level: 2, Text: "준비물", Line: 8},
					},
				},
			})

			if outputDir == "" {
				continue
			}

			encoded, err := document.Encode(doc)
			if err != nil {
				b.Fatal(err)
			}

			path := filepath.Join(outputDir, board, doc.FileName())
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				b.Fatal(err)
			}
			if err := os.WriteFile(path, encoded, 0o644); err != nil {
				b.Fatal(err)
			}
		}

		m.Collections[board] = coll
	}

	return m
}

func BenchmarkBuildIndex(b *testing.B) {
	m := benchPosts(b, "", 250)

	for b.Loop() {
		if buildIndex(m, "").Len() == 0 {
			b.Fatal("empty index")
		}
	}
}

func BenchmarkMetadata(b *testing.B) {
	m := benchPosts(b, "", 250)

	for b.Loop() {
		if _, err := Metadata(m, MetadataOptions{Query: "일정 안내", Limit: 50}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkContent(b *testing.B) {
	outputDir := b.TempDir()
	m := benchPosts(b, outputDir, 250)

	for _, opts := range []ContentOptions{
		{Query: "노트북"},
		{Query: `config 설정 \d+`, UseRegex: true},
	} {
		opts.OutputDir = outputDir
		b.Run(opts.Query, func(b *testing.B) {
			for b.Loop() {
				if _, err := Content(m, opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
