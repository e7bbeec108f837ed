// Package document defines the on-disk format for synced community posts: a
// YAML frontmatter block followed by the raw markup body.
package document

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/samber/oops"
)

const (
	Extension = ".ndoc"

	// MaxFrontmatterSize bounds the YAML block accepted by Decode.
	MaxFrontmatterSize = 64 * 1024

	delimiter = "---"
)

type Document struct {
	ID        int64     `yaml:"id"`
	Board     string    `yaml:"board,omitempty"`
	Title     string    `yaml:"title"`
	Username  string    `yaml:"username,omitempty"`
	Views     int64     `yaml:"views"`
	CreatedAt time.Time `yaml:"created_at,omitempty"`
	Image     string    `yaml:"image,omitempty"`
	Body      string    `yaml:"-"`
}

// FileName is the name a document is stored under inside its collection.
func (d *Document) FileName() string {
	return strconv.FormatInt(d.ID, 10) + Extension
}

func Encode(d *Document) ([]byte, error) {
	if d == nil {
		return nil, oops.
			Code("DOCUMENT_INVALID").
			Errorf("cannot encode nil document")
	}

	meta, err := yaml.Marshal(d)
	if err != nil {
		return nil, oops.
			Code("DOCUMENT_INVALID").
			With("id", d.ID).
			Wrapf(err, "encoding frontmatter")
	}

	var buf bytes.Buffer
	buf.Grow(len(meta) + len(d.Body) + 2*len(delimiter) + 2)
	buf.WriteString(delimiter + "\n")
	buf.Write(meta)
	if len(meta) > 0 && meta[len(meta)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString(delimiter + "\n")
	buf.WriteString(d.Body)

	return buf.Bytes(), nil
}

// Decode parses content written by Encode. Content without a frontmatter
// block is returned as a document whose body is the whole input.
func Decode(content []byte) (*Document, error) {
	meta, body, found := splitFrontmatter(content)
	if !found {
		return &Document{Body: string(content)}, nil
	}

	if len(meta) > MaxFrontmatterSize {
		return nil, oops.
			Code("DOCUMENT_INVALID").
			With("size", len(meta)).
			With("max", MaxFrontmatterSize).
			Errorf("frontmatter exceeds %d bytes", MaxFrontmatterSize)
	}

	d := &Document{}
	if len(bytes.TrimSpace(meta)) > 0 {
		if err := yaml.Unmarshal(meta, d); err != nil {
			return nil, oops.
				Code("DOCUMENT_INVALID").
				Hint("Delete the file and run 'ndoc sync' to download it again").
				Wrapf(err, "parsing frontmatter")
		}
	}

	d.Body = string(body)
	return d, nil
}

// Hash identifies the stored form of a document for change detection.
func Hash(d *Document) (string, error) {
	encoded, err := Encode(d)
	if err != nil {
		return "", err
	}
	return HashBytes(encoded), nil
}

func HashBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func splitFrontmatter(content []byte) ([]byte, []byte, bool) {
	var rest []byte
	switch {
	case bytes.HasPrefix(content, []byte(delimiter+"\n")):
		rest = content[len(delimiter)+1:]
	case bytes.HasPrefix(content, []byte(delimiter+"\r\n")):
		rest = content[len(delimiter)+2:]
	default:
		return nil, nil, false
	}

	// An empty block closes on the very first line.
	if after, ok := cutDelimiterLine(rest); ok {
		return nil, after, true
	}

	for _, closing := range []string{"\n" + delimiter + "\n", "\n" + delimiter + "\r\n"} {
		if idx := bytes.Index(rest, []byte(closing)); idx >= 0 {
			return rest[:idx+1], rest[idx+len(closing):], true
		}
	}

	if bytes.HasSuffix(rest, []byte("\n"+delimiter)) {
		return rest[:len(rest)-len(delimiter)], nil, true
	}

	return nil, nil, false
}

func cutDelimiterLine(b []byte) ([]byte, bool) {
	for _, line := range []string{delimiter + "\n", delimiter + "\r\n"} {
		if after, ok := bytes.CutPrefix(b, []byte(line)); ok {
			return after, true
		}
	}
	if string(b) == delimiter {
		return nil, true
	}
	return nil, false
}
