package parser

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// binarySniffLen is how much of a file IsBinary inspects.
const binarySniffLen = 512

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// fileTypes maps lowercase extensions to the type names stored in the manifest.
var fileTypes = map[string]string{
	".ndoc":     "ndoc",
	".txt":      "txt",
	".md":       "md",
	".markdown": "md",
}

// IsBinary reports whether a NUL byte appears near the start of content.
func IsBinary(content []byte) bool {
	return bytes.IndexByte(content[:min(len(content), binarySniffLen)], 0) >= 0
}

func IsValidUTF8(content []byte) bool {
	return utf8.Valid(content)
}

// StripBOM drops a leading UTF-8 byte order mark.
func StripBOM(content []byte) []byte {
	return bytes.TrimPrefix(content, utf8BOM)
}

// DetectFileType returns "ndoc", "txt", "md" or "unknown" for path.
func DetectFileType(path string) string {
	if fileType, ok := fileTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return fileType
	}
	return "unknown"
}
