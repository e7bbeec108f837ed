package ui_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/g5becks/ndoc/internal/markup"
	"github.com/g5becks/ndoc/internal/ui"
)

func TestTreePrinterIndentsByDepth(t *testing.T) {
	tree := markup.Render("#### **공지**\n<이미지 src=\"a.png\"></이미지>")

	var buf bytes.Buffer
	if err := ui.NewTreePrinter(&buf).Print(tree); err != nil {
		t.Fatalf("Print() error = %v", err)
	}

	want := "document\n" +
		"  heading-4\n" +
		"    bold\n" +
		"      line \"공지\"\n" +
		"  line \"\"\n" +
		"  line \"\"\n" +
		"  image a.png\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("Print() mismatch (-want +got):\n%s", diff)
	}
}

func TestTreePrinterNilTree(t *testing.T) {
	var buf bytes.Buffer
	if err := ui.NewTreePrinter(&buf).Print(nil); err != nil {
		t.Fatalf("Print(nil) error = %v", err)
	}

	if buf.Len() != 0 {
		t.Errorf("Print(nil) wrote %q, want nothing", buf.String())
	}
}
