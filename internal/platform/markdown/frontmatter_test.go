package markdown_test

import (
	"errors"
	"testing"

	"sleeptrack/internal/platform/markdown"
)

type header struct {
	ID    int64  `yaml:"id"`
	Title string `yaml:"title"`
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()
	note, err := markdown.Encode(header{ID: 3, Title: "night"}, "\n# body\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if note != "---\nid: 3\ntitle: night\n---\n\n# body\n" {
		t.Fatalf("unexpected note %q", note)
	}
	var got header
	body, err := markdown.Decode(note, &got)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != 3 || got.Title != "night" || body != "# body\n" {
		t.Fatalf("unexpected decode %+v %q", got, body)
	}
}

func TestDecodeRejectsMissingOrOpenHeader(t *testing.T) {
	t.Parallel()
	var h header
	if _, err := markdown.Decode("# plain\n", &h); !errors.Is(err, markdown.ErrNoFrontmatter) {
		t.Fatalf("expected ErrNoFrontmatter, got %v", err)
	}
	if _, err := markdown.Decode("---\nid: 1\n", &h); err == nil {
		t.Fatalf("expected unterminated header error")
	}
}
