package markdown

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---"

var ErrNoFrontmatter = errors.New("note has no frontmatter")

// Encode renders meta as a fenced YAML header followed by body.
func Encode(meta any, body string) (string, error) {
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	var sb strings.Builder
	sb.Grow(len(raw) + len(body) + 2*len(fence) + 3)
	sb.WriteString(fence + "\n")
	sb.Write(raw)
	sb.WriteString(fence + "\n\n")
	sb.WriteString(strings.TrimLeft(body, "\n"))
	return sb.String(), nil
}

// Decode reads the YAML header of note into meta and returns the remaining body.
func Decode(note string, meta any) (string, error) {
	lines := strings.SplitAfter(note, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r\n") != fence {
		return note, ErrNoFrontmatter
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r\n") != fence {
			continue
		}
		header := strings.Join(lines[1:i], "")
		if err := yaml.Unmarshal([]byte(header), meta); err != nil {
			return "", fmt.Errorf("decode frontmatter: %w", err)
		}
		return strings.TrimLeft(strings.Join(lines[i+1:], ""), "\n"), nil
	}
	return "", fmt.Errorf("decode frontmatter: unterminated header")
}
