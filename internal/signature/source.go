package signature

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/morozRed/moveprobe/internal/ast"
)

var (
	// ErrSourceUnreadable wraps IO failures while reading a source file.
	ErrSourceUnreadable = errors.New("source file unreadable")
	// ErrOffsetOutOfRange is returned when a span points past the end of its file.
	ErrOffsetOutOfRange = errors.New("source offset out of range")
)

const docMarker = "///"

// SpanError reports a byte span that does not fit its file.
type SpanError struct {
	File   string
	Offset int
	Size   int
}

func (e *SpanError) Error() string {
	return fmt.Sprintf("%s: offset %d exceeds file length %d", e.File, e.Offset, e.Size)
}

func (e *SpanError) Unwrap() error {
	return ErrOffsetOutOfRange
}

// Source is the verbatim text of a definition and its 1-indexed line span.
type Source struct {
	Text      string
	StartLine int
	EndLine   int
}

// ExtractSource reads path and returns the text covered by loc, widened
// upward over attached doc comments.
func ExtractSource(path string, loc ast.Loc) (Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %s: %w", ErrSourceUnreadable, path, err)
	}
	return ExtractFromContent(path, content, loc)
}

// ExtractFromContent is ExtractSource over already-loaded content.
func ExtractFromContent(path string, content []byte, loc ast.Loc) (Source, error) {
	for _, offset := range []int{loc.Start, loc.End} {
		if offset < 0 || offset > len(content) {
			return Source{}, &SpanError{File: path, Offset: offset, Size: len(content)}
		}
	}
	if loc.End < loc.Start {
		return Source{}, &SpanError{File: path, Offset: loc.End, Size: len(content)}
	}

	startLine := lineAt(content, loc.Start)
	endLine := startLine
	if loc.End > loc.Start {
		endLine = lineAt(content, loc.End-1)
	}

	lines := strings.Split(string(content), "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}

	first := startLine - 1
	for first > 0 && isDocOrBlank(lines[first-1]) {
		first--
	}
	for first < startLine-1 && strings.TrimSpace(lines[first]) == "" {
		first++
	}

	return Source{
		Text:      strings.Join(lines[first:endLine], "\n"),
		StartLine: first + 1,
		EndLine:   endLine,
	}, nil
}

// lineAt counts newlines before offset to get its 1-indexed line.
func lineAt(content []byte, offset int) int {
	line := 1
	for _, ch := range content[:offset] {
		if ch == '\n' {
			line++
		}
	}
	return line
}

func isDocOrBlank(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, docMarker)
}
