// Package jsonpath implements the small subset of the JSONPath expression
// language needed to pull claim values out of arbitrary provider responses.
//
// A path always starts with the root marker `$` and is followed by child
// segments:
//
//	$.email
//	$.user.profile.given_name
//	$.groups[0].id
//	$.groups[*].id
//	$.attributes.*
//
// Paths are evaluated against decoded JSON documents (the interface values
// produced by encoding/json: map[string]any, []any, string, float64, bool,
// nil). Evaluation never fails: a path that matches nothing simply yields no
// results. Only a syntactically invalid path is an error.
package jsonpath

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MalformedPathError reports a syntactically invalid path expression.
type MalformedPathError struct {
	Path   string
	Pos    int
	Reason string
}

func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("jsonpath: malformed path %q at offset %d: %s", e.Path, e.Pos, e.Reason)
}

type segmentKind int

const (
	segChild segmentKind = iota // .name or ['name']
	segIndex                    // [n]
	segWild                     // .* or [*]
)

type segment struct {
	kind  segmentKind
	child string
	index int
}

// Path is a parsed, reusable path expression.
type Path struct {
	raw      string
	segments []segment
}

// String returns the original expression.
func (p Path) String() string { return p.raw }

// Parse validates and compiles a path expression.
func Parse(path string) (Path, error) {
	if !strings.HasPrefix(path, "$") {
		return Path{}, &MalformedPathError{Path: path, Pos: 0, Reason: "path must start with $"}
	}

	p := Path{raw: path}
	i := 1

	for i < len(path) {
		switch path[i] {
		case '.':
			i++
			if i >= len(path) {
				return Path{}, &MalformedPathError{Path: path, Pos: i, Reason: "trailing dot"}
			}
			if path[i] == '*' {
				p.segments = append(p.segments, segment{kind: segWild})
				i++
				continue
			}
			start := i
			for i < len(path) && path[i] != '.' && path[i] != '[' {
				i++
			}
			name := path[start:i]
			if name == "" {
				return Path{}, &MalformedPathError{Path: path, Pos: start, Reason: "empty child name"}
			}
			p.segments = append(p.segments, segment{kind: segChild, child: name})

		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return Path{}, &MalformedPathError{Path: path, Pos: i, Reason: "unterminated bracket"}
			}
			inner := path[i+1 : i+end]
			i += end + 1

			switch {
			case inner == "*":
				p.segments = append(p.segments, segment{kind: segWild})
			case len(inner) >= 2 && (inner[0] == '\'' || inner[0] == '"') && inner[len(inner)-1] == inner[0]:
				name := inner[1 : len(inner)-1]
				if name == "" {
					return Path{}, &MalformedPathError{Path: path, Pos: i, Reason: "empty quoted child name"}
				}
				p.segments = append(p.segments, segment{kind: segChild, child: name})
			default:
				n, err := strconv.Atoi(inner)
				if err != nil || n < 0 {
					return Path{}, &MalformedPathError{Path: path, Pos: i, Reason: "bracket must hold a non-negative index, a quoted name or *"}
				}
				p.segments = append(p.segments, segment{kind: segIndex, index: n})
			}

		default:
			return Path{}, &MalformedPathError{Path: path, Pos: i, Reason: "expected . or ["}
		}
	}

	return p, nil
}

// MustParse parses or panics. Useful for hard-coded paths in tests.
func MustParse(path string) Path {
	p, err := Parse(path)
	if err != nil {
		panic(err)
	}
	return p
}

// All returns every value the path matches in the document, in document
// order. Wildcards over objects visit keys in sorted order so results are
// deterministic.
func (p Path) All(doc any) []any {
	current := []any{doc}

	for _, seg := range p.segments {
		var next []any
		for _, node := range current {
			switch seg.kind {
			case segChild:
				if m, ok := node.(map[string]any); ok {
					if v, ok := m[seg.child]; ok {
						next = append(next, v)
					}
				}
			case segIndex:
				if a, ok := node.([]any); ok && seg.index < len(a) {
					next = append(next, a[seg.index])
				}
			case segWild:
				switch n := node.(type) {
				case []any:
					next = append(next, n...)
				case map[string]any:
					keys := make([]string, 0, len(n))
					for k := range n {
						keys = append(keys, k)
					}
					sort.Strings(keys)
					for _, k := range keys {
						next = append(next, n[k])
					}
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}

	return current
}

// First returns the first value the path matches. It reports false when the
// path matches nothing, or when the first match is JSON null.
func (p Path) First(doc any) (any, bool) {
	matches := p.All(doc)
	if len(matches) == 0 || matches[0] == nil {
		return nil, false
	}
	return matches[0], true
}

// First parses path and returns its first match in doc. The error is non-nil
// only for a malformed path.
func First(doc any, path string) (any, bool, error) {
	p, err := Parse(path)
	if err != nil {
		return nil, false, err
	}
	v, ok := p.First(doc)
	return v, ok, nil
}

// All parses path and returns every match in doc. The error is non-nil only
// for a malformed path.
func All(doc any, path string) ([]any, error) {
	p, err := Parse(path)
	if err != nil {
		return nil, err
	}
	return p.All(doc), nil
}

// AsString renders a matched scalar as a string. JSON numbers without a
// fractional part are rendered as integers so numeric group identifiers
// compare cleanly against configured mappings.
func AsString(v any) (string, bool) {
	switch n := v.(type) {
	case string:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return strconv.FormatInt(int64(n), 10), true
		}
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(n), true
	default:
		return "", false
	}
}
