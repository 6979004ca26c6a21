// Package path defines the property paths carried by mutation records.
//
// A Path is an ordered sequence of property keys, root first. Keys are
// opaque strings; array indices appear in their decimal string form. The
// textual syntax is "a.b[0].c" with single-quoted fields for keys that
// contain special characters.
package path

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses one location in a state tree. The zero value (nil or
// empty) addresses the root.
type Path []string

// IsRoot reports whether p addresses the whole state.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Child returns a new path extending p by one key. The result never
// aliases p's backing array, so child paths taken from the same parent
// stay independent.
func (p Path) Child(key string) Path {
	res := make(Path, len(p)+1)
	copy(res, p)
	res[len(p)] = key
	return res
}

// String renders p in kinded-path syntax: object fields joined with '.',
// numeric keys bracketed as indices. The root renders as "".
func (p Path) String() string {
	var b strings.Builder
	for _, key := range p {
		if isIndex(key) {
			b.WriteString("[" + key + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(quoteField(key))
	}
	return b.String()
}

func isIndex(key string) bool {
	if key == "" {
		return false
	}
	_, err := strconv.ParseUint(key, 10, 64)
	return err == nil
}

func quoteField(f string) string {
	if f != "" && strings.IndexAny(f, "'.$[] ") == -1 {
		return f
	}
	return "'" + strings.Replace(f, "'", "\\'", -1) + "'"
}

// Parse parses kinded-path syntax into a Path. The empty string parses
// to the root path.
func Parse(s string) (Path, error) {
	var res Path
	rest := s
	for len(rest) > 0 {
		switch rest[0] {
		case '.':
			if len(res) == 0 {
				return nil, fmt.Errorf("path %q: unexpected leading '.'", s)
			}
			rest = rest[1:]
			if len(rest) == 0 {
				return nil, fmt.Errorf("path %q: expected field after '.'", s)
			}
			field, r, err := parseField(rest)
			if err != nil {
				return nil, fmt.Errorf("path %q: %w", s, err)
			}
			res = append(res, field)
			rest = r
		case '[':
			i := strings.IndexByte(rest[1:], ']')
			if i == -1 {
				return nil, fmt.Errorf("path %q: expected '[' <index> ']'", s)
			}
			idx := rest[1 : i+1]
			if _, err := strconv.ParseUint(idx, 10, 64); err != nil {
				return nil, fmt.Errorf("path %q: bad index %q", s, idx)
			}
			res = append(res, idx)
			rest = rest[i+2:]
		default:
			field, r, err := parseField(rest)
			if err != nil {
				return nil, fmt.Errorf("path %q: %w", s, err)
			}
			res = append(res, field)
			rest = r
		}
	}
	return res, nil
}

func parseField(frag string) (field, rest string, err error) {
	if len(frag) == 0 {
		return "", "", fmt.Errorf("expected field at end of string")
	}
	if frag[0] != '\'' {
		i := strings.IndexAny(frag, ".[")
		if i == -1 {
			return frag, "", nil
		}
		if i == 0 {
			return "", "", fmt.Errorf("expected field, got %q", frag)
		}
		return frag[:i], frag[i:], nil
	}
	escaped := false
	res := make([]byte, 0, len(frag))
	for i := 1; i < len(frag); i++ {
		c := frag[i]
		switch c {
		case '\\':
			escaped = true
		case '\'':
			if !escaped {
				return string(res), frag[i+1:], nil
			}
			fallthrough
		default:
			escaped = false
			res = append(res, c)
		}
	}
	return "", "", fmt.Errorf("end of string scanning for \"'\"")
}
