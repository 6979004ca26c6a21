package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	observable "github.com/syogandev/go-observable"
)

type opKind int

const (
	opSet opKind = iota
	opReplace
	opBegin
	opEnd
	opFlush
)

type op struct {
	kind  opKind
	path  string
	value any
	line  int
}

// parseScript reads the line-oriented write script: one operation per
// line, values in YAML flow syntax, '#' comments.
func parseScript(r io.Reader) ([]op, error) {
	var ops []op
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		switch verb {
		case "set":
			p, raw, ok := strings.Cut(rest, " ")
			if !ok {
				return nil, fmt.Errorf("line %d: usage: set <path> <value>", lineNo)
			}
			v, err := parseValue(raw)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			ops = append(ops, op{kind: opSet, path: p, value: v, line: lineNo})
		case "replace":
			v, err := parseValue(rest)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			ops = append(ops, op{kind: opReplace, value: v, line: lineNo})
		case "begin":
			ops = append(ops, op{kind: opBegin, line: lineNo})
		case "end":
			ops = append(ops, op{kind: opEnd, line: lineNo})
		case "flush":
			ops = append(ops, op{kind: opFlush, line: lineNo})
		default:
			return nil, fmt.Errorf("line %d: unknown operation %q", lineNo, verb)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ops, nil
}

func parseValue(raw string) (any, error) {
	if raw == "" {
		return nil, fmt.Errorf("missing value")
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("bad value %q: %w", raw, err)
	}
	return v, nil
}

func runScript(s *observable.State, ops []op) error {
	for _, o := range ops {
		var err error
		switch o.kind {
		case opSet:
			err = s.Set(o.path, o.value)
		case opReplace:
			err = s.Replace(o.value)
		case opBegin:
			err = s.EnableBatch(true)
		case opEnd:
			err = s.EnableBatch(false)
		case opFlush:
			err = s.Update()
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", o.line, err)
		}
	}
	return nil
}

func loadState(file string) (any, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return v, nil
}
