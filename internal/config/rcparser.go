package config

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Parser implements koanf.Parser for KEY=VALUE rc files. Keys are stored
// without the MB_ prefix and lower-cased (MB_CACHE_DIR -> cache_dir).
type Parser struct{}

// RCParser returns the koanf parser for the rc file format.
func RCParser() *Parser { return &Parser{} }

func (p *Parser) Unmarshal(b []byte) (map[string]any, error) {
	out := make(map[string]any)
	sc := bufio.NewScanner(bytes.NewReader(b))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		name, value, ok := strings.Cut(text, "=")
		if !ok {
			return nil, fmt.Errorf("rc line %d: missing '='", line)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("rc line %d: empty key", line)
		}
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		out[key] = strings.Trim(strings.TrimSpace(value), `"`)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Marshal writes known keys in a fixed order, then the rest sorted.
// Empty values are omitted.
func (p *Parser) Marshal(m map[string]any) ([]byte, error) {
	var b bytes.Buffer
	seen := make(map[string]bool, len(m))
	write := func(key string) {
		seen[key] = true
		v, ok := m[key]
		if !ok {
			return
		}
		s := fmt.Sprint(v)
		if s == "" {
			return
		}
		fmt.Fprintf(&b, "%s%s=%s\n", EnvPrefix, strings.ToUpper(key), s)
	}
	for _, k := range keys {
		write(k)
	}
	rest := make([]string, 0, len(m))
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		write(k)
	}
	return b.Bytes(), nil
}
