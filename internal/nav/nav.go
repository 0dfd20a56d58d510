// Package nav models in-app navigation: locations with query parameters
// and a history that distinguishes push from replace.
package nav

import (
	"maps"
	"net/url"
	"sort"
	"strings"
)

// Location is a path plus single-valued query parameters.
type Location struct {
	Path  string
	Query map[string]string
}

// Parse reads "path?a=1&b=2". Repeated parameters keep their first value.
func Parse(raw string) Location {
	path, rawQuery, _ := strings.Cut(raw, "?")
	loc := Location{Path: cleanPath(path)}
	if rawQuery == "" {
		return loc
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return loc
	}
	loc.Query = make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			loc.Query[k] = v[0]
		}
	}
	return loc
}

// String renders the location with query keys sorted.
func (l Location) String() string {
	if len(l.Query) == 0 {
		return l.Path
	}
	keys := make([]string, 0, len(l.Query))
	for k := range l.Query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(l.Path)
	b.WriteByte('?')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(l.Query[k]))
	}
	return b.String()
}

// WithQuery returns a copy of l with key set to value. l is not modified.
func (l Location) WithQuery(key, value string) Location {
	q := make(map[string]string, len(l.Query)+1)
	maps.Copy(q, l.Query)
	q[key] = value
	return Location{Path: l.Path, Query: q}
}

// Clone returns a deep copy of l.
func (l Location) Clone() Location {
	if l.Query == nil {
		return Location{Path: l.Path}
	}
	return Location{Path: l.Path, Query: maps.Clone(l.Query)}
}

// Segments splits the path into its non-empty parts.
func (l Location) Segments() []string {
	parts := strings.Split(strings.Trim(l.Path, "/"), "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}
