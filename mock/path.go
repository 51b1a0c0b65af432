package mock

import "strings"

// Path locates a value inside a base mock, relative to the field that owns
// it. The nil *Path is the field itself.
type Path struct {
	prev *Path
	key  string
}

// Append returns the path extended by key.
func (p *Path) Append(key string) *Path {
	return &Path{prev: p, key: key}
}

// Keys returns the keys from the outermost to the innermost.
func (p *Path) Keys() []string {
	var keys []string
	for cur := p; cur != nil; cur = cur.prev {
		keys = append(keys, cur.key)
	}
	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}
	return keys
}

func (p *Path) String() string {
	return strings.Join(p.Keys(), ".")
}
