package mock

import "github.com/hanpama/graphmock/internal/schema"

// Provider proposes a base mock for field of parent, or returns an absent
// Value to defer to the next provider. chain is the full provider list so a
// provider can delegate element mocks back to it.
type Provider func(s *schema.Schema, parent *schema.Type, field *schema.Field, chain []Provider) Value

// Provide runs chain in order and returns the first non-absent mock.
func Provide(chain []Provider, s *schema.Schema, parent *schema.Type, field *schema.Field) Value {
	for _, p := range chain {
		if v := p(s, parent, field, chain); !v.IsAbsent() {
			return v
		}
	}
	return Value{}
}
