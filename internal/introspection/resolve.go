package introspection

import (
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/hanpama/graphmock/internal/schema"
)

func (r *runtime) schemaField(s *schema.Schema, field string) any {
	switch field {
	case "description":
		return optional(s.Description)
	case "types":
		out := make([]*schema.Type, 0, len(s.Types))
		for _, t := range s.Types {
			out = append(out, t)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out
	case "queryType":
		return s.GetQueryType()
	case "mutationType":
		return s.GetMutationType()
	case "subscriptionType":
		return s.GetSubscriptionType()
	case "directives":
		out := make([]*schema.Directive, 0, len(s.Directives))
		for _, d := range s.Directives {
			out = append(out, d)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out
	}
	return nil
}

func (r *runtime) typeField(t *schema.Type, field string, args map[string]any) any {
	switch field {
	case "kind":
		return string(t.Kind)
	case "name":
		return t.Name
	case "description":
		return optional(t.Description)
	case "specifiedByURL":
		if t.SpecifiedByURL == nil {
			return nil
		}
		return *t.SpecifiedByURL
	case "fields":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil
		}
		out := []*schema.Field{}
		for _, f := range t.Fields {
			if strings.HasPrefix(f.Name, "__") || (f.IsDeprecated && !includeDeprecated(args)) {
				continue
			}
			out = append(out, f)
		}
		return out
	case "interfaces":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil
		}
		return r.namedTypes(t.Interfaces)
	case "possibleTypes":
		if !t.IsAbstract() {
			return nil
		}
		return r.namedTypes(t.PossibleTypes)
	case "enumValues":
		if t.Kind != schema.TypeKindEnum {
			return nil
		}
		out := []*schema.EnumValue{}
		for _, ev := range t.EnumValues {
			if !ev.IsDeprecated || includeDeprecated(args) {
				out = append(out, ev)
			}
		}
		return out
	case "inputFields":
		if t.Kind != schema.TypeKindInputObject {
			return nil
		}
		return inputValues(t.InputFields, args)
	case "isOneOf":
		if t.Kind != schema.TypeKindInputObject {
			return nil
		}
		return t.OneOf
	}
	// ofType and anything else a named type does not carry.
	return nil
}

// wrapperField resolves __Type fields of a List or Non-Null wrapper.
func (r *runtime) wrapperField(ref *schema.TypeRef, field string) any {
	switch field {
	case "kind":
		return string(ref.Kind)
	case "ofType":
		return r.typeOf(ref.OfType)
	}
	return nil
}

func (r *runtime) fieldField(f *schema.Field, field string, args map[string]any) any {
	switch field {
	case "name":
		return f.Name
	case "description":
		return optional(f.Description)
	case "args":
		return inputValues(f.Arguments, args)
	case "type":
		return r.typeOf(f.Type)
	case "isDeprecated":
		return f.IsDeprecated
	case "deprecationReason":
		return reason(f.IsDeprecated, f.DeprecationReason)
	}
	return nil
}

func (r *runtime) inputValueField(v *schema.InputValue, field string) any {
	switch field {
	case "name":
		return v.Name
	case "description":
		return optional(v.Description)
	case "type":
		return r.typeOf(v.Type)
	case "defaultValue":
		if v.DefaultValue == nil {
			return nil
		}
		return r.printValue(v.Type, v.DefaultValue)
	case "isDeprecated":
		return v.IsDeprecated
	case "deprecationReason":
		return reason(v.IsDeprecated, v.DeprecationReason)
	}
	return nil
}

func enumValueField(ev *schema.EnumValue, field string) any {
	switch field {
	case "name":
		return ev.Name
	case "description":
		return optional(ev.Description)
	case "isDeprecated":
		return ev.IsDeprecated
	case "deprecationReason":
		return reason(ev.IsDeprecated, ev.DeprecationReason)
	}
	return nil
}

func directiveField(d *schema.Directive, field string, args map[string]any) any {
	switch field {
	case "name":
		return d.Name
	case "description":
		return optional(d.Description)
	case "isRepeatable":
		return d.IsRepeatable
	case "locations":
		return d.Locations
	case "args":
		return inputValues(d.Arguments, args)
	}
	return nil
}

// typeOf returns the named type definition for named references and the
// reference itself for wrappers.
func (r *runtime) typeOf(ref *schema.TypeRef) any {
	if ref == nil {
		return nil
	}
	if ref.Kind == schema.TypeRefKindNamed {
		if t := r.schema.Types[ref.Named]; t != nil {
			return t
		}
		return nil
	}
	return ref
}

func (r *runtime) namedTypes(names []string) []*schema.Type {
	out := make([]*schema.Type, 0, len(names))
	for _, name := range names {
		if t := r.schema.Types[name]; t != nil {
			out = append(out, t)
		}
	}
	return out
}

// printValue renders v as a GraphQL literal of type ref.
func (r *runtime) printValue(ref *schema.TypeRef, v any) string {
	if v == nil {
		return "null"
	}
	ref = ref.Nullable()
	switch val := v.(type) {
	case string:
		if t := r.schema.NamedTypeOf(ref); t != nil && t.Kind == schema.TypeKindEnum {
			return val
		}
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%q", val)
		}
		return string(b)
	case []any:
		elem := ref
		if ref.Kind == schema.TypeRefKindList {
			elem = ref.OfType
		}
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = r.printValue(elem, item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		input := r.schema.NamedTypeOf(ref)
		var parts []string
		if input != nil {
			for _, f := range input.InputFields {
				if fv, ok := val[f.Name]; ok {
					parts = append(parts, f.Name+": "+r.printValue(f.Type, fv))
				}
			}
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprint(v)
}

func inputValues(values []*schema.InputValue, args map[string]any) []*schema.InputValue {
	out := []*schema.InputValue{}
	for _, v := range values {
		if !v.IsDeprecated || includeDeprecated(args) {
			out = append(out, v)
		}
	}
	return out
}

func includeDeprecated(args map[string]any) bool {
	b, _ := args["includeDeprecated"].(bool)
	return b
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func reason(deprecated bool, text string) any {
	if !deprecated {
		return nil
	}
	return text
}
