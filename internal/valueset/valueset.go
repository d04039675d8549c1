// Package valueset extracts typed, named input and output value descriptors
// from a processor's declared parameter shapes, structurally, via reflect.
package valueset

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/mapfish/printplan/internal/processor"
	"github.com/zclconf/go-cty/cty"
)

// InputDescriptor describes one named, typed input a processor consumes.
type InputDescriptor struct {
	ExternalName string
	InternalName string
	Type         cty.Type
	HasDefault   bool
	IsAlsoOutput bool
}

// OutputDescriptor describes one named, typed output a processor produces.
type OutputDescriptor struct {
	ExternalName string
	InternalName string
	Type         cty.Type
	Renameable   bool
}

// struct tag name used to override a field's default-derived name, mark it
// as having a default value, as input-and-output, or as a renameable debug
// output. One tag covers every per-field concern without needing a
// separate marker type for each.
const structTag = "plan"

// ErrUnmappedAlias reports that a mapper named fields that do not exist on
// the processor's parameter struct. It collects every offending name in one
// shot, plus the full list of legal names, so one failure reports every
// offending mapping together.
type ErrUnmappedAlias struct {
	Processor string
	Kind      string // "input" or "output"
	Bad       []string
	Legal     []string
}

func (e *ErrUnmappedAlias) Error() string {
	sort.Strings(e.Bad)
	sort.Strings(e.Legal)
	return fmt.Sprintf(
		"one or more of the %s mapping entries of %q do not match a parameter field: %s (legal names: %s)",
		e.Kind, e.Processor, strings.Join(e.Bad, ", "), strings.Join(e.Legal, ", "),
	)
}

// Describe extracts InputDescriptors for p's declared input struct.
func Describe(name string, p processor.Processor) ([]InputDescriptor, error) {
	raw := p.CreateInputParameter()
	if raw == nil {
		return nil, nil
	}

	t := reflect.TypeOf(raw)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("valueset: %q's CreateInputParameter must return a struct or pointer to struct, got %s", name, t.Kind())
	}

	fields := structFields(t)
	legal := fieldNames(fields)

	mapper := p.InputMapper()
	if bad := unmatched(mapper.Values(), legal); len(bad) > 0 {
		return nil, &ErrUnmappedAlias{Processor: name, Kind: "input", Bad: bad, Legal: legal}
	}

	descriptors := make([]InputDescriptor, 0, len(fields))
	for _, f := range fields {
		tag := parseTag(f)
		external := applyPrefix(p.InputPrefix(), mapper.ReverseOrIdentity(f.Name))
		if tag.name != "" {
			external = applyPrefix(p.InputPrefix(), tag.name)
		}
		descriptors = append(descriptors, InputDescriptor{
			ExternalName: external,
			InternalName: f.Name,
			Type:         fieldType(f.Type),
			HasDefault:   tag.hasDefault,
			IsAlsoOutput: tag.isAlsoOutput,
		})
	}
	return descriptors, nil
}

// DescribeOutputs extracts OutputDescriptors for p's declared output struct.
func DescribeOutputs(name string, p processor.Processor) ([]OutputDescriptor, error) {
	ot := p.OutputType()
	if ot == nil {
		return nil, nil
	}
	for ot.Kind() == reflect.Ptr {
		ot = ot.Elem()
	}
	if ot.Kind() != reflect.Struct {
		return nil, fmt.Errorf("valueset: %q's OutputType must name a struct or pointer to struct, got %s", name, ot.Kind())
	}

	fields := structFields(ot)
	legal := fieldNames(fields)

	mapper := p.OutputMapper()
	if bad := unmatched(mapper.Keys(), legal); len(bad) > 0 {
		return nil, &ErrUnmappedAlias{Processor: name, Kind: "output", Bad: bad, Legal: legal}
	}

	descriptors := make([]OutputDescriptor, 0, len(fields))
	for _, f := range fields {
		tag := parseTag(f)
		external := applyPrefix(p.OutputPrefix(), mapper.ForwardOrIdentity(f.Name))
		if tag.name != "" {
			external = applyPrefix(p.OutputPrefix(), tag.name)
		}
		descriptors = append(descriptors, OutputDescriptor{
			ExternalName: external,
			InternalName: f.Name,
			Type:         fieldType(f.Type),
			Renameable:   tag.renameable,
		})
	}
	return descriptors, nil
}

func applyPrefix(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + name
}

func structFields(t reflect.Type) []reflect.StructField {
	out := make([]reflect.StructField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		out = append(out, f)
	}
	return out
}

func fieldNames(fields []reflect.StructField) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Name)
	}
	return out
}

func unmatched(names, legal []string) []string {
	legalSet := make(map[string]bool, len(legal))
	for _, l := range legal {
		legalSet[l] = true
	}
	var bad []string
	for _, n := range names {
		if !legalSet[n] {
			bad = append(bad, n)
		}
	}
	return bad
}

type tagInfo struct {
	name         string
	hasDefault   bool
	isAlsoOutput bool
	renameable   bool
}

// parseTag reads the `plan:"name,opt1,opt2"` struct tag. Recognised options:
// "default" (HasDefaultValue), "alsoOutput" (InputOutputValue), "internal"
// (renameable debug output).
func parseTag(f reflect.StructField) tagInfo {
	raw, ok := f.Tag.Lookup(structTag)
	if !ok {
		return tagInfo{}
	}
	parts := strings.Split(raw, ",")
	info := tagInfo{name: parts[0]}
	for _, opt := range parts[1:] {
		switch opt {
		case "default":
			info.hasDefault = true
		case "alsoOutput":
			info.isAlsoOutput = true
		case "internal":
			info.renameable = true
		}
	}
	return info
}

// fieldType maps a Go field type to a cty.Type used as the descriptor's type
// tag. Primitive kinds map onto their natural cty equivalent, slices and
// arrays onto cty.List, maps onto cty.Map, and pointers onto their element's
// type; anything else (structs included) becomes an opaque capsule type
// keyed by the Go reflect.Type, which still
// gives assignability comparisons their correct, precise semantics (capsule
// types are only equal to themselves) without requiring every processor to
// natively speak cty.
func fieldType(t reflect.Type) cty.Type {
	switch t.Kind() {
	case reflect.String:
		return cty.String
	case reflect.Bool:
		return cty.Bool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return cty.Number
	case reflect.Slice, reflect.Array:
		return cty.List(fieldType(t.Elem()))
	case reflect.Map:
		return cty.Map(fieldType(t.Elem()))
	case reflect.Ptr:
		return fieldType(t.Elem())
	default:
		return capsuleFor(t)
	}
}

var capsuleCache sync.Map // reflect.Type -> cty.Type

func capsuleFor(t reflect.Type) cty.Type {
	if v, ok := capsuleCache.Load(t); ok {
		return v.(cty.Type)
	}
	c := cty.Capsule(t.String(), t)
	capsuleCache.Store(t, c)
	return c
}
