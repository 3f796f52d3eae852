package transform

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FieldResolver lets source values that are not plain structs take part in
// dotted-path child resolution. First-stage parse artifacts wrapping foreign
// trees implement it to expose their named fields.
type FieldResolver interface {
	// ResolveField returns the value of the named field and whether the
	// field exists on this value.
	ResolveField(name string) (any, bool)
}

// pathAccessor is a dotted source path ("a.b.c") compiled once at
// registration into an ordered list of segments. Each segment memoizes its
// accessor per encountered concrete type, so repeated resolution never walks
// names again.
type pathAccessor struct {
	path     string
	segments []*pathSegment
}

type pathSegment struct {
	name      string
	accessors map[reflect.Type]segmentAccessor
}

type segmentAccessor func(value reflect.Value) (reflect.Value, bool)

func compilePath(path string) *pathAccessor {
	parts := strings.Split(path, ".")
	segments := make([]*pathSegment, 0, len(parts))

	for _, part := range parts {
		segments = append(segments, &pathSegment{
			name:      part,
			accessors: make(map[reflect.Type]segmentAccessor),
		})
	}

	return &pathAccessor{path: path, segments: segments}
}

// get resolves the compiled path against a source value. Absence propagates:
// a nil intermediate yields nil. A named segment missing on a non-nil value
// is a PathResolutionError. Intermediate collections are mapped element-wise.
func (pa *pathAccessor) get(source any) (any, error) {
	current := source

	for _, segment := range pa.segments {
		if current == nil {
			return nil, nil
		}

		next, err := pa.resolveSegment(segment, current)
		if err != nil {
			return nil, err
		}

		current = next
	}

	return current, nil
}

func (pa *pathAccessor) resolveSegment(segment *pathSegment, current any) (any, error) {
	value := reflect.ValueOf(current)

	switch value.Kind() {
	case reflect.Slice, reflect.Array:
		// Map the lookup across every element. Flattening nested
		// collections is the caller's responsibility.
		mapped := make([]any, 0, value.Len())

		for idx := range value.Len() {
			element := value.Index(idx)
			if (element.Kind() == reflect.Pointer || element.Kind() == reflect.Interface) && element.IsNil() {
				continue
			}

			resolved, err := pa.resolveSegment(segment, element.Interface())
			if err != nil {
				return nil, err
			}

			mapped = append(mapped, resolved)
		}

		return mapped, nil
	case reflect.Pointer, reflect.Interface:
		if value.IsNil() {
			return nil, nil
		}
	}

	if resolver, ok := current.(FieldResolver); ok {
		resolved, found := resolver.ResolveField(segment.name)
		if !found {
			return nil, &PathResolutionError{Path: pa.path, Segment: segment.name, Type: value.Type()}
		}

		return resolved, nil
	}

	accessor, err := pa.accessorFor(segment, value.Type())
	if err != nil {
		return nil, err
	}

	resolved, valid := accessor(value)
	if !valid {
		return nil, nil
	}

	return resolved.Interface(), nil
}

// accessorFor compiles or reuses the accessor for the segment on a concrete
// type: a field with the segment's name (exact match first, exported-case
// fallback), or a zero-argument single-result method.
func (pa *pathAccessor) accessorFor(segment *pathSegment, t reflect.Type) (segmentAccessor, error) {
	if accessor, ok := segment.accessors[t]; ok {
		return accessor, nil
	}

	accessor := buildAccessor(segment.name, t)
	if accessor == nil {
		return nil, &PathResolutionError{Path: pa.path, Segment: segment.name, Type: t}
	}

	segment.accessors[t] = accessor

	return accessor, nil
}

func buildAccessor(name string, t reflect.Type) segmentAccessor {
	structType := t
	indirections := 0

	for structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
		indirections++
	}

	if structType.Kind() == reflect.Struct {
		for _, candidate := range []string{name, exportedName(name)} {
			field, ok := structType.FieldByName(candidate)
			if !ok || field.PkgPath != "" {
				continue
			}

			index := field.Index

			return func(value reflect.Value) (reflect.Value, bool) {
				for range indirections {
					if value.IsNil() {
						return reflect.Value{}, false
					}

					value = value.Elem()
				}

				resolved, err := value.FieldByIndexErr(index)
				if err != nil {
					return reflect.Value{}, false
				}

				return resolved, true
			}
		}
	}

	for _, candidate := range []string{name, exportedName(name)} {
		method, ok := t.MethodByName(candidate)
		if !ok || method.Type.NumIn() != 1 || method.Type.NumOut() != 1 {
			continue
		}

		index := method.Index

		return func(value reflect.Value) (reflect.Value, bool) {
			results := value.Method(index).Call(nil)

			return results[0], true
		}
	}

	return nil
}

// exportedName upper-cases the first rune so that lower-case path segments
// can address exported Go fields and accessors.
func exportedName(name string) string {
	if name == "" {
		return name
	}

	first, width := utf8.DecodeRuneInString(name)

	return string(unicode.ToUpper(first)) + name[width:]
}
