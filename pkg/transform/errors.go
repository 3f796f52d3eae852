package transform

import (
	"fmt"
	"reflect"
)

// CollectionTransformError reports that Transform was invoked directly on a
// collection. Multiplicity is the business of child descriptors, never of the
// entry point, so this is a programmer error.
type CollectionTransformError struct {
	Type reflect.Type
}

func (e *CollectionTransformError) Error() string {
	return fmt.Sprintf("transform invoked directly on collection type %v; transform the elements through a child mapping instead", e.Type)
}

// UnmappedNodeError reports that no factory matched a source type and the
// generic-node fallback is disabled.
type UnmappedNodeError struct {
	Type reflect.Type
}

func (e *UnmappedNodeError) Error() string {
	return fmt.Sprintf("no factory registered for source type %v", e.Type)
}

// ConstructorFailure wraps a failure raised by a registered factory's
// constructor. With fallback disabled it aborts the whole transformation.
type ConstructorFailure struct {
	SourceType reflect.Type
	Err        error
}

func (e *ConstructorFailure) Error() string {
	return fmt.Sprintf("constructor for source type %v failed: %v", e.SourceType, e.Err)
}

func (e *ConstructorFailure) Unwrap() error {
	return e.Err
}

// PathResolutionError reports that a dotted child-path segment could not be
// resolved against the actual runtime value. There is no safe default, so it
// always aborts the call.
type PathResolutionError struct {
	Path    string
	Segment string
	Type    reflect.Type
}

func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("path %q: segment %q cannot be resolved on type %v", e.Path, e.Segment, e.Type)
}

// RegistrationError reports an invalid factory registration, such as a
// trivial registration for a destination type that cannot be instantiated.
type RegistrationError struct {
	Type   reflect.Type
	Reason string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("cannot register factory for %v: %s", e.Type, e.Reason)
}
