package ast

import "strings"

// ReferenceByName is a non-owning, name-resolved link from one node to
// another. The referred node lives elsewhere in the tree; the reference never
// implies containment and is resolved lazily against a candidate list.
type ReferenceByName[T PossiblyNamed] struct {
	Name     string
	referred T
	resolved bool
}

// NewReferenceByName creates an unresolved reference to the given name.
func NewReferenceByName[T PossiblyNamed](name string) *ReferenceByName[T] {
	return &ReferenceByName[T]{Name: name}
}

// Resolved reports whether the reference points at an actual node.
func (r *ReferenceByName[T]) Resolved() bool {
	return r.resolved
}

// Referred returns the resolved target. The second result is false while the
// reference is unresolved.
func (r *ReferenceByName[T]) Referred() (T, bool) {
	return r.referred, r.resolved
}

// ResolveTo points the reference at the given node.
func (r *ReferenceByName[T]) ResolveTo(target T) {
	r.referred = target
	r.resolved = true
}

// TryToResolve scans candidates for a node whose name matches and resolves
// the reference to the first match. Reports whether resolution succeeded.
func (r *ReferenceByName[T]) TryToResolve(candidates []T, caseInsensitive bool) bool {
	for _, candidate := range candidates {
		name := candidate.GetName()
		if name == "" {
			continue
		}

		matches := name == r.Name
		if !matches && caseInsensitive {
			matches = strings.EqualFold(name, r.Name)
		}

		if matches {
			r.ResolveTo(candidate)

			return true
		}
	}

	return false
}

func (r *ReferenceByName[T]) String() string {
	if r.resolved {
		return "Ref(" + r.Name + ")[Solved]"
	}

	return "Ref(" + r.Name + ")[Unsolved]"
}
