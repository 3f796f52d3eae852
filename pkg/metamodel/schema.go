// Package metamodel builds an external schema description of a destination
// node type hierarchy: classifiers with attributes, containments, and
// references, derived from the same property introspection contract the
// transformation engine uses.
package metamodel

import (
	"fmt"
	"reflect"
)

// FeatureKind tells how a classifier feature maps onto the node model.
type FeatureKind string

// Feature kinds.
const (
	// FeatureAttribute is a data-valued feature with a primitive or
	// enumeration type.
	FeatureAttribute FeatureKind = "attribute"
	// FeatureContainment is a node-valued feature owning its targets.
	FeatureContainment FeatureKind = "containment"
	// FeatureReference is a non-owning, name-resolved link.
	FeatureReference FeatureKind = "reference"
)

// Feature is one externally visible property of a classifier. Its name and
// multiplicity match the introspected node property by construction.
type Feature struct {
	Name     string      `json:"name" yaml:"name"`
	Kind     FeatureKind `json:"kind" yaml:"kind"`
	Type     string      `json:"type" yaml:"type"`
	Optional bool        `json:"optional,omitempty" yaml:"optional,omitempty"`
	Many     bool        `json:"many,omitempty" yaml:"many,omitempty"`
}

// Classifier is the external schema's name for one node type.
type Classifier struct {
	Name     string    `json:"name" yaml:"name"`
	Super    string    `json:"super,omitempty" yaml:"super,omitempty"`
	Abstract bool      `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	External bool      `json:"external,omitempty" yaml:"external,omitempty"`
	Features []Feature `json:"features,omitempty" yaml:"features,omitempty"`
}

// Enumeration is a closed set of named literals usable as an attribute type.
type Enumeration struct {
	Name     string   `json:"name" yaml:"name"`
	Literals []string `json:"literals" yaml:"literals"`
}

// Schema is the complete external description of one destination type
// hierarchy, ready for serialization and interchange.
type Schema struct {
	Name         string         `json:"name" yaml:"name"`
	Classifiers  []*Classifier  `json:"classifiers" yaml:"classifiers"`
	Enumerations []*Enumeration `json:"enumerations,omitempty" yaml:"enumerations,omitempty"`
}

// ClassifierNamed returns the classifier with the given externally visible
// name, or nil.
func (s *Schema) ClassifierNamed(name string) *Classifier {
	for _, classifier := range s.Classifiers {
		if classifier.Name == name {
			return classifier
		}
	}

	return nil
}

// FeatureNamed returns the feature with the given name, or nil.
func (c *Classifier) FeatureNamed(name string) *Feature {
	for idx := range c.Features {
		if c.Features[idx].Name == name {
			return &c.Features[idx]
		}
	}

	return nil
}

// DuplicateClassifierError reports two distinct types mapping to the same
// externally visible classifier name within one schema.
type DuplicateClassifierError struct {
	Name   string
	First  reflect.Type
	Second reflect.Type
}

func (e *DuplicateClassifierError) Error() string {
	return fmt.Sprintf("classifier name %q claimed by both %v and %v", e.Name, e.First, e.Second)
}

// AttributeMappingError reports a data-valued property whose type has no
// recognized primitive or enumeration mapping.
type AttributeMappingError struct {
	Classifier string
	Property   string
	Type       reflect.Type
}

func (e *AttributeMappingError) Error() string {
	return fmt.Sprintf("classifier %q, attribute %q: no primitive or enumeration mapping for %v", e.Classifier, e.Property, e.Type)
}
