// Package export serializes finished trees together with their schema into
// object-graph documents for cross-tool interchange, and reads them back.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"
)

// File extensions for the supported codecs.
const (
	jsonExtension = ".json"
	yamlExtension = ".yaml"
	lz4Extension  = ".json.lz4"
)

// Default indentation for pretty-printed JSON documents.
const defaultIndent = "  "

// Codec defines how a document is serialized and deserialized.
type Codec interface {
	// Encode writes the document to the writer.
	Encode(w io.Writer, doc any) error
	// Decode reads the document from the reader.
	Decode(r io.Reader, doc any) error
	// Extension returns the file extension for this codec.
	Extension() string
}

// JSONCodec implements Codec using JSON encoding with optional indentation.
type JSONCodec struct {
	// Indent specifies the indentation string. Empty string means compact.
	Indent string
}

// NewJSONCodec creates a JSON codec with pretty-printing.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode implements Codec.Encode.
func (c *JSONCodec) Encode(w io.Writer, doc any) error {
	encoder := json.NewEncoder(w)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(doc)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode.
func (c *JSONCodec) Decode(r io.Reader, doc any) error {
	err := json.NewDecoder(r).Decode(doc)
	if err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	return nil
}

// Extension implements Codec.Extension.
func (c *JSONCodec) Extension() string {
	return jsonExtension
}

// YAMLCodec implements Codec using YAML encoding.
type YAMLCodec struct{}

// NewYAMLCodec creates a YAML codec.
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Encode implements Codec.Encode.
func (c *YAMLCodec) Encode(w io.Writer, doc any) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()

	err := encoder.Encode(doc)
	if err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode.
func (c *YAMLCodec) Decode(r io.Reader, doc any) error {
	err := yaml.NewDecoder(r).Decode(doc)
	if err != nil {
		return fmt.Errorf("yaml decode: %w", err)
	}

	return nil
}

// Extension implements Codec.Extension.
func (c *YAMLCodec) Extension() string {
	return yamlExtension
}

// LZ4Codec wraps compact JSON in an LZ4 frame, for large model files.
type LZ4Codec struct{}

// NewLZ4Codec creates an LZ4-compressed JSON codec.
func NewLZ4Codec() *LZ4Codec {
	return &LZ4Codec{}
}

// Encode implements Codec.Encode.
func (c *LZ4Codec) Encode(w io.Writer, doc any) error {
	compressor := lz4.NewWriter(w)

	err := json.NewEncoder(compressor).Encode(doc)
	if err != nil {
		return fmt.Errorf("lz4 encode: %w", err)
	}

	err = compressor.Close()
	if err != nil {
		return fmt.Errorf("lz4 flush: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode.
func (c *LZ4Codec) Decode(r io.Reader, doc any) error {
	err := json.NewDecoder(lz4.NewReader(r)).Decode(doc)
	if err != nil {
		return fmt.Errorf("lz4 decode: %w", err)
	}

	return nil
}

// Extension implements Codec.Extension.
func (c *LZ4Codec) Extension() string {
	return lz4Extension
}

// CodecForExtension returns the codec matching a file name, defaulting to
// JSON.
func CodecForExtension(filename string) Codec {
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		return NewYAMLCodec()
	case ".lz4":
		return NewLZ4Codec()
	default:
		return NewJSONCodec()
	}
}

// SaveDocument writes a document to a file in the given directory. The file
// name is the basename plus the codec's extension.
func SaveDocument(dir, basename string, codec Codec, doc *Document) error {
	path := filepath.Join(dir, basename+codec.Extension())

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create document file: %w", err)
	}
	defer file.Close()

	err = codec.Encode(file, doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	return nil
}

// LoadDocument reads a document from a file in the given directory.
func LoadDocument(dir, basename string, codec Codec) (*Document, error) {
	path := filepath.Join(dir, basename+codec.Extension())

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document file: %w", err)
	}
	defer file.Close()

	var doc Document

	err = codec.Decode(file, &doc)
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	return &doc, nil
}
