package scan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-json-experiment/json/jsontext"
)

// Document is one parsed JSON source file.
type Document struct {
	Path string
	Root Value
}

// ParseError reports a source file that could not be read or decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads and decodes the JSON document at path.
// Any failure is returned as a *ParseError.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, &ParseError{Path: path, Err: err}
	}
	root, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Document{}, &ParseError{Path: path, Err: err}
	}
	return Document{Path: path, Root: root}, nil
}

// Decode reads exactly one JSON value from r. Duplicate object keys are kept
// in document order; trailing data after the value is an error.
func Decode(r io.Reader) (Value, error) {
	dec := jsontext.NewDecoder(r, jsontext.AllowDuplicateNames(true))
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.ReadToken(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return Value{}, fmt.Errorf("decode json: %w", err)
	}
	return v, nil
}

func decodeValue(dec *jsontext.Decoder) (Value, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Value{}, fmt.Errorf("decode json: %w", err)
	}

	switch tok.Kind() {
	case 'n':
		return Value{Kind: KindNull}, nil
	case 't', 'f':
		return Value{Kind: KindBool, Bool: tok.Bool()}, nil
	case '"':
		return String(tok.String()), nil
	case '0':
		return Value{Kind: KindNumber, Text: tok.String()}, nil
	case '{':
		obj := Value{Kind: KindObject}
		for dec.PeekKind() != '}' {
			keyTok, err := dec.ReadToken()
			if err != nil {
				return Value{}, fmt.Errorf("decode json object key: %w", err)
			}
			// The token is invalidated by the next read.
			key := keyTok.String()
			val, err := decodeValue(dec)
			if err != nil {
				return Value{}, err
			}
			obj.Members = append(obj.Members, Member{Key: key, Value: val})
		}
		if _, err := dec.ReadToken(); err != nil {
			return Value{}, fmt.Errorf("decode json object end: %w", err)
		}
		return obj, nil
	case '[':
		arr := Value{Kind: KindArray}
		for dec.PeekKind() != ']' {
			item, err := decodeValue(dec)
			if err != nil {
				return Value{}, err
			}
			arr.Items = append(arr.Items, item)
		}
		if _, err := dec.ReadToken(); err != nil {
			return Value{}, fmt.Errorf("decode json array end: %w", err)
		}
		return arr, nil
	default:
		return Value{}, fmt.Errorf("decode json: unexpected token %v", tok.Kind())
	}
}
