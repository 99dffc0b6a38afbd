// Package dataset loads sales exports into the pipeline's input shape.
package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/noah-isme/sellerstats/internal/salesstats"
)

// Stdin is the path that selects standard input in LoadFile.
const Stdin = "-"

// ErrMalformed marks documents that are not valid JSON at all, as opposed to
// valid JSON of the wrong shape. Both also match salesstats.ErrInvalidInput.
var ErrMalformed = errors.New("malformed JSON")

// Decode reads one JSON document with sellers, products and purchase_records.
// Unknown fields are ignored since exports usually carry extra columns.
func Decode(r io.Reader) (*salesstats.Input, error) {
	var in salesstats.Input
	dec := json.NewDecoder(r)
	if err := dec.Decode(&in); err != nil {
		var syntaxErr *json.SyntaxError
		switch {
		case errors.Is(err, io.EOF):
			return nil, fmt.Errorf("%w: %w: empty document", salesstats.ErrInvalidInput, ErrMalformed)
		case errors.Is(err, io.ErrUnexpectedEOF), errors.As(err, &syntaxErr):
			return nil, fmt.Errorf("%w: %w: %w", salesstats.ErrInvalidInput, ErrMalformed, err)
		default:
			return nil, fmt.Errorf("%w: decode: %w", salesstats.ErrInvalidInput, err)
		}
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: %w: trailing data after document", salesstats.ErrInvalidInput, ErrMalformed)
	}
	return &in, nil
}

// LoadFile decodes the dataset stored at path, or stdin when path is "-".
func LoadFile(path string) (*salesstats.Input, error) {
	if path == Stdin {
		return Decode(bufio.NewReader(os.Stdin))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Decode(bufio.NewReader(f))
}
