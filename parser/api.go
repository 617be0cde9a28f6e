package parser

import "io"

// ParseReader consumes program source from an io.Reader and parses it.
func ParseReader(r io.Reader) ([]Stmt, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}
