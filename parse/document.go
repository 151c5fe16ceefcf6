// Package parse loads TOML documents for the command line tools. The
// lexer, the syntax tree and the parser live in its subpackages.
package parse

import (
	"errors"

	"github.com/dzjyyds666/tomlfmt/format"
	"github.com/dzjyyds666/tomlfmt/parse/toml"
	"github.com/dzjyyds666/tomlfmt/pkg"
)

// Document is a parsed source file. Name is "-" for stdin.
type Document struct {
	Name   string
	Source string
	*toml.Result
}

// Load reads and parses a file, or stdin when path is "-".
func Load(path string, opts toml.Options) (*Document, error) {
	source, err := pkg.ReadInput(path)
	if err != nil {
		return nil, err
	}
	return New(path, source, opts), nil
}

func New(name, source string, opts toml.Options) *Document {
	return &Document{
		Name:   name,
		Source: source,
		Result: toml.ParseWithOptions(source, opts),
	}
}

// Problems returns the syntax diagnostics. With semantic set, a document
// without syntax errors is also decoded and the first semantic error, such
// as a duplicate key, is returned.
func (d *Document) Problems(semantic bool) ([]toml.Diagnostic, error) {
	if !d.OK() || !semantic {
		return d.Diagnostics, nil
	}
	if _, err := toml.DecodeTree(d.Tree); err != nil {
		var diag toml.Diagnostic
		if !errors.As(err, &diag) {
			return nil, err
		}
		return []toml.Diagnostic{diag}, nil
	}
	return nil, nil
}

// Position returns the 1-based line and column of a byte offset.
func (d *Document) Position(offset int) (line, col int) {
	return toml.LineCol(d.Source, offset)
}

// Format returns the formatted source and whether it differs from the
// original.
func (d *Document) Format(opts format.Options) (string, bool) {
	out := format.FormatTree(d.Tree, opts)
	return out, out != d.Source
}
