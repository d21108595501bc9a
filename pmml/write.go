package pmml

import (
	"bytes"
	"encoding/xml"
	"io"

	"github.com/YuminosukeSato/lgbm2pmml/pkg/errors"
)

const indent = "    "

// Marshal serializes the document with an XML declaration.
func (p *PMML) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := p.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo writes the XML document to w.
func (p *PMML) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if _, err := io.WriteString(cw, xml.Header); err != nil {
		return cw.n, errors.Wrap(err, "writing xml header")
	}
	enc := xml.NewEncoder(cw)
	enc.Indent("", indent)
	if err := enc.Encode(p); err != nil {
		return cw.n, errors.Wrap(err, "encoding pmml")
	}
	if _, err := io.WriteString(cw, "\n"); err != nil {
		return cw.n, errors.Wrap(err, "writing trailing newline")
	}
	return cw.n, nil
}

// Parse reads a document produced by WriteTo.
func Parse(r io.Reader) (*PMML, error) {
	var doc PMML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding pmml")
	}
	return &doc, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
