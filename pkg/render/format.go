package render

import (
	"fmt"
	"strings"
)

// Format is an output format understood by the engines.
type Format string

// Supported output formats.
const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatJPG Format = "jpg"
	FormatPDF Format = "pdf"
	FormatDOT Format = "dot"
)

// Formats lists every supported format in display order.
var Formats = []Format{FormatPNG, FormatSVG, FormatJPG, FormatPDF, FormatDOT}

// ParseFormat normalizes s and returns the matching Format.
// "jpeg" is accepted as an alias for jpg and "gv" for dot.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	case "jpg", "jpeg":
		return FormatJPG, nil
	case "pdf":
		return FormatPDF, nil
	case "dot", "gv":
		return FormatDOT, nil
	}
	return "", fmt.Errorf("%w: %q (must be one of: %s)", ErrUnsupportedFormat, s, formatList())
}

// Ext returns the file extension for f, without the leading dot.
func (f Format) Ext() string { return string(f) }

// ContentType returns the MIME type used when serving f over HTTP.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatSVG:
		return "image/svg+xml"
	case FormatJPG:
		return "image/jpeg"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/vnd.graphviz; charset=utf-8"
	}
}

// Binary reports whether f produces non-text output.
func (f Format) Binary() bool {
	return f == FormatPNG || f == FormatJPG || f == FormatPDF
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
