package run

import (
	"fmt"
	"strings"
)

// Format selects the encoding of records inside a run.
type Format string

const (
	// FormatText stores one canonical decimal number per line.
	FormatText Format = "text"
	// FormatSSTable stores a binary sorted table with a verified trailer.
	FormatSSTable Format = "sstable"
	// FormatCBOR stores one CBOR integer per record.
	FormatCBOR Format = "cbor"
)

// Compression selects the block compression wrapped around a run.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
	CompressionS2   Compression = "s2"
)

// Options configures how runs are encoded.
type Options struct {
	Format      Format
	Compression Compression
}

// DefaultOptions returns plain text runs.
func DefaultOptions() Options {
	return Options{
		Format:      FormatText,
		Compression: CompressionNone,
	}
}

func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = FormatText
	}
	if o.Compression == "" {
		o.Compression = CompressionNone
	}
	return o
}

// Validate reports unknown formats or compressions.
func (o Options) Validate() error {
	o = o.withDefaults()
	if _, err := ParseFormat(string(o.Format)); err != nil {
		return err
	}
	if _, err := ParseCompression(string(o.Compression)); err != nil {
		return err
	}
	return nil
}

// Ext returns the file extension used for runs written with o.
func (o Options) Ext() string {
	o = o.withDefaults()
	var ext string
	switch o.Format {
	case FormatSSTable:
		ext = ".sst"
	case FormatCBOR:
		ext = ".cbor"
	default:
		ext = ".txt"
	}
	switch o.Compression {
	case CompressionZstd:
		ext += ".zst"
	case CompressionS2:
		ext += ".s2"
	}
	return ext
}

// Name returns the storage name of the index-th run.
func (o Options) Name(index int) string {
	return fmt.Sprintf("run-%06d%s", index, o.Ext())
}

// MergedName returns the storage name of the merged stream.
func (o Options) MergedName() string {
	return "merged" + o.Ext()
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatSSTable, FormatCBOR:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("run: unknown format %q", s)
	}
}

// ParseCompression parses a compression name, case-insensitively.
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(strings.ToLower(strings.TrimSpace(s))); c {
	case CompressionNone, CompressionZstd, CompressionS2:
		return c, nil
	case "":
		return CompressionNone, nil
	default:
		return "", fmt.Errorf("run: unknown compression %q", s)
	}
}
