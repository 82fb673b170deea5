package serialize

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"

	"github.com/thought-machine/rcore/src/value"
)

// Compression is the compression applied to an RDS file.
type Compression int

// The supported compression types. Bzip2 can only be read.
const (
	None Compression = iota
	Gzip
	Xz
	Bzip2
)

var compressionNames = map[string]Compression{
	"none":  None,
	"gzip":  Gzip,
	"xz":    Xz,
	"bzip2": Bzip2,
}

// ParseCompression returns the compression of the given name as saveRDS accepts it.
func ParseCompression(name string) (Compression, error) {
	if c, present := compressionNames[name]; present {
		return c, nil
	}
	return None, fmt.Errorf("invalid 'compress' argument: %s", name)
}

func (c Compression) String() string {
	for name, comp := range compressionNames {
		if comp == c {
			return name
		}
	}
	return "unknown"
}

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	xzMagic    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	bzip2Magic = []byte("BZh")
)

// RDSOptions control how an RDS file is written.
type RDSOptions struct {
	Version     int
	Compression Compression
	Context     *Context
}

// WriteRDS writes a single value to w as an RDS stream.
func WriteRDS(w io.Writer, v value.Value, opts RDSOptions) error {
	if opts.Version == 0 {
		opts.Version = 3
	}
	switch opts.Compression {
	case None:
		return Marshal(w, v, opts.Version, opts.Context)
	case Gzip:
		zw := gzip.NewWriter(w)
		if err := Marshal(zw, v, opts.Version, opts.Context); err != nil {
			return err
		}
		return zw.Close()
	case Xz:
		zw, err := xz.NewWriter(w)
		if err != nil {
			return err
		}
		if err := Marshal(zw, v, opts.Version, opts.Context); err != nil {
			return err
		}
		return zw.Close()
	}
	return fmt.Errorf("writing %s compressed files is not supported", opts.Compression)
}

// ReadRDS reads a single value from an RDS stream, detecting its compression.
func ReadRDS(r io.Reader, ctx *Context) (value.Value, error) {
	br := bufio.NewReader(r)
	magic, _ := br.Peek(len(xzMagic))
	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return Unmarshal(zr, ctx)
	case bytes.HasPrefix(magic, xzMagic):
		zr, err := xz.NewReader(br)
		if err != nil {
			return nil, err
		}
		return Unmarshal(zr, ctx)
	case bytes.HasPrefix(magic, bzip2Magic):
		return Unmarshal(bzip2.NewReader(br), ctx)
	}
	return Unmarshal(br, ctx)
}

// SaveRDS writes a value to the given file.
func SaveRDS(filename string, v value.Value, opts RDSOptions) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := WriteRDS(f, v, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadRDS reads a value from the given file.
func LoadRDS(filename string, ctx *Context) (value.Value, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRDS(f, ctx)
}
