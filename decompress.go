package screenrepro

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type Compression byte

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZip
	CompressionXZ
	CompressionZ
	CompressionBZip2
)

// Byte code signatures from https://stackoverflow.com/a/19127748/199475
var compressionSigs = map[Compression][]byte{
	CompressionGzip:  {0x1f, 0x8b, 0x08},
	CompressionZip:   {0x50, 0x4b, 0x03, 0x04},
	CompressionXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	CompressionZ:     {0x1f, 0x9d},
	CompressionBZip2: {0x42, 0x5a, 0x68},
}

// SniffCompression identifies the compression format of a byte stream from
// its leading magic bytes. Streams that match no known signature are assumed
// to be uncompressed.
func SniffCompression(head []byte) Compression {
Outer:
	for format, sig := range compressionSigs {
		if len(head) < len(sig) {
			continue
		}
		for i := range sig {
			if head[i] != sig[i] {
				continue Outer
			}
		}
		return format
	}

	return CompressionNone
}

// Decompress wraps r in the appropriate decompressor based on its magic
// bytes. Unlike a Seek-based approach, this works on non-seekable streams
// (e.g., HTTP response bodies) because it peeks rather than consumes.
func Decompress(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(6)
	if err != nil && err != io.EOF {
		return nil, err
	}

	switch SniffCompression(head) {
	case CompressionGzip:
		return gzip.NewReader(br)
	case CompressionZip:
		return zipstream.NewReader(br), nil
	case CompressionXZ:
		return xz.NewReader(br, 0)
	case CompressionZ:
		return zlib.NewReader(br)
	case CompressionBZip2:
		return bzip2.NewReader(br), nil
	}

	return br, nil
}

// Open opens a local file or an http(s) URL and transparently decompresses
// it. The returned ReadCloser closes the underlying file or response body.
func Open(input string) (io.ReadCloser, error) {
	var raw io.ReadCloser

	if strings.HasPrefix(input, "http") {
		resp, err := http.Get(input)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetching %s: status %s", input, resp.Status)
		}
		raw = resp.Body
	} else {
		f, err := os.Open(input)
		if err != nil {
			return nil, err
		}
		raw = f
	}

	decomp, err := Decompress(raw)
	if err != nil {
		raw.Close()
		return nil, err
	}

	return &wrappedReadCloser{Reader: decomp, closer: raw}, nil
}

type wrappedReadCloser struct {
	io.Reader
	closer io.Closer
}

func (w *wrappedReadCloser) Close() error {
	return w.closer.Close()
}
