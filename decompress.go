package brainatlas

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"io"

	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type DataType byte

const (
	DataTypeInvalid DataType = iota
	DataTypeNoCompression
	DataTypeGzip
	DataTypeZip
	DataTypeXZ
	DataTypeZlib
	DataTypeBZip2
)

// Byte code signatures from https://stackoverflow.com/a/19127748/199475
var byteCodeSigs = map[DataType][]byte{
	DataTypeGzip:  {0x1f, 0x8b, 0x08},
	DataTypeZip:   {0x50, 0x4b, 0x03, 0x04},
	DataTypeXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	DataTypeBZip2: {0x42, 0x5a, 0x68},
}

// DetectDataType matches the leading bytes of a stream against known
// compression signatures. Anything unrecognized is treated as uncompressed.
func DetectDataType(header []byte) DataType {
	for dt, sig := range byteCodeSigs {
		if bytes.HasPrefix(header, sig) {
			return dt
		}
	}

	if isZlibHeader(header) {
		return DataTypeZlib
	}

	return DataTypeNoCompression
}

// isZlibHeader checks for a deflate stream with a 32K window (RFC 1950): CMF
// is 0x78, FLG sets no preset dictionary, and CMF*256+FLG is a multiple of 31.
func isZlibHeader(header []byte) bool {
	if len(header) < 2 || header[0] != 0x78 || header[1]&0x20 != 0 {
		return false
	}

	return (uint16(header[0])<<8|uint16(header[1]))%31 == 0
}

// MaybeDecompressReader peeks at r and, if it looks compressed, wraps it in the
// matching decompressor. r does not need to be seekable, so this works for
// objects streamed from Google Storage as well as local files.
func MaybeDecompressReader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	header, err := br.Peek(6)
	if err != nil && err != io.EOF {
		return nil, err
	}

	switch DetectDataType(header) {
	case DataTypeGzip:
		return gzip.NewReader(br)
	case DataTypeZip:
		zr := zipstream.NewReader(br)
		if _, err := zr.Next(); err != nil {
			return nil, err
		}
		return zr, nil
	case DataTypeBZip2:
		return bzip2.NewReader(br), nil
	case DataTypeXZ:
		return xz.NewReader(br, 0)
	case DataTypeZlib:
		return zlib.NewReader(br)
	}

	return br, nil
}
