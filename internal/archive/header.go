package archive

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Compression methods.
const (
	Store   uint16 = 0
	Deflate uint16 = 8
)

const (
	fileHeaderSignature      = 0x04034b50
	directoryHeaderSignature = 0x02014b50
	directoryEndSignature    = 0x06054b50
	directory64EndSignature  = 0x06064b50
	dataDescriptorSignature  = 0x08074b50

	fileHeaderLen       = 30
	dataDescriptorLen   = 16
	dataDescriptor64Len = 24
	zip64ExtraID        = 0x0001
	uint32max           = math.MaxUint32

	flagEncrypted      = 0x1
	flagDataDescriptor = 0x8
	flagUTF8           = 0x800
)

var le = binary.LittleEndian

// Header describes one archive entry as read from its local file header.
// When the entry uses a data descriptor, CRC32 and the sizes are filled in
// once the entry has been read to the end.
type Header struct {
	Name             string
	Method           uint16
	Flags            uint16
	CRC32            uint32
	CompressedSize   uint64
	UncompressedSize uint64
	// NonUTF8 is set when Name was decoded from code page 437.
	NonUTF8 bool

	zip64 bool
}

// IsDir reports whether the entry is a directory.
func (h *Header) IsDir() bool { return strings.HasSuffix(h.Name, "/") }

func (h *Header) hasDataDescriptor() bool { return h.Flags&flagDataDescriptor != 0 }

// readHeader reads the next local file header. It returns io.EOF when the
// stream reaches the central directory.
func (z *Reader) readHeader() (*Header, error) {
	var sig [4]byte
	if _, err := io.ReadFull(z.r, sig[:]); err != nil {
		if z.entries == 0 && err == io.EOF {
			return nil, fmt.Errorf("%w: empty stream", ErrFormat)
		}
		return nil, unexpected(err)
	}
	switch s := le.Uint32(sig[:]); s {
	case fileHeaderSignature:
	case directoryHeaderSignature, directoryEndSignature, directory64EndSignature:
		return nil, io.EOF
	default:
		return nil, fmt.Errorf("%w: unexpected signature 0x%08x at offset %d", ErrFormat, s, z.Offset()-4)
	}

	var buf [fileHeaderLen - 4]byte
	if _, err := io.ReadFull(z.r, buf[:]); err != nil {
		return nil, unexpected(err)
	}
	hdr := &Header{
		Flags:            le.Uint16(buf[2:4]),
		Method:           le.Uint16(buf[4:6]),
		CRC32:            le.Uint32(buf[10:14]),
		CompressedSize:   uint64(le.Uint32(buf[14:18])),
		UncompressedSize: uint64(le.Uint32(buf[18:22])),
	}
	nameLen := int(le.Uint16(buf[22:24]))
	extraLen := int(le.Uint16(buf[24:26]))

	rest := make([]byte, nameLen+extraLen)
	if _, err := io.ReadFull(z.r, rest); err != nil {
		return nil, unexpected(err)
	}
	hdr.Name, hdr.NonUTF8 = decodeName(rest[:nameLen], hdr.Flags)
	parseExtra(hdr, rest[nameLen:])

	if hdr.Flags&flagEncrypted != 0 {
		return nil, fmt.Errorf("%w: %s", ErrEncrypted, hdr.Name)
	}
	if hdr.CompressedSize > math.MaxInt64 {
		return nil, fmt.Errorf("%w: %s: compressed size out of range", ErrFormat, hdr.Name)
	}
	return hdr, nil
}

func parseExtra(hdr *Header, extra []byte) {
	for len(extra) >= 4 {
		tag := le.Uint16(extra[0:2])
		size := int(le.Uint16(extra[2:4]))
		extra = extra[4:]
		if size > len(extra) {
			return
		}
		field := extra[:size]
		extra = extra[size:]
		if tag != zip64ExtraID {
			continue
		}
		hdr.zip64 = true
		if hdr.UncompressedSize == uint32max && len(field) >= 8 {
			hdr.UncompressedSize = le.Uint64(field[:8])
			field = field[8:]
		}
		if hdr.CompressedSize == uint32max && len(field) >= 8 {
			hdr.CompressedSize = le.Uint64(field[:8])
		}
	}
}

func decodeName(raw []byte, flags uint16) (string, bool) {
	if flags&flagUTF8 != 0 || utf8.Valid(raw) {
		return string(raw), false
	}
	name, err := charmap.CodePage437.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw), true
	}
	return string(name), true
}

type dataDescriptor struct {
	crc32            uint32
	compressedSize   uint64
	uncompressedSize uint64
}

// wideDescriptor reports whether the data descriptor of an entry uses 8-byte
// sizes. Writers that leave out the local zip64 extra, such as Go's
// archive/zip, still switch to the wide form once either size reaches 4 GiB.
func wideDescriptor(zip64 bool, compressed, uncompressed uint64) bool {
	return zip64 || compressed >= uint32max || uncompressed >= uint32max
}

// readDataDescriptor reads the descriptor that follows entry data. The
// leading signature is optional.
func readDataDescriptor(r interface {
	io.Reader
	Peek(int) ([]byte, error)
	Discard(int) (int, error)
}, zip64 bool) (dataDescriptor, error) {
	if sig, err := r.Peek(4); err == nil && le.Uint32(sig) == dataDescriptorSignature {
		if _, err := r.Discard(4); err != nil {
			return dataDescriptor{}, unexpected(err)
		}
	}
	size := dataDescriptorLen - 4
	if zip64 {
		size = dataDescriptor64Len - 4
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return dataDescriptor{}, unexpected(err)
	}
	d := dataDescriptor{crc32: le.Uint32(buf[0:4])}
	if zip64 {
		d.compressedSize = le.Uint64(buf[4:12])
		d.uncompressedSize = le.Uint64(buf[12:20])
	} else {
		d.compressedSize = uint64(le.Uint32(buf[4:8]))
		d.uncompressedSize = uint64(le.Uint32(buf[8:12]))
	}
	return d, nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
