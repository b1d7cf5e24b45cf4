package archive

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
)

const bufferSize = 64 << 10

// Reader provides sequential access to the entries of a zip stream. Next
// advances to the next entry and Read reads that entry's content.
type Reader struct {
	src     *countingReader
	r       *bufio.Reader
	entry   *entryReader
	entries int
	err     error
}

// NewReader creates a Reader reading from r.
func NewReader(r io.Reader) *Reader {
	src := &countingReader{r: r}
	return &Reader{src: src, r: bufio.NewReaderSize(src, bufferSize)}
}

// Offset returns the number of stream bytes consumed so far.
func (z *Reader) Offset() int64 {
	return z.src.n - int64(z.r.Buffered())
}

// Next advances to the next entry, skipping whatever was left unread of the
// current one. It returns io.EOF once the central directory is reached. Any
// other error is sticky.
func (z *Reader) Next() (*Header, error) {
	if z.err != nil {
		return nil, z.err
	}
	if z.entry != nil {
		if err := z.entry.skip(); err != nil {
			z.err = err
			return nil, err
		}
		z.entry = nil
	}

	hdr, err := z.readHeader()
	if err != nil {
		z.err = err
		return nil, err
	}
	entry, err := z.newEntryReader(hdr)
	if err != nil {
		z.err = err
		return nil, err
	}
	z.entry = entry
	z.entries++
	return hdr, nil
}

// Read reads from the current entry. It returns io.EOF at the end of the
// entry once sizes and checksum have been verified.
func (z *Reader) Read(p []byte) (int, error) {
	if z.entry == nil {
		return 0, io.EOF
	}
	return z.entry.Read(p)
}

func (z *Reader) newEntryReader(hdr *Header) (*entryReader, error) {
	e := &entryReader{hdr: hdr, br: z.r, crc: crc32.NewIEEE()}

	var compressed io.Reader
	if hdr.hasDataDescriptor() {
		switch hdr.Method {
		case Store:
			e.scan = &storedScanner{r: z.r, zip64: hdr.zip64}
			compressed = e.scan
		case Deflate:
			e.count = &countingByteReader{r: z.r}
			compressed = e.count
		default:
			return nil, fmt.Errorf("%w: method %d with data descriptor in %s", ErrAlgorithm, hdr.Method, hdr.Name)
		}
	} else {
		e.raw = &limitedByteReader{r: z.r, n: int64(hdr.CompressedSize)}
		compressed = e.raw
	}

	switch hdr.Method {
	case Store:
		e.body = compressed
	case Deflate:
		e.inflater = flate.NewReader(compressed)
		e.body = e.inflater
	default:
		e.err = fmt.Errorf("%w: method %d in %s", ErrAlgorithm, hdr.Method, hdr.Name)
	}
	return e, nil
}

type entryReader struct {
	hdr      *Header
	br       *bufio.Reader
	body     io.Reader
	inflater io.ReadCloser
	raw      *limitedByteReader
	count    *countingByteReader
	scan     *storedScanner
	crc      hash.Hash32
	nread    uint64
	err      error
}

func (e *entryReader) Read(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.body.Read(p)
	e.crc.Write(p[:n])
	e.nread += uint64(n)
	if err == nil {
		return n, nil
	}
	if err == io.EOF {
		if ferr := e.finish(); ferr != nil {
			err = ferr
		}
	}
	e.err = err
	return n, err
}

// finish runs once the entry body is exhausted: it reads the data
// descriptor, if any, and checks sizes and checksum.
func (e *entryReader) finish() error {
	if e.inflater != nil {
		e.inflater.Close()
	}

	var consumed uint64
	switch {
	case e.raw != nil:
		// The inflater may stop before the declared compressed size.
		if _, err := io.Copy(io.Discard, e.raw); err != nil {
			return err
		}
		consumed = e.hdr.CompressedSize
	case e.count != nil:
		consumed = e.count.n
	case e.scan != nil:
		consumed = e.scan.consumed
	}

	if e.hdr.hasDataDescriptor() {
		d, err := readDataDescriptor(e.br, wideDescriptor(e.hdr.zip64, consumed, e.nread))
		if err != nil {
			return err
		}
		if d.compressedSize != consumed {
			return fmt.Errorf("%w: %s: read %d compressed bytes, descriptor says %d", ErrFormat, e.hdr.Name, consumed, d.compressedSize)
		}
		e.hdr.CRC32 = d.crc32
		e.hdr.CompressedSize = d.compressedSize
		e.hdr.UncompressedSize = d.uncompressedSize
	}

	if e.nread != e.hdr.UncompressedSize {
		return fmt.Errorf("%w: %s: read %d bytes, header says %d", ErrFormat, e.hdr.Name, e.nread, e.hdr.UncompressedSize)
	}
	if e.hdr.CRC32 != 0 && e.crc.Sum32() != e.hdr.CRC32 {
		return fmt.Errorf("%w: %s", ErrChecksum, e.hdr.Name)
	}
	return nil
}

// skip moves the stream past the rest of the entry. Entries with a known
// compressed size are skipped without decoding.
func (e *entryReader) skip() error {
	if e.err == io.EOF {
		return nil
	}
	if e.raw != nil && (e.err == nil || errors.Is(e.err, ErrAlgorithm)) {
		if e.inflater != nil {
			e.inflater.Close()
		}
		_, err := io.Copy(io.Discard, e.raw)
		return err
	}
	if e.err != nil {
		return e.err
	}
	_, err := io.Copy(io.Discard, e)
	return err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// limitedByteReader reads at most n bytes and exposes ReadByte so the
// inflater consumes exactly the compressed data.
type limitedByteReader struct {
	r *bufio.Reader
	n int64
}

func (l *limitedByteReader) Read(p []byte) (int, error) {
	if l.n <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > l.n {
		p = p[:l.n]
	}
	n, err := l.r.Read(p)
	l.n -= int64(n)
	if err == io.EOF && l.n > 0 {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

func (l *limitedByteReader) ReadByte() (byte, error) {
	if l.n <= 0 {
		return 0, io.EOF
	}
	b, err := l.r.ReadByte()
	if err != nil {
		return 0, unexpected(err)
	}
	l.n--
	return b, nil
}

// countingByteReader counts the compressed bytes the inflater consumes when
// the size is only known from the trailing data descriptor.
type countingByteReader struct {
	r *bufio.Reader
	n uint64
}

func (c *countingByteReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += uint64(n)
	return n, err
}

func (c *countingByteReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.n++
	}
	return b, err
}

var descriptorMarker = []byte{'P', 'K', 0x07, 0x08}

// storedScanner returns the data of a stored entry whose size only appears
// in its trailing data descriptor. The end is the first descriptor signature
// whose recorded sizes and CRC-32 match the bytes before it.
type storedScanner struct {
	r        *bufio.Reader
	zip64    bool
	consumed uint64
	crc      uint32
	done     bool
}

func (s *storedScanner) Read(p []byte) (int, error) {
	if s.done {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	buf, perr := s.r.Peek(bufferSize)
	if len(buf) == 0 && perr != nil {
		return 0, unexpected(perr)
	}
	atEOF := perr != nil

	safe, found := s.scan(buf, atEOF)
	if found && safe == 0 {
		s.done = true
		return 0, io.EOF
	}
	if safe == 0 {
		if atEOF {
			return 0, io.ErrUnexpectedEOF
		}
		return 0, fmt.Errorf("%w: stored entry data descriptor not found", ErrFormat)
	}

	n := copy(p, buf[:safe])
	s.crc = crc32.Update(s.crc, crc32.IEEETable, buf[:n])
	s.consumed += uint64(n)
	if _, err := s.r.Discard(n); err != nil {
		return n, err
	}
	return n, nil
}

// scan returns how many bytes of buf are entry data that can be handed out.
// found is true when a verified descriptor starts right after them.
func (s *storedScanner) scan(buf []byte, atEOF bool) (int, bool) {
	from := 0
	for {
		i := bytes.Index(buf[from:], descriptorMarker)
		if i < 0 {
			break
		}
		i += from
		descLen := dataDescriptorLen
		if s.wide(uint64(i)) {
			descLen = dataDescriptor64Len
		}
		if i+descLen > len(buf) {
			if atEOF {
				break
			}
			return i, false
		}
		if s.matches(buf[:i], buf[i:i+descLen]) {
			return i, true
		}
		from = i + 1
	}

	if atEOF {
		return 0, false
	}
	return len(buf) - (len(descriptorMarker) - 1), false
}

// wide reports whether a descriptor found n bytes ahead would be in the
// 8-byte size form.
func (s *storedScanner) wide(n uint64) bool {
	size := s.consumed + n
	return wideDescriptor(s.zip64, size, size)
}

func (s *storedScanner) matches(data, desc []byte) bool {
	var csize, usize uint64
	if s.wide(uint64(len(data))) {
		csize = le.Uint64(desc[8:16])
		usize = le.Uint64(desc[16:24])
	} else {
		csize = uint64(le.Uint32(desc[8:12]))
		usize = uint64(le.Uint32(desc[12:16]))
	}
	if csize != usize || csize != s.consumed+uint64(len(data)) {
		return false
	}
	return le.Uint32(desc[4:8]) == crc32.Update(s.crc, crc32.IEEETable, data)
}
