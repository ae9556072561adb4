// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// Unix compress(1) LZW framing: a two-byte magic, then a flag byte carrying
// the maximum code width in its low five bits and the block-mode bit. Codes
// are packed LSB-first, widening from 9 bits as the table fills, and the
// stream pads to an 8-code group boundary at every width change. The group
// offset resets at each width change and table clear rather than running
// over the whole stream.
const (
	zMagic1   = 0x1f
	zMagic2   = 0x9d
	zBlockBit = 0x80

	zInitBits = 9
	zMaxBits  = 16
	zClear    = 256
	zFirst    = 257
)

var errCorruptCompress = errors.New("corrupt compress data")

// NewCompressReader returns a reader decompressing a compress(1) .Z stream.
//
// The standard library's compress/lzw stops at 12-bit codes and has no
// notion of the .Z header or block mode, so this carries its own decoder.
func NewCompressReader(src io.Reader) (io.Reader, error) {
	br := bufio.NewReader(src)
	var hdr [3]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, errors.Wrap(err, "reading compress header")
	}
	if hdr[0] != zMagic1 || hdr[1] != zMagic2 {
		return nil, errors.New("bad compress magic")
	}
	maxbits := uint(hdr[2] & 0x1f)
	if maxbits < zInitBits || maxbits > zMaxBits {
		return nil, errors.Errorf("unsupported compress code width %d", maxbits)
	}
	r := &compressReader{
		src:     br,
		maxbits: maxbits,
		block:   hdr[2]&zBlockBit != 0,
		nBits:   zInitBits,
		maxcode: 1<<zInitBits - 1,
		prefix:  make([]uint16, 1<<maxbits),
		suffix:  make([]byte, 1<<maxbits),
		oldcode: -1,
	}
	r.free = zClear
	if r.block {
		r.free = zFirst
	}
	for i := 0; i < 256; i++ {
		r.suffix[i] = byte(i)
	}
	return r, nil
}

type compressReader struct {
	src     *bufio.Reader
	maxbits uint
	block   bool

	nBits   uint
	maxcode int
	free    int
	prefix  []uint16
	suffix  []byte
	oldcode int
	finchar byte

	bitbuf uint32
	bitcnt uint
	phase  uint

	out   []byte
	stack []byte
	err   error
}

func (r *compressReader) Read(p []byte) (int, error) {
	for len(r.out) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		r.err = r.step()
	}
	n := copy(p, r.out)
	r.out = r.out[n:]
	return n, nil
}

// step decodes one code into r.out.
func (r *compressReader) step() error {
	maxmax := 1 << r.maxbits
	if r.free > r.maxcode {
		r.padToGroup()
		r.nBits++
		if r.nBits == r.maxbits {
			r.maxcode = maxmax
		} else {
			r.maxcode = 1<<r.nBits - 1
		}
	}
	code, err := r.readCode()
	if err != nil {
		return err
	}
	if r.oldcode == -1 {
		if code >= 256 {
			return errCorruptCompress
		}
		r.finchar = byte(code)
		r.oldcode = code
		r.out = append(r.out, r.finchar)
		return nil
	}
	if code == zClear && r.block {
		r.free = zClear
		r.padToGroup()
		r.nBits = zInitBits
		r.maxcode = 1<<zInitBits - 1
		return nil
	}
	incode := code
	r.stack = r.stack[:0]
	if code >= r.free {
		// A code one past the table is the KwKwK case; anything further
		// ahead cannot have been written by a compressor.
		if code != r.free {
			return errCorruptCompress
		}
		r.stack = append(r.stack, r.finchar)
		code = r.oldcode
	}
	for code >= 256 {
		r.stack = append(r.stack, r.suffix[code])
		code = int(r.prefix[code])
	}
	r.finchar = r.suffix[code]
	r.stack = append(r.stack, r.finchar)
	for i := len(r.stack) - 1; i >= 0; i-- {
		r.out = append(r.out, r.stack[i])
	}
	if r.free < maxmax {
		r.prefix[r.free] = uint16(r.oldcode)
		r.suffix[r.free] = r.finchar
		r.free++
	}
	r.oldcode = incode
	return nil
}

func (r *compressReader) readCode() (int, error) {
	for r.bitcnt < r.nBits {
		b, err := r.src.ReadByte()
		if err != nil {
			if err == io.EOF {
				// Trailing bits too short to form a code end the stream.
				return 0, io.EOF
			}
			return 0, errors.Wrap(err, "reading compress data")
		}
		r.bitbuf |= uint32(b) << r.bitcnt
		r.bitcnt += 8
	}
	code := int(r.bitbuf & (1<<r.nBits - 1))
	r.bitbuf >>= r.nBits
	r.bitcnt -= r.nBits
	r.phase += r.nBits
	return code, nil
}

// padToGroup discards the padding the compressor emits to close out the
// current 8-code group, then restarts the group offset.
func (r *compressReader) padToGroup() {
	g := r.nBits * 8
	skip := g - r.phase%g
	if skip == g {
		skip = 0
	}
	for skip > 0 {
		if r.bitcnt == 0 {
			b, err := r.src.ReadByte()
			if err != nil {
				break
			}
			r.bitbuf = uint32(b)
			r.bitcnt = 8
		}
		t := r.bitcnt
		if t > skip {
			t = skip
		}
		r.bitbuf >>= t
		r.bitcnt -= t
		skip -= t
	}
	r.phase = 0
}

// CompressWriter emits a compress(1) .Z stream in block mode at the full
// 16-bit code width. When the table fills it keeps coding against the frozen
// table instead of emitting a clear.
type CompressWriter struct {
	w      *bufio.Writer
	err    error
	closed bool

	table map[uint32]uint16
	cur   int

	nBits   uint
	maxcode int
	free    int

	bitbuf uint32
	bitcnt uint
	phase  uint
}

// NewCompressWriter returns a CompressWriter emitting to w. Close must be
// called to flush the final code.
func NewCompressWriter(w io.Writer) *CompressWriter {
	bw := bufio.NewWriter(w)
	bw.Write([]byte{zMagic1, zMagic2, zBlockBit | zMaxBits})
	return &CompressWriter{
		w:       bw,
		table:   make(map[uint32]uint16),
		cur:     -1,
		nBits:   zInitBits,
		maxcode: 1<<zInitBits - 1,
		free:    zFirst,
	}
}

// Write compresses p into the stream.
func (w *CompressWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("write to closed compress stream")
	}
	if w.err != nil {
		return 0, w.err
	}
	const maxmax = 1 << zMaxBits
	for _, c := range p {
		if w.cur < 0 {
			w.cur = int(c)
			continue
		}
		key := uint32(w.cur)<<8 | uint32(c)
		if code, ok := w.table[key]; ok {
			w.cur = int(code)
			continue
		}
		w.putCode(w.cur)
		if w.free > w.maxcode {
			w.closeGroup()
			w.nBits++
			if w.nBits == zMaxBits {
				w.maxcode = maxmax
			} else {
				w.maxcode = 1<<w.nBits - 1
			}
		}
		if w.free < maxmax {
			w.table[key] = uint16(w.free)
			w.free++
		}
		w.cur = int(c)
	}
	if w.err != nil {
		return 0, w.err
	}
	return len(p), nil
}

// Close flushes the final code and any buffered bits.
func (w *CompressWriter) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true
	if w.err != nil {
		return w.err
	}
	if w.cur >= 0 {
		w.putCode(w.cur)
		w.cur = -1
	}
	if w.bitcnt > 0 {
		w.w.WriteByte(byte(w.bitbuf))
		w.bitbuf, w.bitcnt = 0, 0
	}
	if err := w.w.Flush(); err != nil {
		w.err = errors.Wrap(err, "flushing compress stream")
	}
	return w.err
}

func (w *CompressWriter) putCode(code int) {
	w.bitbuf |= uint32(code) << w.bitcnt
	w.bitcnt += w.nBits
	w.phase += w.nBits
	for w.bitcnt >= 8 {
		if err := w.w.WriteByte(byte(w.bitbuf)); err != nil {
			w.err = errors.Wrap(err, "writing compress data")
		}
		w.bitbuf >>= 8
		w.bitcnt -= 8
	}
}

// closeGroup zero-fills to the 8-code group boundary preceding a width
// change, mirroring the flush of compress's partially filled output group.
func (w *CompressWriter) closeGroup() {
	g := w.nBits * 8
	pad := g - w.phase%g
	if pad == g {
		pad = 0
	}
	for pad > 0 {
		t := pad
		if t > 8 {
			t = 8
		}
		w.bitcnt += t
		pad -= t
		for w.bitcnt >= 8 {
			if err := w.w.WriteByte(byte(w.bitbuf)); err != nil {
				w.err = errors.Wrap(err, "writing compress data")
			}
			w.bitbuf >>= 8
			w.bitcnt -= 8
		}
	}
	w.phase = 0
}
