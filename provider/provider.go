// Package provider defines the byte sources patterns are evaluated against.
package provider

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrOutOfRange is returned for reads that do not fit inside the provider.
var ErrOutOfRange = errors.New("read out of range")

// Provider is a read-only, byte-addressable data source. Offsets are
// relative to the start of the data; Read never performs short reads.
type Provider interface {
	Size() uint64
	BaseAddress() uint64
	Read(offset uint64, buf []byte) error
}

// Region is a contiguous address range.
type Region struct {
	Address uint64
	Size    uint64
}

// RegionValidator is implemented by providers with holes in their address
// space. It reports the region containing address and whether it is backed
// by data.
type RegionValidator interface {
	RegionValidity(address uint64) (Region, bool)
}

// Rebaser is implemented by providers whose base address can be changed.
type Rebaser interface {
	SetBaseAddress(address uint64)
}

// InRange reports whether [offset, offset+size) lies inside p.
func InRange(p Provider, offset, size uint64) bool {
	end := offset + size
	return end >= offset && end <= p.Size()
}

// Buffer is an in-memory provider.
type Buffer struct {
	data []byte
	base uint64
}

// NewBuffer returns a provider over data. The slice is not copied.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

func (b *Buffer) Size() uint64 { return uint64(len(b.data)) }

func (b *Buffer) BaseAddress() uint64 { return b.base }

func (b *Buffer) SetBaseAddress(address uint64) { b.base = address }

func (b *Buffer) Read(offset uint64, buf []byte) error {
	if !InRange(b, offset, uint64(len(buf))) {
		return fmt.Errorf("%w: %d bytes at 0x%X", ErrOutOfRange, len(buf), offset)
	}
	copy(buf, b.data[offset:])
	return nil
}

func (b *Buffer) RegionValidity(address uint64) (Region, bool) {
	if address < b.Size() {
		return Region{Address: 0, Size: b.Size()}, true
	}
	return Region{Address: b.Size(), Size: ^uint64(0) - b.Size()}, false
}

// File is a provider backed by an open file.
type File struct {
	f    *os.File
	size uint64
	base uint64
}

// OpenFile opens path read-only.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening data file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat data file: %w", err)
	}
	return &File{f: f, size: uint64(info.Size())}, nil
}

func (f *File) Size() uint64 { return f.size }

func (f *File) BaseAddress() uint64 { return f.base }

func (f *File) SetBaseAddress(address uint64) { f.base = address }

func (f *File) Read(offset uint64, buf []byte) error {
	if !InRange(f, offset, uint64(len(buf))) {
		return fmt.Errorf("%w: %d bytes at 0x%X", ErrOutOfRange, len(buf), offset)
	}
	if _, err := f.f.ReadAt(buf, int64(offset)); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading data file: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.f.Close()
}
