package supernote

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

// countingSource wraps a bytes.Reader and counts I/O calls.
type countingSource struct {
	*bytes.Reader
	seeks int
	reads int
}

func (c *countingSource) Seek(offset int64, whence int) (int64, error) {
	c.seeks++
	return c.Reader.Seek(offset, whence)
}

func (c *countingSource) Read(p []byte) (int, error) {
	c.reads++
	return c.Reader.Read(p)
}

func TestReadBlockNullAddress(t *testing.T) {
	src := &countingSource{Reader: bytes.NewReader([]byte("irrelevant"))}

	data, err := readBlock(src, 0)
	if err != nil {
		t.Error(err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty block, got %v bytes", len(data))
	}
	if src.seeks != 0 || src.reads != 0 {
		t.Errorf("null address must not touch the source (%v seeks, %v reads)", src.seeks, src.reads)
	}
}

func TestReadBlock(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("padding-")
	addr := int64(buf.Len())
	binary.Write(&buf, endianess, uint32(5))
	buf.WriteString("hello")
	buf.WriteString("-trailer")

	data, err := readBlock(bytes.NewReader(buf.Bytes()), addr)
	if err != nil {
		t.Error(err)
	}
	if string(data) != "hello" {
		t.Errorf("unexpected block content: %q", data)
	}
}

func TestReadBlockZeroLength(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("pad")
	addr := int64(buf.Len())
	binary.Write(&buf, endianess, uint32(0))
	buf.WriteString("rest")

	r := bytes.NewReader(buf.Bytes())
	data, err := readBlock(r, addr)
	if err != nil {
		t.Error(err)
	}
	if data == nil || len(data) != 0 {
		t.Errorf("expected present but empty block, got %v", data)
	}

	// exactly the length field must have been consumed
	pos, _ := r.Seek(0, io.SeekCurrent)
	if pos != addr+lengthFieldSize {
		t.Errorf("unexpected position %v, want %v", pos, addr+lengthFieldSize)
	}
}

func TestReadBlockTruncated(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("pad")
	addr := int64(buf.Len())
	binary.Write(&buf, endianess, uint32(100))
	buf.WriteString("short")

	_, err := readBlock(bytes.NewReader(buf.Bytes()), addr)
	if !IsMalformedContainer(err) {
		t.Errorf("expected malformed container error, got %v", err)
	}
}

func TestReadBlockNoLengthField(t *testing.T) {
	// address points into the last two bytes, no room for a length field
	_, err := readBlock(bytes.NewReader([]byte{0x01, 0x02, 0x03, 0x04}), 2)
	if !IsMalformedContainer(err) {
		t.Errorf("expected malformed container error, got %v", err)
	}
}

func TestReadFooterAddress(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("some file content")
	binary.Write(&buf, endianess, uint32(1234))

	addr, err := readFooterAddress(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Error(err)
	}
	if addr != 1234 {
		t.Errorf("unexpected footer address %v", addr)
	}
}

func TestReadFooterAddressTooSmall(t *testing.T) {
	_, err := readFooterAddress(bytes.NewReader([]byte{0x01, 0x02}))
	if !IsMalformedContainer(err) {
		t.Errorf("expected malformed container error, got %v", err)
	}
}

func TestDecodeBlockInvalidText(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("pad")
	addr := int64(buf.Len())
	binary.Write(&buf, endianess, uint32(2))
	buf.Write([]byte{0xff, 0xfe})

	_, err := decodeBlock(bytes.NewReader(buf.Bytes()), addr)
	if !IsMalformedContainer(err) {
		t.Errorf("expected malformed container error, got %v", err)
	}
}
