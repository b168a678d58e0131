// Package bytecode writes the binary serialized form of a validated module.
//
// Layout: a fixed header (magic, format version, module fingerprint)
// followed by the module's canonical byte encoding. The encoding is
// deterministic: the same module always produces the same bytes, so the
// output is safe to content-address and diff.
//
// Only the header is readable back; full deserialization is not needed by
// this tool.
package bytecode

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/arrayir/shapecheck/internal/ir"
)

// Magic identifies a shapecheck bytecode stream.
const Magic = "ARBC"

// fingerprint is hex sha256.
const fingerprintLen = 64

// Header is the decoded bytecode file header.
type Header struct {
	Version     int
	Fingerprint string
	// BodyLen is the canonical-encoding length in bytes.
	BodyLen int
}

// Write serializes the module to w. Callers invoke this on validated modules
// only; the writer itself does not re-validate shapes.
func Write(w io.Writer, m *ir.Module) error {
	body := ir.AppendCanonical(nil, m)

	var buf bytes.Buffer
	buf.WriteString(Magic)
	hdr := binary.AppendUvarint(nil, uint64(ir.BytecodeVersion))
	buf.Write(hdr)
	fp := ir.Fingerprint(m)
	if len(fp) != fingerprintLen {
		return fmt.Errorf("unexpected fingerprint length %d", len(fp))
	}
	raw, err := hex.DecodeString(fp)
	if err != nil {
		return fmt.Errorf("decoding fingerprint: %w", err)
	}
	buf.Write(raw)
	buf.Write(binary.AppendUvarint(nil, uint64(len(body))))
	buf.Write(body)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing bytecode: %w", err)
	}
	return nil
}

// ReadHeader decodes and checks the header of a bytecode stream.
func ReadHeader(r io.Reader) (Header, error) {
	br := asByteReader(r)
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return Header{}, fmt.Errorf("reading magic: %w", err)
	}
	if string(magic) != Magic {
		return Header{}, fmt.Errorf("not a shapecheck bytecode stream (magic %q)", magic)
	}
	version, err := binary.ReadUvarint(br)
	if err != nil {
		return Header{}, fmt.Errorf("reading version: %w", err)
	}
	if version != ir.BytecodeVersion {
		return Header{}, fmt.Errorf("unsupported bytecode version %d", version)
	}
	raw := make([]byte, fingerprintLen/2)
	if _, err := io.ReadFull(br, raw); err != nil {
		return Header{}, fmt.Errorf("reading fingerprint: %w", err)
	}
	bodyLen, err := binary.ReadUvarint(br)
	if err != nil {
		return Header{}, fmt.Errorf("reading body length: %w", err)
	}
	return Header{
		Version:     int(version),
		Fingerprint: hex.EncodeToString(raw),
		BodyLen:     int(bodyLen),
	}, nil
}

type byteReader interface {
	io.Reader
	io.ByteReader
}

func asByteReader(r io.Reader) byteReader {
	if br, ok := r.(byteReader); ok {
		return br
	}
	return &plainByteReader{r: r}
}

type plainByteReader struct {
	r io.Reader
	b [1]byte
}

func (p *plainByteReader) Read(buf []byte) (int, error) { return p.r.Read(buf) }

func (p *plainByteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(p.r, p.b[:]); err != nil {
		return 0, err
	}
	return p.b[0], nil
}
