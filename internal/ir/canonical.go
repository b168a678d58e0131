package ir

import (
	"encoding/binary"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// AppendCanonical appends a deterministic byte encoding of the module to buf
// and returns the extended slice. This is the ONLY encoding used for
// fingerprint computation; the bytecode writer layers a file header on top of
// it.
//
// Determinism rules:
//  1. Attribute keys sorted byte-wise.
//  2. All strings NFC normalized before encoding.
//  3. Lengths and integers encoded as varints (zigzag for signed).
//  4. Erased operations are skipped; live operations appear in walk order.
func AppendCanonical(buf []byte, m *Module) []byte {
	buf = appendString(buf, m.Name)
	buf = binary.AppendUvarint(buf, uint64(len(m.Funcs)))
	for fi := range m.Funcs {
		f := &m.Funcs[fi]
		buf = appendString(buf, f.Name)
		buf = appendTypes(buf, f.Params)
		buf = appendTypes(buf, f.Results)

		var live []OpHandle
		m.WalkFunc(f, func(h OpHandle) { live = append(live, h) })
		buf = binary.AppendUvarint(buf, uint64(len(live)))
		for _, h := range live {
			buf = appendOp(buf, m, h)
		}
	}
	return buf
}

func appendOp(buf []byte, m *Module, h OpHandle) []byte {
	op := m.Op(h)
	buf = appendString(buf, op.Target)
	buf = binary.AppendUvarint(buf, uint64(len(op.Operands)))
	for _, v := range op.Operands {
		buf = binary.AppendUvarint(buf, uint64(v))
	}
	buf = appendTypesOf(buf, m, op.Results)

	keys := make([]string, 0, len(op.Attrs))
	for k := range op.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	buf = binary.AppendUvarint(buf, uint64(len(keys)))
	for _, k := range keys {
		buf = appendString(buf, k)
		buf = appendAttr(buf, op.Attrs[k])
	}
	return buf
}

func appendAttr(buf []byte, a Attr) []byte {
	switch v := a.(type) {
	case StringAttr:
		buf = append(buf, 's')
		return appendString(buf, string(v))
	case IntAttr:
		buf = append(buf, 'i')
		return binary.AppendVarint(buf, int64(v))
	case BoolAttr:
		buf = append(buf, 'b')
		if v {
			return append(buf, 1)
		}
		return append(buf, 0)
	default:
		// Unknown attr kinds cannot appear via the builders or the parser.
		return append(buf, '?')
	}
}

func appendTypes(buf []byte, ts []TensorType) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(ts)))
	for _, t := range ts {
		buf = appendType(buf, t)
	}
	return buf
}

func appendTypesOf(buf []byte, m *Module, vs []ValueHandle) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(vs)))
	for _, v := range vs {
		buf = appendType(buf, m.Value(v).Type)
	}
	return buf
}

func appendType(buf []byte, t TensorType) []byte {
	buf = append(buf, byte(t.Elem.Kind), t.Elem.Bits)
	buf = binary.AppendUvarint(buf, uint64(len(t.Dims)))
	for _, d := range t.Dims {
		buf = binary.AppendVarint(buf, d)
	}
	return buf
}

func appendString(buf []byte, s string) []byte {
	n := norm.NFC.String(s)
	buf = binary.AppendUvarint(buf, uint64(len(n)))
	return append(buf, n...)
}
