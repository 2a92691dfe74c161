// Package utils holds small helpers with no dependency on the rest of the
// module.
package utils

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// OutputBuf builds the flat binary encoding used for witness files: little
// endian integers, field elements on 32 little endian bytes.
type OutputBuf struct {
	buf []byte
}

func (o *OutputBuf) AppendBigInt(x *big.Int) {
	zbuf := make([]byte, 32)
	b := x.Bytes()
	for i := 0; i < len(b); i++ {
		zbuf[i] = b[len(b)-i-1]
	}
	o.buf = append(o.buf, zbuf...)
}

func (o *OutputBuf) AppendUint32(x uint32) {
	o.buf = binary.LittleEndian.AppendUint32(o.buf, x)
}

func (o *OutputBuf) AppendUint64(x uint64) {
	o.buf = binary.LittleEndian.AppendUint64(o.buf, x)
}

func (o *OutputBuf) Bytes() []byte {
	return o.buf
}

type InputBuf struct {
	buf []byte
}

func NewInputBuf(buf []byte) *InputBuf {
	return &InputBuf{buf: buf}
}

func (i *InputBuf) Remaining() int {
	return len(i.buf)
}

func (i *InputBuf) ReadUint32() (uint32, error) {
	if len(i.buf) < 4 {
		return 0, fmt.Errorf("buffer underflow: %d bytes left, need 4", len(i.buf))
	}
	x := binary.LittleEndian.Uint32(i.buf[:4])
	i.buf = i.buf[4:]
	return x, nil
}

func (i *InputBuf) ReadUint64() (uint64, error) {
	if len(i.buf) < 8 {
		return 0, fmt.Errorf("buffer underflow: %d bytes left, need 8", len(i.buf))
	}
	x := binary.LittleEndian.Uint64(i.buf[:8])
	i.buf = i.buf[8:]
	return x, nil
}

func (i *InputBuf) ReadBigInt() (*big.Int, error) {
	if len(i.buf) < 32 {
		return nil, fmt.Errorf("buffer underflow: %d bytes left, need 32", len(i.buf))
	}
	zbuf := make([]byte, 32)
	for j := 0; j < 32; j++ {
		zbuf[j] = i.buf[31-j]
	}
	x := new(big.Int).SetBytes(zbuf)
	i.buf = i.buf[32:]
	return x, nil
}
