package block

import "io"

// MemAccessor 内存版 Accessor
// 主要给测试用，也可以用来在内存里组装 parcel 再落盘。
type MemAccessor struct {
	buf []byte
	pos uint64
}

func NewMemAccessor() *MemAccessor {
	return &MemAccessor{}
}

func (a *MemAccessor) Seek(pos uint64) (uint64, error) {
	a.pos = pos
	return a.pos, nil
}

func (a *MemAccessor) Tell() uint64 { return a.pos }

func (a *MemAccessor) Read(p []byte) (int, error) {
	if a.pos >= uint64(len(a.buf)) {
		return 0, io.EOF
	}
	n := copy(p, a.buf[a.pos:])
	a.pos += uint64(n)
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func (a *MemAccessor) Write(p []byte) (int, error) {
	end := a.pos + uint64(len(p))
	if end > uint64(len(a.buf)) {
		// 扩展并保留已有数据（中间的洞补零）
		grown := make([]byte, end)
		copy(grown, a.buf)
		a.buf = grown
	}
	n := copy(a.buf[a.pos:], p)
	a.pos += uint64(n)
	return n, nil
}

func (a *MemAccessor) AtEnd() bool { return a.pos >= uint64(len(a.buf)) }

func (a *MemAccessor) Length() uint64 { return uint64(len(a.buf)) }

// Bytes 暴露底层缓冲（测试里用来做字节级破坏）
func (a *MemAccessor) Bytes() []byte { return a.buf }
