package block

import (
	"errors"
	"io"
)

var (
	ErrOutOfRange = errors.New("position out of range")
)

// Accessor 是核心依赖的字节级随机访问原语 (Block Accessor)
// 实现可以是本地文件、内存缓冲，甚至是别的 Accessor 的一个窗口。
//
// 约定：核心只做"显式 Seek 之后的顺序读写"，
// 不假设任何预读缓冲，也不做并发访问保护。
type Accessor interface {
	// Seek 移动游标到绝对位置，返回移动后的位置
	Seek(pos uint64) (uint64, error)

	// Tell 返回当前游标位置
	Tell() uint64

	// Read 从当前位置读取 len(p) 字节
	// 数据不足时返回实际读到的字节数和 io.EOF / io.ErrUnexpectedEOF
	Read(p []byte) (int, error)

	// Write 在当前位置写入 p，游标随之前进
	// 越过末尾的写入会扩展底层存储（窗口实现除外）
	Write(p []byte) (int, error)

	// AtEnd 游标是否已到数据末尾
	AtEnd() bool

	// Length 返回当前数据总长度
	Length() uint64
}

// ReadFull 在 pos 处读满 p，读不满视为截断
func ReadFull(a Accessor, pos uint64, p []byte) error {
	if _, err := a.Seek(pos); err != nil {
		return err
	}
	n, err := io.ReadFull(readerOf{a}, p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return io.ErrUnexpectedEOF
	}
	return nil
}

// WriteFull 在 pos 处完整写入 p
func WriteFull(a Accessor, pos uint64, p []byte) error {
	if _, err := a.Seek(pos); err != nil {
		return err
	}
	n, err := a.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return io.ErrShortWrite
	}
	return nil
}

// readerOf 把 Accessor 适配成 io.Reader，给 io.ReadFull 用
type readerOf struct{ a Accessor }

func (r readerOf) Read(p []byte) (int, error) { return r.a.Read(p) }
