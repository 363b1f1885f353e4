package block

import "io"

// Bounded 是底层 Accessor 上 [base, base+size) 的一个读写窗口
// 用于流式访问 out-of-line 负载，而不暴露文件的其余部分。
//
// 窗口持有自己的游标 (相对窗口起点)，但共享底层 Accessor；
// 两个重叠窗口的交错读写需要调用方自己协调。
type Bounded struct {
	file Accessor
	base uint64
	size uint64
	pos  uint64 // 相对窗口起点
}

// NewBounded 创建一个窗口。不拥有底层存储，也不校验 base/size 是否越界，
// 越界的读会表现为 EOF。
func NewBounded(file Accessor, base, size uint64) *Bounded {
	return &Bounded{file: file, base: base, size: size}
}

func (b *Bounded) Seek(pos uint64) (uint64, error) {
	b.pos = min(pos, b.size)
	return b.pos, nil
}

func (b *Bounded) Tell() uint64 { return b.pos }

// Available 返回窗口内剩余可读字节数
func (b *Bounded) Available() uint64 { return b.size - b.pos }

func (b *Bounded) Read(p []byte) (int, error) {
	if b.pos >= b.size {
		return 0, io.EOF
	}
	// 裁剪到窗口边界
	if rem := b.size - b.pos; uint64(len(p)) > rem {
		p = p[:rem]
	}
	if _, err := b.file.Seek(b.base + b.pos); err != nil {
		return 0, err
	}
	n, err := b.file.Read(p)
	b.pos += uint64(n)
	return n, err
}

func (b *Bounded) Write(p []byte) (int, error) {
	if b.pos >= b.size {
		return 0, ErrOutOfRange
	}
	if rem := b.size - b.pos; uint64(len(p)) > rem {
		// 拒绝而不是截断：写出窗口是调用方的 bug
		return 0, ErrOutOfRange
	}
	if _, err := b.file.Seek(b.base + b.pos); err != nil {
		return 0, err
	}
	n, err := b.file.Write(p)
	b.pos += uint64(n)
	return n, err
}

func (b *Bounded) AtEnd() bool { return b.pos >= b.size }

func (b *Bounded) Length() uint64 { return b.size }
