package block

import (
	"fmt"
	"io"
	"os"
)

// FileAccessor 基于 *os.File 的 Accessor 实现
// 这是生产路径：一个 parcel 就是一个本地文件。
type FileAccessor struct {
	f   *os.File
	pos uint64
}

// OpenFile 打开已有文件（读写）
func OpenFile(path string) (*FileAccessor, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open parcel file: %w", err)
	}
	return &FileAccessor{f: f}, nil
}

// CreateFile 创建新文件（已存在则截断）
func CreateFile(path string) (*FileAccessor, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create parcel file: %w", err)
	}
	return &FileAccessor{f: f}, nil
}

func (a *FileAccessor) Seek(pos uint64) (uint64, error) {
	// 允许 Seek 到末尾之后：写入时文件会自动扩展（稀疏文件语义）
	a.pos = pos
	return a.pos, nil
}

func (a *FileAccessor) Tell() uint64 { return a.pos }

func (a *FileAccessor) Read(p []byte) (int, error) {
	n, err := a.f.ReadAt(p, int64(a.pos))
	a.pos += uint64(n)
	if err == io.EOF && n == len(p) {
		err = nil
	}
	return n, err
}

func (a *FileAccessor) Write(p []byte) (int, error) {
	n, err := a.f.WriteAt(p, int64(a.pos))
	a.pos += uint64(n)
	return n, err
}

func (a *FileAccessor) AtEnd() bool {
	return a.pos >= a.Length()
}

func (a *FileAccessor) Length() uint64 {
	info, err := a.f.Stat()
	if err != nil {
		return 0
	}
	return uint64(info.Size())
}

// Sync 把数据刷到磁盘
func (a *FileAccessor) Sync() error { return a.f.Sync() }

// Close 关闭底层文件
func (a *FileAccessor) Close() error { return a.f.Close() }
