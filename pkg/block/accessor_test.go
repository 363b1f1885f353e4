package block

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemAccessor(t *testing.T) {
	a := NewMemAccessor()

	// 空缓冲
	assert.Equal(t, uint64(0), a.Length())
	assert.True(t, a.AtEnd())

	// 写入推进游标并扩展缓冲
	n, err := a.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, uint64(5), a.Length())
	assert.Equal(t, uint64(5), a.Tell())

	// 越过末尾写入：中间补零
	_, err = a.Seek(8)
	require.NoError(t, err)
	_, err = a.Write([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, uint64(9), a.Length())
	assert.Equal(t, []byte{0, 0, 0}, a.Bytes()[5:8])

	// 回读
	buf := make([]byte, 5)
	require.NoError(t, ReadFull(a, 0, buf))
	assert.Equal(t, []byte("hello"), buf)

	// 读穿末尾
	_, err = a.Seek(100)
	require.NoError(t, err)
	_, err = a.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestFileAccessor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.zparcel")

	a, err := CreateFile(path)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, WriteFull(a, 0, []byte("0123456789")))
	assert.Equal(t, uint64(10), a.Length())

	// 覆盖中段
	require.NoError(t, WriteFull(a, 4, []byte("xy")))

	buf := make([]byte, 10)
	require.NoError(t, ReadFull(a, 0, buf))
	assert.Equal(t, "0123xy6789", string(buf))

	// AtEnd 跟着游标走
	_, err = a.Seek(10)
	require.NoError(t, err)
	assert.True(t, a.AtEnd())
	_, err = a.Seek(3)
	require.NoError(t, err)
	assert.False(t, a.AtEnd())

	require.NoError(t, a.Sync())

	// 重新打开还能读到
	b, err := OpenFile(path)
	require.NoError(t, err)
	defer b.Close()
	require.NoError(t, ReadFull(b, 0, buf))
	assert.Equal(t, "0123xy6789", string(buf))
}

func TestBounded(t *testing.T) {
	a := NewMemAccessor()
	require.NoError(t, WriteFull(a, 0, []byte("AAAABBBBCCCC")))

	// 窗口只盖住中间的 BBBB
	w := NewBounded(a, 4, 4)
	assert.Equal(t, uint64(4), w.Length())
	assert.Equal(t, uint64(4), w.Available())

	buf := make([]byte, 8)
	n, err := w.Read(buf)
	require.NoError(t, err)
	// 读被裁剪到窗口边界
	assert.Equal(t, 4, n)
	assert.Equal(t, "BBBB", string(buf[:4]))
	assert.True(t, w.AtEnd())

	// 窗口末尾之后是 EOF
	_, err = w.Read(buf)
	assert.ErrorIs(t, err, io.EOF)

	// 窗口内写入不会泄漏到窗口外
	_, err = w.Seek(0)
	require.NoError(t, err)
	_, err = w.Write([]byte("bb"))
	require.NoError(t, err)
	assert.Equal(t, "AAAAbbBBCCCC", string(a.Bytes()))

	// 越界写被拒绝，而不是截断
	_, err = w.Seek(3)
	require.NoError(t, err)
	_, err = w.Write([]byte("zz"))
	assert.ErrorIs(t, err, ErrOutOfRange)

	// Seek 超过窗口被夹到窗口末尾
	pos, err := w.Seek(100)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), pos)
}
