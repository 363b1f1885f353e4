package parcel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChaoticConundrum/zparcel/pkg/block"
	"github.com/ChaoticConundrum/zparcel/pkg/types"
)

func TestHeader_RoundTrip(t *testing.T) {
	file := block.NewMemAccessor()

	h := &header{
		version:  formatVersion,
		flags:    OptTailExtend,
		treehead: 1234,
		freehead: 5678,
		freetail: 9012,
		tailptr:  headerSize,
		root:     types.NewUID(),
	}
	require.NoError(t, h.write(file))
	assert.Equal(t, uint64(headerSize), file.Length())

	got, err := readHeader(file)
	require.NoError(t, err)
	assert.Equal(t, h.flags, got.flags)
	assert.Equal(t, h.treehead, got.treehead)
	assert.Equal(t, h.freehead, got.freehead)
	assert.Equal(t, h.freetail, got.freetail)
	assert.Equal(t, h.tailptr, got.tailptr)
	assert.Equal(t, h.root, got.root)
}

func TestHeader_Corruption(t *testing.T) {
	write := func() *block.MemAccessor {
		file := block.NewMemAccessor()
		h := &header{version: formatVersion, tailptr: headerSize}
		require.NoError(t, h.write(file))
		return file
	}

	t.Run("bad signature", func(t *testing.T) {
		file := write()
		file.Bytes()[0] ^= 0xFF
		_, err := readHeader(file)
		assert.ErrorIs(t, err, ErrSig)
	})

	t.Run("bad version", func(t *testing.T) {
		file := write()
		file.Bytes()[7] = 99
		_, err := readHeader(file)
		assert.ErrorIs(t, err, ErrVersion)
	})

	t.Run("bad crc", func(t *testing.T) {
		// 翻转 flags 区域的一个字节：签名和版本都还对，只有 CRC 不匹配
		file := write()
		file.Bytes()[9] ^= 0x01
		_, err := readHeader(file)
		assert.ErrorIs(t, err, ErrCRC)
	})

	t.Run("truncated", func(t *testing.T) {
		file := block.NewMemAccessor()
		require.NoError(t, block.WriteFull(file, 0, fileSignature[:]))
		_, err := readHeader(file)
		assert.ErrorIs(t, err, ErrRead)
	})
}

func TestNodeCodec_RoundTrip(t *testing.T) {
	file := block.NewMemAccessor()

	n := &treeNode{
		uid:   types.NewUID(),
		lnode: 111,
		rnode: 222,
		typ:   types.UintObj,
	}
	n.payload[0] = 0xAB
	require.NoError(t, writeTreeNode(file, 64, n))

	got, err := readTreeNode(file, 64)
	require.NoError(t, err)
	assert.Equal(t, n.uid, got.uid)
	assert.Equal(t, n.lnode, got.lnode)
	assert.Equal(t, n.rnode, got.rnode)
	assert.Equal(t, n.typ, got.typ)
	assert.Equal(t, n.payload, got.payload)

	// data 指针形式的解释
	n.setData(4096, 77)
	assert.Equal(t, uint64(4096), n.dataOffset())
	assert.Equal(t, uint64(77), n.dataSize())
}

func TestNodeCodec_Corruption(t *testing.T) {
	file := block.NewMemAccessor()
	n := &treeNode{uid: types.NewUID(), typ: types.BoolObj}
	require.NoError(t, writeTreeNode(file, 0, n))

	t.Run("bad magic", func(t *testing.T) {
		file.Bytes()[0] = 'X'
		_, err := readTreeNode(file, 0)
		assert.ErrorIs(t, err, ErrMagic)
		file.Bytes()[0] = 'Z' // 还原
	})

	t.Run("bad crc", func(t *testing.T) {
		// 翻转 uid 里的一个字节
		file.Bytes()[10] ^= 0x80
		_, err := readTreeNode(file, 0)
		assert.ErrorIs(t, err, ErrCRC)
		file.Bytes()[10] ^= 0x80
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := readTreeNode(file, file.Length()-10)
		assert.ErrorIs(t, err, ErrTrunc)
	})
}

func TestFreeNodeCodec(t *testing.T) {
	file := block.NewMemAccessor()

	fn := &freeNode{next: 4096, size: 128}
	require.NoError(t, writeFreeNode(file, 100, fn))

	got, err := readFreeNode(file, 100)
	require.NoError(t, err)
	assert.Equal(t, fn.next, got.next)
	assert.Equal(t, fn.size, got.size)

	// CRC 破坏
	file.Bytes()[105] ^= 0x01
	_, err = readFreeNode(file, 100)
	assert.ErrorIs(t, err, ErrCRC)
}
