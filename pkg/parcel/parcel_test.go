package parcel

import (
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChaoticConundrum/zparcel/pkg/block"
	"github.com/ChaoticConundrum/zparcel/pkg/types"
)

// -----------------------------------------------------------------------------
// 1. 各类型往返
// -----------------------------------------------------------------------------

func TestParcel_RoundTrip(t *testing.T) {
	p, _ := newTestParcel(t, OptTailExtend)

	t.Run("null", func(t *testing.T) {
		uid := types.NewUID()
		require.NoError(t, p.StoreNull(uid))
		assert.Equal(t, types.NullObj, p.GetType(uid))
	})

	t.Run("bool", func(t *testing.T) {
		for _, v := range []bool{true, false} {
			uid := types.NewUID()
			require.NoError(t, p.StoreBool(uid, v))
			got, err := p.FetchBool(uid)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("uint boundaries", func(t *testing.T) {
		for _, v := range []uint64{0, 1, math.MaxUint64} {
			uid := types.NewUID()
			require.NoError(t, p.StoreUint(uid, v))
			got, err := p.FetchUint(uid)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("sint boundaries", func(t *testing.T) {
		for _, v := range []int64{0, -1, math.MinInt64, math.MaxInt64} {
			uid := types.NewUID()
			require.NoError(t, p.StoreSint(uid, v))
			got, err := p.FetchSint(uid)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("float specials", func(t *testing.T) {
		for _, v := range []float64{0, -0.5, math.Inf(1), math.Inf(-1)} {
			uid := types.NewUID()
			require.NoError(t, p.StoreFloat(uid, v))
			got, err := p.FetchFloat(uid)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}

		// NaN != NaN，单独断言
		uid := types.NewUID()
		require.NoError(t, p.StoreFloat(uid, math.NaN()))
		got, err := p.FetchFloat(uid)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(got))
	})

	t.Run("uid", func(t *testing.T) {
		uid, ref := types.NewUID(), types.NewUID()
		require.NoError(t, p.StoreUID(uid, ref))
		got, err := p.FetchUID(uid)
		require.NoError(t, err)
		assert.Equal(t, ref, got)
	})

	t.Run("blob", func(t *testing.T) {
		for _, v := range [][]byte{nil, []byte{0}, []byte("binary\x00data"), make([]byte, 4096)} {
			uid := types.NewUID()
			require.NoError(t, p.StoreBlob(uid, v))
			got, err := p.FetchBlob(uid)
			require.NoError(t, err)
			assert.Equal(t, []byte(v), got)
		}
	})

	t.Run("string", func(t *testing.T) {
		for _, v := range []string{"", "hello", "中文也可以"} {
			uid := types.NewUID()
			require.NoError(t, p.StoreString(uid, v))
			got, err := p.FetchString(uid)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("list", func(t *testing.T) {
		for _, n := range []int{0, 1, 17} {
			list := make([]types.UID, n)
			for i := range list {
				list[i] = types.NewUID()
			}
			uid := types.NewUID()
			require.NoError(t, p.StoreList(uid, list))
			got, err := p.FetchList(uid)
			require.NoError(t, err)
			assert.Equal(t, list, got)
		}
	})

	t.Run("file", func(t *testing.T) {
		uid, nameID, dataID := types.NewUID(), types.NewUID(), types.NewUID()
		require.NoError(t, p.StoreString(nameID, "model.bin"))
		require.NoError(t, p.StoreBlob(dataID, []byte{1, 2, 3}))
		require.NoError(t, p.StoreFile(uid, nameID, dataID))

		gotName, gotData, err := p.FetchFile(uid)
		require.NoError(t, err)
		assert.Equal(t, nameID, gotName)
		assert.Equal(t, dataID, gotData)
	})
}

// -----------------------------------------------------------------------------
// 2. 存在性 / 类型标签 / 类型不匹配
// -----------------------------------------------------------------------------

func TestParcel_ExistsAndType(t *testing.T) {
	p, _ := newTestParcel(t, OptTailExtend)
	uid := types.NewUID()

	assert.False(t, p.Exists(uid))
	assert.Equal(t, types.UnknownObj, p.GetType(uid))

	require.NoError(t, p.StoreUint(uid, 7))
	assert.True(t, p.Exists(uid))
	assert.Equal(t, types.UintObj, p.GetType(uid))

	require.NoError(t, p.RemoveObject(uid))
	assert.False(t, p.Exists(uid))
	assert.Equal(t, types.UnknownObj, p.GetType(uid))
}

func TestParcel_WrongType(t *testing.T) {
	p, _ := newTestParcel(t, OptTailExtend)
	uid := types.NewUID()
	require.NoError(t, p.StoreUint(uid, 7))

	_, err := p.FetchString(uid)
	assert.ErrorIs(t, err, ErrWrongType)
	_, err = p.FetchBool(uid)
	assert.ErrorIs(t, err, ErrWrongType)

	// 正确类型仍然可读
	v, err := p.FetchUint(uid)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v)
}

func TestParcel_FetchMissing(t *testing.T) {
	p, _ := newTestParcel(t, OptTailExtend)

	_, err := p.FetchString(types.NewUID())
	assert.ErrorIs(t, err, ErrNoExist)

	err = p.RemoveObject(types.NewUID())
	assert.ErrorIs(t, err, ErrNoExist)
}

// -----------------------------------------------------------------------------
// 3. 重复 UID：原地更新语义
// -----------------------------------------------------------------------------

func TestParcel_UpdateInPlace(t *testing.T) {
	p, _ := newTestParcel(t, OptTailExtend)
	uid := types.NewUID()

	// string → uint：类型可以变
	require.NoError(t, p.StoreString(uid, "hello"))
	require.NoError(t, p.StoreUint(uid, 5))
	assert.Equal(t, types.UintObj, p.GetType(uid))

	v, err := p.FetchUint(uid)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v)

	// 旧类型的访问器现在报类型不匹配
	_, err = p.FetchString(uid)
	assert.ErrorIs(t, err, ErrWrongType)

	// 对象总数不变：更新不是插入
	entries, err := p.ListObjects()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestParcel_UpdateSameSizeReusesRange(t *testing.T) {
	p, _ := newTestParcel(t, OptTailExtend)
	uid := types.NewUID()

	require.NoError(t, p.StoreString(uid, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")) // 32B
	tail := p.header.tailptr

	// 等长更新：负载区间原地复用，文件不增长
	require.NoError(t, p.StoreString(uid, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"))
	assert.Equal(t, tail, p.header.tailptr)

	s, err := p.FetchString(uid)
	require.NoError(t, err)
	assert.Equal(t, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", s)
}

// -----------------------------------------------------------------------------
// 4. 分配器复用（对外可观测：tailptr 不动）
// -----------------------------------------------------------------------------

func TestParcel_RemoveReusesSpace(t *testing.T) {
	p, _ := newTestParcel(t, OptTailExtend)

	// 负载和树节点等长：删除后归还的两个区间能被下一次
	// store 的节点分配和负载分配精确复用
	uid := types.NewUID()
	payload := make([]byte, treeNodeSize)
	require.NoError(t, p.StoreBlob(uid, payload))
	require.NoError(t, p.RemoveObject(uid))
	tail := p.header.tailptr

	uid2 := types.NewUID()
	require.NoError(t, p.StoreBlob(uid2, payload))
	assert.Equal(t, tail, p.header.tailptr, "freed ranges must be reused, not tail-extended")
}

// -----------------------------------------------------------------------------
// 5. 损坏检测：坏字节必须报错，绝不返回错数据
// -----------------------------------------------------------------------------

func TestParcel_CorruptNodeDetected(t *testing.T) {
	p, file := newTestParcel(t, OptTailExtend)
	uid := types.NewUID()
	require.NoError(t, p.StoreUint(uid, 42))

	nodeOff := p.header.treehead
	// 翻转 uid 字段里的一个字节 (固定字段区，CRC 覆盖范围内)
	file.Bytes()[nodeOff+4] ^= 0x01

	// 换一个新实例打开，绕开对象缓存
	p2 := New()
	require.NoError(t, p2.Open(file))
	_, err := p2.FetchUint(uid)
	assert.ErrorIs(t, err, ErrCRC, "corruption must surface, never return stale data")
}

// -----------------------------------------------------------------------------
// 6. 状态机
// -----------------------------------------------------------------------------

func TestParcel_StateMachine(t *testing.T) {
	p := New()
	assert.Equal(t, StateClosed, p.State())

	// 未打开：所有操作立即失败，不碰文件
	uid := types.NewUID()
	assert.ErrorIs(t, p.StoreUint(uid, 1), ErrNotOpen)
	_, err := p.FetchUint(uid)
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, p.RemoveObject(uid), ErrNotOpen)
	_, err = p.GetRoot()
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, p.SetRoot(uid), ErrNotOpen)
	assert.False(t, p.Exists(uid))
	assert.Equal(t, types.UnknownObj, p.GetType(uid))

	file := block.NewMemAccessor()
	require.NoError(t, p.Create(file, OptTailExtend))
	assert.Equal(t, StateOpen, p.State())

	require.NoError(t, p.StoreUint(uid, 1))

	p.Close()
	assert.Equal(t, StateClosed, p.State())
	assert.ErrorIs(t, p.StoreUint(uid, 2), ErrNotOpen)

	// 状态字符串
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "locked", StateLocked.String())
}

// -----------------------------------------------------------------------------
// 7. 持久化：close → open 之后一切还在
// -----------------------------------------------------------------------------

func TestParcel_Persistence(t *testing.T) {
	file := block.NewMemAccessor()
	p := New()
	require.NoError(t, p.Create(file, OptTailExtend))

	uidA, uidB := types.NewUID(), types.NewUID()
	require.NoError(t, p.StoreString(uidA, "hello"))
	require.NoError(t, p.StoreList(uidB, []types.UID{uidA}))
	require.NoError(t, p.SetRoot(uidA))
	p.Close()

	p2 := New()
	require.NoError(t, p2.Open(file))

	root, err := p2.GetRoot()
	require.NoError(t, err)
	assert.Equal(t, uidA, root)

	s, err := p2.FetchString(uidA)
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	list, err := p2.FetchList(uidB)
	require.NoError(t, err)
	assert.Equal(t, []types.UID{uidA}, list)
}

func TestParcel_OpenGarbage(t *testing.T) {
	file := block.NewMemAccessor()
	require.NoError(t, block.WriteFull(file, 0, make([]byte, 128)))

	p := New()
	err := p.Open(file)
	assert.ErrorIs(t, err, ErrOpen)
	assert.ErrorIs(t, err, ErrSig)
	assert.Equal(t, StateClosed, p.State())
}

// -----------------------------------------------------------------------------
// 8. Blob 流式读取
// -----------------------------------------------------------------------------

func TestParcel_BlobReader(t *testing.T) {
	p, _ := newTestParcel(t, OptTailExtend)
	uid := types.NewUID()

	payload := make([]byte, 1000)
	for i := range payload {
		payload[i] = byte(i)
	}
	require.NoError(t, p.StoreBlob(uid, payload))

	r, err := p.FetchBlobReader(uid)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), r.Length())

	// 分块读出来和原数据一致
	var got []byte
	buf := make([]byte, 333)
	for !r.AtEnd() {
		n, err := r.Read(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, payload, got)
}
