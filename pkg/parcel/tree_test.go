package parcel

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChaoticConundrum/zparcel/pkg/types"
)

// uidWithPrefix 构造首字节确定的 UID，方便摆出想要的树形
func uidWithPrefix(b byte) types.UID {
	var id types.UID
	id[0] = b
	id[15] = 1 // 避开零值
	return id
}

func randomUID(rng *rand.Rand) types.UID {
	var id types.UID
	rng.Read(id[:])
	return id
}

func TestTree_InsertLookupMany(t *testing.T) {
	p, _ := newTestParcel(t, OptTailExtend)
	rng := rand.New(rand.NewSource(42))

	const N = 1000
	uids := make([]types.UID, N)
	for i := range uids {
		uids[i] = randomUID(rng)
		require.NoError(t, p.StoreUint(uids[i], uint64(i)))
	}

	// 全部能查到，值正确
	for i, uid := range uids {
		v, err := p.FetchUint(uid)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), v)
	}

	// 没插入的第 N+1 个查不到
	_, err := p.FetchUint(randomUID(rng))
	assert.ErrorIs(t, err, ErrNoExist)

	// 中序遍历严格升序，数量正确
	entries, err := p.ListObjects()
	require.NoError(t, err)
	require.Len(t, entries, N)
	for i := 1; i < len(entries); i++ {
		assert.Equal(t, -1, entries[i-1].UID.Compare(entries[i].UID),
			"in-order traversal must be strictly ascending")
	}
}

func TestTree_InsertDuplicate(t *testing.T) {
	// 树层面的 insert 拒绝重复 UID（外层的更新语义是另一条路径）
	p, _ := newTestParcel(t, OptTailExtend)

	uid := uidWithPrefix(0x80)
	_, err := p.treeInsert(uid, &treeNode{typ: types.NullObj})
	require.NoError(t, err)

	_, err = p.treeInsert(uid, &treeNode{typ: types.NullObj})
	assert.ErrorIs(t, err, ErrExists)
}

func TestTree_DeleteLeaf(t *testing.T) {
	p, _ := newTestParcel(t, OptTailExtend)

	root := uidWithPrefix(0x80)
	leaf := uidWithPrefix(0x40)
	require.NoError(t, p.StoreUint(root, 1))
	require.NoError(t, p.StoreUint(leaf, 2))

	require.NoError(t, p.RemoveObject(leaf))
	assert.False(t, p.Exists(leaf))
	assert.True(t, p.Exists(root))
}

func TestTree_DeleteSingleChild(t *testing.T) {
	p, _ := newTestParcel(t, OptTailExtend)

	// 0x80 → 左 0x40 → 左 0x20：删中间的 0x40，0x20 接上来
	require.NoError(t, p.StoreUint(uidWithPrefix(0x80), 1))
	require.NoError(t, p.StoreUint(uidWithPrefix(0x40), 2))
	require.NoError(t, p.StoreUint(uidWithPrefix(0x20), 3))

	require.NoError(t, p.RemoveObject(uidWithPrefix(0x40)))

	assert.False(t, p.Exists(uidWithPrefix(0x40)))
	v, err := p.FetchUint(uidWithPrefix(0x20))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)

	entries, err := p.ListObjects()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestTree_DeleteTwoChildren(t *testing.T) {
	p, _ := newTestParcel(t, OptTailExtend)

	// 根有两个孩子；删根时中序后继 (0xA0 子树的最左) 顶上来
	layout := []byte{0x80, 0x40, 0xC0, 0xA0, 0xE0, 0x90, 0xB0}
	for i, b := range layout {
		require.NoError(t, p.StoreUint(uidWithPrefix(b), uint64(i)))
	}

	require.NoError(t, p.RemoveObject(uidWithPrefix(0x80)))

	assert.False(t, p.Exists(uidWithPrefix(0x80)))
	entries, err := p.ListObjects()
	require.NoError(t, err)
	require.Len(t, entries, len(layout)-1)
	for i := 1; i < len(entries); i++ {
		assert.Equal(t, -1, entries[i-1].UID.Compare(entries[i].UID))
	}

	// 幸存者的值都没变
	for i, b := range layout {
		if b == 0x80 {
			continue
		}
		v, err := p.FetchUint(uidWithPrefix(b))
		require.NoError(t, err)
		assert.Equal(t, uint64(i), v)
	}
}

func TestTree_DeleteTwoChildrenWithPayload(t *testing.T) {
	// 双子节点删除会把后继对象搬位置：搬完之后它的变宽负载必须还能读
	p, _ := newTestParcel(t, OptTailExtend)

	require.NoError(t, p.StoreUint(uidWithPrefix(0x80), 0))
	require.NoError(t, p.StoreUint(uidWithPrefix(0x40), 1))
	require.NoError(t, p.StoreString(uidWithPrefix(0xC0), "survivor"))

	require.NoError(t, p.RemoveObject(uidWithPrefix(0x80)))

	s, err := p.FetchString(uidWithPrefix(0xC0))
	require.NoError(t, err)
	assert.Equal(t, "survivor", s)
}

func TestTree_DeleteRandomized(t *testing.T) {
	p, _ := newTestParcel(t, OptTailExtend)
	rng := rand.New(rand.NewSource(7))

	const N = 200
	uids := make([]types.UID, N)
	for i := range uids {
		uids[i] = randomUID(rng)
		require.NoError(t, p.StoreUint(uids[i], uint64(i)))
	}

	// 删一半，剩下的必须都在且有序
	for i := 0; i < N/2; i++ {
		require.NoError(t, p.RemoveObject(uids[i]))
	}
	for i := N / 2; i < N; i++ {
		v, err := p.FetchUint(uids[i])
		require.NoError(t, err)
		assert.Equal(t, uint64(i), v)
	}

	entries, err := p.ListObjects()
	require.NoError(t, err)
	require.Len(t, entries, N/2)
	for i := 1; i < len(entries); i++ {
		assert.Equal(t, -1, entries[i-1].UID.Compare(entries[i].UID))
	}
}
