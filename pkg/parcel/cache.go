// pkg/parcel/cache.go
package parcel

import (
	"errors"

	"github.com/ChaoticConundrum/zparcel/pkg/block"
	"github.com/ChaoticConundrum/zparcel/pkg/types"
)

// objectInfo 是对象缓存里的一条记录：树节点位置加上解码后的负载信息。
// 纯内存派生数据，从不落盘；节点被改写或删除时必须同步刷新/失效。
//
// 注意 parent/lnode/rnode 是查找那一刻的快照，删除操作引起的结构
// 变动不会回填到其他缓存条目里，所以所有结构性操作 (插入/删除)
// 都重新走树，缓存只用来加速取负载。
type objectInfo struct {
	tree   uint64 // 树节点偏移
	parent uint64 // 父节点偏移 (0 = 树根)
	lnode  uint64
	rnode  uint64

	typ     types.ObjectType
	payload [payloadSize]byte

	// 惰性构建的 out-of-line 负载窗口
	accessor *block.Bounded
}

func (info *objectInfo) dataOffset() uint64 {
	var n treeNode
	n.payload = info.payload
	return n.dataOffset()
}

func (info *objectInfo) dataSize() uint64 {
	var n treeNode
	n.payload = info.payload
	return n.dataSize()
}

// dataAccessor 返回 out-of-line 负载的只读窗口，首次访问时构建
func (info *objectInfo) dataAccessor(file block.Accessor) *block.Bounded {
	if info.accessor == nil {
		info.accessor = block.NewBounded(file, info.dataOffset(), info.dataSize())
	}
	return info.accessor
}

// getObjectInfo 取对象信息：缓存命中走快路径，否则下降树查找并回填缓存
func (p *Parcel) getObjectInfo(uid types.UID) (*objectInfo, error) {
	if info, ok := p.cache[uid]; ok {
		return info, nil
	}

	offset, parent, n, err := p.treeFind(uid)
	if err != nil {
		return nil, err
	}
	info := &objectInfo{
		tree:    offset,
		parent:  parent,
		lnode:   n.lnode,
		rnode:   n.rnode,
		typ:     n.typ,
		payload: n.payload,
	}
	p.cache[uid] = info
	return info, nil
}

// cacheStore 在节点写入后刷新缓存条目
func (p *Parcel) cacheStore(uid types.UID, offset, parent uint64, n *treeNode) {
	p.cache[uid] = &objectInfo{
		tree:    offset,
		parent:  parent,
		lnode:   n.lnode,
		rnode:   n.rnode,
		typ:     n.typ,
		payload: n.payload,
	}
}

// errIsNoExist 区分"真的不存在"和其他查找失败
func errIsNoExist(err error) bool {
	return errors.Is(err, ErrNoExist)
}
