// pkg/parcel/tree.go
package parcel

import (
	"fmt"

	"github.com/ChaoticConundrum/zparcel/pkg/types"
)

// 树引擎：UID 有序的二叉搜索树，节点间用文件偏移互相引用。
// 树不做自平衡：UID 接近均匀随机，深度期望 O(log n)；
// maxTreeDepth 是防御损坏成环结构的保险丝，超过即报 ErrMaxDepth。
const maxTreeDepth = 128

// treeFind 从 treehead 下降查找 uid。
// 找到返回 (节点偏移, 父节点偏移, 节点)；父偏移为 0 表示节点就是树根。
// 不存在返回 ErrNoExist。
func (p *Parcel) treeFind(uid types.UID) (uint64, uint64, *treeNode, error) {
	var parent uint64
	cur := p.header.treehead
	for depth := 0; cur != 0; depth++ {
		if depth >= maxTreeDepth {
			return 0, 0, nil, ErrMaxDepth
		}
		n, err := readTreeNode(p.file, cur)
		if err != nil {
			return 0, 0, nil, err
		}
		switch cmp := uid.Compare(n.uid); {
		case cmp == 0:
			return cur, parent, n, nil
		case cmp < 0:
			parent, cur = cur, n.lnode
		default:
			parent, cur = cur, n.rnode
		}
	}
	return 0, 0, nil, fmt.Errorf("%w: %s", ErrNoExist, uid)
}

// treeInsert 插入一个新节点 (uid 必须尚不存在，否则 ErrExists)。
// n 的 typ/extra/payload 由调用方准备好；lnode/rnode 在这里清零。
// 返回新节点的偏移。
func (p *Parcel) treeInsert(uid types.UID, n *treeNode) (uint64, error) {
	n.uid = uid
	n.lnode = 0
	n.rnode = 0

	// 下降到空位，记住父节点
	var parent uint64
	var left bool
	cur := p.header.treehead
	for depth := 0; cur != 0; depth++ {
		if depth >= maxTreeDepth {
			return 0, ErrMaxDepth
		}
		tn, err := readTreeNode(p.file, cur)
		if err != nil {
			return 0, err
		}
		switch cmp := uid.Compare(tn.uid); {
		case cmp == 0:
			return 0, fmt.Errorf("%w: %s", ErrExists, uid)
		case cmp < 0:
			parent, left, cur = cur, true, tn.lnode
		default:
			parent, left, cur = cur, false, tn.rnode
		}
	}

	// 先写子节点，再改父指针。中间崩溃会留下一个孤儿节点，
	// 但不会出现指向垃圾的指针（见设计说明：不保证多记录写入的原子性）。
	offset, _, err := p.nodeAlloc(treeNodeSize)
	if err != nil {
		return 0, err
	}
	if err := writeTreeNode(p.file, offset, n); err != nil {
		return 0, err
	}
	if err := p.setChild(parent, left, offset); err != nil {
		return 0, err
	}
	return offset, nil
}

// setChild 把 parent 的左/右指针 (parent == 0 时是 header 的 treehead)
// 改为 target 并落盘。
func (p *Parcel) setChild(parent uint64, left bool, target uint64) error {
	if parent == 0 {
		p.header.treehead = target
		return p.header.write(p.file)
	}
	pn, err := readTreeNode(p.file, parent)
	if err != nil {
		return err
	}
	if left {
		pn.lnode = target
	} else {
		pn.rnode = target
	}
	return writeTreeNode(p.file, parent, pn)
}

// treeDelete 标准 BST 删除。节点的字节区间（以及 out-of-line 负载
// 区间）归还 freelist。
// 双子节点的情况会把中序后继搬进被删节点的位置，返回值 moved 是
// 被搬动对象的 UID（没有搬动时为零值），它的缓存条目也需要失效。
func (p *Parcel) treeDelete(uid types.UID) (moved types.UID, err error) {
	// 定位节点和父节点，记录从父节点下来的方向
	var parent uint64
	var left bool
	cur := p.header.treehead
	var n *treeNode
	for depth := 0; ; depth++ {
		if cur == 0 {
			return moved, fmt.Errorf("%w: %s", ErrNoExist, uid)
		}
		if depth >= maxTreeDepth {
			return moved, ErrMaxDepth
		}
		tn, err := readTreeNode(p.file, cur)
		if err != nil {
			return moved, err
		}
		cmp := uid.Compare(tn.uid)
		if cmp == 0 {
			n = tn
			break
		}
		if cmp < 0 {
			parent, left, cur = cur, true, tn.lnode
		} else {
			parent, left, cur = cur, false, tn.rnode
		}
	}

	// 被删对象自己的 out-of-line 负载先归还
	if err := p.freePayload(n); err != nil {
		return moved, err
	}

	switch {
	case n.lnode == 0 && n.rnode == 0:
		// 叶子：父指针清零
		if err := p.setChild(parent, left, 0); err != nil {
			return moved, err
		}
		return moved, p.nodeFree(cur, treeNodeSize)

	case n.lnode == 0 || n.rnode == 0:
		// 单子节点：把孩子接到父节点上
		child := n.lnode
		if child == 0 {
			child = n.rnode
		}
		if err := p.setChild(parent, left, child); err != nil {
			return moved, err
		}
		return moved, p.nodeFree(cur, treeNodeSize)

	default:
		// 双子节点：找中序后继（右子树最左节点），把它的
		// uid/type/payload 拷进当前节点，再摘掉后继本体。
		// 后继最多只有右孩子，摘除退化成上面两种情况。
		succParent := cur
		soff := n.rnode
		var sn *treeNode
		for depth := 0; ; depth++ {
			if depth >= maxTreeDepth {
				return moved, ErrMaxDepth
			}
			t, err := readTreeNode(p.file, soff)
			if err != nil {
				return moved, err
			}
			if t.lnode == 0 {
				sn = t
				break
			}
			succParent, soff = soff, t.lnode
		}

		n.uid = sn.uid
		n.typ = sn.typ
		n.extra = sn.extra
		n.payload = sn.payload
		if succParent == cur {
			// 后继就是右孩子本身
			n.rnode = sn.rnode
			if err := writeTreeNode(p.file, cur, n); err != nil {
				return moved, err
			}
		} else {
			if err := writeTreeNode(p.file, cur, n); err != nil {
				return moved, err
			}
			// 后继一定是它父节点的左孩子
			if err := p.setChild(succParent, true, sn.rnode); err != nil {
				return moved, err
			}
		}
		// 注意：后继的负载所有权已经转移到存活节点，这里只归还节点本体
		return sn.uid, p.nodeFree(soff, treeNodeSize)
	}
}

// freePayload 归还节点的 out-of-line 负载区间（如果有）
func (p *Parcel) freePayload(n *treeNode) error {
	if n.typ.Inline() || n.dataSize() == 0 {
		return nil
	}
	return p.nodeFree(n.dataOffset(), n.dataSize())
}

// treeWalk 中序遍历整棵树，对每个节点调用 visit。
// 深度超限（损坏成环）返回 ErrMaxDepth。
func (p *Parcel) treeWalk(visit func(offset uint64, n *treeNode) error) error {
	return p.walkStep(p.header.treehead, 0, visit)
}

func (p *Parcel) walkStep(offset uint64, depth int, visit func(uint64, *treeNode) error) error {
	if offset == 0 {
		return nil
	}
	if depth >= maxTreeDepth {
		return ErrMaxDepth
	}
	n, err := readTreeNode(p.file, offset)
	if err != nil {
		return err
	}
	if err := p.walkStep(n.lnode, depth+1, visit); err != nil {
		return err
	}
	if err := visit(offset, n); err != nil {
		return err
	}
	return p.walkStep(n.rnode, depth+1, visit)
}
