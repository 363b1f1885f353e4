// pkg/parcel/node.go
package parcel

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/ChaoticConundrum/zparcel/pkg/block"
	"github.com/ChaoticConundrum/zparcel/pkg/types"
)

// on-disk 记录常量
const (
	treeNodeSize = 4 + types.UIDSize + 8 + 8 + 1 + 1 + 4 + 16 // 58
	freeNodeSize = 4 + 8 + 8 + 4                              // 24

	payloadSize = 16
)

// 记录魔数
var (
	treeNodeMagic = [4]byte{'Z', 'P', 'T', 'N'}
	freeNodeMagic = [4]byte{'Z', 'P', 'F', 'N'}
)

// treeNode 是树节点的内存表示，一个存储对象对应一个。
// 布局 (big-endian)：
//
//	magic(4) uid(16) lnode(8) rnode(8) type(1) extra(1) crc(4) payload(16)
//
// crc 覆盖 magic..extra 共 38 字节，payload 不在校验范围内
// （变宽类型的真实数据在 out-of-line 区域，payload 只是指针）。
//
// payload 的两种解释由 type 的宽度类别决定：
// 定宽类型直接内嵌值；变宽类型是 {offset: u64, size: u64} 指向
// 单独分配的字节区间。代码里永远通过 dataOffset/dataSize 和
// setData 显式转换，不做内存重解释。
type treeNode struct {
	uid     types.UID
	lnode   uint64
	rnode   uint64
	typ     types.ObjectType
	extra   uint8
	payload [payloadSize]byte
}

// dataOffset 返回 out-of-line 负载偏移 (仅变宽类型有意义)
func (n *treeNode) dataOffset() uint64 {
	return binary.BigEndian.Uint64(n.payload[0:8])
}

// dataSize 返回 out-of-line 负载长度
func (n *treeNode) dataSize() uint64 {
	return binary.BigEndian.Uint64(n.payload[8:16])
}

// setData 把 payload 置为 {offset, size} 指针形式
func (n *treeNode) setData(offset, size uint64) {
	binary.BigEndian.PutUint64(n.payload[0:8], offset)
	binary.BigEndian.PutUint64(n.payload[8:16], size)
}

func (n *treeNode) encode() []byte {
	buf := make([]byte, treeNodeSize)
	copy(buf[0:4], treeNodeMagic[:])
	copy(buf[4:20], n.uid[:])
	binary.BigEndian.PutUint64(buf[20:28], n.lnode)
	binary.BigEndian.PutUint64(buf[28:36], n.rnode)
	buf[36] = byte(n.typ)
	buf[37] = n.extra
	binary.BigEndian.PutUint32(buf[38:42], crc32.ChecksumIEEE(buf[:38]))
	copy(buf[42:58], n.payload[:])
	return buf
}

// readTreeNode 读取并校验 offset 处的树节点
func readTreeNode(file block.Accessor, offset uint64) (*treeNode, error) {
	buf := make([]byte, treeNodeSize)
	if err := block.ReadFull(file, offset, buf); err != nil {
		return nil, fmt.Errorf("%w: tree node @%d: %v", ErrTrunc, offset, err)
	}

	if [4]byte(buf[0:4]) != treeNodeMagic {
		return nil, fmt.Errorf("%w: tree node @%d", ErrMagic, offset)
	}
	if binary.BigEndian.Uint32(buf[38:42]) != crc32.ChecksumIEEE(buf[:38]) {
		return nil, fmt.Errorf("%w: tree node @%d", ErrCRC, offset)
	}

	n := &treeNode{
		lnode: binary.BigEndian.Uint64(buf[20:28]),
		rnode: binary.BigEndian.Uint64(buf[28:36]),
		typ:   types.ObjectType(buf[36]),
		extra: buf[37],
	}
	copy(n.uid[:], buf[4:20])
	copy(n.payload[:], buf[42:58])
	return n, nil
}

// writeTreeNode 把节点写到 offset，重算 crc
func writeTreeNode(file block.Accessor, offset uint64, n *treeNode) error {
	if err := block.WriteFull(file, offset, n.encode()); err != nil {
		return fmt.Errorf("%w: tree node @%d: %v", ErrWrite, offset, err)
	}
	return nil
}

// freeNode 是 freelist 节点。它存放在它所描述的空闲区间的起始处，
// 所以 offset 是隐式的，记录里只有 next 指针和区间长度。
// 布局：magic(4) next(8) size(8) crc(4)，crc 覆盖前 20 字节。
type freeNode struct {
	next uint64
	size uint64
}

func (n *freeNode) encode() []byte {
	buf := make([]byte, freeNodeSize)
	copy(buf[0:4], freeNodeMagic[:])
	binary.BigEndian.PutUint64(buf[4:12], n.next)
	binary.BigEndian.PutUint64(buf[12:20], n.size)
	binary.BigEndian.PutUint32(buf[20:24], crc32.ChecksumIEEE(buf[:20]))
	return buf
}

func readFreeNode(file block.Accessor, offset uint64) (*freeNode, error) {
	buf := make([]byte, freeNodeSize)
	if err := block.ReadFull(file, offset, buf); err != nil {
		return nil, fmt.Errorf("%w: free node @%d: %v", ErrFreelist, offset, err)
	}

	if [4]byte(buf[0:4]) != freeNodeMagic {
		return nil, fmt.Errorf("%w: free node @%d", ErrMagic, offset)
	}
	if binary.BigEndian.Uint32(buf[20:24]) != crc32.ChecksumIEEE(buf[:20]) {
		return nil, fmt.Errorf("%w: free node @%d", ErrCRC, offset)
	}

	return &freeNode{
		next: binary.BigEndian.Uint64(buf[4:12]),
		size: binary.BigEndian.Uint64(buf[12:20]),
	}, nil
}

func writeFreeNode(file block.Accessor, offset uint64, n *freeNode) error {
	if err := block.WriteFull(file, offset, n.encode()); err != nil {
		return fmt.Errorf("%w: free node @%d: %v", ErrWrite, offset, err)
	}
	return nil
}
