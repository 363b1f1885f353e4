// pkg/parcel/header.go
package parcel

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/ChaoticConundrum/zparcel/pkg/block"
	"github.com/ChaoticConundrum/zparcel/pkg/types"
)

// 文件头常量。布局是格式的一部分，改了就不是 version 1 了。
const (
	headerOffset = 0
	headerSize   = 7 + 1 + 4 + 8 + 8 + 8 + 8 + types.UIDSize + 4 // 64

	formatVersion = 1
)

// 7 字节文件签名
var fileSignature = [7]byte{'Z', 'P', 'A', 'R', 'C', 'E', 'L'}

// parcel 选项位 (header.flags)
const (
	// OptTailExtend: freelist 无法满足分配时，允许在文件尾部扩展
	OptTailExtend uint32 = 1 << 0
)

// header 是文件头的内存表示，常驻于打开的 Parcel 中。
// 布局 (big-endian)：
//
//	sig(7) version(1) flags(4) treehead(8) freehead(8) freetail(8) tailptr(8) root(16) crc(4)
//
// crc 覆盖前面全部 60 字节。
//
// 不变式：tailptr 是高水位线，除尾部扩展外，任何已分配区间都不会
// 从 tailptr 之后开始。treehead == 0 表示空树。
// root 是用户自己设置的入口对象指针，跟 treehead 没有任何关系。
type header struct {
	version  uint8
	flags    uint32
	treehead uint64
	freehead uint64
	freetail uint64
	tailptr  uint64
	root     types.UID
}

// encode 序列化并重算 crc
func (h *header) encode() []byte {
	buf := make([]byte, headerSize)
	copy(buf[0:7], fileSignature[:])
	buf[7] = h.version
	binary.BigEndian.PutUint32(buf[8:12], h.flags)
	binary.BigEndian.PutUint64(buf[12:20], h.treehead)
	binary.BigEndian.PutUint64(buf[20:28], h.freehead)
	binary.BigEndian.PutUint64(buf[28:36], h.freetail)
	binary.BigEndian.PutUint64(buf[36:44], h.tailptr)
	copy(buf[44:60], h.root[:])
	binary.BigEndian.PutUint32(buf[60:64], crc32.ChecksumIEEE(buf[:60]))
	return buf
}

// readHeader 读取并校验文件头
func readHeader(file block.Accessor) (*header, error) {
	buf := make([]byte, headerSize)
	if err := block.ReadFull(file, headerOffset, buf); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrRead, err)
	}

	if [7]byte(buf[0:7]) != fileSignature {
		return nil, ErrSig
	}
	if buf[7] != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, buf[7])
	}
	if binary.BigEndian.Uint32(buf[60:64]) != crc32.ChecksumIEEE(buf[:60]) {
		return nil, fmt.Errorf("%w: header", ErrCRC)
	}

	h := &header{
		version:  buf[7],
		flags:    binary.BigEndian.Uint32(buf[8:12]),
		treehead: binary.BigEndian.Uint64(buf[12:20]),
		freehead: binary.BigEndian.Uint64(buf[20:28]),
		freetail: binary.BigEndian.Uint64(buf[28:36]),
		tailptr:  binary.BigEndian.Uint64(buf[36:44]),
	}
	copy(h.root[:], buf[44:60])
	return h, nil
}

// write 持久化文件头
func (h *header) write(file block.Accessor) error {
	if err := block.WriteFull(file, headerOffset, h.encode()); err != nil {
		return fmt.Errorf("%w: header: %v", ErrWrite, err)
	}
	return nil
}
