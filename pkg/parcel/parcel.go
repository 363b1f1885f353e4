// pkg/parcel/parcel.go
//
// parcel 实现单文件对象库 (ZParcel version 1 格式)：
// 128-bit UID → 带类型的值，底下是一棵按 UID 排序的 on-disk 二叉
// 搜索树加一条单链 freelist 分配器，所有记录带 CRC32 校验。
//
// 并发契约：没有任何内部锁。单写者、同步阻塞模型，
// 多线程/多进程共享需要调用方在外部串行化。
package parcel

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ChaoticConundrum/zparcel/pkg/block"
	"github.com/ChaoticConundrum/zparcel/pkg/types"
)

// State 是 parcel 的生命周期状态
type State uint8

const (
	StateClosed State = iota
	StateOpen
	// StateLocked 是给将来互斥支持预留的状态，
	// 目前没有任何进入它的迁移路径。
	StateLocked
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateLocked:
		return "locked"
	default:
		return "invalid"
	}
}

// Parcel 是对象库的公共操作面。
// 借用一个 block.Accessor 作为字节容器，不拥有它的生命周期
// （文件句柄的关闭由调用方负责）。
type Parcel struct {
	state  State
	file   block.Accessor
	header *header
	cache  map[types.UID]*objectInfo
}

// New 返回一个处于 closed 状态的 Parcel
func New() *Parcel {
	return &Parcel{state: StateClosed}
}

// Create 在 file 上建立一个全新的 parcel（覆盖已有内容）并打开。
// opts 是 Opt* 标志位的按位或。
func (p *Parcel) Create(file block.Accessor, opts uint32) error {
	h := &header{
		version: formatVersion,
		flags:   opts,
		tailptr: headerSize, // 高水位线从 header 之后开始
	}
	if err := h.write(file); err != nil {
		return err
	}
	p.file = file
	p.header = h
	p.cache = make(map[types.UID]*objectInfo)
	p.state = StateOpen
	return nil
}

// Open 打开一个已存在的 parcel，校验签名/版本/CRC
func (p *Parcel) Open(file block.Accessor) error {
	h, err := readHeader(file)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpen, err)
	}
	p.file = file
	p.header = h
	p.cache = make(map[types.UID]*objectInfo)
	p.state = StateOpen
	return nil
}

// Close 丢弃缓存并回到 closed 状态。底层 Accessor 不在这里关。
func (p *Parcel) Close() {
	p.state = StateClosed
	p.file = nil
	p.header = nil
	p.cache = nil
}

// State 返回当前状态
func (p *Parcel) State() State { return p.state }

// requireOpen 所有 store/fetch/remove 的共同前置条件：
// 不在 OPEN 状态时立即失败，绝不碰 Block Accessor。
func (p *Parcel) requireOpen() error {
	if p.state != StateOpen {
		return ErrNotOpen
	}
	return nil
}

// Exists 检查 uid 是否在 parcel 里
func (p *Parcel) Exists(uid types.UID) bool {
	if p.state != StateOpen {
		return false
	}
	_, err := p.getObjectInfo(uid)
	return err == nil
}

// GetType 返回对象类型。对象不存在（或 parcel 未打开）返回
// UnknownObj 哨兵，方便调用方直接 switch。
func (p *Parcel) GetType(uid types.UID) types.ObjectType {
	if p.state != StateOpen {
		return types.UnknownObj
	}
	info, err := p.getObjectInfo(uid)
	if err != nil {
		return types.UnknownObj
	}
	return info.typ
}

// GetRoot 读取 header 里的 root UID。
// 这是给上层结构（比如目录树）自举用的独立指针，不校验对象是否存在。
func (p *Parcel) GetRoot() (types.UID, error) {
	if err := p.requireOpen(); err != nil {
		return types.ZeroUID, err
	}
	return p.header.root, nil
}

// SetRoot 改写 header 里的 root UID 并落盘
func (p *Parcel) SetRoot(uid types.UID) error {
	if err := p.requireOpen(); err != nil {
		return err
	}
	p.header.root = uid
	return p.header.write(p.file)
}

// -----------------------------------------------------------------------------
// 存储：每个类型一个 Store*，共用 storeObject
// -----------------------------------------------------------------------------

// storeObject 存储或更新一个对象。
//
// 重复 UID 的语义是"原地更新"（类型可以变）：树层面的 insert 仍然
// 会对已有 UID 报 ErrExists，但外层会把已存在的 UID 路由到更新路径。
// 更新时如果新的 out-of-line 负载和旧的等长，直接复用旧区间；
// 否则旧区间归还 freelist，重新分配。
func (p *Parcel) storeObject(uid types.UID, typ types.ObjectType, data []byte) error {
	if err := p.requireOpen(); err != nil {
		return err
	}

	offset, parent, n, err := p.treeFind(uid)
	switch {
	case err == nil:
		// 更新路径
		return p.updateObject(uid, offset, parent, n, typ, data)
	case errIsNoExist(err):
		// 插入路径
		n := &treeNode{typ: typ}
		if err := p.fillPayload(n, typ, data); err != nil {
			return err
		}
		off, err := p.treeInsert(uid, n)
		if err != nil {
			return err
		}
		p.cacheStore(uid, off, 0, n)
		return nil
	default:
		return err
	}
}

// updateObject 原地更新已有节点
func (p *Parcel) updateObject(uid types.UID, offset, parent uint64, n *treeNode, typ types.ObjectType, data []byte) error {
	oldOut := !n.typ.Inline() && n.dataSize() > 0
	newSize := uint64(len(data))

	switch {
	case oldOut && !typ.Inline() && n.dataSize() == newSize:
		// 等长：原地复用旧区间
		if err := block.WriteFull(p.file, n.dataOffset(), data); err != nil {
			return fmt.Errorf("%w: payload @%d: %v", ErrWrite, n.dataOffset(), err)
		}
		n.typ = typ
	default:
		// 其他情况：旧区间归还，重新编码负载
		if oldOut {
			if err := p.nodeFree(n.dataOffset(), n.dataSize()); err != nil {
				return err
			}
		}
		n.typ = typ
		if err := p.fillPayload(n, typ, data); err != nil {
			return err
		}
	}

	if err := writeTreeNode(p.file, offset, n); err != nil {
		return err
	}
	p.cacheStore(uid, offset, parent, n)
	return nil
}

// fillPayload 按类型宽度类别编码负载：
// 定宽类型内嵌进 16 字节；变宽类型写入新分配的 out-of-line 区间。
func (p *Parcel) fillPayload(n *treeNode, typ types.ObjectType, data []byte) error {
	if typ.Inline() {
		if len(data) > payloadSize {
			return fmt.Errorf("%w: inline payload too large", ErrWrite)
		}
		n.payload = [payloadSize]byte{}
		copy(n.payload[:], data)
		return nil
	}

	if len(data) == 0 {
		// 空 blob/string/list：不分配区间
		n.setData(0, 0)
		return nil
	}
	offset, _, err := p.nodeAlloc(uint64(len(data)))
	if err != nil {
		return err
	}
	if err := block.WriteFull(p.file, offset, data); err != nil {
		return fmt.Errorf("%w: payload @%d: %v", ErrWrite, offset, err)
	}
	n.setData(offset, uint64(len(data)))
	return nil
}

// StoreNull 存储空对象
func (p *Parcel) StoreNull(uid types.UID) error {
	return p.storeObject(uid, types.NullObj, nil)
}

// StoreBool 存储布尔
func (p *Parcel) StoreBool(uid types.UID, b bool) error {
	data := []byte{0}
	if b {
		data[0] = 1
	}
	return p.storeObject(uid, types.BoolObj, data)
}

// StoreUint 存储无符号整数
func (p *Parcel) StoreUint(uid types.UID, num uint64) error {
	var data [8]byte
	binary.BigEndian.PutUint64(data[:], num)
	return p.storeObject(uid, types.UintObj, data[:])
}

// StoreSint 存储有符号整数 (二进制补码)
func (p *Parcel) StoreSint(uid types.UID, num int64) error {
	var data [8]byte
	binary.BigEndian.PutUint64(data[:], uint64(num))
	return p.storeObject(uid, types.SintObj, data[:])
}

// StoreFloat 存储双精度浮点数 (IEEE 754 位模式，NaN/Inf 原样保留)
func (p *Parcel) StoreFloat(uid types.UID, num float64) error {
	var data [8]byte
	binary.BigEndian.PutUint64(data[:], math.Float64bits(num))
	return p.storeObject(uid, types.FloatObj, data[:])
}

// StoreUID 存储一个 UID 引用
func (p *Parcel) StoreUID(uid types.UID, ref types.UID) error {
	return p.storeObject(uid, types.UIDObj, ref[:])
}

// StoreBlob 存储二进制数据块
func (p *Parcel) StoreBlob(uid types.UID, blob []byte) error {
	return p.storeObject(uid, types.BlobObj, blob)
}

// StoreString 存储 UTF-8 字符串
func (p *Parcel) StoreString(uid types.UID, str string) error {
	return p.storeObject(uid, types.StringObj, []byte(str))
}

// StoreList 存储 UID 有序列表 (编码为紧排的 16 字节序列)
func (p *Parcel) StoreList(uid types.UID, list []types.UID) error {
	data := make([]byte, 0, len(list)*types.UIDSize)
	for _, id := range list {
		data = append(data, id[:]...)
	}
	return p.storeObject(uid, types.ListObj, data)
}

// StoreFile 存储文件对象。文件对象不内嵌数据，只保存两个引用：
// nameID 指向文件名字符串对象，dataID 指向内容 Blob 对象。
// 两个被引用对象由调用方自己先行（或随后）存入。
func (p *Parcel) StoreFile(uid types.UID, nameID, dataID types.UID) error {
	data := make([]byte, 0, 2*types.UIDSize)
	data = append(data, nameID[:]...)
	data = append(data, dataID[:]...)
	return p.storeObject(uid, types.FileObj, data)
}

// -----------------------------------------------------------------------------
// 读取：每个类型一个 Fetch*
// -----------------------------------------------------------------------------

// fetchInfo 公共读取前置：状态检查 + 查找 + 类型检查
func (p *Parcel) fetchInfo(uid types.UID, want types.ObjectType) (*objectInfo, error) {
	if err := p.requireOpen(); err != nil {
		return nil, err
	}
	info, err := p.getObjectInfo(uid)
	if err != nil {
		return nil, err
	}
	if info.typ != want {
		return nil, fmt.Errorf("%w: %s is %s, want %s",
			ErrWrongType, uid, types.TypeName(info.typ), types.TypeName(want))
	}
	return info, nil
}

// readData 把 out-of-line 负载整体读进内存，带越界(截断)检查
func (p *Parcel) readData(info *objectInfo) ([]byte, error) {
	size := info.dataSize()
	if size == 0 {
		return nil, nil
	}
	offset := info.dataOffset()
	if offset+size > p.file.Length() {
		return nil, fmt.Errorf("%w: payload @%d+%d", ErrTrunc, offset, size)
	}
	buf := make([]byte, size)
	if err := block.ReadFull(p.file, offset, buf); err != nil {
		return nil, fmt.Errorf("%w: payload @%d: %v", ErrRead, offset, err)
	}
	return buf, nil
}

// FetchBool 读取布尔对象
func (p *Parcel) FetchBool(uid types.UID) (bool, error) {
	info, err := p.fetchInfo(uid, types.BoolObj)
	if err != nil {
		return false, err
	}
	return info.payload[0] != 0, nil
}

// FetchUint 读取无符号整数对象
func (p *Parcel) FetchUint(uid types.UID) (uint64, error) {
	info, err := p.fetchInfo(uid, types.UintObj)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(info.payload[0:8]), nil
}

// FetchSint 读取有符号整数对象
func (p *Parcel) FetchSint(uid types.UID) (int64, error) {
	info, err := p.fetchInfo(uid, types.SintObj)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(info.payload[0:8])), nil
}

// FetchFloat 读取浮点对象
func (p *Parcel) FetchFloat(uid types.UID) (float64, error) {
	info, err := p.fetchInfo(uid, types.FloatObj)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(info.payload[0:8])), nil
}

// FetchUID 读取 UID 引用对象
func (p *Parcel) FetchUID(uid types.UID) (types.UID, error) {
	info, err := p.fetchInfo(uid, types.UIDObj)
	if err != nil {
		return types.ZeroUID, err
	}
	var ref types.UID
	copy(ref[:], info.payload[:])
	return ref, nil
}

// FetchBlob 读取整个 Blob 到内存。大对象建议用 FetchBlobReader 流式读。
func (p *Parcel) FetchBlob(uid types.UID) ([]byte, error) {
	info, err := p.fetchInfo(uid, types.BlobObj)
	if err != nil {
		return nil, err
	}
	return p.readData(info)
}

// FetchBlobReader 返回 Blob 负载区间上的流式读取窗口，
// 不把整个对象缓冲进内存。
func (p *Parcel) FetchBlobReader(uid types.UID) (*block.Bounded, error) {
	info, err := p.fetchInfo(uid, types.BlobObj)
	if err != nil {
		return nil, err
	}
	acc := info.dataAccessor(p.file)
	acc.Seek(0)
	return acc, nil
}

// FetchString 读取字符串对象
func (p *Parcel) FetchString(uid types.UID) (string, error) {
	info, err := p.fetchInfo(uid, types.StringObj)
	if err != nil {
		return "", err
	}
	data, err := p.readData(info)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FetchList 读取 UID 列表对象
func (p *Parcel) FetchList(uid types.UID) ([]types.UID, error) {
	info, err := p.fetchInfo(uid, types.ListObj)
	if err != nil {
		return nil, err
	}
	data, err := p.readData(info)
	if err != nil {
		return nil, err
	}
	if len(data)%types.UIDSize != 0 {
		return nil, fmt.Errorf("%w: list payload length %d", ErrTree, len(data))
	}
	list := make([]types.UID, 0, len(data)/types.UIDSize)
	for i := 0; i < len(data); i += types.UIDSize {
		var id types.UID
		copy(id[:], data[i:i+types.UIDSize])
		list = append(list, id)
	}
	return list, nil
}

// FetchFile 读取文件对象，返回 (文件名字符串对象的 UID, 内容 Blob 对象的 UID)
func (p *Parcel) FetchFile(uid types.UID) (types.UID, types.UID, error) {
	info, err := p.fetchInfo(uid, types.FileObj)
	if err != nil {
		return types.ZeroUID, types.ZeroUID, err
	}
	data, err := p.readData(info)
	if err != nil {
		return types.ZeroUID, types.ZeroUID, err
	}
	if len(data) != 2*types.UIDSize {
		return types.ZeroUID, types.ZeroUID, fmt.Errorf("%w: file payload length %d", ErrTree, len(data))
	}
	var nameID, dataID types.UID
	copy(nameID[:], data[0:types.UIDSize])
	copy(dataID[:], data[types.UIDSize:])
	return nameID, dataID, nil
}

// -----------------------------------------------------------------------------
// 删除与遍历
// -----------------------------------------------------------------------------

// RemoveObject 从 parcel 删除对象，节点和 out-of-line 负载区间归还 freelist
func (p *Parcel) RemoveObject(uid types.UID) error {
	if err := p.requireOpen(); err != nil {
		return err
	}
	moved, err := p.treeDelete(uid)
	if err != nil {
		return err
	}
	delete(p.cache, uid)
	if !moved.IsZero() {
		// BST 删除把另一个对象搬进了新的节点位置，它的缓存也作废
		delete(p.cache, moved)
	}
	return nil
}

// ObjectEntry 是 ListObjects 返回的一条诊断记录
type ObjectEntry struct {
	UID    types.UID
	Type   types.ObjectType
	Size   uint64 // out-of-line 负载长度；内嵌类型为 0
	Offset uint64 // 树节点偏移
}

// ListObjects 中序遍历整棵树，按 UID 升序返回全部对象（诊断用）
func (p *Parcel) ListObjects() ([]ObjectEntry, error) {
	if err := p.requireOpen(); err != nil {
		return nil, err
	}
	var out []ObjectEntry
	err := p.treeWalk(func(offset uint64, n *treeNode) error {
		e := ObjectEntry{UID: n.uid, Type: n.typ, Offset: offset}
		if !n.typ.Inline() {
			e.Size = n.dataSize()
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
