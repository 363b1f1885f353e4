// pkg/types/uid.go
package types

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
)

// UIDSize 是 UID 的固定字节长度 (128-bit)
const UIDSize = 16

// UID 是对象的唯一标识符 (128-bit)
// 这是一个"值对象"，应当是不可变的。
// 排序规则：按大端无符号整数比较（即逐字节字典序），
// 这也是树索引里的 Key 顺序。
type UID [UIDSize]byte

// ZeroUID 全零 UID，表示"未设置"（例如 Header 里还没指定 root 对象）
var ZeroUID UID

// NewUID 生成一个随机 UID (UUIDv4)
// UID 假定接近均匀随机，这是树深度保持 O(log n) 的前提。
func NewUID() UID {
	return UID(uuid.New())
}

// ParseUID 解析标准 UUID 文本格式 ("xxxxxxxx-xxxx-...")
func ParseUID(s string) (UID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ZeroUID, fmt.Errorf("invalid uid %q: %w", s, err)
	}
	return UID(u), nil
}

// UIDFromBytes 从 16 字节原始数据还原 UID
func UIDFromBytes(b []byte) (UID, error) {
	var id UID
	if len(b) != UIDSize {
		return id, fmt.Errorf("invalid uid length: %d", len(b))
	}
	copy(id[:], b)
	return id, nil
}

func (id UID) String() string { return uuid.UUID(id).String() }

func (id UID) IsZero() bool { return id == ZeroUID }

// Compare 按大端无符号整数语义比较两个 UID
// 返回 -1 / 0 / +1，与 bytes.Compare 一致
func (id UID) Compare(other UID) int {
	return bytes.Compare(id[:], other[:])
}

// Bytes 返回 UID 的副本切片（调用者可以随意修改）
func (id UID) Bytes() []byte {
	out := make([]byte, UIDSize)
	copy(out, id[:])
	return out
}
