// pkg/types/objtype.go
package types

// ObjectType 是对象的类型标签 (on-disk 占 1 字节)
type ObjectType uint8

// 对象类型标签。值是文件格式的一部分，不可重排。
const (
	NullObj   ObjectType = iota // 空对象，无负载
	BoolObj                     // 布尔。1 字节
	UintObj                     // 无符号整数。64-bit
	SintObj                     // 有符号整数。64-bit
	FloatObj                    // 浮点数。双精度
	UIDObj                      // UID 引用
	BlobObj                     // 二进制数据块
	StringObj                   // UTF-8 字符串
	ListObj                     // UID 的有序列表
	FileObj                     // 文件对象 (两个 UID：文件名字符串 + 内容 Blob)

	// MaxObjType 之后的值留给使用者自定义类型
	MaxObjType

	// UnknownObj 哨兵值：对象不存在时 GetType 返回它，
	// 调用方可以直接 switch 而不用先做错误判断
	UnknownObj ObjectType = 255
)

// Inline 返回该类型的负载是否直接内嵌在树节点的 16 字节里。
// 定宽类型内嵌；变宽类型 (blob/string/list/file) 走 out-of-line 区域。
func (t ObjectType) Inline() bool {
	switch t {
	case NullObj, BoolObj, UintObj, SintObj, FloatObj, UIDObj:
		return true
	default:
		return false
	}
}

// ParseTypeName 是 TypeName 的反向映射 (CLI 解析用)
func ParseTypeName(name string) (ObjectType, bool) {
	for t := NullObj; t < MaxObjType; t++ {
		if TypeName(t) == name {
			return t, true
		}
	}
	return UnknownObj, false
}

// TypeName 返回类型标签的可读名称 (诊断/CLI 输出用)
func TypeName(t ObjectType) string {
	switch t {
	case NullObj:
		return "null"
	case BoolObj:
		return "bool"
	case UintObj:
		return "uint"
	case SintObj:
		return "sint"
	case FloatObj:
		return "float"
	case UIDObj:
		return "uid"
	case BlobObj:
		return "blob"
	case StringObj:
		return "string"
	case ListObj:
		return "list"
	case FileObj:
		return "file"
	case UnknownObj:
		return "unknown"
	default:
		return "invalid"
	}
}
