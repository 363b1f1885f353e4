// pkg/parcel/errors.go
package parcel

import "errors"

// 错误分类。所有操作统一走 error 返回值这一条通道：
// 前置条件违反 (parcel 未打开、类型不匹配) 和 I/O/结构性损坏
// 用同一套哨兵错误表达，调用方用 errors.Is 判断。
var (
	ErrNotOpen  = errors.New("parcel is not open")
	ErrOpen     = errors.New("failed to open parcel")
	ErrSeek     = errors.New("seek failed")
	ErrRead     = errors.New("read failed")
	ErrWrite    = errors.New("write failed")
	ErrExists   = errors.New("object already exists")
	ErrNoExist  = errors.New("object does not exist")
	ErrCRC      = errors.New("crc mismatch")
	ErrTrunc    = errors.New("payload truncated by end of file")
	ErrTree     = errors.New("bad tree structure")
	ErrFreelist = errors.New("bad freelist structure")
	ErrNoFree   = errors.New("no free nodes")
	ErrSig      = errors.New("bad file signature")
	ErrVersion  = errors.New("unsupported header version")
	ErrMaxDepth = errors.New("exceeded maximum tree depth")
	ErrMagic    = errors.New("bad object magic number")
	// "取错类型"也是前置条件违反，单独给一个错误种类方便判断
	ErrWrongType = errors.New("object has wrong type")
)
