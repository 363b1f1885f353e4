// pkg/exporter/archive.go
//
// CBOR 归档：把 parcel 的全部对象导出成一份可移植的档案，
// 或者从档案重建一个 parcel。归档是交换格式，不是磁盘格式：
// 磁盘上永远是 version 1 的二进制树布局。
package exporter

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/ChaoticConundrum/zparcel/pkg/parcel"
	"github.com/ChaoticConundrum/zparcel/pkg/types"
)

// 规范化编码：Map Key 排序，禁止不定长，保证同样内容产出同样字节
var encOptions = cbor.EncOptions{
	Sort:        cbor.SortCanonical,
	IndefLength: cbor.IndefLengthForbidden,
}

var em, _ = encOptions.EncMode()

// 解码限制容器规模，防止恶意档案耗尽内存
var decOptions = cbor.DecOptions{
	MaxArrayElements: 1 << 20,
	MaxMapPairs:      1 << 20,
	MaxNestedLevels:  16,
	IndefLength:      cbor.IndefLengthForbidden,
	DupMapKey:        cbor.DupMapKeyEnforcedAPF,
}

var dm, _ = decOptions.DecMode()

// Record 是档案里的一个对象。值字段按类型标签二选一填充，
// 其余保持零值 (omitempty 不落盘)。
type Record struct {
	UID  string `cbor:"u"`
	Type uint8  `cbor:"t"`

	Bool  *bool    `cbor:"b,omitempty"`
	Uint  *uint64  `cbor:"n,omitempty"`
	Sint  *int64   `cbor:"i,omitempty"`
	Float *float64 `cbor:"f,omitempty"`
	Ref   *string  `cbor:"r,omitempty"`
	Blob  []byte   `cbor:"d,omitempty"`
	Str   *string  `cbor:"s,omitempty"`
	List  []string `cbor:"l,omitempty"`

	// 文件对象的两个引用
	FileName *string `cbor:"fn,omitempty"`
	FileData *string `cbor:"fd,omitempty"`
}

// Archive 是档案的顶层结构
type Archive struct {
	Version int      `cbor:"v"`
	Root    string   `cbor:"root,omitempty"`
	Objects []Record `cbor:"objs"`
}

const archiveVersion = 1

// Export 把打开的 parcel 全量导出为 CBOR 档案
func Export(p *parcel.Parcel, w io.Writer) error {
	entries, err := p.ListObjects()
	if err != nil {
		return err
	}

	arc := Archive{Version: archiveVersion}
	if root, err := p.GetRoot(); err == nil && !root.IsZero() {
		arc.Root = root.String()
	}

	for _, e := range entries {
		rec := Record{UID: e.UID.String(), Type: uint8(e.Type)}
		switch e.Type {
		case types.NullObj:
			// 无负载
		case types.BoolObj:
			v, err := p.FetchBool(e.UID)
			if err != nil {
				return err
			}
			rec.Bool = &v
		case types.UintObj:
			v, err := p.FetchUint(e.UID)
			if err != nil {
				return err
			}
			rec.Uint = &v
		case types.SintObj:
			v, err := p.FetchSint(e.UID)
			if err != nil {
				return err
			}
			rec.Sint = &v
		case types.FloatObj:
			v, err := p.FetchFloat(e.UID)
			if err != nil {
				return err
			}
			rec.Float = &v
		case types.UIDObj:
			v, err := p.FetchUID(e.UID)
			if err != nil {
				return err
			}
			s := v.String()
			rec.Ref = &s
		case types.BlobObj:
			v, err := p.FetchBlob(e.UID)
			if err != nil {
				return err
			}
			rec.Blob = v
		case types.StringObj:
			v, err := p.FetchString(e.UID)
			if err != nil {
				return err
			}
			rec.Str = &v
		case types.ListObj:
			list, err := p.FetchList(e.UID)
			if err != nil {
				return err
			}
			rec.List = make([]string, len(list))
			for i, id := range list {
				rec.List[i] = id.String()
			}
		case types.FileObj:
			nameID, dataID, err := p.FetchFile(e.UID)
			if err != nil {
				return err
			}
			ns, ds := nameID.String(), dataID.String()
			rec.FileName = &ns
			rec.FileData = &ds
		default:
			return fmt.Errorf("cannot export object type %d", e.Type)
		}
		arc.Objects = append(arc.Objects, rec)
	}

	data, err := em.Marshal(&arc)
	if err != nil {
		return fmt.Errorf("failed to marshal archive: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// Import 把 CBOR 档案里的对象写进打开的 parcel（逐条 store，
// 已存在的 UID 走原地更新语义）
func Import(p *parcel.Parcel, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}

	var arc Archive
	if err := dm.Unmarshal(data, &arc); err != nil {
		return fmt.Errorf("corrupted archive: %w", err)
	}
	if arc.Version != archiveVersion {
		return fmt.Errorf("unsupported archive version %d", arc.Version)
	}

	for _, rec := range arc.Objects {
		uid, err := types.ParseUID(rec.UID)
		if err != nil {
			return err
		}
		if err := importRecord(p, uid, rec); err != nil {
			return fmt.Errorf("import %s: %w", rec.UID, err)
		}
	}

	if arc.Root != "" {
		root, err := types.ParseUID(arc.Root)
		if err != nil {
			return err
		}
		return p.SetRoot(root)
	}
	return nil
}

func importRecord(p *parcel.Parcel, uid types.UID, rec Record) error {
	switch types.ObjectType(rec.Type) {
	case types.NullObj:
		return p.StoreNull(uid)
	case types.BoolObj:
		if rec.Bool == nil {
			return fmt.Errorf("bool record missing value")
		}
		return p.StoreBool(uid, *rec.Bool)
	case types.UintObj:
		if rec.Uint == nil {
			return fmt.Errorf("uint record missing value")
		}
		return p.StoreUint(uid, *rec.Uint)
	case types.SintObj:
		if rec.Sint == nil {
			return fmt.Errorf("sint record missing value")
		}
		return p.StoreSint(uid, *rec.Sint)
	case types.FloatObj:
		if rec.Float == nil {
			return fmt.Errorf("float record missing value")
		}
		return p.StoreFloat(uid, *rec.Float)
	case types.UIDObj:
		if rec.Ref == nil {
			return fmt.Errorf("uid record missing value")
		}
		ref, err := types.ParseUID(*rec.Ref)
		if err != nil {
			return err
		}
		return p.StoreUID(uid, ref)
	case types.BlobObj:
		return p.StoreBlob(uid, rec.Blob)
	case types.StringObj:
		if rec.Str == nil {
			return fmt.Errorf("string record missing value")
		}
		return p.StoreString(uid, *rec.Str)
	case types.ListObj:
		list := make([]types.UID, len(rec.List))
		for i, s := range rec.List {
			id, err := types.ParseUID(s)
			if err != nil {
				return err
			}
			list[i] = id
		}
		return p.StoreList(uid, list)
	case types.FileObj:
		if rec.FileName == nil || rec.FileData == nil {
			return fmt.Errorf("file record missing references")
		}
		nameID, err := types.ParseUID(*rec.FileName)
		if err != nil {
			return err
		}
		dataID, err := types.ParseUID(*rec.FileData)
		if err != nil {
			return err
		}
		return p.StoreFile(uid, nameID, dataID)
	default:
		return fmt.Errorf("unknown record type %d", rec.Type)
	}
}
