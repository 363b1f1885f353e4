package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ChaoticConundrum/zparcel/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store <type> <uid> [value]",
	Short: "Store an object",
	Long: `Store a typed object under a UID. Pass "-" as the UID to generate a fresh one.

Types and values:
  null                     (no value)
  bool   true|false
  uint   <number>
  sint   <number>
  float  <number>
  uid    <uuid>
  string <text>
  blob   <path>            (file content is stored verbatim)
  list   <uuid> [uuid...]
  file   <path>            (stores name string + content blob + file object)`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, ok := types.ParseTypeName(args[0])
		if !ok {
			return fmt.Errorf("unknown object type %q", args[0])
		}

		uid, err := argUID(args[1])
		if err != nil {
			return err
		}

		vals := args[2:]
		size, err := storeValue(typ, uid, vals)
		if err != nil {
			return err
		}

		if ZP.Catalog != nil {
			if err := ZP.Catalog.Upsert(context.Background(), uid, typ, size); err != nil {
				return fmt.Errorf("catalog update failed: %w", err)
			}
		}

		fmt.Printf("%s %s\n", types.TypeName(typ), uid)
		return nil
	},
}

// argUID 解析 UID 参数，"-" 表示生成新的
func argUID(s string) (types.UID, error) {
	if s == "-" {
		return types.NewUID(), nil
	}
	return types.ParseUID(s)
}

// storeValue 按类型解析参数并写入，返回 out-of-line 负载长度（目录用）
func storeValue(typ types.ObjectType, uid types.UID, vals []string) (uint64, error) {
	p := ZP.Parcel
	one := func() (string, error) {
		if len(vals) != 1 {
			return "", fmt.Errorf("type %s takes exactly one value", types.TypeName(typ))
		}
		return vals[0], nil
	}

	switch typ {
	case types.NullObj:
		return 0, p.StoreNull(uid)

	case types.BoolObj:
		v, err := one()
		if err != nil {
			return 0, err
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return 0, err
		}
		return 0, p.StoreBool(uid, b)

	case types.UintObj:
		v, err := one()
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return 0, p.StoreUint(uid, n)

	case types.SintObj:
		v, err := one()
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return 0, p.StoreSint(uid, n)

	case types.FloatObj:
		v, err := one()
		if err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, err
		}
		return 0, p.StoreFloat(uid, f)

	case types.UIDObj:
		v, err := one()
		if err != nil {
			return 0, err
		}
		ref, err := types.ParseUID(v)
		if err != nil {
			return 0, err
		}
		return 0, p.StoreUID(uid, ref)

	case types.StringObj:
		v, err := one()
		if err != nil {
			return 0, err
		}
		return uint64(len(v)), p.StoreString(uid, v)

	case types.BlobObj:
		v, err := one()
		if err != nil {
			return 0, err
		}
		data, err := os.ReadFile(v)
		if err != nil {
			return 0, err
		}
		return uint64(len(data)), p.StoreBlob(uid, data)

	case types.ListObj:
		list := make([]types.UID, len(vals))
		for i, s := range vals {
			id, err := types.ParseUID(s)
			if err != nil {
				return 0, err
			}
			list[i] = id
		}
		return uint64(len(list) * types.UIDSize), p.StoreList(uid, list)

	case types.FileObj:
		// 文件对象不内嵌数据：先存文件名字符串和内容 Blob，
		// 再存一个指向两者的 file 对象
		v, err := one()
		if err != nil {
			return 0, err
		}
		data, err := os.ReadFile(v)
		if err != nil {
			return 0, err
		}
		nameID := types.NewUID()
		dataID := types.NewUID()
		if err := p.StoreString(nameID, filepath.Base(v)); err != nil {
			return 0, err
		}
		if err := p.StoreBlob(dataID, data); err != nil {
			return 0, err
		}
		fmt.Printf("string %s\nblob %s\n", nameID, dataID)
		return uint64(2 * types.UIDSize), p.StoreFile(uid, nameID, dataID)

	default:
		return 0, fmt.Errorf("cannot store type %s", types.TypeName(typ))
	}
}

func init() {
	rootCmd.AddCommand(storeCmd)
}
