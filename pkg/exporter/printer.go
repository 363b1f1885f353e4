package exporter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ChaoticConundrum/zparcel/pkg/parcel"
	"github.com/ChaoticConundrum/zparcel/pkg/types"
)

// PrintObjects 按 ls 风格打印对象清单 (ListObjects 的输出)
func PrintObjects(entries []parcel.ObjectEntry, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "UID\tTYPE\tSIZE\tOFFSET\n")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n",
			e.UID, types.TypeName(e.Type), fmtSize(e.Size), e.Offset)
	}
	return tw.Flush()
}

// PrintValue 按对象类型打印单个对象的值 (fetch 命令用)
func PrintValue(p *parcel.Parcel, uid types.UID, w io.Writer) error {
	switch t := p.GetType(uid); t {
	case types.NullObj:
		fmt.Fprintln(w, "null")
	case types.BoolObj:
		v, err := p.FetchBool(uid)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, v)
	case types.UintObj:
		v, err := p.FetchUint(uid)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, v)
	case types.SintObj:
		v, err := p.FetchSint(uid)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, v)
	case types.FloatObj:
		v, err := p.FetchFloat(uid)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, v)
	case types.UIDObj:
		v, err := p.FetchUID(uid)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, v)
	case types.BlobObj:
		// 二进制直接写给 w，调用方可以把 stdout 重定向到文件
		r, err := p.FetchBlobReader(uid)
		if err != nil {
			return err
		}
		buf := make([]byte, 32*1024)
		for !r.AtEnd() {
			n, rerr := r.Read(buf)
			if n > 0 {
				if _, werr := w.Write(buf[:n]); werr != nil {
					return werr
				}
			}
			if rerr != nil && rerr != io.EOF {
				return rerr
			}
		}
	case types.StringObj:
		v, err := p.FetchString(uid)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, v)
	case types.ListObj:
		list, err := p.FetchList(uid)
		if err != nil {
			return err
		}
		for _, id := range list {
			fmt.Fprintln(w, id)
		}
	case types.FileObj:
		nameID, dataID, err := p.FetchFile(uid)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "name: %s\ndata: %s\n", nameID, dataID)
	default:
		return fmt.Errorf("object not found: %s", uid)
	}
	return nil
}

func fmtSize(n uint64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fM", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fK", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
