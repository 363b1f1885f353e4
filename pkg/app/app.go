// pkg/app/app.go
package app

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ChaoticConundrum/zparcel/pkg/block"
	"github.com/ChaoticConundrum/zparcel/pkg/meta"
	"github.com/ChaoticConundrum/zparcel/pkg/parcel"
)

// App 是整个应用程序的依赖容器
// 它持有所有"单例"服务：打开的 parcel、底层文件、可选的目录库。
type App struct {
	Parcel  *parcel.Parcel
	File    *block.FileAccessor
	Catalog *meta.Repository // 可为 nil (catalog.enabled = false)
	Path    string
}

// NewApp 是工厂函数，按 Viper 配置组装并打开已有的 parcel。
// create 命令不走这里（它要建的就是这个文件）。
func NewApp() (*App, error) {
	path := viper.GetString("parcel.path")
	if path == "" {
		return nil, fmt.Errorf("parcel path not set")
	}

	file, err := block.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parcel: %w", err)
	}

	p := parcel.New()
	if err := p.Open(file); err != nil {
		file.Close()
		return nil, err
	}

	a := &App{Parcel: p, File: file, Path: path}
	if err := a.wireCatalog(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// NewAppCreate 新建 parcel 文件并打开（覆盖已有文件）
func NewAppCreate(tailExtend bool) (*App, error) {
	path := viper.GetString("parcel.path")
	if path == "" {
		return nil, fmt.Errorf("parcel path not set")
	}

	file, err := block.CreateFile(path)
	if err != nil {
		return nil, err
	}

	var opts uint32
	if tailExtend {
		opts |= parcel.OptTailExtend
	}
	p := parcel.New()
	if err := p.Create(file, opts); err != nil {
		file.Close()
		return nil, err
	}

	a := &App{Parcel: p, File: file, Path: path}
	if err := a.wireCatalog(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// wireCatalog 按配置接上 sqlite 目录库
func (a *App) wireCatalog() error {
	if !viper.GetBool("catalog.enabled") {
		return nil
	}
	path := viper.GetString("catalog.path")
	if path == "" {
		// 默认放在 parcel 文件旁边
		path = strings.TrimSuffix(a.Path, ".zparcel") + ".catalog.db"
	}
	db, err := meta.NewDB(path)
	if err != nil {
		return err
	}
	a.Catalog = meta.NewRepository(db)
	return nil
}

// Close 关闭 parcel 和底层文件
func (a *App) Close() error {
	if a.Parcel != nil {
		a.Parcel.Close()
	}
	if a.File != nil {
		if err := a.File.Sync(); err != nil {
			a.File.Close()
			return err
		}
		return a.File.Close()
	}
	return nil
}
