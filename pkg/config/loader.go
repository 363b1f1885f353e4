package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Load 初始化 Viper 配置
// cfgFile: 可选，用户显式指定的配置文件路径
func Load(cfgFile string) error {
	// 1. 设置默认值
	setDefaults()

	// 2. 配置搜索路径
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		// 搜索顺序：当前目录 → ./.zparcel → ~/.zparcel
		viper.AddConfigPath(".")
		viper.AddConfigPath(".zparcel")
		viper.AddConfigPath(filepath.Join(home, ".zparcel"))

		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// 3. 读取环境变量 (ZPARCEL_PARCEL_PATH 等)
	viper.SetEnvPrefix("ZPARCEL")
	viper.AutomaticEnv()

	// 4. 读取配置文件；没找到不算错（可能全靠默认值/环境变量）
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("fatal error config file: %w", err)
		}
	}

	return nil
}

func setDefaults() {
	// parcel 文件默认值
	wd, _ := os.Getwd()
	viper.SetDefault("parcel.path", filepath.Join(wd, "data.zparcel"))
	// freelist 满足不了分配时允许在尾部扩展（关掉就会吃到 ErrNoFree）
	viper.SetDefault("parcel.tail_extend", true)

	// 目录库默认关闭；打开后 ls/info 可以走 SQL 查询
	viper.SetDefault("catalog.enabled", false)
	viper.SetDefault("catalog.path", "")
}
