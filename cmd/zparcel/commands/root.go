package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ChaoticConundrum/zparcel/pkg/app"
	"github.com/ChaoticConundrum/zparcel/pkg/config"
)

var (
	cfgFile string
	// 全局应用实例，供子命令使用
	ZP *app.App
)

var rootCmd = &cobra.Command{
	Use:   "zparcel",
	Short: "ZParcel: single-file object store",
	// PersistentPreRunE 在所有子命令执行前运行，统一把 parcel 打开
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// create 命令自己负责建文件，跳过打开检查
		if cmd.Name() == "create" || cmd.Name() == "help" {
			return nil
		}

		var err error
		ZP, err = app.NewApp()
		if err != nil {
			return fmt.Errorf("failed to open parcel: %w\n(Did you run 'zparcel create'?)", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if ZP != nil {
			return ZP.Close()
		}
		return nil
	},
}

// Execute 是入口
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.zparcel/config.yaml)")

	// parcel 文件路径既可以写在 yaml 里，也可以用 --parcel 覆盖
	rootCmd.PersistentFlags().StringP("parcel", "p", "", "parcel file path")
	if err := viper.BindPFlag("parcel.path", rootCmd.PersistentFlags().Lookup("parcel")); err != nil {
		fmt.Println("Failed to bind flag:", err)
		os.Exit(1)
	}

	rootCmd.PersistentFlags().Bool("catalog", false, "enable the sqlite object catalog")
	if err := viper.BindPFlag("catalog.enabled", rootCmd.PersistentFlags().Lookup("catalog")); err != nil {
		fmt.Println("Failed to bind flag:", err)
		os.Exit(1)
	}
}

// initConfig 读取配置文件和环境变量
func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Println("Config error:", err)
		os.Exit(1)
	}
}
