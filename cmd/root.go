package main

import (
	"io"
	"os"

	"github.com/fyerfyer/pickup-extractor/api/middleware"
	appconfig "github.com/fyerfyer/pickup-extractor/config"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	envFile  string
	logLevel string

	cfg    *appconfig.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pickupd",
	Short: "Extract voice-over pickup annotations from script documents",
	Long: `pickupd scans a script document for pickup annotations: text in square
brackets, and bold, underlined or highlighted segments reported by the editor.

It runs as an HTTP service (pickupd serve) or over a single request file
(pickupd extract).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// extract的结果写到标准输出，日志改写到标准错误
		console := cmd.OutOrStdout()
		if cmd == extractCmd {
			console = cmd.ErrOrStderr()
		}
		return initApp(console)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: defaults and PICKUP_* environment variables)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug/info/warn/error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(extractCmd)
}

// initApp 加载环境变量和配置并初始化日志
func initApp(console io.Writer) error {
	// .env不存在时忽略
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	loaded, err := appconfig.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
	}
	cfg = loaded

	logger = middleware.ConfigureLogger(middleware.LogOptions{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		Console:    console,
	})

	gin.SetMode(cfg.Server.Mode)
	return nil
}
