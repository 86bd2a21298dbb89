package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Storage StorageConfig `mapstructure:"storage"`
	Server  ServerConfig  `mapstructure:"server"`
	Grading GradingConfig `mapstructure:"grading"`
	Access  AccessConfig  `mapstructure:"access"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Version  string `mapstructure:"version"`
	LogLevel string `mapstructure:"log_level"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// GradingConfig 计分运维参数
// 预警与积分的业务阈值是常量，不在此开放
type GradingConfig struct {
	SnapshotKeepCount int `mapstructure:"snapshot_keep_count"`
}

// AccessConfig 审批权限配置
type AccessConfig struct {
	AdminIDs []string `mapstructure:"admin_ids"`
}

// Default 返回默认配置（用于首次运行时落盘）
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:     "grade-mirror",
			Version:  "0.1.0",
			LogLevel: "info",
		},
		Storage: StorageConfig{DBPath: "./data/grade.db"},
		Server:  ServerConfig{Addr: "127.0.0.1:8490"},
		Grading: GradingConfig{SnapshotKeepCount: 60},
		Access:  AccessConfig{AdminIDs: []string{}},
	}
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 默认查找路径
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 支持环境变量
	v.SetEnvPrefix("GRADE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("配置文件未找到，使用默认配置")
		} else {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		slog.Info("加载配置文件", "path", v.ConfigFileUsed())
	}

	// 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 处理相对路径
	cfg.Storage.DBPath = resolvePath(cfg.Storage.DBPath)

	return &cfg, nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "grade-mirror")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.log_level", "info")

	// Storage
	v.SetDefault("storage.db_path", "./data/grade.db")

	// Server
	v.SetDefault("server.addr", "127.0.0.1:8490")

	// Grading
	v.SetDefault("grading.snapshot_keep_count", 60)

	// Access
	v.SetDefault("access.admin_ids", []string{})
}

// resolvePath 解析相对路径为绝对路径
func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	// 获取可执行文件目录
	exe, err := os.Executable()
	if err != nil {
		return path
	}

	exeDir := filepath.Dir(exe)
	return filepath.Join(exeDir, path)
}

// SetupLogger 根据配置设置日志级别
func SetupLogger(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
