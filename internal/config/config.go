package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"salesanalytics/internal/store"
)

// 配置文件名
const (
	FileName    = "config.toml"
	EnvFileName = ".env"
)

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Store  StoreConfig  `toml:"store"`
	Ingest IngestConfig `toml:"ingest"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int  `toml:"port"`
	DevMode     bool `toml:"dev_mode"`
	OpenBrowser bool `toml:"open_browser"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// StoreConfig 数据集存储配置
type StoreConfig struct {
	Driver string `toml:"driver"` // sqlite3 / sqlite / postgres / file / memory
	DSN    string `toml:"dsn"`    // 为空时在数据目录下生成默认路径
}

// IngestConfig 导入配置
type IngestConfig struct {
	ExcludeCustomers []string `toml:"exclude_customers"` // 按客户名精确排除
	MaxUploadMB      int      `toml:"max_upload_mb"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string // 实际读取的配置文件，未找到时为空
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        20270,
			DevMode:     false,
			OpenBrowser: true,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Store: StoreConfig{
			Driver: store.DriverSQLite3,
		},
		Ingest: IngestConfig{
			ExcludeCustomers: []string{},
			MaxUploadMB:      50,
		},
	}
}

// Validate 检查配置取值
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Data.DataDir == "" {
		errs = append(errs, errors.New("data.data_dir is empty"))
	}
	if !slices.Contains(store.Drivers, c.Store.Driver) {
		errs = append(errs, fmt.Errorf("store.driver must be one of %s, got %q", strings.Join(store.Drivers, ", "), c.Store.Driver))
	}
	if c.Store.Driver == store.DriverPostgres && c.Store.DSN == "" {
		errs = append(errs, errors.New("store.dsn is required for postgres"))
	}
	if c.Ingest.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("ingest.max_upload_mb must be positive: %d", c.Ingest.MaxUploadMB))
	}
	return errors.Join(errs...)
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func exeDirOrCwd() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		return "."
	}
	return exeDir
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadFrom(filepath.Join(exeDirOrCwd(), FileName))
}

// LoadConfig 从 config.toml 加载配置
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// LoadFrom 读取指定配置文件；文件不存在时使用默认配置
// 随后读取同目录的 .env，再应用 SALES_* 环境变量覆盖（进程环境优先于 .env）
func LoadFrom(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{}
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		info.Path = configPath
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	dotenv, err := godotenv.Read(filepath.Join(filepath.Dir(configPath), EnvFileName))
	if err != nil && !os.IsNotExist(err) {
		return nil, info, fmt.Errorf("read %s: %w", EnvFileName, err)
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := applyEnv(config, &info, lookup); err != nil {
		return nil, info, err
	}

	return config, info, nil
}

// applyEnv 环境变量覆盖
func applyEnv(config *AppConfig, info *LoadConfigInfo, lookup func(string) (string, bool)) error {
	if v, ok := lookup("SALES_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SALES_PORT %q: %w", v, err)
		}
		config.Server.Port = port
		info.PortSpecified = true
	}
	if v, ok := lookup("SALES_DATA_DIR"); ok && v != "" {
		config.Data.DataDir = v
	}
	if v, ok := lookup("SALES_STORE_DRIVER"); ok && v != "" {
		config.Store.Driver = v
	}
	if v, ok := lookup("SALES_STORE_DSN"); ok && v != "" {
		config.Store.DSN = v
	}
	if v, ok := lookup("SALES_EXCLUDE_CUSTOMERS"); ok {
		config.Ingest.ExcludeCustomers = splitList(v)
	}
	return nil
}

// splitList 逗号分隔，去掉首尾空白与空项
func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(config *AppConfig) error {
	return SaveTo(filepath.Join(exeDirOrCwd(), FileName), config)
}

// SaveTo 保存配置到指定路径
func SaveTo(configPath string, config *AppConfig) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

// ResolveDataDir 数据目录：绝对路径原样使用，相对路径相对于可执行文件目录
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	return filepath.Join(exeDirOrCwd(), config.Data.DataDir)
}

// EnsureDataDir 确保数据目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// StoreOptions 由配置生成存储参数
func StoreOptions(config *AppConfig, dataDir string) store.Options {
	return store.Options{
		Driver:  config.Store.Driver,
		DSN:     config.Store.DSN,
		DataDir: dataDir,
	}
}
