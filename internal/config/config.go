package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RedisConfig holds configuration for Redis
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"` // 是否启用抽取结果缓存
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`      // 连接池大小
	MinIdleConns int `yaml:"min_idle_conns"` // 最小空闲连接数
	// 超时设置
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`  // 连接超时(秒)
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`  // 读取超时(秒)
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"` // 写入超时(秒)
	// 重试设置
	MaxRetries        int `yaml:"max_retries"`          // 最大重试次数
	MinRetryBackoffMS int `yaml:"min_retry_backoff_ms"` // 最小重试间隔(毫秒)
	MaxRetryBackoffMS int `yaml:"max_retry_backoff_ms"` // 最大重试间隔(毫秒)
	// 抽取结果缓存过期时间(分钟)
	CacheTTLMinutes int `yaml:"cache_ttl_minutes"`
}

// Config 应用程序配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	TextRazor TextRazorConfig `yaml:"textrazor"`
	LLM       LLMConfig       `yaml:"llm"`
	Redis     RedisConfig     `yaml:"redis"`
	Logger    LoggerConfig    `yaml:"logger"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Upload    UploadConfig    `yaml:"upload"`
}

// ServerConfig 定义服务器配置
type ServerConfig struct {
	Address            string   `yaml:"address"` // 例如 ":8080" or "0.0.0.0:8080"
	MaxRequestBodyMB   int      `yaml:"max_request_body_mb"`
	ReadTimeoutSeconds int      `yaml:"read_timeout_seconds"`
	ShutdownTimeout    string   `yaml:"shutdown_timeout"`
	AllowedOrigins     []string `yaml:"allowed_origins"` // 为空时允许所有来源
	EnableAccessLog    bool     `yaml:"enable_access_log"`
	MetricsPath        string   `yaml:"metrics_path"`
	HealthCheckPath    string   `yaml:"health_check_path"`
	RequestIDHeader    string   `yaml:"request_id_header"`
}

// TextRazorConfig 外部实体抽取服务配置
type TextRazorConfig struct {
	APIKey         string `yaml:"api_key"`
	APIURL         string `yaml:"api_url"`
	Extractors     string `yaml:"extractors"`        // 例如 "entities,topics,keywords"
	Language       string `yaml:"language_override"` // 例如 "eng"
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	QPM            int    `yaml:"qpm"`         // 每分钟请求数限制
	MaxRetries     int    `yaml:"max_retries"` // 最大重试次数
}

// LLMConfig 生成式增强 (OpenAI 兼容接口) 配置
type LLMConfig struct {
	Enabled          bool    `yaml:"enabled"`
	APIKey           string  `yaml:"api_key"`
	APIURL           string  `yaml:"api_url"`
	Model            string  `yaml:"model"`
	Temperature      float64 `yaml:"temperature"`
	MaxTokens        int     `yaml:"max_tokens"`
	Timeout          string  `yaml:"timeout"` // 例如 "20s"
	QPM              int     `yaml:"qpm"`
	MaxRetries       int     `yaml:"max_retries"`
	RetryWaitSeconds int     `yaml:"retry_wait_seconds"`
}

// TracingConfig OpenTelemetry 配置
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"` // OTLP gRPC 地址，例如 "localhost:4317"
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// AnalysisConfig 分析流程配置
type AnalysisConfig struct {
	MaxTextLength int `yaml:"max_text_length"` // 超过该长度的文本在调用外部服务前截断 (按字符)
}

// UploadConfig 文件上传配置
type UploadConfig struct {
	MaxFileSizeMB     int      `yaml:"max_file_size_mb"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
}

// LoadConfig 从文件加载配置，随后应用环境变量覆盖和默认值
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath == "" {
		cfg := createDefaultConfig()
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	cfg, err := LoadConfigFromFileOnly(configPath)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadConfigFromFileOnly 从文件加载配置，不从环境变量覆盖
func LoadConfigFromFileOnly(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("必须提供配置文件路径")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 先填默认值，YAML 中出现的字段再覆盖
	cfg := createDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// findConfigFile 在常见位置查找配置文件，找不到返回空字符串
func findConfigFile() string {
	searchPaths := []string{
		"config.yaml",
		filepath.Join("internal", "config", "config.yaml"),
		"../config.yaml",
		"../../config.yaml",
		filepath.Join(os.Getenv("HOME"), ".resume-review", "config.yaml"),
	}
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		searchPaths = append(searchPaths, filepath.Join(execDir, "config.yaml"))
	}
	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// applyEnvOverrides 从环境变量覆盖配置（如果存在）
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TEXTRAZOR_API_KEY"); v != "" {
		cfg.TextRazor.APIKey = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_API_URL"); v != "" {
		cfg.LLM.APIURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("REDIS_ADDRESS"); v != "" {
		cfg.Redis.Address = v
	}
	if v := os.Getenv("SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
}

// applyDefaults 对 YAML 中显式写成零值的关键字段补默认值
func applyDefaults(cfg *Config) {
	def := createDefaultConfig()
	if cfg.Server.Address == "" {
		cfg.Server.Address = def.Server.Address
	}
	if cfg.Server.MetricsPath == "" {
		cfg.Server.MetricsPath = def.Server.MetricsPath
	}
	if cfg.Server.HealthCheckPath == "" {
		cfg.Server.HealthCheckPath = def.Server.HealthCheckPath
	}
	if cfg.Server.RequestIDHeader == "" {
		cfg.Server.RequestIDHeader = def.Server.RequestIDHeader
	}
	if cfg.TextRazor.APIURL == "" {
		cfg.TextRazor.APIURL = def.TextRazor.APIURL
	}
	if strings.TrimSpace(cfg.TextRazor.Extractors) == "" {
		cfg.TextRazor.Extractors = def.TextRazor.Extractors
	}
	if cfg.TextRazor.TimeoutSeconds <= 0 {
		cfg.TextRazor.TimeoutSeconds = def.TextRazor.TimeoutSeconds
	}
	if cfg.Redis.CacheTTLMinutes <= 0 {
		cfg.Redis.CacheTTLMinutes = def.Redis.CacheTTLMinutes
	}
	if cfg.Upload.MaxFileSizeMB <= 0 {
		cfg.Upload.MaxFileSizeMB = def.Upload.MaxFileSizeMB
	}
	if len(cfg.Upload.AllowedExtensions) == 0 {
		cfg.Upload.AllowedExtensions = def.Upload.AllowedExtensions
	}
}

// 创建一个默认配置
func createDefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":3001"
	cfg.Server.MaxRequestBodyMB = 10
	cfg.Server.ReadTimeoutSeconds = 30
	cfg.Server.ShutdownTimeout = "5s"
	cfg.Server.EnableAccessLog = true
	cfg.Server.MetricsPath = "/metrics"
	cfg.Server.HealthCheckPath = "/api/health"
	cfg.Server.RequestIDHeader = "X-Request-ID"

	cfg.TextRazor.APIURL = "https://api.textrazor.com/"
	cfg.TextRazor.Extractors = "entities,topics,keywords"
	cfg.TextRazor.Language = "eng"
	cfg.TextRazor.TimeoutSeconds = 10
	cfg.TextRazor.QPM = 120
	cfg.TextRazor.MaxRetries = 1

	cfg.LLM.APIURL = "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"
	cfg.LLM.Model = "qwen-turbo"
	cfg.LLM.Temperature = 0.3
	cfg.LLM.MaxTokens = 800
	cfg.LLM.Timeout = "20s"
	cfg.LLM.QPM = 60
	cfg.LLM.MaxRetries = 2
	cfg.LLM.RetryWaitSeconds = 1

	// Redis默认配置
	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.PoolSize = 10
	cfg.Redis.MinIdleConns = 2
	cfg.Redis.DialTimeoutSeconds = 5
	cfg.Redis.ReadTimeoutSeconds = 3
	cfg.Redis.WriteTimeoutSeconds = 3
	cfg.Redis.MaxRetries = 3
	cfg.Redis.MinRetryBackoffMS = 8
	cfg.Redis.MaxRetryBackoffMS = 512
	cfg.Redis.CacheTTLMinutes = 60

	cfg.Tracing.Endpoint = "localhost:4317"
	cfg.Tracing.Insecure = true
	cfg.Tracing.ServiceName = "resume-review-go"
	cfg.Tracing.SampleRatio = 1.0

	cfg.Analysis.MaxTextLength = 100000

	cfg.Upload.MaxFileSizeMB = 10
	cfg.Upload.AllowedExtensions = []string{".pdf", ".txt"}

	// 日志默认配置
	cfg.Logger.Level = "info"
	cfg.Logger.Format = "pretty" // 开发环境默认使用美化输出
	cfg.Logger.TimeFormat = "2006-01-02 15:04:05"
	cfg.Logger.ReportCaller = true

	return cfg
}

// Default 返回默认配置的副本
func Default() *Config {
	return createDefaultConfig()
}

// CreateSampleConfig 创建一个示例配置文件
func CreateSampleConfig(filePath string) error {
	if _, err := os.Stat(filePath); err == nil {
		return fmt.Errorf("文件 '%s' 已存在，不会覆盖", filePath)
	}

	data, err := yaml.Marshal(createDefaultConfig())
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("写入示例配置文件 '%s' 失败: %w", filePath, err)
	}
	return nil
}

// CacheTTL 抽取结果缓存的过期时间
func (c *RedisConfig) CacheTTL() time.Duration {
	if c.CacheTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// Timeout TextRazor 请求超时
func (c *TextRazorConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetDuration utility to parse duration strings from config
func GetDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return defaultDuration
	}
	return d
}
