// 包 config 负责加载与校验应用配置（settings.yaml），
// 对外提供结构体 Config 及默认值/合法性校验。
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"go-rest-posts/internal/fetch"
	"go-rest-posts/internal/handler"
	"go-rest-posts/internal/model"
)

type Config struct {
	API         API       `yaml:"API"`
	Archives    []Archive `yaml:"ARCHIVES"`
	Database    Database  `yaml:"DATABASE"`
	Proxy       Proxy     `yaml:"PROXY"`
	Timeout     Duration  `yaml:"TIMEOUT"` // 单次请求总超时，如 25s
	Retry       int       `yaml:"RETRY"`   // 仅网络错误重试
	MetricsAddr string    `yaml:"METRICS_ADDR"`
	LogLevel    string    `yaml:"LOG_LEVEL"`
	LogFormat   string    `yaml:"LOG_FORMAT"` // text|json|pretty
	LogLocale   string    `yaml:"LOG_LOCALE"` // zh-CN|en
	LogColor    string    `yaml:"LOG_COLOR"`  // auto|always|never
}

type API struct {
	URL         string            `yaml:"url"`
	Type        string            `yaml:"type"`
	Nonce       string            `yaml:"nonce"`
	Query       map[string]any    `yaml:"query"`
	Headers     map[string]string `yaml:"headers"`
	Credentials string            `yaml:"credentials"` // include|same-origin|omit
	Rethrow     *bool             `yaml:"rethrow"`     // 默认 true
	Actions     map[string]string `yaml:"actions"`     // archiveStart: MY_ACTION
	TempID      string            `yaml:"temp_id"`     // counter|uuid
	Context     string            `yaml:"context"`     // 单条读取默认 context
}

// Archive 为预先注册的归档：键 + 固定查询参数。
type Archive struct {
	Key   string         `yaml:"key"`
	Query map[string]any `yaml:"query"`
}

type Database struct {
	Type string `yaml:"type"` // sqlite (default)
	DSN  string `yaml:"dsn"`  // ./posts.db
}

type Proxy struct {
	HTTP  string `yaml:"http"`
	HTTPS string `yaml:"https"`
}

// Duration 支持 "25s" 形式的字符串。
type Duration time.Duration

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	v, err := time.ParseDuration(n.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", n.Value, err)
	}
	*d = Duration(v)
	return nil
}

func Load(path string) (*Config, error) {
	// Load 从文件读取 YAML 并反序列化为 Config，同时进行基础校验与默认值填充。
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	// Validate 负责合法性检查与默认值设置，避免在业务层分散判空逻辑。
	if strings.TrimSpace(c.API.URL) == "" {
		return errors.New("API.url is required")
	}
	if strings.TrimSpace(c.API.Type) == "" {
		c.API.Type = "posts"
	}
	switch c.API.Credentials {
	case "":
		c.API.Credentials = fetch.CredentialsInclude
	case fetch.CredentialsInclude, fetch.CredentialsSameOrigin, fetch.CredentialsOmit:
	default:
		return fmt.Errorf("unsupported API.credentials: %s", c.API.Credentials)
	}
	if c.API.Rethrow == nil {
		t := true
		c.API.Rethrow = &t
	}
	switch c.API.TempID {
	case "":
		c.API.TempID = "counter"
	case "counter", "uuid":
	default:
		return fmt.Errorf("unsupported API.temp_id: %s", c.API.TempID)
	}
	if c.API.Context == "" {
		c.API.Context = handler.DefaultContext
	}
	for name := range c.API.Actions {
		if _, err := handler.ParseKind(name); err != nil {
			return fmt.Errorf("API.actions: %w", err)
		}
		if strings.TrimSpace(c.API.Actions[name]) == "" {
			return fmt.Errorf("API.actions.%s must not be empty", name)
		}
	}
	seen := make(map[string]bool, len(c.Archives))
	for i, a := range c.Archives {
		if a.Key == "" {
			return fmt.Errorf("ARCHIVES[%d]: key is required", i)
		}
		if seen[a.Key] {
			return fmt.Errorf("ARCHIVES[%d]: duplicate key %s", i, a.Key)
		}
		seen[a.Key] = true
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.Type != "sqlite" {
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	if c.Database.DSN == "" {
		c.Database.DSN = "./posts.db"
	}
	if c.Timeout < 0 {
		return errors.New("TIMEOUT must be >= 0")
	}
	if c.Timeout == 0 {
		c.Timeout = Duration(25 * time.Second)
	}
	if c.Retry < 0 {
		c.Retry = 0
	}
	if c.LogFormat == "" {
		c.LogFormat = "pretty"
	}
	if c.LogLocale == "" {
		c.LogLocale = "zh-CN"
	}
	if c.LogColor == "" {
		c.LogColor = "auto"
	}
	return nil
}

// HandlerOptions 将 API 段转换为 handler.Options（不含 Doer/Metrics）。
func (c *Config) HandlerOptions() handler.Options {
	actions := make(map[handler.Kind]string, len(c.API.Actions))
	for name, v := range c.API.Actions {
		if k, err := handler.ParseKind(name); err == nil {
			actions[k] = v
		}
	}
	opts := handler.Options{
		URL:     c.API.URL,
		Query:   model.Params(c.API.Query),
		Nonce:   c.API.Nonce,
		Type:    c.API.Type,
		Actions: actions,
		FetchOptions: &fetch.RequestOptions{
			Header:      c.API.Headers,
			Credentials: c.API.Credentials,
		},
		SwallowErrors: c.API.Rethrow != nil && !*c.API.Rethrow,
	}
	if c.API.TempID == "uuid" {
		opts.TempIDs = handler.UUIDs{}
	}
	return opts
}

// RegisterArchives 将 ARCHIVES 中的归档注册到 handler。
func (c *Config) RegisterArchives(h *handler.Handler) {
	for _, a := range c.Archives {
		h.RegisterArchive(a.Key, handler.Literal(a.Query))
	}
}
