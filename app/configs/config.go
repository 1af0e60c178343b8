package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Auth      AuthConfig      `json:"auth"`
	AI        AIConfig        `json:"ai"`
	News      NewsConfig      `json:"news"`
	Scheduler SchedulerConfig `json:"scheduler"`
}

type ServerConfig struct {
	Port int `json:"port"`
}

type AuthConfig struct {
	JWTSecret string `json:"jwt_secret"`
}

type AIConfig struct {
	OpenAIKey    string   `json:"openai_key"`
	OpenAIModel  string   `json:"openai_model"`
	GeminiKey    string   `json:"gemini_key"`
	GeminiModels []string `json:"gemini_models"`
}

type NewsConfig struct {
	APIKey   string `json:"api_key"`
	BaseURL  string `json:"base_url"`
	PageSize int    `json:"page_size"`
}

type SchedulerConfig struct {
	TickSec         int `json:"tick_sec"`
	StalenessSec    int `json:"staleness_sec"`
	ResultPageLimit int `json:"result_page_limit"`
}

type Manager struct {
	path string
	mu   sync.RWMutex
	cfg  Config
}

func DefaultPath() string {
	return filepath.Join("config", "config.json")
}

func NewManager(path string) (*Manager, error) {
	mgr := &Manager{
		path: path,
		cfg:  defaultConfig(),
	}
	if err := mgr.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	if err := mgr.save(); err != nil {
		return nil, err
	}
	return mgr, nil
}

func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Update(apply func(*Config)) (Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apply(&m.cfg)
	applyDefaults(&m.cfg)
	if err := m.saveLocked(); err != nil {
		return Config{}, err
	}
	return m.cfg, nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&m.cfg)
			applyDefaults(&m.cfg)
		}
		return err
	}
	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return err
	}
	m.cfg = fileCfg
	applyEnv(&m.cfg)
	applyDefaults(&m.cfg)
	return nil
}

func (m *Manager) save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}
	out := m.cfg
	// Secrets arriving through the environment are not written back to disk.
	if os.Getenv("OPENAI_API_KEY") != "" {
		out.AI.OpenAIKey = ""
	}
	if os.Getenv("GEMINI_API_KEY") != "" {
		out.AI.GeminiKey = ""
	}
	if os.Getenv("NEWS_API_KEY") != "" {
		out.News.APIKey = ""
	}
	if os.Getenv("JWT_SECRET") != "" {
		out.Auth.JWTSecret = ""
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0644)
}

// applyEnv lets deployment environments override file values. Credentials
// normally arrive this way rather than through the config file.
func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
	if v := strings.TrimSpace(os.Getenv("JWT_SECRET")); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		cfg.AI.OpenAIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" {
		cfg.AI.GeminiKey = v
	}
	if v := strings.TrimSpace(os.Getenv("NEWS_API_KEY")); v != "" {
		cfg.News.APIKey = v
	}
}

func defaultConfig() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		cfg.Auth.JWTSecret = "trendpulse_secret_key"
	}
	if strings.TrimSpace(cfg.AI.OpenAIModel) == "" {
		cfg.AI.OpenAIModel = "gpt-4o-mini"
	}
	if len(cfg.AI.GeminiModels) == 0 {
		cfg.AI.GeminiModels = []string{"gemini-1.5-flash", "gemini-1.5-flash-8b", "gemini-1.5-pro"}
	}
	if strings.TrimSpace(cfg.News.BaseURL) == "" {
		cfg.News.BaseURL = "https://newsapi.org/v2/everything"
	}
	if cfg.News.PageSize <= 0 || cfg.News.PageSize > 20 {
		cfg.News.PageSize = 5
	}
	if cfg.Scheduler.TickSec <= 0 {
		cfg.Scheduler.TickSec = 60
	}
	if cfg.Scheduler.StalenessSec <= 0 {
		cfg.Scheduler.StalenessSec = 3600
	}
	if cfg.Scheduler.ResultPageLimit <= 0 {
		cfg.Scheduler.ResultPageLimit = 50
	}
}
