package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type DBConfig struct {
	DBName   string `yaml:"name"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SourcesConfig - настройки внешних источников контента
type SourcesConfig struct {
	Twitter struct {
		BearerToken string `yaml:"bearer_token"`
		Query       string `yaml:"query"`
		MaxResults  int    `yaml:"max_results"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"twitter"`
	Reddit struct {
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		Subreddit    string `yaml:"subreddit"`
		Limit        int    `yaml:"limit"`
		AuthURL      string `yaml:"auth_url"`
		BaseURL      string `yaml:"base_url"`
	} `yaml:"reddit"`
}

// Duration - обертка для парсинга длительностей вида "1h" из yaml
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// FeedConfig - политика обновления и пагинации ленты
type FeedConfig struct {
	StalenessThreshold Duration `yaml:"staleness_threshold"`
	RefreshWaitTimeout Duration `yaml:"refresh_wait_timeout"`
	ConnectorTimeout   Duration `yaml:"connector_timeout"`
	DefaultPageSize    int      `yaml:"default_page_size"`
	MaxPageSize        int      `yaml:"max_page_size"`
}

type ConfigSchema struct {
	Databases struct {
		Master   DBConfig   `yaml:"master"`
		Replicas []DBConfig `yaml:"replicas"`
	} `yaml:"databases"`
	Backend struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"backend"`
	Redis    RedisConfig `yaml:"redis"`
	RabbitMQ struct {
		URL string `yaml:"url"`
	} `yaml:"rabbitmq"`
	Sources SourcesConfig `yaml:"sources"`
	Feed    FeedConfig    `yaml:"feed"`
	Logs    struct {
		Level string `yaml:"level"`
	} `yaml:"logs"`
}

var AppConfig *ConfigSchema

func LoadConfig(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	conf := &ConfigSchema{}
	if err := yaml.Unmarshal(data, conf); err != nil {
		return err
	}
	ApplyDefaults(conf)
	AppConfig = conf
	return nil
}

// ApplyDefaults подставляет значения по умолчанию для необязательных полей
func ApplyDefaults(conf *ConfigSchema) {
	if conf.Feed.StalenessThreshold == 0 {
		conf.Feed.StalenessThreshold = Duration(time.Hour)
	}
	if conf.Feed.RefreshWaitTimeout == 0 {
		conf.Feed.RefreshWaitTimeout = Duration(10 * time.Second)
	}
	if conf.Feed.ConnectorTimeout == 0 {
		conf.Feed.ConnectorTimeout = Duration(15 * time.Second)
	}
	if conf.Feed.DefaultPageSize == 0 {
		conf.Feed.DefaultPageSize = 10
	}
	if conf.Feed.MaxPageSize == 0 {
		conf.Feed.MaxPageSize = 100
	}
	if conf.Sources.Twitter.MaxResults == 0 {
		conf.Sources.Twitter.MaxResults = 10
	}
	if conf.Sources.Twitter.Query == "" {
		conf.Sources.Twitter.Query = "creator economy"
	}
	if conf.Sources.Reddit.Limit == 0 {
		conf.Sources.Reddit.Limit = 10
	}
	if conf.Sources.Reddit.Subreddit == "" {
		conf.Sources.Reddit.Subreddit = "CreatorEconomy"
	}
}
