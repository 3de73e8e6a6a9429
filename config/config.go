package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tekrabyte/tekraswap/utils/logger"
)

// one database one instance
type PostgresqlConfig struct {
	Host       string
	Port       int64
	Account    string
	Password   string
	DBName     string
	SchemaName string
}

type RedisConfig struct {
	Host         string `mapstructure:"Host"`
	DB           int64  `mapstructure:"DB"`
	Password     string `mapstructure:"Password"`
	MinIdleConns int64  `mapstructure:"MinIdleConns"`
}

type KafkaConfig struct {
	Host      string
	SwapTopic string
	Protocol  string
	Username  string
	Password  string
	CAPath    string
}

type SolanaConfig struct {
	RPCURL    string
	HeliusURL string
}

type FeeWalletConfig struct {
	Mint    string
	Account string
}

type JupiterConfig struct {
	Host           string
	APIKey         string
	PlatformFeeBps int64
	FeeWallets     []FeeWalletConfig
}

type MarketDataConfig struct {
	DexScreenerURL   string
	GeckoTerminalURL string
}

type WebConfig struct {
	Listen         string
	AllowedOrigins []string
}

// struct decode must has tag
type Config struct {
	PostgresqlConfig PostgresqlConfig `mapstructure:"PostgresqlConfig"`
	RedisConf        RedisConfig      `mapstructure:"RedisConfig"`
	KafkaConf        KafkaConfig      `mapstructure:"KafkaConfig"`
	SolanaConf       SolanaConfig     `mapstructure:"SolanaConfig"`
	JupiterConf      JupiterConfig    `mapstructure:"JupiterConfig"`
	MarketDataConf   MarketDataConfig `mapstructure:"MarketDataConfig"`
	WebConf          WebConfig        `mapstructure:"WebConfig"`
}

var (
	configMutex = sync.RWMutex{}
	config      Config

	configViper *viper.Viper
)

func watchConfig(c *viper.Viper) error {
	c.WatchConfig()
	cfn := func(e fsnotify.Event) {
		logger.Logrus.WithFields(logrus.Fields{"change": e.String()}).Info("config change and reload it")
		reloadConfig(c)
	}

	c.OnConfigChange(cfn)
	return nil
}

func LoadConf(configFilePath string) error {
	config = Config{}
	configMutex.Lock()
	defer configMutex.Unlock()

	configViper = viper.New()
	configViper.SetConfigName("config")
	configViper.AddConfigPath(configFilePath) //endwith "/"
	configViper.SetConfigType("yaml")

	configViper.SetDefault("SolanaConfig.RPCURL", "https://api.mainnet-beta.solana.com")
	configViper.SetDefault("JupiterConfig.Host", "https://quote-api.jup.ag/v6")
	configViper.SetDefault("JupiterConfig.PlatformFeeBps", 50)
	configViper.SetDefault("MarketDataConfig.DexScreenerURL", "https://api.dexscreener.com")
	configViper.SetDefault("MarketDataConfig.GeckoTerminalURL", "https://api.geckoterminal.com")
	configViper.SetDefault("WebConfig.Listen", ":8080")

	if err := configViper.ReadInConfig(); err != nil {
		return err
	}
	if err := configViper.Unmarshal(&config); err != nil {
		return err
	}

	logger.Logrus.WithFields(logrus.Fields{"Config": config}).Info("Load config success")

	if err := watchConfig(configViper); err != nil {
		return err
	}
	return nil
}

func reloadConfig(c *viper.Viper) {
	configMutex.Lock()
	defer configMutex.Unlock()

	if err := c.ReadInConfig(); err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err.Error()}).Error("config ReLoad failed")
	}

	if err := configViper.Unmarshal(&config); err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err.Error()}).Error("unmarshal config failed")
	}

	logger.Logrus.WithFields(logrus.Fields{"config": config}).Info("Config ReLoad Success")
}

func GetPostgresqlConfig() PostgresqlConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.PostgresqlConfig
}

func GetRedisConfig() RedisConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.RedisConf
}

func GetKafkaConfig() KafkaConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.KafkaConf
}

func GetSolanaConfig() SolanaConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.SolanaConf
}

func GetJupiterConfig() JupiterConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.JupiterConf
}

func GetMarketDataConfig() MarketDataConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.MarketDataConf
}

func GetWebConfig() WebConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.WebConf
}
