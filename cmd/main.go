package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/tekrabyte/tekraswap/config"
	"github.com/tekrabyte/tekraswap/core/cache"
	"github.com/tekrabyte/tekraswap/core/currency"
	"github.com/tekrabyte/tekraswap/core/db"
	"github.com/tekrabyte/tekraswap/core/events"
	"github.com/tekrabyte/tekraswap/core/store"
	"github.com/tekrabyte/tekraswap/core/swap"
	"github.com/tekrabyte/tekraswap/core/token"
	"github.com/tekrabyte/tekraswap/core/web"
	"github.com/tekrabyte/tekraswap/utils/logger"
)

func main() {
	configPath := flag.String("config_path", "./", "config file")
	logicLogFile := flag.String("logic_log_file", "./log/tekraswap.log", "logic log file")
	flag.Parse()

	//init logic logger
	logger.Init(*logicLogFile)

	//set log level
	logger.SetLogLevel("debug")

	err := config.LoadConf(*configPath)
	if err != nil {
		log.Fatal("load config failed:", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		log.Fatal("ensure schema failed:", err)
	}

	solanaConf := config.GetSolanaConfig()
	rpcURL := solanaConf.HeliusURL
	if rpcURL == "" {
		rpcURL = solanaConf.RPCURL
	}

	marketConf := config.GetMarketDataConfig()

	// No redis configured means the in-process cache.
	var apiCache cache.Cache = cache.NewMemoryCache()
	if config.GetRedisConfig().Host != "" {
		apiCache = cache.NewRedisCache()
	}

	helius := token.NewHeliusClient(rpcURL, apiCache)
	dex := token.NewDexScreenerClient(marketConf.DexScreenerURL, apiCache)
	gecko := token.NewGeckoTerminalClient(marketConf.GeckoTerminalURL)
	tokenService := token.NewService(helius, dex, gecko)

	jupiterConf := config.GetJupiterConfig()
	jupiter := swap.NewJupiterClient(jupiterConf.Host, jupiterConf.APIKey)
	swapStore := store.NewBunSwapStore(db.GetDB())

	var publisher swap.Publisher
	if kp := events.NewKafkaPublisher(); kp != nil {
		publisher = kp
		defer kp.Close()
	}

	swapService := swap.NewService(jupiter, swap.NewFeePolicy(jupiterConf), swapStore, tokenService, publisher)

	rates := currency.NewService()
	rates.Rate(context.Background())
	rates.StartRefresher(context.Background(), time.Hour)

	web.Run(tokenService, swapService, rates)
}
