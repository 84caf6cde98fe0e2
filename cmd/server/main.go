package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"swapboard/internal/config"
	"swapboard/internal/engine"
	"swapboard/internal/explorer"
	"swapboard/internal/httpApi"
	"swapboard/internal/model"
	"swapboard/internal/storage/redisStorage"
	"swapboard/internal/webSocket"
	"swapboard/internal/widget"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "[fatal err] Can't build logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	boot := logger.Named("boot")

	if err := cfg.Validate(); err != nil {
		boot.Fatal("invalid config", zap.Error(err))
	}
	variant, _ := widget.ParseVariant(cfg.RecentSwapsVariant)

	// start redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		boot.Fatal("can't start redis", zap.String("addr", cfg.RedisURL), zap.Error(err))
	}

	// initialize all parts
	store := redisStorage.NewStore(rdb, cfg.DedupeTTL, cfg.RecentSwapsLimit, logger.Named("redis"))
	eng := engine.NewEngine(store, cfg.RecentSwapsLimit, logger.Named("engine"))

	linker, err := explorer.NewLinker(cfg.ExplorerBaseURL)
	if err != nil {
		boot.Fatal("bad explorer url", zap.Error(err))
	}
	renderer, err := widget.NewRenderer(linker, logger.Named("widget"))
	if err != nil {
		boot.Fatal("can't parse widget templates", zap.Error(err))
	}
	instances := widget.NewInstances(0)
	wsHub := webSocket.NewHub(logger.Named("ws"))
	eng.OnChange(httpApi.Broadcaster(eng, renderer, wsHub, logger.Named("live")))

	// try to load data from redis
	ctx, cancel := context.WithCancel(context.Background())
	if err := eng.Load(ctx); err != nil {
		boot.Warn("error loading data from redis", zap.Error(err))
	} else {
		boot.Info("data loaded from redis", zap.Int("swaps", len(eng.Trades())))
	}

	if cfg.DemoProducer {
		if err := seedDemo(ctx, eng); err != nil {
			boot.Warn("demo seed failed", zap.Error(err))
		}
		// consumer loop standing in for the swap indexer feed
		events := make(chan model.SwapEvent, 1024)
		boot.Info("starting demo producer")
		go DemoProducer(ctx, events)
		go consume(ctx, eng, events, logger.Named("consumer"))
	}

	// start webSocket reaper
	go wsHub.ReapDead()

	// start http server
	server := httpApi.NewServer(eng, renderer, instances, wsHub, httpApi.Options{
		Variant:     variant,
		Stablecoins: cfg.StablecoinSymbols,
		Logger:      logger.Named("http"),
	})
	srv := &http.Server{
		Addr:         cfg.HttpAddr,
		Handler:      server,
		WriteTimeout: 5 * time.Second,
		ReadTimeout:  30 * time.Second,
	}
	go func() {
		boot.Info("starting http server", zap.String("addr", cfg.HttpAddr), zap.String("variant", string(variant)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			boot.Fatal("http server failed", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	shutdown := logger.Named("shutdown")
	shutdown.Info("shutting down")
	cancel()
	sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer scancel()
	if err := srv.Shutdown(sctx); err != nil {
		shutdown.Error("http shutdown", zap.Error(err))
	}
	if err := rdb.Close(); err != nil {
		shutdown.Error("redis close", zap.Error(err))
	}
	shutdown.Info("shutdown complete")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func consume(ctx context.Context, eng *engine.Engine, events <-chan model.SwapEvent, log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			applied, err := eng.Apply(ctx, ev)
			if err != nil {
				log.Error("failed to apply swap", zap.String("tx", ev.TransactionHash), zap.Error(err))
			} else if !applied {
				log.Debug("duplicate swap, not applied", zap.String("tx", ev.TransactionHash))
			}
		}
	}
}

var demoTokens = []model.TokenMetadata{
	{Address: "0x6b175474e89094c44da98b954eedeac495271d0f", Symbol: "DAI", Name: "Dai Stablecoin", Decimals: 18, Approved: true},
	{Address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", Symbol: "USDC", Name: "USD Coin", Decimals: 6, Approved: true},
	{Address: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18, Approved: true},
	{Address: "0x9f8f72aa9304c8b593d555f12ef6589cc3a579a2", Symbol: "MKR", Name: "Maker", Decimals: 18, Approved: true},
}

var demoRates = map[string]int64{"ETH": 2000, "WETH": 2000, "DAI": 1, "USDC": 1, "MKR": 1500}

func seedDemo(ctx context.Context, eng *engine.Engine) error {
	if err := eng.SetTokens(ctx, demoTokens); err != nil {
		return err
	}
	for sym, r := range demoRates {
		if err := eng.SetRate(ctx, sym, decimal.NewFromInt(r)); err != nil {
			return err
		}
	}
	return nil
}

// DemoProducer generates swap events and sends them to the provided channel at a fixed interval using a ticker.
func DemoProducer(ctx context.Context, out chan<- model.SwapEvent) {
	t := time.NewTicker(2 * time.Second)
	defer t.Stop()

	id := 0
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			id++
			ev := demoSwap(id, now)
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
			// simulate a redelivery now and then
			if id%7 == 0 {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func demoSwap(id int, now time.Time) model.SwapEvent {
	maker := demoTokens[id%len(demoTokens)]
	taker := demoTokens[(id+1)%len(demoTokens)]
	makerUnits := int64(100 + id%900)
	takerUnits := makerUnits * demoRates[maker.Symbol]

	makerRaw := scaleUp(makerUnits, maker.Decimals)
	takerRaw := scaleUp(takerUnits, taker.Decimals)
	ethAmount := float64(makerUnits*demoRates[maker.Symbol]) / float64(demoRates["ETH"])

	return model.SwapEvent{
		MakerAddress:         fmt.Sprintf("0x%040x", 0xa11ce+id),
		TakerAddress:         fmt.Sprintf("0x%040x", 0xb0b+id),
		MakerToken:           maker.Address,
		TakerToken:           taker.Address,
		MakerSymbol:          maker.Symbol,
		TakerSymbol:          taker.Symbol,
		MakerAmount:          makerRaw,
		TakerAmount:          takerRaw,
		MakerAmountFormatted: strconv.FormatInt(makerUnits, 10),
		TakerAmountFormatted: strconv.FormatInt(takerUnits, 10),
		EthAmount:            ethAmount,
		Price:                float64(takerUnits) / float64(makerUnits),
		BaseTokenAmount:      float64(makerUnits),
		BaseTokenSymbol:      maker.Symbol,
		TokenAddress:         taker.Address,
		TokenAmount:          float64(takerUnits),
		TokenSymbol:          taker.Symbol,
		Nonce:                strconv.Itoa(id),
		Expiration:           strconv.FormatInt(now.Add(5*time.Minute).Unix(), 10),
		Timestamp:            now.Unix(),
		TransactionHash:      fmt.Sprintf("0x%064x", now.UnixNano()),
	}
}

func scaleUp(units int64, decimals int) string {
	exp := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Int).Mul(big.NewInt(units), exp).String()
}
