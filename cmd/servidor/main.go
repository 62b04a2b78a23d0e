package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"servidor-core/httpcore"
	"servidor-core/httpcore/domain"
	"servidor-core/httpcore/infra"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	var rateStore domain.LimiterStore
	var windowStore *infra.WindowStore
	var bucketStore *infra.BucketStore
	if cfg.rateEnabled {
		switch cfg.rateStrategy {
		case "window":
			windowStore = infra.NewWindowStore(cfg.rateMaxRequests, cfg.rateWindow)
			rateStore = windowStore
		case "bucket":
			bucketStore = infra.NewBucketStore(cfg.rateRPS, cfg.rateBurst)
			rateStore = bucketStore
		}
	}

	var statsStore domain.StatsStore
	if cfg.statsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			log.Fatalf("redis stats ping error: %v", err)
		}

		statsStore = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
			infra.WithStatsBucket(cfg.statsBucket),
			infra.WithStatsTrackKeys(cfg.statsTrackKeys),
		)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if windowStore != nil {
		windowStore.StartJanitor(ctx)
	}
	if bucketStore != nil {
		bucketStore.StartJanitor(ctx)
	}

	router := infra.NewTrie()
	registerRoutes(router)

	srv := httpcore.NewServer(httpcore.Config{
		Host:               cfg.host,
		Port:               cfg.port,
		MaxConnections:     cfg.maxConnections,
		KeepAliveTimeout:   cfg.keepAliveTimeout,
		WriteTimeout:       cfg.writeTimeout,
		MaxRequestsPerConn: cfg.maxRequestsPerConn,
		MaxHeaderBytes:     cfg.maxHeaderBytes,
		MaxBodyBytes:       cfg.maxBodyBytes,
	}, httpcore.Options{
		Router:     router,
		RateStore:  rateStore,
		Stats:      statsStore,
		RetryAfter: cfg.retryAfter,
		KeyFn:      httpcore.DefaultKeyFunc(cfg.rateKeyHeader, cfg.trustXFF),
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("servidor listening on %s:%d", cfg.host, cfg.port)
	log.Printf("conns: max=%d keepAliveTimeout=%s maxRequestsPerConn=%d", cfg.maxConnections, cfg.keepAliveTimeout, cfg.maxRequestsPerConn)
	log.Printf("rate: enabled=%v strategy=%q max=%d window=%s rps=%.3f burst=%d keyHeader=%q trustXFF=%v",
		cfg.rateEnabled, cfg.rateStrategy, cfg.rateMaxRequests, cfg.rateWindow, cfg.rateRPS, cfg.rateBurst, cfg.rateKeyHeader, cfg.trustXFF)
	log.Printf("stats: enabled=%v redisAddr=%q bucket=%q ttl=%s trackKeys=%v", cfg.statsEnabled, cfg.statsRedisAddr, cfg.statsBucket, cfg.statsTTL, cfg.statsTrackKeys)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, httpcore.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

// registerRoutes monta as rotas de demonstração. Rota duplicada aqui é erro
// de programação e derruba o processo antes do listener abrir.
func registerRoutes(router domain.Router) {
	httpcore.MustAdd(router, domain.MethodGet, "/healthz", func(r *domain.Request, _ domain.Params) domain.Response {
		return domain.JSONResponse(200, map[string]string{"status": "ok"})
	})
	httpcore.MustAdd(router, domain.MethodGet, "/greet/:name", func(r *domain.Request, ps domain.Params) domain.Response {
		return domain.TextResponse(200, "Hello, "+ps["name"]+"!\n")
	})
	httpcore.MustAdd(router, domain.MethodPost, "/echo", func(r *domain.Request, _ domain.Params) domain.Response {
		resp := domain.NewResponse(200)
		ct := r.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}
		resp.Header.Set("Content-Type", ct)
		resp.Body = r.Body
		return resp
	})
	httpcore.MustAdd(router, domain.MethodGet, "/static/*path", func(r *domain.Request, ps domain.Params) domain.Response {
		// placeholder: serviria arquivos; aqui só ecoa o caminho capturado
		return domain.TextResponse(200, ps["path"]+"\n")
	})
}

type config struct {
	host               string
	port               int
	maxConnections     int
	keepAliveTimeout   time.Duration
	writeTimeout       time.Duration
	maxRequestsPerConn int
	maxHeaderBytes     int
	maxBodyBytes       int64

	rateEnabled     bool
	rateStrategy    string
	rateMaxRequests int
	rateWindow      time.Duration
	rateRPS         float64
	rateBurst       int
	rateKeyHeader   string
	trustXFF        bool
	retryAfter      time.Duration

	statsEnabled       bool
	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsPrefix        string
	statsTTL           time.Duration
	statsBucket        string
	statsTrackKeys     bool
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.host = getenvDefault("HOST", "0.0.0.0")
	cfg.port = getenvIntDefault("PORT", 8080)
	cfg.maxConnections = getenvIntDefault("MAX_CONNECTIONS", 256)
	cfg.keepAliveTimeout = getenvDurationDefault("KEEP_ALIVE_TIMEOUT", 90*time.Second)
	cfg.writeTimeout = getenvDurationDefault("WRITE_TIMEOUT", 30*time.Second)
	cfg.maxRequestsPerConn = getenvIntDefault("MAX_REQUESTS_PER_CONN", 0)
	cfg.maxHeaderBytes = getenvIntDefault("MAX_HEADER_BYTES", 8<<10)
	cfg.maxBodyBytes = int64(getenvIntDefault("MAX_BODY_BYTES", 1<<20))

	cfg.rateEnabled = getenvBoolDefault("RATE_ENABLED", true)
	cfg.rateStrategy = strings.ToLower(getenvDefault("RATE_STRATEGY", "window"))
	cfg.rateMaxRequests = getenvIntDefault("RATE_MAX_REQUESTS", 60)
	cfg.rateWindow = getenvDurationDefault("RATE_WINDOW", 1*time.Minute)
	cfg.rateRPS = getenvFloatDefault("RATE_RPS", 10)
	// IMPORTANTE: o "burst" permite uma rajada inicial de requisições.
	// Com RPS muito baixo (ex: 0.02), o padrão 20 pode dar a impressão de que
	// o limiter não está funcionando, porque as primeiras ~20 passam.
	if burst, ok := getenvInt("RATE_BURST"); ok {
		cfg.rateBurst = burst
	} else {
		cfg.rateBurst = 20
		if getenvIsSet("RATE_RPS") && cfg.rateRPS > 0 && cfg.rateRPS < 1 {
			cfg.rateBurst = 1
		}
	}
	cfg.rateKeyHeader = os.Getenv("RATE_KEY_HEADER")
	cfg.trustXFF = getenvBoolDefault("TRUST_XFF", false)
	cfg.retryAfter = getenvDurationDefault("RETRY_AFTER", 1*time.Second)

	cfg.statsEnabled = getenvBoolDefault("STATS_ENABLED", false)
	cfg.statsRedisAddr = getenvDefault("STATS_REDIS_ADDR", "")
	cfg.statsRedisPassword = os.Getenv("STATS_REDIS_PASSWORD")
	cfg.statsRedisDB = getenvIntDefault("STATS_REDIS_DB", 0)
	cfg.statsPrefix = getenvDefault("STATS_PREFIX", "servidor:stats")
	cfg.statsTTL = getenvDurationDefault("STATS_TTL", 24*time.Hour)
	cfg.statsBucket = getenvDefault("STATS_BUCKET", "minute")
	cfg.statsTrackKeys = getenvBoolDefault("STATS_TRACK_KEYS", false)

	if cfg.port <= 0 || cfg.port > 65535 {
		return config{}, errors.New("PORT must be in 1..65535")
	}
	if cfg.maxConnections < 0 {
		return config{}, errors.New("MAX_CONNECTIONS must be >= 0")
	}
	if cfg.rateStrategy != "window" && cfg.rateStrategy != "bucket" {
		return config{}, errors.New("RATE_STRATEGY must be \"window\" or \"bucket\"")
	}
	if cfg.rateEnabled && cfg.rateStrategy == "window" {
		if cfg.rateMaxRequests <= 0 {
			return config{}, errors.New("RATE_MAX_REQUESTS must be > 0")
		}
		if cfg.rateWindow <= 0 {
			return config{}, errors.New("RATE_WINDOW must be > 0")
		}
	}
	if cfg.rateEnabled && cfg.rateStrategy == "bucket" {
		if cfg.rateRPS <= 0 {
			return config{}, errors.New("RATE_RPS must be > 0")
		}
		if cfg.rateBurst <= 0 {
			return config{}, errors.New("RATE_BURST must be > 0")
		}
	}
	if cfg.statsEnabled && strings.TrimSpace(cfg.statsRedisAddr) == "" {
		return config{}, errors.New("STATS_REDIS_ADDR is required when STATS_ENABLED=true")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvInt(k string) (int, bool) {
	v, ok := os.LookupEnv(k)
	if !ok || v == "" {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

func getenvIsSet(k string) bool {
	v, ok := os.LookupEnv(k)
	return ok && v != ""
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
