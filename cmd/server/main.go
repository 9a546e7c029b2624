// 班次补位优化服务
// 主程序入口

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/istathak/AUS-submission-schedule-optimizer/internal/config"
	"github.com/istathak/AUS-submission-schedule-optimizer/internal/database"
	"github.com/istathak/AUS-submission-schedule-optimizer/internal/dataset"
	"github.com/istathak/AUS-submission-schedule-optimizer/internal/handler"
	"github.com/istathak/AUS-submission-schedule-optimizer/internal/loader"
	"github.com/istathak/AUS-submission-schedule-optimizer/internal/metrics"
	"github.com/istathak/AUS-submission-schedule-optimizer/internal/repository"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/logger"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/model"
	"github.com/istathak/AUS-submission-schedule-optimizer/pkg/scheduler/solver"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "配置加载失败:", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
	})

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("班次补位优化服务启动中")

	// 加载班次数据并构建不可变数据上下文
	data, db, err := buildDataset(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("数据加载失败")
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	milp := solver.New()

	assignHandler := handler.NewAssignHandler(data, milp, cfg.Solver.Timeout)
	scheduleHandler := handler.NewScheduleHandler(data, milp, cfg.Solver.Timeout)
	statsHandler := handler.NewStatsHandler(data)

	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"status":   "ok",
			"service":  cfg.App.Name,
			"unfilled": data.UnfilledCount(),
		}
		if db != nil {
			if err := db.Health(r.Context()); err != nil {
				resp["status"] = "degraded"
				resp["database"] = err.Error()
			} else {
				resp["database"] = "ok"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// ========================================
	// API v1 端点
	// ========================================

	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "班次补位优化服务 API v1",
			"endpoints": {
				"assign": "GET|POST /api/v1/assign",
				"schedule": {
					"fill": "POST /api/v1/schedule/fill",
					"validate": "GET /api/v1/schedule/validate"
				},
				"profiles": "GET /api/v1/profiles",
				"stats": {
					"workload": "GET /api/v1/stats/workload"
				}
			}
		}`))
	})

	// 单元格补位 API
	mux.HandleFunc("/api/v1/assign", assignHandler.Assign)

	// 整周补位 API
	mux.HandleFunc("/api/v1/schedule/fill", scheduleHandler.Fill)

	// 约束校验 API
	mux.HandleFunc("/api/v1/schedule/validate", scheduleHandler.Validate)

	// 员工画像 API
	mux.HandleFunc("/api/v1/profiles", statsHandler.Profiles)

	// 工作量统计 API
	mux.HandleFunc("/api/v1/stats/workload", statsHandler.Workload)

	// ========================================
	// 监控端点
	// ========================================

	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	// ========================================
	// 中间件
	// ========================================

	// 中间件执行顺序：requestID -> rateLimit -> cors -> logging -> handler
	root := requestIDMiddleware(rateLimitMiddleware(corsMiddleware(loggingMiddleware(mux))))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器（非阻塞）
	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("data_source", cfg.Data.Source).
			Str("target_date", cfg.Data.TargetDate).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}

// buildDataset 按配置加载班次记录并构建数据上下文
func buildDataset(cfg *config.Config) (*dataset.Dataset, *database.DB, error) {
	var shifts []*model.Shift
	var db *database.DB
	var err error

	switch cfg.Data.Source {
	case config.SourcePostgres:
		db, err = database.New(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewSnapshotRepository(db, cfg.Data.Table)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		shifts, err = repo.LoadShifts(ctx)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		s := db.Stats()
		metrics.SetDBConnections("open", s.OpenConnections)
		metrics.SetDBConnections("idle", s.Idle)
	default:
		shifts, err = loader.LoadFile(cfg.Data.CSVPath)
		if err != nil {
			return nil, nil, err
		}
	}

	shifts = loader.Deduplicate(shifts)
	historical, week, err := loader.Split(shifts, cfg.Data.TargetDate)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, nil, err
	}

	data, err := dataset.Build(historical, week)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, nil, err
	}

	filled, unfilled := model.SplitByFilled(week)
	metrics.SetDatasetSize("historical", len(historical))
	metrics.SetDatasetSize("filled", len(filled))
	metrics.SetDatasetSize("unfilled", len(unfilled))

	return data, db, nil
}

// requestIDMiddleware 请求ID追踪中间件
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 尝试从请求头获取 Request ID，没有则生成新的
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		// 设置响应头
		w.Header().Set("X-Request-ID", requestID)

		// 将 Request ID 存储到 context 中
		ctx := context.WithValue(r.Context(), "request_id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware 日志中间件
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// 获取 Request ID
		requestID, _ := r.Context().Value("request_id").(string)

		// 包装ResponseWriter以捕获状态码
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)

		logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Dur("duration", duration).
			Msg("请求处理")

		// 记录Prometheus指标
		metrics.RecordRequestMetrics(r.Method, r.URL.Path, rw.statusCode, duration)
	})
}

// responseWriter 包装ResponseWriter以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RateLimiter 简单的令牌桶限流器
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // 每秒添加的令牌数
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter 创建限流器
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	return &RateLimiter{
		tokens:     requestsPerSecond,
		maxTokens:  requestsPerSecond * 2, // 允许突发流量
		refillRate: requestsPerSecond,
		lastRefill: time.Now(),
	}
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

var globalRateLimiter = NewRateLimiter(100) // 默认 100 QPS

// rateLimitMiddleware 限流中间件
func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !globalRateLimiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   true,
				"code":    "RATE_LIMITED",
				"message": "请求过于频繁，请稍后重试",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware CORS中间件
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
