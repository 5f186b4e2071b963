package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relaycache/llmproxy/cache"
	"github.com/relaycache/llmproxy/config"
	"github.com/relaycache/llmproxy/embedding"
	"github.com/relaycache/llmproxy/handler"
	"github.com/relaycache/llmproxy/logger"
	"github.com/relaycache/llmproxy/metrics"
	"github.com/relaycache/llmproxy/observability"
	"github.com/relaycache/llmproxy/pipeline"
	"github.com/relaycache/llmproxy/pricing"
	"github.com/relaycache/llmproxy/requestlog"
	"github.com/relaycache/llmproxy/router"
	"github.com/relaycache/llmproxy/tokenizer"
	"github.com/relaycache/llmproxy/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Missing required environment must prevent the process from
		// accepting traffic at all, and there is no logger yet to
		// report through.
		os.Stderr.WriteString("startup: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg)
	log.Info().Str("env", cfg.Env).Msg("llmproxy starting")

	exactStore, err := cache.NewExactStore(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("exact store construction failed")
	}
	defer exactStore.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	vectorStore, err := cache.NewVectorStore(ctx, cfg.QdrantHost, cfg.QdrantPort, cfg.QdrantAPIKey)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("vector store construction failed")
	}
	defer vectorStore.Close()

	embedClient := embedding.New(cfg.EmbeddingURL)
	upstreamClient := upstream.New(cfg.UpstreamBaseURL, cfg.UpstreamAPIKey)

	tokenCounter, err := tokenizer.New()
	if err != nil {
		log.Warn().Err(err).Msg("tokenizer init failed — usage-fallback estimation disabled")
	}

	var reqLog requestlog.Writer
	if cfg.RequestLogPath != "" {
		fw, err := requestlog.NewFileWriter(cfg.RequestLogPath)
		if err != nil {
			log.Warn().Err(err).Msg("request log init failed — continuing without it")
		} else {
			defer fw.Close()
			reqLog = fw
		}
	}

	m := metrics.New()
	promMetrics := observability.NewPromMetrics()
	priceTable := pricing.Default()

	pl := pipeline.New(exactStore, vectorStore, embedClient, upstreamClient, m, promMetrics, priceTable, reqLog, log)
	if tokenCounter != nil {
		pl = pl.WithTokenizer(tokenCounter)
	}

	proxyHandler := handler.NewProxyHandler(pl, log)
	adminHandler := handler.NewAdminHandler(exactStore, vectorStore, embedClient, m, priceTable, costModelName(), log)

	r := router.New(log, proxyHandler, adminHandler, promMetrics)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: upstream.Timeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("llmproxy listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-done
	log.Info().Msg("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.GracefulTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		log.Info().Msg("llmproxy stopped gracefully")
	}
}

// costModelName picks the pricing-table entry the admin metrics surface
// uses to estimate aggregate cost figures, since this proxy targets a
// single configured provider and model.
func costModelName() string {
	if v := os.Getenv("COST_MODEL"); v != "" {
		return v
	}
	return "gpt-4o"
}
