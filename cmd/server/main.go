package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/openride/rideapi/internal/config"
	httpserver "github.com/openride/rideapi/internal/http"
	"github.com/openride/rideapi/internal/identity"
	"github.com/openride/rideapi/internal/rating"
	"github.com/openride/rideapi/internal/repository"
	"github.com/openride/rideapi/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("config error")
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
	}

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		logger.WithError(err).Fatal("connect database")
	}
	defer st.Close()

	var resolver identity.Resolver
	if cfg.RemoteIdentity() {
		resolver, err = identity.NewHTTPClient(cfg.IdentityURL, cfg.IdentityAPIKey, time.Duration(cfg.IdentityTimeout)*time.Second, logger)
		if err != nil {
			logger.WithError(err).Fatal("init identity client")
		}
	} else {
		resolver, err = identity.NewTokenVerifier(cfg.IdentityJWTSecret)
		if err != nil {
			logger.WithError(err).Fatal("init token verifier")
		}
	}

	repo := repository.New(st)
	ratings := rating.NewService(st.Pool(), repo, logger)
	server := httpserver.New(cfg, st, repo, ratings, resolver, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("server error")
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Error("graceful shutdown error")
	}
}
