package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	_ "net/http/pprof"

	"go.uber.org/zap"
)

const defaultPprofBind = "127.0.0.1:6060"

func startPprofServer(ctx context.Context, bind string, logkit *zap.Logger) {
	addr := strings.TrimSpace(bind)
	if addr == "" {
		addr = defaultPprofBind
	}
	srv := &http.Server{Addr: addr, Handler: http.DefaultServeMux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logkit.Error("pprof server exited", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logkit.Debug("start pprof server", zap.String("bind", addr))
}
