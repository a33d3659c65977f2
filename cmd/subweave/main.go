package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/John-Robertt/subweave/internal/httpapi"
)

func main() {
	listen := flag.String("listen", "127.0.0.1:25500", "HTTP 监听地址")
	readHeaderTimeout := flag.Duration("read-header-timeout", 5*time.Second, "HTTP ReadHeaderTimeout（请求头读取超时）")
	convertTimeout := flag.Duration("convert-timeout", 60*time.Second, "单次转换的总超时（包含远程拉取）")
	fetchTimeout := flag.Duration("fetch-timeout", 15*time.Second, "单次远程拉取的超时（每个 URL 一次请求）")
	shutdownTimeout := flag.Duration("shutdown-timeout", 10*time.Second, "收到退出信号后的优雅退出等待时间")
	upstreamProxy := flag.String("upstream-proxy", "", "远程拉取使用的上游代理（socks5:// 或 http://），为空则直连")
	logLevel := flag.String("log-level", "info", "日志级别（debug/info/warn/error）")
	healthcheck := flag.Bool("healthcheck", false, "探测 /healthz 后退出（容器健康检查用）")
	flag.Parse()

	if *healthcheck {
		target, err := deriveHealthzURL(*listen)
		if err != nil {
			logrus.Fatal(err)
		}
		if err := runHealthcheck(target, 3*time.Second); err != nil {
			logrus.Fatal(err)
		}
		return
	}

	if lvl, err := logrus.ParseLevel(*logLevel); err == nil {
		logrus.SetLevel(lvl)
	} else {
		logrus.WithField("level", *logLevel).Warn("无法识别的日志级别，使用 info")
	}

	srv := &http.Server{
		Addr: *listen,
		Handler: httpapi.NewHandlerWithOptions(httpapi.Options{
			ConvertTimeout: *convertTimeout,
			FetchTimeout:   *fetchTimeout,
			UpstreamProxy:  *upstreamProxy,
		}),
		ReadHeaderTimeout: *readHeaderTimeout,
	}

	logrus.WithField("addr", *listen).Info("listening")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logrus.Info("shutdown signal received")

		shCtx, cancel := context.WithTimeout(context.Background(), *shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			logrus.WithError(err).Warn("graceful shutdown failed")
			_ = srv.Close()
		}

		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}
}

// deriveHealthzURL turns the -listen value into a loopback probe URL.
// Wildcard hosts are probed via 127.0.0.1.
func deriveHealthzURL(listen string) (string, error) {
	s := strings.TrimSpace(listen)
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimSuffix(s, "/healthz")
	s = strings.TrimSuffix(s, "/")

	host, port, err := net.SplitHostPort(s)
	if err != nil {
		// A bare port ("25500" or ":25500") still works.
		if !strings.Contains(s, ":") && s != "" {
			host, port = "", s
		} else {
			return "", fmt.Errorf("无法解析监听地址 %q: %w", listen, err)
		}
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	if port == "" {
		return "", fmt.Errorf("监听地址 %q 缺少端口", listen)
	}
	u := url.URL{Scheme: "http", Host: net.JoinHostPort(host, port), Path: "/healthz"}
	return u.String(), nil
}

func runHealthcheck(target string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, target)
	}
	return nil
}
