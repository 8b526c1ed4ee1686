package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yuqie6/GameLens/internal/eventbus"
)

// LocalServer 本地 HTTP 服务
type LocalServer struct {
	deps    *Deps
	hub     *eventbus.Hub
	ln      net.Listener
	srv     *http.Server
	baseURL string
}

// Options 启动参数
type Options struct {
	ListenAddr string // e.g. "127.0.0.1:8480"
}

// Start 启动 HTTP 服务；ctx 取消时自动关闭
func Start(ctx context.Context, deps *Deps, opts Options) (*LocalServer, error) {
	if deps == nil {
		return nil, fmt.Errorf("deps 不能为空")
	}
	if strings.TrimSpace(opts.ListenAddr) == "" {
		opts.ListenAddr = "127.0.0.1:8480"
	}

	ln, err := net.Listen("tcp", opts.ListenAddr)
	if err != nil {
		return nil, err
	}

	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		_ = ln.Close()
		return nil, err
	}
	baseURL := "http://127.0.0.1:" + portStr

	hub := deps.Hub
	if hub == nil {
		hub = eventbus.NewHub()
		deps.Hub = hub
	}

	api := newAPI(deps, hub)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", api.handleHealth)
	mux.HandleFunc("/api/events", api.handleSSE)
	api.registerJSONRoutes(mux)

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ls := &LocalServer{
		deps:    deps,
		hub:     hub,
		ln:      ln,
		srv:     srv,
		baseURL: baseURL,
	}

	go func() {
		<-ctx.Done()
		_ = ls.Shutdown(context.Background())
	}()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server 异常退出", "error", err)
		}
	}()

	slog.Info("HTTP 服务已启动", "base_url", baseURL)
	return ls, nil
}

// BaseURL 返回监听地址
func (s *LocalServer) BaseURL() string {
	if s == nil {
		return ""
	}
	return s.baseURL
}

// Shutdown 优雅关闭
func (s *LocalServer) Shutdown(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// handleSSE 管理端实时事件流
func (a *apiServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "stream not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	sub := a.hub.Subscribe(ctx, 32)

	// initial event
	_, _ = io.WriteString(w, "event: ready\n")
	_, _ = io.WriteString(w, "data: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// 心跳保活
			_, _ = io.WriteString(w, ": keepalive\n\n")
			flusher.Flush()
		case evt, ok := <-sub:
			if !ok {
				return
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			_, _ = io.WriteString(w, "event: "+evt.Type+"\n")
			_, _ = io.WriteString(w, "data: "+string(payload)+"\n\n")
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
