package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-rest-posts/internal/config"
	"go-rest-posts/internal/fetch"
	"go-rest-posts/internal/handler"
	"go-rest-posts/internal/logx"
	"go-rest-posts/internal/metrics"
	"go-rest-posts/internal/store"
)

// app 为一次命令执行所需的全部组件。
type app struct {
	opts    *RootOptions
	cfg     *config.Config
	h       *handler.Handler
	store   *store.Store
	db      *store.SQLite
	metrics *metrics.Metrics
	server  *http.Server
}

func openApp(ctx context.Context, opts *RootOptions) (*app, error) {
	// 1) 加载配置并初始化日志
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	logx.Init(cfg.LogLevel, cfg.LogFormat, cfg.LogLocale, cfg.LogColor)

	// 2) HTTP 客户端（含代理与网络错误重试）与指标
	cl, err := fetch.New(fetch.Options{
		ProxyHTTP:  cfg.Proxy.HTTP,
		ProxyHTTPS: cfg.Proxy.HTTPS,
		Timeout:    time.Duration(cfg.Timeout),
		Retry:      cfg.Retry,
	})
	if err != nil {
		return nil, fmt.Errorf("http client: %w", err)
	}
	a := &app{opts: opts, cfg: cfg, metrics: metrics.New()}
	if cfg.MetricsAddr != "" {
		a.serveMetrics(cfg.MetricsAddr)
	}

	// 3) handler 与归档注册
	hopts := cfg.HandlerOptions()
	hopts.Doer = cl
	hopts.Metrics = a.metrics
	a.h, err = handler.New(hopts)
	if err != nil {
		return nil, fmt.Errorf("handler: %w", err)
	}
	cfg.RegisterArchives(a.h)

	// 4) 从数据库恢复快照并创建 store
	a.db, err = store.OpenSQLite(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	snapshot, err := a.db.Load(ctx, a.h.Type())
	if err != nil {
		a.db.Close()
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	logx.Debugf("已恢复快照：%d 条资源，%d 个归档", len(snapshot.Posts), len(snapshot.Archives))
	a.store = store.New(map[string]store.Reducer{a.h.Type(): a.h.Reduce}, store.State{a.h.Type(): snapshot}, a.metrics)
	return a, nil
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	a.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Warnf("指标服务退出：%v", err)
		}
	}()
	logx.Infof("指标服务监听：%s/metrics", addr)
}

// substate 返回本资源类型的切片。
func (a *app) substate() handler.Substate { return a.store.Substate(a.h.Type()) }

func (a *app) selector() func(any) handler.Substate { return store.Selector(a.h.Type()) }

// close 写回快照并释放资源。
func (a *app) close(ctx context.Context) error {
	var errs []error
	if !a.opts.NoSave {
		if err := a.db.Save(ctx, a.h.Type(), a.substate()); err != nil {
			errs = append(errs, fmt.Errorf("save snapshot: %w", err))
		}
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close db: %w", err))
	}
	if a.server != nil {
		sctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		_ = a.server.Shutdown(sctx)
	}
	return errors.Join(errs...)
}

// withApp 打开组件、执行 fn 并在结束时写回快照。
func withApp(cmd interface{ Context() context.Context }, opts *RootOptions, fn func(ctx context.Context, a *app) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, a)
}
