package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"AssetReport/internal/handler"
	"AssetReport/internal/middleware"
	"AssetReport/internal/model"
	"AssetReport/internal/provider"
	"AssetReport/internal/render"
	"AssetReport/internal/repository"
	"AssetReport/internal/service"
	"AssetReport/pkg/config"
	"AssetReport/pkg/json"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
	outputPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "portfolio-report",
		Short:         "Personal A-share / HK portfolio net-worth report",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(c *cobra.Command, args []string) error {
			return serve()
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "conf/server.ini", "配置文件路径")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(c *cobra.Command, args []string) error {
			return serve()
		},
	}

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render the report page once",
		RunE: func(c *cobra.Command, args []string) error {
			return renderOnce(outputPath)
		},
	}
	renderCmd.Flags().StringVarP(&outputPath, "output", "o", "", "输出文件，为空时写到标准输出")

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the stored config document",
		RunE: func(c *cobra.Command, args []string) error {
			return dumpConfig(os.Stdout)
		},
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(dumpCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// app 进程内共享的依赖
type app struct {
	cfg      *config.Config
	store    repository.Store
	configs  *service.ConfigService
	reports  *service.ReportService
	renderer *render.Renderer
}

func newApp() (*app, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("No .env loaded: %v", err)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	setupLogging(cfg)

	store, err := repository.NewStore(cfg.Store)
	switch {
	case errors.Is(err, repository.ErrStoreNotConfigured):
		logrus.Warn("Config store not configured, set STORE_DRIVER or KV_REDIS_URL")
	case err != nil:
		return nil, fmt.Errorf("init store: %w", err)
	default:
		logrus.Infof("Config store: %s", cfg.Store.Driver)
	}

	renderer, err := render.NewRenderer()
	if err != nil {
		return nil, err
	}

	client := provider.NewClient(cfg.Provider.UserAgent)
	reports := service.NewReportService(
		provider.NewQuoteFetcher(client, cfg.Provider),
		provider.NewFXFetcher(client, cfg.Provider),
		provider.NewNewsFetcher(client, cfg.Provider),
	)

	return &app{
		cfg:      cfg,
		store:    store,
		configs:  service.NewConfigService(store, cfg.Store.Key),
		reports:  reports,
		renderer: renderer,
	}, nil
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logrus.Warnf("Close store: %v", err)
		}
	}
}

func setupLogging(cfg *config.Config) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	level, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	if debug {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)
}

func serve() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// 设置Gin模式
	switch {
	case debug:
		gin.SetMode(gin.DebugMode)
	case strings.EqualFold(a.cfg.Server.Mode, gin.DebugMode):
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	h := handler.NewReportHandler(a.configs, a.reports, a.renderer)
	router := handler.NewRouter(h, middleware.NewRateLimiters(a.cfg.RateLimit))

	addr := ":" + a.cfg.Server.Port
	logrus.Info("===========================================")
	logrus.Info("  Portfolio Report Service")
	logrus.Info("===========================================")
	logrus.Infof("Starting server on %s", addr)

	return router.Run(addr)
}

// renderOnce 生成一次完整页面，未配置存储时使用默认持仓
func renderOnce(path string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	cfg := model.DefaultAssetConfig()
	if a.configs.Available() {
		if cfg, err = a.configs.Load(ctx); err != nil {
			return err
		}
	} else {
		logrus.Warn("Store not configured, rendering built-in defaults")
	}

	page, err := a.renderer.RenderPage(a.reports.BuildReport(ctx, cfg))
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	_, err = io.WriteString(out, page)
	return err
}

// dumpConfig 打印存储中的原始文档，不写入默认值
func dumpConfig(out io.Writer) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.store == nil {
		return repository.ErrStoreNotConfigured
	}

	key := a.cfg.Store.Key
	raw, found, err := a.store.Get(context.Background(), key)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "=== %s (%s) ===\n", key, a.cfg.Store.Driver)
	if !found {
		fmt.Fprintln(out, "(not found)")
		return nil
	}

	var cfg model.AssetConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	for _, code := range cfg.Portfolio.Codes() {
		h, _ := cfg.Portfolio.Get(code)
		fmt.Fprintf(out, "%-10s %-8s %12s\n", code, h.Name, humanize.Comma(h.Shares))
	}
	fmt.Fprintf(out, "liabilities: %s\n", humanize.CommafWithDigits(cfg.Liabilities, 2))
	fmt.Fprintf(out, "raw: %s\n", raw)
	return nil
}
