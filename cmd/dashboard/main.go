// 值班看板终端客户端：按配置角色（宿管/门卫）轮询后端并渲染。
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"campus-gatepass/backend/config"
	"campus-gatepass/backend/internal/console"
	"campus-gatepass/backend/pkg/apiclient"
	applogger "campus-gatepass/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var opts []apiclient.Option
	if cfg.Client.Token != "" {
		opts = append(opts, apiclient.WithToken(cfg.Client.Token))
	}
	client, err := apiclient.New(cfg.Client.BaseURL, opts...)
	if err != nil {
		logger.Fatal("创建 API 客户端失败", zap.Error(err))
	}

	view := console.NewTextView(os.Stdout)

	var pollerCfg console.PollerConfig
	switch cfg.Client.Role {
	case "warden":
		pollerCfg = console.WardenPollerConfig(client, view, cfg.Client.Interval, logger)
	case "security":
		pollerCfg = console.SecurityPollerConfig(client, view, cfg.Client.Interval, logger)
	default:
		logger.Fatal("未知的看板角色", zap.String("role", cfg.Client.Role))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := console.NewPoller(pollerCfg)
	poller.Start(ctx)

	logger.Info("看板已启动",
		zap.String("role", cfg.Client.Role),
		zap.String("base_url", cfg.Client.BaseURL),
		zap.Duration("interval", cfg.Client.Interval),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	poller.Stop()
	logger.Info("看板已退出")
}
