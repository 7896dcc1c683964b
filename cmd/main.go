package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// 收到SIGINT/SIGTERM时取消上下文，用于优雅关闭
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
