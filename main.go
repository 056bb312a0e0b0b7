// 命令行入口：子命令定义见 internal/cli。
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-rest-posts/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
