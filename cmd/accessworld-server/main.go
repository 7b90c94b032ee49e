package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"accessworld-server-go/internal/bootstrap"
	platformconfig "accessworld-server-go/internal/platform/config"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径，默认 config.yaml 或 ACCESSWORLD_CONFIG")
	issueToken := flag.String("issue-token", "", "为指定客户端签发访问令牌后退出")
	flag.Parse()

	if *issueToken != "" {
		if err := printToken(*configPath, *issueToken); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "issue token failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("[%s] [INFO] [引导] 开始启动 accessworld-server...\n", time.Now().Format("2006-01-02 15:04:05.000"))
	if err := bootstrap.Run(context.Background(), bootstrap.Options{ConfigPath: *configPath}); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "accessworld-server failed: %v\n", err)
		os.Exit(1)
	}
}

func printToken(configPath, clientID string) error {
	loader := platformconfig.NewLoader().WithDotEnv(true)
	if configPath != "" {
		loader = loader.WithPath(configPath)
	}
	result, err := loader.Load()
	if err != nil {
		return err
	}
	tokens, err := bootstrap.NewAuthToken(result.Config)
	if err != nil {
		return err
	}
	token, err := tokens.GenerateToken(clientID)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
