package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/mohamedamjad/n8n-deploy/internal/cli"
)

func init() {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.CallerKey = ""
	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(log)
}

func main() {
	os.Exit(cli.Main())
}
