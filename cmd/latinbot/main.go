package main

import (
	"log"

	"latinbot/app"
	"latinbot/core/cmd"
)

func main() {
	err := cmd.Run(cmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			return app.Load(path)
		},
		Bootstrap: func(cfg cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			appCfg, ok := cfg.(*app.Config)
			if !ok {
				return nil, cmd.ErrUnexpectedConfig
			}
			return app.Bootstrap(appCfg)
		},
	})
	if err != nil {
		log.Fatalf("latinbot: %v", err)
	}
}
