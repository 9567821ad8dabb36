//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"adaptive-voice/internal/api/server"
	"adaptive-voice/internal/api/v1/services"
	"adaptive-voice/internal/app/metrics"
)

// InitializeServer assembles the HTTP server from a config file path.
func InitializeServer(configPath string) (*server.Server, error) {
	wire.Build(
		provideConfig,
		provideLogger,
		metrics.New,
		services.NewSessionManager,
		server.NewServer,
	)
	return nil, nil
}
