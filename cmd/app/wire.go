//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/epilog/epilog-api/internal/bootstrap"
	"github.com/epilog/epilog-api/internal/domain/advisor"
	"github.com/epilog/epilog-api/internal/domain/airquality"
	"github.com/epilog/epilog-api/internal/infra/config"
	"github.com/epilog/epilog-api/internal/infra/llm/chatgpt"
	httpiface "github.com/epilog/epilog-api/internal/interface/http"
	"github.com/epilog/epilog-api/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAdvisorConfig,
		provideChatGPTClient,
		provideMatrix,
		providePools,
		provideTelemetrySource,
		provideRetriever,
		provideAdviceCache,
		provideOpenAIProxy,
		provideServer,
		provideClosers,
		advisor.NewService,
		wire.Bind(new(advisor.TelemetryProvider), new(*airquality.Source)),
		wire.Bind(new(advisor.ChatClient), new(*chatgpt.Client)),
		httpiface.NewHandler,
		bootstrap.NewApp,
	)
	return nil, nil
}
