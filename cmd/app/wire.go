//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/coinboard/coinboard/internal/bootstrap"
	"github.com/coinboard/coinboard/internal/domain/account"
	"github.com/coinboard/coinboard/internal/infra/config"
	httpiface "github.com/coinboard/coinboard/internal/interface/http"
	"github.com/coinboard/coinboard/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAccountConfig,
		provideRepository,
		provideBlacklist,
		provideAvatarStorage,
		account.NewService,
		httpiface.NewAccountHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
