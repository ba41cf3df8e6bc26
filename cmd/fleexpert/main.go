package main

import (
	"github.com/astauriabidco-maker/fle-expert/internal/clock"
	"github.com/astauriabidco-maker/fle-expert/internal/config"
	"github.com/astauriabidco-maker/fle-expert/internal/logger"
	"github.com/astauriabidco-maker/fle-expert/internal/migration"
	"github.com/astauriabidco-maker/fle-expert/internal/server"
	"github.com/astauriabidco-maker/fle-expert/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
