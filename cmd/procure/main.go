package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/procurehq/procure/internal/clock"
	"github.com/procurehq/procure/internal/config"
	"github.com/procurehq/procure/internal/migration"
	"github.com/procurehq/procure/internal/observability"
	"github.com/procurehq/procure/internal/server"
	"github.com/procurehq/procure/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
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
