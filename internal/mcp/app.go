package mcp

import (
	"github.com/felixgeelhaar/discipline/adapter/cli"
	"github.com/felixgeelhaar/discipline/internal/app"
)

// NewCLIApp creates a CLI application instance backed by the provided container.
func NewCLIApp(container *app.Container) *cli.App {
	if container == nil {
		return nil
	}
	return cli.NewApp(container.Store, container.Health, container.Config)
}
