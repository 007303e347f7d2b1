// Package autoload initializes the global logger from the LOG_* environment
// on import:
//
//	import _ "github.com/retailops/smartchain/pkg/logger/autoload"
package autoload

import (
	configx "github.com/retailops/smartchain/pkg/config"
	logx "github.com/retailops/smartchain/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
