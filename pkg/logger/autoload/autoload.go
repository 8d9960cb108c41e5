// Package autoload initializes the global logger from the environment.
// Import it for its side effect:
//
//	import _ "github.com/tanpawarit/Support-Ticket-Triage-Agent/pkg/logger/autoload"
package autoload

import (
	configx "github.com/tanpawarit/Support-Ticket-Triage-Agent/pkg/config"
	logx "github.com/tanpawarit/Support-Ticket-Triage-Agent/pkg/logger"
)

func init() {
	cfg, err := configx.New[logx.Config]("LOG")
	if err != nil {
		logx.Init()
		return
	}
	logx.Init(*cfg)
}
