package cmd

import (
	"github.com/achilleasa/lbvh/log"
	"github.com/urfave/cli"
)

var logger = log.New("lbvh")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}

	for _, module := range ctx.GlobalStringSlice("debug-module") {
		log.SetModuleLevel(module, log.Debug)
	}
}
