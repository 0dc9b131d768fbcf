package main

import (
	"os"

	"github.com/gobuffalo/grift/grift"

	"github.com/silinternational/claimflow/domain"
	_ "github.com/silinternational/claimflow/grifts"
	"github.com/silinternational/claimflow/log"
)

var GitCommitHash string

func main() {
	log.Init(domain.Env.GoEnv, domain.Env.LogLevel, domain.Env.SentryDSN, GitCommitHash)

	if err := grift.Exec(os.Args[1:], false); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
