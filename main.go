// main is the entry point of the ccstats CLI.
package main

import (
	"github.com/joho/godotenv"
	"github.com/petrabarus/actions-committer-coverage-stats/cmd"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"github.com/petrabarus/actions-committer-coverage-stats/internal/iocache"
)

func main() {
	// A local .env is optional; Actions passes everything through the environment.
	_ = godotenv.Load()

	defer iocache.CloseStores()
	if err := cmd.Execute(); err != nil {
		iocache.CloseStores()
		contract.LogFatal("Error", err)
	}
}
