// Command policykb is the policy knowledge-base retrieval CLI.
package main

import (
	"fmt"
	"os"

	"github.com/iguales-labs/policykb-cli/internal/adapters/driven/config/file"
	"github.com/iguales-labs/policykb-cli/internal/adapters/driven/storage/memory"
	"github.com/iguales-labs/policykb-cli/internal/adapters/driven/storage/sqlite"
	"github.com/iguales-labs/policykb-cli/internal/adapters/driving/cli"
	"github.com/iguales-labs/policykb-cli/internal/core/ports/driven"
	"github.com/iguales-labs/policykb-cli/internal/core/services"
	"github.com/iguales-labs/policykb-cli/internal/logger"
)

func main() {
	var configStore driven.ConfigStore
	if store, err := file.NewConfigStore(""); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config file unavailable, settings will not persist: %v\n", err)
		configStore = memory.NewConfigStore()
	} else {
		configStore = store
	}

	var kbStore driven.KBStore
	if store, err := sqlite.NewStore(""); err != nil {
		logger.Debug("sqlite store unavailable, using in-memory store: %v", err)
		kbStore = memory.NewKBStore()
	} else {
		kbStore = store
		defer func() { _ = store.Close() }()
	}

	kbService := services.NewKBService(nil, kbStore, configStore)

	cli.SetServices(&cli.Services{
		KB:     kbService,
		Config: configStore,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
