package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/salt-detective/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("saltdetective")
		os.Exit(1)
	}
}
