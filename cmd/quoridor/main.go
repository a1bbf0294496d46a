package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/quoridor/config"
	"github.com/domino14/quoridor/shell"
)

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stderr}
	output.FormatLevel = func(i interface{}) string { return "" }
	output.FormatTimestamp = func(i interface{}) string { return "" }
	log.Logger = log.Output(output)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	sc, err := shell.NewShellController(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("creating shell")
	}
	go sc.Loop(sig)

	<-sig
	log.Info().Msg("bye!")
}
