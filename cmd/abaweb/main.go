// abaweb serves the cached atlas as JSON: the summary structures, the
// experiments injected into a structure, and efferent or afferent projection
// summaries computed on request.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/storage"
	"github.com/carbocation/brainatlas"
	"github.com/carbocation/brainatlas/atlas"
	"github.com/carbocation/brainatlas/config"

	_ "github.com/carbocation/brainatlas/compileinfoprint"
)

func main() {
	errors := make(chan error, 1)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig,
		os.Interrupt,
		syscall.SIGTERM,
	)

	var configPath, cacheDir string
	var port int

	flag.StringVar(&configPath, "config", "", "(Optional) Path to a JSON config file. Defaults to brainatlas.json beside this binary, if present.")
	flag.StringVar(&cacheDir, "cache", "", "(Optional) Folder holding the downloaded tables. Overrides the config. May be a Google Storage URL (gs://).")
	flag.IntVar(&port, "port", 0, "(Optional) Port for HTTP server. Overrides the config.")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalln(err)
	}
	if cacheDir != "" {
		cfg.CacheDir = brainatlas.ExpandHome(cacheDir)
	}
	if port > 0 {
		cfg.Port = port
	}

	ctx := context.Background()

	var sclient *storage.Client
	if brainatlas.IsGoogleStoragePath(cfg.CacheDir) {
		sclient, err = storage.NewClient(ctx)
		if err != nil {
			log.Fatalln(err)
		}
		defer sclient.Close()
	}

	aba, err := atlas.OpenFromConfig(ctx, cfg, sclient)
	if err != nil {
		log.Fatalln(err)
	}

	global := &Global{
		Site:  "brainatlas",
		log:   log.New(os.Stderr, log.Prefix(), log.Ldate|log.Ltime),
		atlas: aba,
	}

	global.log.Println("Launching", global.Site, "over", cfg.CacheDir)

	go func() {
		global.log.Println("Starting HTTP server on port", cfg.Port)
		if err := http.ListenAndServe(fmt.Sprintf(`:%d`, cfg.Port), router(global)); err != nil {
			errors <- err
			return
		}
	}()

	select {
	case sigl := <-sig:
		global.log.Printf("\nExit: %s\n", sigl.String())
	case err := <-errors:
		// Return a status code indicating failure
		global.log.Println("Exiting due to error", err)
		os.Exit(1)
	}
}
