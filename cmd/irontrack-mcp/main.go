package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/irontrack/internal/config"
	"github.com/meltforce/irontrack/internal/mcp"
	"github.com/meltforce/irontrack/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Stdio MCP transport. With -url the tools call a remote IronTrack
// server over its REST API, otherwise the database from the config file
// is opened directly.
func main() {
	remoteURL := flag.String("url", "", "base URL of a remote IronTrack server (e.g. https://irontrack.tailnet.ts.net)")
	apiKey := flag.String("api-key", "", "API key for the remote server")
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	flag.Parse()

	// Logs go to stderr, stdout carries the MCP protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	if *remoteURL != "" {
		ds = mcp.NewHTTPClient(*remoteURL, *apiKey)
		log.Info("IronTrack MCP starting", "version", Version, "mode", "remote", "url", *remoteURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = mcp.NewLocal(db)
		log.Info("IronTrack MCP starting", "version", Version, "mode", "local")
	}

	srv := mcp.New(ds, Version, log)
	if err := mcpserver.ServeStdio(srv); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
