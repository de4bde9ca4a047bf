//go:build linux

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/touka-aoi/low-level-server/application/http"
	"github.com/touka-aoi/low-level-server/core/buffer"
	"github.com/touka-aoi/low-level-server/core/engine"
	"github.com/touka-aoi/low-level-server/middleware"
	"github.com/touka-aoi/low-level-server/server"
)

const usage = "Usage:\n  http-server [flags] [port]\n\nFlags:\n"

func main() {
	// Parse flags
	var (
		host      = flag.String("host", "0.0.0.0", "Host to listen on")
		port      = flag.Int("port", 8080, "Port to listen on")
		root      = flag.String("root", ".", "Directory GET and PUT targets are resolved against")
		bufSize   = flag.Int("buffer", buffer.DefaultHeaderSize, "Maximum size of a request header block in bytes")
		backlog   = flag.Int("backlog", server.DefaultBacklog, "Listen backlog")
		accessLog = flag.String("access-log", "", "Access log destination: a file path, - for stdout, empty to disable")
		debug     = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(1)
	}
	if flag.NArg() == 1 {
		p, err := strconv.Atoi(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid port number %q\n", flag.Arg(0))
			os.Exit(1)
		}
		*port = p
	}
	if *port < 1 || *port > 65535 {
		fmt.Fprintf(os.Stderr, "Invalid port number %d\n", *port)
		os.Exit(1)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	config := server.DefaultConfig()
	config.Address = *host
	config.Port = *port
	config.Root = *root
	config.Backlog = *backlog
	config.HeaderBufferSize = *bufSize
	if err := config.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	pipeline := middleware.NewPipeline()
	accessOut, closeAccess, err := openAccessLog(*accessLog)
	if err != nil {
		slog.Error("Failed to open access log", "path", *accessLog, "error", err)
		os.Exit(1)
	}
	defer closeAccess()
	if accessOut != nil {
		pipeline.Use(middleware.AccessLog(middleware.NewAccessLogger(accessOut)))
	}
	pipeline.Use(middleware.Recover())

	router := http.DefaultHandlers(http.NewFileStore(config.Root))
	httpApp := http.NewHTTPApplication(router, config.HeaderBufferSize)

	netEngine := engine.NewBlockingNetEngine()
	defer netEngine.Close()

	networkServer := server.NewNetworkServer(netEngine, config, pipeline, httpApp)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := networkServer.Listen(ctx); err != nil {
		slog.Error("Cannot initialize socket", "port", config.Port, "error", err)
		os.Exit(1)
	}
	defer networkServer.Close()

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received")
		cancel()
	}()

	slog.Info("HTTP server starting", "address", networkServer.Addr().String(), "root", config.Root)

	// Run the server
	if err := networkServer.Serve(ctx); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func openAccessLog(dest string) (io.Writer, func(), error) {
	switch dest {
	case "":
		return nil, func() {}, nil
	case "-":
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
