package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gibridge/internal/core/config"
)

const VERSION = "0.1.0"

var (
	configPath = flag.String("config", config.DefaultFile, "Path to config file")
	verbose    = flag.Bool("verbose", false, "Enable debug logging")
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: gibridge [flags] <command> [args]\n\n")
	fmt.Fprintf(out, "Commands:\n")
	fmt.Fprintf(out, "  deps [paths...]        print synthetic dependencies per file\n")
	fmt.Fprintf(out, "  resolve <name>         resolve the type of a qualified name\n")
	fmt.Fprintf(out, "  signature <name>       resolve the signature of a callable\n")
	fmt.Fprintf(out, "  attr <class> <attr>    resolve an attribute on an instance of class\n")
	fmt.Fprintf(out, "  namespaces             list namespaces with metadata\n")
	fmt.Fprintf(out, "  index <db> <dir>       import JSON metadata into a SQLite store\n")
	fmt.Fprintf(out, "  watch [paths...]       rescan on change\n")
	fmt.Fprintf(out, "  version                print the version\n\n")
	fmt.Fprintf(out, "Flags:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	// stdout carries command output.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, flag.Args(), os.Stdout); err != nil {
		slog.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
