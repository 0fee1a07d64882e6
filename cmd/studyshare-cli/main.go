// Command studyshare-cli browses a StudyShare server from the terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dalemusser/studyshare/internal/app/apiclient"
	"github.com/dalemusser/studyshare/internal/app/system/authctx"
	"github.com/dalemusser/studyshare/internal/app/system/theme"
	"github.com/dalemusser/studyshare/internal/app/terminal"
	"go.uber.org/zap"
	"golang.org/x/term"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "studyshare:", err)
		os.Exit(1)
	}
}

func run() error {
	home, _ := os.UserHomeDir()

	server := flag.String("server", envOr("STUDYSHARE_SERVER", "http://localhost:8080"), "StudyShare server URL")
	session := flag.String("session", envOr("STUDYSHARE_SESSION", filepath.Join(home, ".studyshare", "session.json")), "file holding the saved session")
	themeName := flag.String("theme", envOr("STUDYSHARE_THEME", "light"), "color theme: light or dark")
	downloads := flag.String("downloads", terminal.DefaultDownloadsDir(), "directory for downloaded files")
	debug := flag.Bool("debug", false, "log HTTP traffic to stderr")
	flag.Parse()

	logger := zap.NewNop()
	if *debug {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		logger = l
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := apiclient.New(apiclient.Config{BaseURL: *server, Logger: logger})
	if err != nil {
		return err
	}
	if err := client.LoadSession(*session); err != nil {
		logger.Warn("saved session unreadable", zap.Error(err))
	}

	auth := authctx.New()
	defer auth.Close()
	if err := auth.Initialize(ctx, client); err != nil {
		logger.Warn("could not restore session", zap.Error(err))
	}

	th := theme.New()
	defer th.Close()
	th.Initialize(*themeName)

	in := bufio.NewReader(os.Stdin)
	fd := terminal.TerminalFD(os.Stdin)
	out := terminal.NewPrinter(os.Stdout, th, term.IsTerminal(int(os.Stdout.Fd())))

	repl := &terminal.REPL{
		API:     client,
		Auth:    auth,
		Theme:   th,
		In:      in,
		FD:      fd,
		Out:     out,
		Confirm: terminal.NewConfirmer(in, os.Stdout, fd),
		Files:   terminal.Downloads{Dir: *downloads},
		OnSession: func() {
			if err := os.MkdirAll(filepath.Dir(*session), 0o700); err != nil {
				logger.Warn("session dir", zap.Error(err))
				return
			}
			if err := client.SaveSession(*session); err != nil {
				logger.Warn("save session", zap.Error(err))
			}
		},
		Log: logger,
	}
	if err := repl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
