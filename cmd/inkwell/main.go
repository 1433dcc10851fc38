// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command inkwell is a terminal client for the Inkwell API.
//
// The session is kept in a file between invocations, so a login survives
// until its refresh token expires.
//
// Usage:
//
//	inkwell signup -email a@x.com -password secret123 -name Ada
//	inkwell login -email a@x.com -password secret123
//	inkwell whoami
//	inkwell status
//	inkwell logout
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/taibuivan/inkwell/internal/client/apiclient"
	"github.com/taibuivan/inkwell/internal/client/session"
)

// cliConfig is read from the environment (and an optional .env file).
type cliConfig struct {
	APIURL      string `env:"INKWELL_API_URL"      envDefault:"http://localhost:8080"`
	SessionFile string `env:"INKWELL_SESSION_FILE"`
	Debug       bool   `env:"INKWELL_DEBUG"        envDefault:"false"`
}

const usage = `usage: inkwell <command> [flags]

commands:
  signup   -email -password -name   create an account
  login    -email -password         start a session
  whoami                            show the logged-in profile
  status                            show the local session state
  logout                            end the session
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "inkwell:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}

	_ = godotenv.Load()

	cfg, err := env.ParseAs[cliConfig]()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if cfg.SessionFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("locate config dir: %w", err)
		}
		cfg.SessionFile = filepath.Join(dir, "inkwell", "session.json")
	}

	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	persister := session.NewFilePersister(cfg.SessionFile)
	store := session.NewStore(persister, session.WithLogger(logger))
	if err := store.InitializeAuth(ctx); err != nil {
		logger.Warn("session_not_restored", slog.Any("error", err))
	}

	client := apiclient.New(cfg.APIURL, store,
		apiclient.WithLogger(logger),
		apiclient.OnSessionExpired(func() {
			fmt.Fprintln(stderr, "Session expired. Please log in again.")
		}),
	)

	command, rest := args[0], args[1:]
	switch command {
	case "signup":
		return signup(ctx, client, rest, stdout)
	case "login":
		return login(ctx, client, rest, stdout)
	case "whoami":
		return whoami(ctx, client, stdout)
	case "status":
		return status(store, persister, stdout)
	case "logout":
		client.Logout(ctx)
		fmt.Fprintln(stdout, "Logged out.")
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func signup(ctx context.Context, client *apiclient.Client, args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("signup", flag.ContinueOnError)
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password")
	name := flags.String("name", "", "display name")
	if err := flags.Parse(args); err != nil {
		return err
	}

	profile, err := client.Signup(ctx, *email, *password, *name)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Created %s (%s). Run `inkwell login` to start a session.\n", profile.Email, profile.ID)
	return nil
}

func login(ctx context.Context, client *apiclient.Client, args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("login", flag.ContinueOnError)
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password")
	if err := flags.Parse(args); err != nil {
		return err
	}

	snapshot, err := client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Logged in as %s.\n", snapshot.Identity.DisplayName)
	return nil
}

func whoami(ctx context.Context, client *apiclient.Client, stdout io.Writer) error {
	profile, err := client.Me(ctx)
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthenticated) {
			return errors.New("not logged in")
		}
		return err
	}

	fmt.Fprintf(stdout, "%s <%s>\n", profile.DisplayName, profile.Email)
	return nil
}

func status(store *session.Store, persister *session.FilePersister, stdout io.Writer) error {
	snapshot := store.Snapshot()

	fmt.Fprintf(stdout, "state: %s\n", store.State())
	fmt.Fprintf(stdout, "file:  %s\n", persister.Path())
	if !snapshot.IsAuthenticated {
		return nil
	}

	if snapshot.Identity != nil {
		fmt.Fprintf(stdout, "user:  %s <%s>\n", snapshot.Identity.DisplayName, snapshot.Identity.Email)
	}

	if expiresAt, err := session.TokenExpiry(snapshot.AccessToken); err == nil {
		label := "expires"
		if store.IsTokenExpired() {
			label = "expired"
		}
		fmt.Fprintf(stdout, "access token %s: %s\n", label, expiresAt.Local().Format(time.RFC1123))
	}

	if expiresAt, err := session.TokenExpiry(snapshot.RefreshToken); err == nil {
		fmt.Fprintf(stdout, "session ends: %s\n", expiresAt.Local().Format(time.RFC1123))
	}
	return nil
}
