package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mkrupp/fishpizzaria/internal/infra/apiclient"
	"github.com/mkrupp/fishpizzaria/internal/infra/config"
	"github.com/mkrupp/fishpizzaria/internal/infra/logging"
	"github.com/mkrupp/fishpizzaria/internal/infra/transport/http"
	"github.com/mkrupp/fishpizzaria/internal/svc/authsvc/authclient"
	"github.com/mkrupp/fishpizzaria/internal/svc/websvc"
)

const (
	appName = "fishpizzaria"
	svcName = "websvc"
)

type Config struct {
	config.EnvConfig

	Log     logging.LoggerConfig       `envPrefix:"LOG_"`
	HTTP    websvc.HTTPTransportConfig `envPrefix:"HTTP_"`
	API     apiclient.Config           `envPrefix:"API_CLIENT_"`
	Session websvc.SessionConfig
}

func main() {
	var (
		cfg Config

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(".env", ".env.local"); err != nil {
		panic(err)
	}

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.websvc")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
			panic(err)
		}

		log.InfoContext(ctx, "shutdown")
	}()

	if cfg.Session.CookieNamesDiffer() {
		log.WarnContext(ctx, "sign-out removes a different cookie than sign-in writes",
			"NEXT_PUBLIC_KEY_TOKEN", cfg.Session.TokenCookie,
			"KEY_TOKEN", cfg.Session.SignOutCookie)
	}

	sessions := websvc.NewSessionStore(
		apiclient.New(cfg.API, nil),
		func(api *apiclient.Client) authclient.AuthClient { return authclient.NewHTTPClient(api) },
		cfg.Session,
	)

	pages, err := websvc.NewPages()
	if err != nil {
		return fmt.Errorf("new pages: %w", err)
	}

	httpTransport := websvc.NewHTTPTransport(sessions, pages, cfg.HTTP)

	if err := http.ListenAndServe(ctx, httpTransport, cfg.HTTP.HTTPTransportConfig); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
