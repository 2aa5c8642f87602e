// Command token mints an access/refresh token pair for an email using the
// auth settings of the service config. There is no account store: whoever
// holds the shared secret decides who may write.
//
//	go run ./cmd/token -email reader@example.com
package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/pkg/jwt"
)

func main() {
	email := flag.String("email", "", "email to put in the token")
	flag.Parse()
	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	if cfg.Auth.Secret == "" {
		logrus.Fatal("auth.secret is empty")
	}

	manager := jwt.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.AccessTokenExpire, cfg.Auth.RefreshTokenExpire)
	pair, err := manager.GenerateToken(*email)
	if err != nil {
		logrus.WithError(err).Fatal("generate token")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pair); err != nil {
		logrus.WithError(err).Fatal("write token")
	}
}
