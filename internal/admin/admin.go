// Package admin implements rbadmin, the operator tool for rackbook. It
// produces bcrypt hashes for hand-edited users.json files and mints tokens
// for scripted API access.
package admin

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/rackbook/internal/common"
	"github.com/dmitrijs2005/rackbook/internal/server/auth"
)

var ErrUsage = errors.New("usage: rbadmin <hash|token> [flags]")

// lookupEnv is a test seam for os.LookupEnv.
var lookupEnv = os.LookupEnv

type App struct {
	out io.Writer
}

func NewApp(out io.Writer) *App {
	return &App{out: out}
}

// Run dispatches args (without the program name) to a command.
func (a *App) Run(args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	switch args[0] {
	case "hash":
		return a.Hash(args[1:])
	case "token":
		return a.Token(args[1:])
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], ErrUsage)
	}
}

// Hash asks for a password twice and prints its bcrypt hash.
func (a *App) Hash(args []string) error {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.SetOutput(a.out)
	if err := fs.Parse(args); err != nil {
		return err
	}

	pw, err := GetPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer wipe(pw)

	confirm, err := GetPassword(a.out, "Repeat password")
	if err != nil {
		return err
	}
	defer wipe(confirm)

	if string(pw) != string(confirm) {
		return errors.New("passwords do not match")
	}
	if len(pw) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	hash, err := auth.HashPassword(string(pw))
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, hash)
	return nil
}

// Token prints a signed access token. The secret comes from -secret or
// RB_SECRET_KEY.
func (a *App) Token(args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(a.out)

	id := fs.Int64("id", 0, "user id")
	email := fs.String("email", "", "user email")
	role := fs.String("role", common.RoleUser, "user role (admin or user)")
	secret := fs.String("secret", "", "signing secret (default $RB_SECRET_KEY)")
	ttl := fs.Duration("ttl", time.Hour, "token validity")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *secret == "" {
		if v, ok := lookupEnv("RB_SECRET_KEY"); ok {
			*secret = v
		}
	}

	switch {
	case strings.TrimSpace(*secret) == "":
		return errors.New("secret must be set (-secret or RB_SECRET_KEY)")
	case *id <= 0:
		return errors.New("id must be positive")
	case *email == "":
		return errors.New("email must be set")
	case *role != common.RoleAdmin && *role != common.RoleUser:
		return fmt.Errorf("unknown role %q", *role)
	case *ttl <= 0:
		return errors.New("ttl must be positive")
	}

	token, err := auth.GenerateToken(auth.Identity{
		UserID: *id,
		Email:  strings.ToLower(*email),
		Role:   *role,
	}, []byte(*secret), *ttl)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, token)
	return nil
}
