// Command adduser creates a user or resets an existing user's password.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Eursukkul/race-registration/internal/auth"
	"github.com/Eursukkul/race-registration/internal/config"
	"github.com/Eursukkul/race-registration/internal/models"
	"github.com/Eursukkul/race-registration/internal/repository"
	"github.com/Eursukkul/race-registration/pkg/database"
)

func main() {
	username := flag.String("username", "", "login name (required)")
	password := flag.String("password", "", "plain-text password (required)")
	email := flag.String("email", "", "email address (required)")
	firstName := flag.String("first-name", "", "first name")
	lastName := flag.String("last-name", "", "last name")
	admin := flag.Bool("admin", false, "grant admin rights")
	flag.Parse()

	if *username == "" || *password == "" || *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*username, *password, *email, *firstName, *lastName, *admin); err != nil {
		fmt.Fprintf(os.Stderr, "adduser: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("user %q saved\n", *username)
}

func run(username, password, email, firstName, lastName string, admin bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return repository.NewUserRepository(db).Upsert(ctx, &models.User{
		Username:  username,
		Email:     email,
		Password:  hash,
		FirstName: firstName,
		LastName:  lastName,
		IsAdmin:   admin,
	})
}
