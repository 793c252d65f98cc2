package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"sherk_portal/internal/db"
	"sherk_portal/internal/domain"
	"sherk_portal/internal/repository"
)

// grant_admin promotes (or with -revoke demotes) an existing account.
// The account must have signed up first so its users row exists.
func main() {
	// expects DATABASE_URL env var
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	email := flag.String("email", "", "account email")
	revoke := flag.Bool("revoke", false, "set the role back to user")
	flag.Parse()
	if *email == "" {
		log.Fatal("-email is required")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, dsn, 1)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	role := domain.RoleAdmin
	if *revoke {
		role = domain.RoleUser
	}

	p, err := repository.NewProfileRepository(pool).SetRole(ctx, *email, role)
	if errors.Is(err, repository.ErrNotFound) {
		log.Fatalf("no profile for %s; sign up first", *email)
	}
	if err != nil {
		log.Fatalf("set role failed: %v", err)
	}
	log.Printf("profile id=%s email=%s role=%s\n", p.ID, p.Email, p.Role)
}
