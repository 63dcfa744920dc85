package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/oksasatya/projecthub/config"
	"github.com/oksasatya/projecthub/internal/domain/entity"
	"github.com/oksasatya/projecthub/internal/domain/repository"
	"github.com/oksasatya/projecthub/internal/infrastructure/mongodb"
	"github.com/oksasatya/projecthub/pkg/helpers"
)

// Seeds the initial admin account. Registration always produces
// members, so the first admin has to come from here (or from an
// existing admin via the role endpoint).
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	client, db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}

	email := getenvDefault("SEED_ADMIN_EMAIL", "admin@example.com")
	password := getenvDefault("SEED_ADMIN_PASSWORD", "changeme123")

	users := mongodb.NewUserRepository(db)

	if existing, err := users.GetByEmail(ctx, email); err == nil {
		if existing.Role != entity.RoleAdmin {
			if err := users.UpdateRole(ctx, existing.ID, entity.RoleAdmin); err != nil {
				log.Fatalf("failed to promote existing user: %v", err)
			}
		}
		fmt.Printf("admin ensured: id=%s email=%s\n", existing.ID, existing.Email)
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.Fatalf("failed to look up admin: %v", err)
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	u := &entity.User{Email: email, Password: hash, Role: entity.RoleAdmin}
	if err := users.Create(ctx, u); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s\n", u.ID, u.Email)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
