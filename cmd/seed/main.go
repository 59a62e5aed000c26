package main

import (
	"context"
	"errors"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"netportal/internal/config"
	"netportal/internal/db"
	"netportal/internal/model"
	"netportal/internal/repository"
)

const seedBcryptCost = 12

// Seeds the bootstrap admin account from SEED_ADMIN_EMAIL and
// SEED_ADMIN_PASSWORD. Safe to run repeatedly: an existing admin is left
// untouched.
func main() {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.NewPostgres(cfg)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.Admin{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	adminRepo := repository.NewAdminRepository(gormDB)
	ctx := context.Background()

	if _, err := adminRepo.FindByEmail(ctx, email); err == nil {
		log.Printf("admin %s already exists, nothing to do", email)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("check admin: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), seedBcryptCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	admin := &model.Admin{
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := adminRepo.Create(ctx, admin); err != nil {
		log.Fatalf("create admin: %v", err)
	}

	log.Printf("admin %s created (id %s)", admin.Email, admin.ID)
}
