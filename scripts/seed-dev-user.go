// Package main is a development utility for seeding a usable login in a local
// database. It generates a random password, prints its bcrypt hash, and emits
// a ready-to-run SQL INSERT so developers can sign in without going through
// the register endpoint. Do not use generated credentials in production.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"
)

func main() {
	randomBytes := make([]byte, 18)
	if _, err := rand.Read(randomBytes); err != nil {
		log.Fatal(err)
	}
	password := base64.RawURLEncoding.EncodeToString(randomBytes)

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		log.Fatal(err)
	}

	userID := uuid.New().String()

	fmt.Println("==========================================================")
	fmt.Println("Dev User Generated")
	fmt.Println("==========================================================")
	fmt.Println("\nEmail:    admin@dev.local")
	fmt.Printf("Password: %s\n", password)
	fmt.Println("\n==========================================================")
	fmt.Println("SQL Insert:")
	fmt.Println("==========================================================")
	fmt.Printf(`
INSERT INTO users (id, email, name, password_hash, created_at, updated_at)
VALUES ('%s', 'admin@dev.local', 'Dev Admin', '%s', NOW(), NOW());
`, userID, string(hashBytes))
	fmt.Println("\n==========================================================")
}
