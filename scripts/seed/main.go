// Command seed loads a small demo dataset: one principal, two teachers, one
// class section with a roster, and login credentials for each account.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/edumesh/school-ops-api/pkg/config"
	"github.com/edumesh/school-ops-api/pkg/database"
)

func main() {
	password := flag.String("password", "changeme123", "password assigned to every seeded account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().UTC()

	users := []struct {
		email, name, role string
	}{
		{"principal@school.test", "Head of School", "PRINCIPAL"},
		{"rao@school.test", "Mr Rao", "TEACHER"},
		{"iyer@school.test", "Ms Iyer", "TEACHER"},
	}
	for _, u := range users {
		_, err := db.ExecContext(ctx,
			`INSERT INTO users (id, email, password_hash, full_name, role, active, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
			 ON CONFLICT (email) DO NOTHING`,
			uuid.NewString(), u.email, string(hash), u.name, u.role, now)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", u.email, err)
		}
	}

	sectionID := uuid.NewString()
	_, err = db.ExecContext(ctx,
		`INSERT INTO class_sections (id, name, grade, section, created_at, updated_at)
		 VALUES ($1, 'Grade 5 A', '5', 'A', $2, $2)`,
		sectionID, now)
	if err != nil {
		log.Fatalf("failed to seed class section: %v", err)
	}

	names := []string{"Asha Verma", "Bilal Khan", "Chitra Nair", "Dev Patel", "Esha Rao"}
	for i, name := range names {
		_, err := db.ExecContext(ctx,
			`INSERT INTO students (id, full_name, roll_no, class_section_id, active, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, TRUE, $5, $5)`,
			uuid.NewString(), name, fmt.Sprintf("%d", i+1), sectionID, now)
		if err != nil {
			log.Fatalf("failed to seed student %s: %v", name, err)
		}
	}

	log.Printf("seeded %d users and a class section with %d students", len(users), len(names))
}
