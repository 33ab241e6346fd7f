package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinic-booking/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedAppointmentTypes(context.Background(), pool); err != nil {
		log.Fatalf("seed appointment types: %v", err)
	}
	if err := seedSpecialists(context.Background(), pool, "doctor", 25); err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedSpecialists(context.Background(), pool, "medtech", 10); err != nil {
		log.Fatalf("seed medtechs: %v", err)
	}

	log.Println("seed complete")
}

func seedAppointmentTypes(ctx context.Context, pool *pgxpool.Pool) error {
	types := []struct {
		Code      string
		Name      string
		BasePrice int
	}{
		{"consultation", "Consultation", 500},
		{"checkup", "Check-up", 400},
		{"xray", "X-Ray", 800},
		{"ultrasound", "Ultrasound", 1200},
		{"fecalysis", "Fecalysis", 150},
		{"cbc", "Complete Blood Count", 250},
		{"urinalysis", "Urinalysis", 150},
		{"lab_test", "Lab Test", 300},
	}

	log.Printf("seeding %d appointment types", len(types))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, t := range types {
		_, err := tx.Exec(ctx, `
			INSERT INTO appointment_types (id, code, name, base_price, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
			ON CONFLICT (code) DO NOTHING
		`, uuid.New(), t.Code, t.Name, t.BasePrice)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("appointment types seeded")
	return nil
}

func seedSpecialists(ctx context.Context, pool *pgxpool.Pool, kind string, count int) error {
	log.Printf("seeding %d %ss", count, kind)

	doctorSpecializations := []string{
		"General Practice",
		"Internal Medicine",
		"Pediatrics",
		"Dermatology",
		"Cardiology",
		"OB-GYN",
		"Radiology",
	}
	medtechSpecializations := []string{
		"Hematology",
		"Clinical Microscopy",
		"Clinical Chemistry",
		"Phlebotomy",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Name()

		var spec string
		var fee int
		if kind == "doctor" {
			spec = doctorSpecializations[gofakeit.Number(0, len(doctorSpecializations)-1)]
			fee = gofakeit.Number(2, 10) * 100
		} else {
			spec = medtechSpecializations[gofakeit.Number(0, len(medtechSpecializations)-1)]
			fee = gofakeit.Number(1, 4) * 50
		}

		// Keep a few unavailable so the eligibility filter has something
		// to exclude in demos.
		available := gofakeit.Number(0, 9) > 1

		_, err := tx.Exec(ctx, `
			INSERT INTO specialists (id, name, specialization, consultation_fee, is_available, kind, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		`, id, name, spec, fee, available, kind)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Printf("%ss seeded", kind)
	return nil
}
