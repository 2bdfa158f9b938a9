package system

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dentelia/dentelia_backend/config"
	"github.com/dentelia/dentelia_backend/internal/model"
	"github.com/dentelia/dentelia_backend/internal/store"
	"github.com/dentelia/dentelia_backend/pkg/database"
	redispkg "github.com/dentelia/dentelia_backend/pkg/redis"
)

func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed demo patient records into the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			st, cleanup, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			seeded := 0
			for _, rec := range demoRecords() {
				err := st.Create(ctx, rec)
				if errors.Is(err, store.ErrAlreadyExists) {
					fmt.Printf("record %s already exists, skipping\n", rec.PatientID)
					continue
				}
				if err != nil {
					return fmt.Errorf("failed to seed record %s: %w", rec.PatientID, err)
				}
				seeded++
			}

			fmt.Printf("Seeded %d demo records.\n", seeded)
			return nil
		},
	}

	return cmd
}

func openStore(cfg *config.Config) (store.RecordStore, func(), error) {
	switch cfg.Store.Driver {
	case "redis":
		rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return store.NewRedis(rdb, cfg.Store.KeyPrefix), func() { _ = rdb.Close() }, nil

	case "postgres":
		db, err := database.New(database.FromCentralConfig(cfg.Store.Postgres))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return store.NewPostgres(db.GetConnection()), func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("seeding requires a persistent store driver, got %q", cfg.Store.Driver)
	}
}

func demoRecords() []*model.PatientRecord {
	return []*model.PatientRecord{
		model.NewPatientRecord("demo-patient-1", model.Profile{
			DisplayName: "Sara Moradi",
			Email:       "sara.moradi@example.com",
			PhoneNumber: "+98-912-000-0001",
			DateOfBirth: "1992-03-14",
			Address:     "12 Valiasr St, Tehran",
			Role:        model.RolePatient,
		}),
		model.NewPatientRecord("demo-patient-2", model.Profile{
			DisplayName: "Omid Karimi",
			Email:       "omid.karimi@example.com",
			PhoneNumber: "+98-912-000-0002",
			DateOfBirth: "1985-11-02",
			Address:     "4 Enghelab Ave, Tehran",
			Role:        model.RolePatient,
		}),
		model.NewPatientRecord("demo-doctor-1", model.Profile{
			DisplayName: "Dr. Leila Ahmadi",
			Email:       "leila.ahmadi@example.com",
			PhoneNumber: "+98-912-000-0100",
			Role:        model.RoleDoctor,
		}),
	}
}
