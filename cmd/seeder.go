package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/exeat-management/internal"
	"github.com/frahmantamala/exeat-management/internal/auth"
	authPostgres "github.com/frahmantamala/exeat-management/internal/auth/postgres"
	exeatDatamodel "github.com/frahmantamala/exeat-management/internal/core/datamodel/exeat"
	revocationDatamodel "github.com/frahmantamala/exeat-management/internal/core/datamodel/revocation"
	userDatamodel "github.com/frahmantamala/exeat-management/internal/core/datamodel/user"
	"github.com/frahmantamala/exeat-management/internal/exeat"
	exeatPostgres "github.com/frahmantamala/exeat-management/internal/exeat/postgres"
	revocationPostgres "github.com/frahmantamala/exeat-management/internal/revocation/postgres"
	"github.com/frahmantamala/exeat-management/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const seedPassword = "password123"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with demo student, staff and security accounts and a pending exeat request.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		if clearData {
			if err := clearSeedData(ctx, db); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing accounts and exeat requests")
		}

		lg := logger.LoggerWrapper()
		authService := auth.NewService(
			authPostgres.NewRepository(db),
			revocationPostgres.NewLedgerRepository(db),
			auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration),
			cfg.Security.BCryptCost,
			lg,
		)

		accounts := []auth.SignupDTO{
			{
				UserType:             "student",
				Email:                "student@exeat.local",
				Password:             seedPassword,
				FirstName:            "Ada",
				LastName:             "Obi",
				PhoneNumber:          "+2348000000001",
				MatriculationNumber:  "2021/12345",
				CourseOfStudy:        "Computer Science",
				GuardianName:         "Ngozi Obi",
				GuardianPhoneNumber:  "+2348000000002",
				GuardianRelationship: "mother",
			},
			{
				UserType:    "staff",
				Email:       "staff@exeat.local",
				Password:    seedPassword,
				FirstName:   "Bola",
				LastName:    "Ade",
				PhoneNumber: "+2348000000003",
				StaffID:     "STF-0001",
				Designation: "Hall warden",
			},
			{
				UserType:    "security_operative",
				Email:       "security@exeat.local",
				Password:    seedPassword,
				FirstName:   "Chike",
				LastName:    "Eze",
				PhoneNumber: "+2348000000004",
				SecurityID:  "SEC-0001",
				Designation: "Gate officer",
			},
		}

		for _, a := range accounts {
			if _, err := authService.Signup(ctx, a); err != nil {
				if errors.Is(err, internal.ErrEmailTaken) {
					fmt.Printf("%s already exists; skipping\n", a.Email)
					continue
				}
				log.Fatalf("failed to seed %s: %v", a.Email, err)
			}
			fmt.Printf("Seeded %s account: %s\n", a.UserType, a.Email)
		}

		var student userDatamodel.Student
		err = db.WithContext(ctx).
			Joins("JOIN users ON users.id = student.user_id").
			Where("users.email = ?", accounts[0].Email).
			First(&student).Error
		if err != nil {
			log.Fatalf("failed to look up seeded student: %v", err)
		}

		var pending int64
		if err := db.WithContext(ctx).Model(&exeatDatamodel.ExeatRequest{}).Where("student_id = ?", student.ID).Count(&pending).Error; err != nil {
			log.Fatalf("failed to count exeat requests: %v", err)
		}
		if pending == 0 {
			exeatService := exeat.NewService(exeatPostgres.NewExeatRepository(db), lg)
			start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
			_, err := exeatService.Submit(ctx, student.ID, exeat.SubmitExeatDTO{
				LeaveStart: start,
				LeaveEnd:   start.Add(72 * time.Hour),
				Reason:     "Family event",
			})
			if err != nil {
				log.Fatalf("failed to seed exeat request: %v", err)
			}
			fmt.Println("Seeded a pending exeat request for", accounts[0].Email)
		}

		fmt.Printf("Demo accounts use the password %q\n", seedPassword)
	},
}

// clearSeedData removes every account and exeat request, keeping the
// reference tables.
func clearSeedData(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&exeatDatamodel.ExeatRequest{},
			&userDatamodel.Student{},
			&userDatamodel.Guardian{},
			&userDatamodel.Staff{},
			&userDatamodel.SecurityOperative{},
			&userDatamodel.User{},
			&revocationDatamodel.RevokedToken{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
