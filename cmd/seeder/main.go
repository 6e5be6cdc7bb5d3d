// Command seeder creates the first admin account and, with -demo, a demo
// station with a manager and three drivers. It is idempotent.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fleetdesk/backend/config"
	"fleetdesk/backend/internal/model"
	"fleetdesk/backend/pkg/database"
	applogger "fleetdesk/backend/pkg/logger"
)

func main() {
	demo := flag.Bool("demo", false, "also seed a demo station, manager and drivers")
	flag.Parse()

	cfg, err := config.Load(os.Getenv("FLEET_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := applogger.New(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	email := strings.ToLower(strings.TrimSpace(os.Getenv("FLEET_SEED_ADMIN_EMAIL")))
	password := os.Getenv("FLEET_SEED_ADMIN_PASSWORD")
	if email == "" || len(password) < 8 {
		logger.Fatal("FLEET_SEED_ADMIN_EMAIL and FLEET_SEED_ADMIN_PASSWORD (min 8 chars) are required")
	}

	db, err := database.Open(&cfg.DB, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := database.Migrate(sqlDB, logger); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := seedUser(tx, &model.User{Name: "Administrator", Email: email, Role: model.RoleAdmin, IsActive: true}, password); err != nil {
			return err
		}
		if *demo {
			return seedDemo(tx, password)
		}
		return nil
	})
	if err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
	logger.Info("seeding finished", zap.String("admin", email), zap.Bool("demo", *demo))
}

// seedUser inserts u unless an account with the same email exists.
func seedUser(tx *gorm.DB, u *model.User, password string) error {
	var existing model.User
	err := tx.Where("email = ?", u.Email).First(&existing).Error
	if err == nil {
		*u = existing
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	return tx.Create(u).Error
}

// seedDemo demo accounts share the admin password.
func seedDemo(tx *gorm.DB, password string) error {
	station := model.Station{Code: "DEMO1", Name: "Demo Station", Address: "Depotstraße 1"}
	if err := tx.Where(model.Station{Code: station.Code}).FirstOrCreate(&station).Error; err != nil {
		return fmt.Errorf("station: %w", err)
	}

	manager := &model.User{
		Name:      "Demo Manager",
		Email:     "manager@demo.fleetdesk.local",
		Role:      model.RoleManager,
		StationID: &station.StationID,
		IsActive:  true,
	}
	if err := seedUser(tx, manager, password); err != nil {
		return fmt.Errorf("manager: %w", err)
	}

	drivers := []model.Driver{
		{FirstName: "Anna", LastName: "Adler", PersonnelNo: "D-1001"},
		{FirstName: "Bernd", LastName: "Berg", PersonnelNo: "D-1002"},
		{FirstName: "Carla", LastName: "Conrad", PersonnelNo: "D-1003"},
	}
	for i := range drivers {
		d := &drivers[i]
		d.StationID = station.StationID
		d.IsActive = true
		if err := tx.Where(model.Driver{PersonnelNo: d.PersonnelNo}).FirstOrCreate(d).Error; err != nil {
			return fmt.Errorf("driver %s: %w", d.PersonnelNo, err)
		}
		account := &model.User{
			Name:      d.FullName(),
			Email:     strings.ToLower(d.FirstName) + "@demo.fleetdesk.local",
			Role:      model.RoleDriver,
			StationID: &station.StationID,
			DriverID:  &d.DriverID,
			IsActive:  true,
		}
		if err := seedUser(tx, account, password); err != nil {
			return fmt.Errorf("driver account %s: %w", d.PersonnelNo, err)
		}
	}

	van := model.Van{StationID: station.StationID, PlateNumber: "D-FD 100"}
	if err := tx.Where(model.Van{PlateNumber: van.PlateNumber}).FirstOrCreate(&van).Error; err != nil {
		return fmt.Errorf("van: %w", err)
	}
	return nil
}
