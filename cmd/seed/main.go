package main

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dudhwala/milkbook/internal/config"
	"github.com/dudhwala/milkbook/internal/database"
	"github.com/dudhwala/milkbook/internal/domain"
	"github.com/dudhwala/milkbook/internal/repository"
	"github.com/dudhwala/milkbook/internal/service"
)

// Seeds a demo customer with two deliveries. Does nothing if any customer
// already exists.
func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	svcs := service.New(repository.New(db), service.Options{})

	existing, err := svcs.Store.ListCustomers()
	if err != nil {
		log.Fatal().Err(err).Msg("list customers failed")
	}
	if len(existing) > 0 {
		log.Info().Int("customers", len(existing)).Msg("already seeded, nothing to do")
		return
	}

	acct, err := svcs.Accounts.CreateCustomer("Raju", "123", 60)
	if err != nil {
		log.Fatal().Err(err).Msg("create customer failed")
	}

	today := domain.Today()
	yesterday := domain.Date{Time: today.AddDate(0, 0, -1)}
	if _, err := svcs.Deliveries.Add(acct.ID, 1.5, &today); err != nil {
		log.Fatal().Err(err).Msg("add record failed")
	}
	if _, err := svcs.Deliveries.Add(acct.ID, 2.0, &yesterday); err != nil {
		log.Fatal().Err(err).Msg("add record failed")
	}

	log.Info().Int64("id", acct.ID).Time("at", time.Now()).Msg("seeded demo customer")
}
