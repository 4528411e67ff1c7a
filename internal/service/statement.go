package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dudhwala/milkbook/internal/domain"
	"github.com/dudhwala/milkbook/internal/repository"
)

var ErrCloudDisabled = errors.New("cloud services not enabled")

// StatementService renders a customer's deliveries for one calendar month as
// CSV and uploads it for download.
type StatementService struct {
	store    repository.Store
	uploader Uploader
}

// MonthlyStatement returns a download URL for the statement of the given
// month ("2024-01"). The bill uses the account's current rate, so an old
// month re-generated after a rate change shows the re-priced amounts.
func (s *StatementService) MonthlyStatement(accountID int64, month string) (string, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return "", domain.Validationf("Invalid month %q, want YYYY-MM", month)
	}
	acct, err := s.store.GetAccount(accountID)
	if err != nil {
		return "", err
	}
	if acct == nil {
		return "", domain.NotFound("User not found")
	}
	if s.uploader == nil {
		return "", ErrCloudDisabled
	}

	records, err := s.store.ListDeliveryRecords(accountID)
	if err != nil {
		return "", err
	}
	var monthly []domain.DeliveryRecord
	// Records arrive most-recent-first; statements read oldest-first.
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if r.Date.Year() == start.Year() && r.Date.Month() == start.Month() {
			monthly = append(monthly, r)
		}
	}

	key := fmt.Sprintf("statements/%s/%s.csv", acct.Username, month)
	url, err := s.uploader.UploadStatement(key, RenderStatementCSV(acct, monthly))
	if err != nil {
		return "", fmt.Errorf("upload statement: %w", err)
	}
	log.Info().Str("key", key).Int("records", len(monthly)).Msg("statement uploaded")
	return url, nil
}

// History lists the statement keys generated for an account so far.
func (s *StatementService) History(accountID int64) ([]string, error) {
	acct, err := s.store.GetAccount(accountID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, domain.NotFound("User not found")
	}
	if s.uploader == nil {
		return nil, ErrCloudDisabled
	}
	keys, err := s.uploader.ListStatements(fmt.Sprintf("statements/%s/", acct.Username))
	if err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// RenderStatementCSV writes one row per delivery in the order given, then
// total, rate and bill summary rows.
func RenderStatementCSV(acct *domain.Account, records []domain.DeliveryRecord) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"Date", "Quantity (L)"})
	var total float64
	for _, r := range records {
		total += r.Quantity
		w.Write([]string{r.Date.String(), strconv.FormatFloat(r.Quantity, 'f', 2, 64)})
	}
	w.Write([]string{"Total", strconv.FormatFloat(total, 'f', 2, 64)})
	w.Write([]string{"Rate", strconv.FormatInt(acct.Rate, 10)})
	w.Write([]string{"Bill", strconv.FormatFloat(total*float64(acct.Rate), 'f', 2, 64)})
	w.Flush()
	return buf.Bytes()
}
