package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/dudhwala/milkbook/internal/domain"
	"github.com/dudhwala/milkbook/internal/repository"
)

type fakeUploader struct {
	key        string
	data       []byte
	keys       []string
	listPrefix string
}

func (f *fakeUploader) UploadStatement(key string, data []byte) (string, error) {
	f.key = key
	f.data = data
	f.keys = append(f.keys, key)
	return "https://example.com/" + key, nil
}

func (f *fakeUploader) ListStatements(prefix string) ([]string, error) {
	f.listPrefix = prefix
	var out []string
	for _, k := range f.keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func TestRenderStatementCSV(t *testing.T) {
	acct := &domain.Account{Username: "Raju", Rate: 60}
	records := []domain.DeliveryRecord{
		{Quantity: 1.5, Date: mustDate(t, "2024-01-01")},
		{Quantity: 2.0, Date: mustDate(t, "2024-01-02")},
	}

	out := string(RenderStatementCSV(acct, records))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{
		"Date,Quantity (L)",
		"2024-01-01,1.50",
		"2024-01-02,2.00",
		"Total,3.50",
		"Rate,60",
		"Bill,210.00",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), out)
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
}

func TestMonthlyStatement(t *testing.T) {
	store := repository.NewMemory()
	uploader := &fakeUploader{}
	svcs := New(store, Options{OwnerPIN: "1234", Statements: uploader})

	acct, _ := svcs.Accounts.CreateCustomer("Raju", "123", 60)
	for _, d := range []string{"2024-01-05", "2024-01-01", "2024-02-01"} {
		date := mustDate(t, d)
		if _, err := svcs.Deliveries.Add(acct.ID, 1.0, &date); err != nil {
			t.Fatal(err)
		}
	}

	url, err := svcs.Statements.MonthlyStatement(acct.ID, "2024-01")
	if err != nil {
		t.Fatalf("MonthlyStatement: %v", err)
	}
	if url != "https://example.com/statements/Raju/2024-01.csv" {
		t.Errorf("url = %q", url)
	}
	if uploader.key != "statements/Raju/2024-01.csv" {
		t.Errorf("key = %q", uploader.key)
	}

	// Only January rows, oldest first.
	body := string(uploader.data)
	if strings.Contains(body, "2024-02-01") {
		t.Error("february record leaked into january statement")
	}
	jan1 := strings.Index(body, "2024-01-01")
	jan5 := strings.Index(body, "2024-01-05")
	if jan1 == -1 || jan5 == -1 || jan1 > jan5 {
		t.Errorf("rows missing or out of order:\n%s", body)
	}
	if !strings.Contains(body, "Total,2.00") {
		t.Errorf("total row missing:\n%s", body)
	}
}

func TestStatementHistory(t *testing.T) {
	store := repository.NewMemory()
	uploader := &fakeUploader{}
	svcs := New(store, Options{OwnerPIN: "1234", Statements: uploader})

	acct, _ := svcs.Accounts.CreateCustomer("Raju", "123", 60)
	date := mustDate(t, "2024-01-05")
	if _, err := svcs.Deliveries.Add(acct.ID, 1.0, &date); err != nil {
		t.Fatal(err)
	}
	if _, err := svcs.Statements.MonthlyStatement(acct.ID, "2024-01"); err != nil {
		t.Fatal(err)
	}

	keys, err := svcs.Statements.History(acct.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if uploader.listPrefix != "statements/Raju/" {
		t.Errorf("prefix = %q, want statements/Raju/", uploader.listPrefix)
	}
	if len(keys) != 1 || keys[0] != "statements/Raju/2024-01.csv" {
		t.Errorf("keys = %v", keys)
	}

	// A customer with no statements gets an empty list, not nil.
	other, _ := svcs.Accounts.CreateCustomer("Sita", "456", 50)
	keys, err = svcs.Statements.History(other.ID)
	if err != nil {
		t.Fatal(err)
	}
	if keys == nil || len(keys) != 0 {
		t.Errorf("keys = %#v, want empty slice", keys)
	}
}

func TestStatementHistoryErrors(t *testing.T) {
	store := repository.NewMemory()

	svcs := New(store, Options{OwnerPIN: "1234"})
	acct, _ := svcs.Accounts.CreateCustomer("Raju", "123", 60)
	if _, err := svcs.Statements.History(acct.ID); !errors.Is(err, ErrCloudDisabled) {
		t.Errorf("err = %v, want ErrCloudDisabled", err)
	}

	withUploader := New(store, Options{OwnerPIN: "1234", Statements: &fakeUploader{}})
	if _, err := withUploader.Statements.History(9999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing account err = %v, want ErrNotFound", err)
	}
}

func TestMonthlyStatementErrors(t *testing.T) {
	store := repository.NewMemory()

	// No uploader configured.
	svcs := New(store, Options{OwnerPIN: "1234"})
	acct, _ := svcs.Accounts.CreateCustomer("Raju", "123", 60)
	if _, err := svcs.Statements.MonthlyStatement(acct.ID, "2024-01"); !errors.Is(err, ErrCloudDisabled) {
		t.Errorf("err = %v, want ErrCloudDisabled", err)
	}

	withUploader := New(store, Options{OwnerPIN: "1234", Statements: &fakeUploader{}})
	if _, err := withUploader.Statements.MonthlyStatement(9999, "2024-01"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing account err = %v, want ErrNotFound", err)
	}
	if _, err := withUploader.Statements.MonthlyStatement(acct.ID, "January"); !domain.IsValidation(err) {
		t.Errorf("bad month err = %v, want validation error", err)
	}
}
