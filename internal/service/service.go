package service

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dudhwala/milkbook/internal/domain"
	"github.com/dudhwala/milkbook/internal/repository"
)

// Notifier publishes a message when a delivery has been recorded. Failures
// are logged, never surfaced to the caller.
type Notifier interface {
	DeliveryRecorded(acct *domain.Account, rec *domain.DeliveryRecord) error
}

// Uploader stores rendered statements and lists the keys stored so far.
type Uploader interface {
	UploadStatement(key string, data []byte) (string, error)
	ListStatements(prefix string) ([]string, error)
}

type Options struct {
	OwnerPIN   string
	Tokens     *TokenIssuer
	Notifier   Notifier
	Statements Uploader
}

type Services struct {
	Store      repository.Store
	Accounts   *AccountService
	Stats      *StatsService
	Deliveries *DeliveryService
	Statements *StatementService
}

func New(store repository.Store, opts Options) *Services {
	stats := &StatsService{store: store}
	return &Services{
		Store:      store,
		Accounts:   &AccountService{store: store, stats: stats, ownerPIN: opts.OwnerPIN, tokens: opts.Tokens},
		Stats:      stats,
		Deliveries: &DeliveryService{store: store, notifier: opts.Notifier},
		Statements: &StatementService{store: store, uploader: opts.Statements},
	}
}

// StatsService recomputes an account's totals from its current record set on
// every call. No caching: a rate change re-prices all history immediately.
type StatsService struct {
	store repository.Store
}

func (s *StatsService) ComputeStats(accountID int64) (domain.Stats, error) {
	acct, err := s.store.GetAccount(accountID)
	if err != nil {
		return domain.Stats{}, err
	}
	if acct == nil {
		return domain.Stats{}, nil
	}
	records, err := s.store.ListDeliveryRecords(accountID)
	if err != nil {
		return domain.Stats{}, err
	}
	var total float64
	for _, r := range records {
		total += r.Quantity
	}
	return domain.Stats{
		TotalMilk: total,
		TotalBill: total * float64(acct.Rate),
	}, nil
}

type AccountService struct {
	store    repository.Store
	stats    *StatsService
	ownerPIN string
	tokens   *TokenIssuer
}

type LoginRequest struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Password string `json:"password"`
	Pin      string `json:"pin"`
}

// LoginResult is the authenticated account plus a signed token the client
// may present on later requests.
type LoginResult struct {
	domain.Account
	Token string `json:"token,omitempty"`
}

func (s *AccountService) Login(req LoginRequest) (*LoginResult, error) {
	var acct domain.Account
	switch req.Type {
	case domain.RoleOwner:
		if req.Pin != s.ownerPIN {
			return nil, domain.Unauthorized("Invalid PIN")
		}
		acct = domain.OwnerAccount()
	case domain.RoleCustomer:
		if req.Username == "" || req.Password == "" {
			return nil, domain.Validationf("Username and password required")
		}
		found, err := s.store.GetAccountByUsername(req.Username)
		if err != nil {
			return nil, err
		}
		if found == nil || !found.CheckPassword(req.Password) || found.Role != domain.RoleCustomer {
			return nil, domain.Unauthorized("Invalid credentials")
		}
		acct = *found
	default:
		return nil, domain.Validationf("Invalid request")
	}

	out := &LoginResult{Account: acct}
	if s.tokens != nil {
		token, err := s.tokens.Issue(acct)
		if err != nil {
			return nil, err
		}
		out.Token = token
	}
	return out, nil
}

func (s *AccountService) CreateCustomer(username, password string, rate int64) (*domain.Account, error) {
	if username == "" {
		return nil, domain.Validationf("Name is required")
	}
	if password == "" {
		return nil, domain.Validationf("Password is required")
	}
	if rate < 0 {
		return nil, domain.Validationf("Rate cannot be negative")
	}
	// Friendly pre-check; the unique constraint in the store is what
	// actually guarantees no duplicate lands.
	existing, err := s.store.GetAccountByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Conflict("Customer already exists")
	}
	return s.store.CreateCustomer(username, password, rate)
}

// DeleteCustomer is idempotent: deleting an unknown id succeeds.
func (s *AccountService) DeleteCustomer(id int64) error {
	return s.store.DeleteAccount(id)
}

// CustomerWithStats is an account enriched with its computed totals for the
// owner's customer list.
type CustomerWithStats struct {
	domain.Account
	domain.Stats
}

func (s *AccountService) ListWithStats() ([]CustomerWithStats, error) {
	customers, err := s.store.ListCustomers()
	if err != nil {
		return nil, err
	}
	out := make([]CustomerWithStats, 0, len(customers))
	for _, c := range customers {
		stats, err := s.stats.ComputeStats(c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, CustomerWithStats{Account: c, Stats: stats})
	}
	return out, nil
}

type Dashboard struct {
	User    domain.Account          `json:"user"`
	Records []domain.DeliveryRecord `json:"records"`
	domain.Stats
}

func (s *AccountService) Dashboard(id int64) (*Dashboard, error) {
	acct, err := s.store.GetAccount(id)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, domain.NotFound("User not found")
	}
	records, err := s.store.ListDeliveryRecords(id)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.DeliveryRecord{}
	}
	stats, err := s.stats.ComputeStats(id)
	if err != nil {
		return nil, err
	}
	return &Dashboard{User: *acct, Records: records, Stats: stats}, nil
}

type DeliveryService struct {
	store    repository.Store
	notifier Notifier
}

// Add validates and persists one delivery entry. A nil date means today.
func (s *DeliveryService) Add(userID int64, quantity float64, date *domain.Date) (*domain.DeliveryRecord, error) {
	if quantity <= 0 {
		return nil, domain.Validationf("Quantity must be positive")
	}
	acct, err := s.store.GetAccount(userID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, domain.NotFound("User not found")
	}
	d := domain.Today()
	if date != nil {
		d = *date
	}
	rec, err := s.store.AddDeliveryRecord(userID, quantity, d)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		if err := s.notifier.DeliveryRecorded(acct, rec); err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("delivery notification failed")
		}
	}
	return rec, nil
}

// FromMQTT ingests one delivery entry published by a field device.
func (s *DeliveryService) FromMQTT(topic string, payload []byte) error {
	var msg struct {
		UserID   int64   `json:"userId"`
		Quantity float64 `json:"quantity"`
		Date     string  `json:"date"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		return err
	}
	var date *domain.Date
	if msg.Date != "" {
		d, err := domain.ParseDate(msg.Date)
		if err != nil {
			return err
		}
		date = &d
	}
	_, err := s.Add(msg.UserID, msg.Quantity, date)
	return err
}
