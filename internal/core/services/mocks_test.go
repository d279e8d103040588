package services_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/fx_rates_ingestor/internal/apperrors"
	"github.com/SscSPs/fx_rates_ingestor/internal/core/domain"
	"github.com/SscSPs/fx_rates_ingestor/internal/utils"
	"github.com/stretchr/testify/mock"
)

// --- Mock CurrencyRepository ---
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) CreateCurrency(ctx context.Context, currency domain.Currency) (bool, error) {
	args := m.Called(ctx, currency)
	return args.Bool(0), args.Error(1)
}

func (m *MockCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) ExistsExchangeRate(ctx context.Context, currencyCode string, rateDate time.Time) (bool, error) {
	args := m.Called(ctx, currencyCode, rateDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

// --- Mock LiveRateSource ---
type MockLiveRateSource struct {
	mock.Mock
}

func (m *MockLiveRateSource) FetchCurrency(ctx context.Context, code string) ([]domain.Series, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Series), args.Error(1)
}

// --- Mock Pacer ---
type MockPacer struct {
	mock.Mock
}

func (m *MockPacer) Wait(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// memoryStore is an in-memory store honouring the (currency, date) unique key.
type memoryStore struct {
	mu         sync.Mutex
	currencies map[string]domain.Currency
	rates      map[string]domain.ExchangeRate

	// failSaveOn makes the n-th SaveExchangeRate call fail; 0 disables it.
	failSaveOn int
	saves      int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		currencies: make(map[string]domain.Currency),
		rates:      make(map[string]domain.ExchangeRate),
	}
}

func rateKey(code string, d time.Time) string {
	return code + "|" + utils.FormatISODate(d)
}

func (s *memoryStore) FindCurrencyByCode(_ context.Context, code string) (*domain.Currency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.currencies[code]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (s *memoryStore) ListCurrencies(_ context.Context) ([]domain.Currency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Currency, 0, len(s.currencies))
	for _, c := range s.currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CurrencyCode < out[j].CurrencyCode })
	return out, nil
}

func (s *memoryStore) CreateCurrency(_ context.Context, c domain.Currency) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.currencies[c.CurrencyCode]; ok {
		return false, nil
	}
	s.currencies[c.CurrencyCode] = c
	return true, nil
}

func (s *memoryStore) SaveCurrency(_ context.Context, c domain.Currency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currencies[c.CurrencyCode] = c
	return nil
}

func (s *memoryStore) ExistsExchangeRate(_ context.Context, code string, d time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rates[rateKey(code, d)]
	return ok, nil
}

func (s *memoryStore) SaveExchangeRate(_ context.Context, r domain.ExchangeRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.failSaveOn > 0 && s.saves == s.failSaveOn {
		return errors.New("connection reset by peer")
	}
	key := rateKey(r.CurrencyCode, r.RateDate)
	if _, ok := s.rates[key]; ok {
		return apperrors.ErrDuplicate
	}
	s.rates[key] = r
	return nil
}

func (s *memoryStore) rateCount(code string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.rates {
		if r.CurrencyCode == code {
			n++
		}
	}
	return n
}
