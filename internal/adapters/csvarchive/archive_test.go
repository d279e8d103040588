package csvarchive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/fx_rates_ingestor/internal/apperrors"
	"github.com/SscSPs/fx_rates_ingestor/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2026, time.October, 17, 9, 30, 0, 0, time.UTC) }

func rate(code string, d time.Time, value string) domain.ExchangeRate {
	return domain.ExchangeRate{CurrencyCode: code, RateDate: d, Rate: decimal.RequireFromString(value)}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestArchive_AppendCreatesFileWithHeader(t *testing.T) {
	dir := t.TempDir()
	a := NewArchive(dir, WithClock(fixedNow))
	usd := domain.Currency{CurrencyCode: "USD", Name: "US dollar"}

	err := a.Append(context.Background(), usd, []domain.ExchangeRate{
		rate("USD", date(2026, time.October, 15), "1.1600"),
		rate("USD", date(2026, time.October, 16), "1.1587"),
	})
	require.NoError(t, err)

	want := "Euro foreign exchange reference rate of the ECB / EUR 1 = USD ... / US dollar\n" +
		"last update,2026-10-17\n" +
		"10/15/2026,1.16\n" +
		"10/16/2026,1.1587\n"
	assert.Equal(t, want, readFile(t, filepath.Join(dir, "BBEX3.D.USD.EUR.BB.AC.000.csv")))
}

func TestArchive_AppendStampsFirstLastUpdateLine(t *testing.T) {
	dir := t.TempDir()
	a := NewArchive(dir, WithClock(fixedNow))
	path := a.Path("GBP")
	existing := strings.Join([]string{
		`,"EUR 1 = GBP ... / Pound sterling",`,
		"Last Update,2024-01-05 15:00:00,",
		"last update,keep-me",
		"1/4/2021,0.9",
	}, "\r\n") + "\r\n"
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	err := a.Append(context.Background(), domain.Currency{CurrencyCode: "GBP", Name: "Pound sterling"},
		[]domain.ExchangeRate{rate("GBP", date(2026, time.October, 16), "0.8712")})
	require.NoError(t, err)

	want := `,"EUR 1 = GBP ... / Pound sterling",` + "\n" +
		"last update,2026-10-17\n" +
		"last update,keep-me\n" +
		"1/4/2021,0.9\n" +
		"10/16/2026,0.8712\n"
	assert.Equal(t, want, readFile(t, path))
}

func TestArchive_AppendWithoutLastUpdateLineKeepsStructure(t *testing.T) {
	dir := t.TempDir()
	a := NewArchive(dir, WithClock(fixedNow))
	path := a.Path("JPY")
	require.NoError(t, os.WriteFile(path, []byte("EUR 1 = JPY ... / Japanese yen\n1/4/2021,126.62"), 0o644))

	err := a.Append(context.Background(), domain.Currency{CurrencyCode: "JPY"},
		[]domain.ExchangeRate{rate("JPY", date(2026, time.October, 16), "176.10")})
	require.NoError(t, err)

	assert.Equal(t, "EUR 1 = JPY ... / Japanese yen\n1/4/2021,126.62\n10/16/2026,176.1\n", readFile(t, path))
}

func TestArchive_AppendLeavesOnlyTheArchiveFile(t *testing.T) {
	dir := t.TempDir()
	a := NewArchive(dir, WithClock(fixedNow))
	chf := domain.Currency{CurrencyCode: "CHF", Name: "Swiss franc"}
	ctx := context.Background()

	require.NoError(t, a.Append(ctx, chf, []domain.ExchangeRate{rate("CHF", date(2026, time.October, 15), "0.9312")}))
	require.NoError(t, a.Append(ctx, chf, []domain.ExchangeRate{rate("CHF", date(2026, time.October, 16), "0.9298")}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "BBEX3.D.CHF.EUR.BB.AC.000.csv", entries[0].Name())

	info, err := os.Stat(a.Path("CHF"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
	assert.True(t, strings.HasSuffix(readFile(t, a.Path("CHF")), "10/15/2026,0.9312\n10/16/2026,0.9298\n"))
}

func TestArchive_AppendEmptyIsNoop(t *testing.T) {
	dir := t.TempDir()
	a := NewArchive(dir)

	require.NoError(t, a.Append(context.Background(), domain.Currency{CurrencyCode: "CHF"}, nil))

	_, err := os.Stat(a.Path("CHF"))
	assert.True(t, os.IsNotExist(err))
}

func TestArchive_AppendIOFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	a := NewArchive(blocker)

	err := a.Append(context.Background(), domain.Currency{CurrencyCode: "USD"},
		[]domain.ExchangeRate{rate("USD", date(2026, time.October, 16), "1.1")})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrIOFailure)
}

func TestArchive_ListFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.CSV", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(""), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755))

	files, err := NewArchive(dir).ListFiles("")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.CSV"), filepath.Join(dir, "b.csv")}, files)

	_, err = NewArchive(dir).ListFiles(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, apperrors.ErrIOFailure)
}

func TestArchive_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	a := NewArchive(dir, WithClock(fixedNow))
	currency := domain.Currency{CurrencyCode: "CAD", Name: "Canadian dollar"}

	written := []domain.ExchangeRate{
		rate("CAD", date(2025, time.January, 2), "1.4941"),
		rate("CAD", date(2025, time.January, 3), "1.4870"),
	}
	more := []domain.ExchangeRate{
		rate("CAD", date(2025, time.December, 31), "1.6090"),
	}
	require.NoError(t, a.Append(context.Background(), currency, written))
	require.NoError(t, a.Append(context.Background(), currency, more))

	f, err := a.Open(a.Path("CAD"))
	require.NoError(t, err)
	defer f.Close()

	r := NewReader(f)
	records, err := r.ReadAll()
	require.NoError(t, err)

	code, name, ok := r.Currency()
	require.True(t, ok)
	assert.Equal(t, "CAD", code)
	assert.Equal(t, "Canadian dollar", name)

	all := append(written, more...)
	require.Len(t, records, len(all))
	for i, want := range all {
		assert.True(t, want.RateDate.Equal(records[i].Date), "date %d", i)
		assert.True(t, want.Rate.Equal(records[i].Value), "value %d", i)
	}
}
