package services_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/fx_rates_ingestor/internal/adapters/csvarchive"
	"github.com/SscSPs/fx_rates_ingestor/internal/apperrors"
	"github.com/SscSPs/fx_rates_ingestor/internal/core/domain"
	portssvc "github.com/SscSPs/fx_rates_ingestor/internal/core/ports/services"
	"github.com/SscSPs/fx_rates_ingestor/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const usdArchive = `,BBEX3.D.USD.EUR.BB.AC.000,BBEX3.D.USD.EUR.BB.AC.000_FLAGS
,"Euro foreign exchange reference rate of the ECB / EUR 1 = USD ... / US dollar",
unit,USD,
unit multiplier,one,
last update,2021-01-06 14:23:11,
source,Deutsche Bundesbank,
2021-01-04,1.2296,
2021-01-05,.,No value available
2021-01-06,1.2271,
2021-01-07,abc,
`

const jpyArchiveWithoutData = `,BBEX3.D.JPY.EUR.BB.AC.000
,"Euro foreign exchange reference rate of the ECB / EUR 1 = JPY ... / Japanese yen",
last update,2021-01-06,
2021-01-01,.,
2021-01-02,.,
`

const headerlessArchive = `some exported data
2021-01-04,1.5,
`

func writeArchive(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func observation(code string, d time.Time, value string) domain.Observation {
	return domain.Observation{CurrencyCode: code, Date: d, Value: decimal.RequireFromString(value)}
}

// --- Test Suite ---
type IngestionServiceTestSuite struct {
	suite.Suite
	dir        string
	store      *memoryStore
	archive    *csvarchive.Archive
	source     *MockLiveRateSource
	reconciler portssvc.ReconcilerSvc
	service    portssvc.IngestionSvcFacade
}

func (suite *IngestionServiceTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
	suite.store = newMemoryStore()
	suite.archive = csvarchive.NewArchive(suite.dir, csvarchive.WithClock(func() time.Time { return fixedNow }))
	suite.source = new(MockLiveRateSource)
	suite.reconciler = services.NewReconcilerService(suite.store, suite.store,
		services.WithReconcilerClock(func() time.Time { return fixedNow }))
	suite.service = services.NewIngestionService(suite.reconciler, suite.store, suite.archive,
		services.WithLiveSource(suite.source))
}

func (suite *IngestionServiceTestSuite) TestImportCSVDirectory_CountsEveryFile() {
	ctx := context.Background()
	writeArchive(suite.T(), suite.dir, csvarchive.FileName("USD"), usdArchive)
	writeArchive(suite.T(), suite.dir, csvarchive.FileName("JPY"), jpyArchiveWithoutData)
	writeArchive(suite.T(), suite.dir, "notes.txt", "ignored")

	summary, err := suite.service.ImportCSVDirectory(ctx, "")

	suite.Require().NoError(err)
	suite.Equal(2, summary.FilesProcessed)
	suite.Equal(2, summary.FilesImported)
	suite.Equal(0, summary.FilesFailed)
	suite.Equal(2, summary.Inserted)
	suite.Equal(1, summary.Malformed)
	suite.Equal(3, summary.NoValue)
	suite.Require().Len(summary.Files, 2)
	suite.Equal("JPY", summary.Files[0].CurrencyCode)
	suite.Equal("Japanese yen", summary.Files[0].CurrencyName)
	suite.Equal(0, summary.Files[0].Inserted)
	suite.Equal(2, summary.Files[0].NoValue)
	suite.Equal("USD", summary.Files[1].CurrencyCode)
	suite.Equal(1, summary.Files[1].NoValue)

	usd, err := suite.store.FindCurrencyByCode(ctx, "USD")
	suite.Require().NoError(err)
	suite.Equal("US dollar", usd.Name)
	suite.Equal(2, suite.store.rateCount("USD"))

	// the JPY file had no rows, so nothing keyed it into the store
	_, err = suite.store.FindCurrencyByCode(ctx, "JPY")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *IngestionServiceTestSuite) TestImportCSVDirectory_IsIdempotent() {
	ctx := context.Background()
	writeArchive(suite.T(), suite.dir, csvarchive.FileName("USD"), usdArchive)

	first, err := suite.service.ImportCSVDirectory(ctx, suite.dir)
	suite.Require().NoError(err)
	second, err := suite.service.ImportCSVDirectory(ctx, suite.dir)
	suite.Require().NoError(err)

	suite.Equal(2, first.Inserted)
	suite.Equal(0, second.Inserted)
	suite.Equal(2, second.Skipped)
	suite.Equal(2, suite.store.rateCount("USD"))
}

func (suite *IngestionServiceTestSuite) TestImportCSVDirectory_SkipsFileWithoutCurrency() {
	writeArchive(suite.T(), suite.dir, "export.csv", headerlessArchive)
	writeArchive(suite.T(), suite.dir, csvarchive.FileName("USD"), usdArchive)

	summary, err := suite.service.ImportCSVDirectory(context.Background(), suite.dir)

	suite.Require().NoError(err)
	suite.Equal(2, summary.FilesProcessed)
	suite.Equal(1, summary.FilesSkipped)
	suite.Equal(1, summary.FilesImported)
	suite.Equal(2, summary.Inserted)
	suite.NotEmpty(summary.Files[1].SkipReason)
	suite.Equal(0, suite.store.rateCount(""))
}

func (suite *IngestionServiceTestSuite) TestImportCSVDirectory_BackfillsPlaceholderName() {
	ctx := context.Background()
	suite.Require().NoError(suite.store.SaveCurrency(ctx, domain.Currency{CurrencyCode: "USD", Name: "USD"}))
	writeArchive(suite.T(), suite.dir, csvarchive.FileName("USD"), usdArchive)

	_, err := suite.service.ImportCSVDirectory(ctx, suite.dir)
	suite.Require().NoError(err)

	usd, err := suite.store.FindCurrencyByCode(ctx, "USD")
	suite.Require().NoError(err)
	suite.Equal("US dollar", usd.Name)
}

func (suite *IngestionServiceTestSuite) TestImportCSVDirectory_UnreadableDirectory() {
	_, err := suite.service.ImportCSVDirectory(context.Background(), filepath.Join(suite.dir, "missing"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrIOFailure)
}

func (suite *IngestionServiceTestSuite) TestRefresh_EmptyStore() {
	summary, err := suite.service.RefreshAllFromLiveSource(context.Background())

	suite.Require().NoError(err)
	suite.Equal(domain.RefreshSummary{}, *summary)
	suite.source.AssertNotCalled(suite.T(), "FetchCurrency", mock.Anything, mock.Anything)
}

func (suite *IngestionServiceTestSuite) TestRefresh_StoresAndArchivesNewRates() {
	ctx := context.Background()
	for _, c := range []domain.Currency{
		{CurrencyCode: "EUR", Name: "Euro"},
		{CurrencyCode: "JPY", Name: "Japanese yen"},
		{CurrencyCode: "USD", Name: "US dollar"},
	} {
		suite.Require().NoError(suite.store.SaveCurrency(ctx, c))
	}
	_, err := suite.reconciler.Upsert(ctx, domain.UpsertRequest{
		Source:      domain.SourceCSV,
		Observation: observation("USD", day(2026, time.October, 14), "1.1603"),
	})
	suite.Require().NoError(err)

	suite.source.On("FetchCurrency", mock.Anything, "JPY").
		Return(nil, apperrors.ErrSourceUnavailable).Once()
	suite.source.On("FetchCurrency", mock.Anything, "USD").Return([]domain.Series{{
		Key:          "0:0:0:0:0:0",
		CurrencyCode: "USD",
		Malformed:    1,
		Observations: []domain.Observation{
			observation("USD", day(2026, time.October, 14), "1.1603"),
			observation("USD", day(2026, time.October, 15), "1.1587"),
			observation("USD", day(2026, time.October, 16), "1.16500"),
		},
	}}, nil).Once()

	summary, err := suite.service.RefreshAllFromLiveSource(ctx)

	suite.Require().NoError(err)
	suite.Equal(2, summary.CurrenciesProcessed)
	suite.Equal(1, summary.CurrenciesUpdated)
	suite.Equal(1, summary.CurrenciesFailed)
	suite.Equal([]string{"JPY"}, summary.FailedCurrencies)
	suite.Equal(2, summary.Inserted)
	suite.Equal(1, summary.Skipped)
	suite.Equal(1, summary.Malformed)
	suite.Equal(0, summary.ArchiveFailures)
	suite.source.AssertExpectations(suite.T())
	suite.source.AssertNotCalled(suite.T(), "FetchCurrency", mock.Anything, "EUR")

	content, err := os.ReadFile(suite.archive.Path("USD"))
	suite.Require().NoError(err)
	suite.Equal(strings.Join([]string{
		"Euro foreign exchange reference rate of the ECB / EUR 1 = USD ... / US dollar",
		"last update,2026-10-17",
		"10/15/2026,1.1587",
		"10/16/2026,1.165",
		"",
	}, "\n"), string(content))

	usd, err := suite.store.FindCurrencyByCode(ctx, "USD")
	suite.Require().NoError(err)
	suite.True(usd.LastUpdated.Equal(day(2026, time.October, 17)))
}

func (suite *IngestionServiceTestSuite) TestRefresh_CreatesCurrencyWithCodeAsName() {
	ctx := context.Background()
	suite.Require().NoError(suite.store.SaveCurrency(ctx, domain.Currency{CurrencyCode: "USD", Name: "US dollar"}))

	suite.source.On("FetchCurrency", mock.Anything, "USD").Return([]domain.Series{
		{Key: "0:0", CurrencyCode: "UNKNOWN", Observations: []domain.Observation{
			observation("UNKNOWN", day(2026, time.October, 16), "1.1"),
		}},
		{Key: "0:1", CurrencyCode: "CAD", Observations: []domain.Observation{
			observation("CAD", day(2026, time.October, 16), "1.6281"),
		}},
	}, nil).Once()

	summary, err := suite.service.RefreshAllFromLiveSource(ctx)

	suite.Require().NoError(err)
	suite.Equal(1, summary.SeriesSkipped)
	suite.Equal(1, summary.Inserted)

	cad, err := suite.store.FindCurrencyByCode(ctx, "CAD")
	suite.Require().NoError(err)
	suite.Equal("CAD", cad.Name)
	suite.FileExists(suite.archive.Path("CAD"))
}

func (suite *IngestionServiceTestSuite) TestRefresh_ArchiveFailureIsAbsorbed() {
	ctx := context.Background()
	suite.Require().NoError(suite.store.SaveCurrency(ctx, domain.Currency{CurrencyCode: "GBP", Name: "Pound sterling"}))
	service := services.NewIngestionService(suite.reconciler, suite.store, failingArchive{suite.archive},
		services.WithLiveSource(suite.source))

	suite.source.On("FetchCurrency", mock.Anything, "GBP").Return([]domain.Series{{
		CurrencyCode: "GBP",
		Observations: []domain.Observation{observation("GBP", day(2026, time.October, 16), "0.8712")},
	}}, nil).Once()

	summary, err := service.RefreshAllFromLiveSource(ctx)

	suite.Require().NoError(err)
	suite.Equal(1, summary.Inserted)
	suite.Equal(1, summary.CurrenciesUpdated)
	suite.Equal(1, summary.ArchiveFailures)
	suite.Equal(0, summary.CurrenciesFailed)
	suite.Equal(1, suite.store.rateCount("GBP"))
}

func (suite *IngestionServiceTestSuite) TestRefresh_StoreFailureStillArchivesInsertedRates() {
	ctx := context.Background()
	suite.Require().NoError(suite.store.SaveCurrency(ctx, domain.Currency{CurrencyCode: "USD", Name: "US dollar"}))
	suite.source.On("FetchCurrency", mock.Anything, "USD").Return([]domain.Series{{
		CurrencyCode: "USD",
		Observations: []domain.Observation{
			observation("USD", day(2026, time.October, 14), "1.1"),
			observation("USD", day(2026, time.October, 15), "1.2"),
			observation("USD", day(2026, time.October, 16), "1.3"),
		},
	}}, nil).Twice()

	suite.store.failSaveOn = 2
	first, err := suite.service.RefreshAllFromLiveSource(ctx)
	suite.Require().NoError(err)
	suite.Equal(1, first.Inserted)
	suite.Equal(1, first.CurrenciesFailed)
	suite.Equal([]string{"USD"}, first.FailedCurrencies)

	content, err := os.ReadFile(suite.archive.Path("USD"))
	suite.Require().NoError(err)
	suite.Contains(string(content), "10/14/2026,1.1\n")

	suite.store.failSaveOn = 0
	second, err := suite.service.RefreshAllFromLiveSource(ctx)
	suite.Require().NoError(err)
	suite.Equal(2, second.Inserted)
	suite.Equal(1, second.Skipped)
	suite.Equal(3, suite.store.rateCount("USD"))

	content, err = os.ReadFile(suite.archive.Path("USD"))
	suite.Require().NoError(err)
	suite.Equal(strings.Join([]string{
		"Euro foreign exchange reference rate of the ECB / EUR 1 = USD ... / US dollar",
		"last update,2026-10-17",
		"10/14/2026,1.1",
		"10/15/2026,1.2",
		"10/16/2026,1.3",
		"",
	}, "\n"), string(content))
}

func (suite *IngestionServiceTestSuite) TestRefresh_PacesEveryFetch() {
	ctx := context.Background()
	for _, code := range []string{"AUD", "EUR", "NZD"} {
		suite.Require().NoError(suite.store.SaveCurrency(ctx, domain.Currency{CurrencyCode: code, Name: code}))
	}
	pacer := new(MockPacer)
	pacer.On("Wait", mock.Anything).Return(nil).Twice()
	suite.source.On("FetchCurrency", mock.Anything, mock.Anything).Return([]domain.Series{}, nil).Twice()

	service := services.NewIngestionService(suite.reconciler, suite.store, suite.archive,
		services.WithLiveSource(suite.source), services.WithPacer(pacer))

	summary, err := service.RefreshAllFromLiveSource(ctx)

	suite.Require().NoError(err)
	suite.Equal(2, summary.CurrenciesProcessed)
	pacer.AssertExpectations(suite.T())
	suite.source.AssertExpectations(suite.T())
}

func (suite *IngestionServiceTestSuite) TestRefresh_StopsWhenPacerIsCancelled() {
	ctx := context.Background()
	suite.Require().NoError(suite.store.SaveCurrency(ctx, domain.Currency{CurrencyCode: "AUD", Name: "AUD"}))
	pacer := new(MockPacer)
	pacer.On("Wait", mock.Anything).Return(context.Canceled).Once()

	service := services.NewIngestionService(suite.reconciler, suite.store, suite.archive,
		services.WithLiveSource(suite.source), services.WithPacer(pacer))

	summary, err := service.RefreshAllFromLiveSource(ctx)

	suite.ErrorIs(err, context.Canceled)
	suite.Require().NotNil(summary)
	suite.Equal(0, summary.CurrenciesProcessed)
	suite.source.AssertNotCalled(suite.T(), "FetchCurrency", mock.Anything, mock.Anything)
}

// --- Run Suite ---
func TestIngestionService(t *testing.T) {
	suite.Run(t, new(IngestionServiceTestSuite))
}

type failingArchive struct {
	*csvarchive.Archive
}

func (failingArchive) Append(context.Context, domain.Currency, []domain.ExchangeRate) error {
	return errors.New("disk full")
}
