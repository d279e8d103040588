package csvarchive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/fx_rates_ingestor/internal/apperrors"
	"github.com/SscSPs/fx_rates_ingestor/internal/core/domain"
	"github.com/SscSPs/fx_rates_ingestor/internal/core/ports/gateways"
	"github.com/SscSPs/fx_rates_ingestor/internal/middleware"
	"github.com/SscSPs/fx_rates_ingestor/internal/utils"
	"github.com/google/renameio/v2"
)

const (
	fileNameTemplate = "BBEX3.D.%s.EUR.BB.AC.000.csv"
	lastUpdatePrefix = "last update"
	headerTemplate   = "Euro foreign exchange reference rate of the ECB / EUR 1 = %s ... / %s"
)

// Archive is the directory of per-currency CSV mirrors of the store.
// Writes to the same file are serialised.
type Archive struct {
	dir   string
	now   func() time.Time
	locks sync.Map // path -> *sync.Mutex
}

// ArchiveOption configures an Archive.
type ArchiveOption func(*Archive)

// WithClock overrides the clock used for "last update" lines.
func WithClock(now func() time.Time) ArchiveOption {
	return func(a *Archive) {
		a.now = now
	}
}

// NewArchive creates an Archive rooted at dir.
func NewArchive(dir string, opts ...ArchiveOption) *Archive {
	a := &Archive{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Dir returns the archive root.
func (a *Archive) Dir() string {
	return a.dir
}

// FileName returns the archive file name for a currency code.
func FileName(code string) string {
	return fmt.Sprintf(fileNameTemplate, strings.ToUpper(code))
}

// Path returns the archive file path for a currency code.
func (a *Archive) Path(code string) string {
	return filepath.Join(a.dir, FileName(code))
}

// ListFiles returns the *.csv files directly under dir in lexical order.
// An empty dir means the archive root.
func (a *Archive) ListFiles(dir string) ([]string, error) {
	if dir == "" {
		dir = a.dir
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", apperrors.ErrIOFailure, dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Open opens an archive file for reading.
func (a *Archive) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", apperrors.ErrIOFailure, path, err)
	}
	return f, nil
}

// File is an archive file opened for record reading.
type File struct {
	*Reader
	closer io.Closer
}

// Close releases the underlying file.
func (f *File) Close() error {
	return f.closer.Close()
}

// OpenFile opens path and wraps it in a Reader logging through ctx's logger.
func (a *Archive) OpenFile(ctx context.Context, path string) (gateways.ArchiveFile, error) {
	rc, err := a.Open(path)
	if err != nil {
		return nil, err
	}
	reader := NewReader(rc,
		WithLogger(middleware.GetLoggerFromCtx(ctx)),
		WithName(filepath.Base(path)),
	)
	return &File{Reader: reader, closer: rc}, nil
}

var _ gateways.RateArchive = (*Archive)(nil)

// Append adds rates to the currency's archive file in the given order.
// A missing file is created with a synthesized header; an existing file gets
// its first "last update" line, if any, stamped with today's date. The whole
// file is rewritten through a temporary file and a rename.
func (a *Archive) Append(ctx context.Context, currency domain.Currency, rates []domain.ExchangeRate) error {
	if len(rates) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path := a.Path(currency.CurrencyCode)
	unlock := a.lock(path)
	defer unlock()

	today := utils.FormatISODate(utils.Today(a.now()))

	lines, err := readLines(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		lines = []string{
			fmt.Sprintf(headerTemplate, currency.CurrencyCode, currency.Name),
			lastUpdatePrefix + "," + today,
		}
	case err != nil:
		return fmt.Errorf("%w: reading %s: %v", apperrors.ErrIOFailure, path, err)
	default:
		stampLastUpdate(lines, today)
	}

	for _, rate := range rates {
		lines = append(lines, utils.FormatArchiveDate(rate.RateDate)+","+rate.Rate.String())
	}

	if err := writeAtomic(path, lines); err != nil {
		return fmt.Errorf("%w: writing %s: %v", apperrors.ErrIOFailure, path, err)
	}
	return nil
}

func (a *Archive) lock(path string) func() {
	mu, _ := a.locks.LoadOrStore(path, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func readLines(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSuffix(string(content), "\n")
	if text == "" {
		return []string{}, nil
	}
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	return lines, nil
}

// stampLastUpdate rewrites the first "last update" line in place. Files without one are left alone.
func stampLastUpdate(lines []string, today string) {
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), lastUpdatePrefix) {
			lines[i] = lastUpdatePrefix + "," + today
			return
		}
	}
}

// writeAtomic replaces path with lines through a synced temporary file and a rename.
func writeAtomic(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return renameio.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}
