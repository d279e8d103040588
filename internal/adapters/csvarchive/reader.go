package csvarchive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/SscSPs/fx_rates_ingestor/internal/apperrors"
	"github.com/SscSPs/fx_rates_ingestor/internal/core/domain"
	"github.com/SscSPs/fx_rates_ingestor/internal/utils"
	"github.com/shopspring/decimal"
)

// noValueMarker is the Bundesbank placeholder for a day without a published rate.
const noValueMarker = "."

var metadataPrefixes = []string{"last update", "comment", "source", "decimals", "unit"}

// Record is one dated value read from the data section of an archive file.
type Record = domain.ArchiveRecord

// Reader walks an archive file, consuming header metadata and yielding data records.
// Once the first data line is seen the header is closed for the rest of the file.
type Reader struct {
	scanner *bufio.Scanner
	logger  *slog.Logger
	name    string

	line         int
	inData       bool
	currencyCode string
	currencyName string

	malformed int
	noValue   int
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithLogger sets the logger used for skipped lines.
func WithLogger(logger *slog.Logger) ReaderOption {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithName labels log lines with the file being read.
func WithName(name string) ReaderOption {
	return func(r *Reader) {
		r.name = name
	}
}

// NewReader creates a Reader over src.
func NewReader(src io.Reader, opts ...ReaderOption) *Reader {
	r := &Reader{
		scanner: bufio.NewScanner(src),
		logger:  slog.Default(),
	}
	r.scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Next returns the next data record, or io.EOF when the input is exhausted.
// Lines that cannot be parsed are logged, counted and skipped.
func (r *Reader) Next() (Record, error) {
	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}

		if !r.inData {
			if r.consumeHeader(line) {
				continue
			}
			r.inData = true
		}

		rec, ok := r.parseData(line)
		if ok {
			return rec, nil
		}
	}
	if err := r.scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("%w: reading %s: %v", apperrors.ErrIOFailure, r.name, err)
	}
	return Record{}, io.EOF
}

// ReadAll drains the reader.
func (r *Reader) ReadAll() ([]Record, error) {
	var records []Record
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

// Currency returns the currency identity parsed from the header, if any.
func (r *Reader) Currency() (code, name string, ok bool) {
	return r.currencyCode, r.currencyName, r.currencyCode != ""
}

// Malformed is the number of data lines dropped for an invalid date or value.
func (r *Reader) Malformed() int {
	return r.malformed
}

// NoValue is the number of data lines carrying the no-value marker or nothing at all.
func (r *Reader) NoValue() int {
	return r.noValue
}

// consumeHeader reports whether line was swallowed by the header state.
func (r *Reader) consumeHeader(line string) bool {
	lower := strings.ToLower(line)
	for _, prefix := range metadataPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}

	if r.currencyCode == "" && strings.Contains(line, CurrencyMarker) {
		metadata := headerMetadata(line)
		code, ok := ExtractCurrencyCode(metadata)
		if ok {
			r.currencyCode = code
			r.currencyName = ExtractCurrencyName(metadata)
		}
		r.logger.Debug("Parsed archive header",
			slog.String("file", r.name),
			slog.String("metadata", metadata),
			slog.String("currency_code", r.currencyCode),
			slog.String("currency_name", r.currencyName))
		return true
	}

	return !utils.LooksLikeDataLine(line)
}

func (r *Reader) parseData(line string) (Record, bool) {
	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		r.noValue++
		return Record{}, false
	}
	rawValue := strings.TrimSpace(fields[1])
	if rawValue == "" || rawValue == noValueMarker {
		r.noValue++
		return Record{}, false
	}

	date, err := utils.ParseRateDate(fields[0])
	if err != nil {
		r.malformed++
		r.logger.Warn("Skipping archive line with invalid date",
			slog.String("file", r.name), slog.Int("line", r.line), slog.String("error", err.Error()))
		return Record{}, false
	}

	value, err := decimal.NewFromString(rawValue)
	if err != nil {
		r.malformed++
		r.logger.Warn("Skipping archive line with invalid rate",
			slog.String("file", r.name), slog.Int("line", r.line), slog.String("value", rawValue))
		return Record{}, false
	}

	return Record{Line: r.line, Date: date, Value: value}, true
}
