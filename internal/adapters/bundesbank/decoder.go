package bundesbank

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/SscSPs/fx_rates_ingestor/internal/apperrors"
	"github.com/SscSPs/fx_rates_ingestor/internal/core/domain"
	"github.com/SscSPs/fx_rates_ingestor/internal/utils"
	"github.com/shopspring/decimal"
)

const (
	// DefaultCurrencyDimension is the series dimension carrying the quoted currency.
	DefaultCurrencyDimension = "BBK_STD_CURRENCY"
	// UnknownCurrency is used for series whose currency dimension cannot be resolved.
	UnknownCurrency = "UNKNOWN"

	timePeriodDimension = "TIME_PERIOD"
)

type envelope struct {
	Data *message `json:"data"`
	message
}

type message struct {
	DataSets  []dataSet `json:"dataSets"`
	Structure structure `json:"structure"`
}

type dataSet struct {
	Series map[string]series `json:"series"`
}

type series struct {
	Observations map[string][]json.RawMessage `json:"observations"`
}

type structure struct {
	Dimensions dimensions `json:"dimensions"`
}

type dimensions struct {
	Series      []dimension `json:"series"`
	Observation []dimension `json:"observation"`
}

type dimension struct {
	ID     string           `json:"id"`
	Values []dimensionValue `json:"values"`
}

type dimensionValue struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DecodeSeries decodes an SDMX-JSON data message into one Series per series key.
// Series are decoded independently; a bad observation only affects its own series.
func DecodeSeries(r io.Reader, currencyDimension string) ([]domain.Series, error) {
	if currencyDimension == "" {
		currencyDimension = DefaultCurrencyDimension
	}

	var env envelope
	dec := json.NewDecoder(r)
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decoding series payload: %v", apperrors.ErrMalformedValue, err)
	}
	msg := env.message
	if env.Data != nil {
		msg = *env.Data
	}
	if len(msg.DataSets) == 0 {
		return nil, fmt.Errorf("%w: series payload has no data sets", apperrors.ErrMalformedValue)
	}

	periods := timePeriods(msg.Structure.Dimensions.Observation)
	currencyPos, currencyDim := findDimension(msg.Structure.Dimensions.Series, currencyDimension)

	var out []domain.Series
	for _, ds := range msg.DataSets {
		keys := make([]string, 0, len(ds.Series))
		for key := range ds.Series {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			s := domain.Series{
				Key:          key,
				CurrencyCode: seriesCurrency(key, currencyPos, currencyDim),
			}
			decodeObservations(&s, ds.Series[key], periods)
			out = append(out, s)
		}
	}
	return out, nil
}

func timePeriods(dims []dimension) []dimensionValue {
	for _, d := range dims {
		if d.ID == timePeriodDimension {
			return d.Values
		}
	}
	if len(dims) > 0 {
		return dims[0].Values
	}
	return nil
}

func findDimension(dims []dimension, id string) (int, *dimension) {
	for i := range dims {
		if dims[i].ID == id {
			return i, &dims[i]
		}
	}
	return -1, nil
}

// seriesCurrency resolves the currency from the series key position, falling
// back to the dimension's first declared value.
func seriesCurrency(key string, pos int, dim *dimension) string {
	if dim == nil || len(dim.Values) == 0 {
		return UnknownCurrency
	}
	parts := strings.Split(key, ":")
	if pos >= 0 && pos < len(parts) {
		if idx, err := strconv.Atoi(parts[pos]); err == nil && idx >= 0 && idx < len(dim.Values) {
			if id := dim.Values[idx].ID; id != "" {
				return id
			}
		}
	}
	if id := dim.Values[0].ID; id != "" {
		return id
	}
	return UnknownCurrency
}

func decodeObservations(s *domain.Series, raw series, periods []dimensionValue) {
	indices := make([]int, 0, len(raw.Observations))
	byIndex := make(map[int][]json.RawMessage, len(raw.Observations))
	for key, obs := range raw.Observations {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(periods) {
			s.Malformed++
			continue
		}
		indices = append(indices, idx)
		byIndex[idx] = obs
	}
	sort.Ints(indices)

	for _, idx := range indices {
		obs := byIndex[idx]
		if len(obs) == 0 || isNull(obs[0]) {
			s.Nulls++
			continue
		}

		var value decimal.NullDecimal
		if err := value.UnmarshalJSON(obs[0]); err != nil || !value.Valid {
			s.Malformed++
			continue
		}

		date, err := utils.ParseRateDate(periods[idx].ID)
		if err != nil {
			s.Malformed++
			continue
		}

		s.Observations = append(s.Observations, domain.Observation{
			CurrencyCode: s.CurrencyCode,
			Date:         date,
			Value:        value.Decimal,
		})
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
