package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"MarketLens/internal/model"

	"github.com/tidwall/gjson"
)

// RESTFetcher implements Fetcher against a generic JSON market data API.
type RESTFetcher struct {
	httpSource
	APIKey string
}

// NewRESTFetcher creates a new fetcher for baseURL.
func NewRESTFetcher(baseURL, apiKey string, opts ...Option) *RESTFetcher {
	return &RESTFetcher{
		httpSource: newHTTPSource(baseURL, opts...),
		APIKey:     apiKey,
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape of one candle. Either Date or Timestamp is set.
type restBar struct {
	Date      string  `json:"date"`
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (b restBar) day() (time.Time, error) {
	if b.Date != "" {
		return time.Parse(model.DateLayout, b.Date)
	}
	if b.Timestamp == 0 {
		return time.Time{}, errors.New("bar without date")
	}
	return model.DateOf(time.Unix(b.Timestamp, 0).UTC()), nil
}

func (f *RESTFetcher) header() http.Header {
	h := http.Header{}
	if f.APIKey != "" {
		h.Set("Authorization", "Bearer "+f.APIKey)
	}
	return h
}

// FetchBars loads /api/v1/bars for a period or a date range.
func (f *RESTFetcher) FetchBars(ctx context.Context, symbol string, q model.Query) (model.BarSeries, error) {
	series, err := f.fetchBars(ctx, symbol, q)
	return series, providerErr(f.Name(), symbol, "fetch bars", err)
}

func (f *RESTFetcher) fetchBars(ctx context.Context, symbol string, q model.Query) (model.BarSeries, error) {
	if err := q.Validate(); err != nil {
		return model.BarSeries{}, err
	}
	params := url.Values{}
	params.Set("symbol", symbol)
	if q.IsRange() {
		params.Set("from", q.Start.Format(model.DateLayout))
		params.Set("to", q.End.Format(model.DateLayout))
	} else {
		params.Set("period", string(q.Period))
	}

	body, err := f.get(ctx, f.baseURL+"/api/v1/bars?"+params.Encode(), f.header())
	if err != nil {
		return model.BarSeries{}, restHTTPErr(err)
	}
	var raw []restBar
	if err := json.Unmarshal(body, &raw); err != nil {
		return model.BarSeries{}, fmt.Errorf("decode bars: %w", err)
	}
	bars := make([]model.Bar, 0, len(raw))
	for _, rb := range raw {
		day, err := rb.day()
		if err != nil {
			return model.BarSeries{}, fmt.Errorf("decode bars: %w", err)
		}
		bars = append(bars, model.Bar{
			Date:   day,
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: int64(rb.Volume),
		})
	}
	bars = model.NormalizeBars(bars)
	if len(bars) == 0 {
		return model.BarSeries{}, ErrNoData
	}
	return model.BarSeries{Symbol: symbol, Bars: bars}, nil
}

// FetchFundamentals loads /api/v1/fundamentals. The body is either a flat
// object or has the fields nested under "metrics" and "attributes".
func (f *RESTFetcher) FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	fund, err := f.fetchFundamentals(ctx, symbol)
	return fund, providerErr(f.Name(), symbol, "fetch fundamentals", err)
}

func (f *RESTFetcher) fetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	endpoint := f.baseURL + "/api/v1/fundamentals?" + url.Values{"symbol": {symbol}}.Encode()
	body, err := f.get(ctx, endpoint, f.header())
	if err != nil {
		return nil, restHTTPErr(err)
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("decode fundamentals: invalid json")
	}
	doc := gjson.ParseBytes(body)
	fund := model.NewFundamentals(symbol)
	if doc.Get("metrics").IsObject() || doc.Get("attributes").IsObject() {
		flatten(doc.Get("metrics"), fund)
		flatten(doc.Get("attributes"), fund)
	} else {
		flatten(doc, fund)
	}
	if len(fund.Metrics) == 0 && len(fund.Attributes) == 0 {
		return nil, ErrNoData
	}
	return fund, nil
}

func restHTTPErr(err error) error {
	var se *statusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %v", ErrUnknownSymbol, err)
	}
	return err
}
