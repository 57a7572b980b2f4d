package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"MarketLens/internal/model"

	"github.com/tidwall/gjson"
)

const (
	// YahooBaseURL serves the chart and quoteSummary endpoints.
	YahooBaseURL = "https://query2.finance.yahoo.com"
	// YahooCookieURL hands out the session cookie required for a crumb.
	YahooCookieURL = "https://fc.yahoo.com"
)

// yahooModules are the quoteSummary modules flattened into Fundamentals.
var yahooModules = []string{"price", "summaryDetail", "defaultKeyStatistics", "financialData", "assetProfile"}

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	httpSource
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
	CookieURL string            // empty skips the cookie bootstrap

	mu    sync.Mutex
	crumb string
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(opts ...Option) *YahooFetcher {
	return &YahooFetcher{
		httpSource: newHTTPSource(YahooBaseURL, opts...),
		CookieURL:  YahooCookieURL,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *yahooError) err() error {
	if e.Code == "Not Found" || strings.Contains(strings.ToLower(e.Description), "no data found") {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, e.Description)
	}
	return fmt.Errorf("yahoo api error: %s", e.Description)
}

func at(values []*float64, i int) (float64, bool) {
	if i >= len(values) || values[i] == nil {
		return 0, false
	}
	return *values[i], true
}

func (f *YahooFetcher) chartURL(symbol string, q model.Query) string {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("includePrePost", "false")
	if q.IsRange() {
		params.Set("period1", strconv.FormatInt(q.Start.Unix(), 10))
		// period2 is exclusive
		params.Set("period2", strconv.FormatInt(q.End.AddDate(0, 0, 1).Unix(), 10))
	} else {
		params.Set("range", string(q.Period))
	}
	return fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.baseURL, url.PathEscape(f.yahooSymbol(symbol)), params.Encode())
}

// FetchBars loads daily candles from the v8 chart endpoint.
func (f *YahooFetcher) FetchBars(ctx context.Context, symbol string, q model.Query) (model.BarSeries, error) {
	series, err := f.fetchChart(ctx, symbol, q)
	return series, providerErr(f.Name(), symbol, "fetch bars", err)
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol string, q model.Query) (model.BarSeries, error) {
	if err := q.Validate(); err != nil {
		return model.BarSeries{}, err
	}
	body, err := f.get(ctx, f.chartURL(symbol, q), nil)
	if err != nil {
		return model.BarSeries{}, yahooHTTPErr(body, err)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return model.BarSeries{}, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return model.BarSeries{}, chart.Chart.Error.err()
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return model.BarSeries{}, ErrNoData
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, ok1 := at(quote.Open, i)
		h, ok2 := at(quote.High, i)
		l, ok3 := at(quote.Low, i)
		c, ok4 := at(quote.Close, i)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue // skip null bars (holidays etc.)
		}
		v, _ := at(quote.Volume, i)
		bars = append(bars, model.Bar{
			Date:   model.DateOf(time.Unix(ts+result.Meta.GMTOffset, 0).UTC()),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: int64(v),
		})
	}
	bars = model.NormalizeBars(bars)
	if q.IsRange() {
		bars = clipRange(bars, q.Start, q.End)
	}
	if len(bars) == 0 {
		return model.BarSeries{}, ErrNoData
	}
	return model.BarSeries{Symbol: symbol, Bars: bars}, nil
}

func clipRange(bars []model.Bar, start, end time.Time) []model.Bar {
	out := bars[:0]
	for _, b := range bars {
		if b.Date.Before(start) || b.Date.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func yahooHTTPErr(body []byte, err error) error {
	var se *statusError
	if !errors.As(err, &se) {
		return err
	}
	for _, path := range []string{"chart.error", "quoteSummary.error", "finance.error"} {
		if r := gjson.GetBytes(body, path); r.IsObject() {
			ye := yahooError{Code: r.Get("code").String(), Description: r.Get("description").String()}
			return ye.err()
		}
	}
	if se.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %v", ErrUnknownSymbol, err)
	}
	return err
}

// FetchFundamentals loads the quoteSummary modules and flattens them.
func (f *YahooFetcher) FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	fund, err := f.fetchSummary(ctx, symbol)
	return fund, providerErr(f.Name(), symbol, "fetch fundamentals", err)
}

func (f *YahooFetcher) fetchSummary(ctx context.Context, symbol string) (*model.Fundamentals, error) {
	params := url.Values{}
	params.Set("modules", strings.Join(yahooModules, ","))
	if crumb := f.sessionCrumb(ctx); crumb != "" {
		params.Set("crumb", crumb)
	}
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s", f.baseURL, url.PathEscape(f.yahooSymbol(symbol)), params.Encode())

	body, err := f.get(ctx, endpoint, nil)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
			f.resetCrumb()
		}
		return nil, yahooHTTPErr(body, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("yahoo decode: invalid json")
	}
	if e := gjson.GetBytes(body, "quoteSummary.error"); e.IsObject() {
		ye := yahooError{Code: e.Get("code").String(), Description: e.Get("description").String()}
		return nil, ye.err()
	}
	result := gjson.GetBytes(body, "quoteSummary.result.0")
	if !result.IsObject() {
		return nil, ErrNoData
	}

	fund := model.NewFundamentals(symbol)
	for _, module := range yahooModules {
		flatten(result.Get(module), fund)
	}
	if len(fund.Metrics) == 0 && len(fund.Attributes) == 0 {
		return nil, ErrNoData
	}
	return fund, nil
}

// flatten copies a module's fields into fund. {"raw": x} objects and plain
// numbers become metrics, strings become attributes. The first module that
// defines a key wins.
func flatten(module gjson.Result, fund *model.Fundamentals) {
	if !module.IsObject() {
		return
	}
	module.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if _, dup := fund.Metrics[k]; dup {
			return true
		}
		if _, dup := fund.Attributes[k]; dup {
			return true
		}
		switch {
		case value.IsObject():
			if raw := value.Get("raw"); raw.Type == gjson.Number {
				fund.Metrics[k] = raw.Float()
			}
		case value.Type == gjson.Number:
			fund.Metrics[k] = value.Float()
		case value.Type == gjson.String && value.String() != "":
			fund.Attributes[k] = value.String()
		}
		return true
	})
}

// sessionCrumb returns the cached crumb, bootstrapping the cookie session on
// first use. Failures yield an empty crumb and the request goes out without it.
func (f *YahooFetcher) sessionCrumb(ctx context.Context) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.crumb != "" {
		return f.crumb
	}
	if f.CookieURL != "" {
		// fc.yahoo.com answers 404 but still sets the cookie
		_, _ = f.get(ctx, f.CookieURL, nil)
	}
	body, err := f.get(ctx, f.baseURL+"/v1/test/getcrumb", nil)
	if err != nil {
		return ""
	}
	crumb := strings.TrimSpace(string(body))
	if crumb == "" || strings.ContainsAny(crumb, "{<") {
		return ""
	}
	f.crumb = crumb
	return crumb
}

func (f *YahooFetcher) resetCrumb() {
	f.mu.Lock()
	f.crumb = ""
	f.mu.Unlock()
}
