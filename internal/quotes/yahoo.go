package quotes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// YahooProvider fetches prices from the public Yahoo Finance chart API.
// NSE-listed funds and ETFs resolve with the ".NS" suffix the fund
// catalog already carries.
type YahooProvider struct {
	client  *http.Client
	baseURL string
}

// NewYahooProvider builds a provider against baseURL, optionally
// routed through a proxy. An empty baseURL means the public endpoint.
func NewYahooProvider(baseURL, proxyURL string) *YahooProvider {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooProvider{
		client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
		baseURL: baseURL,
	}
}

// yahooChart is the subset of the chart API response we read.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Price returns the latest regular-market price for the ticker.
func (p *YahooProvider) Price(ticker string) (float64, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1d", p.baseURL, url.PathEscape(ticker))

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	// Yahoo rejects requests without a browser-ish agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; fundpal/1.0)")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("quote fetch %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("quote fetch %s: status %d", ticker, resp.StatusCode)
	}

	var chart yahooChart
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return 0, fmt.Errorf("quote decode %s: %w", ticker, err)
	}
	if chart.Chart.Error != nil {
		return 0, fmt.Errorf("quote %s: %s", ticker, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return 0, fmt.Errorf("quote %s: empty result", ticker)
	}

	price := chart.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return 0, fmt.Errorf("quote %s: no market price", ticker)
	}
	return price, nil
}
