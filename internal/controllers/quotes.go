package controllers

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/url"
	"path"
	"time"

	"papertrade/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const bookTickerUrlPath = "/api/v3/ticker/bookTicker"

// QuoteController fetches bid/ask per symbol from the market-data
// endpoint. It is the engine's QuoteSource.
type QuoteController struct {
	client *http.Client
	url    string
	logger *logrus.Logger
}

func NewQuoteController(
	client *http.Client,
	url string,
	logger *logrus.Logger,
) *QuoteController {
	return &QuoteController{
		client: client,
		url:    url,
		logger: logger,
	}
}

type bookTicker struct {
	Symbol   string `json:"symbol"`
	BidPrice string `json:"bidPrice"`
	AskPrice string `json:"askPrice"`
}

func (c *QuoteController) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	baseURL, err := url.Parse(c.url)
	if err != nil {
		return nil, err
	}

	baseURL.Path = path.Join(baseURL.Path, bookTickerUrlPath)

	q := baseURL.Query()
	q.Set("symbol", symbol)
	baseURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("quote %s: statusCode %d", symbol, resp.StatusCode)
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var out bookTicker
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}

	bid, err := decimal.NewFromString(out.BidPrice)
	if err != nil {
		return nil, errors.Wrapf(err, "quote %s: bad bid", symbol)
	}

	ask, err := decimal.NewFromString(out.AskPrice)
	if err != nil {
		return nil, errors.Wrapf(err, "quote %s: bad ask", symbol)
	}

	return &models.Quote{
		Symbol: out.Symbol,
		Bid:    bid,
		Ask:    ask,
		Last:   bid.Add(ask).Div(decimal.NewFromInt(2)),
		At:     time.Now().UTC(),
	}, nil
}

func (c *QuoteController) GetQuotes(ctx context.Context, symbols []string) ([]models.Quote, error) {
	out := make([]models.Quote, 0, len(symbols))

	for _, symbol := range symbols {
		quote, err := c.GetQuote(ctx, symbol)
		if err != nil {
			return nil, err
		}
		out = append(out, *quote)
	}

	return out, nil
}
