package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/macrolens/internal/catalog"
	"github.com/ppiankov/macrolens/internal/logger"
	"github.com/ppiankov/macrolens/internal/model"
)

const (
	worldBankSourceName = "World Bank"
	worldBankPerPage    = 1000
	worldBankMaxPages   = 20
)

// WorldBank reads annual series from the World Bank v2 API
type WorldBank struct {
	client  *Client
	baseURL string
	catalog *catalog.Catalog
	now     func() time.Time
}

// NewWorldBank creates a World Bank gateway. baseURL is the API root, e.g. https://api.worldbank.org/v2
func NewWorldBank(client *Client, baseURL string, cat *catalog.Catalog) *WorldBank {
	return &WorldBank{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		catalog: cat,
		now:     time.Now,
	}
}

// wbPage is the first element of every v2 response
type wbPage struct {
	Page    int         `json:"page"`
	Pages   int         `json:"pages"`
	PerPage json.Number `json:"per_page"`
	Total   int         `json:"total"`
	Message []wbMessage `json:"message"`
}

type wbMessage struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

type wbObservation struct {
	Indicator struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"indicator"`
	Country struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"country"`
	CountryISO3 string   `json:"countryiso3code"`
	Date        string   `json:"date"`
	Value       *float64 `json:"value"`
	Unit        string   `json:"unit"`
}

// Fetch implements Gateway. Observations with a null value are skipped.
func (w *WorldBank) Fetch(ctx context.Context, country model.CountryCode, indicator model.IndicatorCode, start, end *time.Time) (*model.Series, error) {
	from, to := yearRange(start, end, w.now())

	var points []model.Point
	for page := 1; page <= worldBankMaxPages; page++ {
		body, err := w.client.GetWithRetry(ctx, w.url(country, indicator, from, to, page))
		if err != nil {
			return nil, fmt.Errorf("world bank %s/%s: %w", country, indicator, err)
		}

		meta, observations, err := decodeWorldBank(body)
		if err != nil {
			return nil, fmt.Errorf("world bank %s/%s: %w", country, indicator, err)
		}

		for _, obs := range observations {
			if obs.Value == nil {
				continue
			}
			year, err := strconv.Atoi(obs.Date)
			if err != nil {
				logger.Log.WithFields(logrus.Fields{"country": country, "indicator": indicator, "date": obs.Date}).
					Debug("skipping non-annual observation")
				continue
			}
			p := model.Point{Date: model.YearStart(year), Value: *obs.Value}
			if inWindow(p.Date, start, end) {
				points = append(points, p)
			}
		}

		if meta.Page >= meta.Pages {
			break
		}
	}

	return newSeries(w.catalog, country, indicator, worldBankSourceName, points), nil
}

func (w *WorldBank) url(country model.CountryCode, indicator model.IndicatorCode, from, to, page int) string {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("per_page", strconv.Itoa(worldBankPerPage))
	q.Set("page", strconv.Itoa(page))
	q.Set("date", fmt.Sprintf("%d:%d", from, to))

	return fmt.Sprintf("%s/country/%s/indicator/%s?%s",
		w.baseURL, url.PathEscape(string(country)), url.PathEscape(string(indicator)), q.Encode())
}

// decodeWorldBank splits a v2 response into its paging header and observations.
// An error message in the header or a malformed body is an error; a header with
// no data element is an empty page.
func decodeWorldBank(body []byte) (wbPage, []wbObservation, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return wbPage{}, nil, fmt.Errorf("decode response: %w", err)
	}
	if len(raw) == 0 {
		return wbPage{}, nil, errors.New("decode response: empty array")
	}

	var meta wbPage
	if err := json.Unmarshal(raw[0], &meta); err != nil {
		return wbPage{}, nil, fmt.Errorf("decode page header: %w", err)
	}
	if len(meta.Message) > 0 {
		m := meta.Message[0]
		return meta, nil, fmt.Errorf("api error %s: %s", m.ID, m.Value)
	}

	if len(raw) < 2 || string(raw[1]) == "null" {
		return meta, nil, nil
	}

	var observations []wbObservation
	if err := json.Unmarshal(raw[1], &observations); err != nil {
		return meta, nil, fmt.Errorf("decode observations: %w", err)
	}
	return meta, observations, nil
}
