package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/macrolens/internal/catalog"
	"github.com/ppiankov/macrolens/internal/model"
)

const imfSourceName = "IMF"

// IMF reads annual series from the IMF DataMapper API
type IMF struct {
	client  *Client
	baseURL string
	catalog *catalog.Catalog
	now     func() time.Time
}

// NewIMF creates an IMF gateway. baseURL is the API root, e.g. https://www.imf.org/external/datamapper/api/v1
func NewIMF(client *Client, baseURL string, cat *catalog.Catalog) *IMF {
	return &IMF{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		catalog: cat,
		now:     time.Now,
	}
}

// imfResponse is {"values": {INDICATOR: {COUNTRY: {"2020": 1.5, ...}}}}
type imfResponse struct {
	Values map[string]map[string]map[string]*float64 `json:"values"`
}

// Fetch implements Gateway
func (m *IMF) Fetch(ctx context.Context, country model.CountryCode, indicator model.IndicatorCode, start, end *time.Time) (*model.Series, error) {
	byCountry, err := m.FetchIndicator(ctx, indicator, []model.CountryCode{country}, start, end)
	if err != nil {
		return nil, err
	}
	return newSeries(m.catalog, country, indicator, imfSourceName, byCountry[country]), nil
}

// FetchIndicator reads one indicator for several countries in a single request.
// Points are date-sorted; countries without data are absent from the map.
func (m *IMF) FetchIndicator(ctx context.Context, indicator model.IndicatorCode, countries []model.CountryCode, start, end *time.Time) (map[model.CountryCode][]model.Point, error) {
	from, to := yearRange(start, end, m.now())

	body, err := m.client.GetWithRetry(ctx, m.url(indicator, countries, from, to))
	if err != nil {
		return nil, fmt.Errorf("imf %s: %w", indicator, err)
	}

	return decodeIMF(body, indicator, start, end)
}

func (m *IMF) url(indicator model.IndicatorCode, countries []model.CountryCode, from, to int) string {
	segments := []string{m.baseURL, url.PathEscape(string(indicator))}
	for _, c := range countries {
		segments = append(segments, url.PathEscape(string(c)))
	}

	years := make([]string, 0, to-from+1)
	for y := from; y <= to; y++ {
		years = append(years, strconv.Itoa(y))
	}

	q := url.Values{}
	q.Set("periods", strings.Join(years, ","))
	return strings.Join(segments, "/") + "?" + q.Encode()
}

func decodeIMF(body []byte, indicator model.IndicatorCode, start, end *time.Time) (map[model.CountryCode][]model.Point, error) {
	var resp imfResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	out := make(map[model.CountryCode][]model.Point)
	for country, years := range resp.Values[string(indicator)] {
		var points []model.Point
		for year, value := range years {
			if value == nil {
				continue
			}
			y, err := strconv.Atoi(year)
			if err != nil {
				continue
			}
			p := model.Point{Date: model.YearStart(y), Value: *value}
			if inWindow(p.Date, start, end) {
				points = append(points, p)
			}
		}
		if len(points) == 0 {
			continue
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
		out[model.CountryCode(country)] = points
	}
	return out, nil
}
