package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ppiankov/macrolens/internal/catalog"
	"github.com/ppiankov/macrolens/internal/model"
)

const wbPage1 = `[
  {"page":1,"pages":2,"per_page":"1000","total":4,"sourceid":"2"},
  [
    {"indicator":{"id":"NY.GDP.MKTP.CD","value":"GDP (current US$)"},"country":{"id":"CN","value":"China"},"countryiso3code":"CHN","date":"2020","value":14687744162801.0,"unit":"","obs_status":"","decimal":0},
    {"indicator":{"id":"NY.GDP.MKTP.CD","value":"GDP (current US$)"},"country":{"id":"CN","value":"China"},"countryiso3code":"CHN","date":"2019","value":null,"unit":"","obs_status":"","decimal":0}
  ]
]`

const wbPage2 = `[
  {"page":2,"pages":2,"per_page":"1000","total":4,"sourceid":"2"},
  [
    {"indicator":{"id":"NY.GDP.MKTP.CD","value":"GDP (current US$)"},"country":{"id":"CN","value":"China"},"countryiso3code":"CHN","date":"2018","value":13894907857880.6,"unit":"","obs_status":"","decimal":0},
    {"indicator":{"id":"NY.GDP.MKTP.CD","value":"GDP (current US$)"},"country":{"id":"CN","value":"China"},"countryiso3code":"CHN","date":"2017Q1","value":1.0,"unit":"","obs_status":"","decimal":0}
  ]
]`

func TestWorldBank_Fetch(t *testing.T) {
	var gotPath, gotDate string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotDate = r.URL.Query().Get("date")
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("expected format=json, got %s", r.URL.RawQuery)
		}
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = fmt.Fprint(w, wbPage1)
		case "2":
			_, _ = fmt.Fprint(w, wbPage2)
		default:
			t.Errorf("unexpected page %s", r.URL.Query().Get("page"))
		}
	}))
	defer server.Close()

	client := NewClient(5*time.Second, "test-agent", 1<<20, false, "", "", "")
	wb := NewWorldBank(client, server.URL+"/", catalog.Default())

	start, end := model.YearStart(2010), model.YearEnd(2020)
	series, err := wb.Fetch(context.Background(), "CHN", "NY.GDP.MKTP.CD", &start, &end)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if gotPath != "/country/CHN/indicator/NY.GDP.MKTP.CD" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if gotDate != "2010:2020" {
		t.Errorf("expected date 2010:2020, got %s", gotDate)
	}

	if series == nil {
		t.Fatal("expected series, got nil")
	}
	if series.CountryName != "中国" || series.IndicatorName != "GDP（现价美元）" || series.Unit != "美元" {
		t.Errorf("unexpected labels: %s / %s / %s", series.CountryName, series.IndicatorName, series.Unit)
	}
	if series.Source != "World Bank" {
		t.Errorf("expected source World Bank, got %s", series.Source)
	}

	want := []model.Point{
		{Date: model.YearStart(2020), Value: 14687744162801.0},
		{Date: model.YearStart(2018), Value: 13894907857880.6},
	}
	if diff := cmp.Diff(want, series.Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
}

func TestWorldBank_FetchMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `[{"page":0,"pages":0,"per_page":"1000","total":0},null]`)
	}))
	defer server.Close()

	client := NewClient(5*time.Second, "test-agent", 1<<20, false, "", "", "")
	wb := NewWorldBank(client, server.URL, catalog.Default())

	series, err := wb.Fetch(context.Background(), "CHN", "NY.GDP.MKTP.CD", nil, nil)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if series != nil {
		t.Errorf("expected miss, got %+v", series)
	}
}

func TestDecodeWorldBank(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantObs int
		wantErr bool
	}{
		{name: "data", body: wbPage1, wantObs: 2},
		{name: "no data element", body: `[{"page":1,"pages":1,"per_page":50,"total":0}]`},
		{name: "null data", body: `[{"page":1,"pages":1,"per_page":"50","total":0},null]`},
		{name: "api error", body: `[{"message":[{"id":"120","key":"Invalid value","value":"The provided parameter value is not valid"}]}]`, wantErr: true},
		{name: "empty array", body: `[]`, wantErr: true},
		{name: "not json", body: `<html>`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, obs, err := decodeWorldBank([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(obs) != tt.wantObs {
				t.Errorf("expected %d observations, got %d", tt.wantObs, len(obs))
			}
		})
	}
}
