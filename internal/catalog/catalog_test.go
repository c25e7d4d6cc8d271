package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ppiankov/macrolens/internal/model"
)

func TestMatchCountries(t *testing.T) {
	c := Default()

	tests := []struct {
		name string
		text string
		want []model.CountryCode
	}{
		{"chinese names", "比较中国和美国的GDP", []model.CountryCode{"CHN", "USA"}},
		{"catalog order not text order", "美国与中国", []model.CountryCode{"CHN", "USA"}},
		{"english", "compare japan and germany", []model.CountryCode{"JPN", "DEU"}},
		{"long form claims span", "中华人民共和国", []model.CountryCode{"CHN"}},
		{"us needs word boundary", "australia business", []model.CountryCode{"AUS"}},
		{"usa standalone", "usa gdp since 2015", []model.CountryCode{"USA"}},
		{"pronoun us is not a country", "show us the gdp of japan", []model.CountryCode{"JPN"}},
		{"abbreviation with dots", "u.s. exports", []model.CountryCode{"USA"}},
		{"digits are boundaries", "usa2010", []model.CountryCode{"USA"}},
		{"duplicates collapse", "china china 中国", []model.CountryCode{"CHN"}},
		{"nothing", "asdkj", []model.CountryCode{}},
		{"case folded", "UNITED KINGDOM and France", []model.CountryCode{"FRA", "GBR"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.MatchCountries(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("MatchCountries(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestMatchIndicators(t *testing.T) {
	c := Default()

	tests := []struct {
		name string
		text string
		want []model.IndicatorCode
	}{
		{"gdp", "中国的gdp", []model.IndicatorCode{"NY.GDP.MKTP.CD"}},
		{"per capita masks gdp", "中国的人均gdp", []model.IndicatorCode{"NY.GDP.PCAP.CD"}},
		{"both", "gdp和人均gdp", []model.IndicatorCode{"NY.GDP.MKTP.CD", "NY.GDP.PCAP.CD"}},
		{"inflation and unemployment", "通胀率和失业率", []model.IndicatorCode{"FP.CPI.TOTL.ZG", "SL.UEM.TOTL.ZS"}},
		{"bare inflation", "中国人口和通胀对比趋势", []model.IndicatorCode{"FP.CPI.TOTL.ZG", "SP.POP.TOTL"}},
		{"imf inflation keeps its own code", "imf通胀", []model.IndicatorCode{"PCPIPCH"}},
		{"debt to gdp does not add gdp", "debt to gdp of japan", []model.IndicatorCode{"GC.DOD.TOTL.GD.ZS"}},
		{"interest rate", "基准利率", []model.IndicatorCode{"FR.INR.RINR"}},
		{"none", "hello", []model.IndicatorCode{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.MatchIndicators(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("MatchIndicators(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestLookups(t *testing.T) {
	c := Default()

	if got := c.CountryName("CHN"); got != "中国" {
		t.Errorf("Expected 中国, got %s", got)
	}
	if got := c.CountryName("XXX"); got != "XXX" {
		t.Errorf("Expected unknown code to echo back, got %s", got)
	}
	if got := c.IndicatorName("NY.GDP.MKTP.CD"); got != "GDP（现价美元）" {
		t.Errorf("Unexpected indicator name: %s", got)
	}

	ind, ok := c.Indicator("SL.UEM.TOTL.ZS")
	if !ok {
		t.Fatal("Expected unemployment indicator to exist")
	}
	if ind.Unit != "%" {
		t.Errorf("Expected unit %%, got %s", ind.Unit)
	}

	if c.CountryOrder("CHN") != 0 {
		t.Errorf("Expected CHN first, got %d", c.CountryOrder("CHN"))
	}
	if c.CountryOrder("XXX") != len(c.Countries()) {
		t.Error("Expected unknown country to sort last")
	}
}

func TestCountriesForSpan(t *testing.T) {
	c := Default()

	tests := []struct {
		span string
		want []model.CountryCode
	}{
		{"中国", []model.CountryCode{"CHN"}},
		{"United States of America", []model.CountryCode{"USA"}},
		{"Japan", []model.CountryCode{"JPN"}},
		{"x", nil},
		{"Atlantis", nil},
	}

	for _, tt := range tests {
		t.Run(tt.span, func(t *testing.T) {
			got := c.CountriesForSpan(tt.span)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("CountriesForSpan(%q) mismatch (-want +got):\n%s", tt.span, diff)
			}
		})
	}
}

func TestCatalogIsCopiedOnRead(t *testing.T) {
	c := Default()
	countries := c.Countries()
	countries[0].Name = "changed"

	if c.CountryName("CHN") != "中国" {
		t.Error("Expected catalog to be unaffected by caller mutation")
	}
}
