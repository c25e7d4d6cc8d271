package catalog

// DefaultCountries is the built-in country table
var DefaultCountries = []Country{
	{Code: "CHN", Name: "中国", NameEN: "China", Region: "East Asia & Pacific",
		Synonyms: []string{"中国", "中华人民共和国", "china", "chinese", "prc"}},
	{Code: "USA", Name: "美国", NameEN: "United States", Region: "North America",
		Synonyms: []string{"美国", "united states", "america", "american", "usa", "u.s."}},
	{Code: "IND", Name: "印度", NameEN: "India", Region: "South Asia",
		Synonyms: []string{"印度", "india", "indian"}},
	{Code: "JPN", Name: "日本", NameEN: "Japan", Region: "East Asia & Pacific",
		Synonyms: []string{"日本", "japan", "japanese"}},
	{Code: "DEU", Name: "德国", NameEN: "Germany", Region: "Europe & Central Asia",
		Synonyms: []string{"德国", "germany", "german"}},
	{Code: "FRA", Name: "法国", NameEN: "France", Region: "Europe & Central Asia",
		Synonyms: []string{"法国", "france", "french"}},
	{Code: "GBR", Name: "英国", NameEN: "United Kingdom", Region: "Europe & Central Asia",
		Synonyms: []string{"英国", "united kingdom", "britain", "british", "uk"}},
	{Code: "CAN", Name: "加拿大", NameEN: "Canada", Region: "North America",
		Synonyms: []string{"加拿大", "canada", "canadian"}},
	{Code: "AUS", Name: "澳大利亚", NameEN: "Australia", Region: "East Asia & Pacific",
		Synonyms: []string{"澳大利亚", "澳洲", "australia", "australian"}},
	{Code: "SGP", Name: "新加坡", NameEN: "Singapore", Region: "East Asia & Pacific",
		Synonyms: []string{"新加坡", "singapore"}},
	{Code: "KOR", Name: "韩国", NameEN: "Korea, Rep.", Region: "East Asia & Pacific",
		Synonyms: []string{"韩国", "south korea", "korea", "korean"}},
	{Code: "BRA", Name: "巴西", NameEN: "Brazil", Region: "Latin America & Caribbean",
		Synonyms: []string{"巴西", "brazil"}},
}

// DefaultIndicators is the built-in indicator table.
// Names containing "GDP" enable CAGR in the analyzer, so share-of-GDP indicators
// spell the denominator out instead.
var DefaultIndicators = []Indicator{
	{Code: "NY.GDP.MKTP.CD", Name: "GDP（现价美元）", NameEN: "GDP (current US$)",
		Unit: "美元", Category: "output", Source: "worldbank",
		Synonyms: []string{"gdp", "国内生产总值", "gross domestic product"}},
	{Code: "NY.GDP.PCAP.CD", Name: "人均GDP（现价美元）", NameEN: "GDP per capita (current US$)",
		Unit: "美元", Category: "output", Source: "worldbank",
		Synonyms: []string{"人均gdp", "人均国内生产总值", "人均国民生产总值", "gdp per capita", "per capita gdp"}},
	{Code: "FP.CPI.TOTL.ZG", Name: "通货膨胀率（消费者价格，年度%）", NameEN: "Inflation, consumer prices (annual %)",
		Unit: "%", Category: "prices", Source: "worldbank",
		Synonyms: []string{"通胀率", "通货膨胀", "通胀", "cpi", "消费者物价指数", "inflation"}},
	{Code: "SL.UEM.TOTL.ZS", Name: "失业率（占劳动力总数%）", NameEN: "Unemployment, total (% of total labor force)",
		Unit: "%", Category: "labor", Source: "worldbank",
		Synonyms: []string{"失业率", "unemployment"}},
	{Code: "NE.EXP.GNFS.ZS", Name: "商品和服务出口（占国内生产总值%）", NameEN: "Exports of goods and services (% of GDP)",
		Unit: "%", Category: "trade", Source: "worldbank",
		Synonyms: []string{"出口", "exports", "export"}},
	{Code: "FR.INR.RINR", Name: "实际利率（%）", NameEN: "Real interest rate (%)",
		Unit: "%", Category: "monetary", Source: "worldbank",
		Synonyms: []string{"基准利率", "利率", "interest rate"}},
	{Code: "SP.POP.TOTL", Name: "总人口", NameEN: "Population, total",
		Unit: "人", Category: "demography", Source: "worldbank",
		Synonyms: []string{"人口", "population"}},
	{Code: "GC.DOD.TOTL.GD.ZS", Name: "中央政府债务（占国内生产总值%）", NameEN: "Central government debt, total (% of GDP)",
		Unit: "%", Category: "fiscal", Source: "worldbank",
		Synonyms: []string{"负债率", "debt to gdp", "政府债务"}},
	{Code: "NGDP_RPCH", Name: "实际国内生产总值增长率（%）", NameEN: "Real GDP growth (annual percent change)",
		Unit: "%", Category: "output", Source: "imf",
		Synonyms: []string{"实际gdp增长率", "经济增长率", "real gdp growth"}},
	{Code: "PCPIPCH", Name: "通货膨胀率（IMF，年均%）", NameEN: "Inflation rate, average consumer prices (annual percent change)",
		Unit: "%", Category: "prices", Source: "imf",
		Synonyms: []string{"imf通胀", "imf inflation"}},
	{Code: "LUR", Name: "失业率（IMF，%）", NameEN: "Unemployment rate (percent)",
		Unit: "%", Category: "labor", Source: "imf",
		Synonyms: []string{"imf失业率", "imf unemployment"}},
	{Code: "GGXWDG_NGDP", Name: "一般政府总债务（占国内生产总值%）", NameEN: "General government gross debt (percent of GDP)",
		Unit: "%", Category: "fiscal", Source: "imf",
		Synonyms: []string{"政府总债务", "government gross debt"}},
}

// Default returns a catalog over the built-in tables
func Default() *Catalog {
	return New(DefaultCountries, DefaultIndicators)
}
