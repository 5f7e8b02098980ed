// Package weather Open-Meteo API로 도시의 오늘 최고/최저 기온을 조회합니다. API 키가 필요하지 않습니다.
package weather

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	apperrors "github.com/darkkaiser/morning-brief/internal/pkg/errors"
	"github.com/darkkaiser/morning-brief/internal/service/fetcher"
	"github.com/tidwall/gjson"
)

// Report 도시의 오늘 기온 정보입니다. Available이 false이면 기온 값은 의미가 없습니다.
type Report struct {
	City      string  `json:"city"`
	HighC     float64 `json:"high_c"`
	LowC      float64 `json:"low_c"`
	Available bool    `json:"available"`
}

// Unavailable 조회 실패 시 사용하는 기본값을 반환합니다.
func Unavailable(city string) Report {
	return Report{City: city}
}

// HighF 최고 기온을 화씨로 반환합니다.
func (r Report) HighF() float64 { return celsiusToFahrenheit(r.HighC) }

// LowF 최저 기온을 화씨로 반환합니다.
func (r Report) LowF() float64 { return celsiusToFahrenheit(r.LowC) }

func celsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// Client Open-Meteo 지오코딩/예보 API 클라이언트
type Client struct {
	fetcher      fetcher.Fetcher
	geocodingURL string
	forecastURL  string
}

// NewClient 새로운 Client를 생성합니다. geocodingURL, forecastURL은 스킴과 호스트까지의 기본 주소입니다.
func NewClient(f fetcher.Fetcher, geocodingURL, forecastURL string) *Client {
	return &Client{fetcher: f, geocodingURL: geocodingURL, forecastURL: forecastURL}
}

// Geocode 도시 이름을 위도/경도로 변환합니다. 검색 결과가 없으면 NotFound 에러를 반환합니다.
func (c *Client) Geocode(ctx context.Context, city string) (lat, lon float64, err error) {
	body, err := c.get(ctx, c.geocodingURL+"/v1/search", url.Values{
		"name":  {city},
		"count": {"1"},
	})
	if err != nil {
		return 0, 0, err
	}

	top := gjson.GetBytes(body, "results.0")
	if !top.Exists() {
		return 0, 0, apperrors.Newf(apperrors.NotFound, "City not found: %s", city)
	}

	latitude, longitude := top.Get("latitude"), top.Get("longitude")
	if latitude.Type != gjson.Number || longitude.Type != gjson.Number {
		return 0, 0, apperrors.Newf(apperrors.ParsingFailed, "지오코딩 응답에 좌표가 없습니다: %s", city)
	}

	return latitude.Float(), longitude.Float(), nil
}

// Forecast 도시의 오늘 최고/최저 기온(섭씨)을 조회합니다.
func (c *Client) Forecast(ctx context.Context, city string) (Report, error) {
	lat, lon, err := c.Geocode(ctx, city)
	if err != nil {
		return Report{}, err
	}

	body, err := c.get(ctx, c.forecastURL+"/v1/forecast", url.Values{
		"latitude":      {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude":     {strconv.FormatFloat(lon, 'f', -1, 64)},
		"daily":         {"temperature_2m_max,temperature_2m_min"},
		"timezone":      {"auto"},
		"forecast_days": {"1"},
	})
	if err != nil {
		return Report{}, err
	}

	high := gjson.GetBytes(body, "daily.temperature_2m_max.0")
	low := gjson.GetBytes(body, "daily.temperature_2m_min.0")
	if high.Type != gjson.Number || low.Type != gjson.Number {
		return Report{}, apperrors.New(apperrors.ParsingFailed, "예보 응답에 기온 정보가 없습니다")
	}

	return Report{City: city, HighC: high.Float(), LowC: low.Float(), Available: true}, nil
}

func (c *Client) get(ctx context.Context, rawURL string, query url.Values) ([]byte, error) {
	req, err := fetcher.NewRequest(ctx, http.MethodGet, rawURL, query, nil, nil)
	if err != nil {
		return nil, err
	}

	resp, err := fetcher.ReadAll(c.fetcher, req)
	if err != nil {
		return nil, err
	}
	if err := fetcher.CheckStatus(resp); err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(resp.Body) {
		return nil, apperrors.New(apperrors.ParsingFailed, "날씨 API 응답이 올바른 JSON 형식이 아닙니다")
	}

	return resp.Body, nil
}
