package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"NewsBriefing/internal/domain"
	"NewsBriefing/internal/ports"
)

const dailyFields = "weathercode,temperature_2m_max,temperature_2m_min,precipitation_probability_max"

var conditions = map[int]string{
	0:  "clear sky",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	45: "fog",
	48: "depositing rime fog",
	51: "light drizzle",
	53: "drizzle",
	55: "dense drizzle",
	61: "light rain",
	63: "rain",
	65: "heavy rain",
	71: "light snow",
	73: "snow",
	75: "heavy snow",
	80: "rain showers",
	95: "thunderstorm",
}

// Condition maps a WMO weather code to a short label.
func Condition(code int) string {
	if label, ok := conditions[code]; ok {
		return label
	}
	return "unknown"
}

// Options configures the Open-Meteo provider.
type Options struct {
	Endpoint  string
	City      string
	Latitude  float64
	Longitude float64
	Location  *time.Location
}

// OpenMeteo implements ports.WeatherProvider over the Open-Meteo daily forecast.
type OpenMeteo struct {
	fetcher ports.Fetcher
	opts    Options
	logger  *slog.Logger
}

var _ ports.WeatherProvider = (*OpenMeteo)(nil)

// NewOpenMeteo builds the provider on top of the shared fetch adapter.
func NewOpenMeteo(fetcher ports.Fetcher, opts Options, log *slog.Logger) *OpenMeteo {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &OpenMeteo{fetcher: fetcher, opts: opts, logger: log}
}

// Forecast returns the entry for day. When the provider has no entry for that
// date the first one is used and DateLabel reports the date actually returned.
func (o *OpenMeteo) Forecast(ctx context.Context, day time.Time) (domain.WeatherInfo, error) {
	payload, err := o.fetcher.JSON(ctx, o.forecastURL())
	if err != nil {
		return domain.WeatherInfo{}, fmt.Errorf("fetch forecast: %w", err)
	}

	root, _ := payload.(map[string]any)
	daily, _ := root["daily"].(map[string]any)
	dates, _ := daily["time"].([]any)
	if len(dates) == 0 {
		return domain.WeatherInfo{}, fmt.Errorf("forecast has no daily entries")
	}

	want := day.In(o.opts.Location).Format("2006-01-02")
	idx := 0
	for i, d := range dates {
		if s, _ := d.(string); s == want {
			idx = i
			break
		}
	}
	label, _ := dates[idx].(string)
	if label != want && o.logger != nil {
		o.logger.Warn("forecast date missing, using first entry", "want", want, "got", label)
	}

	info := domain.WeatherInfo{
		City:                        o.opts.City,
		DateLabel:                   label,
		TemperatureMin:              numberAt(daily, "temperature_2m_min", idx),
		TemperatureMax:              numberAt(daily, "temperature_2m_max", idx),
		PrecipitationProbabilityMax: numberAt(daily, "precipitation_probability_max", idx),
		Condition:                   "unknown",
	}
	if code := numberAt(daily, "weathercode", idx); code != nil {
		info.Condition = Condition(int(*code))
	}
	return info, nil
}

func (o *OpenMeteo) forecastURL() string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(o.opts.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(o.opts.Longitude, 'f', -1, 64))
	q.Set("daily", dailyFields)
	q.Set("timezone", o.opts.Location.String())

	sep := "?"
	if strings.Contains(o.opts.Endpoint, "?") {
		sep = "&"
	}
	return o.opts.Endpoint + sep + q.Encode()
}

func numberAt(daily map[string]any, key string, idx int) *float64 {
	values, _ := daily[key].([]any)
	if idx >= len(values) {
		return nil
	}
	var f float64
	switch v := values[idx].(type) {
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case float64:
		f = v
	default:
		return nil
	}
	return &f
}
