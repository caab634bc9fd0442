package jobs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/xela07ax/clawdjob/internal/domain"
)

// RawJob вакансия в том виде, в каком ее отдала площадка, до нормализации
type RawJob struct {
	Title       string
	Company     string
	Location    string
	Description string
	URL         string
	Salary      string
	Platform    domain.JobPlatform
}

// Source одна публичная площадка вакансий
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]RawJob, error)
}

const (
	DefaultUserAgent = "ClawdJob/1.0"
	unknownCompany   = "Unknown Company"
	defaultLocation  = "Remote"
)

// HTTPOptions общие настройки HTTP для всех площадок
type HTTPOptions struct {
	Client    *http.Client
	UserAgent string
	BaseURL   string // Пусто — боевой адрес площадки
	Limit     int
}

func (o HTTPOptions) withDefaults(baseURL string, limit int) HTTPOptions {
	if o.Client == nil {
		o.Client = &http.Client{Timeout: 15 * time.Second}
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.BaseURL == "" {
		o.BaseURL = baseURL
	}
	if o.Limit <= 0 {
		o.Limit = limit
	}
	return o
}

func (o HTTPOptions) getJSON(ctx context.Context, rawURL string) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", o.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read body: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("invalid json payload")
	}
	return gjson.ParseBytes(body), nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// --- RemoteOK: бесплатный API без авторизации ---

type RemoteOK struct {
	opts HTTPOptions
}

func NewRemoteOK(opts HTTPOptions) *RemoteOK {
	return &RemoteOK{opts: opts.withDefaults("https://remoteok.com/api", 10)}
}

func (s *RemoteOK) Name() string { return "remoteok" }

// roleKeywords фильтр по должности: нас интересуют ассистентские и саппорт-роли
var roleKeywords = []string{"assistant", "support", "coordinator", "admin"}

func (s *RemoteOK) Fetch(ctx context.Context) ([]RawJob, error) {
	doc, err := s.opts.getJSON(ctx, s.opts.BaseURL)
	if err != nil {
		return nil, err
	}

	out := make([]RawJob, 0, s.opts.Limit)
	// Первый элемент массива — юридическая плашка без position, фильтр его отсекает
	for _, item := range doc.Array() {
		if len(out) >= s.opts.Limit {
			break
		}
		position := item.Get("position").String()
		if position == "" || !matchesRole(position) {
			continue
		}

		jobURL := item.Get("url").String()
		if jobURL == "" {
			jobURL = "https://remoteok.com/remote-jobs/" + item.Get("slug").String()
		}

		out = append(out, RawJob{
			Title:       position,
			Company:     orDefault(item.Get("company").String(), unknownCompany),
			Location:    orDefault(item.Get("location").String(), defaultLocation),
			Description: item.Get("description").String(),
			URL:         jobURL,
			Salary:      remoteOKSalary(item),
			Platform:    domain.PlatformRemoteOK,
		})
	}
	return out, nil
}

func matchesRole(title string) bool {
	t := strings.ToLower(title)
	for _, kw := range roleKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

func remoteOKSalary(item gjson.Result) string {
	if s := item.Get("salary"); s.Type == gjson.String && s.String() != "" {
		return s.String()
	}
	lo, hi := item.Get("salary_min").Int(), item.Get("salary_max").Int()
	if lo > 0 && hi > 0 {
		return fmt.Sprintf("$%dk - $%dk/year", lo/1000, hi/1000)
	}
	return ""
}

// --- Arbeitnow ---

type Arbeitnow struct {
	opts HTTPOptions
}

func NewArbeitnow(opts HTTPOptions) *Arbeitnow {
	return &Arbeitnow{opts: opts.withDefaults("https://www.arbeitnow.com/api/job-board-api", 10)}
}

func (s *Arbeitnow) Name() string { return "arbeitnow" }

func (s *Arbeitnow) Fetch(ctx context.Context) ([]RawJob, error) {
	q := url.Values{}
	q.Set("search", "assistant")
	q.Set("remote", "true")

	doc, err := s.opts.getJSON(ctx, s.opts.BaseURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	out := make([]RawJob, 0, s.opts.Limit)
	for _, item := range doc.Get("data").Array() {
		if len(out) >= s.opts.Limit {
			break
		}
		out = append(out, RawJob{
			Title:       item.Get("title").String(),
			Company:     orDefault(item.Get("company_name").String(), unknownCompany),
			Location:    orDefault(item.Get("location").String(), defaultLocation),
			Description: item.Get("description").String(),
			URL:         item.Get("url").String(),
			Platform:    domain.PlatformOther,
		})
	}
	return out, nil
}

// --- AuthenticJobs: company бывает и объектом, и строкой ---

type AuthenticJobs struct {
	opts HTTPOptions
}

func NewAuthenticJobs(opts HTTPOptions) *AuthenticJobs {
	return &AuthenticJobs{opts: opts.withDefaults("https://authenticjobs.com/api/", 5)}
}

func (s *AuthenticJobs) Name() string { return "authenticjobs" }

func (s *AuthenticJobs) Fetch(ctx context.Context) ([]RawJob, error) {
	q := url.Values{}
	q.Set("api_key", "free")
	q.Set("format", "json")
	q.Set("type", "6")

	doc, err := s.opts.getJSON(ctx, s.opts.BaseURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	out := make([]RawJob, 0, s.opts.Limit)
	for _, item := range doc.Get("listings.listing").Array() {
		if len(out) >= s.opts.Limit {
			break
		}

		company := item.Get("company")
		name, location := company.String(), item.Get("location").String()
		if company.IsObject() {
			name = company.Get("name").String()
			if loc := company.Get("location"); loc.IsObject() {
				location = orDefault(loc.Get("name").String(), location)
			} else if loc.String() != "" {
				location = loc.String()
			}
		}

		out = append(out, RawJob{
			Title:       item.Get("title").String(),
			Company:     orDefault(name, unknownCompany),
			Location:    orDefault(location, defaultLocation),
			Description: item.Get("description").String(),
			URL:         item.Get("url").String(),
			Platform:    domain.PlatformOther,
		})
	}
	return out, nil
}

// NewSources собирает площадки по именам из конфигурации. limits переопределяет лимит по имени.
func NewSources(names []string, opts HTTPOptions, limits map[string]int) ([]Source, error) {
	sources := make([]Source, 0, len(names))
	for _, name := range names {
		o := opts
		if n, ok := limits[name]; ok {
			o.Limit = n
		}
		switch name {
		case "remoteok":
			sources = append(sources, NewRemoteOK(o))
		case "arbeitnow":
			sources = append(sources, NewArbeitnow(o))
		case "authenticjobs":
			sources = append(sources, NewAuthenticJobs(o))
		default:
			return nil, fmt.Errorf("jobs: unknown source %q", name)
		}
	}
	return sources, nil
}
