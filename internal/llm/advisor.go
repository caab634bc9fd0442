package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/xela07ax/clawdjob/internal/domain"
	"github.com/xela07ax/clawdjob/internal/identity"
)

// FitAnalysis результат оценки вакансии
type FitAnalysis struct {
	Score       int      `json:"score"`
	Reasons     []string `json:"reasons"`
	ShouldApply bool     `json:"shouldApply"`
}

// CallObserver принимает исход каждого обращения к модели (метрики)
type CallObserver interface {
	ObserveModelCall(operation, result string)
}

type nopCallObserver struct{}

func (nopCallObserver) ObserveModelCall(string, string) {}

const (
	heuristicMinScore = 60
	heuristicSpan     = 35 // Оценка в [60, 95)
	applyThreshold    = 70

	DefaultAnalysisMaxTokens = 500
	DefaultLetterMaxTokens   = 1000
)

var heuristicReasons = []string{"Good match for remote work", "Skills align with requirements"}

type AdvisorOptions struct {
	AnalysisMaxTokens int
	LetterMaxTokens   int
	Rand              *rand.Rand
	Observer          CallObserver
}

// Advisor оценивает вакансии и пишет письма. Без Completer работает на эвристике,
// любой сбой модели тихо откатывается на тот же эвристический путь.
type Advisor struct {
	agent     domain.Agent
	completer Completer
	opts      AdvisorOptions
	logger    *zap.Logger

	mu  sync.Mutex // rand.Rand не потокобезопасен
	rnd *rand.Rand
}

func NewAdvisor(agent domain.Agent, completer Completer, opts AdvisorOptions, logger *zap.Logger) *Advisor {
	if opts.AnalysisMaxTokens <= 0 {
		opts.AnalysisMaxTokens = DefaultAnalysisMaxTokens
	}
	if opts.LetterMaxTokens <= 0 {
		opts.LetterMaxTokens = DefaultLetterMaxTokens
	}
	if opts.Observer == nil {
		opts.Observer = nopCallObserver{}
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Advisor{
		agent:     agent,
		completer: completer,
		opts:      opts,
		logger:    logger.Named("advisor"),
		rnd:       rnd,
	}
}

// ModelEnabled есть ли настроенный ключ модели
func (a *Advisor) ModelEnabled() bool {
	return a.completer != nil
}

func (a *Advisor) AnalyzeJobFit(ctx context.Context, job domain.JobListing) FitAnalysis {
	if a.completer == nil {
		a.opts.Observer.ObserveModelCall("analyze", "heuristic")
		return a.heuristicFit()
	}

	text, err := a.completer.Complete(ctx, a.analysisPrompt(job), a.opts.AnalysisMaxTokens)
	if err != nil {
		a.logger.Warn("job analysis failed, using heuristic", zap.String("job_id", job.ID), zap.Error(err))
		a.opts.Observer.ObserveModelCall("analyze", "fallback")
		return a.heuristicFit()
	}

	fit, err := ParseFitAnalysis(text)
	if err != nil {
		a.logger.Warn("unparsable job analysis, using heuristic", zap.String("job_id", job.ID), zap.Error(err))
		a.opts.Observer.ObserveModelCall("analyze", "fallback")
		return a.heuristicFit()
	}

	a.opts.Observer.ObserveModelCall("analyze", "ok")
	return fit
}

func (a *Advisor) GenerateCoverLetter(ctx context.Context, job domain.JobListing) string {
	if a.completer == nil {
		a.opts.Observer.ObserveModelCall("cover_letter", "heuristic")
		return identity.CoverLetter(a.agent, job.Title, job.Company)
	}

	text, err := a.completer.Complete(ctx, a.letterPrompt(job), a.opts.LetterMaxTokens)
	if err != nil || strings.TrimSpace(text) == "" {
		a.logger.Warn("cover letter generation failed, using template", zap.String("job_id", job.ID), zap.Error(err))
		a.opts.Observer.ObserveModelCall("cover_letter", "fallback")
		return identity.CoverLetter(a.agent, job.Title, job.Company)
	}

	a.opts.Observer.ObserveModelCall("cover_letter", "ok")
	return strings.TrimSpace(text)
}

func (a *Advisor) heuristicFit() FitAnalysis {
	a.mu.Lock()
	score := heuristicMinScore + a.rnd.IntN(heuristicSpan)
	a.mu.Unlock()

	return FitAnalysis{
		Score:       score,
		Reasons:     append([]string(nil), heuristicReasons...),
		ShouldApply: score > applyThreshold,
	}
}

// ParseFitAnalysis разбирает JSON из ответа модели. Модель любит обрамлять JSON текстом
// или markdown, поэтому берем фрагмент от первой '{' до последней '}'.
func ParseFitAnalysis(text string) (FitAnalysis, error) {
	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return FitAnalysis{}, errors.New("no json object in model output")
	}

	var raw struct {
		Score       *float64 `json:"score"`
		Reasons     []string `json:"reasons"`
		ShouldApply *bool    `json:"shouldApply"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return FitAnalysis{}, fmt.Errorf("decode fit analysis: %w", err)
	}
	if raw.Score == nil {
		return FitAnalysis{}, errors.New("fit analysis has no score")
	}

	score := int(*raw.Score)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	fit := FitAnalysis{Score: score, Reasons: raw.Reasons, ShouldApply: score > applyThreshold}
	if raw.ShouldApply != nil {
		fit.ShouldApply = *raw.ShouldApply
	}
	if fit.Reasons == nil {
		fit.Reasons = []string{}
	}
	return fit, nil
}

func (a *Advisor) analysisPrompt(job domain.JobListing) string {
	return fmt.Sprintf(`Analyze this job posting for fit with a candidate who has these skills: %s.

Job Title: %s
Company: %s
Description: %s

Respond in JSON format:
{
  "score": <0-100>,
  "reasons": ["reason1", "reason2"],
  "shouldApply": true/false
}

Only respond with valid JSON, no other text.`,
		strings.Join(a.agent.Skills, ", "), job.Title, job.Company, job.Description)
}

func (a *Advisor) letterPrompt(job domain.JobListing) string {
	return fmt.Sprintf(`Write a professional cover letter for the following job application.

Applicant: %s
Email: %s
Skills: %s
Experience: %d years

Job Title: %s
Company: %s
Job Description: %s

Write a compelling, personalized cover letter. Be professional but show personality. Keep it concise (under 300 words).`,
		a.agent.Name, a.agent.Email, strings.Join(a.agent.Skills, ", "), a.agent.YearsExperience,
		job.Title, job.Company, job.Description)
}
