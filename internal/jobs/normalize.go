package jobs

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/xela07ax/clawdjob/internal/domain"
)

const (
	DefaultDescriptionLimit = 2000
	maxRequirements         = 5
	minRequirementLen       = 20
	maxRequirementLen       = 200
)

var requirementKeywords = []string{
	"required", "must have", "experience", "skills", "proficient",
	"knowledge of", "familiar with", "ability to", "years of",
}

var sentenceSplit = regexp.MustCompile(`[.\n]`)

// ExtractRequirements достает до пяти строк-требований по ключевым словам и длине
func ExtractRequirements(description string) []string {
	out := make([]string, 0, maxRequirements)
	for _, line := range sentenceSplit.Split(description, -1) {
		n := utf8.RuneCountInString(line)
		if n <= minRequirementLen || n >= maxRequirementLen {
			continue
		}
		lower := strings.ToLower(line)
		for _, kw := range requirementKeywords {
			if strings.Contains(lower, kw) {
				out = append(out, strings.TrimSpace(line))
				break
			}
		}
		if len(out) == maxRequirements {
			break
		}
	}
	return out
}

// Truncate обрезает строку по рунам
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

// DedupKey регистронезависимый ключ (title, company)
func DedupKey(title, company string) string {
	return strings.ToLower(title) + "-" + strings.ToLower(company)
}

// ToListing приводит сырую вакансию к общей записи
func ToListing(raw RawJob, descriptionLimit int, now time.Time) domain.JobListing {
	return domain.JobListing{
		ID:           "job-" + uuid.NewString(),
		Title:        raw.Title,
		Company:      raw.Company,
		Location:     raw.Location,
		Salary:       raw.Salary,
		Description:  Truncate(raw.Description, descriptionLimit),
		Requirements: ExtractRequirements(raw.Description),
		Platform:     raw.Platform,
		URL:          raw.URL,
		PostedAt:     now,
		DiscoveredAt: now,
	}
}
