package jobs

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/xela07ax/clawdjob/internal/domain"
)

var mockCompanies = []string{
	"TechCorp Solutions", "Digital Ventures", "CloudNine Systems", "InnovateTech",
	"DataFlow Inc", "RemoteFirst Co", "Agile Dynamics", "ByteWise",
	"Quantum Labs", "NexGen Digital", "Pixel Perfect", "CodeCraft",
}

var mockTitles = []string{
	"Remote Technical Assistant",
	"Virtual Assistant - Tech Support",
	"AI Operations Assistant",
	"Digital Administrative Assistant",
	"Remote Research Assistant",
	"Technical Support Coordinator",
	"Executive Virtual Assistant",
	"Data Entry & Admin Assistant",
}

var mockRequirements = []string{
	"Excellent written and verbal communication",
	"2+ years of experience in similar role",
	"Proficiency with Google Workspace or Microsoft 365",
	"Strong organizational skills",
	"Ability to work independently",
}

// GenerateMockJobs демо-вакансии на случай, когда живые площадки ничего не вернули.
// URL стабильны (по индексу), поэтому повторный цикл на них не откликается.
func GenerateMockJobs(n int, rnd *rand.Rand) []domain.JobListing {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	now := time.Now()
	out := make([]domain.JobListing, 0, n)
	for i := 0; i < n; i++ {
		company := mockCompanies[rnd.IntN(len(mockCompanies))]
		title := mockTitles[rnd.IntN(len(mockTitles))]
		age := time.Duration(rnd.Int64N(int64(7 * 24 * time.Hour)))

		out = append(out, domain.JobListing{
			ID:       fmt.Sprintf("mock-%d-%d", now.UnixMilli(), i),
			Title:    title,
			Company:  company,
			Location: "Remote",
			Salary:   fmt.Sprintf("$%dk - $%dk/year", 40+rnd.IntN(30), 70+rnd.IntN(30)),
			Description: fmt.Sprintf("We are looking for a %s to join our growing team at %s. "+
				"This is a fully remote position with flexible hours. The ideal candidate will have excellent "+
				"communication skills, attention to detail, and experience with modern productivity tools.", title, company),
			Requirements: append([]string(nil), mockRequirements...),
			Platform:     domain.PlatformOther,
			URL:          fmt.Sprintf("https://example.com/jobs/%d", i),
			PostedAt:     now.Add(-age),
			DiscoveredAt: now,
		})
	}
	return out
}
