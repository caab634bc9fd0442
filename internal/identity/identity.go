// Package identity генерирует детерминированную персону агента из seed.
package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/xela07ax/clawdjob/internal/domain"
)

const DefaultEmail = "agent@clawdjob.ai"

var firstNames = []string{
	"Alex", "Jordan", "Taylor", "Morgan", "Casey", "Riley", "Quinn", "Avery",
	"Skyler", "Dakota", "Reese", "Phoenix", "Sage", "River", "Rowan", "Blake",
	"Cameron", "Drew", "Emery", "Finley", "Harper", "Hayden", "Jamie", "Jesse",
	"Kai", "Lane", "Logan", "Marley", "Parker", "Peyton", "Reagan", "Sawyer",
}

var lastNames = []string{
	"Chen", "Rodriguez", "Patel", "Kim", "Nguyen", "Martinez", "Anderson",
	"Taylor", "Thomas", "Moore", "Jackson", "Martin", "Lee", "Thompson",
	"White", "Harris", "Clark", "Lewis", "Walker", "Hall", "Young", "Allen",
	"King", "Wright", "Scott", "Green", "Baker", "Adams", "Nelson", "Hill",
}

var skillPool = []string{
	"Technical Writing",
	"Data Analysis",
	"Project Coordination",
	"Research & Documentation",
	"Process Automation",
	"API Integration",
	"Quality Assurance",
	"Customer Support",
	"System Administration",
	"Database Management",
	"Report Generation",
	"Workflow Optimization",
	"Communication",
	"Problem Solving",
	"Attention to Detail",
}

var personalities = []string{
	"Enthusiastic and detail-oriented professional with a passion for technology and automation.",
	"Analytical thinker who thrives in fast-paced environments and loves solving complex problems.",
	"Dedicated team player with excellent communication skills and a drive for continuous learning.",
	"Results-driven professional committed to delivering high-quality work and exceeding expectations.",
	"Innovative problem-solver with a strong foundation in technical support and process improvement.",
}

// lcg линейный конгруэнтный генератор с выходом в [0, 1]
type lcg struct {
	seed int64
}

func (g *lcg) next() float64 {
	g.seed = (g.seed*1103515245 + 12345) & 0x7fffffff
	return float64(g.seed) / float64(0x7fffffff)
}

// intn индекс в [0, n). Значение 1.0 у генератора возможно, поэтому режем сверху.
func (g *lcg) intn(n int) int {
	i := int(g.next() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Generate строит персону. Одинаковый seed всегда дает одинаковую персону.
func Generate(seed int64, email string) domain.Agent {
	g := &lcg{seed: seed}

	firstName := firstNames[g.intn(len(firstNames))]
	lastName := lastNames[g.intn(len(lastNames))]

	// 5-7 навыков из перемешанного пула (Fisher-Yates на том же генераторе)
	numSkills := 5 + g.intn(3)
	shuffled := append([]string(nil), skillPool...)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := g.intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	personality := personalities[g.intn(len(personalities))]
	years := 2 + g.intn(4)

	if email == "" {
		email = DefaultEmail
	}

	return domain.Agent{
		ID:              domain.DefaultAgentID,
		Name:            firstName + " " + lastName,
		FirstName:       firstName,
		LastName:        lastName,
		Email:           email,
		Avatar:          avatarURL(firstName, lastName),
		Skills:          shuffled[:numSkills],
		Personality:     personality,
		YearsExperience: years,
		Location:        "Remote",
		Status:          domain.StatusIdle,
		CreatedAt:       time.Now(),
	}
}

func avatarURL(firstName, lastName string) string {
	seed := strings.ToLower(firstName + lastName)
	return fmt.Sprintf("https://api.dicebear.com/8.x/bottts-neutral/svg?seed=%s&backgroundColor=0a0a0f&baseColor=00ff9d", seed)
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, s := range items {
		lines[i] = "• " + s
	}
	return strings.Join(lines, "\n")
}
