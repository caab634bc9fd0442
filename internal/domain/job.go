package domain

import "time"

type JobPlatform string

const (
	PlatformLinkedIn       JobPlatform = "linkedin"
	PlatformIndeed         JobPlatform = "indeed"
	PlatformGlassdoor      JobPlatform = "glassdoor"
	PlatformRemoteOK       JobPlatform = "remoteok"
	PlatformWeWorkRemotely JobPlatform = "weworkremotely"
	PlatformFlexJobs       JobPlatform = "flexjobs"
	PlatformUpwork         JobPlatform = "upwork"
	PlatformWellfound      JobPlatform = "wellfound"
	PlatformDice           JobPlatform = "dice"
	PlatformMonster        JobPlatform = "monster"
	PlatformOther          JobPlatform = "other"
)

// JobListing найденная вакансия. После создания не меняется, URL — естественный ключ дедупликации.
type JobListing struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Company      string      `json:"company"`
	Location     string      `json:"location"`
	Salary       string      `json:"salary,omitempty"`
	Description  string      `json:"description"`
	Requirements []string    `json:"requirements"`
	Platform     JobPlatform `json:"platform"`
	URL          string      `json:"url"`
	PostedAt     time.Time   `json:"postedAt"`
	DiscoveredAt time.Time   `json:"discoveredAt"`
}
