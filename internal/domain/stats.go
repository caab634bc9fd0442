package domain

// AgentStats не хранится, пересчитывается из откликов на каждый запрос.
// Корзины пересекаются: Pending включает и applied, и viewed.
type AgentStats struct {
	TotalApplications int     `json:"totalApplications"`
	Pending           int     `json:"pending"`
	InReview          int     `json:"inReview"`
	Interviews        int     `json:"interviews"`
	Offers            int     `json:"offers"`
	Rejections        int     `json:"rejections"`
	NoResponse        int     `json:"noResponse"`
	SuccessRate       float64 `json:"successRate"`
}

// CalculateStats считает статистику по откликам конкретного агента
func CalculateStats(apps []Application, agentID string) AgentStats {
	var s AgentStats
	for i := range apps {
		if apps[i].AgentID != agentID {
			continue
		}
		s.TotalApplications++
		switch apps[i].Status {
		case AppApplied, AppViewed:
			s.Pending++
		case AppInReview:
			s.InReview++
		case AppInterviewScheduled, AppInterviewed:
			s.Interviews++
		case AppOfferReceived:
			s.Offers++
		case AppRejected:
			s.Rejections++
		case AppNoResponse:
			s.NoResponse++
		}
	}

	if s.TotalApplications > 0 {
		s.SuccessRate = float64(s.Interviews+s.Offers) / float64(s.TotalApplications) * 100
	}
	return s
}
