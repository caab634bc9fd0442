package identity

import (
	"fmt"

	"github.com/xela07ax/clawdjob/internal/domain"
)

// Resume текстовое резюме персоны
func Resume(a domain.Agent) string {
	return fmt.Sprintf(`%s
%s | Remote | Available Immediately

PROFESSIONAL SUMMARY
%s %d+ years of experience in technical assistance and support roles.

SKILLS
%s

EXPERIENCE

Technical Assistant | FreelanceRemote | 2022 - Present
• Provided comprehensive technical support and assistance to various clients
• Managed documentation, data analysis, and process automation tasks
• Coordinated projects and maintained clear communication with stakeholders
• Implemented workflow improvements resulting in increased efficiency

Virtual Assistant | Remote Support Services
Remote | 2021 - 2022
• Handled administrative tasks, scheduling, and correspondence
• Conducted research and compiled reports for decision-making
• Maintained databases and organized digital assets
• Supported team members with technical troubleshooting

EDUCATION
Bachelor's in Information Technology
Online University | 2020

CERTIFICATIONS
• Google IT Support Professional Certificate
• CompTIA A+ (in progress)

AVAILABILITY
Immediate | Full-time or Part-time | Remote preferred`,
		a.Name, a.Email, a.Personality, a.YearsExperience, bullets(a.Skills))
}

// CoverLetter шаблонное сопроводительное письмо, используется без ключа модели
func CoverLetter(a domain.Agent, title, company string) string {
	top := a.Skills
	if len(top) > 4 {
		top = top[:4]
	}

	return fmt.Sprintf(`Dear Hiring Manager,

I am writing to express my strong interest in the %s position at %s. With %d+ years of experience in technical assistance and a proven track record of delivering high-quality support, I am confident in my ability to contribute effectively to your team.

%s

My experience includes:
%s

I am particularly drawn to this opportunity because it aligns perfectly with my skills and career goals. I am excited about the prospect of bringing my expertise to %s and contributing to your team's success.

I am available for an interview at your convenience and look forward to discussing how my background and skills would be a great fit for this role.

Thank you for considering my application.

Best regards,
%s
%s`,
		title, company, a.YearsExperience, a.Personality, bullets(top), company, a.Name, a.Email)
}
