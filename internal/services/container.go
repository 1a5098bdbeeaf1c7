package services

import (
	"collect-api/internal/config"
	"collect-api/internal/repositories"
)

// Container bundles the services handed to the request handlers.
type Container struct {
	Templates *TemplateService
	Links     *LinkService
	Sessions  *SessionService
	Intake    *IntakeService
}

func NewContainer(repos repositories.Container, intakeConfig config.IntakeConfig) *Container {
	intake := NewIntakeService(intakeConfig)
	links := NewLinkService(repos.Links)
	return &Container{
		Templates: NewTemplateService(repos.Templates),
		Links:     links,
		Sessions:  NewSessionService(repos.Sessions, links, repos.Templates, repos.AccessLogs, intake),
		Intake:    intake,
	}
}
