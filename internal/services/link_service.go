package services

import (
	"context"
	"errors"
	"log"
	"time"

	"collect-api/internal/auth"
	"collect-api/internal/models"
	"collect-api/internal/repositories"
	"collect-api/internal/requests"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultLinkTTL is the expiry applied when a link is created without an
// explicit expiration date.
const DefaultLinkTTL = 30 * 24 * time.Hour

// LinkValidation is the public result of validating an upload link.
type LinkValidation struct {
	IsValid bool               `json:"isValid"`
	Link    *models.UploadLink `json:"link,omitempty"`
	Reason  string             `json:"reason,omitempty"`
}

// LinkService manages the upload link lifecycle.
type LinkService struct {
	links repositories.LinkRepository
	now   func() time.Time
}

func NewLinkService(links repositories.LinkRepository) *LinkService {
	return &LinkService{links: links, now: time.Now}
}

// List returns links visible to the caller, newest first.
func (s *LinkService) List(ctx context.Context, caller auth.Identity) ([]models.UploadLink, error) {
	var (
		links []models.UploadLink
		err   error
	)
	if caller.IsElevated() {
		links, err = s.links.List(ctx)
	} else {
		links, err = s.links.ListByCreator(ctx, caller.ID)
	}
	if err != nil {
		log.Printf("Failed to list upload links: %v", err)
		return nil, storageError("Failed to fetch upload links", err)
	}
	return links, nil
}

// Get returns a single link, enforcing the ownership rule.
func (s *LinkService) Get(ctx context.Context, caller auth.Identity, id uuid.UUID) (models.UploadLink, error) {
	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.UploadLink{}, notFoundError("Upload link not found")
		}
		log.Printf("Failed to fetch upload link %s: %v", id, err)
		return models.UploadLink{}, storageError("Failed to fetch upload link", err)
	}
	if !canAccess(caller, link.CreatedBy) {
		return models.UploadLink{}, accessDeniedError("Access denied to this upload link")
	}
	return link, nil
}

// Create issues a new active link for a job number. One link per job
// number: the check here is best-effort, the unique index on job_number
// is the safety net for concurrent creations.
func (s *LinkService) Create(ctx context.Context, caller auth.Identity, in requests.CreateUploadLinkRequest) (models.UploadLink, error) {
	if in.JobNumber == "" || in.FormTemplateID == uuid.Nil {
		return models.UploadLink{}, validationError("Job number and form template ID are required")
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(s.now()) {
		return models.UploadLink{}, validationError("Expiration date must be in the future")
	}

	if _, err := s.links.GetByJobNumber(ctx, in.JobNumber); err == nil {
		return models.UploadLink{}, conflictError("A link for this job number already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to check job number %q: %v", in.JobNumber, err)
		return models.UploadLink{}, storageError("Failed to create upload link", err)
	}

	expiresAt := s.now().Add(DefaultLinkTTL)
	if in.ExpiresAt != nil {
		expiresAt = *in.ExpiresAt
	}

	link := models.UploadLink{
		JobNumber:      in.JobNumber,
		FormTemplateID: in.FormTemplateID,
		CreatedBy:      caller.ID,
		Status:         models.LinkStatusActive,
		ExpiresAt:      expiresAt,
		ClientEmail:    in.ClientEmail,
	}
	if err := s.links.Create(ctx, &link); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.UploadLink{}, conflictError("A link for this job number already exists")
		}
		log.Printf("Failed to create upload link: %v", err)
		return models.UploadLink{}, storageError("Failed to create upload link", err)
	}
	return link, nil
}

// Update patches status, expiry and client email.
func (s *LinkService) Update(ctx context.Context, caller auth.Identity, id uuid.UUID, in requests.UpdateUploadLinkRequest) (models.UploadLink, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return models.UploadLink{}, err
	}
	if in.Status != nil && !models.IsValidLinkStatus(*in.Status) {
		return models.UploadLink{}, validationError("Unknown link status")
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(s.now()) {
		return models.UploadLink{}, validationError("Expiration date must be in the future")
	}

	patch := repositories.LinkPatch{
		Status:      in.Status,
		ExpiresAt:   in.ExpiresAt,
		ClientEmail: in.ClientEmail,
	}
	if err := s.links.Update(ctx, id, patch); err != nil {
		log.Printf("Failed to update upload link %s: %v", id, err)
		return models.UploadLink{}, storageError("Failed to update upload link", err)
	}
	return s.Get(ctx, caller, id)
}

// Delete removes a link. Restricted to elevated roles or the creator,
// which is the same rule Get already applies.
func (s *LinkService) Delete(ctx context.Context, caller auth.Identity, id uuid.UUID) error {
	link, err := s.Get(ctx, caller, id)
	if err != nil {
		return err
	}
	if !canAccess(caller, link.CreatedBy) {
		return accessDeniedError("Access denied to delete this upload link")
	}
	if err := s.links.Delete(ctx, id); err != nil {
		log.Printf("Failed to delete upload link %s: %v", id, err)
		return storageError("Failed to delete upload link", err)
	}
	return nil
}

// Validate is the public link check used by clients before a session is
// opened. It is a side-effecting read: an active link whose expiry has
// passed is moved to expired here, and dashboard counts depend on that.
func (s *LinkService) Validate(ctx context.Context, id uuid.UUID) (LinkValidation, error) {
	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LinkValidation{IsValid: false, Reason: "Link not found"}, nil
		}
		log.Printf("Failed to validate upload link %s: %v", id, err)
		return LinkValidation{}, storageError("Failed to validate upload link", err)
	}

	if link.Status != models.LinkStatusActive {
		return LinkValidation{IsValid: false, Link: &link, Reason: "Link is not active"}, nil
	}

	if link.ExpiresAt.Before(s.now()) {
		expired := models.LinkStatusExpired
		if err := s.links.Update(ctx, id, repositories.LinkPatch{Status: &expired}); err != nil {
			log.Printf("Failed to expire upload link %s: %v", id, err)
			return LinkValidation{}, storageError("Failed to validate upload link", err)
		}
		link.Status = models.LinkStatusExpired
		return LinkValidation{IsValid: false, Link: &link, Reason: "Link has expired"}, nil
	}

	return LinkValidation{IsValid: true, Link: &link}, nil
}

// ActiveCount returns the number of active links visible to the caller.
func (s *LinkService) ActiveCount(ctx context.Context, caller auth.Identity) (int, error) {
	links, err := s.List(ctx, caller)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, link := range links {
		if link.Status == models.LinkStatusActive {
			count++
		}
	}
	return count, nil
}

// ExpiringSoon returns active links whose expiry falls within the given
// number of days from now, inclusive.
func (s *LinkService) ExpiringSoon(ctx context.Context, caller auth.Identity, days int) ([]models.UploadLink, error) {
	links, err := s.List(ctx, caller)
	if err != nil {
		return nil, err
	}
	threshold := s.now().Add(time.Duration(days) * 24 * time.Hour)
	expiring := make([]models.UploadLink, 0)
	for _, link := range links {
		if link.Status == models.LinkStatusActive && !link.ExpiresAt.After(threshold) {
			expiring = append(expiring, link)
		}
	}
	return expiring, nil
}
