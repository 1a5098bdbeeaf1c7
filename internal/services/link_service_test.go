package services

import (
	"context"
	"testing"
	"time"

	"collect-api/internal/auth"
	"collect-api/internal/models"
	"collect-api/internal/repositories"
	"collect-api/internal/requests"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLinkService(now time.Time) *LinkService {
	repos := repositories.NewMemoryContainer()
	svc := NewLinkService(repos.Links)
	svc.now = func() time.Time { return now }
	return svc
}

func linkInput(jobNumber string) requests.CreateUploadLinkRequest {
	return requests.CreateUploadLinkRequest{
		JobNumber:      jobNumber,
		FormTemplateID: uuid.New(),
	}
}

func TestCreateLinkDefaultsExpiryToThirtyDays(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newLinkService(base)
	caller := testIdentity(auth.RoleRecruiter)

	link, err := svc.Create(context.Background(), caller, linkInput("JOB-100"))
	require.NoError(t, err)
	assert.Equal(t, models.LinkStatusActive, link.Status)
	assert.Equal(t, base.Add(DefaultLinkTTL), link.ExpiresAt)
}

func TestCreateLinkRejectsPastExpiry(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newLinkService(base)
	caller := testIdentity(auth.RoleRecruiter)

	past := base.Add(-time.Hour)
	input := linkInput("JOB-100")
	input.ExpiresAt = &past
	_, err := svc.Create(context.Background(), caller, input)
	requireKind(t, err, KindValidation)
}

func TestCreateLinkDuplicateJobNumberConflicts(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newLinkService(base)
	first := testIdentity(auth.RoleRecruiter)
	second := testIdentity(auth.RoleRecruiter)

	original, err := svc.Create(context.Background(), first, linkInput("JOB-100"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), second, linkInput("JOB-100"))
	requireKind(t, err, KindConflict)

	// The original link is untouched by the failed attempt.
	kept, err := svc.Get(context.Background(), first, original.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, kept.CreatedBy)
	assert.Equal(t, models.LinkStatusActive, kept.Status)
}

func TestValidateUnknownLink(t *testing.T) {
	svc := newLinkService(time.Now())

	validation, err := svc.Validate(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, validation.IsValid)
	assert.Equal(t, "Link not found", validation.Reason)
	assert.Nil(t, validation.Link)
}

func TestValidateDisabledLink(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newLinkService(base)
	caller := testIdentity(auth.RoleRecruiter)

	link, err := svc.Create(context.Background(), caller, linkInput("JOB-100"))
	require.NoError(t, err)

	disabled := models.LinkStatusDisabled
	_, err = svc.Update(context.Background(), caller, link.ID, requests.UpdateUploadLinkRequest{Status: &disabled})
	require.NoError(t, err)

	validation, err := svc.Validate(context.Background(), link.ID)
	require.NoError(t, err)
	assert.False(t, validation.IsValid)
	assert.Equal(t, "Link is not active", validation.Reason)
}

func TestValidateExpiresActiveLinkLazily(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newLinkService(base)
	caller := testIdentity(auth.RoleRecruiter)

	expiry := base.Add(time.Hour)
	input := linkInput("JOB-100")
	input.ExpiresAt = &expiry
	link, err := svc.Create(context.Background(), caller, input)
	require.NoError(t, err)

	// The clock moves past the expiry; the stored status is still active
	// until something validates the link.
	svc.now = func() time.Time { return base.Add(2 * time.Hour) }

	validation, err := svc.Validate(context.Background(), link.ID)
	require.NoError(t, err)
	assert.False(t, validation.IsValid)
	assert.Equal(t, "Link has expired", validation.Reason)
	require.NotNil(t, validation.Link)
	assert.Equal(t, models.LinkStatusExpired, validation.Link.Status)

	stored, err := svc.Get(context.Background(), caller, link.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LinkStatusExpired, stored.Status)

	count, err := svc.ActiveCount(context.Background(), caller)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestExpiringSoonWindowIsInclusive(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newLinkService(base)
	caller := testIdentity(auth.RoleRecruiter)

	makeLink := func(jobNumber string, expiresIn time.Duration) {
		expiry := base.Add(expiresIn)
		input := linkInput(jobNumber)
		input.ExpiresAt = &expiry
		_, err := svc.Create(context.Background(), caller, input)
		require.NoError(t, err)
	}

	makeLink("JOB-1", 24*time.Hour)
	makeLink("JOB-2", 3*24*time.Hour)
	makeLink("JOB-3", 5*24*time.Hour)

	expiring, err := svc.ExpiringSoon(context.Background(), caller, 3)
	require.NoError(t, err)
	require.Len(t, expiring, 2)

	jobNumbers := []string{expiring[0].JobNumber, expiring[1].JobNumber}
	assert.ElementsMatch(t, []string{"JOB-1", "JOB-2"}, jobNumbers)
}

func TestLinkListVisibility(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := newLinkService(base)
	recruiter := testIdentity(auth.RoleRecruiter)
	manager := testIdentity(auth.RoleManager)
	admin := testIdentity(auth.RoleAdmin)

	_, err := svc.Create(context.Background(), recruiter, linkInput("JOB-1"))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), manager, linkInput("JOB-2"))
	require.NoError(t, err)

	mine, err := svc.List(context.Background(), recruiter)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "JOB-1", mine[0].JobNumber)

	all, err := svc.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Non-elevated callers cannot read or delete links they did not create.
	_, err = svc.Get(context.Background(), manager, mine[0].ID)
	requireKind(t, err, KindAccessDenied)
	err = svc.Delete(context.Background(), manager, mine[0].ID)
	requireKind(t, err, KindAccessDenied)
}
