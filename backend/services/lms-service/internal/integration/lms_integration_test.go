//go:build (dev_test || staging_test) && integration

package integration

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/dtos"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/routes"
	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-testhelpers"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdentity() models.ExternalIdentity {
	suffix := utils.RandomString(8)
	return models.ExternalIdentity{
		Subject: "it_" + suffix,
		Email:   "it-" + strings.ToLower(suffix) + "@integration.doctrina.dev",
		Name:    "Integration " + suffix,
	}
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	h.T = t
	resp := h.DoRequest(h.BuildAuthRequest(http.MethodGet, h.BaseURL+routes.Health, "", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode, h.ReadBody(resp))
	assert.Equal(t, "OK", decodeBody[dtos.HealthCheckResponse](t, resp).Status)
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	h.T = t
	token := h.CreateIdentityToken(newIdentity())

	first := h.DoRequest(h.BuildAuthRequest(http.MethodPost, h.BaseURL+routes.LMSUsersMe, token, nil))
	require.Equal(t, http.StatusOK, first.StatusCode, h.ReadBody(first))
	second := h.DoRequest(h.BuildAuthRequest(http.MethodPost, h.BaseURL+routes.LMSUsersMe, token, nil))
	require.Equal(t, http.StatusOK, second.StatusCode, h.ReadBody(second))

	assert.Equal(t, decodeBody[dtos.UserResponse](t, first).ID, decodeBody[dtos.UserResponse](t, second).ID)
}

func TestWebhookEnrollsAndDeduplicates(t *testing.T) {
	h.T = t
	if h.StripeWebhookSecret == "" {
		t.Skip("STRIPE_WEBHOOK_SECRET not set")
	}

	identity := newIdentity()
	token := h.CreateIdentityToken(identity)
	resp := h.DoRequest(h.BuildAuthRequest(http.MethodPost, h.BaseURL+routes.LMSUsersMe, token, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode, h.ReadBody(resp))
	user := decodeBody[dtos.UserResponse](t, resp)

	courseID := uuid.New()
	sessionID := "cs_it_" + utils.RandomString(16)
	payload := testhelpers.MockStripeEvent(t, "", "checkout.session.completed",
		testhelpers.CheckoutSessionObject(sessionID, user.ID.String(), courseID.String(), 4999))

	for i := 0; i < 2; i++ {
		resp = h.PostStripeWebhook(h.BaseURL+routes.LMSStripeWebhook, payload)
		require.Equal(t, http.StatusOK, resp.StatusCode, h.ReadBody(resp))
		resp.Body.Close()
	}

	enrollment, err := h.EnrollmentRepo.GetByUserAndCourse(h.Ctx, user.ID, courseID)
	require.NoError(t, err)
	require.NotNil(t, enrollment)

	purchase, err := h.PurchaseRepo.GetBySessionID(h.Ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, purchase)
	assert.Equal(t, models.PurchaseStatusComplete, purchase.Status)
	assert.EqualValues(t, 4999, purchase.AmountCents)

	enrollments, err := h.EnrollmentRepo.ListByUser(h.Ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, enrollments, 1)

	resp = h.DoRequest(h.BuildAuthRequest(http.MethodGet, h.BaseURL+routes.LMSNotificationsUnreadCount, token, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode, h.ReadBody(resp))
	assert.EqualValues(t, 1, decodeBody[dtos.UnreadCountResponse](t, resp).Count)
}

func TestCertificateVerificationIsPublic(t *testing.T) {
	h.T = t

	identity := newIdentity()
	token := h.CreateIdentityToken(identity)
	resp := h.DoRequest(h.BuildAuthRequest(http.MethodPost, h.BaseURL+routes.LMSUsersMe, token, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode, h.ReadBody(resp))
	user := decodeBody[dtos.UserResponse](t, resp)

	courseID := uuid.New()
	_, err := h.PurchaseRepo.CompleteCheckout(h.Ctx, &models.Purchase{
		UserID:          user.ID,
		CourseID:        courseID,
		AmountCents:     1500,
		StripeSessionID: "cs_it_" + utils.RandomString(16),
	})
	require.NoError(t, err)

	body, err := json.Marshal(dtos.IssueCertificateRequest{
		CourseID:       courseID,
		CourseName:     "Integration Testing 101",
		InstructorID:   uuid.New(),
		InstructorName: "Grace Hopper",
	})
	require.NoError(t, err)
	resp = h.DoRequest(h.BuildAuthRequest(http.MethodPost, h.BaseURL+routes.LMSCertificates, token, body))
	require.Equal(t, http.StatusCreated, resp.StatusCode, h.ReadBody(resp))
	issued := decodeBody[dtos.IssueCertificateResponse](t, resp)

	verifyURL := h.BaseURL + strings.Replace(routes.LMSCertificateVerify, "{code}", issued.Certificate.VerificationCode, 1)
	resp = h.DoRequest(h.BuildAuthRequest(http.MethodGet, verifyURL, "", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode, h.ReadBody(resp))
	verified := decodeBody[dtos.VerifyCertificateResponse](t, resp)
	assert.True(t, verified.Valid)
	assert.Equal(t, identity.Name, verified.UserName)
}
