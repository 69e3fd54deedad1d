package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/dtos"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/routes"
	"github.com/doctrina/mono-repo/backend/shared/go-models"
	seeding "github.com/doctrina/mono-repo/backend/shared/go-seeding"
	"github.com/doctrina/mono-repo/backend/shared/go-testhelpers"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func path(template string, pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(template)
}

func (s *testServer) postWebhook(payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, routes.LMSStripeWebhook, strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) ensureUser(subject string) dtos.UserResponse {
	s.t.Helper()
	rec := s.do(http.MethodPost, routes.LMSUsersMe, s.token(subject), nil)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeJSON[dtos.UserResponse](s.t, rec)
}

func (s *testServer) seed() {
	s.t.Helper()
	require.NoError(s.t, SeedAllTestData(context.Background(), s.repos))
}

func TestHealthRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, routes.Health, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", decodeJSON[dtos.HealthCheckResponse](t, rec).Status)

	s.pinger.err = errors.New("connection refused")
	rec = s.do(http.MethodGet, routes.Health, "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUsersMeRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, routes.LMSUsersMe, "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, utils.ErrCodeUnauthorized, decodeJSON[utils.ErrorResponse](t, rec).Code)

	token := s.token("sub_me")
	rec = s.do(http.MethodGet, routes.LMSUsersMe, token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code, "GET never creates the user")

	created := s.ensureUser("sub_me")
	assert.Equal(t, models.RoleStudent, created.Role)
	assert.Equal(t, "sub_me@example.com", created.Email)

	rec = s.do(http.MethodGet, routes.LMSUsersMe, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decodeJSON[dtos.UserResponse](t, rec).ID)
	assert.Equal(t, 1, s.store.UserCount())
}

func TestExpiredTokenIsRejected(t *testing.T) {
	s := newTestServer(t)
	token := testhelpers.SignIdentityToken(t, s.key, testIssuer,
		models.ExternalIdentity{Subject: "sub_old"}, -time.Minute)

	rec := s.do(http.MethodGet, routes.LMSNotifications, token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, utils.ErrCodeTokenExpired, decodeJSON[utils.ErrorResponse](t, rec).Code)
}

func TestWebhookSignatureFailures(t *testing.T) {
	s := newTestServer(t)
	payload := testhelpers.MockStripeEvent(t, "", "checkout.session.completed",
		testhelpers.CheckoutSessionObject("cs_test_sig", uuid.NewString(), uuid.NewString(), 4999))

	rec := s.postWebhook(payload, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.ErrCodeInvalidSignature, decodeJSON[utils.ErrorResponse](t, rec).Code)

	rec = s.postWebhook(payload, testhelpers.SignStripePayload("whsec_wrong", payload, time.Now()))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.ErrCodeInvalidSignature, decodeJSON[utils.ErrorResponse](t, rec).Code)

	assert.Zero(t, s.store.PurchaseCount())
}

func TestWebhookMissingMetadata(t *testing.T) {
	s := newTestServer(t)
	payload := testhelpers.MockStripeEvent(t, "", "checkout.session.completed",
		testhelpers.CheckoutSessionObject("cs_test_nometa", "", uuid.NewString(), 4999))

	rec := s.postWebhook(payload, testhelpers.SignStripePayload(testWebhookSecret, payload, time.Now()))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.ErrCodeMissingMetadata, decodeJSON[utils.ErrorResponse](t, rec).Code)
	assert.Zero(t, s.store.EnrollmentCount())
}

func TestWebhookFailureNamesStep(t *testing.T) {
	s := newTestServer(t)
	student := s.ensureUser("sub_retry")
	payload := testhelpers.MockStripeEvent(t, "evt_router_fail", "checkout.session.completed",
		testhelpers.CheckoutSessionObject("cs_test_fail", student.ID.String(), uuid.NewString(), 4999))
	sig := testhelpers.SignStripePayload(testWebhookSecret, payload, time.Now())

	s.store.FailCompleteCheckout = errors.New(`pq: relation "enrollments" is locked`)
	rec := s.postWebhook(payload, sig)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := rec.Body.String()
	assert.NotContains(t, body, "enrollments", "database detail stays in the logs")
	resp := decodeJSON[utils.ErrorResponse](t, rec)
	assert.Equal(t, utils.ErrCodeInternal, resp.Code)
	assert.Equal(t, "Failed to process webhook event: complete checkout failed", resp.Message)
	details, ok := resp.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "evt_router_fail", details["event_id"])
	assert.Equal(t, "checkout.session.completed", details["event_type"])
	assert.Equal(t, "complete checkout", details["step"])

	s.store.FailCompleteCheckout = nil
	rec = s.postWebhook(payload, sig)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, s.store.EnrollmentCount())
}

func TestPurchaseToCertificateFlow(t *testing.T) {
	s := newTestServer(t)
	student := s.ensureUser("sub_student")
	token := s.token("sub_student")
	courseID := uuid.New()

	payload := testhelpers.MockStripeEvent(t, "", "checkout.session.completed",
		testhelpers.CheckoutSessionObject("cs_test_flow", student.ID.String(), courseID.String(), 4999))
	sig := testhelpers.SignStripePayload(testWebhookSecret, payload, time.Now())

	rec := s.postWebhook(payload, sig)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeJSON[dtos.WebhookReceivedResponse](t, rec).Received)

	// Redelivery is acknowledged without a second enrollment.
	rec = s.postWebhook(payload, sig)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, s.store.EnrollmentCount())

	rec = s.do(http.MethodGet, routes.LMSEnrollments, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	enrollments := decodeJSON[dtos.ListEnrollmentsResponse](t, rec).Enrollments
	require.Len(t, enrollments, 1)
	assert.Equal(t, courseID, enrollments[0].CourseID)

	rec = s.do(http.MethodGet, routes.LMSPurchases, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	purchases := decodeJSON[dtos.ListPurchasesResponse](t, rec).Purchases
	require.Len(t, purchases, 1)
	assert.Equal(t, models.PurchaseStatusComplete, purchases[0].Status)
	assert.InDelta(t, 49.99, purchases[0].Amount, 0.0001)

	// The purchase left one unread notification behind.
	rec = s.do(http.MethodGet, routes.LMSNotificationsUnreadCount, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeJSON[dtos.UnreadCountResponse](t, rec).Count)

	rec = s.do(http.MethodGet, routes.LMSNotifications, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notifications := decodeJSON[dtos.ListNotificationsResponse](t, rec).Notifications
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypePurchase, notifications[0].Type)

	rec = s.do(http.MethodPost, routes.LMSNotificationsReadAll, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeJSON[dtos.MarkAllReadResponse](t, rec).Updated)

	issue := dtos.IssueCertificateRequest{
		CourseID:       courseID,
		CourseName:     "Intro to Go",
		InstructorID:   uuid.New(),
		InstructorName: "Ada Lovelace",
	}
	rec = s.do(http.MethodPost, routes.LMSCertificates, token, issue)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decodeJSON[dtos.IssueCertificateResponse](t, rec)
	require.True(t, first.Created)

	rec = s.do(http.MethodPost, routes.LMSCertificates, token, issue)
	require.Equal(t, http.StatusOK, rec.Code)
	again := decodeJSON[dtos.IssueCertificateResponse](t, rec)
	assert.False(t, again.Created)
	assert.Equal(t, first.Certificate.ID, again.Certificate.ID)

	rec = s.do(http.MethodGet, path(routes.LMSCertificate, "{id}", first.Certificate.ID.String()), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Verification is public and tolerant of case.
	code := strings.ToLower(first.Certificate.VerificationCode)
	rec = s.do(http.MethodGet, path(routes.LMSCertificateVerify, "{code}", code), "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	verified := decodeJSON[dtos.VerifyCertificateResponse](t, rec)
	assert.True(t, verified.Valid)
	assert.Equal(t, "Intro to Go", verified.CourseName)
	assert.Equal(t, first.Certificate.VerificationCode, verified.VerificationCode)

	rec = s.do(http.MethodGet, path(routes.LMSCertificateVerify, "{code}", "ZZZZ-ZZZZ-ZZZZ"), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCertificateRequiresEnrollment(t *testing.T) {
	s := newTestServer(t)
	s.ensureUser("sub_stranger")

	rec := s.do(http.MethodPost, routes.LMSCertificates, s.token("sub_stranger"), dtos.IssueCertificateRequest{
		CourseID:       uuid.New(),
		CourseName:     "Not Enrolled",
		InstructorID:   uuid.New(),
		InstructorName: "Someone",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCheckoutRoute(t *testing.T) {
	s := newTestServer(t)
	s.seed()
	token := s.token("sub_buyer")

	rec := s.do(http.MethodPost, routes.LMSCheckout, token, dtos.CreateCheckoutRequest{CourseID: uuid.New()})
	require.Equal(t, http.StatusNotFound, rec.Code, "unpriced courses are not for sale")

	// Extra fields from the client never set the amount.
	rec = s.do(http.MethodPost, routes.LMSCheckout, token, []byte(
		`{"course_id":"`+SeedCourseID+`","course_name":"Cheap","amount_cents":50}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeJSON[dtos.CreateCheckoutResponse](t, rec)
	assert.True(t, strings.HasPrefix(resp.SessionID, "cs_test_"))
	assert.NotEmpty(t, resp.CheckoutURL)

	rec = s.do(http.MethodGet, routes.LMSPurchases, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	purchases := decodeJSON[dtos.ListPurchasesResponse](t, rec).Purchases
	require.Len(t, purchases, 1)
	assert.Equal(t, models.PurchaseStatusOpen, purchases[0].Status)
	assert.InDelta(t, 49.99, purchases[0].Amount, 0.0001)

	rec = s.do(http.MethodPost, routes.LMSCheckout, token, dtos.CreateCheckoutRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.ErrCodeValidation, decodeJSON[utils.ErrorResponse](t, rec).Code)

	rec = s.do(http.MethodPost, routes.LMSCheckout, token, []byte("{not json"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.ErrCodeInvalidPayload, decodeJSON[utils.ErrorResponse](t, rec).Code)
}

func TestCoursePriceRoutes(t *testing.T) {
	s := newTestServer(t)
	s.seed()

	student := s.token(seeding.DefaultStudentExternalID)
	instructor := s.token(seeding.DefaultInstructorExternalID)
	pricePath := path(routes.LMSInstructorPrice, "{courseId}", SeedCourseID)

	rec := s.do(http.MethodGet, path(routes.LMSCoursePrice, "{courseId}", SeedCourseID), student, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, SeedCoursePrice, decodeJSON[dtos.CoursePriceResponse](t, rec).AmountCents)

	body := dtos.SetCoursePriceRequest{CourseName: SeedCourseName, AmountCents: 50}
	rec = s.do(http.MethodPut, pricePath, student, body)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPut, pricePath, instructor, dtos.SetCoursePriceRequest{CourseName: SeedCourseName, AmountCents: 10})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, utils.ErrCodeValidation, decodeJSON[utils.ErrorResponse](t, rec).Code)

	body.AmountCents = 5999
	rec = s.do(http.MethodPut, pricePath, instructor, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.InDelta(t, 59.99, decodeJSON[dtos.CoursePriceResponse](t, rec).Amount, 0.0001)

	rec = s.do(http.MethodGet, path(routes.LMSCoursePrice, "{courseId}", uuid.NewString()), student, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFavoriteRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.token("sub_fav")
	resourceID := uuid.New()
	favPath := path(routes.LMSFavorite, "{resourceId}", resourceID.String())

	rec := s.do(http.MethodPut, favPath, token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, resourceID, decodeJSON[dtos.FavoriteResponse](t, rec).ResourceID)

	rec = s.do(http.MethodGet, favPath, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeJSON[dtos.FavoriteStatusResponse](t, rec).IsFavorited)

	rec = s.do(http.MethodGet, routes.LMSFavorites, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeJSON[dtos.ListFavoritesResponse](t, rec).Favorites, 1)

	rec = s.do(http.MethodDelete, favPath, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, favPath, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeJSON[dtos.FavoriteStatusResponse](t, rec).IsFavorited)

	rec = s.do(http.MethodPut, path(routes.LMSFavorite, "{resourceId}", "not-a-uuid"), token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationOwnership(t *testing.T) {
	s := newTestServer(t)
	s.seed()

	// The seed student owns the welcome notification.
	rec := s.do(http.MethodPost,
		path(routes.LMSNotificationRead, "{id}", SentinelNotificationID), s.token("sub_intruder"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodDelete,
		path(routes.LMSNotification, "{id}", SentinelNotificationID), s.token("sub_intruder"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	student := s.token(seeding.DefaultStudentExternalID)
	rec = s.do(http.MethodPost, path(routes.LMSNotificationRead, "{id}", SentinelNotificationID), student, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, routes.LMSNotifications+"?unread_only=true", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeJSON[dtos.ListNotificationsResponse](t, rec).Notifications)

	rec = s.do(http.MethodDelete, path(routes.LMSNotification, "{id}", SentinelNotificationID), student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, s.store.NotificationCount(uuid.MustParse(seeding.DefaultStudentUserID)))
}

func TestRoleGuards(t *testing.T) {
	s := newTestServer(t)
	s.seed()

	student := s.token(seeding.DefaultStudentExternalID)
	instructor := s.token(seeding.DefaultInstructorExternalID)
	admin := s.token(seeding.DefaultAdminExternalID)
	salesPath := path(routes.LMSInstructorSales, "{courseId}", SeedCourseID)

	t.Run("sales", func(t *testing.T) {
		rec := s.do(http.MethodGet, salesPath, student, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, utils.ErrCodeForbidden, decodeJSON[utils.ErrorResponse](t, rec).Code)

		rec = s.do(http.MethodGet, salesPath, instructor, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		sales := decodeJSON[dtos.CourseSalesResponse](t, rec)
		assert.EqualValues(t, 1, sales.CompletedCount)
		assert.InDelta(t, 49.99, sales.Revenue, 0.0001)
	})

	t.Run("create notification", func(t *testing.T) {
		body := dtos.CreateNotificationRequest{
			UserID:      uuid.MustParse(seeding.DefaultStudentUserID),
			Title:       "Maintenance window",
			Description: "The platform is read-only on Sunday.",
			Type:        string(models.NotificationTypeAnnouncement),
		}
		rec := s.do(http.MethodPost, routes.LMSNotifications, student, body)
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = s.do(http.MethodPost, routes.LMSNotifications, admin, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, models.NotificationTypeAnnouncement, decodeJSON[dtos.NotificationResponse](t, rec).Type)

		body.Type = "gossip"
		rec = s.do(http.MethodPost, routes.LMSNotifications, admin, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		s.store.EnforceUserForeignKeys = true
		body.Type = string(models.NotificationTypeAnnouncement)
		body.UserID = uuid.New()
		rec = s.do(http.MethodPost, routes.LMSNotifications, admin, body)
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
		assert.Equal(t, utils.ErrCodeNotFound, decodeJSON[utils.ErrorResponse](t, rec).Code)
	})

	t.Run("set role", func(t *testing.T) {
		rolePath := path(routes.LMSUserRole, "{id}", seeding.DefaultStudentUserID)

		rec := s.do(http.MethodPut, rolePath, student, dtos.SetRoleRequest{Role: "admin"})
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = s.do(http.MethodPut, rolePath, admin, dtos.SetRoleRequest{Role: "superuser"})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.do(http.MethodPut, rolePath, admin, dtos.SetRoleRequest{Role: "instructor"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, models.RoleInstructor, decodeJSON[dtos.UserResponse](t, rec).Role)

		rec = s.do(http.MethodGet, salesPath, student, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, routes.Health, "", nil)

	rec := s.do(http.MethodGet, routes.Metrics, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "lms_http_request_duration_seconds")
	assert.Contains(t, body, `route="/health"`)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, routes.LMSFavorites, nil)
	req.Header.Set("Origin", "https://app.doctrina.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.doctrina.test", rec.Header().Get("Access-Control-Allow-Origin"))
}
