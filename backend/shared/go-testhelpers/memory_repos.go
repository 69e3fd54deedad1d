// backend/shared/go-testhelpers/memory_repos.go

package testhelpers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-repositories"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
)

// MemoryStore is an in-process stand-in for PostgreSQL that honours the same
// uniqueness rules as the real schema. Unit tests build services on top of
// the repositories it hands out.
type MemoryStore struct {
	mu sync.Mutex

	users         map[uuid.UUID]*models.User
	purchases     map[uuid.UUID]*models.Purchase
	enrollments   map[uuid.UUID]*models.Enrollment
	certificates  map[uuid.UUID]*models.Certificate
	favorites     map[uuid.UUID]*models.Favorite
	notifications []*models.Notification
	stripeEvents  map[string]*models.StripeEvent
	coursePrices  map[uuid.UUID]*models.CoursePrice

	// FailCompleteCheckout, when set, is returned by CompleteCheckout before
	// anything is written.
	FailCompleteCheckout error

	// EnforceUserForeignKeys makes notification inserts for unknown users
	// fail the way the notifications_user_id_fkey constraint does.
	EnforceUserForeignKeys bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[uuid.UUID]*models.User),
		purchases:    make(map[uuid.UUID]*models.Purchase),
		enrollments:  make(map[uuid.UUID]*models.Enrollment),
		certificates: make(map[uuid.UUID]*models.Certificate),
		favorites:    make(map[uuid.UUID]*models.Favorite),
		stripeEvents: make(map[string]*models.StripeEvent),
		coursePrices: make(map[uuid.UUID]*models.CoursePrice),
	}
}

func (s *MemoryStore) Users() repositories.UserRepository                 { return &memUserRepo{s} }
func (s *MemoryStore) Purchases() repositories.PurchaseRepository         { return &memPurchaseRepo{s} }
func (s *MemoryStore) Enrollments() repositories.EnrollmentRepository     { return &memEnrollmentRepo{s} }
func (s *MemoryStore) Certificates() repositories.CertificateRepository   { return &memCertificateRepo{s} }
func (s *MemoryStore) Favorites() repositories.FavoriteRepository         { return &memFavoriteRepo{s} }
func (s *MemoryStore) Notifications() repositories.NotificationRepository { return &memNotificationRepo{s} }
func (s *MemoryStore) StripeEvents() repositories.StripeEventRepository   { return &memStripeEventRepo{s} }
func (s *MemoryStore) CoursePrices() repositories.CoursePriceRepository   { return &memCoursePriceRepo{s} }

// Counts used by assertions.

func (s *MemoryStore) PurchaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.purchases)
}

func (s *MemoryStore) EnrollmentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.enrollments)
}

func (s *MemoryStore) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *MemoryStore) NotificationCount(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, notif := range s.notifications {
		if notif.UserID == userID {
			n++
		}
	}
	return n
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

func foreignKeyViolation(constraint string) error {
	return &pgconn.PgError{Code: "23503", ConstraintName: constraint, Message: "insert or update violates foreign key constraint"}
}

func copyOf[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// ---------------------------------------------------------------------------
// users
// ---------------------------------------------------------------------------

type memUserRepo struct{ s *MemoryStore }

func (r *memUserRepo) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u.Role == "" {
		u.Role = models.RoleStudent
	}
	for _, existing := range r.s.users {
		if u.ExternalID != nil && existing.ExternalID != nil && *existing.ExternalID == *u.ExternalID {
			return uniqueViolation(repositories.UsersExternalIDKey)
		}
		if u.Email != "" && strings.EqualFold(existing.Email, u.Email) {
			return uniqueViolation(repositories.UsersEmailKey)
		}
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt, u.RowVersion = now, now, 1
	r.s.users[u.ID] = copyOf(u)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyOf(r.s.users[id]), nil
}

func (r *memUserRepo) GetByExternalID(_ context.Context, externalID string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ExternalID != nil && *u.ExternalID == externalID {
			return copyOf(u), nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email != "" && strings.EqualFold(u.Email, email) {
			return copyOf(u), nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) UpdateIfVersion(_ context.Context, u *models.User, expected int64) (pgconn.CommandTag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.users[u.ID]
	if !ok || current.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	for id, other := range r.s.users {
		if id != u.ID && u.ExternalID != nil && other.ExternalID != nil && *other.ExternalID == *u.ExternalID {
			return nil, uniqueViolation(repositories.UsersExternalIDKey)
		}
	}
	updated := copyOf(u)
	updated.RowVersion = expected + 1
	updated.UpdatedAt = time.Now().UTC()
	r.s.users[u.ID] = updated
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *memUserRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.User) error) error {
	return repositories.WithRetry(ctx, repositories.DefaultMaxRetries, id, r.GetByID, r.UpdateIfVersion, mutate)
}

// ---------------------------------------------------------------------------
// purchases + enrollments
// ---------------------------------------------------------------------------

type memPurchaseRepo struct{ s *MemoryStore }

func (r *memPurchaseRepo) bySession(sessionID string) *models.Purchase {
	for _, p := range r.s.purchases {
		if p.StripeSessionID == sessionID {
			return p
		}
	}
	return nil
}

func (r *memPurchaseRepo) CreateOpen(_ context.Context, p *models.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.Status = models.PurchaseStatusOpen
	if r.bySession(p.StripeSessionID) != nil {
		return nil
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt, p.RowVersion = now, now, 1
	r.s.purchases[p.ID] = copyOf(p)
	return nil
}

func (r *memPurchaseRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyOf(r.s.purchases[id]), nil
}

func (r *memPurchaseRepo) GetBySessionID(_ context.Context, sessionID string) (*models.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyOf(r.bySession(sessionID)), nil
}

func (r *memPurchaseRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*models.Purchase
	for _, p := range r.s.purchases {
		if p.UserID == userID {
			list = append(list, copyOf(p))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *memPurchaseRepo) CompleteCheckout(_ context.Context, p *models.Purchase) (*repositories.CheckoutResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailCompleteCheckout != nil {
		return nil, r.s.FailCompleteCheckout
	}

	now := time.Now().UTC()
	stored := r.bySession(p.StripeSessionID)
	switch {
	case stored == nil:
		stored = copyOf(p)
		if stored.ID == uuid.Nil {
			stored.ID = uuid.New()
		}
		stored.Status = models.PurchaseStatusComplete
		stored.CreatedAt, stored.UpdatedAt, stored.RowVersion = now, now, 1
		r.s.purchases[stored.ID] = stored
	case stored.Completable():
		stored.Status = models.PurchaseStatusComplete
		stored.ExpiredLocally = false
		stored.AmountCents = p.AmountCents
		stored.UpdatedAt = now
		stored.RowVersion++
	case stored.Status != models.PurchaseStatusComplete:
		return &repositories.CheckoutResult{Purchase: copyOf(stored)}, utils.ErrInvalidStatusTransition
	}

	for _, e := range r.s.enrollments {
		if e.PurchaseID == stored.ID {
			return &repositories.CheckoutResult{Purchase: copyOf(stored), Enrollment: copyOf(e)}, nil
		}
	}
	e := &models.Enrollment{
		ID:         uuid.New(),
		UserID:     stored.UserID,
		CourseID:   stored.CourseID,
		PurchaseID: stored.ID,
		CreatedAt:  now,
	}
	r.s.enrollments[e.ID] = e
	return &repositories.CheckoutResult{Purchase: copyOf(stored), Enrollment: copyOf(e), EnrollmentCreated: true}, nil
}

func (r *memPurchaseRepo) UpdateIfVersion(_ context.Context, p *models.Purchase, expected int64) (pgconn.CommandTag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.purchases[p.ID]
	if !ok || current.RowVersion != expected {
		return pgconn.CommandTag("UPDATE 0"), nil
	}
	updated := copyOf(p)
	updated.RowVersion = expected + 1
	updated.UpdatedAt = time.Now().UTC()
	r.s.purchases[p.ID] = updated
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *memPurchaseRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Purchase) error) error {
	return repositories.WithRetry(ctx, repositories.DefaultMaxRetries, id, r.GetByID, r.UpdateIfVersion, mutate)
}

func (r *memPurchaseRepo) ExpireOpenBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.purchases {
		if p.Status == models.PurchaseStatusOpen && p.CreatedAt.Before(cutoff) {
			p.Status = models.PurchaseStatusExpired
			p.ExpiredLocally = true
			p.RowVersion++
			n++
		}
	}
	return n, nil
}

func (r *memPurchaseRepo) SalesByCourse(_ context.Context, courseID uuid.UUID) (*models.CourseSales, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sales := &models.CourseSales{CourseID: courseID}
	for _, p := range r.s.purchases {
		if p.CourseID != courseID || p.Status != models.PurchaseStatusComplete {
			continue
		}
		sales.CompletedCount++
		sales.RevenueCents += p.AmountCents
		if sales.LastPurchaseAt == nil || p.UpdatedAt.After(*sales.LastPurchaseAt) {
			sales.LastPurchaseAt = utils.Ptr(p.UpdatedAt)
		}
	}
	return sales, nil
}

// SetPurchaseCreatedAt backdates a purchase, for expiry tests.
func (s *MemoryStore) SetPurchaseCreatedAt(id uuid.UUID, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.purchases[id]; ok {
		p.CreatedAt = t
	}
}

type memEnrollmentRepo struct{ s *MemoryStore }

func (r *memEnrollmentRepo) find(match func(*models.Enrollment) bool) *models.Enrollment {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var found *models.Enrollment
	for _, e := range r.s.enrollments {
		if match(e) && (found == nil || e.CreatedAt.Before(found.CreatedAt)) {
			found = e
		}
	}
	return copyOf(found)
}

func (r *memEnrollmentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Enrollment, error) {
	return r.find(func(e *models.Enrollment) bool { return e.ID == id }), nil
}

func (r *memEnrollmentRepo) GetByUserAndCourse(_ context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	return r.find(func(e *models.Enrollment) bool { return e.UserID == userID && e.CourseID == courseID }), nil
}

func (r *memEnrollmentRepo) GetByPurchaseID(_ context.Context, purchaseID uuid.UUID) (*models.Enrollment, error) {
	return r.find(func(e *models.Enrollment) bool { return e.PurchaseID == purchaseID }), nil
}

func (r *memEnrollmentRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Enrollment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*models.Enrollment
	for _, e := range r.s.enrollments {
		if e.UserID == userID {
			list = append(list, copyOf(e))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

// AddEnrollment seeds an enrollment without going through checkout.
func (s *MemoryStore) AddEnrollment(userID, courseID uuid.UUID) *models.Enrollment {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &models.Enrollment{
		ID:         uuid.New(),
		UserID:     userID,
		CourseID:   courseID,
		PurchaseID: uuid.New(),
		CreatedAt:  time.Now().UTC(),
	}
	s.enrollments[e.ID] = e
	return copyOf(e)
}

// ---------------------------------------------------------------------------
// certificates
// ---------------------------------------------------------------------------

type memCertificateRepo struct{ s *MemoryStore }

func (r *memCertificateRepo) CreateIfAbsent(_ context.Context, c *models.Certificate) (*models.Certificate, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.certificates {
		if existing.UserID == c.UserID && existing.CourseID == c.CourseID {
			return copyOf(existing), false, nil
		}
	}
	for _, existing := range r.s.certificates {
		if existing.VerificationCode == c.VerificationCode {
			return nil, false, uniqueViolation(repositories.CertificatesVerificationCodeKey)
		}
	}
	stored := copyOf(c)
	stored.CreatedAt = time.Now().UTC()
	r.s.certificates[stored.ID] = stored
	return copyOf(stored), true, nil
}

func (r *memCertificateRepo) find(match func(*models.Certificate) bool) *models.Certificate {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.certificates {
		if match(c) {
			return copyOf(c)
		}
	}
	return nil
}

func (r *memCertificateRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Certificate, error) {
	return r.find(func(c *models.Certificate) bool { return c.ID == id }), nil
}

func (r *memCertificateRepo) GetByUserAndCourse(_ context.Context, userID, courseID uuid.UUID) (*models.Certificate, error) {
	return r.find(func(c *models.Certificate) bool { return c.UserID == userID && c.CourseID == courseID }), nil
}

func (r *memCertificateRepo) GetByVerificationCode(_ context.Context, code string) (*models.Certificate, error) {
	return r.find(func(c *models.Certificate) bool { return c.VerificationCode == code }), nil
}

func (r *memCertificateRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Certificate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*models.Certificate
	for _, c := range r.s.certificates {
		if c.UserID == userID {
			list = append(list, copyOf(c))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].IssueDate.After(list[j].IssueDate) })
	return list, nil
}

// ---------------------------------------------------------------------------
// favorites
// ---------------------------------------------------------------------------

type memFavoriteRepo struct{ s *MemoryStore }

func (r *memFavoriteRepo) get(userID, resourceID uuid.UUID) *models.Favorite {
	for _, f := range r.s.favorites {
		if f.UserID == userID && f.ResourceID == resourceID {
			return f
		}
	}
	return nil
}

func (r *memFavoriteRepo) AddIfAbsent(_ context.Context, f *models.Favorite) (*models.Favorite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing := r.get(f.UserID, f.ResourceID); existing != nil {
		return copyOf(existing), nil
	}
	stored := copyOf(f)
	stored.CreatedAt = time.Now().UTC()
	r.s.favorites[stored.ID] = stored
	return copyOf(stored), nil
}

func (r *memFavoriteRepo) Get(_ context.Context, userID, resourceID uuid.UUID) (*models.Favorite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyOf(r.get(userID, resourceID)), nil
}

func (r *memFavoriteRepo) Delete(_ context.Context, userID, resourceID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing := r.get(userID, resourceID)
	if existing == nil {
		return false, nil
	}
	delete(r.s.favorites, existing.ID)
	return true, nil
}

func (r *memFavoriteRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Favorite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*models.Favorite
	for _, f := range r.s.favorites {
		if f.UserID == userID {
			list = append(list, copyOf(f))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

// ---------------------------------------------------------------------------
// notifications (kept in insertion order; newest is last)
// ---------------------------------------------------------------------------

type memNotificationRepo struct{ s *MemoryStore }

func (r *memNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	if _, err := models.EncodeNotificationMetadata(n.Metadata); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[n.UserID]; r.s.EnforceUserForeignKeys && !ok {
		return foreignKeyViolation(repositories.NotificationsUserFKey)
	}
	n.CreatedAt = time.Now().UTC()
	n.Read = false
	r.s.notifications = append(r.s.notifications, copyOf(n))
	return nil
}

func (r *memNotificationRepo) GetByID(_ context.Context, userID, id uuid.UUID) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notifications {
		if n.ID == id && n.UserID == userID {
			return copyOf(n), nil
		}
	}
	return nil, nil
}

func (r *memNotificationRepo) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = repositories.DefaultNotificationListLimit
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*models.Notification
	for i := len(r.s.notifications) - 1; i >= 0 && len(list) < limit; i-- {
		n := r.s.notifications[i]
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		list = append(list, copyOf(n))
	}
	return list, nil
}

func (r *memNotificationRepo) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, userID, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notifications {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return true, nil
		}
	}
	return false, nil
}

func (r *memNotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) Delete(_ context.Context, userID, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, n := range r.s.notifications {
		if n.ID == id && n.UserID == userID {
			r.s.notifications = append(r.s.notifications[:i], r.s.notifications[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memNotificationRepo) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.notifications[:0]
	var removed int64
	for _, n := range r.s.notifications {
		if n.Read && n.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	r.s.notifications = kept
	return removed, nil
}

// ---------------------------------------------------------------------------
// stripe events
// ---------------------------------------------------------------------------

type memStripeEventRepo struct{ s *MemoryStore }

func (r *memStripeEventRepo) Exists(_ context.Context, eventID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.stripeEvents[eventID]
	return ok, nil
}

func (r *memStripeEventRepo) Record(_ context.Context, e *models.StripeEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.stripeEvents[e.EventID]; ok {
		return nil
	}
	stored := copyOf(e)
	stored.ReceivedAt = time.Now().UTC()
	r.s.stripeEvents[e.EventID] = stored
	return nil
}

// ---------------------------------------------------------------------------
// course prices
// ---------------------------------------------------------------------------

type memCoursePriceRepo struct{ s *MemoryStore }

func (r *memCoursePriceRepo) Get(_ context.Context, courseID uuid.UUID) (*models.CoursePrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyOf(r.s.coursePrices[courseID]), nil
}

func (r *memCoursePriceRepo) Upsert(_ context.Context, p *models.CoursePrice) (*models.CoursePrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	stored, ok := r.s.coursePrices[p.CourseID]
	if !ok {
		stored = copyOf(p)
		stored.CreatedAt, stored.RowVersion = now, 0
		r.s.coursePrices[p.CourseID] = stored
	}
	stored.CourseName = p.CourseName
	stored.AmountCents = p.AmountCents
	stored.UpdatedBy = p.UpdatedBy
	stored.UpdatedAt = now
	stored.RowVersion++
	return copyOf(stored), nil
}

// SetCoursePrice lists a course for sale without going through the API.
func (s *MemoryStore) SetCoursePrice(courseID, instructorID uuid.UUID, name string, amountCents int64) *models.CoursePrice {
	p, _ := s.CoursePrices().Upsert(context.Background(), &models.CoursePrice{
		CourseID:     courseID,
		CourseName:   name,
		AmountCents:  amountCents,
		InstructorID: instructorID,
		UpdatedBy:    instructorID,
	})
	return p
}
