package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationType is a closed set; anything else is rejected on create.
type NotificationType string

const (
	NotificationTypePurchase     NotificationType = "purchase"
	NotificationTypeEnrollment   NotificationType = "enrollment"
	NotificationTypeCertificate  NotificationType = "certificate"
	NotificationTypeCourseUpdate NotificationType = "course_update"
	NotificationTypeAnnouncement NotificationType = "announcement"
	NotificationTypeReminder     NotificationType = "reminder"
	NotificationTypeSystem       NotificationType = "system"
)

// NotificationTypes lists every accepted type, in display order.
var NotificationTypes = []NotificationType{
	NotificationTypePurchase,
	NotificationTypeEnrollment,
	NotificationTypeCertificate,
	NotificationTypeCourseUpdate,
	NotificationTypeAnnouncement,
	NotificationTypeReminder,
	NotificationTypeSystem,
}

func (t NotificationType) Valid() bool {
	for _, known := range NotificationTypes {
		if t == known {
			return true
		}
	}
	return false
}

func ParseNotificationType(s string) (NotificationType, error) {
	t := NotificationType(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid notification type: %q", s)
	}
	return t, nil
}

type Notification struct {
	ID          uuid.UUID            `json:"id"`
	UserID      uuid.UUID            `json:"user_id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Type        NotificationType     `json:"type"`
	Link        *string              `json:"link,omitempty"`
	Metadata    NotificationMetadata `json:"-"`
	Read        bool                 `json:"read"`
	CreatedAt   time.Time            `json:"created_at"`
}

// ---------------------------------------------------------------------------
// Metadata variants
// ---------------------------------------------------------------------------

const (
	MetadataKindPurchase    = "purchase"
	MetadataKindCertificate = "certificate"
	MetadataKindCourse      = "course"
)

// NotificationMetadata is implemented by every metadata variant. Kinds we do
// not model yet decode into UnknownMetadata and round-trip untouched.
type NotificationMetadata interface {
	MetadataKind() string
}

type PurchaseMetadata struct {
	PurchaseID  uuid.UUID `json:"purchase_id"`
	CourseID    uuid.UUID `json:"course_id"`
	AmountCents int64     `json:"amount_cents"`
}

func (PurchaseMetadata) MetadataKind() string { return MetadataKindPurchase }

type CertificateMetadata struct {
	CertificateID    uuid.UUID `json:"certificate_id"`
	CourseID         uuid.UUID `json:"course_id"`
	VerificationCode string    `json:"verification_code"`
}

func (CertificateMetadata) MetadataKind() string { return MetadataKindCertificate }

type CourseMetadata struct {
	CourseID   uuid.UUID `json:"course_id"`
	CourseName string    `json:"course_name,omitempty"`
}

func (CourseMetadata) MetadataKind() string { return MetadataKindCourse }

type UnknownMetadata struct {
	Kind string
	Raw  json.RawMessage
}

func (m UnknownMetadata) MetadataKind() string { return m.Kind }

type metadataEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// EncodeNotificationMetadata renders a variant as {"kind": ..., "data": ...}.
// A nil variant encodes to nil so the column stays NULL.
func EncodeNotificationMetadata(m NotificationMetadata) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	var data json.RawMessage
	if u, ok := m.(UnknownMetadata); ok {
		data = u.Raw
	} else {
		b, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}
		data = b
	}
	if m.MetadataKind() == "" {
		return nil, fmt.Errorf("notification metadata has no kind")
	}
	return json.Marshal(metadataEnvelope{Kind: m.MetadataKind(), Data: data})
}

// DecodeNotificationMetadata is the inverse of EncodeNotificationMetadata.
func DecodeNotificationMetadata(b []byte) (NotificationMetadata, error) {
	if len(bytes.TrimSpace(b)) == 0 || bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil, nil
	}
	var env metadataEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode notification metadata: %w", err)
	}
	if env.Kind == "" {
		return nil, fmt.Errorf("notification metadata has no kind")
	}

	switch env.Kind {
	case MetadataKindPurchase:
		var m PurchaseMetadata
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return nil, fmt.Errorf("decode %s metadata: %w", env.Kind, err)
		}
		return m, nil
	case MetadataKindCertificate:
		var m CertificateMetadata
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return nil, fmt.Errorf("decode %s metadata: %w", env.Kind, err)
		}
		return m, nil
	case MetadataKindCourse:
		var m CourseMetadata
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return nil, fmt.Errorf("decode %s metadata: %w", env.Kind, err)
		}
		return m, nil
	default:
		return UnknownMetadata{Kind: env.Kind, Raw: env.Data}, nil
	}
}
