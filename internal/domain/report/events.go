package report

import (
	"time"

	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

type ReportCreatedEvent struct {
	common.BaseEvent
	TrackingCode string          `json:"tracking_code"`
	TenantID     common.TenantID `json:"tenant_id"`
	IsAnonymous  bool            `json:"is_anonymous"`
	CreatedAt    time.Time       `json:"created_at"`
}

func NewReportCreatedEvent(r *Report) *ReportCreatedEvent {
	return &ReportCreatedEvent{
		BaseEvent:    common.NewBaseEvent(string(r.ID)),
		TrackingCode: r.TrackingCode,
		TenantID:     r.TenantID,
		IsAnonymous:  r.IsAnonymous,
		CreatedAt:    r.CreatedAt,
	}
}

type ReportAcknowledgedEvent struct {
	common.BaseEvent
	TenantID       common.TenantID `json:"tenant_id"`
	AcknowledgedAt *time.Time      `json:"acknowledged_at"`
	Revoked        bool            `json:"revoked"`
}

func NewReportAcknowledgedEvent(r *Report, revoked bool) *ReportAcknowledgedEvent {
	return &ReportAcknowledgedEvent{
		BaseEvent:      common.NewBaseEvent(string(r.ID)),
		TenantID:       r.TenantID,
		AcknowledgedAt: r.AcknowledgedAt,
		Revoked:        revoked,
	}
}

type StatusChangedEvent struct {
	common.BaseEvent
	TenantID common.TenantID `json:"tenant_id"`
	From     Status          `json:"from"`
	To       Status          `json:"to"`
}

func NewStatusChangedEvent(r *Report, from Status) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseEvent: common.NewBaseEvent(string(r.ID)),
		TenantID:  r.TenantID,
		From:      from,
		To:        r.Status,
	}
}

type MessageAddedEvent struct {
	common.BaseEvent
	TenantID common.TenantID `json:"tenant_id"`
	Role     MessageRole     `json:"role"`
}

func NewMessageAddedEvent(r *Report, m *Message) *MessageAddedEvent {
	return &MessageAddedEvent{
		BaseEvent: common.NewBaseEvent(string(r.ID)),
		TenantID:  r.TenantID,
		Role:      m.Role,
	}
}

//Personal.AI order the ending
