package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cambista/ledger/config"
	"github.com/cambista/ledger/mq_client"
)

type AuditLog struct {
	ID         uint64    `json:"id" gorm:"primaryKey"`
	EventUID   uuid.UUID `json:"event_uid"`
	EntityType string    `json:"entity_type"`
	EntityID   uint64    `json:"entity_id"`
	Action     string    `json:"action"`
	Payload    string    `json:"payload"`
	ActorID    string    `json:"actor_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func buildAuditLog(entity_type string, entity_id uint64, action string, payload interface{}, actor_id string) *AuditLog {
	payload_message, err := json.Marshal(payload)
	if err != nil {
		config.Logger.Errorf("Failed to marshal audit payload %v", err.Error())
		payload_message = []byte("{}")
	}

	return &AuditLog{
		EventUID:   uuid.New(),
		EntityType: entity_type,
		EntityID:   entity_id,
		Action:     action,
		Payload:    string(payload_message),
		ActorID:    actor_id,
	}
}

// RecordAudit is the fire-and-forget audit sink: failures are logged and
// never abort the operation that produced the event.
func RecordAudit(entity_type string, entity_id uint64, action string, payload interface{}, actor_id string) {
	audit_log := buildAuditLog(entity_type, entity_id, action, payload, actor_id)

	if err := config.DataBase.Create(audit_log).Error; err != nil {
		config.Logger.Errorf("Failed to record audit log %v", err.Error())
		return
	}

	audit_log.TriggerEvent()
}

// RecordAuditTx writes the audit row inside the caller's atomic unit. State
// transition audits use this so the row commits together with the state write.
func RecordAuditTx(tx *gorm.DB, entity_type string, entity_id uint64, action string, payload interface{}, actor_id string) error {
	audit_log := buildAuditLog(entity_type, entity_id, action, payload, actor_id)

	if err := tx.Create(audit_log).Error; err != nil {
		return err
	}

	audit_log.TriggerEvent()

	return nil
}

func (a *AuditLog) TriggerEvent() {
	payload_message, err := json.Marshal(a)
	if err != nil {
		return
	}

	mq_client.EnqueueEvent("audit", a.EntityType, a.Action, payload_message)
}
