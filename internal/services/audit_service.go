package services

import (
	"encoding/json"

	"gorm.io/gorm"

	apperrors "tallybook/internal/errors"
	"tallybook/internal/logger"
	"tallybook/internal/models"
)

// maxTrail caps how many entries Trail returns.
const maxTrail = 50

type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log appends an entry to the owner's audit log. Failures are logged and
// swallowed; the operation being audited has already happened.
func (s *auditService) Log(userID string, action, resourceType string, resourceID string, ipAddress string, changes map[string]interface{}) {
	log := logger.Named("audit")

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
	}
	if len(changes) > 0 {
		data, err := json.Marshal(changes)
		if err != nil {
			log.Errorw("unencodable audit changes", "error", err, "action", action, "resource_id", resourceID)
			data = []byte("{}")
		}
		entry.Changes = string(data)
	}

	if err := s.db.Create(entry).Error; err != nil {
		log.Errorw("failed to write audit entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource", resourceType+"/"+resourceID,
		)
	}
}

// Trail returns the owner's entries for one resource, oldest first.
func (s *auditService) Trail(userID, resourceType, resourceID string) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := s.db.
		Where("user_id = ? AND resource_type = ? AND resource_id = ?", userID, resourceType, resourceID).
		Order("created_at ASC, id ASC").
		Limit(maxTrail).
		Find(&entries).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entries, nil
}
