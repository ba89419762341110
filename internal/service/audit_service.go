package service

import (
	"context"
	"strconv"

	"go-pharmacy-reservation/internal/domain/entity"
	"go-pharmacy-reservation/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService records who changed what. Recording never fails the
// operation being audited; write errors are logged.
type AuditService interface {
	Record(ctx context.Context, actorID *int64, action string, entityName string, entityID int64, value interface{})
}

type auditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) Record(ctx context.Context, actorID *int64, action string, entityName string, entityID int64, value interface{}) {
	auditLog := &entity.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Metadata: auditMetadata(entityName, entityID, value),
	}

	if err := s.auditRepo.Create(s.db.WithContext(ctx), auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
	}
}

// logAuditService writes audit entries to the log when no database is
// configured.
type logAuditService struct {
	log *logrus.Logger
}

func NewLogAuditService(log *logrus.Logger) AuditService {
	return &logAuditService{log: log}
}

func (s *logAuditService) Record(ctx context.Context, actorID *int64, action string, entityName string, entityID int64, value interface{}) {
	fields := logrus.Fields{
		"audit":     action,
		"entity":    entityName,
		"entity_id": entityID,
	}
	if actorID != nil {
		fields["actor_id"] = *actorID
	}
	s.log.WithFields(fields).Info("Audit")
}

func auditMetadata(entityName string, entityID int64, value interface{}) entity.JSON {
	return entity.JSON{
		"entity":    entityName,
		"entity_id": strconv.FormatInt(entityID, 10),
		"value":     value,
	}
}

// ActorID returns a pointer to a copy of id for audit entries.
func ActorID(id int64) *int64 {
	return &id
}
