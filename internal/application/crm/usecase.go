package crm

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// LeadNotifier notifica eventos de lead a los webhooks suscritos.
// Lo implementa webhook.Notifier.
type LeadNotifier interface {
	LeadCreated(l *entity.Lead)
	LeadUpdated(l *entity.Lead)
	LeadConverted(l *entity.Lead)
}

// LeadUseCase CRUD de leads; cada mutación dispara su evento de webhook.
type LeadUseCase struct {
	leadRepo repository.LeadRepository
	notifier LeadNotifier
}

// NewLeadUseCase construye el caso de uso de leads.
func NewLeadUseCase(leadRepo repository.LeadRepository, notifier LeadNotifier) *LeadUseCase {
	return &LeadUseCase{leadRepo: leadRepo, notifier: notifier}
}

// CreateLead crea un lead en estado NEW y notifica lead.created.
func (uc *LeadUseCase) CreateLead(ctx context.Context, orgID, userID string, in dto.CreateLeadRequest) (*entity.Lead, error) {
	if orgID == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	lead := &entity.Lead{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Company:   in.Company,
		Source:    in.Source,
		Status:    entity.LeadStatusNew,
		OwnerID:   userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.leadRepo.Create(lead); err != nil {
		return nil, err
	}
	uc.notifier.LeadCreated(lead)
	return lead, nil
}

// UpdateLead actualiza campos básicos y estado, y notifica lead.updated.
func (uc *LeadUseCase) UpdateLead(ctx context.Context, leadID, orgID string, in dto.UpdateLeadRequest) (*entity.Lead, error) {
	lead, err := uc.leadRepo.GetByID(leadID, orgID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, domain.ErrNotFound
	}
	if lead.Status == entity.LeadStatusConverted {
		return nil, domain.ErrConflict
	}
	if in.Name != "" {
		lead.Name = in.Name
	}
	if in.Email != "" {
		lead.Email = in.Email
	}
	if in.Phone != "" {
		lead.Phone = in.Phone
	}
	if in.Company != "" {
		lead.Company = in.Company
	}
	if in.Status != "" {
		switch in.Status {
		case entity.LeadStatusNew, entity.LeadStatusContacted, entity.LeadStatusQualified, entity.LeadStatusLost:
			lead.Status = in.Status
		default:
			return nil, domain.ErrInvalidInput
		}
	}
	lead.UpdatedAt = time.Now()
	if err := uc.leadRepo.Update(lead); err != nil {
		return nil, err
	}
	uc.notifier.LeadUpdated(lead)
	return lead, nil
}

// ConvertLead pasa el lead a CONVERTED y notifica lead.converted.
func (uc *LeadUseCase) ConvertLead(ctx context.Context, leadID, orgID string) (*entity.Lead, error) {
	lead, err := uc.leadRepo.GetByID(leadID, orgID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, domain.ErrNotFound
	}
	if lead.Status == entity.LeadStatusConverted {
		return nil, domain.ErrConflict
	}
	now := time.Now()
	lead.Status = entity.LeadStatusConverted
	lead.ConvertedAt = &now
	lead.UpdatedAt = now
	if err := uc.leadRepo.Update(lead); err != nil {
		return nil, err
	}
	uc.notifier.LeadConverted(lead)
	return lead, nil
}

// ListLeads lista los leads de la organización.
func (uc *LeadUseCase) ListLeads(ctx context.Context, orgID string, limit, offset int) ([]*entity.Lead, error) {
	return uc.leadRepo.ListByOrg(orgID, limit, offset)
}
