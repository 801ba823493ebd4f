package service

import (
	"context"
	"strings"

	"github.com/meinhoongagan/carehub/apperr"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/repository"
	"github.com/rs/zerolog"
)

var defaultServices = []models.Service{
	{Name: "Personal Care Assistance", Category: models.CategoryPersonalCare, Description: "Help with daily personal care activities including bathing, dressing, and grooming"},
	{Name: "Medication Management", Category: models.CategoryMedicalCare, Description: "Assistance with medication reminders and administration"},
	{Name: "Companionship", Category: models.CategoryCompanionship, Description: "Social interaction, conversation, and emotional support"},
	{Name: "Light Housekeeping", Category: models.CategoryHouseholdTasks, Description: "Basic household tasks including cleaning, laundry, and organization"},
	{Name: "Transportation Services", Category: models.CategoryTransportation, Description: "Safe transportation to appointments, shopping, and social activities"},
	{Name: "Dementia Care", Category: models.CategorySpecializedCare, Description: "Specialized care for individuals with dementia and Alzheimer's disease"},
}

type ServiceInput struct {
	Name        string                 `json:"name" validate:"required,max=150"`
	Description string                 `json:"description"`
	Category    models.ServiceCategory `json:"category" validate:"required"`
	IsActive    *bool                  `json:"is_active"`
}

type ServicePatch struct {
	Name        *string                 `json:"name" validate:"omitempty,max=150"`
	Description *string                 `json:"description"`
	Category    *models.ServiceCategory `json:"category"`
	IsActive    *bool                   `json:"is_active"`
}

// Catalog manages the services caregivers can offer.
type Catalog struct {
	store  repository.Store
	logger *zerolog.Logger
}

func NewCatalog(store repository.Store, logger *zerolog.Logger) *Catalog {
	return &Catalog{store: store, logger: logger}
}

// SeedDefaults creates the default services when the catalog is empty.
func (c *Catalog) SeedDefaults(ctx context.Context) (int, error) {
	count, err := c.store.CountServices(ctx)
	if err != nil {
		return 0, apperr.Internal(err, "count services")
	}
	if count > 0 {
		return 0, nil
	}

	err = c.store.WithTx(ctx, func(tx repository.Store) error {
		for _, s := range defaultServices {
			s.IsActive = true
			if err := tx.CreateService(ctx, &s); err != nil {
				return storeErr(err, "seed service", "service %s not found", s.Name)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	c.logger.Info().Int("count", len(defaultServices)).Msg("default services seeded")
	return len(defaultServices), nil
}

func (c *Catalog) Create(ctx context.Context, in ServiceInput) (*models.Service, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.BadRequest("service name is required")
	}
	if !in.Category.Valid() {
		return nil, apperr.BadRequest("unknown service category %q", in.Category)
	}
	service := &models.Service{Name: name, Description: in.Description, Category: in.Category, IsActive: true}
	if in.IsActive != nil {
		service.IsActive = *in.IsActive
	}
	if err := c.store.CreateService(ctx, service); err != nil {
		return nil, storeErr(err, "create service", "service %s not found", name)
	}
	return service, nil
}

func (c *Catalog) Get(ctx context.Context, id string) (*models.Service, error) {
	service, err := c.store.GetService(ctx, id)
	if err != nil {
		return nil, storeErr(err, "get service", "service %s not found", id)
	}
	return service, nil
}

// List returns services, optionally inactive ones too and optionally of one category.
func (c *Catalog) List(ctx context.Context, includeInactive bool, category models.ServiceCategory) ([]models.Service, error) {
	if category != "" && !category.Valid() {
		return nil, apperr.BadRequest("unknown service category %q", category)
	}
	services, err := c.store.ListServices(ctx, !includeInactive)
	if err != nil {
		return nil, apperr.Internal(err, "list services")
	}
	if category == "" {
		return services, nil
	}
	out := services[:0]
	for _, s := range services {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out, nil
}

func (c *Catalog) Update(ctx context.Context, id string, patch ServicePatch) (*models.Service, error) {
	service, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		if service.Name = strings.TrimSpace(*patch.Name); service.Name == "" {
			return nil, apperr.BadRequest("service name is required")
		}
	}
	if patch.Description != nil {
		service.Description = *patch.Description
	}
	if patch.Category != nil {
		if !patch.Category.Valid() {
			return nil, apperr.BadRequest("unknown service category %q", *patch.Category)
		}
		service.Category = *patch.Category
	}
	if patch.IsActive != nil {
		service.IsActive = *patch.IsActive
	}
	if err := c.store.UpdateService(ctx, service); err != nil {
		return nil, storeErr(err, "update service", "service %s not found", id)
	}
	return service, nil
}

func (c *Catalog) SetActive(ctx context.Context, id string, active bool) (*models.Service, error) {
	return c.Update(ctx, id, ServicePatch{IsActive: &active})
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	if err := c.store.DeleteService(ctx, id); err != nil {
		return storeErr(err, "delete service", "service %s not found", id)
	}
	c.logger.Info().Str("service_id", id).Msg("service deleted")
	return nil
}
