package services

import (
	"context"
	"errors"

	"github.com/diewo77/go-rentals/internal/billing"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/validation"
	"gorm.io/gorm"
)

// SettingsInput holds unit prices as numbers or formatted text.
type SettingsInput struct {
	ElectricPrice any `json:"electric_price"`
	WaterPrice    any `json:"water_price"`
}

// ServiceInput is an add-on service as submitted by a form.
type ServiceInput struct {
	Name  string `json:"name" validate:"required,max=255"`
	Price any    `json:"price"`
}

// CatalogService manages what a home charges: unit prices and add-on services.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// Settings returns the unit prices of a home, creating a zero-priced row
// when the home has none yet.
func (s *CatalogService) Settings(ctx context.Context, homeID uint) (*models.Setting, error) {
	var st models.Setting
	err := s.db.WithContext(ctx).Where("home_id = ?", homeID).First(&st).Error
	if err == nil {
		return &st, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	st = models.Setting{HomeID: homeID}
	if err := s.db.WithContext(ctx).Create(&st).Error; err != nil {
		return nil, &SaveError{Op: "create settings", Cause: err}
	}
	return &st, nil
}

// Prices returns the unit prices of a home without creating anything; a home
// with no settings row yet has zero prices.
func (s *CatalogService) Prices(ctx context.Context, homeID uint) (billing.Prices, error) {
	var st models.Setting
	err := s.db.WithContext(ctx).Where("home_id = ?", homeID).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return billing.Prices{}, nil
	}
	if err != nil {
		return billing.Prices{}, err
	}
	return st.Prices(), nil
}

// UpdateSettings stores new unit prices. Prices apply to invoices computed
// from now on; stored invoices keep their totals.
func (s *CatalogService) UpdateSettings(ctx context.Context, homeID uint, in SettingsInput) (*models.Setting, error) {
	electric := billing.Coerce(in.ElectricPrice)
	water := billing.Coerce(in.WaterPrice)
	v := validation.Violations{}
	validation.NonNegative("electric_price", electric, v)
	validation.NonNegative("water_price", water, v)
	if err := invalid(v); err != nil {
		return nil, err
	}

	st, err := s.Settings(ctx, homeID)
	if err != nil {
		return nil, err
	}
	st.ElectricPrice = electric
	st.WaterPrice = water
	if err := s.db.WithContext(ctx).Save(st).Error; err != nil {
		return nil, &SaveError{Op: "update settings", Cause: err}
	}
	return st, nil
}

// Services lists the add-on services of a home.
func (s *CatalogService) Services(ctx context.Context, homeID uint) ([]models.Service, error) {
	list := []models.Service{}
	err := s.db.WithContext(ctx).Where("home_id = ?", homeID).Order("id ASC").Find(&list).Error
	return list, err
}

// Catalog returns the services of a home at their current prices.
func (s *CatalogService) Catalog(ctx context.Context, homeID uint) ([]billing.ServiceCharge, error) {
	list, err := s.Services(ctx, homeID)
	if err != nil {
		return nil, err
	}
	return models.Charges(list), nil
}

func (in ServiceInput) apply(svc *models.Service) error {
	v := validation.Struct(in)
	if in.Price == nil {
		v["price"] = "required"
	}
	price := billing.Coerce(in.Price)
	validation.NonNegative("price", price, v)
	if err := invalid(v); err != nil {
		return err
	}
	svc.Name = in.Name
	svc.Price = price
	return nil
}

// CreateService adds a service to a home's catalog.
func (s *CatalogService) CreateService(ctx context.Context, homeID uint, in ServiceInput) (*models.Service, error) {
	svc := &models.Service{HomeID: homeID}
	if err := in.apply(svc); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(svc).Error; err != nil {
		return nil, &SaveError{Op: "create service", Cause: err}
	}
	return svc, nil
}

// UpdateService renames or reprices a service.
func (s *CatalogService) UpdateService(ctx context.Context, homeID, serviceID uint, in ServiceInput) (*models.Service, error) {
	var svc models.Service
	if err := s.db.WithContext(ctx).Where("home_id = ?", homeID).First(&svc, serviceID).Error; err != nil {
		return nil, notFound(err, "service")
	}
	if err := in.apply(&svc); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(&svc).Error; err != nil {
		return nil, &SaveError{Op: "update service", Cause: err}
	}
	return &svc, nil
}

// DeleteService removes a service. Invoices that selected it show it at
// zero from then on.
func (s *CatalogService) DeleteService(ctx context.Context, homeID, serviceID uint) error {
	res := s.db.WithContext(ctx).Where("home_id = ?", homeID).Delete(&models.Service{}, serviceID)
	if res.Error != nil {
		return &SaveError{Op: "delete service", Cause: res.Error}
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
