// Package catalog is the read side of the storefront: products with their
// variants, categories, and the CMS content the landing page renders.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"storefront/internal/postgres"
	"storefront/models"
)

var ErrNotFound = errors.New("catalog: not found")

type Service struct {
	db *gorm.DB
}

func NewService(client *postgres.Client) *Service {
	return &Service{db: client.DB()}
}

// ProductDetail bundles a product with its purchasable variants.
type ProductDetail struct {
	Product  models.Product
	Variants []models.ProductVariant
}

func (s *Service) ProductByID(ctx context.Context, id string) (*ProductDetail, error) {
	var p models.Product
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var variants []models.ProductVariant
	if err := s.db.WithContext(ctx).
		Where("product_id = ?", id).
		Order("attribute_value ASC").
		Find(&variants).Error; err != nil {
		return nil, fmt.Errorf("failed to load variants for product %s: %w", id, err)
	}
	return &ProductDetail{Product: p, Variants: variants}, nil
}

func (s *Service) ProductsByCategory(ctx context.Context, categoryID string, limit int) ([]models.Product, error) {
	var out []models.Product
	q := s.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}

func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	return out, s.db.WithContext(ctx).Order("position ASC").Find(&out).Error
}

// ActiveBanners returns the carousel banners in display order.
func (s *Service) ActiveBanners(ctx context.Context) ([]models.HomeBanner, error) {
	var out []models.HomeBanner
	return out, s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("position ASC").
		Find(&out).Error
}

// ActivePopup returns the most recently created active popup offer, or
// ErrNotFound when none is configured.
func (s *Service) ActivePopup(ctx context.Context) (*models.PopupOffer, error) {
	var offer models.PopupOffer
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at DESC").
		First(&offer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (s *Service) FAQs(ctx context.Context) ([]models.FAQ, error) {
	var out []models.FAQ
	return out, s.db.WithContext(ctx).Order("position ASC").Find(&out).Error
}

// SectionWithProducts is one curated landing-page strip resolved to its
// product rows.
type SectionWithProducts struct {
	Section  models.HomeSection
	Products []models.Product
}

func (s *Service) HomeSections(ctx context.Context) ([]SectionWithProducts, error) {
	var sections []models.HomeSection
	if err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("position ASC").
		Find(&sections).Error; err != nil {
		return nil, err
	}

	out := make([]SectionWithProducts, 0, len(sections))
	for _, sec := range sections {
		ids := splitIDs(sec.ProductIDs)
		var products []models.Product
		if len(ids) > 0 {
			if err := s.db.WithContext(ctx).
				Where("id IN ?", ids).
				Find(&products).Error; err != nil {
				return nil, fmt.Errorf("failed to load products for section %s: %w", sec.ID, err)
			}
		}
		out = append(out, SectionWithProducts{Section: sec, Products: products})
	}
	return out, nil
}

func splitIDs(csv string) []string {
	parts := strings.Split(csv, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if id := strings.TrimSpace(p); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
