package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/VendorHub/internal/computed"
	"github.com/JonMunkholm/VendorHub/internal/fields"
	"github.com/JonMunkholm/VendorHub/internal/logging"
	"github.com/JonMunkholm/VendorHub/internal/metrics"
	"github.com/JonMunkholm/VendorHub/internal/spreadsheet"
	"github.com/JonMunkholm/VendorHub/internal/tier"
	"github.com/JonMunkholm/VendorHub/internal/vendor"
)

// DefaultImportTimeout bounds one import from parse to history write.
const DefaultImportTimeout = 2 * time.Minute

// Config tunes the import path.
type Config struct {
	MaxFileSize   int64
	MaxConcurrent int
	MaxWaitTime   time.Duration
	ImportTimeout time.Duration
}

// Deps are the collaborators of a Service.
type Deps struct {
	Vendors  VendorStore
	History  ImportHistoryStore
	Requests TierRequestStore
	Audit    AuditStore

	Registry *fields.Registry
	Tiers    *tier.Service
	Metrics  *metrics.Metrics // optional
	Now      func() time.Time // optional, defaults to time.Now
}

// Service provides the vendor import/export and tier management operations.
type Service struct {
	vendors  VendorStore
	history  ImportHistoryStore
	requests TierRequestStore
	audit    AuditStore

	registry  *fields.Registry
	tiers     *tier.Service
	computed  *computed.Service
	generator *spreadsheet.Generator
	validator *Validator
	executor  *Executor
	limiter   *ImportLimiter
	validate  *validator.Validate
	metrics   *metrics.Metrics
	now       func() time.Time
	cfg       Config
}

// NewService wires a Service from its dependencies.
func NewService(deps Deps, cfg Config) (*Service, error) {
	if deps.Vendors == nil || deps.History == nil || deps.Requests == nil || deps.Audit == nil {
		return nil, errors.New("core: all stores are required")
	}
	if deps.Registry == nil {
		deps.Registry = fields.Default()
	}
	if deps.Tiers == nil {
		policy, err := tier.NewPolicy(tier.DefaultPolicyConfig(), deps.Registry.AccessLevels())
		if err != nil {
			return nil, fmt.Errorf("build tier policy: %w", err)
		}
		deps.Tiers = tier.NewService(policy)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.ImportTimeout <= 0 {
		cfg.ImportTimeout = DefaultImportTimeout
	}

	return &Service{
		vendors:   deps.Vendors,
		history:   deps.History,
		requests:  deps.Requests,
		audit:     deps.Audit,
		registry:  deps.Registry,
		tiers:     deps.Tiers,
		computed:  computed.NewService(deps.Now),
		generator: spreadsheet.NewGenerator(deps.Registry, deps.Now),
		validator: NewValidator(deps.Registry, deps.Tiers, deps.Now),
		executor:  NewExecutor(deps.Vendors, deps.History, deps.Registry, deps.Tiers, deps.Now),
		limiter:   NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		validate:  validator.New(),
		metrics:   deps.Metrics,
		now:       deps.Now,
		cfg:       cfg,
	}, nil
}

// Registry returns the field registry the service was built with.
func (s *Service) Registry() *fields.Registry {
	return s.registry
}

// Tiers returns the tier validation service.
func (s *Service) Tiers() *tier.Service {
	return s.tiers
}

func (s *Service) logger(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// GenerateTemplate builds the import template for a tier.
func (s *Service) GenerateTemplate(t tier.Level) ([]byte, string, error) {
	t = t.Normalize()
	data, err := s.generator.Template(t)
	if err != nil {
		return nil, "", fmt.Errorf("generate template: %w", err)
	}
	return data, spreadsheet.TemplateFilename(t, s.now()), nil
}

// VendorTemplate builds the import template for a vendor's own tier.
func (s *Service) VendorTemplate(ctx context.Context, vendorID string) ([]byte, string, error) {
	v, err := s.vendors.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, "", err
	}
	return s.GenerateTemplate(v.Tier)
}

// ExportVendor exports one vendor at its own tier.
func (s *Service) ExportVendor(ctx context.Context, vendorID string, opts spreadsheet.ExportOptions) ([]byte, string, error) {
	v, err := s.vendors.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, "", err
	}
	data, err := s.generator.Export([]vendor.Vendor{*v}, v.Tier, opts)
	if err != nil {
		return nil, "", fmt.Errorf("export vendor: %w", err)
	}
	t := v.Tier
	return data, spreadsheet.GenerateFilename(v.Name(), &t, s.now()), nil
}

// ExportVendors exports several vendors with the columns of tier t.
func (s *Service) ExportVendors(ctx context.Context, ids []string, t tier.Level, opts spreadsheet.ExportOptions) ([]byte, string, error) {
	vs, err := s.vendors.ListVendors(ctx, ids)
	if err != nil {
		return nil, "", fmt.Errorf("list vendors: %w", err)
	}
	t = t.Normalize()
	data, err := s.generator.Export(vs, t, opts)
	if err != nil {
		return nil, "", fmt.Errorf("export vendors: %w", err)
	}
	return data, spreadsheet.GenerateFilename("", &t, s.now()), nil
}

// VendorView is the tier-aware projection of a vendor profile.
type VendorView struct {
	ID            string            `json:"id"`
	Tier          tier.Level        `json:"tier"`
	Data          map[string]any    `json:"data"`
	Locations     []vendor.Location `json:"locations"`
	LocationLimit int               `json:"locationLimit"`
	LockedFields  []string          `json:"lockedFields"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// VendorView returns a vendor with fields above its tier stripped and the
// computed fields added.
func (s *Service) VendorView(ctx context.Context, vendorID string) (*VendorView, error) {
	v, err := s.vendors.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	view := s.view(s.computed.EnrichVendor(s.stripped(*v)))
	return &view, nil
}

// VendorViews is VendorView for every vendor among ids that exists.
func (s *Service) VendorViews(ctx context.Context, ids []string) ([]VendorView, error) {
	vs, err := s.vendors.ListVendors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	for i := range vs {
		vs[i] = s.stripped(vs[i])
	}
	enriched := s.computed.EnrichVendors(vs)

	views := make([]VendorView, len(enriched))
	for i, v := range enriched {
		views[i] = s.view(v)
	}
	return views, nil
}

// stripped drops the values above v's tier. Enrichment runs afterwards so
// computed fields only derive from data the vendor may see.
func (s *Service) stripped(v vendor.Vendor) vendor.Vendor {
	v.Values = s.tiers.StripInaccessible(v.Tier, v.Values)
	return v
}

func (s *Service) view(v vendor.Vendor) VendorView {
	locations := v.Locations
	if locations == nil {
		locations = []vendor.Location{}
	}
	return VendorView{
		ID:            v.ID,
		Tier:          v.Tier,
		Data:          v.Values,
		Locations:     locations,
		LocationLimit: s.tiers.Policy().LocationLimit(v.Tier),
		LockedFields:  fields.Names(s.registry.LockedFieldsForTier(v.Tier)),
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}
