package service

import (
	"context"
	"encoding/json"
	"time"

	"paycompliance/internal/contextutil"
	"paycompliance/internal/model"
	"paycompliance/internal/repository"
	"paycompliance/internal/taxtable"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- DTOs ---

type TaxTableSummary struct {
	Country        string `json:"country"`
	Year           int    `json:"year"`
	Currency       string `json:"currency"`
	Payroll        bool   `json:"payroll"`
	OvertimeMethod string `json:"overtime_method"`
}

type TaxTablesResponse struct {
	Source   string            `json:"source"`
	LoadedAt string            `json:"loaded_at"`
	Tables   []TaxTableSummary `json:"tables"`
}

// --- Interface ---

// TaxTableRegistry is satisfied by *taxtable.Registry.
type TaxTableRegistry interface {
	Table(country string, year int) (*taxtable.Table, error)
	Keys() []taxtable.Key
	Reload() error
	LoadedAt() (time.Time, string)
}

type TaxTableService interface {
	List(ctx context.Context) (TaxTablesResponse, error)
	Get(ctx context.Context, country string, year int) (*taxtable.Table, error)
	Reload(ctx context.Context, userID string) (TaxTablesResponse, error)
}

type taxTableService struct {
	registry TaxTableRegistry
	audit    repository.AuditRepository
	logger   *zap.Logger
}

func NewTaxTableService(registry TaxTableRegistry, audit repository.AuditRepository, logger *zap.Logger) TaxTableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &taxTableService{registry: registry, audit: audit, logger: logger.Named("taxtable")}
}

// --- Implementation ---

func (s *taxTableService) List(ctx context.Context) (TaxTablesResponse, error) {
	loadedAt, source := s.registry.LoadedAt()
	res := TaxTablesResponse{
		Source:   source,
		LoadedAt: loadedAt.UTC().Format(time.RFC3339),
		Tables:   []TaxTableSummary{},
	}
	for _, k := range s.registry.Keys() {
		t, err := s.registry.Table(k.Country, k.Year)
		if err != nil {
			return TaxTablesResponse{}, err
		}
		res.Tables = append(res.Tables, TaxTableSummary{
			Country:        t.Country,
			Year:           t.Year,
			Currency:       t.Currency,
			Payroll:        t.HasPayroll(),
			OvertimeMethod: t.Overtime.Method,
		})
	}
	return res, nil
}

func (s *taxTableService) Get(ctx context.Context, country string, year int) (*taxtable.Table, error) {
	return s.registry.Table(country, year)
}

// Reload swaps in a freshly loaded table set. A failed reload leaves the
// active set untouched.
func (s *taxTableService) Reload(ctx context.Context, userID string) (TaxTablesResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if err := s.registry.Reload(); err != nil {
		log.Error("tax table reload failed", zap.Error(err))
		return TaxTablesResponse{}, err
	}

	res, err := s.List(ctx)
	if err != nil {
		return TaxTablesResponse{}, err
	}
	log.Info("tax tables reloaded", zap.String("source", res.Source), zap.Int("tables", len(res.Tables)))

	var actor *uuid.UUID
	if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
		actor = &parsed
	}
	details, _ := json.Marshal(map[string]interface{}{
		"source": res.Source,
		"tables": len(res.Tables),
	})
	entry := model.AuditLog{
		UserID:     actor,
		Action:     model.ActionReloadTaxTables,
		EntityID:   res.Source,
		EntityName: "tax_tables",
		Details:    string(details),
	}
	if auditErr := s.audit.Log(ctx, &entry); auditErr != nil {
		log.Warn("failed to audit tax table reload", zap.Error(auditErr))
	}

	return res, nil
}
