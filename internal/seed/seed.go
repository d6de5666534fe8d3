package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/covera-io/covera/internal/domain"
	"github.com/covera-io/covera/internal/store"
	"github.com/covera-io/covera/pkg/logger"
)

// Seeder writes a fixture into the store
// ⭐ SSOT: 데모 데이터 적재는 이 시더에서만
type Seeder struct {
	catalog   *store.CatalogRepository
	contracts *store.ContractRepository
	kpiRepo   *store.KPIRepository
	logger    *logger.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(
	catalog *store.CatalogRepository,
	contracts *store.ContractRepository,
	kpiRepo *store.KPIRepository,
	log *logger.Logger,
) *Seeder {
	return &Seeder{
		catalog:   catalog,
		contracts: contracts,
		kpiRepo:   kpiRepo,
		logger:    log,
	}
}

// Apply writes the fixture, anchored at today. Seeding is idempotent:
// when any client already exists the store is assumed seeded and nothing
// is written.
func (s *Seeder) Apply(ctx context.Context, fixture *Fixture) error {
	seeded, err := s.catalog.AnyClient(ctx)
	if err != nil {
		return err
	}
	if seeded {
		s.logger.Info("Store already seeded, skipping")
		return nil
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)

	client := &domain.Client{Name: fixture.Client.Name}
	if err := s.catalog.CreateClient(ctx, client); err != nil {
		return err
	}

	productIDs := make(map[string]int64, len(fixture.Products))
	for _, p := range fixture.Products {
		product := &domain.Product{Name: p.Name}
		if err := s.catalog.CreateProduct(ctx, product); err != nil {
			return err
		}
		productIDs[p.Name] = product.ID
	}

	startDate := today.AddDate(0, 0, fixture.Contract.StartOffsetDays)
	endDate := today.AddDate(0, 0, fixture.Contract.EndOffsetDays)

	contract := &domain.Contract{
		ClientID:               client.ID,
		Name:                   fixture.Contract.Name,
		StartDate:              startDate,
		EndDate:                endDate,
		Status:                 fixture.Contract.Status,
		WarrantyStartRule:      fixture.Contract.WarrantyStartRule,
		WarrantyDurationMonths: fixture.Contract.WarrantyDurationMonths,
		WarrantyOptions:        fixture.Contract.WarrantyOptions,
		OutOfWarrantyOptions:   fixture.Contract.OutOfWarrantyOptions,
	}
	if err := s.contracts.CreateContract(ctx, contract); err != nil {
		return err
	}

	appendix := &domain.Appendix{
		ContractID: contract.ID,
		Name:       fixture.Appendix.Name,
		StartDate:  startDate,
		EndDate:    endDate,
		Status:     fixture.Appendix.Status,
	}
	if err := s.contracts.CreateAppendix(ctx, appendix); err != nil {
		return err
	}

	for _, lf := range fixture.Lines {
		line := &domain.ContractLine{
			AppendixID:             appendix.ID,
			ProductID:              productIDs[lf.Product],
			StartDate:              startDate,
			EndDate:                endDate,
			Status:                 lf.Status,
			WarrantyStartRule:      lf.WarrantyStartRule,
			WarrantyDurationMonths: lf.WarrantyDurationMonths,
			WarrantyOptions:        lf.WarrantyOptions,
			OutOfWarrantyOptions:   lf.OutOfWarrantyOptions,
			RequiredInputs:         lf.RequiredInputs,
		}
		if err := s.contracts.CreateLine(ctx, line); err != nil {
			return err
		}
	}

	kpiStart := today.AddDate(0, 0, fixture.KPI.StartOffsetDays)
	for _, series := range fixture.KPI.Series {
		kpiType := domain.KPIType(series.KPIType)
		for i := 0; i < fixture.KPI.Days; i++ {
			day := kpiStart.AddDate(0, 0, i)

			expected := &domain.KPIExpected{
				ContractID: contract.ID,
				KPIType:    kpiType,
				Date:       day,
				Value:      series.Expected[i],
			}
			if err := s.kpiRepo.UpsertExpected(ctx, expected); err != nil {
				return err
			}

			actual := &domain.KPIActual{
				ContractID: contract.ID,
				KPIType:    kpiType,
				Date:       day,
				Value:      series.Actual[i],
			}
			if err := s.kpiRepo.UpsertActual(ctx, actual); err != nil {
				return err
			}
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"client":   client.Name,
		"contract": fmt.Sprintf("%s (#%d)", contract.Name, contract.ID),
		"lines":    len(fixture.Lines),
		"kpi_days": fixture.KPI.Days,
	}).Info("Fixture applied")

	return nil
}
