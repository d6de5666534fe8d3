package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/covera-io/covera/internal/domain"
)

//go:embed fixture.yaml
var defaultFixture []byte

// Fixture is a YAML-described demo dataset. Date fields are offsets in
// days relative to the day the fixture is applied, so a seeded database
// always contains a live contract with recent KPI rows.
type Fixture struct {
	Client   ClientFixture    `yaml:"client"`
	Products []ProductFixture `yaml:"products"`
	Contract ContractFixture  `yaml:"contract"`
	Appendix AppendixFixture  `yaml:"appendix"`
	Lines    []LineFixture    `yaml:"lines"`
	KPI      KPIFixture       `yaml:"kpi"`
}

// ClientFixture describes the seeded client
type ClientFixture struct {
	Name string `yaml:"name"`
}

// ProductFixture describes one seeded product
type ProductFixture struct {
	Name string `yaml:"name"`
}

// ContractFixture describes the seeded contract
type ContractFixture struct {
	Name                   string   `yaml:"name"`
	StartOffsetDays        int      `yaml:"start_offset_days"`
	EndOffsetDays          int      `yaml:"end_offset_days"`
	Status                 string   `yaml:"status"`
	WarrantyStartRule      string   `yaml:"warranty_start_rule"`
	WarrantyDurationMonths int      `yaml:"warranty_duration_months"`
	WarrantyOptions        []string `yaml:"warranty_options"`
	OutOfWarrantyOptions   []string `yaml:"out_of_warranty_options"`
}

// AppendixFixture describes the seeded appendix. It spans the contract
// window.
type AppendixFixture struct {
	Name   string `yaml:"name"`
	Status string `yaml:"status"`
}

// LineFixture describes one seeded contract line, referencing its
// product by name. Lines span the contract window.
type LineFixture struct {
	Product                string   `yaml:"product"`
	Status                 string   `yaml:"status"`
	WarrantyStartRule      string   `yaml:"warranty_start_rule"`
	WarrantyDurationMonths int      `yaml:"warranty_duration_months"`
	WarrantyOptions        []string `yaml:"warranty_options"`
	OutOfWarrantyOptions   []string `yaml:"out_of_warranty_options"`
	RequiredInputs         []string `yaml:"required_inputs"`
}

// KPIFixture describes seeded daily KPI rows
type KPIFixture struct {
	StartOffsetDays int             `yaml:"start_offset_days"`
	Days            int             `yaml:"days"`
	Series          []SeriesFixture `yaml:"series"`
}

// SeriesFixture holds one KPI type's per-day expected and actual values
type SeriesFixture struct {
	KPIType  string `yaml:"kpi_type"`
	Expected []int  `yaml:"expected"`
	Actual   []int  `yaml:"actual"`
}

// Load reads a fixture from a YAML file
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Default returns the embedded demo fixture
func Default() (*Fixture, error) {
	return Parse(defaultFixture)
}

// Parse decodes fixture YAML. Unknown fields fail the decode so typos
// in hand-written fixtures surface immediately.
func Parse(data []byte) (*Fixture, error) {
	var fixture Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fixture); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	if err := Validate(&fixture); err != nil {
		return nil, err
	}
	return &fixture, nil
}

// Validate checks fixture consistency before anything touches the store
func Validate(f *Fixture) error {
	if f.Client.Name == "" {
		return fmt.Errorf("fixture: client name is required")
	}
	if len(f.Products) == 0 {
		return fmt.Errorf("fixture: at least one product is required")
	}

	products := make(map[string]bool, len(f.Products))
	for _, p := range f.Products {
		if p.Name == "" {
			return fmt.Errorf("fixture: product name is required")
		}
		products[p.Name] = true
	}

	if f.Contract.Name == "" {
		return fmt.Errorf("fixture: contract name is required")
	}
	if f.Contract.EndOffsetDays < f.Contract.StartOffsetDays {
		return fmt.Errorf("fixture: contract window ends before it starts")
	}

	for i, line := range f.Lines {
		if !products[line.Product] {
			return fmt.Errorf("fixture: line %d references unknown product %q", i, line.Product)
		}
	}

	if f.KPI.Days < 0 {
		return fmt.Errorf("fixture: kpi days must not be negative")
	}
	for _, s := range f.KPI.Series {
		if !domain.KPIType(s.KPIType).IsValid() {
			return fmt.Errorf("fixture: unknown kpi_type %q", s.KPIType)
		}
		if len(s.Expected) != f.KPI.Days || len(s.Actual) != f.KPI.Days {
			return fmt.Errorf("fixture: series %s must carry %d expected and actual values", s.KPIType, f.KPI.Days)
		}
	}

	return nil
}
