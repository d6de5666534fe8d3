package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores when an entity does not exist
var ErrNotFound = errors.New("entity not found")

// StatusActive is the status value that makes contracts, appendices and
// lines visible to the coverage engine. Status is free-form otherwise.
const StatusActive = "active"

// Client represents a customer owning contracts
type Client struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product is a sellable item referenced by contract lines
type Product struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Contract is the top-level agreement with a client. It carries default
// warranty terms used as a template when lines are created; the coverage
// engine reads warranty terms from the selected line only.
type Contract struct {
	ID                     int64     `json:"id"`
	ClientID               int64     `json:"client_id"`
	Name                   string    `json:"name"`
	StartDate              time.Time `json:"start_date"`
	EndDate                time.Time `json:"end_date"`
	Status                 string    `json:"status"`
	WarrantyStartRule      string    `json:"warranty_start_rule"`
	WarrantyDurationMonths int       `json:"warranty_duration_months"`
	WarrantyOptions        []string  `json:"warranty_options"`
	OutOfWarrantyOptions   []string  `json:"out_of_warranty_options"`

	// Loaded by the store for decision evaluation
	Appendices []*Appendix `json:"appendices,omitempty"`
}

// Appendix is a dated sub-scope of a contract
type Appendix struct {
	ID         int64     `json:"id"`
	ContractID int64     `json:"contract_id"`
	Name       string    `json:"name"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Status     string    `json:"status"`

	// Loaded by the store for decision evaluation
	Lines []*ContractLine `json:"lines,omitempty"`
}

// ContractLine is a per-product warranty specification within an appendix.
// At most one line exists per (appendix, product) pair.
type ContractLine struct {
	ID                     int64     `json:"id"`
	AppendixID             int64     `json:"appendix_id"`
	ProductID              int64     `json:"product_id"`
	StartDate              time.Time `json:"start_date"`
	EndDate                time.Time `json:"end_date"`
	Status                 string    `json:"status"`
	WarrantyStartRule      string    `json:"warranty_start_rule"`
	WarrantyDurationMonths int       `json:"warranty_duration_months"`
	WarrantyOptions        []string  `json:"warranty_options"`
	OutOfWarrantyOptions   []string  `json:"out_of_warranty_options"`
	RequiredInputs         []string  `json:"required_inputs"`
}

// Covers reports whether date falls within the contract window, inclusive
// on both ends
func (c *Contract) Covers(date time.Time) bool {
	return withinWindow(date, c.StartDate, c.EndDate)
}

// Covers reports whether date falls within the appendix window
func (a *Appendix) Covers(date time.Time) bool {
	return withinWindow(date, a.StartDate, a.EndDate)
}

// Covers reports whether date falls within the line window
func (l *ContractLine) Covers(date time.Time) bool {
	return withinWindow(date, l.StartDate, l.EndDate)
}

func withinWindow(date, start, end time.Time) bool {
	return !date.Before(start) && !date.After(end)
}
