package models

// RepairDataset is the raw work-order export of the repair shop.
type RepairDataset struct {
	Works []WorkOrder `json:"reparacoes" yaml:"reparacoes" validate:"required,dive"`
}

// WorkOrder is one denormalized repair record.
type WorkOrder struct {
	NIF           Key            `json:"nif" yaml:"nif" validate:"required"`
	Name          string         `json:"nome" yaml:"nome" validate:"required"`
	Date          string         `json:"data" yaml:"data" validate:"required"`
	Vehicle       *VehicleInfo   `json:"viatura" yaml:"viatura" validate:"required"`
	Interventions []Intervention `json:"intervencoes" yaml:"intervencoes" validate:"required,dive"`
}

// VehicleInfo is the vehicle embedded in a work order.
type VehicleInfo struct {
	Plate Key    `json:"matricula" yaml:"matricula" validate:"required"`
	Brand string `json:"marca" yaml:"marca" validate:"required"`
	Model string `json:"modelo" yaml:"modelo" validate:"required"`
}

// Intervention is one operation performed during a work order.
type Intervention struct {
	Code        Key    `json:"codigo" yaml:"codigo" validate:"required"`
	Name        string `json:"nome" yaml:"nome" validate:"required"`
	Description string `json:"descricao" yaml:"descricao" validate:"required"`
}

// RepairDocument is the normalized repair dataset.
type RepairDocument struct {
	Clients    []*Client    `json:"clients" yaml:"clients"`
	Vehicles   []*Vehicle   `json:"vehicles" yaml:"vehicles"`
	Operations []*Operation `json:"operations" yaml:"operations"`
}

// Client is a customer identified by fiscal number.
type Client struct {
	Name          string        `json:"name" yaml:"name"`
	NIF           Key           `json:"nif" yaml:"nif"`
	RepairHistory []RepairEntry `json:"repair_history" yaml:"repair_history"`
}

// RepairEntry references the vehicle and operations of one visit.
type RepairEntry struct {
	Date          string `json:"date" yaml:"date"`
	Vehicle       Key    `json:"vehicle" yaml:"vehicle"`
	Interventions []Key  `json:"interventions" yaml:"interventions"`
}

// Vehicle is a car identified by license plate.
type Vehicle struct {
	Brand        string `json:"brand" yaml:"brand"`
	Model        string `json:"model" yaml:"model"`
	LicensePlate Key    `json:"license_plate" yaml:"license_plate"`
	Owners       []Key  `json:"owners" yaml:"owners"`
}

// Operation is a catalog entry identified by code.
type Operation struct {
	Code        Key    `json:"code" yaml:"code"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}
