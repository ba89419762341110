package dto

import "github.com/shopspring/decimal"

// PharmacyMedicinesRequest lists one pharmacy's medicines. Pharmacists may
// omit PharmacyID to mean their own pharmacy.
type PharmacyMedicinesRequest struct {
	PharmacyID int64 `param:"pharmacyId" validate:"gte=0"`
}

type SearchMedicinesRequest struct {
	Query      string `param:"query" validate:"max=255"`
	PharmacyID int64  `param:"pharmacyId" validate:"gte=0"`
}

type CreateMedicineRequest struct {
	BrandName   string           `param:"brandName" validate:"required,max=255"`
	GenericName string           `param:"genericName" validate:"max=255"`
	Dosage      string           `param:"dosage" validate:"max=100"`
	DosageForm  string           `param:"dosageForm" validate:"max=100"`
	Price       *decimal.Decimal `param:"price" validate:"required"`
	Quantity    *int             `param:"quantity" validate:"required,gte=0"`
	Category    string           `param:"category" validate:"max=100"`
	Status      string           `param:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

type UpdateMedicineRequest struct {
	MedicineID  int64            `param:"medicineId" validate:"required,gt=0"`
	BrandName   *string          `param:"brandName" validate:"omitempty,min=1,max=255"`
	GenericName *string          `param:"genericName" validate:"omitempty,max=255"`
	Dosage      *string          `param:"dosage" validate:"omitempty,max=100"`
	DosageForm  *string          `param:"dosageForm" validate:"omitempty,max=100"`
	Price       *decimal.Decimal `param:"price"`
	Quantity    *int             `param:"quantity" validate:"omitempty,gte=0"`
	Category    *string          `param:"category" validate:"omitempty,max=100"`
	Status      *string          `param:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

type MedicineIDRequest struct {
	MedicineID int64 `param:"medicineId" validate:"required,gt=0"`
}
