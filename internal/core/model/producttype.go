package model

import (
	"fmt"
	"strings"
)

// ProductType is the closed set of catalogue products the service can query.
type ProductType int

const (
	Sentinel2L2A ProductType = iota + 1
	Sentinel3OLCIL1EFR
	Sentinel3SLSTRL1RBT
	Sentinel1GRD
)

// ProductTypeSpec describes how a product type is selected in the catalogue.
type ProductTypeSpec struct {
	Key          string
	DisplayName  string
	Collection   string
	NamePattern  string
	ProductType  string
	Instrument   string
	Description  string
	RequiresTile bool
}

func (t ProductType) Spec() ProductTypeSpec {
	switch t {
	case Sentinel2L2A:
		return ProductTypeSpec{
			Key:          "sentinel2_l2a",
			DisplayName:  "Sentinel-2 L2A",
			Collection:   "SENTINEL-2",
			NamePattern:  "MSIL2A",
			ProductType:  "S2MSI2A",
			Instrument:   "MSI",
			Description:  "MSI Level-2A Bottom of Atmosphere Reflectance",
			RequiresTile: true,
		}
	case Sentinel3OLCIL1EFR:
		return ProductTypeSpec{
			Key:         "sentinel3_olci_l1_efr",
			DisplayName: "Sentinel-3 OLCI L1 EFR",
			Collection:  "SENTINEL-3",
			NamePattern: "OL_1_EFR___",
			ProductType: "OL_1_EFR___",
			Instrument:  "OLCI",
			Description: "OLCI Level-1 Full Resolution",
		}
	case Sentinel3SLSTRL1RBT:
		return ProductTypeSpec{
			Key:         "sentinel3_slstr_l1_rbt",
			DisplayName: "Sentinel-3 SLSTR L1 RBT",
			Collection:  "SENTINEL-3",
			NamePattern: "SL_1_RBT___",
			ProductType: "SL_1_RBT___",
			Instrument:  "SLSTR",
			Description: "SLSTR Level-1 Radiances and Brightness Temperatures",
		}
	case Sentinel1GRD:
		return ProductTypeSpec{
			Key:         "sentinel1_grd",
			DisplayName: "Sentinel-1 GRD",
			Collection:  "SENTINEL-1",
			NamePattern: "GRD",
			ProductType: "GRD",
			Instrument:  "SAR",
			Description: "SAR Ground Range Detected",
		}
	default:
		return ProductTypeSpec{}
	}
}

func (t ProductType) String() string {
	if s := t.Spec().Key; s != "" {
		return s
	}
	return fmt.Sprintf("ProductType(%d)", int(t))
}

func (t ProductType) Valid() bool {
	return t.Spec().Key != ""
}

// ProductTypes lists every known product type in display order.
func ProductTypes() []ProductType {
	return []ProductType{Sentinel2L2A, Sentinel3OLCIL1EFR, Sentinel3SLSTRL1RBT, Sentinel1GRD}
}

// ParseProductType resolves a product type key such as "sentinel2_l2a".
func ParseProductType(key string) (ProductType, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	for _, t := range ProductTypes() {
		if t.Spec().Key == k {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown product type %q", ErrInvalidInput, key)
}
