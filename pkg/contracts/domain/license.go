package domain

import (
	"time"
)

// LicenseTimeLayout is the timestamp layout used by the license registry.
const LicenseTimeLayout = "2006-01-02 15:04:05"

// LicenseRecord is one entry of the license registry.
type LicenseRecord struct {
	Codigo      string `json:"Codigo"`
	Activo      bool   `json:"Activo"`
	Creada      string `json:"Creada,omitempty"`
	Descripcion string `json:"Descripcion,omitempty"`
	Modificada  string `json:"Modificada,omitempty"`
}

// LicenseRegistry is the registry document: a flat list of records.
type LicenseRegistry struct {
	Licencias []LicenseRecord `json:"Licencias"`
}

// Find returns the first record with the given code.
func (r *LicenseRegistry) Find(code string) (*LicenseRecord, bool) {
	for i := range r.Licencias {
		if r.Licencias[i].Codigo == code {
			return &r.Licencias[i], true
		}
	}
	return nil, false
}

// LocalLicense is the locally saved license code. Validity is never stored.
type LocalLicense struct {
	LicenseCode string `json:"license_code"`
	SavedDate   string `json:"saved_date"`
}

// LicenseState is the state of the license gate.
type LicenseState string

const (
	LicenseStateUnlicensed LicenseState = "UNLICENSED"
	LicenseStateLicensed   LicenseState = "LICENSED"
)

// LicenseStatus is the outcome of one license check.
type LicenseStatus struct {
	State     LicenseState `json:"state"`
	Valid     bool         `json:"valid"`
	Message   string       `json:"message"`
	Detail    string       `json:"detail,omitempty"`
	Code      string       `json:"code,omitempty"`
	CheckedAt time.Time    `json:"checked_at"`
}

// ActivationRequest is the payload used to activate a license code.
type ActivationRequest struct {
	Code string `json:"code" validate:"required,min=4,max=64"`
}
