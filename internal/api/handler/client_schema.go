package handler

import (
	"time"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

// --- Request / Response types ---

type clientRequest struct {
	NomCommercial       string `json:"nom_commercial"        validate:"required"`
	RaisonSociale       string `json:"raison_sociale"`
	TypeClient          string `json:"type_client"`
	Statut              string `json:"statut"`
	Email               string `json:"email"                 validate:"omitempty,email"`
	Telephone           string `json:"telephone"`
	Adresse             string `json:"adresse"`
	Ville               string `json:"ville"`
	CodePostal          string `json:"code_postal"`
	IdentifiantFiscal   string `json:"identifiant_fiscal"`
	NumeroRC            string `json:"numero_rc"`
	ICE                 string `json:"ice"`
	IdentifiantDGI      string `json:"identifiant_dgi"`
	MotDePasseDGI       string `json:"mot_de_passe_dgi"`
	IdentifiantDAMANCOM string `json:"identifiant_damancom"`
	MotDePasseDAMANCOM  string `json:"mot_de_passe_damancom"`
	Notes               string `json:"notes"`
}

type clientPatchRequest struct {
	NomCommercial       *string `json:"nom_commercial"`
	RaisonSociale       *string `json:"raison_sociale"`
	TypeClient          *string `json:"type_client"`
	Statut              *string `json:"statut"`
	Email               *string `json:"email"  validate:"omitempty,email"`
	Telephone           *string `json:"telephone"`
	Adresse             *string `json:"adresse"`
	Ville               *string `json:"ville"`
	CodePostal          *string `json:"code_postal"`
	IdentifiantFiscal   *string `json:"identifiant_fiscal"`
	NumeroRC            *string `json:"numero_rc"`
	ICE                 *string `json:"ice"`
	IdentifiantDGI      *string `json:"identifiant_dgi"`
	MotDePasseDGI       *string `json:"mot_de_passe_dgi"`
	IdentifiantDAMANCOM *string `json:"identifiant_damancom"`
	MotDePasseDAMANCOM  *string `json:"mot_de_passe_damancom"`
	Notes               *string `json:"notes"`
}

// clientResponse never carries password values.
type clientResponse struct {
	ID                  string              `json:"id"`
	NomCommercial       string              `json:"nom_commercial"`
	RaisonSociale       string              `json:"raison_sociale"`
	TypeClient          domain.ClientType   `json:"type_client" swaggertype:"string"`
	Statut              domain.ClientStatus `json:"statut" swaggertype:"string"`
	Email               string              `json:"email"`
	Telephone           string              `json:"telephone"`
	Adresse             string              `json:"adresse"`
	Ville               string              `json:"ville"`
	CodePostal          string              `json:"code_postal"`
	IdentifiantFiscal   string              `json:"identifiant_fiscal"`
	NumeroRC            string              `json:"numero_rc"`
	ICE                 string              `json:"ice"`
	IdentifiantDGI      string              `json:"identifiant_dgi"`
	IdentifiantDAMANCOM string              `json:"identifiant_damancom"`
	Notes               string              `json:"notes"`
	CreatedBy           string              `json:"created_by"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
	Links               clientLinks         `json:"_links"`
}

type clientLinks struct {
	Self        string `json:"self"`
	Credentials string `json:"credentials"`
}

type clientListResponse struct {
	Items []clientResponse `json:"items"`
	Total int              `json:"total"`
}
