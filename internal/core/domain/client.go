package domain

import (
	"strings"
	"time"
)

// ClientStatus is the lifecycle state of a managed client.
type ClientStatus string

const (
	ClientActive    ClientStatus = "Actif"
	ClientInactive  ClientStatus = "Inactif"
	ClientSuspended ClientStatus = "Suspendu"
)

// Valid reports whether s is one of the known statuses.
func (s ClientStatus) Valid() bool {
	switch s {
	case ClientActive, ClientInactive, ClientSuspended:
		return true
	}
	return false
}

// ClientType is the legal form of a client.
type ClientType string

const (
	ClientSARL        ClientType = "SARL"
	ClientSA          ClientType = "SA"
	ClientSNC         ClientType = "SNC"
	ClientAutoEntrep  ClientType = "Auto-entrepreneur"
	ClientParticulier ClientType = "Particulier"
)

// Valid reports whether t is one of the known legal forms.
func (t ClientType) Valid() bool {
	switch t {
	case ClientSARL, ClientSA, ClientSNC, ClientAutoEntrep, ClientParticulier:
		return true
	}
	return false
}

// Credential field names, used as reveal keys and audit details.
const (
	SecretDGIPassword      = "mot_de_passe_dgi"
	SecretDAMANCOMPassword = "mot_de_passe_damancom"
)

// Address groups the contact location of a client.
type Address struct {
	Adresse    string `json:"adresse" bson:"adresse"`
	Ville      string `json:"ville" bson:"ville"`
	CodePostal string `json:"code_postal" bson:"code_postal"`
}

// LegalIDs groups the fiscal and registry identifiers of a client.
type LegalIDs struct {
	IdentifiantFiscal string `json:"identifiant_fiscal" bson:"identifiant_fiscal"`
	NumeroRC          string `json:"numero_rc" bson:"numero_rc"`
	ICE               string `json:"ice" bson:"ice,omitempty"`
}

// Credentials holds the tax-portal (DGI) and social-security (DAMANCOM)
// logins of a client. Passwords are sealed before they leave the service.
type Credentials struct {
	IdentifiantDGI      string `json:"identifiant_dgi" bson:"identifiant_dgi"`
	MotDePasseDGI       string `json:"mot_de_passe_dgi" bson:"mot_de_passe_dgi"`
	IdentifiantDAMANCOM string `json:"identifiant_damancom" bson:"identifiant_damancom"`
	MotDePasseDAMANCOM  string `json:"mot_de_passe_damancom" bson:"mot_de_passe_damancom"`
}

// Client is the aggregate root of the client book.
type Client struct {
	ID            string       `json:"id" bson:"_id"`
	NomCommercial string       `json:"nom_commercial" bson:"nom_commercial"`
	RaisonSociale string       `json:"raison_sociale" bson:"raison_sociale"`
	TypeClient    ClientType   `json:"type_client" bson:"type_client"`
	Statut        ClientStatus `json:"statut" bson:"statut"`
	Email         string       `json:"email" bson:"email"`
	Telephone     string       `json:"telephone" bson:"telephone"`
	Address       Address      `json:"address" bson:"address"`
	Legal         LegalIDs     `json:"legal" bson:"legal"`
	Credentials   Credentials  `json:"credentials" bson:"credentials"`
	Notes         string       `json:"notes" bson:"notes"`
	CreatedBy     string       `json:"created_by" bson:"created_by"`
	CreatedAt     time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" bson:"updated_at"`
}

// Matches reports whether term is a case-insensitive substring of the
// commercial name or the company name. An empty term matches everything.
func (c *Client) Matches(term string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	return strings.Contains(strings.ToLower(c.NomCommercial), needle) ||
		strings.Contains(strings.ToLower(c.RaisonSociale), needle)
}

// ClientInput is the full field set submitted by the client form.
type ClientInput struct {
	NomCommercial string
	RaisonSociale string
	TypeClient    ClientType
	Statut        ClientStatus
	Email         string
	Telephone     string
	Address       Address
	Legal         LegalIDs
	Credentials   Credentials
	Notes         string
}

// Validate enforces the invariants a client must satisfy before it reaches
// the store.
func (in ClientInput) Validate() error {
	if strings.TrimSpace(in.NomCommercial) == "" {
		return Invalid("nom_commercial", "is required")
	}
	if in.TypeClient != "" && !in.TypeClient.Valid() {
		return Invalid("type_client", "is not a known client type")
	}
	if in.Statut != "" && !in.Statut.Valid() {
		return Invalid("statut", "must be one of Actif, Inactif, Suspendu")
	}
	return nil
}

// ClientPatch carries an update. Nil fields are left unchanged.
type ClientPatch struct {
	NomCommercial       *string
	RaisonSociale       *string
	TypeClient          *ClientType
	Statut              *ClientStatus
	Email               *string
	Telephone           *string
	Adresse             *string
	Ville               *string
	CodePostal          *string
	IdentifiantFiscal   *string
	NumeroRC            *string
	ICE                 *string
	IdentifiantDGI      *string
	MotDePasseDGI       *string
	IdentifiantDAMANCOM *string
	MotDePasseDAMANCOM  *string
	Notes               *string
}

// Apply copies every non-nil field of p onto c and validates the result.
// c is left untouched when validation fails.
func (p ClientPatch) Apply(c *Client) error {
	next := *c
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&next.NomCommercial, p.NomCommercial)
	set(&next.RaisonSociale, p.RaisonSociale)
	set(&next.Email, p.Email)
	set(&next.Telephone, p.Telephone)
	set(&next.Address.Adresse, p.Adresse)
	set(&next.Address.Ville, p.Ville)
	set(&next.Address.CodePostal, p.CodePostal)
	set(&next.Legal.IdentifiantFiscal, p.IdentifiantFiscal)
	set(&next.Legal.NumeroRC, p.NumeroRC)
	set(&next.Legal.ICE, p.ICE)
	set(&next.Credentials.IdentifiantDGI, p.IdentifiantDGI)
	set(&next.Credentials.MotDePasseDGI, p.MotDePasseDGI)
	set(&next.Credentials.IdentifiantDAMANCOM, p.IdentifiantDAMANCOM)
	set(&next.Credentials.MotDePasseDAMANCOM, p.MotDePasseDAMANCOM)
	set(&next.Notes, p.Notes)
	if p.TypeClient != nil {
		next.TypeClient = *p.TypeClient
	}
	if p.Statut != nil {
		next.Statut = *p.Statut
	}

	in := ClientInput{NomCommercial: next.NomCommercial, TypeClient: next.TypeClient, Statut: next.Statut}
	if err := in.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// TouchesCredentials reports whether the patch changes a password.
func (p ClientPatch) TouchesCredentials() bool {
	return p.MotDePasseDGI != nil || p.MotDePasseDAMANCOM != nil
}
