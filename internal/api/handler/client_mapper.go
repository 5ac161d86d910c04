package handler

import (
	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

// --- Request → Service input ---

func toClientInput(r clientRequest) domain.ClientInput {
	return domain.ClientInput{
		NomCommercial: r.NomCommercial,
		RaisonSociale: r.RaisonSociale,
		TypeClient:    domain.ClientType(r.TypeClient),
		Statut:        domain.ClientStatus(r.Statut),
		Email:         r.Email,
		Telephone:     r.Telephone,
		Address: domain.Address{
			Adresse:    r.Adresse,
			Ville:      r.Ville,
			CodePostal: r.CodePostal,
		},
		Legal: domain.LegalIDs{
			IdentifiantFiscal: r.IdentifiantFiscal,
			NumeroRC:          r.NumeroRC,
			ICE:               r.ICE,
		},
		Credentials: domain.Credentials{
			IdentifiantDGI:      r.IdentifiantDGI,
			MotDePasseDGI:       r.MotDePasseDGI,
			IdentifiantDAMANCOM: r.IdentifiantDAMANCOM,
			MotDePasseDAMANCOM:  r.MotDePasseDAMANCOM,
		},
		Notes: r.Notes,
	}
}

func toClientPatch(r clientPatchRequest) domain.ClientPatch {
	p := domain.ClientPatch{
		NomCommercial:       r.NomCommercial,
		RaisonSociale:       r.RaisonSociale,
		Email:               r.Email,
		Telephone:           r.Telephone,
		Adresse:             r.Adresse,
		Ville:               r.Ville,
		CodePostal:          r.CodePostal,
		IdentifiantFiscal:   r.IdentifiantFiscal,
		NumeroRC:            r.NumeroRC,
		ICE:                 r.ICE,
		IdentifiantDGI:      r.IdentifiantDGI,
		MotDePasseDGI:       r.MotDePasseDGI,
		IdentifiantDAMANCOM: r.IdentifiantDAMANCOM,
		MotDePasseDAMANCOM:  r.MotDePasseDAMANCOM,
		Notes:               r.Notes,
	}
	if r.TypeClient != nil {
		t := domain.ClientType(*r.TypeClient)
		p.TypeClient = &t
	}
	if r.Statut != nil {
		s := domain.ClientStatus(*r.Statut)
		p.Statut = &s
	}
	return p
}

// --- Service result → HTTP response ---

func toClientResponse(c *domain.Client) clientResponse {
	return clientResponse{
		ID:                  c.ID,
		NomCommercial:       c.NomCommercial,
		RaisonSociale:       c.RaisonSociale,
		TypeClient:          c.TypeClient,
		Statut:              c.Statut,
		Email:               c.Email,
		Telephone:           c.Telephone,
		Adresse:             c.Address.Adresse,
		Ville:               c.Address.Ville,
		CodePostal:          c.Address.CodePostal,
		IdentifiantFiscal:   c.Legal.IdentifiantFiscal,
		NumeroRC:            c.Legal.NumeroRC,
		ICE:                 c.Legal.ICE,
		IdentifiantDGI:      c.Credentials.IdentifiantDGI,
		IdentifiantDAMANCOM: c.Credentials.IdentifiantDAMANCOM,
		Notes:               c.Notes,
		CreatedBy:           c.CreatedBy,
		CreatedAt:           c.CreatedAt.UTC(),
		UpdatedAt:           c.UpdatedAt.UTC(),
		Links: clientLinks{
			Self:        "/v1/clients/" + c.ID,
			Credentials: "/v1/clients/" + c.ID + "/credentials",
		},
	}
}

func toClientList(clients []*domain.Client) clientListResponse {
	items := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		items = append(items, toClientResponse(c))
	}
	return clientListResponse{Items: items, Total: len(items)}
}
