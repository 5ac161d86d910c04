package domain

// FieldView is how a secret field is presented to a given role.
type FieldView struct {
	Display    string `json:"display"`
	Masked     bool   `json:"masked"`
	Revealable bool   `json:"revealable"`
	Copyable   bool   `json:"copyable"`
}

// RevealState records which secret fields the caller toggled visible. It is
// owned by the caller for the lifetime of one screen or request and is never
// persisted.
type RevealState map[string]bool

// RevealKey identifies one field of one entity.
func RevealKey(entityID, field string) string {
	return entityID + "/" + field
}

// Toggle flips the visibility of a field and returns the new state.
func (s RevealState) Toggle(entityID, field string) bool {
	k := RevealKey(entityID, field)
	s[k] = !s[k]
	return s[k]
}

// Revealed reports whether the field is currently toggled visible.
func (s RevealState) Revealed(entityID, field string) bool {
	return s[RevealKey(entityID, field)]
}

// ClientCredentialsView is the credential card of one client.
type ClientCredentialsView struct {
	ClientID            string    `json:"client_id"`
	NomCommercial       string    `json:"nom_commercial"`
	IdentifiantDGI      string    `json:"identifiant_dgi"`
	MotDePasseDGI       FieldView `json:"mot_de_passe_dgi"`
	IdentifiantDAMANCOM string    `json:"identifiant_damancom"`
	MotDePasseDAMANCOM  FieldView `json:"mot_de_passe_damancom"`
}
