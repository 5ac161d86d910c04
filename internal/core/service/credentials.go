package service

import (
	"github.com/cabinet-comptable/backoffice/internal/core/authz"
	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

const (
	emptyDisplay  = "-"
	maskedDisplay = "••••••••"
)

// RenderSecret decides how a credential value is shown to role. Without
// credential access the value is masked whatever the reveal toggle says.
func RenderSecret(eval *authz.Evaluator, role domain.Role, value string, revealed bool) domain.FieldView {
	if value == "" {
		return domain.FieldView{Display: emptyDisplay}
	}
	if !eval.Capabilities(role).SecretFieldAccess() {
		return domain.FieldView{Display: maskedDisplay, Masked: true}
	}
	if !revealed {
		return domain.FieldView{Display: maskedDisplay, Masked: true, Revealable: true}
	}
	return domain.FieldView{Display: value, Revealable: true, Copyable: true}
}
