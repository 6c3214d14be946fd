package cmd

import (
	"errors"
	"fmt"

	"github.com/giantswarm/essay-feedback/internal/apperror"
)

// userMessage renders err as the single line shown to the user.
func userMessage(err error) string {
	switch apperror.KindOf(err) {
	case apperror.KindFile, apperror.KindParse, apperror.KindValidation:
		msg := err.Error()
		var e *apperror.Error
		if errors.As(err, &e) && e.Message != "" {
			msg = e.Message
		}
		return fmt.Sprintf("Erro: %s.", msg)
	case apperror.KindBackend:
		return fmt.Sprintf("Erro na chamada ao modelo: %s.", err)
	default:
		return fmt.Sprintf("Erro inesperado: %s.", err)
	}
}
