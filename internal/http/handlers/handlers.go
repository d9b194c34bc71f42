// Package handlers содержит HTTP-обработчики API.
package handlers

import (
	"errors"

	"github.com/google/uuid"
)

var errInvalidUUID = errors.New("неверный формат UUID")

// parseUUID разбирает UUID из тела запроса с единообразной ошибкой.
func parseUUID(raw string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errInvalidUUID
	}
	return parsed, nil
}
