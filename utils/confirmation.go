package utils

import (
	"strings"

	"github.com/google/uuid"
)

// ConfirmationNumber returns a short human-readable booking reference.
func ConfirmationNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BK-" + strings.ToUpper(raw[:10])
}
