package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/crewsheet/internal/common"
)

// DecodeContacts treats model output as untrusted: it validates strictly
// first, then retries once after normalizing and dropping invalid optional
// fields. Anything still off-contract is an ErrSchemaViolation.
func DecodeContacts(content []byte, logger *slog.Logger) (EnhanceResponse, []byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	content = bytes.TrimSpace(content)

	if err := ValidateContactsJSON(content); err != nil {
		normalized, changed, nErr := NormalizeAndSanitizeJSON(content, logger)
		if nErr != nil {
			logger.Error("llm.enhance.sanitize_failed", "error", nErr)
			return EnhanceResponse{}, content, fmt.Errorf("%w: %v", common.ErrSchemaViolation, nErr)
		}
		cleaned, dropped, sErr := SanitizeOptionalFields(normalized)
		if sErr != nil {
			return EnhanceResponse{}, normalized, fmt.Errorf("%w: %v", common.ErrSchemaViolation, sErr)
		}
		if vErr := ValidateContactsJSON(cleaned); vErr != nil {
			logger.Error("llm.enhance.schema_validation_failed", "error", vErr, "content", string(content))
			return EnhanceResponse{}, cleaned, vErr
		}
		logger.Warn("llm.enhance.lenient_sanitize_applied", "changed", changed, "dropped", dropped)
		content = cleaned
	}

	var out EnhanceResponse
	if err := json.Unmarshal(content, &out); err != nil {
		return EnhanceResponse{}, content, fmt.Errorf("%w: unmarshal contacts: %v", common.ErrSchemaViolation, err)
	}
	return out, content, nil
}
