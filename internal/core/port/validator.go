package port

import "console-service/internal/core/domain"

// PayloadValidatorPort проверяет полезную нагрузку мутации по контракту
// (JSON-схеме) до того, как она уйдет на удаленный сервис.
type PayloadValidatorPort interface {
	ValidateDraft(draft domain.PropertyDraft) error
	ValidateChange(change domain.PropertyChange) error
}
