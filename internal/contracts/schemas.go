package contracts

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"console-service/internal/core/domain"
	"console-service/internal/schemas"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var compiledSchemas = make(map[string]*jsonschema.Schema)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	// Сначала добавляем все схемы как ресурсы, чтобы они могли
	// ссылаться друг на друга через `$ref`.
	for _, root := range []string{"listings", "events"} {
		err := fs.WalkDir(schemas.SchemasFS, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".json") {
				file, openErr := schemas.SchemasFS.Open(path)
				if openErr != nil {
					return openErr
				}
				defer file.Close()
				if err := compiler.AddResource(path, file); err != nil {
					log.Fatalf("failed to add schema resource %s: %v", path, err)
				}
			}
			return nil
		})
		if err != nil {
			log.Fatalf("error walking and adding schema resources: %v", err)
		}
	}

	// Второй проход - компиляция и регистрация под ключами.
	for _, root := range []string{"listings", "events"} {
		err := fs.WalkDir(schemas.SchemasFS, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".json") {
				schema, err := compiler.Compile(path)
				if err != nil {
					log.Printf("WARNING: could not compile schema %s: %v. Skipping.", path, err)
					return nil
				}
				compiledSchemas[generateKeyFromPath(path)] = schema
			}
			return nil
		})
		if err != nil {
			log.Fatalf("error walking and compiling schemas: %v", err)
		}
	}
}

// generateKeyFromPath преобразует путь вида "listings/property-draft/v1.json"
// в ключ вида "PropertyDraft/1.0.0".
func generateKeyFromPath(path string) string {
	trimmedPath := strings.TrimSuffix(path, ".json")

	parts := strings.Split(trimmedPath, "/")
	if len(parts) != 3 {
		return ""
	}

	caser := cases.Title(language.English)

	var nameBuilder strings.Builder
	for _, p := range strings.Split(parts[1], "-") {
		nameBuilder.WriteString(caser.String(p))
	}

	version := strings.Replace(parts[2], "v", "", 1) + ".0.0"

	return fmt.Sprintf("%s/%s", nameBuilder.String(), version)
}

// validate проверяет уже сериализованную полезную нагрузку по схеме.
func validate(key string, body []byte) error {
	schema, ok := compiledSchemas[key]
	if !ok {
		return fmt.Errorf("schema '%s' not found", key)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("payload is not a valid JSON: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}

// ValidateEvent проверяет тело сообщения из очереди по схеме события.
func ValidateEvent(eventType, eventVersion string, body []byte) error {
	return validate(fmt.Sprintf("%s/%s", eventType, eventVersion), body)
}

// Validator реализует порт валидации полезных нагрузок мутаций.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateDraft проверяет черновик нового объявления.
func (v *Validator) ValidateDraft(draft domain.PropertyDraft) error {
	payload := map[string]interface{}{
		"title":     draft.Title,
		"category":  draft.Category,
		"deal_type": draft.DealType,
		"price_usd": draft.PriceUSD,
		"address":   draft.Address,
	}
	if draft.Description != "" {
		payload["description"] = draft.Description
	}
	if draft.Region != "" {
		payload["region"] = draft.Region
	}
	if draft.CityOrDistrict != "" {
		payload["city_or_district"] = draft.CityOrDistrict
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	return validate("PropertyDraft/1.0.0", body)
}

// ValidateChange проверяет частичное обновление: валидируются только
// реально переданные поля.
func (v *Validator) ValidateChange(change domain.PropertyChange) error {
	payload := map[string]interface{}{}
	if change.Title != nil {
		payload["title"] = *change.Title
	}
	if change.Description != nil {
		payload["description"] = *change.Description
	}
	if change.Category != nil {
		payload["category"] = *change.Category
	}
	if change.DealType != nil {
		payload["deal_type"] = *change.DealType
	}
	if change.PriceUSD != nil {
		payload["price_usd"] = *change.PriceUSD
	}
	if change.Address != nil {
		payload["address"] = *change.Address
	}
	if change.Region != nil {
		payload["region"] = *change.Region
	}
	if change.CityOrDistrict != nil {
		payload["city_or_district"] = *change.CityOrDistrict
	}
	if len(change.RemoveImages) > 0 {
		payload["remove_images"] = change.RemoveImages
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}
	return validate("PropertyChange/1.0.0", body)
}
