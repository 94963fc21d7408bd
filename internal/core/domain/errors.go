package domain

import (
	"errors"
	"fmt"
)

// Сентинелы для различения классов ошибок синхронизации.
var (
	// ErrQuery - ошибка чтения списка: кэш остается нетронутым,
	// store переходит в состояние error.
	ErrQuery = errors.New("query failed")

	// ErrMutation - ошибка создания/обновления/удаления: кэш остается
	// ровно таким, каким был до попытки.
	ErrMutation = errors.New("mutation failed")

	// ErrValidation - полезная нагрузка не прошла проверку по схеме
	// и до удаленного сервиса не дошла.
	ErrValidation = errors.New("validation failed")

	// ErrListingNotFound - найденное объявление отсутствует в кэше сессии.
	ErrListingNotFound = errors.New("discovered listing not found")
)

// QueryError оборачивает ошибку list-запроса.
func QueryError(err error) error {
	return fmt.Errorf("%w: %w", ErrQuery, err)
}

// MutationError оборачивает ошибку мутации.
func MutationError(err error) error {
	return fmt.Errorf("%w: %w", ErrMutation, err)
}

// ValidationError оборачивает ошибку валидации как подвид ошибки мутации:
// для кэша и нотификаций она ведет себя так же, но view может показать 400.
func ValidationError(err error) error {
	return fmt.Errorf("%w: %w", ErrMutation, fmt.Errorf("%w: %w", ErrValidation, err))
}
