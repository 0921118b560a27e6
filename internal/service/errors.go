package service

import "errors"

var (
	// ErrValidation не переданы обязательные поля
	ErrValidation = errors.New("validation failed")

	// ErrSlotUnavailable слот уже забронирован, либо ресурса/слота нет
	ErrSlotUnavailable = errors.New("slot already booked or unavailable")

	// ErrLedgerWrite слот забронирован, но запись в журнал не сохранилась
	ErrLedgerWrite = errors.New("slot reserved but reservation was not recorded")

	ErrResourceNotFound = errors.New("resource not found")
	ErrSlotNotFound     = errors.New("slot not found")
	ErrSlotReserved     = errors.New("slot is reserved")
	ErrDuplicateSlot    = errors.New("slot time already exists for resource")

	// ErrEmptySymptoms единственная ошибка классификатора
	ErrEmptySymptoms = errors.New("symptoms required")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminDisabled      = errors.New("admin access is not configured")
)
