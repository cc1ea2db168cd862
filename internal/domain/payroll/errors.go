package payroll

import "errors"

var (
	ErrEntryNotFound    = errors.New("payroll entry not found")
	ErrEntryExists      = errors.New("payroll entry already exists for this period")
	ErrDuplicateBatch   = errors.New("payroll batch already exists for this period")
	ErrInvalidState     = errors.New("payroll entry status forbids this operation")
	ErrInvalidPeriod    = errors.New("invalid payroll period")
	ErrNoTemplates      = errors.New("no active employee salary templates found")
	ErrTemplateNotFound = errors.New("payroll template not found")
	ErrBatchNotFound    = errors.New("payroll batch not found")
)
