package feeledger

import "errors"

var (
	// ErrDuplicateFee возвращается при повторном начислении сбора того же вида
	ErrDuplicateFee = errors.New("feeledger.repository: fee already charged for this booking")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("feeledger.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("feeledger.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("feeledger.repository: failed to scan row")
)
