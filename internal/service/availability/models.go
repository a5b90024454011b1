package availability

import (
	"time"

	"github.com/m04kA/SMC-WashService/internal/domain"
)

// Candidate открытая пара (ресурс, окно), пригодная для резервирования
type Candidate struct {
	Resource domain.Resource
	Window   domain.TimeWindow
}

// Params входные параметры расчёта доступности
type Params struct {
	// Date день, на который рассчитываются слоты (время игнорируется)
	Date time.Time
	// DurationMinutes требуемая длительность окна
	DurationMinutes int
	// Now текущее время; слоты раньше Now + MinLeadTimeMinutes исключаются
	Now time.Time
	// GranularityMinutes шаг сетки начал слотов
	GranularityMinutes int
	// BufferMinutes обязательный простой между бронированиями одного ресурса
	BufferMinutes int
	// MinLeadTimeMinutes минимальное время от "сейчас" до начала слота
	MinLeadTimeMinutes int
	// ExcludeBookingID бронирование, не участвующее в проверке конфликтов
	// (используется при переносе, чтобы старое окно не блокировало новое)
	ExcludeBookingID *int64
}

// Slot агрегированный вид слота для ответа на запрос доступности
type Slot struct {
	Start           time.Time
	DurationMinutes int
	ResourceIDs     []int64
}
