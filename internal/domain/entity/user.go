package entity

import "strings"

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ожидание фото для разметки
	StateProcessing    UserState = "processing"     // Обработка изображения
)

// LabelMode определяет подпись по умолчанию для рамок без метки
type LabelMode string

const (
	ModeAnomaly   LabelMode = "anomaly"   // поиск дефектов
	ModeDetection LabelMode = "detection" // обычная детекция объектов
)

// DefaultLabel возвращает подпись для рамок без класса
func (m LabelMode) DefaultLabel() string {
	if m == ModeDetection {
		return "Detection"
	}
	return "Anomaly"
}

// ResolveLabel переводит режим из запроса в подпись для рамок без класса.
// Пустое значение даёт fallback, неизвестное используется как есть.
func ResolveLabel(v, fallback string) string {
	v = strings.TrimSpace(v)
	switch LabelMode(strings.ToLower(v)) {
	case "":
		return fallback
	case ModeAnomaly:
		return ModeAnomaly.DefaultLabel()
	case ModeDetection:
		return ModeDetection.DefaultLabel()
	default:
		return v
	}
}

// User представляет пользователя бота
type User struct {
	ID     int64     // Telegram User ID
	ChatID int64     // Telegram Chat ID
	State  UserState // Текущее состояние пользователя
	Mode   LabelMode // Режим подписей
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
		Mode:   ModeAnomaly,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// SetMode переключает режим подписей
func (u *User) SetMode(mode LabelMode) {
	u.Mode = mode
}
