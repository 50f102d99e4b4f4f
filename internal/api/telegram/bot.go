package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "vision-overlay/internal/application"
	"vision-overlay/internal/container"
	"vision-overlay/internal/domain/entity"
	"vision-overlay/internal/overlay"
)

const (
	msgStart = `👋 Привет! Я бот для разметки фотографий.

📸 Отправьте мне фото, я передам его модели и верну снимок с подсвеченными областями.

📋 Команды:
/check — начать проверку
/anomaly — подписывать области как аномалии
/detect — подписывать области как объекты
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото (можно файлом, чтобы сохранить качество)
2️⃣ Бот отправит снимок модели
3️⃣ Вы получите снимок с рамками и список найденных областей

💡 Рекомендации:
• Снимайте при хорошем освещении
• Объект должен занимать большую часть кадра

📋 Команды:
/check — начать проверку
/anomaly, /detect — режим подписей
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото для проверки."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото для проверки."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgBusy            = "⏳ Предыдущее фото ещё обрабатывается, подождите."
	msgNoDetections    = "✅ Модель ничего не нашла."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
	msgDetectorDown    = "⚠️ Сервис распознавания сейчас недоступен. Попробуйте позже."
	msgModeAnomaly     = "🔎 Режим: аномалии. Области без класса будут подписаны «Anomaly»."
	msgModeDetection   = "🔎 Режим: детекция. Области без класса будут подписаны «Detection»."
)

// maxCaption ограничение Telegram на длину подписи к фото
const maxCaption = 1024

// Bot представляет Telegram-бота
type Bot struct {
	api        *tgbotapi.BotAPI
	users      *app.UserService
	inspection *app.InspectionService
	logger     *zap.Logger
	http       *http.Client
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	c.Logger.Info("telegram bot authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:        api,
		users:      c.UserService,
		inspection: c.InspectionService,
		logger:     c.Logger,
		http:       &http.Client{Timeout: time.Minute},
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	// посты каналов и служебные сообщения приходят без отправителя
	if msg.From == nil || msg.Chat == nil {
		return
	}

	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.logger.Error("failed to get user", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Обработка фото и изображений, отправленных файлом
	if fileID, ok := imageFileID(msg); ok {
		if user.State == entity.StateProcessing {
			b.sendMessage(msg.Chat.ID, msgBusy)
			return
		}
		b.handlePhoto(ctx, msg, fileID)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	var err error
	switch msg.Command() {
	case "start":
		_, err = b.users.Cancel(ctx, userID, chatID)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "check":
		_, err = b.users.BeginCheck(ctx, userID, chatID)
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "cancel":
		_, err = b.users.Cancel(ctx, userID, chatID)
		b.sendMessage(chatID, msgCancelled)

	case "anomaly":
		_, err = b.users.SetMode(ctx, userID, chatID, entity.ModeAnomaly)
		b.sendMessage(chatID, msgModeAnomaly)

	case "detect":
		_, err = b.users.SetMode(ctx, userID, chatID, entity.ModeDetection)
		b.sendMessage(chatID, msgModeDetection)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}

	if err != nil {
		b.logger.Error("failed to update user", zap.String("command", msg.Command()), zap.Error(err))
	}
}

// handlePhoto скачивает снимок, размечает его и отправляет результат
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	chatID := msg.Chat.ID
	b.sendMessage(chatID, msgProcessing)

	imageData, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.logger.Error("failed to download photo", zap.String("file_id", fileID), zap.Error(err))
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	out, err := b.inspection.ProcessPhoto(ctx, msg.From.ID, chatID, imageData)
	if err != nil {
		b.logger.Error("failed to process photo",
			zap.Int64("user_id", msg.From.ID),
			zap.Int("bytes", len(imageData)),
			zap.Error(err))
		b.sendMessage(chatID, errorMessage(err))
		return
	}

	if !out.Result.HasDetections || len(out.Highlighted) == 0 {
		b.sendMessage(chatID, msgNoDetections)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "overlay.jpg", Bytes: out.Highlighted})
	photo.Caption = caption(out.Summary)
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Error("failed to send photo", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// imageFileID возвращает файл наибольшего размера из фото или изображение-документ
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}

func errorMessage(err error) string {
	if errors.Is(err, app.ErrDetectorNotConfigured) {
		return msgDetectorDown
	}
	if errors.Is(err, overlay.ErrPreviewUnavailable) || errors.Is(err, app.ErrEmptyImage) {
		return msgProcessingError
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return msgDetectorDown
	}
	return msgProcessingError
}

// caption обрезает подпись до лимита Telegram
func caption(summary string) string {
	if utf8.RuneCountInString(summary) <= maxCaption {
		return summary
	}
	runes := []rune(summary)
	return string(runes[:maxCaption-1]) + "…"
}
