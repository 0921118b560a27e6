// Package telegram отправляет уведомления о бронированиях в служебный чат.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/Freeeeeet/smartcare/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// messageSender часть *bot.Bot, которая нужна уведомителю
type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

type Notifier struct {
	sender messageSender
	chatID int64
	logger *zap.Logger
}

// NewNotifier создаёт бота по токену. GetMe не вызываем: сеть нужна только при отправке
func NewNotifier(token string, chatID int64, logger *zap.Logger) (*Notifier, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram: token required")
	}
	if chatID == 0 {
		return nil, errors.New("telegram: chat id required")
	}

	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("telegram: create bot: %w", err)
	}

	return newNotifier(b, chatID, logger), nil
}

func newNotifier(sender messageSender, chatID int64, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{sender: sender, chatID: chatID, logger: logger}
}

// NotifyReservation отправляет сообщение о подтверждённой записи
func (n *Notifier) NotifyReservation(ctx context.Context, reservation *model.Reservation) error {
	_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    n.chatID,
		Text:      FormatReservation(reservation),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}

	n.logger.Debug("Reservation notification sent",
		zap.String("reservation_id", reservation.ID.String()),
	)
	return nil
}

// FormatReservation готовит HTML-текст уведомления
func FormatReservation(r *model.Reservation) string {
	var sb strings.Builder
	sb.WriteString("✅ <b>Новая запись</b>\n\n")

	resource := fmt.Sprintf("#%d", r.ResourceID)
	if r.Resource != nil && r.Resource.Name != "" {
		resource = html.EscapeString(r.Resource.Name)
		if r.Resource.Specialization != "" {
			resource += " (" + html.EscapeString(r.Resource.Specialization) + ")"
		}
	}

	fmt.Fprintf(&sb, "👨‍⚕️ Врач: %s\n", resource)
	fmt.Fprintf(&sb, "📅 Время: %s UTC\n", r.SlotTime.UTC().Format("02.01.2006 15:04"))
	fmt.Fprintf(&sb, "👤 Пациент: %s\n", html.EscapeString(r.RequesterID))
	if r.Notes != "" {
		fmt.Fprintf(&sb, "📝 %s\n", html.EscapeString(r.Notes))
	}
	fmt.Fprintf(&sb, "\n<code>%s</code>", r.ID)

	return sb.String()
}
