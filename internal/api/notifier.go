package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"vision-inspector/internal/domain/entity"
	"vision-inspector/internal/domain/port"
)

const msgNGAlert = "🔴 Обнаружен брак! Дефектов: %d\n%s"

// Notifier отправляет оператору уведомления о браке в Telegram.
// Это выходной канал: сообщений от оператора он не читает.
type Notifier struct {
	api      *tgbotapi.BotAPI
	chatID   int64
	cooldown time.Duration

	mu       sync.Mutex
	lastSent time.Time
}

// NewNotifier создаёт канал уведомлений оператора.
func NewNotifier(token string, chatID int64, cooldown time.Duration) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	return &Notifier{
		api:      api,
		chatID:   chatID,
		cooldown: cooldown,
	}, nil
}

// NotifyNG шлёт уведомление о забракованной детали, не чаще одного
// раза за период cooldown: застрявший дефект не должен заливать чат.
func (n *Notifier) NotifyNG(ctx context.Context, result *entity.InferenceResult) error {
	_ = ctx

	n.mu.Lock()
	if time.Since(n.lastSent) < n.cooldown {
		n.mu.Unlock()
		return nil
	}
	n.lastSent = time.Now()
	n.mu.Unlock()

	msg := tgbotapi.NewMessage(n.chatID, formatAlert(result))
	_, err := n.api.Send(msg)
	return err
}

// formatAlert собирает текст уведомления со сводкой по классам дефектов.
func formatAlert(result *entity.InferenceResult) string {
	counts := make(map[string]int)
	var order []string
	for _, d := range result.Detections {
		name := d.ClassName
		if name == "" {
			name = fmt.Sprintf("класс %d", d.ClassID)
		}
		if _, ok := counts[name]; !ok {
			order = append(order, name)
		}
		counts[name]++
	}

	var b strings.Builder
	for _, name := range order {
		fmt.Fprintf(&b, "• %s ×%d\n", name, counts[name])
	}
	return fmt.Sprintf(msgNGAlert, len(result.Detections), strings.TrimRight(b.String(), "\n"))
}

// Проверка реализации интерфейса
var _ port.Notifier = (*Notifier)(nil)
