// internal/infra/telegram/digest_handlers.go
package telegram

import (
	"context"
	"time"

	"catering_attendance_service/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterDigestHandlers wires the kitchen-facing commands. Only the
// configured kitchen chat may query counts; everyone else gets a short
// explanation of what the bot is for.
func RegisterDigestHandlers(
	b *telebot.Bot,
	digestService *app.DigestService,
	kitchenChatID int64,
	baseLogger *logrus.Entry,
) {
	logger := baseLogger.WithField("handler_group", "digest")

	b.Handle("/counts", func(c telebot.Context) error {
		logCtx := logger.WithField("command", "/counts").WithField("chat_id", c.Chat().ID)
		if c.Chat().ID != kitchenChatID {
			logCtx.Warn("Counts requested from unauthorized chat")
			return c.Send("Ten bot podaje liczby posiłków tylko na czacie kuchni.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		digest, err := digestService.BuildDigest(ctx)
		if err != nil {
			logCtx.WithError(err).Error("Failed to build digest on demand")
			return c.Send("Nie udało się pobrać liczby posiłków. Spróbuj ponownie później.")
		}
		logCtx.Info("On-demand digest served")
		return c.Send(digest)
	})

	b.Handle("/start", func(c telebot.Context) error {
		if c.Chat().ID == kitchenChatID {
			return c.Send("Cześć! Codziennie rano wyślę liczbę posiłków do przygotowania. Użyj /counts, aby sprawdzić w dowolnym momencie.")
		}
		return c.Send("Ten bot obsługuje wyłącznie czat kuchni.")
	})
}
