package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"garden-guide/internal/calendar"
	"garden-guide/internal/config"
	"garden-guide/internal/metrics"
	"garden-guide/internal/schedule"
)

// GuideService computes garden guides.
type GuideService interface {
	Guide(ctx context.Context, req schedule.Request) (*schedule.Guide, error)
}

// MetricsStore records guide metrics and reports usage.
type MetricsStore interface {
	Record(ctx context.Context, m metrics.GuideMetric) error
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// sender is the part of the Telegram API the bot uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot answers guide requests over a Telegram webhook.
type Bot struct {
	api          sender
	guides       GuideService
	metricsStore MetricsStore
	cfg          *config.Config
	now          func() time.Time
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, guides GuideService, metricsStore MetricsStore) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	if webhookURL := cfg.TelegramWebhookURL; webhookURL != "" {
		wh, err := tgbotapi.NewWebhook(webhookURL)
		if err != nil {
			return nil, fmt.Errorf("invalid webhook url %s: %w", webhookURL, err)
		}
		resp, err := bot.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
		}
		log.Printf("Webhook set response: %s", resp.Description)
	}

	return newBot(bot, cfg, guides, metricsStore), nil
}

func newBot(api sender, cfg *config.Config, guides GuideService, metricsStore MetricsStore) *Bot {
	return &Bot{
		api:          api,
		guides:       guides,
		metricsStore: metricsStore,
		cfg:          cfg,
		now:          time.Now,
	}
}

// WebhookHandler returns the handler Telegram posts updates to.
func (b *Bot) WebhookHandler() http.Handler {
	return http.HandlerFunc(b.handleWebhook)
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("Error parsing update: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}

	if !b.isAllowed(update.Message.From.ID) {
		log.Printf("Warning: unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go func(msg *tgbotapi.Message) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		b.processMessage(ctx, msg)
	}(update.Message)
}

func (b *Bot) isAllowed(id int64) bool {
	return slices.Contains(b.cfg.TelegramAllowedUserIDs, id)
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := strconv.FormatInt(msg.From.ID, 10)

	switch msg.Command() {
	case "metrics":
		b.handleMetricsRequest(ctx, msg)
	case "week":
		req, err := parseWeekArg(msg.CommandArguments())
		if err != nil {
			b.sendMarkdown(msg.Chat.ID, fmt.Sprintf("❌ %s", escapeMarkdown(err.Error())))
			return
		}
		req.UserID = userID
		b.sendGuide(ctx, msg.Chat.ID, req)
	case "today":
		b.sendToday(ctx, msg.Chat.ID, userID)
	default:
		b.sendMarkdown(msg.Chat.ID, helpText)
	}
}

const helpText = "🌱 *Garden Guide*\n\n" +
	"/week - this week's jobs\n" +
	"/week N - jobs for week N (1-52)\n" +
	"/today - today's feeding and watering"

// parseWeekArg reads the optional week argument of /week. An empty
// argument asks for the current week.
func parseWeekArg(arg string) (schedule.Request, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return schedule.Request{Current: true}, nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > calendar.WeeksPerYear {
		return schedule.Request{}, fmt.Errorf("week must be a number between 1 and %d, got %q", calendar.WeeksPerYear, arg)
	}
	return schedule.Request{Week: n}, nil
}

func (b *Bot) guide(ctx context.Context, req schedule.Request) (*schedule.Guide, error) {
	req.ID = uuid.NewString()
	reqID, userID := req.ID, req.UserID
	guide, err := b.guides.Guide(ctx, req)
	if err != nil {
		log.Printf("Error: [request %s] guide for user %s: %v", reqID, userID, err)
		return nil, err
	}
	if b.metricsStore != nil {
		if err := b.metricsStore.Record(ctx, metrics.FromGuide(userID, "telegram", guide.Stats)); err != nil {
			log.Printf("Warning: [request %s] failed to record metrics: %v", reqID, err)
		}
	}
	return guide, nil
}

func (b *Bot) sendGuide(ctx context.Context, chatID int64, req schedule.Request) error {
	guide, err := b.guide(ctx, req)
	if err != nil {
		b.sendError(chatID, err)
		return err
	}
	if err := b.sendMarkdown(chatID, formatWeeklyMarkdown(guide)); err != nil {
		return err
	}
	return b.sendMarkdown(chatID, formatDailyMarkdown(guide))
}

func (b *Bot) sendToday(ctx context.Context, chatID int64, userID string) {
	guide, err := b.guide(ctx, schedule.Request{UserID: userID, Current: true})
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	day := calendar.WeekdayNumber(b.now().Weekday())
	b.sendMarkdown(chatID, formatDayMarkdown(guide.Daily[day]))
}

// SendDigest pushes the current week's guide for userID to chatID.
func (b *Bot) SendDigest(ctx context.Context, chatID int64, userID string) error {
	if err := b.sendGuide(ctx, chatID, schedule.Request{UserID: userID, Current: true}); err != nil {
		return fmt.Errorf("failed to send digest to chat %d: %w", chatID, err)
	}
	return nil
}

func (b *Bot) handleMetricsRequest(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.sendMarkdown(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}
	if b.metricsStore == nil {
		b.sendMarkdown(msg.Chat.ID, "_Metrics are disabled_")
		return
	}
	usage, err := b.metricsStore.GetDailyUsage(ctx, 7)
	if err != nil {
		log.Printf("Error fetching metrics: %v", err)
		b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "❌ Error fetching metrics."))
		return
	}
	health := metrics.GetSysHealth(filepath.Dir(b.cfg.DatabasePath))
	b.sendMarkdown(msg.Chat.ID, formatMetricsMarkdown(usage, health))
}

func (b *Bot) sendError(chatID int64, err error) {
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	b.sendMarkdown(chatID, fmt.Sprintf("❌ *Error building guide:*\n```\n%v\n```", safeErr))
}

func (b *Bot) sendMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send message to chat %d: %v", chatID, err)
		return err
	}
	return nil
}
