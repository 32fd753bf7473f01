package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/taskcoin/internal/config"
	"github.com/set-night/taskcoin/internal/domain"
	"github.com/set-night/taskcoin/internal/service"
	"github.com/shopspring/decimal"
)

// MessageSender is the part of *bot.Bot the logger needs.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// OpsLogger posts ledger events to forum topics of an ops chat. Messages
// are sent in the background; Wait blocks until they are delivered.
type OpsLogger struct {
	sender MessageSender
	chatID int64
	topics map[LogType]int
	now    func() time.Time
	wg     sync.WaitGroup
}

var _ service.OpsLogger = (*OpsLogger)(nil)

func NewOpsLogger(sender MessageSender, cfg *config.Config) *OpsLogger {
	return &OpsLogger{
		sender: sender,
		chatID: cfg.LogTelegramChatID,
		topics: map[LogType]int{
			LogTypeError:            cfg.LogTopicError,
			LogTypeRegistration:     cfg.LogTopicRegistration,
			LogTypePayment:          cfg.LogTopicPayment,
			LogTypeWithdrawal:       cfg.LogTopicWithdrawal,
			LogTypeSubmissionReview: cfg.LogTopicSubmissionReview,
		},
		now: time.Now,
	}
}

type LogType string

const (
	LogTypeError            LogType = "error"
	LogTypeRegistration     LogType = "registration"
	LogTypePayment          LogType = "payment"
	LogTypeWithdrawal       LogType = "withdrawal"
	LogTypeSubmissionReview LogType = "submissionReview"
)

const truncatedSuffix = "\n\n... (truncated)"

func truncate(message string) string {
	runes := []rune(message)
	if len(runes) <= config.MaxTelegramMessageLen {
		return message
	}
	return string(runes[:config.MaxTelegramMessageLen-len(truncatedSuffix)]) + truncatedSuffix
}

// Log posts message to the topic of logType. A nil logger, a missing chat
// or an unconfigured topic drop the message.
func (l *OpsLogger) Log(logType LogType, message string) {
	if l == nil || l.chatID == 0 {
		return
	}
	topicID, ok := l.topics[logType]
	if !ok || topicID == 0 {
		return
	}

	params := &bot.SendMessageParams{
		ChatID:          l.chatID,
		Text:            truncate(message),
		MessageThreadID: topicID,
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), config.OpsLogTimeout)
		defer cancel()

		if _, err := l.sender.SendMessage(ctx, params); err != nil {
			slog.Error("failed to send telegram log", "type", logType, "error", err)
		}
	}()
}

// Wait blocks until every queued message has been sent or has failed.
func (l *OpsLogger) Wait() {
	if l != nil {
		l.wg.Wait()
	}
}

func (l *OpsLogger) stamp() string {
	return l.now().UTC().Format("2006-01-02 15:04:05")
}

func (l *OpsLogger) LogPartialFailure(operation, subject string, err error) {
	if l == nil {
		return
	}
	l.Log(LogTypeError, fmt.Sprintf("❌ Partial failure\n\nOperation: %s\nSubject: %s\nError: %s\nTime: %s",
		operation, subject, err.Error(), l.stamp()))
}

func (l *OpsLogger) LogRegistration(email string, role domain.Role) {
	if l == nil {
		return
	}
	l.Log(LogTypeRegistration, fmt.Sprintf("👤 New registration\n\nEmail: %s\nRole: %s", email, role))
}

func (l *OpsLogger) LogPaymentRecorded(email string, amount decimal.Decimal) {
	if l == nil {
		return
	}
	l.Log(LogTypePayment, fmt.Sprintf("💰 Payment recorded\n\nPayer: %s\nAmount: $%s", email, amount.StringFixed(2)))
}

func (l *OpsLogger) LogWithdrawalResolved(email string, coins int64) {
	if l == nil {
		return
	}
	l.Log(LogTypeWithdrawal, fmt.Sprintf("🏧 Withdrawal paid\n\nWorker: %s\nCoins: %d", email, coins))
}

func (l *OpsLogger) LogSubmissionReviewed(sub domain.Submission) {
	if l == nil {
		return
	}
	l.Log(LogTypeSubmissionReview, fmt.Sprintf("📝 Submission %s\n\nTask: %s\nWorker: %s\nCreator: %s\nAmount: %d",
		sub.Status, sub.TaskTitle, sub.WorkerEmail, sub.CreatorEmail, sub.Amount))
}
