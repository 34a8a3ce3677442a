package reminder

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/JonnyWalker81/pulse/backend/internal/logger"
)

// DefaultMessage is the body of every daily reminder.
const DefaultMessage = "Time for your daily wellness check-in! How are you feeling today?"

// Reminder is one notification to deliver.
type Reminder struct {
	UserID  string
	Name    string
	Email   string
	Time    string
	Message string
}

// Notifier delivers reminders.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// LogNotifier writes reminders to the log instead of delivering them.
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier creates a notifier for development and tests.
func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, r Reminder) error {
	n.log.Info("reminder sent (log notifier)",
		logger.String("user_id", r.UserID),
		logger.String("email", r.Email),
		logger.String("reminder_time", r.Time),
		logger.String("message", r.Message),
	)
	return nil
}

type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendNotifier emails reminders through Resend.
type ResendNotifier struct {
	emails emailSender
	from   string
}

// NewResendNotifier creates an email notifier.
func NewResendNotifier(apiKey, from string) *ResendNotifier {
	return &ResendNotifier{emails: resend.NewClient(apiKey).Emails, from: from}
}

func (n *ResendNotifier) Notify(ctx context.Context, r Reminder) error {
	if r.Email == "" {
		return fmt.Errorf("user %s has no email address", r.UserID)
	}

	greeting := "Hi"
	if r.Name != "" {
		greeting = "Hi " + r.Name
	}

	_, err := n.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{r.Email},
		Subject: "Your daily check-in",
		Text:    fmt.Sprintf("%s,\n\n%s\n", greeting, r.Message),
	})
	if err != nil {
		return fmt.Errorf("failed to send reminder email: %w", err)
	}
	return nil
}
