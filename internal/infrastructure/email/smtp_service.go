package email

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"

	"yamdb-backend/internal/config"
)

// ConfirmationCodeData is what the confirmation email needs to render.
type ConfirmationCodeData struct {
	Email     string
	Username  string
	Code      string
	ExpiresAt time.Time
}

type EmailService interface {
	SendConfirmationCode(ctx context.Context, data ConfirmationCodeData) error
}

// ErrCircuitOpen is returned without contacting the relay while the breaker is open.
var ErrCircuitOpen = errors.New("smtp relay circuit is open")

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpEmailService struct {
	addr    string
	from    string
	auth    smtp.Auth
	send    sendFunc
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewSMTPEmailService sends through the configured relay. After five consecutive
// failures the breaker opens for 30 seconds so queued tasks fail fast and retry later.
func NewSMTPEmailService(cfg config.EmailConfig) EmailService {
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return newSMTPEmailService(cfg, auth, smtp.SendMail)
}

func newSMTPEmailService(cfg config.EmailConfig, auth smtp.Auth, send sendFunc) *smtpEmailService {
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("smtp circuit breaker state changed")
		},
	})

	return &smtpEmailService{
		addr:    net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		from:    cfg.From,
		auth:    auth,
		send:    send,
		breaker: breaker,
	}
}

func (s *smtpEmailService) SendConfirmationCode(ctx context.Context, data ConfirmationCodeData) error {
	subject := "YaMDb registration"
	body := fmt.Sprintf(`Hello, %s!

Your confirmation code: %s

Exchange it for an access token at POST /api/v1/auth/token before %s.

If you did not sign up for YaMDb, ignore this email.`,
		data.Username, data.Code, data.ExpiresAt.UTC().Format(time.RFC1123))

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.from, data.Email, subject, body))

	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.send(s.addr, s.auth, s.from, []string{data.Email}, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}
	if err != nil {
		log.Error().Err(err).
			Str("to", data.Email).
			Str("smtp_addr", s.addr).
			Msg("failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
