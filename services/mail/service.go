package mail

import (
	"bytes"
	"errors"
	"fmt"
	htmlTemplate "html/template"
	"path/filepath"
	"strings"
	textTemplate "text/template"
	"time"

	"github.com/tech-arch1tect/accounts/config"
	"github.com/tech-arch1tect/accounts/services/clock"
	"github.com/tech-arch1tect/accounts/services/logging"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const VerificationTemplate = "verification_code"

var errTemplateNotFound = errors.New("template not found")

type MailClient interface {
	DialAndSend(messages ...*mail.Msg) error
}

type Service struct {
	config        *config.MailConfig
	appName       string
	client        MailClient
	clock         clock.Clock
	htmlTemplates *htmlTemplate.Template
	textTemplates *textTemplate.Template
	logger        *logging.Service
}

func NewService(cfg *config.MailConfig, appName string, logger *logging.Service) (*Service, error) {
	logger = logger.Named("mail")
	logger.Info("initializing mail service",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("encryption", cfg.Encryption),
		zap.String("from_address", cfg.FromAddress))

	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("MAIL_FROM_ADDRESS is required")
	}

	client, err := mail.NewClient(cfg.Host, clientOptions(cfg)...)
	if err != nil {
		logger.Error("failed to create mail client",
			zap.Error(err),
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port))
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return NewServiceWithClient(cfg, appName, logger, client)
}

func NewServiceWithClient(cfg *config.MailConfig, appName string, logger *logging.Service, client MailClient) (*Service, error) {
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("MAIL_FROM_ADDRESS is required")
	}

	service := &Service{
		config:  cfg,
		appName: appName,
		client:  client,
		clock:   clock.Real(),
		logger:  logger,
	}

	if err := service.loadTemplates(); err != nil {
		logger.Error("failed to load mail templates", zap.Error(err))
		return nil, fmt.Errorf("failed to load mail templates: %w", err)
	}

	return service, nil
}

func clientOptions(cfg *config.MailConfig) []mail.Option {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
	}

	switch cfg.Encryption {
	case "ssl":
		opts = append(opts, mail.WithSSL())
	case "none":
		opts = append(opts, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password))
	}
	return opts
}

func (s *Service) loadTemplates() error {
	if s.config.TemplatesDir == "" {
		s.logger.Debug("no template directory configured, using plain text bodies")
		return nil
	}

	htmlPattern := filepath.Join(s.config.TemplatesDir, "*.html")
	textPattern := filepath.Join(s.config.TemplatesDir, "*.txt")

	if matches, _ := filepath.Glob(htmlPattern); len(matches) > 0 {
		tmpl, err := htmlTemplate.ParseGlob(htmlPattern)
		if err != nil {
			return fmt.Errorf("failed to parse HTML templates: %w", err)
		}
		s.htmlTemplates = tmpl
	}

	if matches, _ := filepath.Glob(textPattern); len(matches) > 0 {
		tmpl, err := textTemplate.ParseGlob(textPattern)
		if err != nil {
			return fmt.Errorf("failed to parse text templates: %w", err)
		}
		s.textTemplates = tmpl
	}

	var htmlCount, textCount int
	if s.htmlTemplates != nil {
		htmlCount = len(s.htmlTemplates.Templates())
	}
	if s.textTemplates != nil {
		textCount = len(s.textTemplates.Templates())
	}
	s.logger.Info("mail templates loaded",
		zap.String("templates_dir", s.config.TemplatesDir),
		zap.Int("html_templates", htmlCount),
		zap.Int("text_templates", textCount))

	return nil
}

func (s *Service) NewMessage() (*mail.Msg, error) {
	message := mail.NewMsg()

	var err error
	if s.config.FromName != "" {
		err = message.FromFormat(s.config.FromName, s.config.FromAddress)
	} else {
		err = message.From(s.config.FromAddress)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set FROM address: %w", err)
	}
	return message, nil
}

func (s *Service) Send(message *mail.Msg) error {
	start := time.Now()
	err := s.client.DialAndSend(message)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("failed to send email",
			zap.Error(err),
			zap.Duration("attempt_duration", duration))
		return err
	}

	s.logger.Debug("email sent", zap.Duration("send_duration", duration))
	return nil
}

// SendVerificationCode mails the code using the verification_code template
// when one is loaded, otherwise a plain text body.
func (s *Service) SendVerificationCode(email, code string, expiresAt time.Time) error {
	message, err := s.NewMessage()
	if err != nil {
		return err
	}
	if err := message.To(email); err != nil {
		return fmt.Errorf("failed to set TO address: %w", err)
	}
	message.Subject(s.subject())

	data := map[string]any{
		"AppName":   s.appName,
		"Code":      code,
		"ExpiresAt": expiresAt,
		"ExpiresIn": s.expiresIn(expiresAt),
	}

	err = s.renderTemplate(VerificationTemplate, data, message)
	if errors.Is(err, errTemplateNotFound) {
		message.SetBodyString(mail.TypeTextPlain, plainVerificationBody(data))
	} else if err != nil {
		return err
	}

	return s.Send(message)
}

func (s *Service) subject() string {
	if s.appName == "" {
		return "Verify your account"
	}
	return fmt.Sprintf("Verify your %s account", s.appName)
}

func (s *Service) expiresIn(expiresAt time.Time) string {
	remaining := expiresAt.Sub(s.clock.Now()).Round(time.Minute)
	if remaining < time.Minute {
		remaining = time.Minute
	}
	return strings.TrimSuffix(remaining.String(), "0s")
}

func plainVerificationBody(data map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your verification code is: %s\n\n", data["Code"])
	fmt.Fprintf(&b, "The code expires in %s. If it expires, request a new one.\n", data["ExpiresIn"])
	return b.String()
}

func (s *Service) renderTemplate(templateName string, data map[string]any, message *mail.Msg) error {
	var rendered bool

	if s.htmlTemplates != nil {
		if tmpl := s.htmlTemplates.Lookup(templateName + ".html"); tmpl != nil {
			var buf bytes.Buffer
			if err := tmpl.Execute(&buf, data); err != nil {
				return fmt.Errorf("failed to execute HTML template: %w", err)
			}
			message.SetBodyString(mail.TypeTextHTML, buf.String())
			rendered = true
		}
	}

	if s.textTemplates != nil {
		if tmpl := s.textTemplates.Lookup(templateName + ".txt"); tmpl != nil {
			var buf bytes.Buffer
			if err := tmpl.Execute(&buf, data); err != nil {
				return fmt.Errorf("failed to execute text template: %w", err)
			}
			if rendered {
				message.AddAlternativeString(mail.TypeTextPlain, buf.String())
			} else {
				message.SetBodyString(mail.TypeTextPlain, buf.String())
			}
			rendered = true
		}
	}

	if !rendered {
		return fmt.Errorf("%w: %s", errTemplateNotFound, templateName)
	}
	return nil
}
