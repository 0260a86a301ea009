// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/strixun/edge-core/internal/config"
	"github.com/strixun/edge-core/internal/logger"
)

// EmailMessage is one outbound mail handed to the delivery vendor.
type EmailMessage struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// EmailSender is the delivery port. The identity service only ever sees
// this interface; the vendor lives behind it.
type EmailSender interface {
	// Send delivers one message. Any vendor failure surfaces as
	// [ErrEmailDeliveryFailed] without vendor detail.
	Send(ctx context.Context, msg EmailMessage) error

	// TestMode reports whether the sender swallows mail instead of
	// delivering it.
	TestMode() bool
}

// httpEmailSender posts messages to an HTTP email vendor. Keys carrying
// the test prefix switch it into swallow mode so local development never
// sends real mail.
type httpEmailSender struct {
	client   *resty.Client
	from     string
	testMode bool
	logger   *logger.Logger
}

// NewHTTPEmailSender builds the vendor adapter from the email config.
func NewHTTPEmailSender(cfg config.Email, log *logger.Logger) EmailSender {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &httpEmailSender{
		client:   client,
		from:     cfg.From,
		testMode: strings.HasPrefix(cfg.APIKey, config.TestEmailKeyPrefix),
		logger:   log,
	}
}

func (s *httpEmailSender) TestMode() bool { return s.testMode }

func (s *httpEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	if msg.From == "" {
		msg.From = s.from
	}

	if s.testMode {
		s.logger.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("test email key, swallowing mail")
		return nil
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(msg).
		Post("/emails")
	if err != nil {
		s.logger.Error().Err(err).Msg("email vendor unreachable")
		return fmt.Errorf("%w: transport error", ErrEmailDeliveryFailed)
	}
	if resp.IsError() {
		// Vendor status and body stay in the log; callers get the bare
		// sentinel so no vendor detail leaks to clients.
		s.logger.Error().Int("status", resp.StatusCode()).Msg("email vendor rejected message")
		return fmt.Errorf("%w: vendor status %d", ErrEmailDeliveryFailed, resp.StatusCode())
	}
	return nil
}

// otpMailSubject and otpMailBody render the login-code message.
const otpMailSubject = "Your login code"

func otpMailBody(code string) string {
	return fmt.Sprintf(
		`<p>Your login code is:</p><p style="font-size:24px;letter-spacing:4px"><strong>%s</strong></p><p>It expires in 10 minutes. If you did not request it, ignore this mail.</p>`,
		code,
	)
}
