package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/example/bazaar/internal/mq"
)

// OTPMessage is the payload queued for OTP delivery.
type OTPMessage struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// Text is the SMS body sent to the user.
func (m OTPMessage) Text() string {
	return fmt.Sprintf("Your verification code is %s. Do not share it with anyone.", m.Code)
}

// LogSender writes codes to the process log. Development only.
type LogSender struct{}

func (LogSender) SendOTP(ctx context.Context, phone, code string) error {
	log.Printf("[OTP] code for %s: %s", phone, code)
	return nil
}

// SMSGateway posts codes to an HTTP SMS gateway.
type SMSGateway struct {
	url    string
	token  string
	client *http.Client
}

func NewSMSGateway(url, token string) *SMSGateway {
	return &SMSGateway{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type smsRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (g *SMSGateway) SendOTP(ctx context.Context, phone, code string) error {
	if g.url == "" {
		return errors.New("sms gateway url is not configured")
	}

	body, err := json.Marshal(smsRequest{Phone: phone, Message: OTPMessage{Phone: phone, Code: code}.Text()})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}

type jsonPublisher interface {
	PublishJSON(ctx context.Context, queue string, v interface{}) (string, error)
}

// QueueSender hands codes to the worker through RabbitMQ.
type QueueSender struct {
	queue jsonPublisher
}

func NewQueueSender(queue jsonPublisher) *QueueSender {
	return &QueueSender{queue: queue}
}

func (s *QueueSender) SendOTP(ctx context.Context, phone, code string) error {
	_, err := s.queue.PublishJSON(ctx, mq.QueueOTPDelivery, OTPMessage{Phone: phone, Code: code})
	return err
}

type otpSender interface {
	SendOTP(ctx context.Context, phone, code string) error
}

// AsyncSender delivers in the background so a slow channel never delays the
// request. Errors are logged.
type AsyncSender struct {
	next    otpSender
	timeout time.Duration
}

func NewAsyncSender(next otpSender, timeout time.Duration) *AsyncSender {
	return &AsyncSender{next: next, timeout: timeout}
}

func (a *AsyncSender) SendOTP(ctx context.Context, phone, code string) error {
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		if err := a.next.SendOTP(ctx, phone, code); err != nil {
			log.Printf("[OTP] background delivery failed: %v", err)
		}
	}()
	return nil
}
