package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"quizapp-client/internal/domain"
)

const DefaultAPIURL = "https://graph.facebook.com/v17.0"

// ErrNotConfigured is returned when no access token or phone number id is set.
var ErrNotConfigured = errors.New("whatsapp cloud api is not configured")

type Config struct {
	APIURL        string
	PhoneNumberID string
	AccessToken   string
	Timeout       time.Duration
}

// Client sends invite texts through the WhatsApp Cloud API.
type Client struct {
	apiURL        string
	phoneNumberID string
	http          *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.AccessToken == "" || cfg.PhoneNumberID == "" {
		return nil, ErrNotConfigured
	}
	apiURL := strings.TrimSuffix(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
	h := oauth2.NewClient(context.Background(), ts)
	h.Timeout = cfg.Timeout
	if h.Timeout <= 0 {
		h.Timeout = 15 * time.Second
	}
	return &Client{apiURL: apiURL, phoneNumberID: cfg.PhoneNumberID, http: h}, nil
}

type textMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		PreviewURL bool   `json:"preview_url"`
		Body       string `json:"body"`
	} `json:"text"`
}

// Send posts one text message to the participant's international number.
func (c *Client) Send(ctx context.Context, phone domain.PhoneNumber, message string) error {
	msg := textMessage{MessagingProduct: "whatsapp", To: phone.International(), Type: "text"}
	msg.Text.PreviewURL = true
	msg.Text.Body = message

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/"+c.phoneNumberID+"/messages", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return fmt.Errorf("send whatsapp message: %s: %s", res.Status, apiErrorMessage(raw))
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

func apiErrorMessage(raw []byte) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return strings.TrimSpace(string(raw))
}
