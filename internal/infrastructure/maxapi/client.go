package maxapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/maxschool-bot/internal/config"
)

// Replier sends messages and callback answers back to platform users.
// The registration dispatch layer depends only on this interface.
type Replier interface {
	SendMessage(ctx context.Context, userID int64, text string, keyboard *Keyboard) error
	AnswerCallback(ctx context.Context, callbackID, notification string) error
}

// Client is a thin REST client for the MAX Bot API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    cfg.BotAPIBaseURL,
		token:      cfg.BotToken,
	}
}

type outboundMessage struct {
	Text        string               `json:"text"`
	Format      string               `json:"format,omitempty"`
	Attachments []outboundAttachment `json:"attachments,omitempty"`
}

type outboundAttachment struct {
	Type    string    `json:"type"`
	Payload *Keyboard `json:"payload"`
}

func (c *Client) SendMessage(ctx context.Context, userID int64, text string, keyboard *Keyboard) error {
	msg := outboundMessage{Text: text, Format: "markdown"}
	if keyboard != nil {
		msg.Attachments = []outboundAttachment{{Type: "inline_keyboard", Payload: keyboard}}
	}

	q := url.Values{}
	q.Set("access_token", c.token)
	q.Set("user_id", strconv.FormatInt(userID, 10))
	return c.post(ctx, "/messages", q, msg)
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID, notification string) error {
	q := url.Values{}
	q.Set("access_token", c.token)
	q.Set("callback_id", callbackID)
	body := map[string]string{"notification": notification}
	return c.post(ctx, "/answers", q, body)
}

func (c *Client) post(ctx context.Context, path string, q url.Values, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path+"?"+q.Encode(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bot api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("bot api %s returned %d: %s", path, resp.StatusCode, b)
	}
	return nil
}
