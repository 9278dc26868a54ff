package slack

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"

	"clawbridge/pkg/pluginapi"
)

// Config wires the plugin to its workspace. Tokens are read from the
// environment at connect time, never stored. APIURL overrides the Slack API
// base for GovSlack tenants and tests.
type Config struct {
	AppTokenEnv    string
	BotTokenEnv    string
	DefaultChannel string
	AllowedRooms   []string
	APIURL         string
}

// Channel bridges Slack's Events API (over socket mode) to the host plugin
// contracts. Inbound envelopes are acked before dispatch; handler errors are
// logged and never stop the loop.
type Channel struct {
	cfg Config
	log *zap.Logger

	mu        sync.Mutex
	api       *slack.Client
	botUserID string
}

func New(cfg Config, log *zap.Logger) *Channel {
	if cfg.AppTokenEnv == "" {
		cfg.AppTokenEnv = "SLACK_APP_TOKEN"
	}
	if cfg.BotTokenEnv == "" {
		cfg.BotTokenEnv = "SLACK_BOT_TOKEN"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Channel{cfg: cfg, log: log}
}

func (c *Channel) Name() string { return "slack" }

// Probe checks token presence and shape without touching the network, so
// doctor stays usable offline.
func (c *Channel) Probe(_ context.Context) (pluginapi.ProbeResult, error) {
	res := pluginapi.ProbeResult{
		Name:         "slack",
		Capabilities: []string{"receive", "send", "threads"},
	}
	appToken := os.Getenv(c.cfg.AppTokenEnv)
	botToken := os.Getenv(c.cfg.BotTokenEnv)
	switch {
	case botToken == "":
		res.Message = fmt.Sprintf("%s is not set", c.cfg.BotTokenEnv)
	case appToken == "":
		res.Message = fmt.Sprintf("%s is not set", c.cfg.AppTokenEnv)
	case !strings.HasPrefix(appToken, "xapp-"):
		res.Message = fmt.Sprintf("%s must be an app-level token (xapp-)", c.cfg.AppTokenEnv)
	case !strings.HasPrefix(botToken, "xoxb-"):
		res.Message = fmt.Sprintf("%s must be a bot token (xoxb-)", c.cfg.BotTokenEnv)
	default:
		res.Available = true
	}
	return res, nil
}

// Start connects socket mode and blocks until ctx is cancelled or the
// transport fails. Messages are delivered to handler one at a time.
func (c *Channel) Start(ctx context.Context, handler pluginapi.Handler) error {
	if handler == nil {
		return fmt.Errorf("SLK_START: nil handler")
	}
	api, err := c.client()
	if err != nil {
		return err
	}
	auth, err := api.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("SLK_AUTH: %w", err)
	}
	c.setBotUserID(auth.UserID)
	c.log.Info("slack channel connected", zap.String("team", auth.Team), zap.String("bot_user", auth.UserID))

	sm := socketmode.New(api)
	runErr := make(chan error, 1)
	go func() { runErr <- sm.RunContext(ctx) }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-runErr:
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("SLK_SOCKET: %w", err)
			}
			return ctx.Err()
		case evt := <-sm.Events:
			c.handleEvent(ctx, sm, evt, handler)
		}
	}
}

func (c *Channel) handleEvent(ctx context.Context, sm *socketmode.Client, evt socketmode.Event, handler pluginapi.Handler) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		c.log.Debug("slack socket connecting")
	case socketmode.EventTypeConnectionError:
		c.log.Warn("slack socket connection error", zap.Any("event", evt.Data))
	case socketmode.EventTypeConnected:
		c.log.Debug("slack socket connected")
	case socketmode.EventTypeEventsAPI:
		apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		if evt.Request != nil {
			sm.Ack(*evt.Request)
		}
		c.dispatch(ctx, apiEvent, handler)
	}
}

func (c *Channel) dispatch(ctx context.Context, apiEvent slackevents.EventsAPIEvent, handler pluginapi.Handler) {
	if apiEvent.Type != slackevents.CallbackEvent {
		return
	}
	var (
		msg pluginapi.Message
		ok  bool
	)
	switch ev := apiEvent.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		msg, ok = c.translateMessage(ev)
	case *slackevents.AppMentionEvent:
		msg, ok = c.translateMention(ev)
	}
	if !ok {
		return
	}
	if err := handler(ctx, msg); err != nil {
		c.log.Warn("slack handler failed", zap.String("message_id", msg.ID), zap.Error(err))
	}
}

// Send posts outbound text, threading when a thread id is present. An empty
// destination falls back to the configured default channel.
func (c *Channel) Send(ctx context.Context, out pluginapi.Outbound) error {
	channelID := out.ChannelID
	if channelID == "" {
		channelID = c.cfg.DefaultChannel
	}
	if channelID == "" {
		return fmt.Errorf("SLK_SEND: no destination channel")
	}
	api, err := c.client()
	if err != nil {
		return err
	}
	opts := []slack.MsgOption{slack.MsgOptionText(out.Text, false)}
	if out.ThreadID != "" {
		opts = append(opts, slack.MsgOptionTS(out.ThreadID))
	}
	if _, _, err := api.PostMessageContext(ctx, channelID, opts...); err != nil {
		return fmt.Errorf("SLK_SEND: %w", err)
	}
	return nil
}

func (c *Channel) client() (*slack.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.api != nil {
		return c.api, nil
	}
	botToken := os.Getenv(c.cfg.BotTokenEnv)
	if botToken == "" {
		return nil, fmt.Errorf("SLK_TOKEN: %s is not set", c.cfg.BotTokenEnv)
	}
	appToken := os.Getenv(c.cfg.AppTokenEnv)
	if appToken == "" {
		return nil, fmt.Errorf("SLK_TOKEN: %s is not set", c.cfg.AppTokenEnv)
	}
	opts := []slack.Option{slack.OptionAppLevelToken(appToken)}
	if c.cfg.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(c.cfg.APIURL))
	}
	c.api = slack.New(botToken, opts...)
	return c.api, nil
}

func (c *Channel) setBotUserID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.botUserID = id
}

func (c *Channel) bot() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.botUserID
}
