package slack

import (
	"strings"

	"github.com/google/uuid"
	"github.com/slack-go/slack/slackevents"

	"clawbridge/pkg/pluginapi"
)

// translateMessage maps a plain channel message. Bot chatter, edits and
// join/leave subtypes are dropped. Messages mentioning the bot are dropped
// too; those arrive again as app_mention events and are delivered there.
func (c *Channel) translateMessage(ev *slackevents.MessageEvent) (pluginapi.Message, bool) {
	if ev.SubType != "" || ev.BotID != "" {
		return pluginapi.Message{}, false
	}
	if ev.User == "" || ev.User == c.bot() {
		return pluginapi.Message{}, false
	}
	if !c.roomAllowed(ev.Channel) {
		return pluginapi.Message{}, false
	}
	if c.mentionsBot(ev.Text) {
		return pluginapi.Message{}, false
	}
	return pluginapi.Message{
		ID:        messageID(ev.ClientMsgID, ev.TimeStamp),
		Channel:   "slack",
		ChannelID: ev.Channel,
		ThreadID:  ev.ThreadTimeStamp,
		UserID:    ev.User,
		Text:      ev.Text,
		Timestamp: ev.TimeStamp,
	}, true
}

func (c *Channel) translateMention(ev *slackevents.AppMentionEvent) (pluginapi.Message, bool) {
	if ev.User == "" || ev.User == c.bot() || ev.BotID != "" {
		return pluginapi.Message{}, false
	}
	if !c.roomAllowed(ev.Channel) {
		return pluginapi.Message{}, false
	}
	return pluginapi.Message{
		ID:        messageID("", ev.TimeStamp),
		Channel:   "slack",
		ChannelID: ev.Channel,
		ThreadID:  ev.ThreadTimeStamp,
		UserID:    ev.User,
		Text:      ev.Text,
		Timestamp: ev.TimeStamp,
		Mention:   true,
	}, true
}

func (c *Channel) roomAllowed(channelID string) bool {
	if len(c.cfg.AllowedRooms) == 0 {
		return true
	}
	for _, room := range c.cfg.AllowedRooms {
		if room == channelID {
			return true
		}
	}
	return false
}

func (c *Channel) mentionsBot(text string) bool {
	bot := c.bot()
	if bot == "" {
		return false
	}
	return strings.Contains(text, "<@"+bot+">")
}

// messageID prefers Slack's client id, then the message timestamp, and only
// mints a fresh id when both are absent.
func messageID(clientMsgID, ts string) string {
	if clientMsgID != "" {
		return clientMsgID
	}
	if ts != "" {
		return ts
	}
	return uuid.NewString()
}
