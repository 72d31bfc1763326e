package notify

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
)

// mockDiscordSession records sent embeds.
type mockDiscordSession struct {
	embeds   []*discordgo.MessageEmbed
	channels []string
}

func (m *mockDiscordSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.embeds = append(m.embeds, embed)
	m.channels = append(m.channels, channelID)
	return &discordgo.Message{ID: "1"}, nil
}

func TestNewDiscord_Validation(t *testing.T) {
	if _, err := NewDiscord(DiscordOpts{ChannelID: "123"}); err == nil {
		t.Error("want error without token or session")
	}
	if _, err := NewDiscord(DiscordOpts{Token: "abc"}); err == nil {
		t.Error("want error without channel id")
	}
}

func TestDiscordSend(t *testing.T) {
	sess := &mockDiscordSession{}
	n, err := NewDiscord(DiscordOpts{ChannelID: "123456", Session: sess})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	err = n.Send(context.Background(), Event{
		Title:    "Herd moved",
		Body:     "morning rotation",
		Severity: "info",
		Fields:   []Field{{Name: "To", Value: "loc-00002", Short: true}},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(sess.embeds) != 1 || sess.channels[0] != "123456" {
		t.Fatalf("sent %d embeds to %v", len(sess.embeds), sess.channels)
	}
	embed := sess.embeds[0]
	if embed.Title != "Herd moved" || len(embed.Fields) != 1 {
		t.Errorf("embed = %+v", embed)
	}
	if embed.Color != embedColor("info") {
		t.Errorf("color = %d", embed.Color)
	}
}

func TestEmbedColor(t *testing.T) {
	if embedColor("success") != 0x36a64f {
		t.Errorf("success color = %x", embedColor("success"))
	}
	if embedColor("unknown") != 0x2196f3 {
		t.Errorf("default color = %x", embedColor("unknown"))
	}
}
