package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"launchpad/internal/models"
)

type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
	Timestamp   string              `json:"timestamp"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

const discordColorLaunch = 5763719 // green

// DiscordService 上线播报，未配置 webhook 时静默关闭
type DiscordService struct {
	WebhookURL string
	Enabled    bool
}

func NewDiscordService() *DiscordService {
	url := os.Getenv("DISCORD_WEBHOOK_URL")
	return &DiscordService{
		WebhookURL: url,
		Enabled:    url != "",
	}
}

// AnnounceLaunch 在项目进入 ongoing 时向 Discord 发送 embed
func (s *DiscordService) AnnounceLaunch(project models.Project) error {
	if !s.Enabled {
		return nil
	}

	payload := DiscordWebhookRequest{
		Username: "Launchpad",
		Embeds: []DiscordEmbed{
			{
				Title:       fmt.Sprintf("🚀 %s is live today!", project.Name),
				Description: project.Tagline,
				URL:         project.WebsiteURL,
				Color:       discordColorLaunch,
				Fields: []DiscordEmbedField{
					{Name: "Launch type", Value: string(project.LaunchType), Inline: true},
				},
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Discord payload: %w", err)
	}

	resp, err := http.Post(s.WebhookURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send Discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("discord webhook returned status %d", resp.StatusCode)
	}
	return nil
}
