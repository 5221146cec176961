package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/wardenhq/warden/pkg/types"
)

// Messenger is the outbound messaging surface the components depend
// on. Client is the Telegram-backed implementation; tests use fakes.
type Messenger interface {
	SendText(chatID int64, text string) error
	SendHTML(chatID int64, text string) error
	SendImage(chatID int64, data []byte, filename string) error
	SendChoices(chatID int64, text string, choices []types.Choice) error
}

// Client wraps the Telegram bot API as a Messenger
type Client struct {
	api *tgbotapi.BotAPI
}

// NewClient creates a Client over an authorized bot API handle
func NewClient(api *tgbotapi.BotAPI) *Client {
	return &Client{api: api}
}

func (c *Client) SendText(chatID int64, text string) error {
	_, err := c.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (c *Client) SendHTML(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := c.api.Send(msg)
	return err
}

func (c *Client) SendImage(chatID int64, data []byte, filename string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	_, err := c.api.Send(photo)
	return err
}

func (c *Client) SendChoices(chatID int64, text string, choices []types.Choice) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = choiceKeyboard(choices)
	_, err := c.api.Send(msg)
	return err
}

// choiceKeyboard lays choices out two per row
func choiceKeyboard(choices []types.Choice) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(choices); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(choices[i].Label, choices[i].Token),
		}
		if i+1 < len(choices) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(choices[i+1].Label, choices[i+1].Token))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
