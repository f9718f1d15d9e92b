package bot

import (
	"github.com/tgaibot/tgaibot/internal/provider/openrouter"
	"github.com/tgaibot/tgaibot/internal/telegram"
)

// Reply keyboard button labels. Button presses arrive as plain text
// messages, so these double as dispatch keys.
const (
	btnChooseModel = "🤖 Choose model"
	btnStatus      = "📊 Status"
	btnMemory      = "💭 Memory"
	btnHelp        = "ℹ️ Help"
	btnClearChat   = "🗑️ Clear chat"
	btnBack        = "🔙 Back"
)

// mainKeyboard is the persistent reply keyboard shown in normal operation.
func mainKeyboard() *telegram.ReplyKeyboardMarkup {
	return &telegram.ReplyKeyboardMarkup{
		Keyboard: [][]telegram.KeyboardButton{
			{{Text: btnChooseModel}, {Text: btnStatus}},
			{{Text: btnMemory}, {Text: btnHelp}},
			{{Text: btnClearChat}},
		},
		ResizeKeyboard: true,
	}
}

// modelKeyboard lists every available model plus a back button, one model
// per row.
func modelKeyboard() *telegram.ReplyKeyboardMarkup {
	rows := make([][]telegram.KeyboardButton, 0, len(openrouter.Models)+1)
	for _, m := range openrouter.Models {
		rows = append(rows, []telegram.KeyboardButton{{Text: m.Name}})
	}
	rows = append(rows, []telegram.KeyboardButton{{Text: btnBack}})

	return &telegram.ReplyKeyboardMarkup{
		Keyboard:       rows,
		ResizeKeyboard: true,
	}
}
