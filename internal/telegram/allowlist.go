package telegram

// AllowList restricts which users and chats may interact with the bot.
// An empty AllowList permits everyone — the bot is public unless the
// operator configures restrictions.
type AllowList struct {
	users map[int64]struct{}
	chats map[int64]struct{}
}

// NewAllowList creates an AllowList with O(1) lookups.
func NewAllowList(users, chats []int64) *AllowList {
	a := &AllowList{
		users: make(map[int64]struct{}, len(users)),
		chats: make(map[int64]struct{}, len(chats)),
	}
	for _, u := range users {
		a.users[u] = struct{}{}
	}
	for _, c := range chats {
		a.chats[c] = struct{}{}
	}
	return a
}

// IsAllowed reports whether the message sender or chat is permitted.
//
// Rules:
//   - If both sets are empty → allow (unrestricted bot).
//   - If the sender's ID matches a user entry → allow.
//   - If the chat's ID matches a chat entry → allow.
//   - Otherwise → deny.
func (a *AllowList) IsAllowed(msg *Message) bool {
	if a == nil || (len(a.users) == 0 && len(a.chats) == 0) {
		return true
	}
	if msg.From != nil {
		if _, ok := a.users[msg.From.ID]; ok {
			return true
		}
	}
	if _, ok := a.chats[msg.Chat.ID]; ok {
		return true
	}
	return false
}
