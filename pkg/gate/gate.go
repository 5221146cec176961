package gate

import (
	"strconv"

	"github.com/rs/zerolog"

	"github.com/wardenhq/warden/pkg/log"
	"github.com/wardenhq/warden/pkg/storage"
)

// SettingKey is where the claimed operator chat id is persisted
const SettingKey = "allowed_chat_id"

// ClaimResult describes the outcome of a /start claim attempt
type ClaimResult int

const (
	// ClaimedNow means this chat just became the bound operator
	ClaimedNow ClaimResult = iota
	// AlreadyOwner means this chat was already the bound operator
	AlreadyOwner
	// Locked means another chat holds the binding
	Locked
)

// Gate binds the daemon to exactly one operator chat. A fixed id
// supplied at startup wins over anything persisted; otherwise the
// first chat to claim is persisted and the binding holds across
// restarts.
type Gate struct {
	store  storage.Store
	fixed  int64 // 0 when no static override
	logger zerolog.Logger
}

// New creates a Gate. fixedChatID of zero means no static override.
func New(store storage.Store, fixedChatID int64) *Gate {
	return &Gate{
		store:  store,
		fixed:  fixedChatID,
		logger: log.WithComponent("gate"),
	}
}

// Resolve returns the bound operator chat id, if any
func (g *Gate) Resolve() (int64, bool) {
	if g.fixed != 0 {
		return g.fixed, true
	}
	value, found, err := g.store.GetSetting(SettingKey)
	if err != nil {
		g.logger.Error().Err(err).Msg("failed to read operator binding")
		return 0, false
	}
	if !found {
		return 0, false
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		g.logger.Error().Str("value", value).Msg("corrupt operator binding setting")
		return 0, false
	}
	return id, true
}

// Authorize reports whether a command from chatID may proceed. While
// no operator is bound every chat is allowed (the claim command then
// locks the binding); afterwards only the bound chat passes.
func (g *Gate) Authorize(chatID int64) bool {
	bound, ok := g.Resolve()
	if !ok {
		return true
	}
	return bound == chatID
}

// Claim attempts to bind chatID as the operator
func (g *Gate) Claim(chatID int64) (ClaimResult, error) {
	if g.fixed != 0 {
		if g.fixed == chatID {
			return AlreadyOwner, nil
		}
		return Locked, nil
	}

	current, claimed, err := g.store.ClaimSetting(SettingKey, strconv.FormatInt(chatID, 10))
	if err != nil {
		return Locked, err
	}
	if claimed {
		g.logger.Info().Int64("chat_id", chatID).Msg("operator binding claimed")
		return ClaimedNow, nil
	}
	if current == strconv.FormatInt(chatID, 10) {
		return AlreadyOwner, nil
	}
	return Locked, nil
}
