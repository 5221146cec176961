package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/wardenhq/warden/pkg/chart"
	"github.com/wardenhq/warden/pkg/gate"
	"github.com/wardenhq/warden/pkg/host"
	"github.com/wardenhq/warden/pkg/issuance"
	"github.com/wardenhq/warden/pkg/log"
	"github.com/wardenhq/warden/pkg/speedtest"
	"github.com/wardenhq/warden/pkg/storage"
	"github.com/wardenhq/warden/pkg/types"
)

// PeerInspector queries VPN peer status
type PeerInspector interface {
	Peers(ctx context.Context) (string, error)
}

// SpeedRunner executes the external bandwidth benchmark
type SpeedRunner interface {
	Run(ctx context.Context) (speedtest.Result, error)
}

// CredentialWorkflow drives the issuance state machine
type CredentialWorkflow interface {
	Submit(requesterID int64, requesterLabel string) (uint64, error)
	Decide(ctx context.Context, id uint64, decision issuance.Decision, operatorID int64) (string, error)
}

// Options holds the command-handling knobs
type Options struct {
	ChartDefaultHours int
	NetWindow         time.Duration
	DiskPath          string
}

// Bot dispatches inbound Telegram commands and inline choices to
// Warden's components. Each update is handled in its own goroutine so
// a slow chart render or speed test never blocks the next update.
type Bot struct {
	api      *tgbotapi.BotAPI
	msgr     Messenger
	store    storage.Store
	gate     *gate.Gate
	workflow CredentialWorkflow
	peers    PeerInspector
	speed    SpeedRunner
	hostp    host.Provider
	opts     Options
	logger   zerolog.Logger
}

// New wires a Bot. Every collaborator is passed in explicitly; the Bot
// owns no global state.
func New(api *tgbotapi.BotAPI, msgr Messenger, store storage.Store, g *gate.Gate,
	workflow CredentialWorkflow, peers PeerInspector, speed SpeedRunner,
	hostp host.Provider, opts Options) *Bot {
	return &Bot{
		api:      api,
		msgr:     msgr,
		store:    store,
		gate:     g,
		workflow: workflow,
		peers:    peers,
		speed:    speed,
		hostp:    hostp,
		opts:     opts,
		logger:   log.WithComponent("bot"),
	}
}

// Run processes updates until the context is cancelled
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.api.Self.UserName).Msg("update loop started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate is the handler boundary: failures become a short reply
// and never crash the update loop.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Msg("handler panicked")
		}
	}()

	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	var err error
	switch msg.Command() {
	case "start":
		// The claim command is the one gate exemption: an unbound
		// daemon has nobody to authorize yet.
		err = b.handleStart(chatID)
	default:
		if !b.gate.Authorize(chatID) {
			// Silently dropped: no reply confirms the bot to strangers
			b.logger.Debug().Int64("chat_id", chatID).Str("command", msg.Command()).Msg("unauthorized command dropped")
			return
		}
		switch msg.Command() {
		case "help":
			err = b.handleHelp(chatID)
		case "status":
			err = b.handleStatus(chatID)
		case "peers":
			err = b.handlePeers(ctx, chatID)
		case "graph":
			hours := b.opts.ChartDefaultHours
			if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
				if parsed, perr := strconv.Atoi(arg); perr == nil && parsed > 0 {
					hours = parsed
				}
			}
			err = b.handleGraph(chatID, hours)
		case "speedtest":
			err = b.handleSpeedtest(ctx, chatID)
		case "request":
			err = b.handleRequest(msg)
		case "pending":
			err = b.handlePending(chatID)
		default:
			// Unknown commands are ignored
			return
		}
	}

	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Str("command", msg.Command()).Msg("command failed")
		b.reply(chatID, "⚠️ "+userFacing(err))
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	// Acknowledge the button press so the client stops spinning
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.logger.Warn().Err(err).Msg("failed to answer callback")
	}

	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	if !b.gate.Authorize(chatID) {
		b.logger.Debug().Int64("chat_id", chatID).Msg("unauthorized callback dropped")
		return
	}

	cmd, err := parseCallback(cq.Data)
	if err != nil {
		b.logger.Warn().Err(err).Msg("callback rejected")
		return
	}

	switch cmd.kind {
	case cbStatus:
		err = b.handleStatus(chatID)
	case cbPeers:
		err = b.handlePeers(ctx, chatID)
	case cbGraph:
		err = b.handleGraph(chatID, cmd.hours)
	case cbSpeedtest:
		err = b.handleSpeedtest(ctx, chatID)
	case cbApprove:
		err = b.handleDecision(ctx, chatID, cmd.requestID, issuance.DecisionApprove)
	case cbReject:
		err = b.handleDecision(ctx, chatID, cmd.requestID, issuance.DecisionReject)
	}

	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Str("token", cq.Data).Msg("callback failed")
		b.reply(chatID, "⚠️ "+userFacing(err))
	}
}

func (b *Bot) handleStart(chatID int64) error {
	result, err := b.gate.Claim(chatID)
	if err != nil {
		return err
	}
	switch result {
	case gate.ClaimedNow:
		return b.msgr.SendText(chatID, "✅ Chat authorized. Use /help")
	case gate.AlreadyOwner:
		return b.msgr.SendText(chatID, "✅ Already authorized. Use /help")
	default:
		return b.msgr.SendText(chatID, "⛔ This bot is locked to another chat")
	}
}

func (b *Bot) handleHelp(chatID int64) error {
	choices := []types.Choice{
		{Label: "📊 Status", Token: "status"},
		{Label: "👥 Peers", Token: "peers"},
		{Label: "📈 Graph", Token: fmt.Sprintf("graph_%d", b.opts.ChartDefaultHours)},
		{Label: "⚡ Speedtest", Token: "speedtest"},
	}
	return b.msgr.SendChoices(chatID, "Pick an action:", choices)
}

func (b *Bot) handleStatus(chatID int64) error {
	cpu, err := b.hostp.CPUPercent()
	if err != nil {
		return err
	}
	mem, err := b.hostp.MemPercent()
	if err != nil {
		return err
	}
	disk, err := b.hostp.DiskUsedPercent(b.opts.DiskPath)
	if err != nil {
		return err
	}
	boot, err := b.hostp.BootTime()
	if err != nil {
		return err
	}

	before, err := b.hostp.NetCounters()
	if err != nil {
		return err
	}
	start := time.Now()
	time.Sleep(b.opts.NetWindow)
	after, err := b.hostp.NetCounters()
	if err != nil {
		return err
	}
	elapsed := time.Since(start).Seconds()
	inBps := host.CounterDelta(before.BytesRecv, after.BytesRecv) / elapsed
	outBps := host.CounterDelta(before.BytesSent, after.BytesSent) / elapsed

	hostname, _ := os.Hostname()

	lines := []string{
		fmt.Sprintf("CPU: %.1f%%", cpu),
		fmt.Sprintf("MEM: %.1f%%", mem),
		fmt.Sprintf("DISK: %.1f%%", disk),
		fmt.Sprintf("NET: IN %s, OUT %s", humanBytesPerSec(inBps), humanBytesPerSec(outBps)),
		fmt.Sprintf("UPTIME: %s (since %s)", formatUptime(time.Since(boot)), boot.Format("2006-01-02 15:04:05")),
		fmt.Sprintf("HOST: %s", hostname),
	}
	return b.msgr.SendText(chatID, strings.Join(lines, "\n"))
}

func (b *Bot) handlePeers(ctx context.Context, chatID int64) error {
	out, err := b.peers.Peers(ctx)
	if err != nil {
		return b.msgr.SendText(chatID, truncate("Failed to fetch peers: "+err.Error(), 1000))
	}
	return b.msgr.SendHTML(chatID, "<pre>"+out+"</pre>")
}

func (b *Bot) handleGraph(chatID int64, hours int) error {
	since := time.Now().Add(-time.Duration(hours) * time.Hour).Unix()
	samples, err := b.store.QuerySamples(since)
	if err != nil {
		return err
	}

	png, err := chart.Render(samples)
	if errors.Is(err, chart.ErrNotEnoughData) {
		return b.msgr.SendText(chatID, "No chart data yet")
	}
	if err != nil {
		return err
	}
	return b.msgr.SendImage(chatID, png, "graph.png")
}

func (b *Bot) handleSpeedtest(ctx context.Context, chatID int64) error {
	result, err := b.speed.Run(ctx)
	if err != nil {
		return b.msgr.SendText(chatID, truncate("⚠️ speedtest failed: "+err.Error(), 900))
	}

	lines := []string{"🌐 Speed test results:\n"}
	if result.DownloadMbps != nil {
		lines = append(lines, fmt.Sprintf("📥 Download: %.2f Mbps", *result.DownloadMbps))
	}
	if result.UploadMbps != nil {
		lines = append(lines, fmt.Sprintf("📤 Upload: %.2f Mbps", *result.UploadMbps))
	}
	if result.PingMs != nil {
		lines = append(lines, fmt.Sprintf("⏱️ Ping: %.1f ms", *result.PingMs))
	}

	if dl := result.DownloadMbps; dl != nil {
		if *dl >= 50 {
			lines = append(lines, "\n✅ Excellent download speed!")
		} else if *dl < 10 {
			lines = append(lines, "\n⚠️ Low download speed!")
		}
	}
	if up := result.UploadMbps; up != nil {
		if *up >= 20 {
			lines = append(lines, "✅ Excellent upload speed!")
		} else if *up < 5 {
			lines = append(lines, "⚠️ Low upload speed!")
		}
	}

	lines = append(lines, fmt.Sprintf("\nTested at: %s", time.Now().Format("02.01.2006 15:04:05")))
	return b.msgr.SendText(chatID, strings.Join(lines, "\n"))
}

func (b *Bot) handleRequest(msg *tgbotapi.Message) error {
	label := ""
	if msg.From != nil {
		label = msg.From.UserName
		if label == "" {
			label = msg.From.FirstName
		}
	}

	id, err := b.workflow.Submit(msg.Chat.ID, label)
	if err != nil {
		if errors.Is(err, types.ErrFeatureDisabled) {
			return b.msgr.SendText(msg.Chat.ID, "Credential issuance is disabled")
		}
		return err
	}
	return b.msgr.SendText(msg.Chat.ID, fmt.Sprintf("🔑 Request #%d submitted, waiting for approval", id))
}

func (b *Bot) handlePending(chatID int64) error {
	pending, err := b.store.PendingRequests()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return b.msgr.SendText(chatID, "No pending requests")
	}

	for _, req := range pending {
		label := req.RequesterLabel
		if label == "" {
			label = fmt.Sprintf("id %d", req.RequesterID)
		}
		text := fmt.Sprintf("🔑 Request #%d from %s (%s)", req.ID, label,
			req.CreatedAt.Format("2006-01-02 15:04"))
		choices := []types.Choice{
			{Label: "✅ Approve", Token: fmt.Sprintf("approve_%d", req.ID)},
			{Label: "❌ Reject", Token: fmt.Sprintf("reject_%d", req.ID)},
		}
		if err := b.msgr.SendChoices(chatID, text, choices); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) handleDecision(ctx context.Context, chatID int64, requestID uint64, decision issuance.Decision) error {
	outcome, err := b.workflow.Decide(ctx, requestID, decision, chatID)
	if err != nil {
		return err
	}
	return b.msgr.SendText(chatID, outcome)
}

// reply sends best-effort error text; a failed reply is only logged
func (b *Bot) reply(chatID int64, text string) {
	if err := b.msgr.SendText(chatID, text); err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send reply")
	}
}

// userFacing maps domain sentinels to short replies; anything else
// gets a generic failure line.
func userFacing(err error) string {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return "Request not found"
	case errors.Is(err, types.ErrAlreadyDecided):
		return "Request already processed"
	case errors.Is(err, types.ErrFeatureDisabled):
		return "Credential issuance is disabled"
	case errors.Is(err, types.ErrNoInbound), errors.Is(err, types.ErrExternalConfig):
		return "Proxy update failed, try again later"
	default:
		return "Something went wrong, check the logs"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
