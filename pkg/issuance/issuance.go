package issuance

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wardenhq/warden/pkg/log"
	"github.com/wardenhq/warden/pkg/proxy"
	"github.com/wardenhq/warden/pkg/storage"
	"github.com/wardenhq/warden/pkg/types"
)

// Decision is an operator's verdict on a pending request
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ConfigAccess is the external proxy configuration collaborator:
// full-document read and write plus the restart trigger. The
// collaborator provides no locking of its own.
type ConfigAccess interface {
	Read() (*proxy.Document, error)
	Write(doc *proxy.Document) error
	Restart(ctx context.Context) error
}

// Messenger delivers workflow notifications
type Messenger interface {
	SendText(chatID int64, text string) error
	SendChoices(chatID int64, text string, choices []types.Choice) error
}

// OperatorResolver reports the bound operator chat, if any
type OperatorResolver interface {
	Resolve() (int64, bool)
}

// Workflow runs the credential issuance state machine: requests are
// created pending and transition exactly once to approved or rejected.
// Approval appends a freshly generated client identifier to the proxy
// config and restarts the proxy before the ledger records the
// decision, so a failed external update leaves the request pending and
// retriable.
type Workflow struct {
	store    storage.Store
	resolver OperatorResolver
	msgr     Messenger
	config   ConfigAccess
	logger   zerolog.Logger

	enabled    bool
	inboundTag string
	clientFlow string
	link       proxy.LinkParams

	// Serializes every decision and, inside it, the whole proxy
	// read-modify-write-restart sequence: concurrent approvals must
	// not interleave reads and clobber each other's appended clients.
	mu sync.Mutex

	newCredentialID func() string
}

// Options configures a Workflow
type Options struct {
	Enabled    bool
	InboundTag string
	ClientFlow string
	Link       proxy.LinkParams
}

// NewWorkflow creates the issuance workflow
func NewWorkflow(store storage.Store, resolver OperatorResolver, msgr Messenger, config ConfigAccess, opts Options) *Workflow {
	return &Workflow{
		store:           store,
		resolver:        resolver,
		msgr:            msgr,
		config:          config,
		logger:          log.WithComponent("issuance"),
		enabled:         opts.Enabled,
		inboundTag:      opts.InboundTag,
		clientFlow:      opts.ClientFlow,
		link:            opts.Link,
		newCredentialID: uuid.NewString,
	}
}

// Submit creates a pending request and asks the bound operator to
// decide it. Notification failure (or an unbound operator) never
// invalidates the created request: it stays visible to /pending.
func (w *Workflow) Submit(requesterID int64, requesterLabel string) (uint64, error) {
	if !w.enabled {
		return 0, types.ErrFeatureDisabled
	}

	id, err := w.store.CreateRequest(types.RequestKindCredential, requesterID, requesterLabel)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	w.logger.Info().Uint64("request_id", id).Int64("requester_id", requesterID).Msg("credential request submitted")

	operatorID, bound := w.resolver.Resolve()
	if !bound {
		return id, nil
	}

	label := requesterLabel
	if label == "" {
		label = fmt.Sprintf("id %d", requesterID)
	}
	text := fmt.Sprintf("🔑 Credential request #%d from %s", id, label)
	choices := []types.Choice{
		{Label: "✅ Approve", Token: fmt.Sprintf("approve_%d", id)},
		{Label: "❌ Reject", Token: fmt.Sprintf("reject_%d", id)},
	}
	if err := w.msgr.SendChoices(operatorID, text, choices); err != nil {
		w.logger.Warn().Err(err).Uint64("request_id", id).Msg("failed to notify operator")
	}

	return id, nil
}

// Decide applies an operator verdict to a pending request and returns
// the outcome text for the operator chat. Expected failures surface as
// the types sentinels: ErrNotFound, ErrAlreadyDecided,
// ErrFeatureDisabled, ErrNoInbound and ErrExternalConfig.
func (w *Workflow) Decide(ctx context.Context, id uint64, decision Decision, operatorID int64) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	req, err := w.store.GetRequest(id)
	if err != nil {
		return "", err
	}
	if req.Decided() {
		return "", types.ErrAlreadyDecided
	}

	switch decision {
	case DecisionReject:
		if err := w.store.DecideRequest(id, types.RequestStatusRejected, operatorID, ""); err != nil {
			return "", err
		}
		w.logger.Info().Uint64("request_id", id).Msg("request rejected")
		return fmt.Sprintf("Request #%d rejected", id), nil

	case DecisionApprove:
		if !w.enabled {
			return "", types.ErrFeatureDisabled
		}
		credentialID, err := w.issueClient(ctx, req)
		if err != nil {
			return "", err
		}
		if err := w.store.DecideRequest(id, types.RequestStatusApproved, operatorID, credentialID); err != nil {
			// The client entry already landed in the proxy config; the
			// ledger refusing the transition means someone else won the
			// race despite the mutex, which indicates an external
			// writer. Surface it rather than hide it.
			return "", err
		}
		w.logger.Info().Uint64("request_id", id).Str("credential_id", credentialID).Msg("request approved")

		w.deliverCredential(req, credentialID)
		return fmt.Sprintf("Request #%d approved, credential %s issued", id, credentialID), nil

	default:
		return "", fmt.Errorf("unknown decision: %s", decision)
	}
}

// issueClient performs the external side effect: append one client
// entry to the configured inbound and restart the proxy. Any failure
// wraps types.ErrExternalConfig and leaves the ledger untouched.
func (w *Workflow) issueClient(ctx context.Context, req *types.IssuanceRequest) (string, error) {
	doc, err := w.config.Read()
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrExternalConfig, err)
	}

	inbound := doc.InboundByTag(w.inboundTag)
	if inbound == nil {
		if len(doc.Inbounds) == 0 {
			return "", types.ErrNoInbound
		}
		// Designated tag absent: fall back to the first inbound
		inbound = doc.Inbounds[0]
	}

	credentialID := w.newCredentialID()
	client := proxy.Client{
		ID:    credentialID,
		Email: clientEmail(req, credentialID),
		Flow:  w.clientFlow,
	}
	if err := inbound.AddClient(client); err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrExternalConfig, err)
	}

	if err := w.config.Write(doc); err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrExternalConfig, err)
	}
	if err := w.config.Restart(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrExternalConfig, err)
	}
	return credentialID, nil
}

// deliverCredential sends the templated connection string to the
// requester. Delivery failure does not roll back the approval.
func (w *Workflow) deliverCredential(req *types.IssuanceRequest, credentialID string) {
	link := proxy.ConnectionLink(w.link, credentialID, req.RequesterLabel)
	text := fmt.Sprintf("✅ Your VPN credential is ready:\n\n%s", link)
	if err := w.msgr.SendText(req.RequesterID, text); err != nil {
		w.logger.Warn().Err(err).Uint64("request_id", req.ID).Msg("failed to deliver credential to requester")
	}
}

// clientEmail labels the allow-list entry with the requester and a
// short prefix of the credential id.
func clientEmail(req *types.IssuanceRequest, credentialID string) string {
	label := req.RequesterLabel
	if label == "" {
		label = fmt.Sprintf("user%d", req.RequesterID)
	}
	short := credentialID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s#%s", label, short)
}
