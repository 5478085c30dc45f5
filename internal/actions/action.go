// Package actions dispatches named actions on quotes and invoices.
//
// A token such as "approve" or "clone_to_invoice" is parsed into a Kind at
// the boundary. The Dispatcher runs exactly one operation for one document;
// the Coordinator applies an action across a batch of ids. Both return a
// Result that the caller translates into its transport.
package actions

// Kind is a closed set of document actions.
type Kind int

const (
	KindUnknown Kind = iota
	KindCloneToInvoice
	KindCloneToQuote
	KindApprove
	KindMarkSent
	KindArchive
	KindDelete
	KindDownload
	KindEmail
	KindHistory
	// KindConvert is only accepted by the Coordinator.
	KindConvert
)

var kindTokens = map[string]Kind{
	"clone_to_invoice": KindCloneToInvoice,
	"clone_to_quote":   KindCloneToQuote,
	"approve":          KindApprove,
	"mark_sent":        KindMarkSent,
	"archive":          KindArchive,
	"delete":           KindDelete,
	"download":         KindDownload,
	"email":            KindEmail,
	"history":          KindHistory,
	"convert":          KindConvert,
}

// Parse maps a token to its Kind. Unknown tokens return KindUnknown, false.
func Parse(token string) (Kind, bool) {
	k, ok := kindTokens[token]
	return k, ok
}

func (k Kind) String() string {
	for token, kind := range kindTokens {
		if kind == k {
			return token
		}
	}
	return "unknown"
}

// Capability is what the actor must be allowed to do on a document.
type Capability string

const (
	CapabilityView Capability = "view"
	CapabilityEdit Capability = "edit"
)

// Capability returns the permission the action requires.
func (k Kind) Capability() Capability {
	switch k {
	case KindDownload, KindHistory:
		return CapabilityView
	default:
		return CapabilityEdit
	}
}

// Mode tells the dispatcher whether it runs for one document or as part
// of a batch.
type Mode int

const (
	ModeSingle Mode = iota
	ModeBulk
)
