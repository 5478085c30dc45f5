package gate

// Action describes the kind of operation a user wants to perform.
// View and Edit are the capabilities checked per document; the others
// guard collection-level routes.
type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionDelete Action = "delete"
)
