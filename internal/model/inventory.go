package model

// InventoryEntry represents the quantity of an item held by a player.
// Entries are keyed by (owner, item, quality); differing qualities never
// merge into one row.
type InventoryEntry struct {
	OwnerID  int64  `json:"owner_id"`
	ItemID   string `json:"item_id"`
	Quality  int    `json:"quality"`
	Quantity int    `json:"quantity"`

	// Joined fields (not always populated).
	ItemName string `json:"item_name,omitempty"`
}

// ItemStack is one line of an item movement: a cost list entry, an offered
// or requested trade line, or a granted stack.
type ItemStack struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	Quality  int    `json:"quality,omitempty"`
}
