package subscription

// SubscribeEvent is emitted when a user joins an island.
type SubscribeEvent struct {
	UserID   string `json:"user_id"`
	IslandID string `json:"island_id"`
}

// UnsubscribeEvent is emitted when a user leaves an island.
type UnsubscribeEvent struct {
	UserID   string `json:"user_id"`
	IslandID string `json:"island_id"`
}

func (e SubscribeEvent) Valid() bool {
	return e.UserID != "" && e.IslandID != ""
}

func (e UnsubscribeEvent) Valid() bool {
	return e.UserID != "" && e.IslandID != ""
}
