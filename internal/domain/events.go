package domain

// CartChange describes one persisted-cart mutation as reported by the
// storage layer. Origin is the writing instance's id, used to suppress
// echoes of this instance's own writes.
type CartChange struct {
	Key    string `json:"key"`
	Origin string `json:"origin"`
}
