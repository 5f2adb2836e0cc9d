package domain

// CartVariant — выбор варианта в корзине. Клиенты кладут в ID то идентификатор связки,
// то идентификатор варианта; MappingID передаётся явно, когда клиент его знает.
type CartVariant struct {
	ID        any `json:"id"`
	MappingID any `json:"mappingId,omitempty"`
}

// CartItem — позиция корзины, присланная клиентом.
type CartItem struct {
	ID       any          `json:"id"`
	Quantity int          `json:"quantity"`
	Variant  *CartVariant `json:"variant,omitempty"`
}
