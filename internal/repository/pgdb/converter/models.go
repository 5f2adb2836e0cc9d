package converter

import "time"

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID                string     `db:"id"`
	Slug              string     `db:"slug"`
	Title             string     `db:"title"`
	OriginalPrice     float64    `db:"original_price"`
	DiscountedPrice   *float64   `db:"discounted_price"`
	Published         bool       `db:"published"`
	TotalStock        int        `db:"total_stock"`
	VariantMappingIDs []string   `db:"variant_mapping_ids"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         *time.Time `db:"updated_at"`
}

// VariantMappingModel — запись variant_mappings вместе с колонками присоединённого варианта.
// Поля Variant* равны nil, если строки варианта нет.
type VariantMappingModel struct {
	ID            string   `db:"id"`
	ProductID     string   `db:"product_id"`
	VariantID     string   `db:"variant_id"`
	Quantity      int      `db:"quantity"`
	PriceOverride *float64 `db:"price_override"`
	IsDefault     bool     `db:"is_default"`
	IsActive      bool     `db:"is_active"`

	VariantName     *string  `db:"variant_name"`
	VariantPrice    *float64 `db:"variant_price"`
	VariantSKU      *string  `db:"variant_sku"`
	VariantCategory *string  `db:"variant_category"`
}

// OrderModel представляет запись таблицы orders. Items хранятся как JSONB, Total — текстом numeric.
type OrderModel struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	Address   string    `db:"address"`
	Note      string    `db:"note"`
	Items     []byte    `db:"items"`
	Total     string    `db:"total"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

// BlogPostModel представляет запись таблицы blog_posts.
type BlogPostModel struct {
	ID          string     `db:"id"`
	Slug        string     `db:"slug"`
	Title       string     `db:"title"`
	Excerpt     string     `db:"excerpt"`
	Published   bool       `db:"published"`
	PublishedAt *time.Time `db:"published_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	AggregateID string     `db:"aggregate_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
