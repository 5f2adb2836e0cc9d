package domain

// Variant — продаваемая опция (размер, цвет и т.п.).
type Variant struct {
	ID       string
	Name     string
	Price    *float64
	SKU      *string
	Category string
}

// VariantRef — ссылка связки на вариант; Variant == nil, если вариант не подгружен.
type VariantRef struct {
	ID      string
	Variant *Variant
}

// VariantMapping связывает товар с вариантом и хранит остаток и переопределение цены.
// ID связки и ID варианта — разные значения.
type VariantMapping struct {
	ID            string
	ProductID     string
	Variant       VariantRef
	Quantity      int
	PriceOverride *float64
	IsDefault     bool
	IsActive      bool
}
