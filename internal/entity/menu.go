package entity

type MenuItemType string

const (
	ItemVegetarian    MenuItemType = "vegetarian"
	ItemNonVegetarian MenuItemType = "non-vegetarian"
	ItemDrink         MenuItemType = "drink"
	ItemOther         MenuItemType = "other"
)

// MenuItem is owned by the catalog; the cart and orders only ever read it.
// Price is in minor currency units.
type MenuItem struct {
	ID         int          `json:"id"`
	Title      string       `json:"title"`
	Price      int64        `json:"price"`
	Categories []string     `json:"categories"`
	Type       MenuItemType `json:"type"`
	Available  bool         `json:"available"`
}
